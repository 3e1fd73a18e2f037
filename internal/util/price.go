// Package util provides common utility functions for price calculations.
package util

import "math"

// NickelTick is the price increment GTC exit orders are quoted in.
const NickelTick = 0.05

// RoundToTick rounds x to the nearest tick increment.
// For example, with tick=0.01, 1.2345 becomes 1.23 or 1.24 depending on rounding.
func RoundToTick(x, tick float64) float64 {
	if tick <= 0 {
		return x
	}
	return math.Round(x/tick) * tick
}

// FloorToTick rounds x down to the previous tick increment, with a small
// epsilon so values a hair under an exact multiple (float noise) stay put.
func FloorToTick(x, tick float64) float64 {
	if tick <= 0 {
		return x
	}
	const eps = 1e-9
	return math.Floor(x/tick+eps) * tick
}
