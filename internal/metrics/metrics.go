// Package metrics computes strategy-conditioned risk/reward quantities from
// a classified position and its underlying quote. Every function is total:
// broker pastes routinely omit fields, so a nil input propagates to a nil
// output instead of an error or a panic.
package metrics

import (
	"math"

	"github.com/eddiefleurent/paper_tickets/internal/models"
)

// CycleDays is the nominal length of one short-call cycle when counting how
// many covered cycles remain on a LEAP.
const CycleDays = 30

// cycleReserveDays is held back from the LEAP runway; the final weeks before
// LEAP expiration are not sellable cycles.
const cycleReserveDays = 21

// coverageFraction is how much of the required per-cycle credit the current
// short must bring in to count as covering the LEAP's extrinsic decay.
const coverageFraction = 0.8

// Extrinsic returns the time value left in a leg: mark minus intrinsic,
// floored at zero. Calls measure intrinsic as last-strike, puts as
// strike-last.
func Extrinsic(leg *models.OptionLeg, last *float64) *float64 {
	if leg == nil || leg.Mark == nil || last == nil {
		return nil
	}
	var intrinsic float64
	if leg.Type == models.Call {
		intrinsic = math.Max(0, *last-leg.Strike)
	} else {
		intrinsic = math.Max(0, leg.Strike-*last)
	}
	v := math.Max(0, *leg.Mark-intrinsic)
	return &v
}

// CyclesLeft counts the ~30 day short cycles remaining on a long-dated leg,
// reserving the last 21 days. A nil DTE counts as zero cycles.
func CyclesLeft(dte *int) int {
	if dte == nil {
		return 0
	}
	return int(math.Max(0, math.Floor(float64(*dte-cycleReserveDays)/CycleDays)))
}

// Coverage reports whether the short leg's credit covers the LEAP's
// extrinsic decay cadence. Zero cycles left means there is nothing left to
// cover, which is reported as covered with zero required - not as an error.
type Coverage struct {
	OK             *bool
	RequiredPer30D *float64
	Cycles         int
}

// CoverageCheck computes the PMCC coverage ratio inputs.
func CoverageCheck(longExtrinsic *float64, longDTE *int, shortMark *float64) Coverage {
	if longExtrinsic == nil || longDTE == nil {
		return Coverage{Cycles: CyclesLeft(longDTE)}
	}
	cyc := CyclesLeft(longDTE)
	if cyc == 0 {
		ok := true
		zero := 0.0
		return Coverage{OK: &ok, RequiredPer30D: &zero, Cycles: 0}
	}
	req := *longExtrinsic / float64(cyc)
	var short float64
	if shortMark != nil {
		short = *shortMark
	}
	ok := short >= coverageFraction*req
	return Coverage{OK: &ok, RequiredPer30D: &req, Cycles: cyc}
}

// POPProxy is the delta-derived probability-of-profit heuristic for a short
// leg: 1 - |delta|, clamped to [0,1]. It is not a calibrated POP model.
func POPProxy(delta *float64) *float64 {
	if delta == nil {
		return nil
	}
	v := math.Min(1, math.Max(0, 1-math.Abs(*delta)))
	return &v
}

// BreakevenShortPut is strike minus the credit received.
func BreakevenShortPut(strike float64, credit *float64) *float64 {
	if credit == nil {
		return nil
	}
	v := strike - *credit
	return &v
}

// BreakevenCoveredCall is the stock basis after the call credit: last minus
// credit.
func BreakevenCoveredCall(last, credit *float64) *float64 {
	if last == nil || credit == nil {
		return nil
	}
	v := *last - *credit
	return &v
}

// CollateralGross is the cash securing a short put: strike x 100.
func CollateralGross(strike float64) float64 {
	return strike * models.SharesPerContract
}

// CollateralNet is the effective collateral after credit, floored at zero.
func CollateralNet(strike float64, credit *float64) *float64 {
	if credit == nil {
		return nil
	}
	v := math.Max(0, (strike-*credit)*models.SharesPerContract)
	return &v
}

// ROC is return on collateral: credit dollars over net collateral. A nil or
// zero denominator yields nil.
func ROC(credit, netCollateral *float64) *float64 {
	if credit == nil || netCollateral == nil || *netCollateral == 0 {
		return nil
	}
	v := (*credit * models.SharesPerContract) / *netCollateral
	return &v
}

// Annualize scales a per-cycle return by 365/DTE. A nil or non-positive DTE
// yields nil, never a division by zero.
func Annualize(ret *float64, dte *int) *float64 {
	if ret == nil || dte == nil || *dte <= 0 {
		return nil
	}
	v := *ret * (365.0 / float64(*dte))
	return &v
}

// OptionROI is the covered-call yield on the underlying: credit / last.
func OptionROI(credit, last *float64) *float64 {
	if credit == nil || *credit == 0 || last == nil || *last == 0 {
		return nil
	}
	v := *credit / *last
	return &v
}

// NetDelta sums the deltas of two legs, treating a missing delta as zero.
func NetDelta(a, b *models.OptionLeg) float64 {
	var v float64
	if a != nil && a.Delta != nil {
		v += *a.Delta
	}
	if b != nil && b.Delta != nil {
		v += *b.Delta
	}
	return v
}

// IntrinsicAtRisk is how far a short call is in the money: last - strike
// when positive, else zero.
func IntrinsicAtRisk(last *float64, strike float64) *float64 {
	if last == nil {
		return nil
	}
	v := math.Max(0, *last-strike)
	return &v
}
