package parser

import (
	"strconv"
	"strings"
)

// tokenSplit breaks a data row into whitespace tokens, first detaching any
// glued sign so "-1" survives as a single signed token even when the broker
// prints it flush against the previous column ("52000-1" -> "52000", "-1").
func tokenSplit(row string) []string {
	row = strings.ReplaceAll(row, "+", " +")
	row = strings.ReplaceAll(row, "-", " -")
	return strings.Fields(row)
}

// toFloat parses a numeric token, tolerating thousands separators. Returns
// nil on any failure; a bad field never aborts extraction.
func toFloat(s string) *float64 {
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

// toInt parses an integer token, tolerating thousands separators. Returns
// nil on any failure. A fractional token like "0.82" is a failure, not a
// truncation, so a shifted column cannot masquerade as a count.
func toInt(s string) *int {
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return &v
}
