// Package models defines the typed trade data recovered from broker pastes:
// underlyings, option legs, classified positions, and recommendations.
package models

import (
	"fmt"
	"strings"
	"time"
)

// SharesPerContract is the standard US equity option multiplier.
const SharesPerContract = 100.0

// ExpirationLayout is the broker export date format (MM/DD/YYYY).
const ExpirationLayout = "01/02/2006"

// Underlying is a quote line recovered from the paste. Last is nil when the
// paste contained the ticker but no price line; lookups must tolerate that.
type Underlying struct {
	Symbol string   `json:"symbol"`
	Last   *float64 `json:"last,omitempty"`
}

// OptionType distinguishes calls from puts, using the broker's C/P letters.
type OptionType string

const (
	// Call is a call option leg.
	Call OptionType = "C"
	// Put is a put option leg.
	Put OptionType = "P"
)

// Valid returns true if the OptionType is one of the defined constants.
func (t OptionType) Valid() bool {
	return t == Call || t == Put
}

// Moneyness is the broker-reported ITM/OTM marker token.
type Moneyness string

const (
	// InTheMoney marks a leg the broker reported as ITM.
	InTheMoney Moneyness = "ITM"
	// OutOfTheMoney marks a leg the broker reported as OTM.
	OutOfTheMoney Moneyness = "OTM"
	// MoneynessUnknown is used when no marker was found for the leg.
	MoneynessUnknown Moneyness = ""
)

// OptionLeg is a single parsed option contract row. Legs are value objects:
// created once per parse pass and never mutated.
//
// Optional fields are pointers; nil means the broker row omitted the field or
// it failed to parse. Quantity is always exactly +1 or -1 - the extractor
// drops any leg whose quantity token cannot resolve to a unit sign.
type OptionLeg struct {
	Symbol       string     `json:"symbol"`
	Expiration   time.Time  `json:"expiration"`
	Strike       float64    `json:"strike"`
	Type         OptionType `json:"type"`
	DTE          *int       `json:"dte,omitempty"`
	Delta        *float64   `json:"delta,omitempty"`
	OpenInterest *int       `json:"open_interest,omitempty"`
	Quantity     int        `json:"quantity"`
	Mark         *float64   `json:"mark,omitempty"`
	Moneyness    Moneyness  `json:"moneyness,omitempty"`
	Raw          string     `json:"-"`
}

// IsShort returns true for a sold (written) leg.
func (l *OptionLeg) IsShort() bool { return l.Quantity < 0 }

// IsLong returns true for a bought leg.
func (l *OptionLeg) IsLong() bool { return l.Quantity > 0 }

// ExpString renders the expiration the way the broker prints it (MM/DD/YYYY).
func (l *OptionLeg) ExpString() string {
	return l.Expiration.Format(ExpirationLayout)
}

// AbsDelta returns |delta|, or nil when delta was not parsed.
func (l *OptionLeg) AbsDelta() *float64 {
	if l.Delta == nil {
		return nil
	}
	d := *l.Delta
	if d < 0 {
		d = -d
	}
	return &d
}

// Describe renders a short human-readable form, e.g. "QQQ 09/19/2025 560.00 C x-1".
func (l *OptionLeg) Describe() string {
	return fmt.Sprintf("%s %s %.2f %s x%+d", l.Symbol, l.ExpString(), l.Strike, l.Type, l.Quantity)
}

// FormatStrike renders a strike with up to two decimals, trailing zeros
// dropped, for use in deterministic position IDs.
func FormatStrike(strike float64) string {
	s := fmt.Sprintf("%.2f", strike)
	s = strings.TrimRight(s, "0")
	s = strings.TrimRight(s, ".")
	return s
}

// Float returns a pointer to v. Convenience for building optional fields.
func Float(v float64) *float64 { return &v }

// Int returns a pointer to v. Convenience for building optional fields.
func Int(v int) *int { return &v }
