package models

import (
	"fmt"
	"strings"
)

// StrategyVariant is the closed set of strategy shapes the classifier can
// produce. Adding a variant means updating every switch over this type; the
// classifier, metrics engine, sizer, and advisor all match exhaustively.
type StrategyVariant string

const (
	// CoveredCall is a single short call (share ownership assumed external).
	CoveredCall StrategyVariant = "covered_call"
	// CashSecuredPut is a single short put.
	CashSecuredPut StrategyVariant = "cash_secured_put"
	// PoorMansCoveredCall is a long LEAP call plus a short near-dated call.
	PoorMansCoveredCall StrategyVariant = "pmcc"
	// Diagonal is a long/short call pair across expirations that misses the
	// PMCC LEAP gates.
	Diagonal StrategyVariant = "diagonal"
	// VerticalBullCall is a call debit spread (long strike below short).
	VerticalBullCall StrategyVariant = "vertical_bull_call"
	// VerticalBullPut is a put credit spread (short strike above long).
	VerticalBullPut StrategyVariant = "vertical_bull_put"
	// VerticalBearCall is a call credit spread (short strike below long).
	VerticalBearCall StrategyVariant = "vertical_bear_call"
	// VerticalBearPut is a put debit spread (long strike above short).
	VerticalBearPut StrategyVariant = "vertical_bear_put"
	// IronCondor is a put credit vertical plus a call credit vertical on the
	// same underlying and expiration.
	IronCondor StrategyVariant = "iron_condor"
	// Unclassified marks a leg set that matched no known shape. It is
	// reported as-is, never coerced into the closest variant.
	Unclassified StrategyVariant = "unclassified"
)

// Valid returns true if the variant is one of the defined constants.
func (v StrategyVariant) Valid() bool {
	switch v {
	case CoveredCall, CashSecuredPut, PoorMansCoveredCall, Diagonal,
		VerticalBullCall, VerticalBullPut, VerticalBearCall, VerticalBearPut,
		IronCondor, Unclassified:
		return true
	default:
		return false
	}
}

// DefinedRisk returns true for shapes whose max loss is capped by a long
// wing (verticals, iron condor). These get a close-at-21-DTE policy rather
// than a roll.
func (v StrategyVariant) DefinedRisk() bool {
	switch v {
	case VerticalBullCall, VerticalBullPut, VerticalBearCall, VerticalBearPut, IronCondor:
		return true
	default:
		return false
	}
}

// IsCredit returns true for shapes whose profit-tier targets work down from
// a received credit; debit shapes work up from an amount paid.
func (v StrategyVariant) IsCredit() bool {
	switch v {
	case CoveredCall, CashSecuredPut, PoorMansCoveredCall, Diagonal,
		VerticalBullPut, VerticalBearCall, IronCondor:
		// PMCC and diagonal tiers target the short leg's credit.
		return true
	default:
		return false
	}
}

// Display renders the variant for banners, e.g. "VERTICAL BULL PUT".
func (v StrategyVariant) Display() string {
	return strings.ToUpper(strings.ReplaceAll(string(v), "_", " "))
}

// Position is a classified group of legs on one underlying. Positions are
// reconstructed fresh on every parse run; there is no persisted identity
// across runs, so ID is a pure function of the leg set.
type Position struct {
	Symbol   string          `json:"symbol"`
	Strategy StrategyVariant `json:"strategy"`
	Legs     []OptionLeg     `json:"legs"`
}

// ShortLegs returns the short legs in order.
func (p *Position) ShortLegs() []OptionLeg {
	var out []OptionLeg
	for _, l := range p.Legs {
		if l.IsShort() {
			out = append(out, l)
		}
	}
	return out
}

// LongLegs returns the long legs in order.
func (p *Position) LongLegs() []OptionLeg {
	var out []OptionLeg
	for _, l := range p.Legs {
		if l.IsLong() {
			out = append(out, l)
		}
	}
	return out
}

// ShortLeg returns the first short leg, or nil if none exists.
func (p *Position) ShortLeg() *OptionLeg {
	for i := range p.Legs {
		if p.Legs[i].IsShort() {
			return &p.Legs[i]
		}
	}
	return nil
}

// LongLeg returns the first long leg, or nil if none exists.
func (p *Position) LongLeg() *OptionLeg {
	for i := range p.Legs {
		if p.Legs[i].IsLong() {
			return &p.Legs[i]
		}
	}
	return nil
}

// ID computes the stable, human-readable position identifier. The formats
// follow the suggestion-file conventions:
//
//	CSP:SYM:EXP:STRIKE:P
//	CC:SYM:EXP:STRIKE:C
//	PMCC:SYM:LEAP{K}C@{EXP}|S{K}C@{EXP}
//	DIAG:SYM:L{K}C@{EXP}|S{K}C@{EXP}
//	BCALL/BPUT/BRCALL/BRPUT:SYM:EXP:LONG-SHORT:C|P
//	IC:SYM:EXP:P{long}-{short}|C{short}-{long}
//
// Unclassified positions get UNCLASSIFIED:SYM:<leg descriptions>.
func (p *Position) ID() string {
	switch p.Strategy {
	case CashSecuredPut:
		l := p.ShortLeg()
		return fmt.Sprintf("CSP:%s:%s:%s:P", p.Symbol, l.ExpString(), FormatStrike(l.Strike))
	case CoveredCall:
		l := p.ShortLeg()
		return fmt.Sprintf("CC:%s:%s:%s:C", p.Symbol, l.ExpString(), FormatStrike(l.Strike))
	case PoorMansCoveredCall:
		lng, sht := p.LongLeg(), p.ShortLeg()
		return fmt.Sprintf("PMCC:%s:LEAP%sC@%s|S%sC@%s", p.Symbol,
			FormatStrike(lng.Strike), lng.ExpString(),
			FormatStrike(sht.Strike), sht.ExpString())
	case Diagonal:
		lng, sht := p.LongLeg(), p.ShortLeg()
		return fmt.Sprintf("DIAG:%s:L%sC@%s|S%sC@%s", p.Symbol,
			FormatStrike(lng.Strike), lng.ExpString(),
			FormatStrike(sht.Strike), sht.ExpString())
	case VerticalBullCall, VerticalBullPut, VerticalBearCall, VerticalBearPut:
		lng, sht := p.LongLeg(), p.ShortLeg()
		var tag string
		switch p.Strategy {
		case VerticalBullCall:
			tag = "BCALL"
		case VerticalBullPut:
			tag = "BPUT"
		case VerticalBearCall:
			tag = "BRCALL"
		default:
			tag = "BRPUT"
		}
		return fmt.Sprintf("%s:%s:%s:%s-%s:%s", tag, p.Symbol, sht.ExpString(),
			FormatStrike(lng.Strike), FormatStrike(sht.Strike), sht.Type)
	case IronCondor:
		var putLong, putShort, callShort, callLong *OptionLeg
		for i := range p.Legs {
			l := &p.Legs[i]
			switch {
			case l.Type == Put && l.IsLong():
				putLong = l
			case l.Type == Put && l.IsShort():
				putShort = l
			case l.Type == Call && l.IsShort():
				callShort = l
			default:
				callLong = l
			}
		}
		return fmt.Sprintf("IC:%s:%s:P%s-%s|C%s-%s", p.Symbol, putShort.ExpString(),
			FormatStrike(putLong.Strike), FormatStrike(putShort.Strike),
			FormatStrike(callShort.Strike), FormatStrike(callLong.Strike))
	default:
		descs := make([]string, 0, len(p.Legs))
		for i := range p.Legs {
			descs = append(descs, p.Legs[i].Describe())
		}
		return fmt.Sprintf("UNCLASSIFIED:%s:%s", p.Symbol, strings.Join(descs, ";"))
	}
}
