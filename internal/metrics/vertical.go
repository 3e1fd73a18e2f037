package metrics

import (
	"math"

	"github.com/eddiefleurent/paper_tickets/internal/models"
)

// VerticalEconomics are the derived quantities for a two-leg spread. Exactly
// one of Credit/Debit is set (matching the variant's direction); everything
// else degrades to nil when leg marks are missing.
type VerticalEconomics struct {
	Width           float64
	SpreadMid       *float64
	Credit          *float64
	Debit           *float64
	Breakeven       *float64
	RemainToMax     *float64
	RemainPct       *float64
	CreditOverWidth *float64
	DebitOverWidth  *float64
	ShortDelta      *float64
	Threatened      *bool
}

// ComputeVertical derives the spread economics for a classified vertical.
// The long leg's mark minus the short's is the current value of a debit
// spread; credit spreads mirror it. Breakevens follow the standard sign
// conventions (put credit: short strike - credit; call debit: long strike +
// debit).
func ComputeVertical(variant models.StrategyVariant, long, short *models.OptionLeg, last *float64) VerticalEconomics {
	econ := VerticalEconomics{
		Width:      math.Abs(short.Strike - long.Strike),
		ShortDelta: short.AbsDelta(),
	}

	var mid *float64
	if long.Mark != nil && short.Mark != nil {
		var v float64
		switch variant {
		case models.VerticalBullCall, models.VerticalBearPut:
			v = *long.Mark - *short.Mark
		default:
			v = *short.Mark - *long.Mark
		}
		mid = &v
	}
	econ.SpreadMid = mid

	switch variant {
	case models.VerticalBullCall:
		econ.Debit = nonNegative(mid)
		if econ.Debit != nil {
			be := long.Strike + *econ.Debit
			econ.Breakeven = &be
		}
	case models.VerticalBearPut:
		econ.Debit = nonNegative(mid)
		if econ.Debit != nil {
			be := long.Strike - *econ.Debit
			econ.Breakeven = &be
		}
	case models.VerticalBearCall:
		econ.Credit = nonNegative(mid)
		if econ.Credit != nil {
			be := short.Strike + *econ.Credit
			econ.Breakeven = &be
		}
	case models.VerticalBullPut:
		econ.Credit = nonNegative(mid)
		if econ.Credit != nil {
			be := short.Strike - *econ.Credit
			econ.Breakeven = &be
		}
	}

	if econ.Width > 0 {
		switch {
		case econ.Debit != nil && econ.SpreadMid != nil:
			remain := math.Max(0, econ.Width-*econ.SpreadMid)
			pct := (remain / econ.Width) * 100
			econ.RemainToMax, econ.RemainPct = &remain, &pct
			dow := *econ.Debit / econ.Width
			econ.DebitOverWidth = &dow
		case econ.Credit != nil:
			remain := math.Max(0, econ.Width-*econ.Credit)
			pct := (remain / econ.Width) * 100
			econ.RemainToMax, econ.RemainPct = &remain, &pct
			cow := *econ.Credit / econ.Width
			econ.CreditOverWidth = &cow
		}
	}

	if last != nil {
		var t bool
		if short.Type == models.Call {
			t = *last >= short.Strike
		} else {
			t = *last <= short.Strike
		}
		econ.Threatened = &t
	}
	return econ
}

// CondorEconomics are the aggregate quantities for a four-leg iron condor.
type CondorEconomics struct {
	PutWing    VerticalEconomics
	CallWing   VerticalEconomics
	NetCredit  *float64
	WorstWidth float64
	MaxLoss    *float64
}

// ComputeCondor sums the two credit wings. Max loss is the wider wing minus
// the total credit, floored at zero.
func ComputeCondor(pos *models.Position, last *float64) CondorEconomics {
	var putLong, putShort, callShort, callLong *models.OptionLeg
	for i := range pos.Legs {
		l := &pos.Legs[i]
		switch {
		case l.Type == models.Put && l.IsLong():
			putLong = l
		case l.Type == models.Put && l.IsShort():
			putShort = l
		case l.Type == models.Call && l.IsShort():
			callShort = l
		default:
			callLong = l
		}
	}
	econ := CondorEconomics{
		PutWing:  ComputeVertical(models.VerticalBullPut, putLong, putShort, last),
		CallWing: ComputeVertical(models.VerticalBearCall, callLong, callShort, last),
	}
	econ.WorstWidth = math.Max(econ.PutWing.Width, econ.CallWing.Width)
	if econ.PutWing.Credit != nil && econ.CallWing.Credit != nil {
		net := *econ.PutWing.Credit + *econ.CallWing.Credit
		econ.NetCredit = &net
		loss := math.Max(0, econ.WorstWidth-net)
		econ.MaxLoss = &loss
	}
	return econ
}

func nonNegative(v *float64) *float64 {
	if v == nil || *v < 0 {
		return nil
	}
	return v
}
