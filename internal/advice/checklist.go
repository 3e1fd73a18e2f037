package advice

import (
	"fmt"

	"github.com/eddiefleurent/paper_tickets/internal/config"
	"github.com/eddiefleurent/paper_tickets/internal/metrics"
	"github.com/eddiefleurent/paper_tickets/internal/models"
)

// Check is one checklist row. A nil Pass means the inputs needed to judge it
// were missing from the paste, and renders as N/A rather than FAIL.
type Check struct {
	Label string `json:"label"`
	Pass  *bool  `json:"pass,omitempty"`
}

func check(label string, pass bool) Check {
	return Check{Label: label, Pass: &pass}
}

func unknown(label string) Check {
	return Check{Label: label}
}

// Checklist evaluates the mechanical entry/maintenance gates for a position.
// These mirror the bands in the policy file; they grade the structure, not
// the thesis.
func (e *Engine) Checklist(pos *models.Position, und models.Underlying, s *metrics.Summary) []Check {
	switch pos.Strategy {
	case models.CashSecuredPut:
		return e.shortPremiumChecks(pos, und, e.targets.CSP)
	case models.CoveredCall:
		return e.shortPremiumChecks(pos, und, e.targets.CoveredCall)
	case models.PoorMansCoveredCall, models.Diagonal:
		return e.pmccChecks(pos, s)
	case models.VerticalBullCall, models.VerticalBullPut,
		models.VerticalBearCall, models.VerticalBearPut:
		return e.verticalChecks(pos, s)
	case models.IronCondor:
		return e.condorChecks(s)
	default:
		return nil
	}
}

func (e *Engine) shortPremiumChecks(pos *models.Position, und models.Underlying, p config.ShortPremiumPolicy) []Check {
	short := pos.ShortLeg()
	var out []Check

	deltaLabel := fmt.Sprintf("short |Δ| in [%.2f, %.2f]", p.DeltaBand.Low, p.DeltaBand.High)
	if d := short.AbsDelta(); d != nil {
		out = append(out, check(deltaLabel, p.DeltaBand.Contains(*d)))
	} else {
		out = append(out, unknown(deltaLabel))
	}

	dteLabel := fmt.Sprintf("DTE in [%.0f, %.0f]", p.DTEBand.Low, p.DTEBand.High)
	if short.DTE != nil {
		out = append(out, check(dteLabel, p.DTEBand.Contains(float64(*short.DTE))))
	} else {
		out = append(out, unknown(dteLabel))
	}

	if und.Last != nil {
		out = append(out, check("strike not tested", !tested(pos, und)))
	} else {
		out = append(out, unknown("strike not tested"))
	}

	oiLabel := fmt.Sprintf("open interest ≥ %d", p.OIMin)
	if short.OpenInterest != nil {
		out = append(out, check(oiLabel, *short.OpenInterest >= p.OIMin))
	} else {
		out = append(out, unknown(oiLabel))
	}
	return out
}

func (e *Engine) pmccChecks(pos *models.Position, s *metrics.Summary) []Check {
	p := e.targets.PMCC
	long, short := pos.LongLeg(), pos.ShortLeg()
	var out []Check

	leapDeltaLabel := fmt.Sprintf("LEAP Δ ≥ %.2f", p.LEAPDeltaMin)
	if long != nil && long.AbsDelta() != nil {
		out = append(out, check(leapDeltaLabel, *long.AbsDelta() >= p.LEAPDeltaMin))
	} else {
		out = append(out, unknown(leapDeltaLabel))
	}

	leapDTELabel := fmt.Sprintf("LEAP DTE ≥ %d", p.LEAPMinDTE)
	if long != nil && long.DTE != nil {
		out = append(out, check(leapDTELabel, *long.DTE >= p.LEAPMinDTE))
	} else {
		out = append(out, unknown(leapDTELabel))
	}

	shortDTELabel := fmt.Sprintf("short DTE in [%.0f, %.0f]", p.ShortDTEPref.Low, p.ShortDTEPref.High)
	if short != nil && short.DTE != nil {
		out = append(out, check(shortDTELabel, p.ShortDTEPref.Contains(float64(*short.DTE))))
	} else {
		out = append(out, unknown(shortDTELabel))
	}

	shortDeltaLabel := fmt.Sprintf("short |Δ| in [%.2f, %.2f]", p.ShortDeltaBand.Low, p.ShortDeltaBand.High)
	if short != nil && short.AbsDelta() != nil {
		out = append(out, check(shortDeltaLabel, p.ShortDeltaBand.Contains(*short.AbsDelta())))
	} else {
		out = append(out, unknown(shortDeltaLabel))
	}

	covLabel := "short credit covers LEAP decay cadence"
	if s != nil && s.Coverage != nil && s.Coverage.OK != nil {
		out = append(out, check(covLabel, *s.Coverage.OK))
	} else {
		out = append(out, unknown(covLabel))
	}
	return out
}

func (e *Engine) verticalChecks(pos *models.Position, s *metrics.Summary) []Check {
	p := e.targets.Vertical
	var out []Check
	if s == nil || s.Vertical == nil {
		return nil
	}
	v := s.Vertical

	deltaLabel := fmt.Sprintf("short |Δ| in [%.2f, %.2f]", p.ShortDeltaBand.Low, p.ShortDeltaBand.High)
	if v.ShortDelta != nil {
		out = append(out, check(deltaLabel, p.ShortDeltaBand.Contains(*v.ShortDelta)))
	} else {
		out = append(out, unknown(deltaLabel))
	}

	short := pos.ShortLeg()
	dteLabel := fmt.Sprintf("DTE > %d", p.CloseAtDTE)
	if short != nil && short.DTE != nil {
		out = append(out, check(dteLabel, *short.DTE > p.CloseAtDTE))
	} else {
		out = append(out, unknown(dteLabel))
	}

	// Pricing sanity: credit spreads should collect at least a third of the
	// width; debit spreads should not pay past the cap.
	switch {
	case v.CreditOverWidth != nil:
		out = append(out, check(
			fmt.Sprintf("credit ≥ %.0f%% of width", p.CreditWidthMin*100),
			*v.CreditOverWidth >= p.CreditWidthMin))
	case v.DebitOverWidth != nil:
		out = append(out, check(
			fmt.Sprintf("debit ≤ %.0f%% of width", p.DebitWidthMax*100),
			*v.DebitOverWidth <= p.DebitWidthMax))
	default:
		out = append(out, unknown("pricing vs. width"))
	}

	if v.Threatened != nil {
		out = append(out, check("short strike not breached", !*v.Threatened))
	} else {
		out = append(out, unknown("short strike not breached"))
	}
	return out
}

func (e *Engine) condorChecks(s *metrics.Summary) []Check {
	p := e.targets.Vertical
	if s == nil || s.Condor == nil {
		return nil
	}
	c := s.Condor
	var out []Check

	for _, wing := range []struct {
		name string
		econ *metrics.VerticalEconomics
	}{{"put wing", &c.PutWing}, {"call wing", &c.CallWing}} {
		label := fmt.Sprintf("%s short |Δ| in [%.2f, %.2f]", wing.name, p.ShortDeltaBand.Low, p.ShortDeltaBand.High)
		if wing.econ.ShortDelta != nil {
			out = append(out, check(label, p.ShortDeltaBand.Contains(*wing.econ.ShortDelta)))
		} else {
			out = append(out, unknown(label))
		}
	}

	creditLabel := fmt.Sprintf("net credit ≥ %.0f%% of widest wing", p.CreditWidthMin*100)
	if c.NetCredit != nil && c.WorstWidth > 0 {
		out = append(out, check(creditLabel, *c.NetCredit/c.WorstWidth >= p.CreditWidthMin))
	} else {
		out = append(out, unknown(creditLabel))
	}

	for _, wing := range []struct {
		name string
		econ *metrics.VerticalEconomics
	}{{"put wing", &c.PutWing}, {"call wing", &c.CallWing}} {
		label := wing.name + " short strike not breached"
		if wing.econ.Threatened != nil {
			out = append(out, check(label, !*wing.econ.Threatened))
		} else {
			out = append(out, unknown(label))
		}
	}
	return out
}
