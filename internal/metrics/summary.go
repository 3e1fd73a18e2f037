package metrics

import (
	"github.com/eddiefleurent/paper_tickets/internal/models"
)

// Summary is the per-position metric block consumed by the advisor and the
// ticket renderer. Fields are populated per strategy variant; everything
// unset stays nil and renders as "N/A".
type Summary struct {
	// Short premium (CSP, covered call, short legs generally)
	Breakeven       *float64
	POPProxy        *float64
	CollateralGross *float64
	CollateralNet   *float64
	ROC             *float64
	AnnualizedROC   *float64
	OptionROI       *float64
	AnnualizedROI   *float64
	IntrinsicAtRisk *float64

	// PMCC / diagonal
	LongExtrinsic *float64
	Coverage      *Coverage
	NetDelta      *float64
	ShortGTCBasis *float64

	// Defined-risk spreads
	Vertical *VerticalEconomics
	Condor   *CondorEconomics
}

// Compute derives the metric summary for a classified position. It is a
// pure function: same position and quote in, same summary out.
func Compute(pos *models.Position, und models.Underlying) Summary {
	var s Summary
	switch pos.Strategy {
	case models.CashSecuredPut:
		short := pos.ShortLeg()
		credit := short.Mark
		s.Breakeven = BreakevenShortPut(short.Strike, credit)
		s.POPProxy = POPProxy(short.Delta)
		gross := CollateralGross(short.Strike)
		s.CollateralGross = &gross
		s.CollateralNet = CollateralNet(short.Strike, credit)
		s.ROC = ROC(credit, s.CollateralNet)
		s.AnnualizedROC = Annualize(s.ROC, short.DTE)
		s.ShortGTCBasis = credit

	case models.CoveredCall:
		short := pos.ShortLeg()
		credit := short.Mark
		s.Breakeven = BreakevenCoveredCall(und.Last, credit)
		s.POPProxy = POPProxy(short.Delta)
		s.OptionROI = OptionROI(credit, und.Last)
		s.AnnualizedROI = Annualize(s.OptionROI, short.DTE)
		s.IntrinsicAtRisk = IntrinsicAtRisk(und.Last, short.Strike)
		s.ShortGTCBasis = credit

	case models.PoorMansCoveredCall, models.Diagonal:
		long, short := pos.LongLeg(), pos.ShortLeg()
		s.LongExtrinsic = Extrinsic(long, und.Last)
		cov := CoverageCheck(s.LongExtrinsic, long.DTE, short.Mark)
		s.Coverage = &cov
		nd := NetDelta(long, short)
		s.NetDelta = &nd
		s.POPProxy = POPProxy(short.Delta)
		s.ShortGTCBasis = short.Mark

	case models.VerticalBullCall, models.VerticalBullPut,
		models.VerticalBearCall, models.VerticalBearPut:
		long, short := pos.LongLeg(), pos.ShortLeg()
		econ := ComputeVertical(pos.Strategy, long, short, und.Last)
		s.Vertical = &econ
		s.Breakeven = econ.Breakeven
		s.POPProxy = POPProxy(short.Delta)
		if econ.Credit != nil {
			s.ShortGTCBasis = econ.Credit
		} else {
			s.ShortGTCBasis = econ.Debit
		}

	case models.IronCondor:
		econ := ComputeCondor(pos, und.Last)
		s.Condor = &econ
		s.ShortGTCBasis = econ.NetCredit

	case models.Unclassified:
		// Nothing to derive; the position is reported as-is.
	}
	return s
}
