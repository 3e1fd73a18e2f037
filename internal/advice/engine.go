// Package advice evaluates classified positions against policy thresholds
// and produces hold/roll/close recommendations plus GTC profit-tier targets.
// Evaluation is stateless: every run is a pure function of the current legs
// and the resolved policy, so the same paste always yields the same advice.
package advice

import (
	"fmt"
	"io"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/eddiefleurent/paper_tickets/internal/config"
	"github.com/eddiefleurent/paper_tickets/internal/metrics"
	"github.com/eddiefleurent/paper_tickets/internal/models"
	"github.com/eddiefleurent/paper_tickets/internal/util"
)

// minGTCPrice is the floor for credit-side GTC targets; broker UIs reject
// buy-to-close orders under a nickel.
const minGTCPrice = util.NickelTick

// Engine applies one resolved policy to positions.
type Engine struct {
	targets config.Targets
	logger  *logrus.Logger
}

// NewEngine creates an Engine; a nil logger discards diagnostics.
func NewEngine(targets config.Targets, logger *logrus.Logger) *Engine {
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}
	return &Engine{targets: targets, logger: logger}
}

// Evaluate produces the recommendation for one position. Roll fires on the
// short leg's DTE or delta trigger; defined-risk shapes switch to Close near
// expiration since they have no natural roll target here; otherwise Hold.
func (e *Engine) Evaluate(pos *models.Position, und models.Underlying, s *metrics.Summary) models.Recommendation {
	rec := models.Recommendation{Action: models.Hold}
	short := pos.ShortLeg()

	if pos.Strategy == models.Unclassified {
		rec.Reasons = append(rec.Reasons, "no known strategy shape matched these legs")
		return rec
	}

	if pos.Strategy.DefinedRisk() {
		closeAt := e.targets.Vertical.CloseAtDTE
		if short != nil && short.DTE != nil && *short.DTE <= closeAt {
			rec.Action = models.Close
			rec.Reasons = append(rec.Reasons,
				fmt.Sprintf("DTE ≤ %d on a defined-risk spread — close to tidy up tail risk", closeAt))
		}
	} else if short != nil {
		rollAt, deltaGt, window := e.rollTriggers(pos.Strategy)
		if short.DTE != nil && *short.DTE <= rollAt {
			rec.Action = models.Roll
			rec.Reasons = append(rec.Reasons,
				fmt.Sprintf("short DTE ≤ %d (%d left) — roll out to %.0f–%.0f DTE for a net credit",
					rollAt, *short.DTE, window.Low, window.High))
		}
		if d := short.AbsDelta(); d != nil && *d > deltaGt {
			rec.Action = models.Roll
			rec.Reasons = append(rec.Reasons,
				fmt.Sprintf("short |Δ| %.2f > %.2f — roll up/out to cut assignment risk", *d, deltaGt))
		}
	}

	if rec.Action == models.Hold {
		rec.Reasons = append(rec.Reasons, e.holdReasons(pos, und, s)...)
		if len(rec.Reasons) == 0 {
			rec.Reasons = append(rec.Reasons, "within policy bands — hold and monitor")
		}
	}
	e.logger.Debugf("advice: %s %s -> %s", pos.Symbol, pos.Strategy, rec.Action)
	return rec
}

// rollTriggers returns the roll-at-DTE and roll-if-delta-above thresholds
// plus the preferred DTE window for the replacement short.
func (e *Engine) rollTriggers(v models.StrategyVariant) (int, float64, config.Band) {
	switch v {
	case models.CashSecuredPut:
		p := e.targets.CSP
		return p.RollAtDaysToExp, p.RollIfShortDeltaGt, p.SweetSpot
	case models.CoveredCall:
		p := e.targets.CoveredCall
		return p.RollAtDaysToExp, p.RollIfShortDeltaGt, p.SweetSpot
	default: // PMCC, diagonal
		p := e.targets.PMCC
		return p.RollAtDaysToExp, p.RollIfShortDeltaGt, p.ShortDTEPref
	}
}

// holdReasons adds strategy-specific guidance for positions with no trigger
// fired, mirroring the playbook bullets of the legacy tickets.
func (e *Engine) holdReasons(pos *models.Position, und models.Underlying, s *metrics.Summary) []string {
	var reasons []string
	switch pos.Strategy {
	case models.PoorMansCoveredCall, models.Diagonal:
		if s.Coverage != nil {
			switch {
			case s.Coverage.OK != nil && !*s.Coverage.OK && s.Coverage.RequiredPer30D != nil:
				reasons = append(reasons, fmt.Sprintf(
					"roll short for ≥ ~$%.2f credit per 30D to cover LEAP extrinsic cadence",
					0.8**s.Coverage.RequiredPer30D))
			case s.Coverage.OK != nil && *s.Coverage.OK:
				reasons = append(reasons, "coverage OK vs. required/30D — maintain cadence")
			}
		}
		if s.LongExtrinsic != nil && *s.LongExtrinsic <= 0.50 {
			reasons = append(reasons, "LEAP extrinsic ~spent — evaluate harvesting (close or roll LEAP up/out)")
		}
	case models.CashSecuredPut:
		if tested(pos, und) {
			reasons = append(reasons, "tested: roll down/out for credit, or accept assignment if the wheel fits the plan")
		}
	case models.CoveredCall:
		if tested(pos, und) {
			reasons = append(reasons, "tested/ITM: roll up/out for credit to raise the strike, or allow call-away")
		}
	case models.VerticalBullCall, models.VerticalBullPut,
		models.VerticalBearCall, models.VerticalBearPut:
		if s.Vertical != nil {
			if s.Vertical.Threatened != nil && *s.Vertical.Threatened {
				reasons = append(reasons, "short strike tested — consider roll or close")
			}
			if s.Vertical.RemainPct != nil && s.Vertical.Debit != nil && *s.Vertical.RemainPct <= 25 {
				reasons = append(reasons, "near max value — consider taking profits")
			}
		}
	case models.IronCondor:
		if s.Condor != nil {
			pt, ct := s.Condor.PutWing.Threatened, s.Condor.CallWing.Threatened
			if (pt != nil && *pt) || (ct != nil && *ct) {
				reasons = append(reasons, "a short strike is tested — consider closing the threatened wing")
			}
		}
	}
	return reasons
}

// tested reports whether the underlying has crossed the short strike.
func tested(pos *models.Position, und models.Underlying) bool {
	short := pos.ShortLeg()
	if short == nil || und.Last == nil {
		return false
	}
	if short.Type == models.Put {
		return *und.Last < short.Strike
	}
	return *und.Last > short.Strike
}

// ProfitTargets computes the GTC exit tiers from the fill basis (or the
// parsed mark when no fill was recorded). Credit shapes work down from the
// basis and never go below a nickel; debit shapes work up, capped at the
// structure's max value when one exists.
func (e *Engine) ProfitTargets(pos *models.Position, s *metrics.Summary, basis *float64, tiers []float64) []models.ProfitTarget {
	if basis == nil || len(tiers) == 0 {
		return nil
	}
	var maxValue *float64
	if s != nil && s.Vertical != nil && !pos.Strategy.IsCredit() {
		maxValue = &s.Vertical.Width
	}

	out := make([]models.ProfitTarget, 0, len(tiers))
	for _, pct := range tiers {
		var price float64
		if pos.Strategy.IsCredit() {
			price = math.Max(minGTCPrice, util.RoundToTick(*basis*(1-pct/100), util.NickelTick))
		} else {
			price = *basis * (1 + pct/100)
			if maxValue != nil {
				price = math.Min(price, *maxValue)
			}
			// Floor so rounding can never lift a capped target past the
			// structure's max value.
			price = util.FloorToTick(price, util.NickelTick)
		}
		out = append(out, models.ProfitTarget{TierPct: pct, TargetPrice: price})
	}
	return out
}

// DefaultTiers returns the profit-tier percentages to use when the --gtc
// flag is absent: [50] with no fill recorded, [50, 75] once any fill exists.
func DefaultTiers(haveFill bool) []float64 {
	if haveFill {
		return []float64{50, 75}
	}
	return []float64{50}
}
