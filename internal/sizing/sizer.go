// Package sizing turns a per-contract cash requirement and the account state
// into a whole-number contract count. The output is a tri-state status, not
// a boolean: callers must render ok, tight, and blocked distinctly.
package sizing

import (
	"math"

	"github.com/eddiefleurent/paper_tickets/internal/config"
	"github.com/eddiefleurent/paper_tickets/internal/metrics"
	"github.com/eddiefleurent/paper_tickets/internal/models"
)

// Status classifies the sizing outcome.
type Status string

const (
	// StatusOK means at least one contract fits with a healthy remainder.
	StatusOK Status = "ok"
	// StatusTight means exactly one contract fits and the remaining cash is
	// under a quarter of another contract's requirement.
	StatusTight Status = "tight"
	// StatusBlocked means zero contracts fit; Reason says why.
	StatusBlocked Status = "blocked"
)

// tightRemainderFraction is the cash cushion below which a single-contract
// fill is flagged tight.
const tightRemainderFraction = 0.25

// Result is one sizing decision.
type Result struct {
	Contracts    int     `json:"contracts"`
	Status       Status  `json:"status"`
	Reason       string  `json:"reason"`
	RequiredCash float64 `json:"required_cash"`
	CashLeft     float64 `json:"cash_left"`
}

// Requirement computes the per-contract cash requirement for a priced
// position: strike x 100 for cash-secured puts, the long leg's price x 100
// for debit structures, and (width - credit) x 100 for credit spreads.
// Returns nil for shapes that are not cash-sized here (covered calls assume
// external share ownership; unclassified positions are not priced).
func Requirement(pos *models.Position, s *metrics.Summary) *float64 {
	switch pos.Strategy {
	case models.CashSecuredPut:
		v := pos.ShortLeg().Strike * models.SharesPerContract
		return &v
	case models.PoorMansCoveredCall, models.Diagonal:
		long := pos.LongLeg()
		if long.Mark == nil {
			return nil
		}
		v := *long.Mark * models.SharesPerContract
		return &v
	case models.VerticalBullCall, models.VerticalBearPut:
		if s == nil || s.Vertical == nil || s.Vertical.Debit == nil {
			return nil
		}
		v := *s.Vertical.Debit * models.SharesPerContract
		return &v
	case models.VerticalBullPut, models.VerticalBearCall:
		if s == nil || s.Vertical == nil || s.Vertical.Credit == nil {
			return nil
		}
		v := math.Max(0, s.Vertical.Width-*s.Vertical.Credit) * models.SharesPerContract
		return &v
	case models.IronCondor:
		if s == nil || s.Condor == nil || s.Condor.MaxLoss == nil {
			return nil
		}
		v := *s.Condor.MaxLoss * models.SharesPerContract
		return &v
	default:
		return nil
	}
}

// Size fits contracts under min(cash available, per-trade cap). The bound
// contracts x requirement <= min(cash, cap) always holds on the result.
func Size(perContract float64, acct config.AccountState) Result {
	hardCap := math.Min(acct.CashAvailable, acct.PerTradeCap())
	if perContract <= 0 || hardCap <= 0 {
		return Result{Status: StatusBlocked, Reason: "no cash"}
	}
	contracts := int(math.Floor(hardCap / perContract))
	if contracts <= 0 {
		return Result{Status: StatusBlocked, Reason: "not enough for 1 contract", RequiredCash: perContract}
	}
	required := float64(contracts) * perContract
	remain := acct.CashAvailable - required
	res := Result{
		Contracts:    contracts,
		Status:       StatusOK,
		Reason:       "fits within cash/per-trade cap",
		RequiredCash: required,
		CashLeft:     remain,
	}
	if contracts == 1 && remain < perContract*tightRemainderFraction {
		res.Status = StatusTight
		res.Reason = "low remaining cash after 1 contract"
	}
	return res
}
