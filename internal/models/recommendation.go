package models

// Action is the recommendation state for one open position. The engine is a
// pure function of the current legs and policy; it keeps no state across
// runs.
type Action string

const (
	// Hold means keep monitoring; no trigger fired.
	Hold Action = "hold"
	// Roll means the short leg hit a DTE or delta trigger and should be
	// rolled out (and possibly up/down) for a credit.
	Roll Action = "roll"
	// Close means the position should be taken off entirely; used for
	// defined-risk shapes near expiration, which have no roll target here.
	Close Action = "close"
)

// Valid returns true if the Action is one of the defined constants.
func (a Action) Valid() bool {
	switch a {
	case Hold, Roll, Close:
		return true
	default:
		return false
	}
}

// ProfitTarget is one GTC exit tier: close the position at TargetPrice to
// bank TierPct percent of the maximum profit.
type ProfitTarget struct {
	TierPct     float64 `json:"tier_pct"`
	TargetPrice float64 `json:"target_price"`
}

// Recommendation is the derived output for one position. It is recomputed
// from scratch every run and never stored.
type Recommendation struct {
	Action        Action         `json:"action"`
	Reasons       []string       `json:"reasons"`
	ProfitTargets []ProfitTarget `json:"profit_targets,omitempty"`
}
