package config

import (
	"fmt"
	"os"
	"strings"

	yaml "gopkg.in/yaml.v3"
)

// Baseline account defaults, used when no account_state.yml exists yet.
const (
	defaultTotalValue     = 300000
	defaultAllocPct       = 0.50
	defaultCashAvailable  = 15000
	defaultPerTradeCapPct = 0.02
)

// AccountState is the externally persisted account snapshot. It is read-only
// to the monitor core; only the account subcommand writes it.
type AccountState struct {
	TotalValue        float64 `yaml:"total_value" json:"total_value"`
	AllocPctToOptions float64 `yaml:"alloc_pct_to_options" json:"alloc_pct_to_options"`
	CashAvailable     float64 `yaml:"cash_available" json:"cash_available"`
	PerTradeCapPct    float64 `yaml:"per_trade_cap_pct" json:"per_trade_cap_pct"`
}

// DefaultAccountState returns the baseline account snapshot.
func DefaultAccountState() AccountState {
	return AccountState{
		TotalValue:        defaultTotalValue,
		AllocPctToOptions: defaultAllocPct,
		CashAvailable:     defaultCashAvailable,
		PerTradeCapPct:    defaultPerTradeCapPct,
	}
}

// PerTradeCap is the most cash one trade may consume.
func (a AccountState) PerTradeCap() float64 {
	return a.TotalValue * a.PerTradeCapPct
}

// SleeveCap is the total cash allocated to the options sleeve.
func (a AccountState) SleeveCap() float64 {
	return a.TotalValue * a.AllocPctToOptions
}

// Validate rejects states that would make sizing meaningless.
func (a AccountState) Validate() error {
	if a.TotalValue < 0 {
		return fmt.Errorf("total_value must be >= 0")
	}
	if a.AllocPctToOptions < 0 || a.AllocPctToOptions > 1 {
		return fmt.Errorf("alloc_pct_to_options must be in [0,1]")
	}
	if a.CashAvailable < 0 {
		return fmt.Errorf("cash_available must be >= 0")
	}
	if a.PerTradeCapPct < 0 || a.PerTradeCapPct > 1 {
		return fmt.Errorf("per_trade_cap_pct must be in [0,1]")
	}
	return nil
}

// LoadAccountState reads the account file. An empty path or missing file
// yields the defaults; a file that exists but cannot parse or validate is an
// error.
func LoadAccountState(path string) (AccountState, error) {
	state := DefaultAccountState()
	if path == "" {
		return state, nil
	}
	data, err := os.ReadFile(path) // #nosec G304 -- user-provided config path
	if err != nil {
		if os.IsNotExist(err) {
			return state, nil
		}
		return AccountState{}, fmt.Errorf("reading account state: %w", err)
	}
	dec := yaml.NewDecoder(strings.NewReader(os.ExpandEnv(string(data))))
	dec.KnownFields(true)
	if err := dec.Decode(&state); err != nil {
		return AccountState{}, fmt.Errorf("parsing account state: %w", err)
	}
	if err := state.Validate(); err != nil {
		return AccountState{}, fmt.Errorf("invalid account state: %w", err)
	}
	return state, nil
}
