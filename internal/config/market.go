package config

import (
	"os"

	yaml "gopkg.in/yaml.v3"
)

// MarketState is the display-only market context banner: regime, trend bias,
// and volatility. It never gates parsing or classification; it only adjusts
// policy bands via Policy.Resolve and decorates the ticket header.
type MarketState struct {
	Regime        string `yaml:"regime"`
	OverallRegime string `yaml:"overall_regime"`
	TrendBias     string `yaml:"trend_bias"`
	Volatility    string `yaml:"volatility"`
}

// LoadMarketState reads the market context file. Absence, or any read or
// parse failure, yields nil: the banner is decoration and must never block
// a monitor run.
func LoadMarketState(path string) *MarketState {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path) // #nosec G304 -- user-provided config path
	if err != nil {
		return nil
	}
	var state MarketState
	if err := yaml.Unmarshal(data, &state); err != nil {
		return nil
	}
	return &state
}

// RegimeOrNA returns the regime name, preferring the long-form key, or "N/A".
func (m *MarketState) RegimeOrNA() string {
	if m == nil {
		return "N/A"
	}
	if m.OverallRegime != "" {
		return m.OverallRegime
	}
	if m.Regime != "" {
		return m.Regime
	}
	return "N/A"
}

// TrendOrNA returns the trend bias or "N/A".
func (m *MarketState) TrendOrNA() string {
	if m == nil || m.TrendBias == "" {
		return "N/A"
	}
	return m.TrendBias
}

// VolOrNA returns the volatility label or "N/A".
func (m *MarketState) VolOrNA() string {
	if m == nil || m.Volatility == "" {
		return "N/A"
	}
	return m.Volatility
}
