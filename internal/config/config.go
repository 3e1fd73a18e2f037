// Package config provides the policy, account, and market-context inputs for
// a monitor run. All three are loaded once per invocation and treated as
// immutable afterward; missing files fall back to documented defaults, and
// only a present-but-unparseable file is an error.
package config

import (
	"fmt"
	"os"
	"strings"

	yaml "gopkg.in/yaml.v3"
)

// Policy defaults, used verbatim when no policy file is supplied.
const (
	defaultLEAPDeltaMin       = 0.65
	defaultLEAPMinDTE         = 90
	defaultTakeProfit         = 0.50
	defaultRollAtDaysToExp    = 21
	defaultRollIfShortDeltaGt = 0.55
	defaultOIMin              = 100
	defaultCloseAtDTE         = 21
)

// Band is an inclusive [low, high] numeric range.
type Band struct {
	Low  float64
	High float64
}

// UnmarshalYAML accepts the two-element flow list form used in policy files
// ("delta_band: [0.15, 0.35]").
func (b *Band) UnmarshalYAML(value *yaml.Node) error {
	var vals []float64
	if err := value.Decode(&vals); err != nil {
		return err
	}
	if len(vals) != 2 {
		return fmt.Errorf("band must have exactly 2 elements, got %d", len(vals))
	}
	b.Low, b.High = vals[0], vals[1]
	return nil
}

// MarshalYAML renders the flow list form back out.
func (b Band) MarshalYAML() (interface{}, error) {
	return []float64{b.Low, b.High}, nil
}

// Contains reports whether v falls inside the band, inclusive.
func (b Band) Contains(v float64) bool {
	return v >= b.Low && v <= b.High
}

// PMCCPolicy are the LEAP and short-call thresholds for PMCC management.
type PMCCPolicy struct {
	LEAPDeltaMin       float64 `yaml:"leap_delta_min"`
	LEAPMinDTE         int     `yaml:"leap_min_dte"`
	ShortDTEPref       Band    `yaml:"short_dte_pref"`
	ShortDeltaBand     Band    `yaml:"short_delta_band"`
	ShortTakeProfit    float64 `yaml:"short_take_profit"`
	RollAtDaysToExp    int     `yaml:"roll_at_days_to_exp"`
	RollIfShortDeltaGt float64 `yaml:"roll_if_short_delta_gt"`
}

// ShortPremiumPolicy covers the single-short-leg strategies (CSP, covered
// call): delta/DTE bands, sweet spot, profit taking, and roll triggers.
type ShortPremiumPolicy struct {
	DeltaBand          Band    `yaml:"delta_band"`
	DTEBand            Band    `yaml:"dte_band"`
	SweetSpot          Band    `yaml:"sweet_spot"`
	TakeProfit         float64 `yaml:"take_profit"`
	RollAtDaysToExp    int     `yaml:"roll_at_days_to_exp"`
	RollIfShortDeltaGt float64 `yaml:"roll_if_short_delta_gt"`
	OIMin              int     `yaml:"oi_min"`
}

// VerticalPolicy covers defined-risk spreads and condors.
type VerticalPolicy struct {
	ShortDeltaBand Band    `yaml:"short_delta_band"`
	MinDTE         int     `yaml:"min_dte"`
	CreditWidthMin float64 `yaml:"credit_width_min"`
	DebitWidthMax  float64 `yaml:"debit_width_max"`
	CloseAtDTE     int     `yaml:"close_at_dte"`
	TakeProfit     float64 `yaml:"take_profit"`
}

// Targets is the per-strategy policy block.
type Targets struct {
	PMCC        PMCCPolicy         `yaml:"pmcc"`
	CSP         ShortPremiumPolicy `yaml:"csp"`
	CoveredCall ShortPremiumPolicy `yaml:"covered_call"`
	Vertical    VerticalPolicy     `yaml:"vertical"`
}

// VolBlock carries dotted-key overrides applied for one (regime, vol)
// cell, e.g. "pmcc.short_delta_band: [0.20, 0.45]".
type VolBlock struct {
	Adjust map[string][]float64 `yaml:"adjust"`
}

// RegimeBlock maps a volatility regime to its adjustments.
type RegimeBlock struct {
	Vol map[string]VolBlock `yaml:"vol"`
}

// Policy is the complete strategy policy: baseline targets plus optional
// regime-conditioned adjustments.
type Policy struct {
	Defaults struct {
		Targets Targets `yaml:"targets"`
	} `yaml:"defaults"`
	Regimes map[string]RegimeBlock `yaml:"regimes"`

	// Source records where the policy came from ("default" or "file").
	Source string `yaml:"-"`
}

// DefaultPolicy returns the hard-coded fallback policy.
func DefaultPolicy() *Policy {
	p := &Policy{Source: "default"}
	p.Defaults.Targets = Targets{
		PMCC: PMCCPolicy{
			LEAPDeltaMin:       defaultLEAPDeltaMin,
			LEAPMinDTE:         defaultLEAPMinDTE,
			ShortDTEPref:       Band{28, 45},
			ShortDeltaBand:     Band{0.15, 0.55},
			ShortTakeProfit:    defaultTakeProfit,
			RollAtDaysToExp:    defaultRollAtDaysToExp,
			RollIfShortDeltaGt: defaultRollIfShortDeltaGt,
		},
		CSP: ShortPremiumPolicy{
			DeltaBand:          Band{0.15, 0.35},
			DTEBand:            Band{21, 60},
			SweetSpot:          Band{30, 45},
			TakeProfit:         defaultTakeProfit,
			RollAtDaysToExp:    defaultRollAtDaysToExp,
			RollIfShortDeltaGt: defaultRollIfShortDeltaGt,
			OIMin:              defaultOIMin,
		},
		CoveredCall: ShortPremiumPolicy{
			DeltaBand:          Band{0.25, 0.40},
			DTEBand:            Band{21, 60},
			SweetSpot:          Band{28, 45},
			TakeProfit:         defaultTakeProfit,
			RollAtDaysToExp:    defaultRollAtDaysToExp,
			RollIfShortDeltaGt: defaultRollIfShortDeltaGt,
			OIMin:              defaultOIMin,
		},
		Vertical: VerticalPolicy{
			ShortDeltaBand: Band{0.30, 0.50},
			MinDTE:         21,
			CreditWidthMin: 1.0 / 3.0,
			DebitWidthMax:  0.40,
			CloseAtDTE:     defaultCloseAtDTE,
			TakeProfit:     defaultTakeProfit,
		},
	}
	return p
}

// LoadPolicy reads a policy file, merging file values over the defaults. An
// empty path or missing file yields the defaults; a file that exists but
// fails to parse is an error.
func LoadPolicy(path string) (*Policy, error) {
	p := DefaultPolicy()
	if path == "" {
		return p, nil
	}
	data, err := os.ReadFile(path) // #nosec G304 -- user-provided config path
	if err != nil {
		if os.IsNotExist(err) {
			return p, nil
		}
		return nil, fmt.Errorf("reading policy file: %w", err)
	}
	expanded := os.ExpandEnv(string(data))
	dec := yaml.NewDecoder(strings.NewReader(expanded))
	dec.KnownFields(true)
	if err := dec.Decode(p); err != nil {
		return nil, fmt.Errorf("parsing policy file: %w", err)
	}
	p.normalize()
	p.Source = "file"
	return p, nil
}

// normalize backfills zero values with defaults so a partial policy file
// still yields usable thresholds. An explicit zero in the file is therefore
// read as absent; no current threshold has a meaningful zero or [0, 0], so
// nothing is lost. A field where zero becomes meaningful has to move to a
// pointer (or a presence-aware merge) first.
func (p *Policy) normalize() {
	d := DefaultPolicy().Defaults.Targets
	t := &p.Defaults.Targets
	if t.PMCC.LEAPDeltaMin == 0 {
		t.PMCC.LEAPDeltaMin = d.PMCC.LEAPDeltaMin
	}
	if t.PMCC.LEAPMinDTE == 0 {
		t.PMCC.LEAPMinDTE = d.PMCC.LEAPMinDTE
	}
	if t.PMCC.ShortDeltaBand == (Band{}) {
		t.PMCC.ShortDeltaBand = d.PMCC.ShortDeltaBand
	}
	if t.PMCC.ShortDTEPref == (Band{}) {
		t.PMCC.ShortDTEPref = d.PMCC.ShortDTEPref
	}
	if t.PMCC.ShortTakeProfit == 0 {
		t.PMCC.ShortTakeProfit = d.PMCC.ShortTakeProfit
	}
	if t.PMCC.RollAtDaysToExp == 0 {
		t.PMCC.RollAtDaysToExp = d.PMCC.RollAtDaysToExp
	}
	if t.PMCC.RollIfShortDeltaGt == 0 {
		t.PMCC.RollIfShortDeltaGt = d.PMCC.RollIfShortDeltaGt
	}
	normalizeShort(&t.CSP, &d.CSP)
	normalizeShort(&t.CoveredCall, &d.CoveredCall)
	if t.Vertical.ShortDeltaBand == (Band{}) {
		t.Vertical.ShortDeltaBand = d.Vertical.ShortDeltaBand
	}
	if t.Vertical.MinDTE == 0 {
		t.Vertical.MinDTE = d.Vertical.MinDTE
	}
	if t.Vertical.CreditWidthMin == 0 {
		t.Vertical.CreditWidthMin = d.Vertical.CreditWidthMin
	}
	if t.Vertical.DebitWidthMax == 0 {
		t.Vertical.DebitWidthMax = d.Vertical.DebitWidthMax
	}
	if t.Vertical.CloseAtDTE == 0 {
		t.Vertical.CloseAtDTE = d.Vertical.CloseAtDTE
	}
	if t.Vertical.TakeProfit == 0 {
		t.Vertical.TakeProfit = d.Vertical.TakeProfit
	}
}

func normalizeShort(t, d *ShortPremiumPolicy) {
	if t.DeltaBand == (Band{}) {
		t.DeltaBand = d.DeltaBand
	}
	if t.DTEBand == (Band{}) {
		t.DTEBand = d.DTEBand
	}
	if t.SweetSpot == (Band{}) {
		t.SweetSpot = d.SweetSpot
	}
	if t.TakeProfit == 0 {
		t.TakeProfit = d.TakeProfit
	}
	if t.RollAtDaysToExp == 0 {
		t.RollAtDaysToExp = d.RollAtDaysToExp
	}
	if t.RollIfShortDeltaGt == 0 {
		t.RollIfShortDeltaGt = d.RollIfShortDeltaGt
	}
	if t.OIMin == 0 {
		t.OIMin = d.OIMin
	}
}

// Resolve applies the regime-conditioned adjustments for the given market
// context and returns the effective targets. Unknown regimes or vol levels
// simply leave the baseline untouched.
func (p *Policy) Resolve(regime, vol string) Targets {
	t := p.Defaults.Targets
	rb, ok := p.Regimes[regime]
	if !ok {
		return t
	}
	vb, ok := rb.Vol[vol]
	if !ok {
		return t
	}
	for key, vals := range vb.Adjust {
		applyAdjust(&t, key, vals)
	}
	return t
}

// applyAdjust sets one dotted-key override. Band keys take two-element
// values; scalar keys take one. Unknown keys are ignored rather than fatal -
// a policy file ahead of this binary should not break monitoring.
func applyAdjust(t *Targets, key string, vals []float64) {
	band := func() (Band, bool) {
		if len(vals) == 2 {
			return Band{vals[0], vals[1]}, true
		}
		return Band{}, false
	}
	scalar := func() (float64, bool) {
		if len(vals) == 1 {
			return vals[0], true
		}
		return 0, false
	}
	switch key {
	case "pmcc.short_delta_band":
		if b, ok := band(); ok {
			t.PMCC.ShortDeltaBand = b
		}
	case "pmcc.short_dte_pref":
		if b, ok := band(); ok {
			t.PMCC.ShortDTEPref = b
		}
	case "pmcc.roll_if_short_delta_gt":
		if v, ok := scalar(); ok {
			t.PMCC.RollIfShortDeltaGt = v
		}
	case "csp.delta_band":
		if b, ok := band(); ok {
			t.CSP.DeltaBand = b
		}
	case "csp.dte_band":
		if b, ok := band(); ok {
			t.CSP.DTEBand = b
		}
	case "covered_call.delta_band":
		if b, ok := band(); ok {
			t.CoveredCall.DeltaBand = b
		}
	case "vertical.short_delta_band":
		if b, ok := band(); ok {
			t.Vertical.ShortDeltaBand = b
		}
	}
}
