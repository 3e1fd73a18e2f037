// Package render turns evaluated positions into trade tickets: a fixed-width
// text form for terminals and a JSON artifact for downstream tools.
package render

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/eddiefleurent/paper_tickets/internal/advice"
	"github.com/eddiefleurent/paper_tickets/internal/config"
	"github.com/eddiefleurent/paper_tickets/internal/metrics"
	"github.com/eddiefleurent/paper_tickets/internal/models"
	"github.com/eddiefleurent/paper_tickets/internal/sizing"
)

const (
	ruleWidth  = 70
	labelWidth = 24
	valueWidth = 12
)

// Ticket is everything computed for one position, ready to render.
type Ticket struct {
	Position       *models.Position      `json:"position"`
	ID             string                `json:"id"`
	Underlying     models.Underlying     `json:"underlying"`
	Summary        metrics.Summary       `json:"summary"`
	Checks         []advice.Check        `json:"checks,omitempty"`
	Sizing         *sizing.Result        `json:"sizing,omitempty"`
	Recommendation models.Recommendation `json:"recommendation"`
	FillBasis      *float64              `json:"fill_basis,omitempty"`
	BasisFromFill  bool                  `json:"basis_from_fill"`
}

// Renderer writes text tickets. Now is overridable so tests get stable
// banners.
type Renderer struct {
	Out io.Writer
	Now func() time.Time
}

// NewRenderer returns a Renderer writing to out with a wall clock.
func NewRenderer(out io.Writer) *Renderer {
	return &Renderer{Out: out, Now: time.Now}
}

func (r *Renderer) printf(format string, args ...interface{}) {
	fmt.Fprintf(r.Out, format, args...)
}

// rule prints a full-width horizontal rule.
func (r *Renderer) rule() {
	r.printf("%s\n", strings.Repeat("─", ruleWidth))
}

// pair prints two label/value KPI columns on one fixed-width line so the
// block doesn't jiggle as values change length.
func (r *Renderer) pair(labelL, valL, labelR, valR string) {
	ll, lr := labelL, labelR
	if ll != "" {
		ll += ":"
	}
	if lr != "" {
		lr += ":"
	}
	r.printf("%-*s %*s   %-*s %*s\n", labelWidth, ll, valueWidth, valL, labelWidth, lr, valueWidth, valR)
}

func money(v *float64) string {
	if v == nil {
		return "N/A"
	}
	return fmt.Sprintf("$%.2f", *v)
}

func num(v *float64, prec int) string {
	if v == nil {
		return "N/A"
	}
	return fmt.Sprintf("%.*f", prec, *v)
}

func pct(v *float64) string {
	if v == nil {
		return "N/A"
	}
	return fmt.Sprintf("%.1f%%", *v*100)
}

func dte(v *int) string {
	if v == nil {
		return "N/A"
	}
	return fmt.Sprintf("%d", *v)
}

// MarketBanner prints the regime context line. Absent market state still
// prints the banner with every field as "N/A".
func (r *Renderer) MarketBanner(ms *config.MarketState) {
	r.printf("MARKET  regime=%s  trend=%s  vol=%s\n\n", ms.RegimeOrNA(), ms.TrendOrNA(), ms.VolOrNA())
}

// Ticket writes one full trade ticket.
func (r *Renderer) Ticket(t *Ticket) {
	r.banner(t)
	r.chips(t)
	r.legs(t)
	r.checklist(t)
	r.analysis(t)
	r.recommendations(t)
	r.sizing(t)
	r.rule()
	r.printf("\n")
}

func (r *Renderer) banner(t *Ticket) {
	r.rule()
	r.printf("%s  |  %s TRADE TICKET\n", t.Position.Symbol, t.Position.Strategy.Display())
	r.printf("%s\n", r.Now().UTC().Format("2006-01-02 15:04 UTC"))
	r.rule()
}

func (r *Renderer) chips(t *Ticket) {
	short := t.Position.ShortLeg()
	if short == nil {
		r.printf("\n")
		return
	}
	var chips []string
	if t.Underlying.Last != nil {
		if testedChip(short, t.Underlying) {
			chips = append(chips, "[ Short tested ]")
		} else {
			chips = append(chips, "[ Short OTM ]")
		}
	}
	if d := short.AbsDelta(); d != nil {
		chips = append(chips, fmt.Sprintf("[ |Δ| %.2f ]", *d))
	}
	if len(chips) > 0 {
		r.printf("%s\n", strings.Join(chips, "  "))
	}
	r.printf("\n")
}

func testedChip(short *models.OptionLeg, und models.Underlying) bool {
	if short.Type == models.Put {
		return *und.Last < short.Strike
	}
	return *und.Last > short.Strike
}

func (r *Renderer) legs(t *Ticket) {
	last := "N/A"
	if t.Underlying.Last != nil {
		last = fmt.Sprintf("$%.2f", *t.Underlying.Last)
	}
	r.printf("Underlying: %s\n", last)
	for i := range t.Position.Legs {
		l := &t.Position.Legs[i]
		side := "Long"
		if l.IsShort() {
			side = "Short"
		}
		r.printf("%s: %.2f %s  • Exp %s  • DTE %s  • Δ %s  • Mark %s\n",
			side, l.Strike, l.Type, l.ExpString(), dte(l.DTE), num(l.Delta, 3), money(l.Mark))
	}
}

func (r *Renderer) checklist(t *Ticket) {
	if len(t.Checks) == 0 {
		return
	}
	r.printf("\nFirst Check\n")
	for _, c := range t.Checks {
		state := "N/A"
		switch {
		case c.Pass != nil && *c.Pass:
			state = "PASS"
		case c.Pass != nil:
			state = "FAIL"
		}
		r.printf("  %s: %s\n", c.Label, state)
	}
}

func (r *Renderer) analysis(t *Ticket) {
	s := &t.Summary
	r.printf("\nDeep Analysis\n")

	switch t.Position.Strategy {
	case models.PoorMansCoveredCall, models.Diagonal:
		cyclesVal := "N/A"
		var req *float64
		covTxt := "N/A"
		if s.Coverage != nil {
			cyclesVal = fmt.Sprintf("%d", s.Coverage.Cycles)
			req = s.Coverage.RequiredPer30D
			if s.Coverage.OK != nil {
				if *s.Coverage.OK {
					covTxt = "OK"
				} else {
					covTxt = "MARG/INSUF"
				}
			}
		}
		r.pair("LEAP extrinsic", money(s.LongExtrinsic), "Cycles left (≈30D)", cyclesVal)
		r.pair("Required / 30D", money(req), "Short credit (mark)", money(s.ShortGTCBasis))
		r.pair("Coverage status", covTxt, "Net Δ (long+short)", num(s.NetDelta, 3))

	case models.CashSecuredPut:
		r.pair("Breakeven", money(s.Breakeven), "POP proxy", pct(s.POPProxy))
		r.pair("Collateral (gross)", money(s.CollateralGross), "Collateral (net)", money(s.CollateralNet))
		r.pair("ROC", pct(s.ROC), "Annualized ROC", pct(s.AnnualizedROC))

	case models.CoveredCall:
		r.pair("Breakeven", money(s.Breakeven), "POP proxy", pct(s.POPProxy))
		r.pair("Option ROI", pct(s.OptionROI), "Annualized ROI", pct(s.AnnualizedROI))
		r.pair("Intrinsic at risk", money(s.IntrinsicAtRisk), "", "")

	case models.VerticalBullCall, models.VerticalBullPut,
		models.VerticalBearCall, models.VerticalBearPut:
		if s.Vertical == nil {
			break
		}
		v := s.Vertical
		width := v.Width
		r.pair("Width", fmt.Sprintf("$%.2f", width), "Spread mid", money(v.SpreadMid))
		if v.Credit != nil {
			r.pair("Credit", money(v.Credit), "Credit / width", pct(v.CreditOverWidth))
		} else {
			r.pair("Debit", money(v.Debit), "Debit / width", pct(v.DebitOverWidth))
		}
		r.pair("Breakeven", money(v.Breakeven), "POP proxy", pct(s.POPProxy))
		remainPct := "N/A"
		if v.RemainPct != nil {
			remainPct = fmt.Sprintf("%.1f%%", *v.RemainPct)
		}
		r.pair("Remain to max", money(v.RemainToMax), "Remain %", remainPct)

	case models.IronCondor:
		if s.Condor == nil {
			break
		}
		c := s.Condor
		r.pair("Net credit", money(c.NetCredit), "Max loss", money(c.MaxLoss))
		r.pair("Put wing width", fmt.Sprintf("$%.2f", c.PutWing.Width),
			"Call wing width", fmt.Sprintf("$%.2f", c.CallWing.Width))
		r.pair("Put breakeven", money(c.PutWing.Breakeven), "Call breakeven", money(c.CallWing.Breakeven))

	case models.Unclassified:
		r.printf("  No metrics for unclassified leg sets.\n")
	}
}

func (r *Renderer) recommendations(t *Ticket) {
	r.printf("\nRecommendations  [%s]\n", strings.ToUpper(string(t.Recommendation.Action)))
	for _, reason := range t.Recommendation.Reasons {
		r.printf("  • %s\n", reason)
	}
	if len(t.Recommendation.ProfitTargets) > 0 {
		basisSrc := "mark"
		if t.BasisFromFill {
			basisSrc = "fill"
		}
		parts := make([]string, 0, len(t.Recommendation.ProfitTargets))
		for _, pt := range t.Recommendation.ProfitTargets {
			parts = append(parts, fmt.Sprintf("%.0f%% @ $%.2f", pt.TierPct, pt.TargetPrice))
		}
		r.printf("  GTC (%s basis %s): %s\n", basisSrc, money(t.FillBasis), strings.Join(parts, "  |  "))
	}
}

func (r *Renderer) sizing(t *Ticket) {
	if t.Sizing == nil {
		return
	}
	sz := t.Sizing
	r.printf("\nSizing  [%s]\n", strings.ToUpper(string(sz.Status)))
	switch sz.Status {
	case sizing.StatusBlocked:
		r.printf("  %s (requires $%.2f per contract)\n", sz.Reason, sz.RequiredCash)
	default:
		r.printf("  %d contract(s)  • cash used $%.2f  • cash left $%.2f\n",
			sz.Contracts, sz.RequiredCash, sz.CashLeft)
		if sz.Status == sizing.StatusTight {
			r.printf("  %s\n", sz.Reason)
		}
	}
}

// NoPositions prints the empty-input outcome. Parsing nothing is a success,
// not an error.
func (r *Renderer) NoPositions() {
	r.printf("No positions found.\n")
}
