package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/eddiefleurent/paper_tickets/internal/advice"
	"github.com/eddiefleurent/paper_tickets/internal/metrics"
	"github.com/eddiefleurent/paper_tickets/internal/models"
	"github.com/eddiefleurent/paper_tickets/internal/parser"
	"github.com/eddiefleurent/paper_tickets/internal/render"
	"github.com/eddiefleurent/paper_tickets/internal/sizing"
	"github.com/eddiefleurent/paper_tickets/internal/strategy"
)

type monitorOpts struct {
	jsonOut  bool
	gtcTiers []float64
	fills    []string
}

func newMonitorCmd(g *globalOpts) *cobra.Command {
	var mo monitorOpts
	cmd := &cobra.Command{
		Use:   "monitor [paste files...]",
		Short: "Parse pasted positions and print trade tickets (default: stdin)",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := g.setup()
			if err != nil {
				return err
			}
			return a.monitor(args, mo)
		},
	}
	cmd.Flags().BoolVar(&mo.jsonOut, "json", false, "emit the JSON artifact instead of text tickets")
	cmd.Flags().Float64SliceVar(&mo.gtcTiers, "gtc", nil, "profit tier percentages (default 50, or 50,75 with a fill)")
	cmd.Flags().StringArrayVar(&mo.fills, "fill", nil, "fill basis override, SYMBOL=PRICE (repeatable)")
	return cmd
}

// monitor is the main pipeline: parse, classify, compute, advise, render.
func (a *app) monitor(files []string, mo monitorOpts) error {
	overrides, err := parseFillOverrides(mo.fills)
	if err != nil {
		return err
	}

	result, err := a.parseInputs(files)
	if err != nil {
		return err
	}

	classifier := strategy.NewClassifier(strategy.DefaultCriteria(), a.logger)
	positions := classifier.Classify(result.Legs)

	regime, vol := "", ""
	if a.market != nil {
		regime, vol = a.market.RegimeOrNA(), a.market.Volatility
	}
	targets := a.policy.Resolve(regime, vol)
	engine := advice.NewEngine(targets, a.logger)

	acct, err := a.store.AccountState()
	if err != nil {
		return err
	}

	tickets := make([]*render.Ticket, 0, len(positions))
	for i := range positions {
		pos := &positions[i]
		und := result.Underlying(pos.Symbol)
		summary := metrics.Compute(pos, und)

		t := &render.Ticket{
			Position:   pos,
			ID:         pos.ID(),
			Underlying: und,
			Summary:    summary,
			Checks:     engine.Checklist(pos, und, &summary),
		}

		if req := sizing.Requirement(pos, &summary); req != nil {
			res := sizing.Size(*req, acct)
			t.Sizing = &res
		}

		t.FillBasis, t.BasisFromFill = a.resolveBasis(pos, &summary, overrides)
		tickets = append(tickets, t)
	}

	// The tier default is a property of the run, not the position: one fill
	// anywhere switches every ticket to the two-tier ladder.
	haveFill := haveAnyFill(overrides, tickets)
	for _, t := range tickets {
		tiers := mo.gtcTiers
		if len(tiers) == 0 {
			tiers = advice.DefaultTiers(haveFill)
		}
		rec := engine.Evaluate(t.Position, t.Underlying, &t.Summary)
		rec.ProfitTargets = engine.ProfitTargets(t.Position, &t.Summary, t.FillBasis, tiers)
		t.Recommendation = rec
	}

	if mo.jsonOut {
		return render.NewArtifact(tickets, a.market, time.Now()).WriteJSON(os.Stdout)
	}

	r := render.NewRenderer(os.Stdout)
	r.MarketBanner(a.market)
	if len(tickets) == 0 {
		r.NoPositions()
		return nil
	}
	for _, t := range tickets {
		r.Ticket(t)
	}
	return nil
}

// parseInputs reads stdin when no files are given, otherwise parses every
// file concurrently and merges in argument order so output stays stable.
func (a *app) parseInputs(files []string) (*parser.Result, error) {
	p := parser.New(parser.DefaultConfig(), a.logger)
	if len(files) == 0 {
		return p.Parse(os.Stdin)
	}

	results := make([]*parser.Result, len(files))
	var g errgroup.Group
	for i, path := range files {
		i, path := i, path
		g.Go(func() error {
			f, err := os.Open(path) // #nosec G304 -- user-provided paste file
			if err != nil {
				return fmt.Errorf("failed to open %s: %w", path, err)
			}
			defer func() { _ = f.Close() }()
			res, err := p.Parse(f)
			if err != nil {
				return fmt.Errorf("failed to parse %s: %w", path, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return mergeResults(results), nil
}

// mergeResults concatenates legs and keeps the first quote seen per symbol.
func mergeResults(results []*parser.Result) *parser.Result {
	merged := &parser.Result{Underlyings: make(map[string]models.Underlying)}
	for _, res := range results {
		merged.Lines = append(merged.Lines, res.Lines...)
		merged.Legs = append(merged.Legs, res.Legs...)
		for sym, und := range res.Underlyings {
			if existing, ok := merged.Underlyings[sym]; !ok || existing.Last == nil {
				merged.Underlyings[sym] = und
			}
		}
	}
	return merged
}

// haveAnyFill reports whether this run has any fill at all: a --fill
// override, or a recorded fill backing some ticket's basis.
func haveAnyFill(overrides map[string]float64, tickets []*render.Ticket) bool {
	if len(overrides) > 0 {
		return true
	}
	for _, t := range tickets {
		if t.BasisFromFill {
			return true
		}
	}
	return false
}

// resolveBasis picks the GTC basis: a --fill override first, then the most
// recent recorded fill, then the parsed mark.
func (a *app) resolveBasis(pos *models.Position, s *metrics.Summary, overrides map[string]float64) (*float64, bool) {
	if price, ok := overrides[pos.Symbol]; ok {
		return &price, true
	}
	if fill := a.store.LatestFill(pos.ID()); fill != nil {
		return &fill.Price, true
	}
	return s.ShortGTCBasis, false
}

func parseFillOverrides(specs []string) (map[string]float64, error) {
	if len(specs) == 0 {
		return nil, nil
	}
	out := make(map[string]float64, len(specs))
	for _, spec := range specs {
		sym, val, ok := strings.Cut(spec, "=")
		if !ok {
			return nil, fmt.Errorf("invalid --fill %q, want SYMBOL=PRICE", spec)
		}
		price, err := strconv.ParseFloat(val, 64)
		if err != nil || price <= 0 {
			return nil, fmt.Errorf("invalid --fill price in %q", spec)
		}
		out[strings.ToUpper(strings.TrimSpace(sym))] = price
	}
	return out, nil
}
