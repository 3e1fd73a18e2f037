// Package strategy groups extracted option legs into coherent multi-leg
// positions. Matching runs most-specific-first (condor, PMCC, vertical,
// diagonal, then single-leg shapes) and every selection rule is a
// deterministic function of the leg set, so repeated runs over the same
// paste classify identically.
package strategy

import (
	"io"
	"math"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/eddiefleurent/paper_tickets/internal/models"
)

// Criteria are the classification thresholds. Defaults mirror the standing
// PMCC policy; a policy file can tighten or widen them per run.
type Criteria struct {
	LEAPMinDTE       int     // long call must have at least this DTE to anchor a PMCC
	LEAPMinDelta     float64 // long call delta gate (unknown delta passes)
	ShortDTEMin      int     // near-dated short call window, inclusive
	ShortDTEMax      int
	ShortDTETarget   float64 // short pick aims at this DTE
	ShortDeltaTarget float64 // and this |delta|
}

// DefaultCriteria returns the standing PMCC thresholds.
func DefaultCriteria() Criteria {
	return Criteria{
		LEAPMinDTE:       90,
		LEAPMinDelta:     0.65,
		ShortDTEMin:      7,
		ShortDTEMax:      60,
		ShortDTETarget:   35,
		ShortDeltaTarget: 0.35,
	}
}

// Classifier matches leg sets against the known strategy shapes.
type Classifier struct {
	crit   Criteria
	logger *logrus.Logger
}

// NewClassifier creates a Classifier; a nil logger discards diagnostics.
func NewClassifier(crit Criteria, logger *logrus.Logger) *Classifier {
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}
	return &Classifier{crit: crit, logger: logger}
}

// Classify groups legs by symbol and applies the shape rules. Legs that fit
// no shape come back in an Unclassified position per symbol - reported, never
// silently coerced into the nearest known strategy.
func (c *Classifier) Classify(legs []models.OptionLeg) []models.Position {
	bySym := make(map[string][]models.OptionLeg)
	var symbols []string
	for _, l := range legs {
		if _, seen := bySym[l.Symbol]; !seen {
			symbols = append(symbols, l.Symbol)
		}
		bySym[l.Symbol] = append(bySym[l.Symbol], l)
	}
	sort.Strings(symbols)

	var positions []models.Position
	for _, sym := range symbols {
		positions = append(positions, c.classifySymbol(sym, bySym[sym])...)
	}
	return positions
}

func (c *Classifier) classifySymbol(sym string, legs []models.OptionLeg) []models.Position {
	var out []models.Position
	remaining := append([]models.OptionLeg(nil), legs...)

	for {
		pos, rest, ok := c.matchIronCondor(sym, remaining)
		if !ok {
			break
		}
		out = append(out, pos)
		remaining = rest
	}
	for {
		pos, rest, ok := c.matchPMCC(sym, remaining)
		if !ok {
			break
		}
		out = append(out, pos)
		remaining = rest
	}
	for {
		pos, rest, ok := c.matchVertical(sym, remaining)
		if !ok {
			break
		}
		out = append(out, pos)
		remaining = rest
	}
	for {
		pos, rest, ok := c.matchDiagonal(sym, remaining)
		if !ok {
			break
		}
		out = append(out, pos)
		remaining = rest
	}

	// Single-leg shapes: a short call with no remaining long calls is a
	// covered call (share ownership is assumed, not verified); a short put
	// with no remaining long puts is a cash-secured put.
	var leftovers []models.OptionLeg
	longCalls, longPuts := 0, 0
	for _, l := range remaining {
		if l.IsLong() {
			if l.Type == models.Call {
				longCalls++
			} else {
				longPuts++
			}
		}
	}
	for _, l := range remaining {
		switch {
		case l.IsShort() && l.Type == models.Call && longCalls == 0:
			out = append(out, models.Position{Symbol: sym, Strategy: models.CoveredCall, Legs: []models.OptionLeg{l}})
		case l.IsShort() && l.Type == models.Put && longPuts == 0:
			out = append(out, models.Position{Symbol: sym, Strategy: models.CashSecuredPut, Legs: []models.OptionLeg{l}})
		default:
			leftovers = append(leftovers, l)
		}
	}

	if len(leftovers) > 0 {
		c.logger.Debugf("%s: %d leg(s) matched no strategy shape", sym, len(leftovers))
		out = append(out, models.Position{Symbol: sym, Strategy: models.Unclassified, Legs: leftovers})
	}
	return out
}

// matchIronCondor looks for a put credit vertical plus a call credit
// vertical on the same expiration: short put above long put, short call
// below long call.
func (c *Classifier) matchIronCondor(sym string, legs []models.OptionLeg) (models.Position, []models.OptionLeg, bool) {
	byExp := make(map[string][]int)
	var exps []string
	for i, l := range legs {
		k := l.ExpString()
		if _, seen := byExp[k]; !seen {
			exps = append(exps, k)
		}
		byExp[k] = append(byExp[k], i)
	}
	sort.Strings(exps)

	for _, exp := range exps {
		idxs := byExp[exp]
		putShort, putLong := pickVerticalPair(legs, idxs, models.Put)
		callShort, callLong := pickVerticalPair(legs, idxs, models.Call)
		if putShort < 0 || callShort < 0 {
			continue
		}
		// Credit-shape check: put wing short above long, call wing short
		// below long.
		if legs[putShort].Strike <= legs[putLong].Strike || legs[callShort].Strike >= legs[callLong].Strike {
			continue
		}
		pos := models.Position{Symbol: sym, Strategy: models.IronCondor, Legs: []models.OptionLeg{
			legs[putLong], legs[putShort], legs[callShort], legs[callLong],
		}}
		return pos, removeIndexes(legs, putLong, putShort, callShort, callLong), true
	}
	return models.Position{}, legs, false
}

// pickVerticalPair finds one short and one long leg of the given type among
// idxs, using the vertical selection rules. Returns (-1, -1) when the pair
// is incomplete.
func pickVerticalPair(legs []models.OptionLeg, idxs []int, typ models.OptionType) (shortIdx, longIdx int) {
	shortIdx, longIdx = -1, -1
	var shorts, longs []int
	for _, i := range idxs {
		if legs[i].Type != typ {
			continue
		}
		if legs[i].IsShort() {
			shorts = append(shorts, i)
		} else {
			longs = append(longs, i)
		}
	}
	if len(shorts) == 0 || len(longs) == 0 {
		return
	}
	longIdx = bestVerticalLong(legs, longs, typ)
	shortIdx = bestVerticalShort(legs, shorts)
	return
}

// bestVerticalLong prefers the long leg with the largest |delta| (more
// intrinsic), then the lower strike for calls and the higher for puts.
func bestVerticalLong(legs []models.OptionLeg, idxs []int, typ models.OptionType) int {
	best := idxs[0]
	for _, i := range idxs[1:] {
		bi, bb := absDeltaOrZero(&legs[i]), absDeltaOrZero(&legs[best])
		switch {
		case bi > bb:
			best = i
		case bi == bb && typ == models.Call && legs[i].Strike < legs[best].Strike:
			best = i
		case bi == bb && typ == models.Put && legs[i].Strike > legs[best].Strike:
			best = i
		}
	}
	return best
}

// bestVerticalShort prefers the short leg whose |delta| is closest to 0.35;
// a missing delta counts as exactly on target, matching the legacy picker.
func bestVerticalShort(legs []models.OptionLeg, idxs []int) int {
	const target = 0.35
	score := func(i int) float64 {
		d := legs[i].AbsDelta()
		if d == nil {
			return 0
		}
		return math.Abs(*d - target)
	}
	best := idxs[0]
	for _, i := range idxs[1:] {
		if score(i) < score(best) {
			best = i
		}
	}
	return best
}

// matchPMCC pairs a long LEAP call with a near-dated short call. The long
// pick maximizes (DTE, delta); the short pick minimizes distance to the
// (DTE~35, |delta|~0.35) target. Both orderings must stay exactly as they
// are for recommendations to be reproducible across runs.
func (c *Classifier) matchPMCC(sym string, legs []models.OptionLeg) (models.Position, []models.OptionLeg, bool) {
	var longs, shorts []int
	for i, l := range legs {
		if l.Type != models.Call || l.DTE == nil {
			continue
		}
		switch {
		case l.IsLong() && *l.DTE >= c.crit.LEAPMinDTE && (l.Delta == nil || *l.Delta >= c.crit.LEAPMinDelta):
			longs = append(longs, i)
		case l.IsShort() && *l.DTE >= c.crit.ShortDTEMin && *l.DTE <= c.crit.ShortDTEMax:
			shorts = append(shorts, i)
		}
	}
	if len(longs) == 0 || len(shorts) == 0 {
		return models.Position{}, legs, false
	}

	longPick := longs[0]
	for _, i := range longs[1:] {
		if pmccLongKey(&legs[i]).greater(pmccLongKey(&legs[longPick])) {
			longPick = i
		}
	}
	shortPick := shorts[0]
	for _, i := range shorts[1:] {
		if c.pmccShortKey(&legs[i]).less(c.pmccShortKey(&legs[shortPick])) {
			shortPick = i
		}
	}

	pos := models.Position{Symbol: sym, Strategy: models.PoorMansCoveredCall,
		Legs: []models.OptionLeg{legs[longPick], legs[shortPick]}}
	return pos, removeIndexes(legs, longPick, shortPick), true
}

type sortKey struct{ a, b float64 }

func (k sortKey) greater(o sortKey) bool {
	if k.a != o.a {
		return k.a > o.a
	}
	return k.b > o.b
}

func (k sortKey) less(o sortKey) bool {
	if k.a != o.a {
		return k.a < o.a
	}
	return k.b < o.b
}

func pmccLongKey(l *models.OptionLeg) sortKey {
	var dte, delta float64
	if l.DTE != nil {
		dte = float64(*l.DTE)
	}
	if l.Delta != nil {
		delta = *l.Delta
	}
	return sortKey{dte, delta}
}

func (c *Classifier) pmccShortKey(l *models.OptionLeg) sortKey {
	var dte float64
	if l.DTE != nil {
		dte = float64(*l.DTE)
	}
	delta := c.crit.ShortDeltaTarget // missing delta scores as on-target
	if d := l.AbsDelta(); d != nil {
		delta = *d
	}
	return sortKey{
		math.Abs(dte - c.crit.ShortDTETarget),
		math.Abs(delta - c.crit.ShortDeltaTarget),
	}
}

// matchVertical pairs two legs of the same expiration and type with opposite
// signs. Direction falls out of which strike carries the long sign.
func (c *Classifier) matchVertical(sym string, legs []models.OptionLeg) (models.Position, []models.OptionLeg, bool) {
	type bucketKey struct {
		exp string
		typ models.OptionType
	}
	buckets := make(map[bucketKey][]int)
	var keys []bucketKey
	for i, l := range legs {
		k := bucketKey{l.ExpString(), l.Type}
		if _, seen := buckets[k]; !seen {
			keys = append(keys, k)
		}
		buckets[k] = append(buckets[k], i)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].exp != keys[j].exp {
			return keys[i].exp < keys[j].exp
		}
		return keys[i].typ < keys[j].typ
	})

	for _, k := range keys {
		shortIdx, longIdx := pickVerticalPair(legs, buckets[k], k.typ)
		if shortIdx < 0 {
			continue
		}
		lng, sht := legs[longIdx], legs[shortIdx]
		variant := verticalVariant(k.typ, lng.Strike, sht.Strike)
		pos := models.Position{Symbol: sym, Strategy: variant,
			Legs: []models.OptionLeg{lng, sht}}
		return pos, removeIndexes(legs, longIdx, shortIdx), true
	}
	return models.Position{}, legs, false
}

func verticalVariant(typ models.OptionType, longStrike, shortStrike float64) models.StrategyVariant {
	if typ == models.Call {
		if longStrike < shortStrike {
			return models.VerticalBullCall
		}
		return models.VerticalBearCall
	}
	if longStrike > shortStrike {
		return models.VerticalBearPut
	}
	return models.VerticalBullPut
}

// matchDiagonal pairs a longer-dated long call with a shorter-dated short
// call that missed the PMCC LEAP gates (smaller delta or DTE under the LEAP
// floor).
func (c *Classifier) matchDiagonal(sym string, legs []models.OptionLeg) (models.Position, []models.OptionLeg, bool) {
	var longs, shorts []int
	for i, l := range legs {
		if l.Type != models.Call || l.DTE == nil {
			continue
		}
		if l.IsLong() {
			longs = append(longs, i)
		} else {
			shorts = append(shorts, i)
		}
	}
	for _, li := range longs {
		for _, si := range shorts {
			if legs[li].ExpString() == legs[si].ExpString() {
				continue
			}
			if *legs[li].DTE <= *legs[si].DTE {
				continue
			}
			pos := models.Position{Symbol: sym, Strategy: models.Diagonal,
				Legs: []models.OptionLeg{legs[li], legs[si]}}
			return pos, removeIndexes(legs, li, si), true
		}
	}
	return models.Position{}, legs, false
}

func absDeltaOrZero(l *models.OptionLeg) float64 {
	if d := l.AbsDelta(); d != nil {
		return *d
	}
	return 0
}

// removeIndexes returns legs minus the given positions, preserving order.
func removeIndexes(legs []models.OptionLeg, idxs ...int) []models.OptionLeg {
	drop := make(map[int]bool, len(idxs))
	for _, i := range idxs {
		drop[i] = true
	}
	out := make([]models.OptionLeg, 0, len(legs)-len(idxs))
	for i, l := range legs {
		if !drop[i] {
			out = append(out, l)
		}
	}
	return out
}
