package parser

import (
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/eddiefleurent/paper_tickets/internal/models"
)

// The scan window and quantity fallback are empirically tuned against the
// broker layouts this parser has seen; a new export variant may need
// different values, so they are configuration rather than literals.
const (
	// DefaultScanWindow is how many lines past an option header to search
	// for the data row.
	DefaultScanWindow = 8
	// anchorQuantityOffset is the position of the quantity token after the
	// ITM/OTM anchor (anchor+1=DTE, +2=delta, +3=OI, +4=qty).
	anchorQuantityOffset = 4
	// DefaultQuantityFallbackOffset is tried when the token at
	// anchorQuantityOffset does not resolve to +/-1; some layouts interleave
	// an extra field there.
	DefaultQuantityFallbackOffset = 5
)

var (
	headerRe = regexp.MustCompile(`^([A-Z][A-Z0-9.]{0,6})\s+(\d{2}/\d{2}/\d{4})\s+(\d+(?:\.\d+)?)\s+(C|P)\b`)
	itmRe    = regexp.MustCompile(`\b(ITM|OTM)\b`)
)

// Config holds the tunable extraction heuristics.
type Config struct {
	// ScanWindow bounds the forward search for a data row after a header.
	ScanWindow int
	// QuantityFallbackOffset is the anchor-relative token position tried
	// when the primary quantity token is not +/-1.
	QuantityFallbackOffset int
}

// DefaultConfig returns the calibrated extraction constants.
func DefaultConfig() Config {
	return Config{
		ScanWindow:             DefaultScanWindow,
		QuantityFallbackOffset: DefaultQuantityFallbackOffset,
	}
}

// Parser turns normalized paste lines into typed legs and underlyings.
type Parser struct {
	cfg    Config
	logger *logrus.Logger
}

// New creates a Parser. A nil logger gets a discard-level default so library
// callers never have to care.
func New(cfg Config, logger *logrus.Logger) *Parser {
	if cfg.ScanWindow <= 0 {
		cfg.ScanWindow = DefaultScanWindow
	}
	if cfg.QuantityFallbackOffset <= anchorQuantityOffset {
		cfg.QuantityFallbackOffset = DefaultQuantityFallbackOffset
	}
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}
	return &Parser{cfg: cfg, logger: logger}
}

// Result is one complete parse pass over a paste.
type Result struct {
	Lines       []string
	Underlyings map[string]models.Underlying
	Legs        []models.OptionLeg
}

// Underlying returns the quote for symbol, or a price-less placeholder when
// the paste had none. Absence is never an error.
func (r *Result) Underlying(symbol string) models.Underlying {
	if u, ok := r.Underlyings[symbol]; ok {
		return u
	}
	return models.Underlying{Symbol: symbol}
}

// Parse reads the whole paste from r and extracts underlyings and legs.
// Malformed rows degrade to skipped legs or nil fields; the only possible
// error is a failure reading r itself.
func (p *Parser) Parse(r io.Reader) (*Result, error) {
	lines, err := NormalizeLines(r)
	if err != nil {
		return nil, err
	}
	return &Result{
		Lines:       lines,
		Underlyings: p.DetectUnderlyings(lines),
		Legs:        p.ExtractLegs(lines),
	}, nil
}

// ExtractLegs walks the lines looking for option headers
// ("SYM MM/DD/YYYY STRIKE C|P"), pairs each with its data row, and
// anchor-parses the per-leg fields. Legs with an unresolvable quantity sign
// are dropped; everything else degrades field by field.
func (p *Parser) ExtractLegs(lines []string) []models.OptionLeg {
	var legs []models.OptionLeg
	n := len(lines)
	i := 0
	for i < n {
		h := headerRe.FindStringSubmatch(lines[i])
		if h == nil {
			i++
			continue
		}
		sym, expStr, cp := h[1], h[2], models.OptionType(h[4])
		strike := toFloat(h[3])
		exp, expErr := time.Parse(models.ExpirationLayout, expStr)
		if strike == nil || expErr != nil {
			p.logger.Debugf("unusable header, skipping: %s", lines[i])
			i++
			continue
		}

		dataRow, dataIdx := p.findDataRow(lines, i)
		if dataRow == "" {
			p.logger.Debugf("no data row after header: %s", lines[i])
			i++
			continue
		}

		leg := models.OptionLeg{
			Symbol:     sym,
			Expiration: exp,
			Strike:     *strike,
			Type:       cp,
			Raw:        dataRow,
		}
		if m := moneyRe.FindStringSubmatch(dataRow); m != nil {
			leg.Mark = toFloat(m[1])
		}
		p.parseAfterAnchor(dataRow, &leg)

		if leg.Quantity != 1 && leg.Quantity != -1 {
			p.logger.Debugf("dropping leg %s %s %.2f %s: quantity not +/-1 in: %s",
				sym, expStr, leg.Strike, cp, dataRow)
			i = dataIdx + 1
			continue
		}

		legs = append(legs, leg)
		p.logger.Debugf("parsed %s %s %.2f %s | mark=%v %s dte=%v delta=%v oi=%v qty=%+d",
			sym, expStr, leg.Strike, cp, deref(leg.Mark), leg.Moneyness,
			derefInt(leg.DTE), deref(leg.Delta), derefInt(leg.OpenInterest), leg.Quantity)
		i = dataIdx + 1
	}
	return legs
}

// findDataRow scans forward from the header at index i, skipping CALL/PUT/EXP
// label rows, for the first line starting with a currency marker. Returns the
// row and its index, or "" when the window is exhausted.
func (p *Parser) findDataRow(lines []string, i int) (string, int) {
	n := len(lines)
	for j := i + 1; j < n && j <= i+p.cfg.ScanWindow; j++ {
		row := lines[j]
		if isLabelRow(row) {
			continue
		}
		if strings.HasPrefix(row, "$") {
			return row, j
		}
	}
	return "", i
}

func isLabelRow(row string) bool {
	upper := strings.ToUpper(row)
	return strings.Contains(" "+row+" ", " EXP ") ||
		strings.HasPrefix(upper, "CALL ") ||
		strings.HasPrefix(upper, "PUT ")
}

// parseAfterAnchor locates the ITM/OTM token and reads the next four tokens
// positionally as DTE, delta, open interest, and quantity. Columns before
// the anchor vary between broker screens (bid/ask/volume layouts differ);
// the anchor and the four fields after it are stable across all of them.
func (p *Parser) parseAfterAnchor(row string, leg *models.OptionLeg) {
	m := itmRe.FindStringSubmatch(row)
	if m == nil {
		return
	}
	leg.Moneyness = models.Moneyness(m[1])

	toks := tokenSplit(row)
	idx := -1
	for i, t := range toks {
		if t == m[1] {
			idx = i
			break
		}
	}
	if idx < 0 {
		return
	}
	get := func(off int) string {
		i := idx + off
		if i < 0 || i >= len(toks) {
			return ""
		}
		return toks[i]
	}

	leg.DTE = toInt(get(1))
	leg.Delta = toFloat(get(2))
	if leg.Delta != nil && (*leg.Delta < -1 || *leg.Delta > 1) {
		// A shifted column, not a delta.
		leg.Delta = nil
	}
	leg.OpenInterest = toInt(get(3))

	qty := toInt(get(anchorQuantityOffset))
	if qty == nil || (*qty != 1 && *qty != -1) {
		if alt := toInt(get(p.cfg.QuantityFallbackOffset)); alt != nil && (*alt == 1 || *alt == -1) {
			qty = alt
		}
	}
	if qty != nil && (*qty == 1 || *qty == -1) {
		leg.Quantity = *qty
	}
}

func derefInt(v *int) interface{} {
	if v == nil {
		return "N/A"
	}
	return *v
}
