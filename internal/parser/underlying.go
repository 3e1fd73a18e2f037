package parser

import (
	"regexp"

	"github.com/eddiefleurent/paper_tickets/internal/models"
)

var (
	bareTickerRe = regexp.MustCompile(`^[A-Z][A-Z0-9.]{0,6}$`)
	moneyRe      = regexp.MustCompile(`\$(-?\d+(?:\.\d+)?)`)
)

// DetectUnderlyings scans for a bare ticker line immediately followed by a
// line starting with a dollar amount, and maps symbol to quote. The first
// quote per symbol wins; underlyings are immutable for the rest of the pass.
//
// A bare ticker with no price line after it is silently discarded - pastes
// legitimately contain tickers used only as strategy labels, and a stray one
// must not poison the rest of the parse.
func (p *Parser) DetectUnderlyings(lines []string) map[string]models.Underlying {
	under := make(map[string]models.Underlying)
	for i, line := range lines {
		if !bareTickerRe.MatchString(line) {
			continue
		}
		if i+1 >= len(lines) {
			continue
		}
		next := lines[i+1]
		if len(next) == 0 || next[0] != '$' {
			continue
		}
		m := moneyRe.FindStringSubmatch(next)
		if m == nil || moneyRe.FindStringIndex(next)[0] != 0 {
			continue
		}
		if _, seen := under[line]; seen {
			continue
		}
		last := toFloat(m[1])
		under[line] = models.Underlying{Symbol: line, Last: last}
		p.logger.Debugf("underlying %s: last=%v via: %s", line, deref(last), next)
	}
	return under
}

func deref(f *float64) interface{} {
	if f == nil {
		return "N/A"
	}
	return *f
}
