package parser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eddiefleurent/paper_tickets/internal/models"
)

func parseText(t *testing.T, text string) *Result {
	t.Helper()
	p := New(DefaultConfig(), nil)
	res, err := p.Parse(strings.NewReader(text))
	require.NoError(t, err)
	return res
}

func TestParseSingleLongCall(t *testing.T) {
	text := `AAPL
$230.49
AAPL 01/16/2026 190.00 C
$45.30 $44.95 $45.65 1200 ITM 320 0.82 5200 1
`
	res := parseText(t, text)

	und := res.Underlying("AAPL")
	require.NotNil(t, und.Last)
	assert.Equal(t, 230.49, *und.Last)

	require.Len(t, res.Legs, 1)
	leg := res.Legs[0]
	assert.Equal(t, "AAPL", leg.Symbol)
	assert.Equal(t, 190.00, leg.Strike)
	assert.Equal(t, models.Call, leg.Type)
	assert.Equal(t, "01/16/2026", leg.ExpString())
	assert.Equal(t, models.InTheMoney, leg.Moneyness)
	require.NotNil(t, leg.DTE)
	assert.Equal(t, 320, *leg.DTE)
	require.NotNil(t, leg.Delta)
	assert.Equal(t, 0.82, *leg.Delta)
	require.NotNil(t, leg.OpenInterest)
	assert.Equal(t, 5200, *leg.OpenInterest)
	assert.Equal(t, 1, leg.Quantity)
	assert.True(t, leg.IsLong())
	require.NotNil(t, leg.Mark)
	assert.Equal(t, 45.30, *leg.Mark)
}

func TestAnchorRobustToLeadingColumns(t *testing.T) {
	// Permuting the columns before the ITM/OTM marker must not change the
	// four fields read after it.
	rows := []string{
		"$2.50 $2.45 $2.55 880 OTM 35 -0.30 1500 -1",
		"$2.50 880 $2.45 $2.55 OTM 35 -0.30 1500 -1",
		"$2.50 OTM 35 -0.30 1500 -1",
	}
	for _, row := range rows {
		text := "QQQ 09/19/2025 560.00 C\n" + row + "\n"
		res := parseText(t, text)
		require.Len(t, res.Legs, 1, "row: %s", row)
		leg := res.Legs[0]
		require.NotNil(t, leg.DTE, "row: %s", row)
		assert.Equal(t, 35, *leg.DTE)
		require.NotNil(t, leg.Delta)
		assert.Equal(t, -0.30, *leg.Delta)
		require.NotNil(t, leg.OpenInterest)
		assert.Equal(t, 1500, *leg.OpenInterest)
		assert.Equal(t, -1, leg.Quantity)
	}
}

func TestQuantityFallbackToFifthToken(t *testing.T) {
	// Some layouts interleave an extra field between OI and quantity.
	text := "SPY 10/17/2025 450.00 P\n$3.10 OTM 40 -0.28 2100 7500 -1\n"
	res := parseText(t, text)
	require.Len(t, res.Legs, 1)
	assert.Equal(t, -1, res.Legs[0].Quantity)
}

func TestLegDroppedWhenQuantityUnresolvable(t *testing.T) {
	text := "SPY 10/17/2025 450.00 P\n$3.10 OTM 40 -0.28 2100 5\n"
	res := parseText(t, text)
	assert.Empty(t, res.Legs)
}

func TestBadFieldDegradesNotDrops(t *testing.T) {
	// A delta column holding garbage nils the field; the leg survives.
	text := "SPY 10/17/2025 450.00 P\n$3.10 OTM 40 xx 2100 -1\n"
	res := parseText(t, text)
	require.Len(t, res.Legs, 1)
	leg := res.Legs[0]
	assert.Nil(t, leg.Delta)
	require.NotNil(t, leg.DTE)
	assert.Equal(t, 40, *leg.DTE)
	assert.Equal(t, -1, leg.Quantity)
}

func TestOutOfRangeDeltaNiled(t *testing.T) {
	// 2100 is a shifted column, not a delta.
	text := "SPY 10/17/2025 450.00 P\n$3.10 OTM 40 2100 800 -1\n"
	res := parseText(t, text)
	require.Len(t, res.Legs, 1)
	assert.Nil(t, res.Legs[0].Delta)
}

func TestDataRowSkipsLabelRows(t *testing.T) {
	text := `QQQ 09/19/2025 560.00 C
CALL $ BID ASK
EXP STRIKE EXP
$2.50 OTM 35 -0.30 1500 -1
`
	res := parseText(t, text)
	require.Len(t, res.Legs, 1)
	require.NotNil(t, res.Legs[0].Mark)
	assert.Equal(t, 2.50, *res.Legs[0].Mark)
}

func TestNoDataRowWithinWindowDropsHeader(t *testing.T) {
	var b strings.Builder
	b.WriteString("QQQ 09/19/2025 560.00 C\n")
	for i := 0; i < DefaultScanWindow+1; i++ {
		b.WriteString("noise line without currency\n")
	}
	b.WriteString("$2.50 OTM 35 -0.30 1500 -1\n")
	res := parseText(t, b.String())
	assert.Empty(t, res.Legs)
}

func TestEmptyInputYieldsNoPositions(t *testing.T) {
	res := parseText(t, "")
	assert.Empty(t, res.Legs)
	assert.Empty(t, res.Underlyings)
	assert.Empty(t, res.Lines)
}

func TestParseIsIdempotent(t *testing.T) {
	text := `QQQ
$485.20
QQQ 09/19/2025 560.00 C
$2.50 OTM 35 -0.30 1500 -1
QQQ 06/18/2026 400.00 C
$98.10 ITM 290 0.78 900 1
`
	first := parseText(t, text)
	second := parseText(t, text)
	assert.Equal(t, first.Legs, second.Legs)
	assert.Equal(t, first.Underlyings, second.Underlyings)
}

func TestGluedSignTokenization(t *testing.T) {
	// The broker sometimes prints quantity flush against the prior column.
	text := "SPY 10/17/2025 450.00 P\n$3.10 OTM 40 -0.28 2100-1\n"
	res := parseText(t, text)
	require.Len(t, res.Legs, 1)
	assert.Equal(t, -1, res.Legs[0].Quantity)
	require.NotNil(t, res.Legs[0].OpenInterest)
	assert.Equal(t, 2100, *res.Legs[0].OpenInterest)
}

func TestUnderlyingRequiresImmediatePriceLine(t *testing.T) {
	text := `MSFT
some note in between
$420.00
`
	res := parseText(t, text)
	_, ok := res.Underlyings["MSFT"]
	assert.False(t, ok)

	und := res.Underlying("MSFT")
	assert.Equal(t, "MSFT", und.Symbol)
	assert.Nil(t, und.Last)
}

func TestFirstQuotePerSymbolWins(t *testing.T) {
	text := `AAPL
$230.49
AAPL
$231.00
`
	res := parseText(t, text)
	und := res.Underlying("AAPL")
	require.NotNil(t, und.Last)
	assert.Equal(t, 230.49, *und.Last)
}

func TestTabsAndBlanksNormalized(t *testing.T) {
	text := "\tAAPL\t\n\n  $230.49  \n"
	res := parseText(t, text)
	und := res.Underlying("AAPL")
	require.NotNil(t, und.Last)
	assert.Equal(t, 230.49, *und.Last)
}
