package strategy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eddiefleurent/paper_tickets/internal/models"
)

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse(models.ExpirationLayout, s)
	require.NoError(t, err)
	return d
}

func leg(t *testing.T, sym, exp string, strike float64, typ models.OptionType, qty int, dte int, delta float64, mark float64) models.OptionLeg {
	t.Helper()
	return models.OptionLeg{
		Symbol:     sym,
		Expiration: mustDate(t, exp),
		Strike:     strike,
		Type:       typ,
		Quantity:   qty,
		DTE:        models.Int(dte),
		Delta:      models.Float(delta),
		Mark:       models.Float(mark),
	}
}

func classify(legs []models.OptionLeg) []models.Position {
	return NewClassifier(DefaultCriteria(), nil).Classify(legs)
}

func TestClassifySingleShortPut(t *testing.T) {
	positions := classify([]models.OptionLeg{
		leg(t, "SPY", "10/17/2025", 450.00, models.Put, -1, 40, -0.28, 3.10),
	})
	require.Len(t, positions, 1)
	assert.Equal(t, models.CashSecuredPut, positions[0].Strategy)
	require.Len(t, positions[0].Legs, 1)
	assert.True(t, positions[0].Legs[0].IsShort())
}

func TestClassifySingleShortCall(t *testing.T) {
	positions := classify([]models.OptionLeg{
		leg(t, "AAPL", "10/17/2025", 240.00, models.Call, -1, 30, 0.30, 2.40),
	})
	require.Len(t, positions, 1)
	assert.Equal(t, models.CoveredCall, positions[0].Strategy)
}

func TestClassifyVerticalBullPut(t *testing.T) {
	// Same symbol/expiration/type, opposite signs, long strike lower.
	positions := classify([]models.OptionLeg{
		leg(t, "SPY", "10/17/2025", 445.00, models.Put, 1, 40, -0.18, 1.80),
		leg(t, "SPY", "10/17/2025", 450.00, models.Put, -1, 40, -0.30, 3.10),
	})
	require.Len(t, positions, 1)
	pos := positions[0]
	assert.Equal(t, models.VerticalBullPut, pos.Strategy)
	require.Len(t, pos.Legs, 2)
	assert.Equal(t, 445.00, pos.LongLeg().Strike)
	assert.Equal(t, 450.00, pos.ShortLeg().Strike)
}

func TestClassifyVerticalVariants(t *testing.T) {
	tests := []struct {
		name       string
		typ        models.OptionType
		longStrike float64
		want       models.StrategyVariant
	}{
		{"bull call: long below short", models.Call, 440.00, models.VerticalBullCall},
		{"bear call: long above short", models.Call, 460.00, models.VerticalBearCall},
		{"bull put: long below short", models.Put, 440.00, models.VerticalBullPut},
		{"bear put: long above short", models.Put, 460.00, models.VerticalBearPut},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			positions := classify([]models.OptionLeg{
				leg(t, "SPY", "10/17/2025", tt.longStrike, tt.typ, 1, 40, 0.25, 2.00),
				leg(t, "SPY", "10/17/2025", 450.00, tt.typ, -1, 40, 0.35, 3.00),
			})
			require.Len(t, positions, 1)
			assert.Equal(t, tt.want, positions[0].Strategy)
		})
	}
}

func TestClassifyPMCC(t *testing.T) {
	positions := classify([]models.OptionLeg{
		leg(t, "QQQ", "06/18/2026", 400.00, models.Call, 1, 290, 0.78, 98.10),
		leg(t, "QQQ", "09/19/2025", 560.00, models.Call, -1, 35, -0.30, 2.50),
	})
	require.Len(t, positions, 1)
	pos := positions[0]
	assert.Equal(t, models.PoorMansCoveredCall, pos.Strategy)
	assert.Equal(t, 400.00, pos.LongLeg().Strike)
	assert.Equal(t, 560.00, pos.ShortLeg().Strike)
}

func TestPMCCLongPickMaximizesDTEThenDelta(t *testing.T) {
	positions := classify([]models.OptionLeg{
		leg(t, "QQQ", "01/15/2027", 380.00, models.Call, 1, 500, 0.70, 120.00),
		leg(t, "QQQ", "06/18/2026", 400.00, models.Call, 1, 290, 0.78, 98.10),
		leg(t, "QQQ", "09/19/2025", 560.00, models.Call, -1, 35, -0.30, 2.50),
	})
	require.Len(t, positions, 2)
	pmcc := positions[0]
	assert.Equal(t, models.PoorMansCoveredCall, pmcc.Strategy)
	// Longer DTE wins even with the smaller delta.
	assert.Equal(t, 380.00, pmcc.LongLeg().Strike)
	// The other LEAP is left over, unclassified.
	assert.Equal(t, models.Unclassified, positions[1].Strategy)
}

func TestPMCCShortPickClosestToTarget(t *testing.T) {
	// Both shorts are in the [7,60] window; 35 DTE / 0.35 delta is the target.
	positions := classify([]models.OptionLeg{
		leg(t, "QQQ", "06/18/2026", 400.00, models.Call, 1, 290, 0.78, 98.10),
		leg(t, "QQQ", "09/19/2025", 560.00, models.Call, -1, 35, -0.30, 2.50),
		leg(t, "QQQ", "10/17/2025", 570.00, models.Call, -1, 58, -0.20, 1.90),
	})
	require.Len(t, positions, 2)
	pmcc := positions[0]
	require.Equal(t, models.PoorMansCoveredCall, pmcc.Strategy)
	assert.Equal(t, 560.00, pmcc.ShortLeg().Strike)
	// The losing short becomes a covered call against assumed shares.
	assert.Equal(t, models.CoveredCall, positions[1].Strategy)
}

func TestPMCCGateLowDeltaLEAPFallsToDiagonal(t *testing.T) {
	// Long call with LEAP DTE but delta under the 0.65 gate: not a PMCC.
	positions := classify([]models.OptionLeg{
		leg(t, "QQQ", "06/18/2026", 520.00, models.Call, 1, 290, 0.48, 30.00),
		leg(t, "QQQ", "09/19/2025", 560.00, models.Call, -1, 35, -0.30, 2.50),
	})
	require.Len(t, positions, 1)
	assert.Equal(t, models.Diagonal, positions[0].Strategy)
}

func TestPMCCUnknownLongDeltaPasses(t *testing.T) {
	long := leg(t, "QQQ", "06/18/2026", 400.00, models.Call, 1, 290, 0, 98.10)
	long.Delta = nil
	positions := classify([]models.OptionLeg{
		long,
		leg(t, "QQQ", "09/19/2025", 560.00, models.Call, -1, 35, -0.30, 2.50),
	})
	require.Len(t, positions, 1)
	assert.Equal(t, models.PoorMansCoveredCall, positions[0].Strategy)
}

func TestClassifyIronCondor(t *testing.T) {
	positions := classify([]models.OptionLeg{
		leg(t, "SPX", "10/17/2025", 5400.00, models.Put, 1, 40, -0.10, 8.00),
		leg(t, "SPX", "10/17/2025", 5450.00, models.Put, -1, 40, -0.18, 12.50),
		leg(t, "SPX", "10/17/2025", 5800.00, models.Call, -1, 40, 0.17, 11.00),
		leg(t, "SPX", "10/17/2025", 5850.00, models.Call, 1, 40, 0.11, 7.20),
	})
	require.Len(t, positions, 1)
	pos := positions[0]
	assert.Equal(t, models.IronCondor, pos.Strategy)
	require.Len(t, pos.Legs, 4)
}

func TestDebitPairsDoNotFormCondor(t *testing.T) {
	// Put wing with short below long is a debit shape; condor needs credit
	// wings on both sides.
	positions := classify([]models.OptionLeg{
		leg(t, "SPX", "10/17/2025", 5450.00, models.Put, 1, 40, -0.18, 12.50),
		leg(t, "SPX", "10/17/2025", 5400.00, models.Put, -1, 40, -0.10, 8.00),
		leg(t, "SPX", "10/17/2025", 5800.00, models.Call, -1, 40, 0.17, 11.00),
		leg(t, "SPX", "10/17/2025", 5850.00, models.Call, 1, 40, 0.11, 7.20),
	})
	for _, pos := range positions {
		assert.NotEqual(t, models.IronCondor, pos.Strategy)
	}
}

func TestUnmatchedLegsReportedNotCoerced(t *testing.T) {
	// A lone long call is no known shape.
	positions := classify([]models.OptionLeg{
		leg(t, "TSLA", "10/17/2025", 300.00, models.Call, 1, 40, 0.45, 12.00),
	})
	require.Len(t, positions, 1)
	assert.Equal(t, models.Unclassified, positions[0].Strategy)
}

func TestShortLegSignInvariant(t *testing.T) {
	positions := classify([]models.OptionLeg{
		leg(t, "AAPL", "10/17/2025", 240.00, models.Call, -1, 30, 0.30, 2.40),
		leg(t, "SPY", "10/17/2025", 450.00, models.Put, -1, 40, -0.28, 3.10),
	})
	for _, pos := range positions {
		if pos.Strategy == models.CoveredCall || pos.Strategy == models.CashSecuredPut {
			assert.Len(t, pos.ShortLegs(), 1)
			assert.Empty(t, pos.LongLegs())
		}
	}
}

func TestClassifyIsDeterministic(t *testing.T) {
	legs := []models.OptionLeg{
		leg(t, "QQQ", "06/18/2026", 400.00, models.Call, 1, 290, 0.78, 98.10),
		leg(t, "QQQ", "09/19/2025", 560.00, models.Call, -1, 35, -0.30, 2.50),
		leg(t, "SPY", "10/17/2025", 445.00, models.Put, 1, 40, -0.18, 1.80),
		leg(t, "SPY", "10/17/2025", 450.00, models.Put, -1, 40, -0.30, 3.10),
		leg(t, "AAPL", "10/17/2025", 240.00, models.Call, -1, 30, 0.30, 2.40),
	}
	first := classify(legs)
	second := classify(legs)
	assert.Equal(t, first, second)

	// Symbols come out sorted, independent of input order.
	require.Len(t, first, 3)
	assert.Equal(t, "AAPL", first[0].Symbol)
	assert.Equal(t, "QQQ", first[1].Symbol)
	assert.Equal(t, "SPY", first[2].Symbol)
}
