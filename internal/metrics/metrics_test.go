package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eddiefleurent/paper_tickets/internal/models"
)

func callLeg(strike float64, qty int, mark, delta *float64, dte *int) *models.OptionLeg {
	return &models.OptionLeg{
		Symbol:     "QQQ",
		Expiration: time.Date(2026, 6, 18, 0, 0, 0, 0, time.UTC),
		Strike:     strike,
		Type:       models.Call,
		Quantity:   qty,
		Mark:       mark,
		Delta:      delta,
		DTE:        dte,
	}
}

func TestExtrinsicCall(t *testing.T) {
	// Mark 98.10, last 485.20, strike 400: intrinsic 85.20, extrinsic 12.90.
	leg := callLeg(400, 1, models.Float(98.10), nil, nil)
	got := Extrinsic(leg, models.Float(485.20))
	require.NotNil(t, got)
	assert.InDelta(t, 12.90, *got, 1e-9)
}

func TestExtrinsicFlooredAtZero(t *testing.T) {
	// Deep ITM with a stale mark below intrinsic.
	leg := callLeg(400, 1, models.Float(80.00), nil, nil)
	got := Extrinsic(leg, models.Float(485.20))
	require.NotNil(t, got)
	assert.Equal(t, 0.0, *got)
}

func TestExtrinsicPut(t *testing.T) {
	leg := &models.OptionLeg{Strike: 450, Type: models.Put, Mark: models.Float(8.00)}
	got := Extrinsic(leg, models.Float(445.00))
	require.NotNil(t, got)
	assert.InDelta(t, 3.00, *got, 1e-9) // intrinsic 5.00
}

func TestExtrinsicNilPropagation(t *testing.T) {
	leg := callLeg(400, 1, nil, nil, nil)
	assert.Nil(t, Extrinsic(leg, models.Float(485.20)))
	leg.Mark = models.Float(98.10)
	assert.Nil(t, Extrinsic(leg, nil))
	assert.Nil(t, Extrinsic(nil, models.Float(485.20)))
}

func TestCyclesLeft(t *testing.T) {
	tests := []struct {
		name string
		dte  *int
		want int
	}{
		{"nil DTE", nil, 0},
		{"under reserve", models.Int(15), 0},
		{"exactly reserve", models.Int(21), 0},
		{"one cycle", models.Int(51), 1},
		{"290 days", models.Int(290), 8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CyclesLeft(tt.dte))
		})
	}
}

func TestCoverageCheck(t *testing.T) {
	// Extrinsic 12.90 over 8 cycles requires ~1.61/cycle; a 2.50 short
	// clears the 80% bar.
	cov := CoverageCheck(models.Float(12.90), models.Int(290), models.Float(2.50))
	require.NotNil(t, cov.OK)
	assert.True(t, *cov.OK)
	require.NotNil(t, cov.RequiredPer30D)
	assert.InDelta(t, 12.90/8, *cov.RequiredPer30D, 1e-9)
	assert.Equal(t, 8, cov.Cycles)
}

func TestCoverageCheckInsufficient(t *testing.T) {
	cov := CoverageCheck(models.Float(12.90), models.Int(290), models.Float(0.50))
	require.NotNil(t, cov.OK)
	assert.False(t, *cov.OK)
}

func TestCoverageZeroCyclesIsFullyCovered(t *testing.T) {
	cov := CoverageCheck(models.Float(5.00), models.Int(20), nil)
	require.NotNil(t, cov.OK)
	assert.True(t, *cov.OK)
	require.NotNil(t, cov.RequiredPer30D)
	assert.Equal(t, 0.0, *cov.RequiredPer30D)
	assert.Equal(t, 0, cov.Cycles)
}

func TestCoverageMissingInputs(t *testing.T) {
	cov := CoverageCheck(nil, models.Int(290), models.Float(2.50))
	assert.Nil(t, cov.OK)
	assert.Nil(t, cov.RequiredPer30D)
}

func TestPOPProxy(t *testing.T) {
	got := POPProxy(models.Float(-0.30))
	require.NotNil(t, got)
	assert.InDelta(t, 0.70, *got, 1e-9)
	assert.Nil(t, POPProxy(nil))
}

func TestBreakevens(t *testing.T) {
	be := BreakevenShortPut(450, models.Float(3.10))
	require.NotNil(t, be)
	assert.InDelta(t, 446.90, *be, 1e-9)

	cc := BreakevenCoveredCall(models.Float(230.49), models.Float(2.40))
	require.NotNil(t, cc)
	assert.InDelta(t, 228.09, *cc, 1e-9)

	assert.Nil(t, BreakevenShortPut(450, nil))
	assert.Nil(t, BreakevenCoveredCall(nil, models.Float(2.40)))
}

func TestCollateralAndROC(t *testing.T) {
	assert.Equal(t, 45000.0, CollateralGross(450))

	net := CollateralNet(450, models.Float(3.10))
	require.NotNil(t, net)
	assert.InDelta(t, 44690.0, *net, 1e-9)

	roc := ROC(models.Float(3.10), net)
	require.NotNil(t, roc)
	assert.InDelta(t, 310.0/44690.0, *roc, 1e-9)

	assert.Nil(t, ROC(models.Float(3.10), nil))
	assert.Nil(t, ROC(nil, net))
}

func TestAnnualizeGuardsDTE(t *testing.T) {
	ret := models.Float(0.007)
	got := Annualize(ret, models.Int(40))
	require.NotNil(t, got)
	assert.InDelta(t, 0.007*365/40, *got, 1e-9)

	assert.Nil(t, Annualize(ret, models.Int(0)))
	assert.Nil(t, Annualize(ret, nil))
	assert.Nil(t, Annualize(nil, models.Int(40)))
}

func TestComputeVerticalBullPut(t *testing.T) {
	long := &models.OptionLeg{Strike: 445, Type: models.Put, Quantity: 1, Mark: models.Float(1.80), Delta: models.Float(-0.18)}
	short := &models.OptionLeg{Strike: 450, Type: models.Put, Quantity: -1, Mark: models.Float(3.10), Delta: models.Float(-0.30)}

	econ := ComputeVertical(models.VerticalBullPut, long, short, models.Float(455.00))
	assert.Equal(t, 5.0, econ.Width)
	require.NotNil(t, econ.Credit)
	assert.InDelta(t, 1.30, *econ.Credit, 1e-9) // short.mark - long.mark
	require.NotNil(t, econ.Breakeven)
	assert.InDelta(t, 448.70, *econ.Breakeven, 1e-9)
	require.NotNil(t, econ.Threatened)
	assert.False(t, *econ.Threatened)
	require.NotNil(t, econ.CreditOverWidth)
	assert.InDelta(t, 0.26, *econ.CreditOverWidth, 1e-9)
}

func TestComputeVerticalBullCallDebit(t *testing.T) {
	long := &models.OptionLeg{Strike: 440, Type: models.Call, Quantity: 1, Mark: models.Float(14.00), Delta: models.Float(0.60)}
	short := &models.OptionLeg{Strike: 450, Type: models.Call, Quantity: -1, Mark: models.Float(8.50), Delta: models.Float(0.42)}

	econ := ComputeVertical(models.VerticalBullCall, long, short, models.Float(448.00))
	require.NotNil(t, econ.Debit)
	assert.InDelta(t, 5.50, *econ.Debit, 1e-9)
	require.NotNil(t, econ.Breakeven)
	assert.InDelta(t, 445.50, *econ.Breakeven, 1e-9)
	require.NotNil(t, econ.RemainToMax)
	assert.InDelta(t, 4.50, *econ.RemainToMax, 1e-9)
}

func TestComputeVerticalMissingMarks(t *testing.T) {
	long := &models.OptionLeg{Strike: 440, Type: models.Call, Quantity: 1}
	short := &models.OptionLeg{Strike: 450, Type: models.Call, Quantity: -1}
	econ := ComputeVertical(models.VerticalBullCall, long, short, nil)
	assert.Equal(t, 10.0, econ.Width)
	assert.Nil(t, econ.SpreadMid)
	assert.Nil(t, econ.Debit)
	assert.Nil(t, econ.Breakeven)
	assert.Nil(t, econ.Threatened)
}

func TestComputeCondor(t *testing.T) {
	pos := &models.Position{Symbol: "SPX", Strategy: models.IronCondor, Legs: []models.OptionLeg{
		{Strike: 5400, Type: models.Put, Quantity: 1, Mark: models.Float(8.00)},
		{Strike: 5450, Type: models.Put, Quantity: -1, Mark: models.Float(12.50)},
		{Strike: 5800, Type: models.Call, Quantity: -1, Mark: models.Float(11.00)},
		{Strike: 5850, Type: models.Call, Quantity: 1, Mark: models.Float(7.20)},
	}}
	econ := ComputeCondor(pos, models.Float(5600.00))
	require.NotNil(t, econ.NetCredit)
	assert.InDelta(t, 8.30, *econ.NetCredit, 1e-9) // 4.50 + 3.80
	assert.Equal(t, 50.0, econ.WorstWidth)
	require.NotNil(t, econ.MaxLoss)
	assert.InDelta(t, 41.70, *econ.MaxLoss, 1e-9)
	require.NotNil(t, econ.PutWing.Threatened)
	assert.False(t, *econ.PutWing.Threatened)
}

func TestComputeSummaryCSP(t *testing.T) {
	pos := &models.Position{Symbol: "SPY", Strategy: models.CashSecuredPut, Legs: []models.OptionLeg{
		{Strike: 450, Type: models.Put, Quantity: -1, Mark: models.Float(3.10), Delta: models.Float(-0.28), DTE: models.Int(40)},
	}}
	s := Compute(pos, models.Underlying{Symbol: "SPY", Last: models.Float(455.00)})
	require.NotNil(t, s.Breakeven)
	assert.InDelta(t, 446.90, *s.Breakeven, 1e-9)
	require.NotNil(t, s.POPProxy)
	assert.InDelta(t, 0.72, *s.POPProxy, 1e-9)
	require.NotNil(t, s.AnnualizedROC)
	require.NotNil(t, s.ShortGTCBasis)
	assert.Equal(t, 3.10, *s.ShortGTCBasis)
}

func TestComputeSummaryTotalOnMissingFields(t *testing.T) {
	pos := &models.Position{Symbol: "SPY", Strategy: models.CashSecuredPut, Legs: []models.OptionLeg{
		{Strike: 450, Type: models.Put, Quantity: -1},
	}}
	s := Compute(pos, models.Underlying{Symbol: "SPY"})
	assert.Nil(t, s.Breakeven)
	assert.Nil(t, s.POPProxy)
	assert.Nil(t, s.ROC)
	assert.Nil(t, s.AnnualizedROC)
	assert.Nil(t, s.ShortGTCBasis)
	require.NotNil(t, s.CollateralGross)
	assert.Equal(t, 45000.0, *s.CollateralGross)
}
