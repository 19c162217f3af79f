package risk

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/bobmcallan/marketplay/internal/auth"
	"github.com/bobmcallan/marketplay/internal/common"
	"github.com/bobmcallan/marketplay/internal/models"
	"github.com/bobmcallan/marketplay/internal/services/portfolio"
	tcommon "github.com/bobmcallan/marketplay/tests/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const devHeader = "Bearer dev-token-xyz"

func testRiskConfig() common.RiskConfig {
	return common.NewDefaultConfig().Risk
}

func newTestService(t *testing.T) (*Service, *portfolio.Service, *tcommon.MockStorage) {
	t.Helper()
	store := tcommon.NewMockStorage()
	logger := common.NewSilentLogger()
	verifier := auth.NewVerifier(auth.Options{DevMode: true, DevToken: common.DefaultDevToken})
	portfolioService := portfolio.NewService(store, verifier, logger)
	svc := NewService(portfolioService, verifier, testRiskConfig(), logger)
	svc.now = func() time.Time { return time.Date(2026, 3, 2, 15, 0, 0, 0, time.UTC) }
	return svc, portfolioService, store
}

func TestAnalyze_DemoPortfolio(t *testing.T) {
	svc, portfolioService, store := newTestService(t)
	store.AddUser(auth.DevUID, auth.DevEmail)
	ctx := context.Background()

	_, err := portfolioService.Connect(ctx, devHeader)
	require.NoError(t, err)

	report, err := svc.Analyze(ctx, devHeader)
	require.NoError(t, err)

	require.Len(t, report.Assets, 3)
	assert.ElementsMatch(t, []string{"AAPL", "MSFT", "GOOGL"}, report.Assets)
	var sum float64
	for _, w := range report.Weights {
		assert.Greater(t, w, 0.0)
		sum += w
	}
	assert.InDelta(t, 1.0, sum, 1e-9)

	days := testRiskConfig().HistoryDays
	require.Len(t, report.PortfolioValues, days)
	require.Len(t, report.DailyReturns, days)
	assert.Equal(t, "2026-03-02", report.PortfolioValues[days-1].Date)
	assert.Equal(t, report.DailyReturns[0], report.PortfolioValues[0].Return)

	assert.Equal(t, 0.95, report.Metrics.Confidence)
	assert.Equal(t, "SPY", report.Metrics.BenchmarkTicker)
	assert.Less(t, report.Metrics.VaR, 0.0)
	assert.Less(t, report.Metrics.ParametricVaR, 0.0)
	assert.False(t, math.IsNaN(report.Metrics.Sharpe))
	assert.False(t, math.IsNaN(report.Metrics.Beta))

	require.Len(t, report.CorrelationMatrix, 3)
	for _, row := range report.CorrelationMatrix {
		assert.Equal(t, 1.0, row.Correlations[row.Asset])
		for other, c := range row.Correlations {
			assert.GreaterOrEqual(t, c, -1.0, other)
			assert.LessOrEqual(t, c, 1.0, other)
		}
	}

	again, err := svc.Analyze(ctx, devHeader)
	require.NoError(t, err)
	assert.Equal(t, report.Metrics, again.Metrics, "reports are deterministic for a fixed seed")
}

func TestAnalyze_WeightsMergeDuplicates(t *testing.T) {
	assets, weights := weightsOf([]*models.Holding{
		{Ticker: "AAPL", Quantity: 10},
		{Ticker: "MSFT", Quantity: 20},
		{Ticker: "AAPL", Quantity: 10},
		{Ticker: "TSLA", Quantity: 0},
	})

	assert.Equal(t, []string{"AAPL", "MSFT"}, assets)
	assert.InDeltaSlice(t, []float64{0.5, 0.5}, weights, 1e-9)
}

func TestAnalyze_EmptyPortfolio(t *testing.T) {
	svc, _, store := newTestService(t)
	store.AddUser(auth.DevUID, auth.DevEmail)

	report, err := svc.Analyze(context.Background(), devHeader)
	require.NoError(t, err)

	assert.Empty(t, report.Assets)
	assert.NotNil(t, report.Assets)
	assert.NotNil(t, report.CorrelationMatrix)
	assert.NotNil(t, report.PortfolioValues)
	assert.NotNil(t, report.DailyReturns)
	assert.Equal(t, 0.0, report.Metrics.VaR)
	assert.Equal(t, "SPY", report.Metrics.BenchmarkTicker)
}

func TestAnalyze_Errors(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Analyze(ctx, devHeader)
	assert.Equal(t, common.KindNotFound, common.KindOf(err))

	_, err = svc.Analyze(ctx, "")
	assert.Equal(t, common.KindUnauthenticated, common.KindOf(err))
}

func TestMonteCarlo_SeedIsReproducible(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	seed := uint64(11)
	req := models.MonteCarloRequest{InitialValue: 5000, Simulations: 100, Days: 20, Seed: &seed}

	first, err := svc.MonteCarlo(ctx, devHeader, req)
	require.NoError(t, err)
	second, err := svc.MonteCarlo(ctx, devHeader, req)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	require.Len(t, first.RepresentativePaths, 5)
	assert.Len(t, first.RepresentativePaths[0], 21)
	total := 0
	for _, d := range first.Distribution {
		total += d.Count
	}
	assert.Equal(t, 100, total)
}

func TestMonteCarlo_Defaults(t *testing.T) {
	svc, _, _ := newTestService(t)

	result, err := svc.MonteCarlo(context.Background(), devHeader, models.MonteCarloRequest{})
	require.NoError(t, err)

	require.NotEmpty(t, result.RepresentativePaths)
	assert.Len(t, result.RepresentativePaths[0], 253)
	assert.Equal(t, defaultInitialValue, result.RepresentativePaths[0][0])
	total := 0
	for _, d := range result.Distribution {
		total += d.Count
	}
	assert.Equal(t, testRiskConfig().DefaultSimulations, total)
}

func TestMonteCarlo_Validation(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		name string
		req  models.MonteCarloRequest
	}{
		{"negative value", models.MonteCarloRequest{InitialValue: -1}},
		{"too many simulations", models.MonteCarloRequest{Simulations: 10001}},
		{"negative simulations", models.MonteCarloRequest{Simulations: -5}},
		{"too many days", models.MonteCarloRequest{Days: 100000}},
		{"non-finite return", models.MonteCarloRequest{Returns: []float64{0.01, math.Inf(1)}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.MonteCarlo(ctx, devHeader, tt.req)
			require.Error(t, err)
			assert.Equal(t, common.KindInvalidRequest, common.KindOf(err))
		})
	}

	_, err := svc.MonteCarlo(ctx, "Bearer wrong", models.MonteCarloRequest{})
	assert.Equal(t, common.KindUnauthenticated, common.KindOf(err))
}

func TestMonteCarlo_CancelledContext(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.MonteCarlo(ctx, devHeader, models.MonteCarloRequest{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestScenario(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	beta := 1.2

	result, err := svc.Scenario(ctx, devHeader, models.ScenarioRequest{DropPercentage: 20, CurrentValue: 50000})
	require.NoError(t, err)
	assert.InDelta(t, 40000, result.ImpactValue, 1e-9)
	assert.InDelta(t, 10000, result.DollarLoss, 1e-9)

	result, err = svc.Scenario(ctx, devHeader, models.ScenarioRequest{DropPercentage: 10, Beta: &beta})
	require.NoError(t, err)
	assert.InDelta(t, 8800, result.ImpactValue, 1e-9)
	assert.InDelta(t, 1200, result.DollarLoss, 1e-9)
}

func TestScenario_Validation(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	nan := math.NaN()

	for name, req := range map[string]models.ScenarioRequest{
		"drop above 100":  {DropPercentage: 150},
		"negative drop":   {DropPercentage: -1},
		"negative value":  {DropPercentage: 10, CurrentValue: -100},
		"non-finite beta": {DropPercentage: 10, Beta: &nan},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Scenario(ctx, devHeader, req)
			assert.Equal(t, common.KindInvalidRequest, common.KindOf(err))
		})
	}

	_, err := svc.Scenario(ctx, "", models.ScenarioRequest{DropPercentage: 10})
	assert.Equal(t, common.KindUnauthenticated, common.KindOf(err))
}
