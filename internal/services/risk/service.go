// Package risk analyses stored portfolios and runs what-if simulations.
package risk

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/bobmcallan/marketplay/internal/common"
	"github.com/bobmcallan/marketplay/internal/interfaces"
	"github.com/bobmcallan/marketplay/internal/models"
	"github.com/bobmcallan/marketplay/internal/riskengine"
)

const (
	defaultInitialValue = 10000.0
	dateLayout          = "2006-01-02"
)

// Service implements RiskService
type Service struct {
	portfolio interfaces.PortfolioService
	verifier  interfaces.IdentityVerifier
	config    common.RiskConfig
	logger    *common.Logger
	now       func() time.Time
}

// NewService creates a new risk service
func NewService(portfolio interfaces.PortfolioService, verifier interfaces.IdentityVerifier, config common.RiskConfig, logger *common.Logger) *Service {
	return &Service{
		portfolio: portfolio,
		verifier:  verifier,
		config:    config,
		logger:    logger,
		now:       time.Now,
	}
}

// Analyze computes the risk report of the caller's stored holdings. An empty
// portfolio yields an empty report with zero metrics.
func (s *Service) Analyze(ctx context.Context, authorization string) (*models.RiskReport, error) {
	holdings, err := s.portfolio.GetPortfolio(ctx, authorization)
	if err != nil {
		return nil, err
	}

	assets, weights := weightsOf(holdings)
	report := &models.RiskReport{
		Assets:            assets,
		Weights:           weights,
		Metrics:           models.RiskMetrics{Confidence: s.config.Confidence, BenchmarkTicker: s.config.Benchmark},
		CorrelationMatrix: []models.CorrelationRow{},
		PortfolioValues:   []models.PortfolioPoint{},
		DailyReturns:      []float64{},
	}
	if len(assets) == 0 {
		return report, nil
	}

	days := s.config.HistoryDays
	prices := make([][]float64, len(assets))
	assetReturns := make([][]float64, len(assets))
	for i, ticker := range assets {
		prices[i] = riskengine.MockPrices(s.config.Seed, ticker, days)
		assetReturns[i] = riskengine.DailyReturns(prices[i])
	}
	benchmark := riskengine.DailyReturns(riskengine.MockPrices(s.config.Seed, s.config.Benchmark, days))

	values, returns := riskengine.PortfolioHistory(weights, prices)

	report.DailyReturns = returns
	report.Metrics.VaR = riskengine.HistoricalVaR(returns, s.config.Confidence)
	report.Metrics.ParametricVaR = riskengine.ParametricVaR(returns, s.config.Confidence)
	report.Metrics.Sharpe = riskengine.SharpeRatio(returns, s.config.RiskFreeRate)
	report.Metrics.Beta = riskengine.Beta(returns, benchmark)

	end := s.now().UTC()
	for i, v := range values {
		report.PortfolioValues = append(report.PortfolioValues, models.PortfolioPoint{
			Date:   end.AddDate(0, 0, i+1-days).Format(dateLayout),
			Value:  v,
			Return: returns[i],
		})
	}

	matrix := riskengine.CorrelationMatrix(assetReturns)
	for i, ticker := range assets {
		row := models.CorrelationRow{Asset: ticker, Correlations: make(map[string]float64, len(assets))}
		for j, other := range assets {
			row.Correlations[other] = matrix[i][j]
		}
		report.CorrelationMatrix = append(report.CorrelationMatrix, row)
	}

	s.logger.Debug().
		Int("assets", len(assets)).
		Float64("var", report.Metrics.VaR).
		Float64("sharpe", report.Metrics.Sharpe).
		Msg("Risk report computed")
	return report, nil
}

// weightsOf merges duplicate tickers and weights each by its share of the
// total quantity. Every mock series starts at the same price, so quantity
// share equals value share on day one.
func weightsOf(holdings []*models.Holding) ([]string, []float64) {
	assets := []string{}
	quantities := []float64{}
	index := map[string]int{}
	var total float64
	for _, h := range holdings {
		if h.Quantity <= 0 {
			continue
		}
		i, ok := index[h.Ticker]
		if !ok {
			i = len(assets)
			index[h.Ticker] = i
			assets = append(assets, h.Ticker)
			quantities = append(quantities, 0)
		}
		quantities[i] += h.Quantity
		total += h.Quantity
	}
	for i := range quantities {
		quantities[i] /= total
	}
	return assets, quantities
}

// MonteCarlo simulates the value of a portfolio calibrated on the given
// daily returns.
func (s *Service) MonteCarlo(ctx context.Context, authorization string, req models.MonteCarloRequest) (*models.MonteCarloResult, error) {
	if _, err := s.verifier.VerifyBearer(ctx, authorization); err != nil {
		return nil, err
	}

	params := riskengine.SimulationParams{
		InitialValue: req.InitialValue,
		Returns:      req.Returns,
		Simulations:  req.Simulations,
		Days:         req.Days,
	}
	if params.InitialValue == 0 {
		params.InitialValue = defaultInitialValue
	}
	if params.Simulations == 0 {
		params.Simulations = s.config.DefaultSimulations
	}
	if params.Days == 0 {
		params.Days = riskengine.TradingDays
	}
	if req.Seed != nil {
		params.Seed = *req.Seed
	} else {
		params.Seed = rand.Uint64()
	}

	switch {
	case !finite(params.InitialValue) || params.InitialValue < 0:
		return nil, common.InvalidRequest("initial_value must be a non-negative number")
	case params.Simulations < 0 || params.Simulations > s.config.MaxSimulations:
		return nil, common.InvalidRequest(fmt.Sprintf("num_simulations must be between 1 and %d", s.config.MaxSimulations))
	case params.Days < 0 || params.Days > s.config.MaxDays:
		return nil, common.InvalidRequest(fmt.Sprintf("days must be between 1 and %d", s.config.MaxDays))
	}
	for _, r := range params.Returns {
		if !finite(r) {
			return nil, common.InvalidRequest("returns must be finite numbers")
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sim := riskengine.MonteCarlo(params)
	result := &models.MonteCarloResult{
		ExpectedValue:       sim.ExpectedValue,
		WorstCase5:          sim.WorstCase5,
		WorstCase1:          sim.WorstCase1,
		BestCase95:          sim.BestCase95,
		RepresentativePaths: sim.Paths,
		Distribution:        make([]models.DistributionPoint, 0, len(sim.Distribution)),
	}
	for _, b := range sim.Distribution {
		result.Distribution = append(result.Distribution, models.DistributionPoint{Value: b.Value, Count: b.Count})
	}
	return result, nil
}

// Scenario applies a market drop to a portfolio value, scaled by beta
// (1 when absent).
func (s *Service) Scenario(ctx context.Context, authorization string, req models.ScenarioRequest) (*models.ScenarioResult, error) {
	if _, err := s.verifier.VerifyBearer(ctx, authorization); err != nil {
		return nil, err
	}

	value := req.CurrentValue
	if value == 0 {
		value = defaultInitialValue
	}
	beta := 1.0
	if req.Beta != nil {
		beta = *req.Beta
	}

	switch {
	case !finite(value) || value < 0:
		return nil, common.InvalidRequest("current_value must be a non-negative number")
	case !finite(req.DropPercentage) || req.DropPercentage < 0 || req.DropPercentage > 100:
		return nil, common.InvalidRequest("drop_percentage must be between 0 and 100")
	case !finite(beta):
		return nil, common.InvalidRequest("beta must be a finite number")
	}

	impact, loss := riskengine.Scenario(value, req.DropPercentage, beta)
	return &models.ScenarioResult{ImpactValue: impact, DollarLoss: loss}, nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
