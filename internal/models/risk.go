package models

// RiskReport is the risk analysis of a user's stored holdings over a
// simulated year of daily prices.
type RiskReport struct {
	Assets            []string         `json:"assets"`
	Weights           []float64        `json:"weights"`
	Metrics           RiskMetrics      `json:"metrics"`
	CorrelationMatrix []CorrelationRow `json:"correlation_matrix"`
	PortfolioValues   []PortfolioPoint `json:"portfolio_values"`
	DailyReturns      []float64        `json:"daily_returns"`
}

// RiskMetrics holds the headline statistics of a RiskReport.
type RiskMetrics struct {
	Confidence      float64 `json:"confidence"`
	VaR             float64 `json:"var"`
	ParametricVaR   float64 `json:"parametric_var"`
	Sharpe          float64 `json:"sharpe"`
	Beta            float64 `json:"beta"`
	BenchmarkTicker string  `json:"benchmark"`
}

// CorrelationRow is one row of the asset correlation matrix.
type CorrelationRow struct {
	Asset        string             `json:"asset"`
	Correlations map[string]float64 `json:"correlations"`
}

// PortfolioPoint is the portfolio value at the close of one day.
type PortfolioPoint struct {
	Date   string  `json:"date"`
	Value  float64 `json:"value"`
	Return float64 `json:"return"`
}

// MonteCarloRequest configures a simulation. Zero values take defaults.
type MonteCarloRequest struct {
	InitialValue float64   `json:"initial_value"`
	Returns      []float64 `json:"returns"`
	Simulations  int       `json:"num_simulations"`
	Days         int       `json:"days"`
	Seed         *uint64   `json:"seed,omitempty"`
}

// MonteCarloResult summarises the simulated end values.
type MonteCarloResult struct {
	ExpectedValue       float64             `json:"expected_value"`
	WorstCase5          float64             `json:"worst_case_5"`
	WorstCase1          float64             `json:"worst_case_1"`
	BestCase95          float64             `json:"best_case_95"`
	RepresentativePaths [][]float64         `json:"representative_paths"`
	Distribution        []DistributionPoint `json:"distribution"`
}

// DistributionPoint is one histogram bar of simulated end values.
type DistributionPoint struct {
	Value float64 `json:"value"`
	Count int     `json:"count"`
}

// ScenarioRequest describes a market drop applied to a portfolio value.
type ScenarioRequest struct {
	DropPercentage float64  `json:"drop_percentage"`
	CurrentValue   float64  `json:"current_value"`
	Beta           *float64 `json:"beta,omitempty"`
}

// ScenarioResult is the portfolio value after a ScenarioRequest.
type ScenarioResult struct {
	ImpactValue float64 `json:"impact_value"`
	DollarLoss  float64 `json:"dollar_loss"`
}
