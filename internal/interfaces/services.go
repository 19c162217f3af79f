package interfaces

import (
	"context"

	"github.com/bobmcallan/marketplay/internal/models"
)

// IdentityVerifier turns a raw Authorization header into a verified identity.
type IdentityVerifier interface {
	VerifyBearer(ctx context.Context, authorization string) (*models.Identity, error)

	// VerifyToken checks a bare token without the Bearer prefix.
	VerifyToken(ctx context.Context, token string) (*models.Identity, error)

	// Configured reports whether a real identity provider is active.
	Configured() bool

	// ProviderName names the active provider, or "dev" / "none" without one.
	ProviderName() string
}

// PortfolioService implements the authenticated portfolio operations.
// Each call takes the raw Authorization header of the request.
type PortfolioService interface {
	// Connect replaces the caller's holdings with the demo set and returns it.
	Connect(ctx context.Context, authorization string) ([]models.HoldingInput, error)

	// GetPortfolio returns the caller's stored holdings.
	GetPortfolio(ctx context.Context, authorization string) ([]*models.Holding, error)

	// ClearPortfolio removes all of the caller's holdings.
	ClearPortfolio(ctx context.Context, authorization string) error
}

// RiskService analyses the caller's portfolio and runs simulations.
type RiskService interface {
	// Analyze computes VaR, Sharpe, beta and correlations of the stored holdings.
	Analyze(ctx context.Context, authorization string) (*models.RiskReport, error)

	MonteCarlo(ctx context.Context, authorization string, req models.MonteCarloRequest) (*models.MonteCarloResult, error)

	Scenario(ctx context.Context, authorization string, req models.ScenarioRequest) (*models.ScenarioResult, error)
}
