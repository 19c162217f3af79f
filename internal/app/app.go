// Package app wires configuration, storage, identity verification and
// services into the core shared by the marketplay binaries.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bobmcallan/marketplay/internal/auth"
	"github.com/bobmcallan/marketplay/internal/common"
	"github.com/bobmcallan/marketplay/internal/interfaces"
	"github.com/bobmcallan/marketplay/internal/services/portfolio"
	"github.com/bobmcallan/marketplay/internal/services/risk"
	"github.com/bobmcallan/marketplay/internal/storage"
)

// App holds all initialized services and storage.
type App struct {
	Config           *common.Config
	Logger           *common.Logger
	Storage          interfaces.StorageManager
	Verifier         interfaces.IdentityVerifier
	PortfolioService interfaces.PortfolioService
	RiskService      interfaces.RiskService
	StartupTime      time.Time
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// ResolveConfig loads configuration from configPath, MARKETPLAY_CONFIG, the
// binary directory, then config/marketplay.toml, in that order.
func ResolveConfig(configPath string) (*common.Config, error) {
	// Load version from .version file (fallback if ldflags not set)
	common.LoadVersionFromFile()

	if configPath == "" {
		configPath = os.Getenv("MARKETPLAY_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join(getBinaryDir(), "marketplay.toml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = "config/marketplay.toml" // fallback for development
		}
	}

	config, err := common.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return config, nil
}

// NewApp loads configuration and initializes storage, the identity verifier
// and services. configPath may be empty.
func NewApp(ctx context.Context, configPath string) (*App, error) {
	startupStart := time.Now()

	config, err := ResolveConfig(configPath)
	if err != nil {
		return nil, err
	}

	logger := common.NewLoggerFromConfig(config.Logging)

	storageManager, err := storage.NewStorageManager(ctx, logger, config)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	if err := storageManager.Migrate(ctx); err != nil {
		storageManager.Close()
		return nil, fmt.Errorf("failed to migrate storage: %w", err)
	}

	provider, err := NewIdentityProvider(ctx, config, logger)
	if err != nil {
		storageManager.Close()
		return nil, fmt.Errorf("failed to initialize identity provider: %w", err)
	}

	a := New(config, logger, storageManager, provider)

	logger.Info().
		Str("storage", storageManager.Backend()).
		Str("identity_provider", a.Verifier.ProviderName()).
		Dur("startup", time.Since(startupStart)).
		Msg("Application initialized")

	return a, nil
}

// New assembles an App from already constructed parts. A nil provider leaves
// identity verification unconfigured.
func New(config *common.Config, logger *common.Logger, storageManager interfaces.StorageManager, provider auth.TokenProvider) *App {
	verifier := auth.NewVerifier(auth.Options{
		Provider: provider,
		DevMode:  config.DevMode(),
		DevToken: config.Auth.DevToken,
		Logger:   logger,
	})

	portfolioService := portfolio.NewService(storageManager, verifier, logger)

	return &App{
		Config:           config,
		Logger:           logger,
		Storage:          storageManager,
		Verifier:         verifier,
		PortfolioService: portfolioService,
		RiskService:      risk.NewService(portfolioService, verifier, config.Risk, logger),
		StartupTime:      time.Now(),
	}
}

// NewIdentityProvider builds the configured token provider. It returns a nil
// provider, and no error, when Firebase credentials are absent so that the
// development fallback can apply.
func NewIdentityProvider(ctx context.Context, config *common.Config, logger *common.Logger) (auth.TokenProvider, error) {
	switch config.Auth.Provider {
	case common.ProviderOIDC:
		p, err := auth.NewOIDCProvider(ctx, config.Auth.OIDC)
		if err != nil {
			return nil, err
		}
		logger.Info().Str("issuer", config.Auth.OIDC.Issuer).Msg("OIDC identity provider initialized")
		return p, nil

	case common.ProviderFirebase, "":
		p, err := auth.NewFirebaseProviderFromConfig(config.Auth.Firebase, logger)
		if errors.Is(err, auth.ErrFirebaseUnconfigured) {
			event := logger.Warn().Str("credentials_file", config.Auth.Firebase.CredentialsFile)
			if config.DevMode() {
				event.Msg("Firebase not configured - development token fallback enabled")
			} else {
				event.Msg("Firebase not configured - all authenticated requests will be rejected")
			}
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		logger.Info().Str("project_id", p.ProjectID()).Msg("Firebase identity provider initialized")
		return p, nil

	default:
		return nil, fmt.Errorf("unknown auth provider: %s", config.Auth.Provider)
	}
}

// Close releases storage, then the log file.
func (a *App) Close() {
	if a.Storage != nil {
		if err := a.Storage.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close storage")
		}
	}
	if err := a.Logger.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to close log file: %v\n", err)
	}
}
