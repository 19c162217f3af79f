// Package portfolio implements the authenticated portfolio operations:
// verify the caller, resolve the local user, then run one store operation.
package portfolio

import (
	"context"

	"github.com/bobmcallan/marketplay/internal/common"
	"github.com/bobmcallan/marketplay/internal/interfaces"
	"github.com/bobmcallan/marketplay/internal/models"
)

// Service implements PortfolioService
type Service struct {
	storage  interfaces.StorageManager
	verifier interfaces.IdentityVerifier
	logger   *common.Logger
}

// NewService creates a new portfolio service
func NewService(storage interfaces.StorageManager, verifier interfaces.IdentityVerifier, logger *common.Logger) *Service {
	return &Service{
		storage:  storage,
		verifier: verifier,
		logger:   logger,
	}
}

// resolveUser authenticates the caller and loads the matching local user.
func (s *Service) resolveUser(ctx context.Context, authorization string) (*models.User, error) {
	identity, err := s.verifier.VerifyBearer(ctx, authorization)
	if err != nil {
		return nil, err
	}
	user, err := s.storage.UserStore().GetUserBySubject(ctx, identity.UID)
	if err != nil {
		if common.KindOf(err) == common.KindNotFound {
			s.logger.Info().Str("uid", identity.UID).Msg("Authenticated caller has no local user")
		}
		return nil, err
	}
	return user, nil
}

// Connect installs the demo holdings for the caller, replacing any existing ones.
func (s *Service) Connect(ctx context.Context, authorization string) ([]models.HoldingInput, error) {
	user, err := s.resolveUser(ctx, authorization)
	if err != nil {
		return nil, err
	}

	assets := models.DemoHoldings()
	if _, err := s.storage.HoldingStore().ReplaceAll(ctx, user.ID, assets); err != nil {
		s.logger.Error().Err(err).Int64("user_id", user.ID).Msg("Failed to replace holdings")
		return nil, err
	}

	s.logger.Info().Int64("user_id", user.ID).Int("holdings", len(assets)).Msg("Portfolio connected")
	return assets, nil
}

// GetPortfolio returns the caller's holdings. It is never nil on success.
func (s *Service) GetPortfolio(ctx context.Context, authorization string) ([]*models.Holding, error) {
	user, err := s.resolveUser(ctx, authorization)
	if err != nil {
		return nil, err
	}

	holdings, err := s.storage.HoldingStore().ListAll(ctx, user.ID)
	if err != nil {
		s.logger.Error().Err(err).Int64("user_id", user.ID).Msg("Failed to list holdings")
		return nil, err
	}
	if holdings == nil {
		holdings = []*models.Holding{}
	}
	return holdings, nil
}

// ClearPortfolio removes all of the caller's holdings.
func (s *Service) ClearPortfolio(ctx context.Context, authorization string) error {
	user, err := s.resolveUser(ctx, authorization)
	if err != nil {
		return err
	}

	n, err := s.storage.HoldingStore().DeleteAll(ctx, user.ID)
	if err != nil {
		s.logger.Error().Err(err).Int64("user_id", user.ID).Msg("Failed to delete holdings")
		return err
	}

	s.logger.Info().Int64("user_id", user.ID).Int64("deleted", n).Msg("Portfolio disconnected")
	return nil
}

var _ interfaces.PortfolioService = (*Service)(nil)
