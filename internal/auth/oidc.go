package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/bobmcallan/marketplay/internal/common"
	"github.com/bobmcallan/marketplay/internal/models"
	"github.com/coreos/go-oidc/v3/oidc"
)

// OIDCProvider verifies ID tokens issued by a generic OpenID Connect issuer.
type OIDCProvider struct {
	verifier *oidc.IDTokenVerifier
}

// NewOIDCProvider runs issuer discovery and returns a provider accepting
// tokens whose audience is clientID.
func NewOIDCProvider(ctx context.Context, cfg common.OIDCConfig) (*OIDCProvider, error) {
	if cfg.Issuer == "" || cfg.ClientID == "" {
		return nil, errors.New("oidc issuer and client_id are required")
	}
	provider, err := oidc.NewProvider(ctx, cfg.Issuer)
	if err != nil {
		return nil, fmt.Errorf("failed to discover oidc issuer %s: %w", cfg.Issuer, err)
	}
	return NewOIDCProviderWithVerifier(provider.Verifier(&oidc.Config{ClientID: cfg.ClientID})), nil
}

// NewOIDCProviderWithVerifier wraps an existing verifier.
func NewOIDCProviderWithVerifier(v *oidc.IDTokenVerifier) *OIDCProvider {
	return &OIDCProvider{verifier: v}
}

// Name implements TokenProvider.
func (p *OIDCProvider) Name() string { return common.ProviderOIDC }

// Verify implements TokenProvider.
func (p *OIDCProvider) Verify(ctx context.Context, rawToken string) (*models.Identity, error) {
	idToken, err := p.verifier.Verify(ctx, rawToken)
	if err != nil {
		return nil, err
	}

	var claims struct {
		Email   string `json:"email"`
		Name    string `json:"name"`
		Picture string `json:"picture"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return nil, fmt.Errorf("failed to decode claims: %w", err)
	}
	if idToken.Subject == "" {
		return nil, errors.New("token has an empty subject")
	}

	return &models.Identity{
		UID:     idToken.Subject,
		Email:   claims.Email,
		Name:    claims.Name,
		Picture: claims.Picture,
	}, nil
}
