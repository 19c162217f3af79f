// Package auth verifies bearer credentials against the configured identity provider.
package auth

import (
	"context"
	"crypto/subtle"
	"strings"

	"github.com/bobmcallan/marketplay/internal/common"
	"github.com/bobmcallan/marketplay/internal/interfaces"
	"github.com/bobmcallan/marketplay/internal/models"
)

const bearerPrefix = "Bearer "

// Fixed identity returned for the development sentinel token.
const (
	DevUID   = "test_user_123"
	DevEmail = "test@marketplay.ai"
)

// TokenProvider verifies a raw token with an external identity provider.
type TokenProvider interface {
	Name() string
	Verify(ctx context.Context, rawToken string) (*models.Identity, error)
}

// Options configures a Verifier. A nil Provider means no identity provider
// is configured; DevToken is then honoured only when DevMode is set.
type Options struct {
	Provider TokenProvider
	DevMode  bool
	DevToken string
	Logger   *common.Logger
}

// Verifier is the identity verifier used by every authenticated operation.
// It holds no mutable state and is safe for concurrent use.
type Verifier struct {
	provider TokenProvider
	devMode  bool
	devToken string
	logger   *common.Logger
}

// NewVerifier creates a Verifier from opts.
func NewVerifier(opts Options) *Verifier {
	logger := opts.Logger
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	return &Verifier{
		provider: opts.Provider,
		devMode:  opts.DevMode,
		devToken: opts.DevToken,
		logger:   logger,
	}
}

// VerifyBearer checks the Authorization header format and verifies the token it carries.
func (v *Verifier) VerifyBearer(ctx context.Context, authorization string) (*models.Identity, error) {
	if !strings.HasPrefix(authorization, bearerPrefix) {
		return nil, common.Unauthenticated("Invalid authorization header", nil)
	}
	// The token is the first space-delimited field after the prefix, so
	// "Bearer  tok" carries an empty token.
	token, _, _ := strings.Cut(strings.TrimPrefix(authorization, bearerPrefix), " ")
	if token == "" {
		return nil, common.Unauthenticated("Invalid authorization header", nil)
	}
	return v.VerifyToken(ctx, token)
}

// VerifyToken verifies a bare token.
func (v *Verifier) VerifyToken(ctx context.Context, token string) (*models.Identity, error) {
	if token == "" {
		return nil, common.Unauthenticated("Token is required", nil)
	}

	if v.provider == nil {
		if v.devMode && v.devToken != "" &&
			subtle.ConstantTimeCompare([]byte(token), []byte(v.devToken)) == 1 {
			v.logger.Debug().Str("uid", DevUID).Msg("Development token accepted")
			return &models.Identity{UID: DevUID, Email: DevEmail}, nil
		}
		return nil, common.Unauthenticated("Identity provider not initialized", nil)
	}

	identity, err := v.provider.Verify(ctx, token)
	if err != nil {
		v.logger.Debug().Err(err).Str("provider", v.provider.Name()).Msg("Token rejected")
		return nil, common.Unauthenticated("Invalid token: "+err.Error(), err)
	}
	return identity, nil
}

// Configured reports whether a real identity provider is active.
func (v *Verifier) Configured() bool {
	return v.provider != nil
}

// ProviderName names the active provider.
func (v *Verifier) ProviderName() string {
	switch {
	case v.provider != nil:
		return v.provider.Name()
	case v.devMode:
		return "dev"
	default:
		return "none"
	}
}

var _ interfaces.IdentityVerifier = (*Verifier)(nil)
