package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/bobmcallan/marketplay/internal/auth"
	"github.com/bobmcallan/marketplay/internal/common"
	tcommon "github.com/bobmcallan/marketplay/tests/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIdentityProvider_FirebaseUnconfigured(t *testing.T) {
	cfg := common.NewDefaultConfig()
	cfg.Auth.Firebase.CredentialsFile = filepath.Join(t.TempDir(), "missing.json")

	p, err := NewIdentityProvider(context.Background(), cfg, common.NewSilentLogger())
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestNewIdentityProvider_FirebaseFromCredentials(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sa.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"project_id":"demo-project"}`), 0600))

	cfg := common.NewDefaultConfig()
	cfg.Auth.Firebase.CredentialsFile = path

	p, err := NewIdentityProvider(context.Background(), cfg, common.NewSilentLogger())
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, common.ProviderFirebase, p.Name())
}

func TestNewIdentityProvider_OIDCRequiresIssuer(t *testing.T) {
	cfg := common.NewDefaultConfig()
	cfg.Auth.Provider = common.ProviderOIDC

	_, err := NewIdentityProvider(context.Background(), cfg, common.NewSilentLogger())
	assert.Error(t, err)
}

func TestNew_DevFallbackFollowsEnvironment(t *testing.T) {
	cfg := common.NewDefaultConfig()
	a := New(cfg, common.NewSilentLogger(), tcommon.NewMockStorage(), nil)

	id, err := a.Verifier.VerifyBearer(context.Background(), "Bearer dev-token-xyz")
	require.NoError(t, err)
	assert.Equal(t, auth.DevUID, id.UID)

	cfg = common.NewDefaultConfig()
	cfg.Environment = "production"
	a = New(cfg, common.NewSilentLogger(), tcommon.NewMockStorage(), nil)

	_, err = a.Verifier.VerifyBearer(context.Background(), "Bearer dev-token-xyz")
	assert.Equal(t, common.KindUnauthenticated, common.KindOf(err))
}

func TestResolveConfig_ExplicitPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "marketplay.toml")
	require.NoError(t, os.WriteFile(path, []byte("[server]\nport = 9100\n"), 0600))

	cfg, err := ResolveConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 9100, cfg.Server.Port)
}

func TestClose_ReleasesLogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "marketplay.log")
	cfg := common.NewDefaultConfig()
	logger := common.NewLoggerFromConfig(common.LoggingConfig{Level: "info", Format: "json", Outputs: []string{"file"}, FilePath: path})

	a := New(cfg, logger, tcommon.NewMockStorage(), nil)
	a.Logger.Info().Msg("before close")
	a.Close()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "before close")
	assert.NoError(t, a.Logger.Close())
}
