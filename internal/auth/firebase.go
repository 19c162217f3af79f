package auth

import (
	"context"
	"crypto/rsa"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/bobmcallan/marketplay/internal/common"
	"github.com/bobmcallan/marketplay/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

const (
	firebaseIssuerPrefix = "https://securetoken.google.com/"
	defaultCertsTTL      = time.Hour
	minRefreshInterval   = 30 * time.Second
	maxSubjectLength     = 128
)

// ErrFirebaseUnconfigured is returned when no project id can be resolved.
var ErrFirebaseUnconfigured = errors.New("firebase project id not configured")

var errRefreshThrottled = errors.New("certificate refresh throttled")

// FirebaseProvider verifies Firebase ID tokens against Google's public
// securetoken certificates.
type FirebaseProvider struct {
	projectID  string
	certsURL   string
	httpClient *http.Client
	logger     *common.Logger
	now        func() time.Time

	mu        sync.RWMutex
	keys      map[string]*rsa.PublicKey
	expiresAt time.Time

	// refreshes bounds certificate downloads; group collapses concurrent ones.
	refreshes *rate.Limiter
	group     singleflight.Group
}

// FirebaseOption customises a FirebaseProvider.
type FirebaseOption func(*FirebaseProvider)

// WithHTTPClient overrides the client used to fetch certificates.
func WithHTTPClient(c *http.Client) FirebaseOption {
	return func(p *FirebaseProvider) { p.httpClient = c }
}

// WithClock overrides the time source used for claim validation and caching.
func WithClock(now func() time.Time) FirebaseOption {
	return func(p *FirebaseProvider) { p.now = now }
}

// NewFirebaseProvider creates a provider for projectID.
func NewFirebaseProvider(projectID, certsURL string, logger *common.Logger, opts ...FirebaseOption) (*FirebaseProvider, error) {
	if projectID == "" {
		return nil, ErrFirebaseUnconfigured
	}
	if certsURL == "" {
		certsURL = common.NewDefaultConfig().Auth.Firebase.CertsURL
	}
	p := &FirebaseProvider{
		projectID:  projectID,
		certsURL:   certsURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     logger,
		now:        time.Now,
		refreshes:  rate.NewLimiter(rate.Every(minRefreshInterval), 1),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// NewFirebaseProviderFromConfig resolves the project id from config, falling
// back to the project_id of the service account file. ErrFirebaseUnconfigured
// is returned when neither is available.
func NewFirebaseProviderFromConfig(cfg common.FirebaseConfig, logger *common.Logger, opts ...FirebaseOption) (*FirebaseProvider, error) {
	projectID := cfg.ProjectID
	if projectID == "" && cfg.CredentialsFile != "" {
		pid, err := projectIDFromCredentials(cfg.CredentialsFile)
		if err != nil {
			return nil, err
		}
		projectID = pid
	}
	if projectID == "" {
		return nil, ErrFirebaseUnconfigured
	}
	return NewFirebaseProvider(projectID, cfg.CertsURL, logger, opts...)
}

func projectIDFromCredentials(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: service account file %s not found", ErrFirebaseUnconfigured, path)
		}
		return "", fmt.Errorf("failed to read service account file %s: %w", path, err)
	}
	var sa struct {
		ProjectID string `json:"project_id"`
	}
	if err := json.Unmarshal(data, &sa); err != nil {
		return "", fmt.Errorf("failed to parse service account file %s: %w", path, err)
	}
	if sa.ProjectID == "" {
		return "", fmt.Errorf("%w: service account file %s has no project_id", ErrFirebaseUnconfigured, path)
	}
	return sa.ProjectID, nil
}

// Name implements TokenProvider.
func (p *FirebaseProvider) Name() string { return common.ProviderFirebase }

// ProjectID returns the Firebase project whose tokens are accepted.
func (p *FirebaseProvider) ProjectID() string { return p.projectID }

type firebaseClaims struct {
	Email    string `json:"email,omitempty"`
	Name     string `json:"name,omitempty"`
	Picture  string `json:"picture,omitempty"`
	AuthTime int64  `json:"auth_time,omitempty"`
	jwt.RegisteredClaims
}

// Verify implements TokenProvider.
func (p *FirebaseProvider) Verify(ctx context.Context, rawToken string) (*models.Identity, error) {
	claims := &firebaseClaims{}
	_, err := jwt.ParseWithClaims(rawToken, claims,
		func(t *jwt.Token) (interface{}, error) {
			kid, _ := t.Header["kid"].(string)
			if kid == "" {
				return nil, errors.New("token has no kid header")
			}
			return p.publicKey(ctx, kid)
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithAudience(p.projectID),
		jwt.WithIssuer(firebaseIssuerPrefix+p.projectID),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(p.now),
	)
	if err != nil {
		return nil, err
	}

	if claims.Subject == "" {
		return nil, errors.New("token has an empty subject")
	}
	if len(claims.Subject) > maxSubjectLength {
		return nil, fmt.Errorf("token subject longer than %d characters", maxSubjectLength)
	}
	if claims.AuthTime > p.now().Unix() {
		return nil, errors.New("token auth_time is in the future")
	}

	return &models.Identity{
		UID:     claims.Subject,
		Email:   claims.Email,
		Name:    claims.Name,
		Picture: claims.Picture,
	}, nil
}

// publicKey resolves kid from the certificate cache. A fresh cache is
// authoritative: unknown kids are rejected without a download. An expired or
// empty cache is refreshed at most once per minRefreshInterval, and stale keys
// keep serving while a refresh is throttled or failing.
func (p *FirebaseProvider) publicKey(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	p.mu.RLock()
	key, ok := p.keys[kid]
	fresh := p.now().Before(p.expiresAt)
	p.mu.RUnlock()
	if fresh {
		if !ok {
			return nil, fmt.Errorf("no certificate found for kid %q", kid)
		}
		return key, nil
	}

	_, err, _ := p.group.Do("certs", func() (interface{}, error) {
		p.mu.RLock()
		refreshed := p.now().Before(p.expiresAt)
		p.mu.RUnlock()
		if refreshed {
			return nil, nil
		}
		if !p.refreshes.AllowN(p.now(), 1) {
			return nil, errRefreshThrottled
		}
		return nil, p.refreshKeys(ctx)
	})

	p.mu.RLock()
	key, ok = p.keys[kid]
	p.mu.RUnlock()
	if ok {
		if err != nil && p.logger != nil {
			p.logger.Warn().Err(err).Msg("Using stale Firebase certificates")
		}
		return key, nil
	}
	if err != nil {
		return nil, err
	}
	return nil, fmt.Errorf("no certificate found for kid %q", kid)
}

func (p *FirebaseProvider) refreshKeys(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.certsURL, nil)
	if err != nil {
		return fmt.Errorf("failed to build certificate request: %w", err)
	}
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch certificates: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("failed to fetch certificates: status %d", resp.StatusCode)
	}

	var certs map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&certs); err != nil {
		return fmt.Errorf("failed to decode certificates: %w", err)
	}

	keys := make(map[string]*rsa.PublicKey, len(certs))
	for kid, pem := range certs {
		key, err := jwt.ParseRSAPublicKeyFromPEM([]byte(pem))
		if err != nil {
			if p.logger != nil {
				p.logger.Warn().Err(err).Str("kid", kid).Msg("Skipping unparseable certificate")
			}
			continue
		}
		keys[kid] = key
	}

	ttl := cacheMaxAge(resp.Header.Get("Cache-Control"))

	p.mu.Lock()
	p.keys = keys
	p.expiresAt = p.now().Add(ttl)
	p.mu.Unlock()

	if p.logger != nil {
		p.logger.Debug().Int("keys", len(keys)).Dur("ttl", ttl).Msg("Firebase certificates refreshed")
	}
	return nil
}

// cacheMaxAge extracts max-age from a Cache-Control header value.
func cacheMaxAge(header string) time.Duration {
	for _, directive := range strings.Split(header, ",") {
		directive = strings.TrimSpace(directive)
		if v, ok := strings.CutPrefix(directive, "max-age="); ok {
			if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
				return time.Duration(secs) * time.Second
			}
		}
	}
	return defaultCertsTTL
}
