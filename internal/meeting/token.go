package meeting

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/example/studio-scheduler/internal/persistence"
)

// expiryMargin is how close to expiry a cached token may get before a refresh
// is triggered.
const expiryMargin = 30 * time.Second

// TokenSource yields a valid provider credential.
type TokenSource interface {
	Token(ctx context.Context) (persistence.ProviderToken, error)
}

// TokenManagerConfig wires credentials and endpoints for the token exchange.
type TokenManagerConfig struct {
	AuthURL      string
	APIBaseURL   string
	ClientID     string
	ClientSecret string
	AccountID    string
	HTTPClient   *http.Client
	Now          func() time.Time
	Logger       *slog.Logger
}

// TokenManager caches the provider credential in persistence and refreshes it
// before expiry. Concurrent refreshes may race; the cache row simply gets
// overwritten with another valid token, so no locking is used.
type TokenManager struct {
	store      persistence.ProviderTokenRepository
	cfg        TokenManagerConfig
	httpClient *http.Client
	now        func() time.Time
	logger     *slog.Logger
}

// NewTokenManager builds a token manager over the supplied cache store.
func NewTokenManager(store persistence.ProviderTokenRepository, cfg TokenManagerConfig) *TokenManager {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &TokenManager{store: store, cfg: cfg, httpClient: httpClient, now: now, logger: logger}
}

// Token returns the cached credential when it is still comfortably valid and
// performs the client-credentials exchange otherwise.
func (m *TokenManager) Token(ctx context.Context) (persistence.ProviderToken, error) {
	cached, err := m.store.GetProviderToken(ctx)
	switch {
	case err == nil:
		if cached.ExpiresAt.After(m.now().Add(expiryMargin)) {
			return cached, nil
		}
	case errors.Is(err, persistence.ErrNotFound):
		// First call; fall through to the exchange.
	default:
		return persistence.ProviderToken{}, fmt.Errorf("meeting: read token cache: %w", err)
	}

	token, err := m.exchange(ctx)
	if err != nil {
		return persistence.ProviderToken{}, err
	}

	if err := m.store.UpsertProviderToken(ctx, token); err != nil {
		// The token itself is valid; a failed cache write only costs the next
		// caller another exchange.
		m.logger.WarnContext(ctx, "failed to persist provider token", "error", err)
	}
	return token, nil
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
	APIURL      string `json:"api_url"`
}

func (m *TokenManager) exchange(ctx context.Context) (persistence.ProviderToken, error) {
	form := url.Values{}
	form.Set("grant_type", "account_credentials")
	form.Set("account_id", m.cfg.AccountID)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.cfg.AuthURL, strings.NewReader(form.Encode()))
	if err != nil {
		return persistence.ProviderToken{}, fmt.Errorf("meeting: build token request: %w", err)
	}
	req.SetBasicAuth(m.cfg.ClientID, m.cfg.ClientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return persistence.ProviderToken{}, fmt.Errorf("meeting: token request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return persistence.ProviderToken{}, fmt.Errorf("meeting: read token response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return persistence.ProviderToken{}, &AuthError{
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(body)),
		}
	}

	var payload tokenResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return persistence.ProviderToken{}, fmt.Errorf("meeting: decode token response: %w", err)
	}
	if payload.AccessToken == "" {
		return persistence.ProviderToken{}, &AuthError{StatusCode: resp.StatusCode, Message: "empty access token"}
	}

	apiURL := payload.APIURL
	if apiURL == "" {
		apiURL = m.cfg.APIBaseURL
	}

	return persistence.ProviderToken{
		AccessToken: payload.AccessToken,
		APIBaseURL:  apiURL,
		ExpiresAt:   m.now().Add(time.Duration(payload.ExpiresIn) * time.Second),
	}, nil
}
