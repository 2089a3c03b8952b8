package ups

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/parcelbridge/rating/pkg/carrier"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// AuthConfig holds the OAuth client-credentials configuration.
type AuthConfig struct {
	ClientID     string
	ClientSecret string
	AuthURL      string
}

// tokenResponse is the UPS OAuth token endpoint response body.
type tokenResponse struct {
	AccessToken string      `json:"access_token"`
	TokenType   string      `json:"token_type"`
	ExpiresIn   json.Number `json:"expires_in"`
}

const defaultTokenTTL = 3600 * time.Second

// Authenticator acquires and refreshes access tokens via the OAuth
// client-credentials flow, consulting and populating the token cache.
type Authenticator struct {
	config     AuthConfig
	cache      *TokenCache
	httpClient *http.Client
	logger     *otelzap.Logger
}

// NewAuthenticator creates a new authenticator backed by the given cache.
func NewAuthenticator(cfg AuthConfig, cache *TokenCache, timeout time.Duration, logger *otelzap.Logger) *Authenticator {
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Authenticator{
		config:     cfg,
		cache:      cache,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// GetAccessToken returns a valid access token, from the cache when
// possible and via a client-credentials exchange otherwise.
func (a *Authenticator) GetAccessToken(ctx context.Context) (string, error) {
	if token, ok := a.cache.Get(); ok {
		return token, nil
	}
	return a.acquireToken(ctx)
}

func (a *Authenticator) acquireToken(ctx context.Context) (string, error) {
	form := url.Values{}
	form.Set("grant_type", "client_credentials")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.config.AuthURL,
		strings.NewReader(form.Encode()))
	if err != nil {
		return "", carrier.NewCarrierError(carrier.CodeAuthFailed,
			"failed to build UPS token request").WithCause(err)
	}
	req.SetBasicAuth(a.config.ClientID, a.config.ClientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return "", carrier.NewCarrierError(carrier.CodeAuthFailed,
			"failed to acquire UPS access token").WithCause(err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return "", carrier.NewCarrierError(carrier.CodeAuthFailed,
			"UPS authentication failed: invalid credentials")
	case resp.StatusCode == http.StatusTooManyRequests:
		return "", carrier.NewCarrierError(carrier.CodeRateLimitExceeded,
			"UPS rate limit exceeded during authentication")
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return "", carrier.NewCarrierError(carrier.CodeAuthFailed,
			"failed to acquire UPS access token").
			WithDetail("statusCode", resp.StatusCode)
	}

	var body tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", carrier.NewCarrierError(carrier.CodeAuthFailed,
			"failed to decode UPS token response").WithCause(err)
	}

	if body.AccessToken == "" {
		return "", carrier.NewCarrierError(carrier.CodeAuthFailed,
			"invalid token response from UPS: missing access_token")
	}

	ttl := defaultTokenTTL
	if secs, err := body.ExpiresIn.Int64(); err == nil && secs > 0 {
		ttl = time.Duration(secs) * time.Second
	}
	a.cache.Set(body.AccessToken, ttl)

	if a.logger != nil {
		a.logger.Info("Acquired UPS access token", zap.Duration("ttl", ttl))
	}
	return body.AccessToken, nil
}

// classified reports whether err already carries a CarrierError. Classified
// errors are passed through unchanged, never re-wrapped.
func classified(err error) bool {
	var cerr *carrier.CarrierError
	return errors.As(err, &cerr)
}
