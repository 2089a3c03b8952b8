// Package ups provides integration with the UPS Rating API.
package ups

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/parcelbridge/rating/pkg/carrier"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	carrierName    = "UPS"
	transactionSrc = "parcelbridge"
)

// Config holds UPS configuration.
type Config struct {
	ClientID      string
	ClientSecret  string
	BaseURL       string
	AuthURL       string
	Version       string        // rating API version, e.g. "v2409"
	RequestOption string        // e.g. "Rate" or "Shop"
	Timeout       time.Duration // per network call, default 30s
	UseMock       bool          // when true, uses a mock API client
}

// Client is the UPS carrier client. It implements the carrier.Carrier
// interface, orchestrating authentication, wire mapping, the rating call
// and response parsing.
type Client struct {
	config        Config
	apiClient     APIClient
	authenticator *Authenticator
	tokenCache    *TokenCache
	logger        *otelzap.Logger
	tracer        trace.Tracer
	now           func() time.Time
}

// New creates a new UPS client with its own token cache.
// If cfg.UseMock is true, it uses a mock API client for testing.
func New(cfg Config, logger *otelzap.Logger, tracer trace.Tracer) *Client {
	var apiClient APIClient
	if cfg.UseMock {
		apiClient = NewMockAPIClient()
	} else {
		apiClient = NewHTTPAPIClient(HTTPAPIClientConfig{
			BaseURL:       cfg.BaseURL,
			Version:       cfg.Version,
			RequestOption: cfg.RequestOption,
			Timeout:       cfg.Timeout,
		})
	}
	return NewWithAPIClient(cfg, apiClient, logger, tracer)
}

// NewWithAPIClient creates a new UPS client with a custom API client.
// This is useful for injecting mock clients in tests.
func NewWithAPIClient(cfg Config, apiClient APIClient, logger *otelzap.Logger, tracer trace.Tracer) *Client {
	tokenCache := NewTokenCache()
	authenticator := NewAuthenticator(AuthConfig{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		AuthURL:      cfg.AuthURL,
	}, tokenCache, cfg.Timeout, logger)

	return &Client{
		config:        cfg,
		apiClient:     apiClient,
		authenticator: authenticator,
		tokenCache:    tokenCache,
		logger:        logger,
		tracer:        tracer,
		now:           time.Now,
	}
}

// Name returns the carrier name.
func (c *Client) Name() string {
	return carrierName
}

// GetRates returns normalized rate quotes from UPS. On a 401 from the
// rating endpoint the token cache is cleared, a fresh token is acquired
// and the call is retried exactly once.
func (c *Client) GetRates(ctx context.Context, req *carrier.RateRequest) (*carrier.RateResponse, error) {
	if c.tracer != nil {
		var span trace.Span
		ctx, span = c.tracer.Start(ctx, "ups.GetRates")
		defer span.End()
	}

	if err := req.Validate(); err != nil {
		return nil, err
	}

	c.logger.Info("Getting UPS rates",
		zap.String("origin_postal", req.Origin.PostalCode),
		zap.String("destination_postal", req.Destination.PostalCode),
		zap.Int("package_count", len(req.Packages)),
	)

	token, err := c.authenticator.GetAccessToken(ctx)
	if err != nil {
		if classified(err) {
			return nil, err
		}
		return nil, carrier.NewCarrierError(carrier.CodeAuthFailed,
			"failed to authenticate with UPS").WithCause(err)
	}

	wireReq := toWireRateRequest(req)

	wireResp, err := c.apiClient.Rate(ctx, token, c.transactionID(), wireReq)
	if err != nil {
		var statusErr *StatusError
		if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusUnauthorized {
			return c.retryAfterUnauthorized(ctx, wireReq)
		}
		c.logger.Error("UPS rating call failed", zap.Error(err))
		return nil, c.classifyTransport(err)
	}

	return parseRateResponse(wireResp, "", c.now)
}

// retryAfterUnauthorized clears the token cache, re-authenticates
// unconditionally and retries the rating call exactly once. Any failure on
// the retry path surfaces as AUTH_FAILED wrapping the retry's cause.
func (c *Client) retryAfterUnauthorized(ctx context.Context, wireReq *RateWireRequest) (*carrier.RateResponse, error) {
	c.logger.Warn("UPS rating call returned 401, refreshing token and retrying")
	c.tokenCache.Clear()

	token, err := c.authenticator.GetAccessToken(ctx)
	if err != nil {
		return nil, carrier.NewCarrierError(carrier.CodeAuthFailed,
			"UPS authentication failed after retry").WithCause(err)
	}

	wireResp, err := c.apiClient.Rate(ctx, token, c.transactionID(), wireReq)
	if err != nil {
		return nil, carrier.NewCarrierError(carrier.CodeAuthFailed,
			"UPS authentication failed after retry").WithCause(err)
	}

	return parseRateResponse(wireResp, "", c.now)
}

// classifyTransport maps a raw transport failure to the error taxonomy.
// Already classified errors pass through unchanged.
func (c *Client) classifyTransport(err error) error {
	if classified(err) {
		return err
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		switch {
		case statusErr.StatusCode == http.StatusTooManyRequests:
			return carrier.NewCarrierError(carrier.CodeRateLimitExceeded,
				"UPS rate limit exceeded").WithCause(err)
		case statusErr.StatusCode >= 500:
			return carrier.NewCarrierError(carrier.CodeAPIError,
				fmt.Sprintf("UPS server error: %s", statusErr.Body)).
				WithDetail("statusCode", statusErr.StatusCode).
				WithCause(err)
		default:
			return carrier.NewCarrierError(carrier.CodeAPIError,
				fmt.Sprintf("UPS API error: %s", statusErr.Body)).
				WithDetail("statusCode", statusErr.StatusCode).
				WithCause(err)
		}
	}

	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) ||
		(errors.As(err, &netErr) && netErr.Timeout()) {
		return carrier.NewCarrierError(carrier.CodeTimeout,
			"UPS request timeout: "+err.Error()).WithCause(err)
	}

	return carrier.NewCarrierError(carrier.CodeNetworkError,
		"UPS network error: "+err.Error()).WithCause(err)
}

// transactionID generates the per-request trace id sent in the transId
// header. Traceability only, not correctness.
func (c *Client) transactionID() string {
	return fmt.Sprintf("%s-%d-%s", transactionSrc, c.now().UnixMilli(), uuid.New().String()[:8])
}
