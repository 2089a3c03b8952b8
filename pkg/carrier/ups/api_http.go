package ups

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// HTTPAPIClient is the production implementation of APIClient using HTTP.
type HTTPAPIClient struct {
	baseURL       string
	version       string
	requestOption string
	httpClient    *http.Client
}

// HTTPAPIClientConfig holds configuration for the HTTP client.
type HTTPAPIClientConfig struct {
	BaseURL       string
	Version       string // e.g. "v2409"
	RequestOption string // e.g. "Rate" or "Shop"
	Timeout       time.Duration
}

// NewHTTPAPIClient creates a new HTTP-based API client for production use.
func NewHTTPAPIClient(cfg HTTPAPIClientConfig) *HTTPAPIClient {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	version := cfg.Version
	if version == "" {
		version = "v2409"
	}
	requestOption := cfg.RequestOption
	if requestOption == "" {
		requestOption = "Rate"
	}

	return &HTTPAPIClient{
		baseURL:       cfg.BaseURL,
		version:       version,
		requestOption: requestOption,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Rate POSTs the rate request to the versioned rating endpoint with bearer
// authorization. Non-2xx responses are returned as *StatusError with the
// raw body; transport errors are returned as-is for the caller to
// classify.
func (c *HTTPAPIClient) Rate(ctx context.Context, token, transID string, req *RateWireRequest) (*RateWireResponse, error) {
	url := fmt.Sprintf("%s/api/rating/%s/%s", c.baseURL, c.version, c.requestOption)

	jsonBody, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal rate request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+token)
	httpReq.Header.Set("transId", transID)
	httpReq.Header.Set("transactionSrc", transactionSrc)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: body}
	}

	var result RateWireResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode rate response: %w", err)
	}
	return &result, nil
}

// Ensure HTTPAPIClient implements APIClient interface
var _ APIClient = (*HTTPAPIClient)(nil)
