package ups_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/parcelbridge/rating/pkg/carrier"
	"github.com/parcelbridge/rating/pkg/carrier/ups"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

func testLogger() *otelzap.Logger {
	return otelzap.New(zap.NewNop())
}

// tokenServer serves the OAuth token endpoint, counting exchanges and
// handing out a distinct token per exchange.
func tokenServer(t *testing.T) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		if n == 1 {
			w.Write([]byte(`{"access_token":"tok-1","token_type":"Bearer","expires_in":3600}`))
		} else {
			w.Write([]byte(`{"access_token":"tok-2","token_type":"Bearer","expires_in":3600}`))
		}
	}))
	t.Cleanup(server.Close)
	return server, &calls
}

func newTestClient(t *testing.T, apiClient ups.APIClient) (*ups.Client, *atomic.Int32) {
	t.Helper()
	server, calls := tokenServer(t)
	client := ups.NewWithAPIClient(ups.Config{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		AuthURL:      server.URL,
		Timeout:      5 * time.Second,
	}, apiClient, testLogger(), nil)
	return client, calls
}

func validRequest() *carrier.RateRequest {
	return &carrier.RateRequest{
		Origin: carrier.Address{
			Street:     []string{"123 Main St"},
			City:       "New York",
			State:      "NY",
			PostalCode: "10001",
			Country:    "US",
		},
		Destination: carrier.Address{
			Street:     []string{"456 Oak Ave"},
			City:       "Los Angeles",
			State:      "CA",
			PostalCode: "90001",
			Country:    "US",
		},
		Packages: []carrier.Package{
			{
				Weight: carrier.Weight{Value: 5, Unit: carrier.WeightLbs},
				Dimensions: &carrier.Dimensions{
					Length: 10, Width: 8, Height: 6,
					Unit: carrier.DimensionIn,
				},
			},
		},
	}
}

func TestClient_Name(t *testing.T) {
	client, _ := newTestClient(t, ups.NewMockAPIClient())
	assert.Equal(t, "UPS", client.Name())
}

func TestClient_GetRates(t *testing.T) {
	mockAPI := ups.NewMockAPIClient()
	client, authCalls := newTestClient(t, mockAPI)

	resp, err := client.GetRates(context.Background(), validRequest())
	require.NoError(t, err)
	require.Len(t, resp.Quotes, 2)

	assert.Equal(t, "UPS", resp.Quotes[0].Carrier)
	assert.Equal(t, "03", resp.Quotes[0].ServiceCode)
	assert.Equal(t, 15.82, resp.Quotes[0].TotalCost.Amount)
	assert.Equal(t, "02", resp.Quotes[1].ServiceCode)
	assert.Equal(t, 34.10, resp.Quotes[1].TotalCost.Amount,
		"taxes-inclusive total should win over plain total")

	assert.Equal(t, int32(1), authCalls.Load())
	require.Len(t, mockAPI.Calls, 1)
	assert.Equal(t, "tok-1", mockAPI.Calls[0].Token)
	assert.NotEmpty(t, mockAPI.Calls[0].TransID)
}

func TestClient_GetRates_TokenReuse(t *testing.T) {
	mockAPI := ups.NewMockAPIClient()
	client, authCalls := newTestClient(t, mockAPI)

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, err := client.GetRates(ctx, validRequest())
		require.NoError(t, err)
	}

	assert.Equal(t, int32(1), authCalls.Load(), "token should be cached across calls")
	assert.Len(t, mockAPI.Calls, 3)
}

func TestClient_GetRates_ValidationBeforeNetwork(t *testing.T) {
	mockAPI := ups.NewMockAPIClient()
	client, authCalls := newTestClient(t, mockAPI)

	req := validRequest()
	req.Packages = nil

	_, err := client.GetRates(context.Background(), req)

	var cerr *carrier.CarrierError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, carrier.CodeValidationError, cerr.Code)
	assert.Equal(t, int32(0), authCalls.Load(), "invalid request should not reach the network")
	assert.Empty(t, mockAPI.Calls)
}

func TestClient_GetRates_RetryOn401(t *testing.T) {
	mockAPI := ups.NewMockAPIClient()
	mockAPI.OnRate = func(ctx context.Context, token, transID string, req *ups.RateWireRequest) (*ups.RateWireResponse, error) {
		if token == "tok-1" {
			return nil, &ups.StatusError{StatusCode: http.StatusUnauthorized, Body: []byte("invalid token")}
		}
		return ups.DefaultMockResponse(), nil
	}
	client, authCalls := newTestClient(t, mockAPI)

	resp, err := client.GetRates(context.Background(), validRequest())
	require.NoError(t, err, "a single 401 should be recovered by re-authenticating")
	assert.Len(t, resp.Quotes, 2)

	assert.Equal(t, int32(2), authCalls.Load(), "401 should trigger exactly one re-authentication")
	require.Len(t, mockAPI.Calls, 2)
	assert.Equal(t, "tok-1", mockAPI.Calls[0].Token)
	assert.Equal(t, "tok-2", mockAPI.Calls[1].Token)
}

func TestClient_GetRates_PersistentUnauthorized(t *testing.T) {
	mockAPI := ups.NewMockAPIClient()
	mockAPI.OnRate = func(ctx context.Context, token, transID string, req *ups.RateWireRequest) (*ups.RateWireResponse, error) {
		return nil, &ups.StatusError{StatusCode: http.StatusUnauthorized, Body: []byte("invalid token")}
	}
	client, authCalls := newTestClient(t, mockAPI)

	_, err := client.GetRates(context.Background(), validRequest())

	var cerr *carrier.CarrierError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, carrier.CodeAuthFailed, cerr.Code)
	assert.Contains(t, cerr.Message, "authentication failed after retry")

	assert.Equal(t, int32(2), authCalls.Load())
	assert.Len(t, mockAPI.Calls, 2, "the rating call should be retried exactly once")
}

func TestClient_GetRates_RateLimited(t *testing.T) {
	mockAPI := ups.NewMockAPIClient()
	mockAPI.OnRate = func(ctx context.Context, token, transID string, req *ups.RateWireRequest) (*ups.RateWireResponse, error) {
		return nil, &ups.StatusError{StatusCode: http.StatusTooManyRequests, Body: []byte("slow down")}
	}
	client, _ := newTestClient(t, mockAPI)

	_, err := client.GetRates(context.Background(), validRequest())

	var cerr *carrier.CarrierError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, carrier.CodeRateLimitExceeded, cerr.Code)
	assert.Len(t, mockAPI.Calls, 1, "rate limiting should not be retried")
}

func TestClient_GetRates_ServerError(t *testing.T) {
	mockAPI := ups.NewMockAPIClient()
	mockAPI.OnRate = func(ctx context.Context, token, transID string, req *ups.RateWireRequest) (*ups.RateWireResponse, error) {
		return nil, &ups.StatusError{StatusCode: http.StatusServiceUnavailable, Body: []byte("maintenance")}
	}
	client, _ := newTestClient(t, mockAPI)

	_, err := client.GetRates(context.Background(), validRequest())

	var cerr *carrier.CarrierError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, carrier.CodeAPIError, cerr.Code)
	assert.Contains(t, cerr.Message, "UPS server error")
	assert.Contains(t, cerr.Message, "maintenance")
	assert.Equal(t, http.StatusServiceUnavailable, cerr.Details["statusCode"])
}

func TestClient_GetRates_ClientError(t *testing.T) {
	mockAPI := ups.NewMockAPIClient()
	mockAPI.OnRate = func(ctx context.Context, token, transID string, req *ups.RateWireRequest) (*ups.RateWireResponse, error) {
		return nil, &ups.StatusError{StatusCode: http.StatusBadRequest, Body: []byte("bad shipment")}
	}
	client, _ := newTestClient(t, mockAPI)

	_, err := client.GetRates(context.Background(), validRequest())

	var cerr *carrier.CarrierError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, carrier.CodeAPIError, cerr.Code)
	assert.Contains(t, cerr.Message, "UPS API error")
	assert.Contains(t, cerr.Message, "bad shipment")
}

func TestClient_GetRates_Timeout(t *testing.T) {
	mockAPI := ups.NewMockAPIClient()
	mockAPI.OnRate = func(ctx context.Context, token, transID string, req *ups.RateWireRequest) (*ups.RateWireResponse, error) {
		return nil, context.DeadlineExceeded
	}
	client, _ := newTestClient(t, mockAPI)

	_, err := client.GetRates(context.Background(), validRequest())

	var cerr *carrier.CarrierError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, carrier.CodeTimeout, cerr.Code)
}

func TestClient_GetRates_NetworkError(t *testing.T) {
	mockAPI := ups.NewMockAPIClient()
	mockAPI.OnRate = func(ctx context.Context, token, transID string, req *ups.RateWireRequest) (*ups.RateWireResponse, error) {
		return nil, errors.New("connection refused")
	}
	client, _ := newTestClient(t, mockAPI)

	_, err := client.GetRates(context.Background(), validRequest())

	var cerr *carrier.CarrierError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, carrier.CodeNetworkError, cerr.Code)
}

func TestClient_GetRates_AuthFailurePropagates(t *testing.T) {
	authDown := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer authDown.Close()

	mockAPI := ups.NewMockAPIClient()
	client := ups.NewWithAPIClient(ups.Config{
		ClientID:     "bad-id",
		ClientSecret: "bad-secret",
		AuthURL:      authDown.URL,
		Timeout:      5 * time.Second,
	}, mockAPI, testLogger(), nil)

	_, err := client.GetRates(context.Background(), validRequest())

	var cerr *carrier.CarrierError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, carrier.CodeAuthFailed, cerr.Code)
	assert.Empty(t, mockAPI.Calls, "auth failure should short-circuit the rating call")
}

func TestClient_GetRates_APIErrorResponseBody(t *testing.T) {
	mockAPI := ups.NewMockAPIClient()
	mockAPI.OnRate = func(ctx context.Context, token, transID string, req *ups.RateWireRequest) (*ups.RateWireResponse, error) {
		return &ups.RateWireResponse{
			ErrorEnvelope: &ups.ErrorEnvelope{
				Errors: []ups.WireError{{Code: "110208", Message: "Missing or Invalid ship to address"}},
			},
		}, nil
	}
	client, _ := newTestClient(t, mockAPI)

	_, err := client.GetRates(context.Background(), validRequest())

	var cerr *carrier.CarrierError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, carrier.CodeAPIError, cerr.Code)
	assert.Contains(t, cerr.Message, "Missing or Invalid ship to address")
}

func TestClient_GetRates_TransactionIDsDistinct(t *testing.T) {
	mockAPI := ups.NewMockAPIClient()
	client, _ := newTestClient(t, mockAPI)

	ctx := context.Background()
	_, err := client.GetRates(ctx, validRequest())
	require.NoError(t, err)
	_, err = client.GetRates(ctx, validRequest())
	require.NoError(t, err)

	require.Len(t, mockAPI.Calls, 2)
	assert.NotEqual(t, mockAPI.Calls[0].TransID, mockAPI.Calls[1].TransID)
}
