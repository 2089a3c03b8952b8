package carrier_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/parcelbridge/rating/pkg/carrier"
	"github.com/stretchr/testify/assert"
)

func TestCarrierError_Error(t *testing.T) {
	err := carrier.NewCarrierError(carrier.CodeValidationError, "invalid postal code")
	assert.Equal(t, "VALIDATION_ERROR: invalid postal code", err.Error())
}

func TestCarrierError_ErrorWithCause(t *testing.T) {
	cause := errors.New("network timeout")
	err := carrier.NewCarrierError(carrier.CodeAPIError, "API call failed").WithCause(cause)
	assert.Contains(t, err.Error(), "API call failed")
	assert.Contains(t, err.Error(), "network timeout")
}

func TestCarrierError_Unwrap(t *testing.T) {
	cause := errors.New("network timeout")
	err := carrier.NewCarrierError(carrier.CodeAPIError, "API call failed").WithCause(cause)
	assert.True(t, errors.Is(err, cause))
}

func TestCarrierError_Is(t *testing.T) {
	err1 := carrier.NewCarrierError(carrier.CodeAuthFailed, "invalid credentials")
	err2 := carrier.NewCarrierError(carrier.CodeAuthFailed, "different message")

	// Same code should match
	assert.True(t, errors.Is(err1, err2))
}

func TestCarrierError_IsNot(t *testing.T) {
	err1 := carrier.NewCarrierError(carrier.CodeAuthFailed, "invalid credentials")
	err2 := carrier.NewCarrierError(carrier.CodeAPIError, "different error")

	assert.False(t, errors.Is(err1, err2))
}

func TestCarrierError_WithDetail(t *testing.T) {
	err := carrier.NewCarrierError(carrier.CodeAPIError, "bad response").
		WithDetail("statusCode", "0").
		WithDetail("raw", "x")
	assert.Equal(t, "0", err.Details["statusCode"])
	assert.Equal(t, "x", err.Details["raw"])
}

func TestAsCarrierError_PassThrough(t *testing.T) {
	orig := carrier.NewCarrierError(carrier.CodeTimeout, "request timeout")
	wrapped := carrier.AsCarrierError(orig)
	assert.Same(t, orig, wrapped, "classified errors must never be re-wrapped")
}

func TestAsCarrierError_Unclassified(t *testing.T) {
	err := carrier.AsCarrierError(errors.New("boom"))
	assert.Equal(t, carrier.CodeUnknownError, err.Code)
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		code carrier.ErrorCode
		want int
	}{
		{carrier.CodeAuthFailed, http.StatusUnauthorized},
		{carrier.CodeValidationError, http.StatusBadRequest},
		{carrier.CodeRateLimitExceeded, http.StatusTooManyRequests},
		{carrier.CodeTimeout, http.StatusGatewayTimeout},
		{carrier.CodeAPIError, http.StatusBadGateway},
		{carrier.CodeMalformedResponse, http.StatusBadGateway},
		{carrier.CodeNetworkError, http.StatusBadGateway},
		{carrier.CodeConfigError, http.StatusInternalServerError},
		{carrier.CodeUnknownError, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.want, carrier.HTTPStatus(tt.code))
		})
	}
}
