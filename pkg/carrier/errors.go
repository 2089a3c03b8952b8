package carrier

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode classifies a carrier failure. The set is closed; collaborators
// switch on it to pick their own transport status.
type ErrorCode string

const (
	CodeAuthFailed        ErrorCode = "AUTH_FAILED"
	CodeValidationError   ErrorCode = "VALIDATION_ERROR"
	CodeNetworkError      ErrorCode = "NETWORK_ERROR"
	CodeTimeout           ErrorCode = "TIMEOUT"
	CodeRateLimitExceeded ErrorCode = "RATE_LIMIT_EXCEEDED"
	CodeAPIError          ErrorCode = "API_ERROR"
	CodeMalformedResponse ErrorCode = "MALFORMED_RESPONSE"
	CodeConfigError       ErrorCode = "CONFIG_ERROR"
	CodeUnknownError      ErrorCode = "UNKNOWN_ERROR"
)

// CarrierError is the sole error type crossing the rating core's boundary.
// Once raised it is never re-wrapped; only raw transport/parse errors are
// classified, at the point where context is richest.
type CarrierError struct {
	Code    ErrorCode
	Message string
	Details map[string]any
	Cause   error
}

// Error implements the error interface.
func (e *CarrierError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *CarrierError) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is for CarrierError; two errors match when their
// codes match.
func (e *CarrierError) Is(target error) bool {
	t, ok := target.(*CarrierError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewCarrierError creates a new CarrierError.
func NewCarrierError(code ErrorCode, message string) *CarrierError {
	return &CarrierError{
		Code:    code,
		Message: message,
	}
}

// WithCause adds a cause to the error.
func (e *CarrierError) WithCause(err error) *CarrierError {
	e.Cause = err
	return e
}

// WithDetail adds a structured detail entry to the error.
func (e *CarrierError) WithDetail(key string, value any) *CarrierError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// AsCarrierError returns the CarrierError in err's chain, or wraps err as
// UNKNOWN_ERROR. Classified errors pass through unchanged.
func AsCarrierError(err error) *CarrierError {
	var cerr *CarrierError
	if errors.As(err, &cerr) {
		return cerr
	}
	return NewCarrierError(CodeUnknownError, err.Error()).WithCause(err)
}

// ErrCarrierNotFound indicates the requested carrier is not registered.
var ErrCarrierNotFound = errors.New("carrier not found")

// HTTPStatus maps an error code to the HTTP status a transport collaborator
// should return.
func HTTPStatus(code ErrorCode) int {
	switch code {
	case CodeAuthFailed:
		return http.StatusUnauthorized
	case CodeValidationError:
		return http.StatusBadRequest
	case CodeRateLimitExceeded:
		return http.StatusTooManyRequests
	case CodeTimeout:
		return http.StatusGatewayTimeout
	case CodeAPIError, CodeMalformedResponse, CodeNetworkError:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
