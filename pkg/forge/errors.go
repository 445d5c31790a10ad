package forge

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/clientforge-io/forge/internal/path"
)

// Path expression errors are produced by the internal engine and surfaced
// unchanged so callers can tell a malformed expression from an absent field.
type (
	// PathSyntaxError reports a malformed path expression.
	PathSyntaxError = path.SyntaxError
	// PathEvaluationError reports a required path that matched nothing.
	PathEvaluationError = path.EvaluationError
	// TypeConversionError reports a match that cannot be coerced for
	// arithmetic postprocessing.
	TypeConversionError = path.ConversionError
)

// ConfigurationError reports invalid paginator, schema, or client
// configuration. It is raised once at construction or first use and never
// retried.
type ConfigurationError struct {
	Message string
	Err     error
}

func (e *ConfigurationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("configuration error: %s: %v", e.Message, e.Err)
	}

	return "configuration error: " + e.Message
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

func newConfigurationError(format string, args ...any) *ConfigurationError {
	return &ConfigurationError{Message: fmt.Sprintf(format, args...)}
}

// DecodeError reports that a node could not be mapped to a model type.
type DecodeError struct {
	Target string
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decoding into %s: %v", e.Target, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// APIError represents one error object returned by an API.
type APIError struct {
	Status int    `json:"status" yaml:"status"`
	Title  string `json:"title"  yaml:"title"`
	Detail string `json:"detail" yaml:"detail"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s (status: %d)", e.Title, e.Detail, e.Status)
}

// ResponseError represents a non-2xx response from the API.
type ResponseError struct {
	StatusCode int        `json:"status_code"`
	Errors     []APIError `json:"errors"`
}

// Error implements the error interface for ResponseError.
func (e *ResponseError) Error() string {
	switch len(e.Errors) {
	case 0:
		return fmt.Sprintf("request failed with status %d", e.StatusCode)
	case 1:
		return e.Errors[0].Error()
	default:
		return fmt.Sprintf("multiple errors: %v", e.Errors)
	}
}

// FirstError returns the first error or nil.
func (e *ResponseError) FirstError() *APIError {
	if len(e.Errors) > 0 {
		return &e.Errors[0]
	}

	return nil
}

// Common static errors that can be wrapped with context.
var (
	ErrConfigRequired      = errors.New("config is required")
	ErrEndpointRequired    = errors.New("API endpoint is required")
	ErrNoMoreItems         = errors.New("no more items")
	ErrNotSingleResult     = errors.New("result does not wrap exactly one item")
	ErrIndexOutOfRange     = errors.New("result index out of range")
	ErrPaginatorExhausted  = errors.New("paginator is exhausted")
	ErrPaginationUnderway  = errors.New("paginator has not recorded the pending page")
	ErrCacheKeyNotFound    = errors.New("cache key not found")
	ErrCacheEntryExpired   = errors.New("cache entry expired")
	ErrCacheDisabled       = errors.New("cache disabled")
	ErrKeyNotFoundInChain  = errors.New("key not found in any cache")
	ErrUnsupportedCache    = errors.New("unsupported cache type")
	ErrNATSConfigRequired  = errors.New("NATS configuration required for NATS cache")
	ErrNotAuthenticated    = errors.New("not authenticated")
	ErrStaticTokenRefresh  = errors.New("static token cannot be refreshed")
	ErrConditionFieldUnset = errors.New("condition references an empty field")
)

// IsNotFound checks if the error is an HTTP not-found failure.
func IsNotFound(err error) bool {
	return responseStatusIs(err, http.StatusNotFound)
}

// IsUnauthorized checks if the error is an authentication failure.
func IsUnauthorized(err error) bool {
	return responseStatusIs(err, http.StatusUnauthorized)
}

// IsForbidden checks if the error is an authorization failure.
func IsForbidden(err error) bool {
	return responseStatusIs(err, http.StatusForbidden)
}

func responseStatusIs(err error, status int) bool {
	respErr := &ResponseError{}
	if errors.As(err, &respErr) {
		return respErr.StatusCode == status
	}

	apiErr := &APIError{}
	if errors.As(err, &apiErr) {
		return apiErr.Status == status
	}

	return false
}

// IsPathSyntax checks if the error is a malformed path expression.
func IsPathSyntax(err error) bool {
	target := &PathSyntaxError{}

	return errors.As(err, &target)
}

// IsPathEvaluation checks if the error is a required path that matched
// nothing.
func IsPathEvaluation(err error) bool {
	target := &PathEvaluationError{}

	return errors.As(err, &target)
}

// IsTypeConversion checks if the error is a failed arithmetic coercion.
func IsTypeConversion(err error) bool {
	target := &TypeConversionError{}

	return errors.As(err, &target)
}

// IsConfiguration checks if the error is a configuration error.
func IsConfiguration(err error) bool {
	target := &ConfigurationError{}

	return errors.As(err, &target)
}

// IsDecode checks if the error is a model decode failure.
func IsDecode(err error) bool {
	target := &DecodeError{}

	return errors.As(err, &target)
}
