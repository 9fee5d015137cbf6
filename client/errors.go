package client

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/restline/go-restline/retry"
)

// ClientError represents the different failure modes of the client.
type ClientError interface {
	error
	Type() ErrorType
}

// ErrorType defines the category of client error.
type ErrorType string

const (
	ErrTypeInvalidBaseURL ErrorType = "invalid_base_url"
	ErrTypeInvalidURL     ErrorType = "invalid_url"
	ErrTypeNetwork        ErrorType = "network"
	ErrTypeDecoding       ErrorType = "decoding"
	ErrTypeHTTP           ErrorType = "http"
	ErrTypeEmptyBody      ErrorType = "empty_body"
	ErrTypeRetryLimit     ErrorType = "retry_limit"
	ErrTypeAuthRefresh    ErrorType = "auth_refresh"
	ErrTypeInvalidQuery   ErrorType = "invalid_query"
)

// snippetLimit caps the response body excerpt included in error strings.
const snippetLimit = 2048

// BaseURLError reports a base URL that cannot serve as a request root.
type BaseURLError struct {
	Raw    string
	Reason string
}

func (e *BaseURLError) Error() string {
	return fmt.Sprintf("invalid base URL %q: %s", e.Raw, e.Reason)
}

func (e *BaseURLError) Type() ErrorType { return ErrTypeInvalidBaseURL }

// URLError reports a request URL that could not be constructed.
type URLError struct {
	Reason  string
	wrapped error
}

func (e *URLError) Error() string {
	if e.wrapped != nil {
		return fmt.Sprintf("invalid request URL: %s: %v", e.Reason, e.wrapped)
	}
	return fmt.Sprintf("invalid request URL: %s", e.Reason)
}

func (e *URLError) Type() ErrorType { return ErrTypeInvalidURL }
func (e *URLError) Unwrap() error   { return e.wrapped }

// NetworkError reports a transport-level round trip failure.
type NetworkError struct {
	wrapped error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %v", e.wrapped)
}

func (e *NetworkError) Type() ErrorType { return ErrTypeNetwork }
func (e *NetworkError) Unwrap() error   { return e.wrapped }

// RetryClass classifies network errors as retryable per policy.
func (e *NetworkError) RetryClass() retry.Class { return retry.ClassNetwork }

// DecodingError reports a response payload that could not be decoded.
type DecodingError struct {
	wrapped error
}

func (e *DecodingError) Error() string {
	return fmt.Sprintf("decoding error: %v", e.wrapped)
}

func (e *DecodingError) Type() ErrorType { return ErrTypeDecoding }
func (e *DecodingError) Unwrap() error   { return e.wrapped }

// HTTPError reports a non-2xx response when the caller asked for success.
// It carries the full status, headers, and body for inspection.
type HTTPError struct {
	Status  int
	Headers http.Header
	Body    []byte
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.Status, e.Snippet())
}

func (e *HTTPError) Type() ErrorType { return ErrTypeHTTP }

// StatusCode satisfies retry.StatusCoder.
func (e *HTTPError) StatusCode() int { return e.Status }

// RetryClass classifies HTTP errors by their status code per policy.
func (e *HTTPError) RetryClass() retry.Class { return retry.ClassHTTP }

// Snippet returns the response body truncated to a bounded excerpt.
func (e *HTTPError) Snippet() string {
	if len(e.Body) > snippetLimit {
		return string(e.Body[:snippetLimit]) + "..."
	}
	return string(e.Body)
}

// EmptyBodyError reports a success response with no payload where the caller
// required a decoded value.
type EmptyBodyError struct {
	ExpectedType string
}

func (e *EmptyBodyError) Error() string {
	return fmt.Sprintf("empty response body, expected %s", e.ExpectedType)
}

func (e *EmptyBodyError) Type() ErrorType { return ErrTypeEmptyBody }

// RetryLimitError reports attempt exhaustion without a recorded failure.
type RetryLimitError struct {
	Attempts int
}

func (e *RetryLimitError) Error() string {
	return fmt.Sprintf("retry limit reached after %d attempts", e.Attempts)
}

func (e *RetryLimitError) Type() ErrorType { return ErrTypeRetryLimit }

// RefreshError reports a failed auth-refresh operation. Callers can
// distinguish "could not refresh" from "refreshed but still unauthorized"
// (the latter surfaces as an HTTPError).
type RefreshError struct {
	wrapped error
}

func (e *RefreshError) Error() string {
	return fmt.Sprintf("auth refresh failed: %v", e.wrapped)
}

func (e *RefreshError) Type() ErrorType { return ErrTypeAuthRefresh }
func (e *RefreshError) Unwrap() error   { return e.wrapped }

// QueryError reports query parameters that could not be encoded.
type QueryError struct {
	Reason  string
	wrapped error
}

func (e *QueryError) Error() string {
	if e.wrapped != nil {
		return fmt.Sprintf("invalid query parameters: %s: %v", e.Reason, e.wrapped)
	}
	return fmt.Sprintf("invalid query parameters: %s", e.Reason)
}

func (e *QueryError) Type() ErrorType { return ErrTypeInvalidQuery }
func (e *QueryError) Unwrap() error   { return e.wrapped }

// IsErrorType reports whether err (or anything it wraps) is a ClientError of
// the given type.
func IsErrorType(err error, t ErrorType) bool {
	var ce ClientError
	if errors.As(err, &ce) {
		return ce.Type() == t
	}
	return false
}
