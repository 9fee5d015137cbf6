package client

import (
	"bytes"
	"context"
	"fmt"
	"reflect"
)

// Execute performs the call and decodes the 2xx response body into T using
// the effective JSON coding. An empty body yields (nil, nil); callers that
// require a payload can use RequireValue.
func Execute[T any](ctx context.Context, c *Client, d Descriptor) (*T, error) {
	resp, err := c.execute(ctx, d, callOptions{})
	if err != nil {
		return nil, err
	}
	if emptyBody(resp.Body) {
		return nil, nil
	}
	coding := c.codingFor(&d)
	var out T
	if err := coding.Unmarshal(resp.Body, &out); err != nil {
		return nil, &DecodingError{wrapped: err}
	}
	return &out, nil
}

// RequireValue converts the nil result of an empty response body into an
// *EmptyBodyError.
func RequireValue[T any](v *T, err error) (*T, error) {
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, &EmptyBodyError{ExpectedType: fmt.Sprintf("%v", reflect.TypeOf((*T)(nil)).Elem())}
	}
	return v, nil
}

// ResultKind discriminates the three outcomes of ExecuteResult.
type ResultKind int

const (
	// KindSuccess is a 2xx response whose body decoded (or was empty).
	KindSuccess ResultKind = iota
	// KindAPIError is a non-2xx response, with the error payload decoded
	// when possible.
	KindAPIError
	// KindFailure is a transport, URL, refresh, or decoding failure.
	KindFailure
)

// Result is the three-way outcome of a result-style execution. Exactly one
// variant applies; none of them is a panic or a lost error.
type Result[T any, E any] struct {
	kind     ResultKind
	value    *T
	apiError *E
	response *RawResponse
	err      error
}

// Kind returns which variant this result is.
func (r Result[T, E]) Kind() ResultKind { return r.kind }

// Value returns the decoded success payload. It is nil for non-success
// results and for empty 2xx bodies.
func (r Result[T, E]) Value() *T { return r.value }

// APIError returns the decoded error payload of a non-2xx response. It may
// be nil even for KindAPIError when the body did not decode into E.
func (r Result[T, E]) APIError() *E { return r.apiError }

// Response returns the raw response when one was received (success and
// apiError variants).
func (r Result[T, E]) Response() *RawResponse { return r.response }

// Err returns the failure when Kind is KindFailure, else nil.
func (r Result[T, E]) Err() error {
	if r.kind == KindFailure {
		return r.err
	}
	return nil
}

// ExecuteResult performs the call and folds every outcome into a Result:
// 2xx with a decodable (or empty) body is Success; non-2xx is APIError with
// a best-effort decode of E; everything else, including a 2xx body that does
// not decode, is Failure. It never panics and never swallows an error.
func ExecuteResult[T any, E any](ctx context.Context, c *Client, d Descriptor) Result[T, E] {
	resp, err := c.execute(ctx, d, callOptions{allowHTTPError: true})
	if err != nil {
		return Result[T, E]{kind: KindFailure, err: err}
	}

	coding := c.codingFor(&d)
	if resp.IsSuccess() {
		if emptyBody(resp.Body) {
			return Result[T, E]{kind: KindSuccess, response: resp}
		}
		var out T
		if err := coding.Unmarshal(resp.Body, &out); err != nil {
			return Result[T, E]{kind: KindFailure, err: &DecodingError{wrapped: err}, response: resp}
		}
		return Result[T, E]{kind: KindSuccess, value: &out, response: resp}
	}

	var apiErr *E
	if !emptyBody(resp.Body) {
		var e E
		if err := coding.Unmarshal(resp.Body, &e); err == nil {
			apiErr = &e
		}
	}
	return Result[T, E]{kind: KindAPIError, apiError: apiErr, response: resp}
}

func emptyBody(body []byte) bool {
	return len(bytes.TrimSpace(body)) == 0
}
