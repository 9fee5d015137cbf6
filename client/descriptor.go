// Package client implements a typed HTTP REST client: declarative request
// descriptors, an execution engine with retry and single-flight auth refresh,
// configurable JSON coding, and structured errors.
package client

import (
	"maps"
	"net/http"

	"github.com/restline/go-restline/codec"
	"github.com/restline/go-restline/retry"
)

// Descriptor is an immutable description of one logical request. Builder
// methods return modified copies, so descriptors are safe to share across
// concurrent calls.
type Descriptor struct {
	method    string
	path      string
	headers   http.Header
	query     map[string]string
	jsonQuery any
	body      []byte
	jsonBody  any

	authToken       string
	noAuth          bool
	refreshDisabled bool

	retryPolicy          *retry.Policy
	coding               *codec.Coding
	refreshTokenProvider TokenProvider
}

// NewRequest creates a descriptor for the given method and relative path.
func NewRequest(method, path string) Descriptor {
	return Descriptor{method: method, path: path}
}

// Verb constructors. Body-carrying verbs JSON-encode their body with the
// effective coding at dispatch time.

func Get(path string) Descriptor            { return NewRequest(http.MethodGet, path) }
func Delete(path string) Descriptor         { return NewRequest(http.MethodDelete, path) }
func Head(path string) Descriptor           { return NewRequest(http.MethodHead, path) }
func Options(path string) Descriptor        { return NewRequest(http.MethodOptions, path) }
func Post(path string, body any) Descriptor { return NewRequest(http.MethodPost, path).WithJSONBody(body) }
func Put(path string, body any) Descriptor  { return NewRequest(http.MethodPut, path).WithJSONBody(body) }
func Patch(path string, body any) Descriptor {
	return NewRequest(http.MethodPatch, path).WithJSONBody(body)
}

// Method returns the descriptor's HTTP method.
func (d Descriptor) Method() string { return d.method }

// Path returns the descriptor's relative path.
func (d Descriptor) Path() string { return d.path }

// WithMethod returns a copy using the given HTTP method.
func (d Descriptor) WithMethod(method string) Descriptor {
	d.method = method
	return d
}

// WithHeader returns a copy with the header appended.
func (d Descriptor) WithHeader(key, value string) Descriptor {
	h := d.headers.Clone()
	if h == nil {
		h = make(http.Header)
	}
	h.Add(key, value)
	d.headers = h
	return d
}

// WithQuery returns a copy with the query parameter set.
func (d Descriptor) WithQuery(key, value string) Descriptor {
	q := make(map[string]string, len(d.query)+1)
	maps.Copy(q, d.query)
	q[key] = value
	d.query = q
	return d
}

// WithQueryValues returns a copy whose query string is derived from v: v is
// converted to a JSON tree with the effective coding and flattened (nested
// keys dot-joined, arrays comma-joined). Explicit WithQuery parameters win
// on key collision.
func (d Descriptor) WithQueryValues(v any) Descriptor {
	d.jsonQuery = v
	return d
}

// WithBody returns a copy carrying raw body bytes.
func (d Descriptor) WithBody(body []byte) Descriptor {
	d.body = body
	d.jsonBody = nil
	return d
}

// WithJSONBody returns a copy whose body is encoded from v with the
// effective JSON coding at dispatch time.
func (d Descriptor) WithJSONBody(v any) Descriptor {
	d.jsonBody = v
	d.body = nil
	return d
}

// WithAuthToken returns a copy carrying an explicit bearer token that
// overrides the client's token resolution.
func (d Descriptor) WithAuthToken(token string) Descriptor {
	d.authToken = token
	return d
}

// WithNoAuth returns a copy that sends no Authorization header.
func (d Descriptor) WithNoAuth() Descriptor {
	d.noAuth = true
	return d
}

// WithAutoRefresh returns a copy with auth refresh enabled or disabled for
// this request. Refresh is enabled by default.
func (d Descriptor) WithAutoRefresh(enabled bool) Descriptor {
	d.refreshDisabled = !enabled
	return d
}

// WithRetryPolicy returns a copy using the given retry policy instead of the
// client default.
func (d Descriptor) WithRetryPolicy(p retry.Policy) Descriptor {
	d.retryPolicy = &p
	return d
}

// WithCoding returns a copy using the given JSON coding instead of the
// client default.
func (d Descriptor) WithCoding(c codec.Coding) Descriptor {
	d.coding = &c
	return d
}

// WithRefreshTokenProvider returns a copy using the given refresh-token
// provider for endpoint-mode refresh instead of the client-level provider.
func (d Descriptor) WithRefreshTokenProvider(p TokenProvider) Descriptor {
	d.refreshTokenProvider = p
	return d
}
