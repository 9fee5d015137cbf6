// Package transport defines the wire capability consumed by the client: one
// HTTP round trip per Send call. A default net/http implementation is
// provided; callers can substitute their own for testing or custom stacks.
package transport

import (
	"context"
	"net/http"
	"time"
)

// Request describes one wire request. The client builds it fully: absolute
// URL, merged headers, body bytes, and the per-round-trip timeout.
type Request struct {
	Method  string
	URL     string
	Headers http.Header
	Body    []byte
	Timeout time.Duration
}

// Response is the outcome of one successful round trip. FinalURL reflects
// any redirects the transport followed.
type Response struct {
	StatusCode  int
	Headers     http.Header
	Body        []byte
	FinalURL    string
	ContentType string
	Elapsed     time.Duration
}

// Transport performs exactly one request/response round trip. A returned
// error means the round trip itself failed (connection, DNS, timeout);
// protocol-level failures are reported through Response.StatusCode.
type Transport interface {
	Send(ctx context.Context, req *Request) (*Response, error)
}
