package transport

import (
	"bytes"
	"context"
	"io"
	nethttp "net/http"
	"time"

	"golang.org/x/time/rate"
)

// Options configures the default transport.
type Options struct {
	// RoundTripper overrides the underlying net/http transport.
	RoundTripper nethttp.RoundTripper
	// RequestsPerSecond enables client-side rate limiting when > 0.
	RequestsPerSecond float64
	// Burst is the rate limiter burst size (default 1 when limiting).
	Burst int
	// MaxResponseBytes caps how much of a response body is read
	// (0 = unlimited).
	MaxResponseBytes int64
}

// HTTP is the default Transport over net/http. Timeouts are applied per
// round trip through the request context, so a shared instance can serve
// clients with different timeout configurations.
type HTTP struct {
	client  *nethttp.Client
	limiter *rate.Limiter
	maxBody int64
}

var _ Transport = (*HTTP)(nil)

// NewHTTP creates the default transport.
func NewHTTP(opts Options) *HTTP {
	rt := opts.RoundTripper
	if rt == nil {
		rt = nethttp.DefaultTransport.(*nethttp.Transport).Clone()
	}

	var limiter *rate.Limiter
	if opts.RequestsPerSecond > 0 {
		burst := opts.Burst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), burst)
	}

	return &HTTP{
		client:  &nethttp.Client{Transport: rt},
		limiter: limiter,
		maxBody: opts.MaxResponseBytes,
	}
}

// Send performs one round trip.
func (t *HTTP) Send(ctx context.Context, req *Request) (*Response, error) {
	if t.limiter != nil {
		if err := t.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	if req.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	var body io.Reader
	if len(req.Body) > 0 {
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := nethttp.NewRequestWithContext(ctx, req.Method, req.URL, body)
	if err != nil {
		return nil, err
	}
	for key, values := range req.Headers {
		for _, v := range values {
			httpReq.Header.Add(key, v)
		}
	}

	start := time.Now()
	httpResp, err := t.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer func() { _ = httpResp.Body.Close() }()

	reader := io.Reader(httpResp.Body)
	if t.maxBody > 0 {
		reader = io.LimitReader(reader, t.maxBody)
	}
	respBody, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}

	finalURL := req.URL
	if httpResp.Request != nil && httpResp.Request.URL != nil {
		finalURL = httpResp.Request.URL.String()
	}

	return &Response{
		StatusCode:  httpResp.StatusCode,
		Headers:     httpResp.Header,
		Body:        respBody,
		FinalURL:    finalURL,
		ContentType: httpResp.Header.Get("Content-Type"),
		Elapsed:     time.Since(start),
	}, nil
}
