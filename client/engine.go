package client

import (
	"context"
	"net/http"
	"time"

	"github.com/restline/go-restline/codec"
	"github.com/restline/go-restline/retry"
	"github.com/restline/go-restline/trace"
	"github.com/restline/go-restline/transport"
)

// callOptions select the execution mode for one logical call.
type callOptions struct {
	// bypass skips auth injection and refresh triggering. Only refresh
	// operations run with it set.
	bypass bool
	// allowHTTPError returns non-2xx responses as data instead of errors.
	allowHTTPError bool
}

// Do executes the descriptor and returns the response regardless of status
// code. Transport failures are retried per the effective policy; a non-2xx
// final response is returned as data.
func (c *Client) Do(ctx context.Context, d Descriptor) (*RawResponse, error) {
	return c.execute(ctx, d, callOptions{allowHTTPError: true})
}

// DoExpectSuccess executes the descriptor and requires a 2xx response; a
// non-2xx final response is returned as an *HTTPError.
func (c *Client) DoExpectSuccess(ctx context.Context, d Descriptor) (*RawResponse, error) {
	return c.execute(ctx, d, callOptions{})
}

// execute runs the attempt loop for one logical call: resolve auth, build
// the wire request, send, classify, and decide between returning, retrying,
// and the single permitted refresh-retry.
func (c *Client) execute(ctx context.Context, d Descriptor, opts callOptions) (*RawResponse, error) {
	policy := c.policyFor(&d)
	coding := c.codingFor(&d)

	body, isJSON, err := c.bodyFor(&d, coding)
	if err != nil {
		return nil, err
	}
	query, err := c.queryFor(&d, coding)
	if err != nil {
		return nil, err
	}
	urlStr, err := buildURL(c.baseURL, d.path, query)
	if err != nil {
		return nil, err
	}

	var (
		lastErr          error
		authOverride     string
		refreshAttempted bool
	)

	for attempt := 1; attempt <= policy.MaxAttempts; {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		token := authOverride
		if token == "" && !opts.bypass {
			token, err = c.resolveToken(ctx, &d)
			if err != nil {
				return nil, err
			}
		}

		headers := c.mergeHeaders(ctx, &d, token, isJSON)
		c.logRequest(d.method, urlStr, headers, body)

		resp, err := c.transport.Send(ctx, &transport.Request{
			Method:  d.method,
			URL:     urlStr,
			Headers: headers,
			Body:    body,
			Timeout: c.timeout,
		})
		if err != nil {
			// Caller cancellation is never downgraded to a retryable error.
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			nerr := &NetworkError{wrapped: err}
			lastErr = nerr
			if retry.ShouldRetry(nerr, attempt, policy) {
				if err := c.wait(ctx, retry.DelayFor(attempt, policy, nil)); err != nil {
					return nil, err
				}
				attempt++
				continue
			}
			return nil, nerr
		}

		raw := &RawResponse{
			StatusCode:  resp.StatusCode,
			Body:        resp.Body,
			Headers:     resp.Headers,
			Elapsed:     resp.Elapsed,
			FinalURL:    resp.FinalURL,
			ContentType: resp.ContentType,
		}
		c.logResponse(raw)

		// The refresh-retry is decoupled from the numeric retry budget and
		// bounded to one per logical call, so a rejected refreshed token
		// cannot loop.
		if !opts.bypass && c.shouldRefresh(&d, raw.StatusCode, refreshAttempted) {
			refreshAttempted = true
			refreshed, err := c.refreshToken(ctx, &d)
			if err != nil {
				return nil, err
			}
			if refreshed != token {
				authOverride = refreshed
				continue
			}
		}

		if raw.IsSuccess() {
			return raw, nil
		}

		herr := &HTTPError{Status: raw.StatusCode, Headers: raw.Headers, Body: raw.Body}
		lastErr = herr
		if retry.ShouldRetry(herr, attempt, policy) {
			if err := c.wait(ctx, retry.DelayFor(attempt, policy, raw.Headers)); err != nil {
				return nil, err
			}
			attempt++
			continue
		}
		if opts.allowHTTPError {
			return raw, nil
		}
		return nil, herr
	}

	if lastErr != nil {
		return nil, lastErr
	}
	return nil, &RetryLimitError{Attempts: policy.MaxAttempts}
}

// bodyFor materializes the request body, encoding a JSON body with the
// effective coding.
func (c *Client) bodyFor(d *Descriptor, coding codec.Coding) (body []byte, isJSON bool, err error) {
	if d.jsonBody == nil {
		return d.body, false, nil
	}
	data, err := coding.Marshal(d.jsonBody)
	if err != nil {
		return nil, false, &DecodingError{wrapped: err}
	}
	return data, true, nil
}

// queryFor merges flattened structured query values with explicit
// parameters; explicit parameters win on key collision.
func (c *Client) queryFor(d *Descriptor, coding codec.Coding) (map[string]string, error) {
	if d.jsonQuery == nil {
		return d.query, nil
	}
	flat, err := FlattenQuery(coding, d.jsonQuery)
	if err != nil {
		return nil, err
	}
	for k, v := range d.query {
		flat[k] = v
	}
	return flat, nil
}

// mergeHeaders layers base headers, per-request headers, the Authorization
// header, content type, and trace correlation headers.
func (c *Client) mergeHeaders(ctx context.Context, d *Descriptor, token string, isJSON bool) http.Header {
	merged := c.baseHeaders.Clone()
	if merged == nil {
		merged = make(http.Header)
	}
	for key, values := range d.headers {
		merged.Del(key)
		for _, v := range values {
			merged.Add(key, v)
		}
	}
	if isJSON && merged.Get("Content-Type") == "" {
		merged.Set("Content-Type", "application/json")
	}
	if token != "" {
		merged.Set("Authorization", "Bearer "+token)
	}
	if merged.Get(trace.HeaderXRequestID) == "" {
		merged.Set(trace.HeaderXRequestID, trace.EnsureID(ctx))
	}
	if c.w3cTrace && merged.Get(trace.HeaderTraceParent) == "" {
		merged.Set(trace.HeaderTraceParent, trace.EnsureParent(ctx))
	}
	return merged
}

// wait sleeps for the retry delay, aborting promptly on cancellation.
func (c *Client) wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
