package client

import (
	"net/http"
	"strings"
)

// RedactedValue replaces sensitive header values in debug output.
const RedactedValue = "***"

// defaultMaxBodyLogBytes caps logged body payloads.
const defaultMaxBodyLogBytes = 2048

// builtinRedactedTerms always trigger header redaction, independent of the
// configured denylist.
var builtinRedactedTerms = []string{"authorization", "token", "secret"}

// DebugConfig configures the client's debug-logging side channel.
type DebugConfig struct {
	// Enabled turns on request/response summary logging.
	Enabled bool
	// LogBody additionally logs request and response bodies.
	LogBody bool
	// MaxBodyLogBytes caps logged body bytes (default 2048).
	MaxBodyLogBytes int
	// RedactHeaders extends the built-in redaction denylist. Matching is
	// case-insensitive on the header name.
	RedactHeaders []string
}

func (d *DebugConfig) applyDefaults() {
	if d.MaxBodyLogBytes <= 0 {
		d.MaxBodyLogBytes = defaultMaxBodyLogBytes
	}
}

// shouldRedact reports whether a header's value must be masked in logs.
func (d *DebugConfig) shouldRedact(name string) bool {
	lower := strings.ToLower(name)
	for _, term := range builtinRedactedTerms {
		if strings.Contains(lower, term) {
			return true
		}
	}
	for _, term := range d.RedactHeaders {
		if strings.Contains(lower, strings.ToLower(term)) {
			return true
		}
	}
	return false
}

// redactHeaders flattens headers for logging, masking sensitive values.
func (d *DebugConfig) redactHeaders(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for name, values := range h {
		if d.shouldRedact(name) {
			out[name] = RedactedValue
			continue
		}
		out[name] = strings.Join(values, ", ")
	}
	return out
}

// logRequest logs the outgoing request summary.
func (c *Client) logRequest(method, url string, headers http.Header, body []byte) {
	if !c.debug.Enabled {
		return
	}
	event := c.log.Debug().
		Str("direction", "outbound").
		Str("method", method).
		Str("url", url).
		Interface("headers", c.debug.redactHeaders(headers))
	if c.debug.LogBody && len(body) > 0 {
		event = event.Bytes("body", capBody(body, c.debug.MaxBodyLogBytes))
	}
	event.Msg("REST client request")
}

// logResponse logs the incoming response summary.
func (c *Client) logResponse(resp *RawResponse) {
	if !c.debug.Enabled {
		return
	}
	event := c.log.Debug().
		Str("direction", "inbound").
		Int("status", resp.StatusCode).
		Dur("elapsed", resp.Elapsed).
		Int("body_bytes", len(resp.Body)).
		Interface("headers", c.debug.redactHeaders(resp.Headers))
	if c.debug.LogBody && len(resp.Body) > 0 {
		event = event.Bytes("body", capBody(resp.Body, c.debug.MaxBodyLogBytes))
	}
	event.Msg("REST client response")
}

func capBody(body []byte, maxBytes int) []byte {
	if maxBytes > 0 && len(body) > maxBytes {
		return body[:maxBytes]
	}
	return body
}
