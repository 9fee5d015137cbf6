package client

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"
)

// TokenProvider resolves a bearer token. Returning an empty (or whitespace)
// string means no token is available.
type TokenProvider func(ctx context.Context) (string, error)

// credentials owns the client's mutable auth state: the static token, the
// token provider, the refresh configuration, and the single-flight group for
// in-flight refresh operations. All reads and writes go through its methods
// under the mutex; request execution itself proceeds concurrently.
type credentials struct {
	mu       sync.Mutex
	token    string
	provider TokenProvider
	refresh  *RefreshConfig
	sf       singleflight.Group
}

func (c *credentials) snapshot() (token string, provider TokenProvider, refresh *RefreshConfig) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token, c.provider, c.refresh
}

func (c *credentials) setToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

func (c *credentials) setProvider(p TokenProvider) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.provider = p
}

func (c *credentials) setRefresh(cfg *RefreshConfig) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if cfg == nil {
		c.refresh = nil
		return
	}
	copied := *cfg
	copied.applyDefaults()
	c.refresh = &copied
}

// resolveToken applies the token precedence rules: per-request token, then
// provider, then the static client token. Whitespace-only tokens are treated
// as absent at every step. An empty result with nil error means "send no
// Authorization header".
func (c *Client) resolveToken(ctx context.Context, d *Descriptor) (string, error) {
	if d.noAuth {
		return "", nil
	}
	if tok := strings.TrimSpace(d.authToken); tok != "" {
		return tok, nil
	}

	static, provider, _ := c.creds.snapshot()
	if provider != nil {
		tok, err := provider(ctx)
		if err != nil {
			return "", fmt.Errorf("token provider: %w", err)
		}
		if tok = strings.TrimSpace(tok); tok != "" {
			return tok, nil
		}
	}

	return strings.TrimSpace(static), nil
}

// hasCredentialSource reports whether a refreshable credential exists: a
// provider or a non-empty static token.
func (c *credentials) hasCredentialSource() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.provider != nil || strings.TrimSpace(c.token) != ""
}
