package client

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"strconv"
	"strings"
)

// defaultRequestField and friends are the wire field names used by
// endpoint-mode refresh when the config leaves them unset.
const (
	defaultRequestField     = "refresh_token"
	defaultAccessTokenField = "access_token"
)

// RefreshConfig configures recovery from unauthorized responses. When a
// response status is in TriggerStatuses, the client obtains a fresh token —
// through the configured endpoint or the custom Handler — and retries the
// request once with it. The refresh operation itself is single-flight: any
// number of concurrent triggers share one in-flight refresh.
type RefreshConfig struct {
	// TriggerStatuses are the response codes that activate refresh.
	// Defaults to {401}.
	TriggerStatuses []int
	// AppliesToPerRequestToken lets requests carrying an explicit token
	// participate in refresh. Off by default: a per-request token that is
	// rejected is returned as-is.
	AppliesToPerRequestToken bool

	// Endpoint mode. The refresh token read from the provider is posted as
	// JSON ({RequestField: token}) to Path, and the new access token is read
	// from AccessTokenField in the response. RefreshTokenField optionally
	// names a rotated refresh token to surface through OnTokensRefreshed.
	Path                 string
	Method               string
	RequestField         string
	AccessTokenField     string
	RefreshTokenField    string
	RefreshTokenProvider TokenProvider

	// OnTokensRefreshed fires after a successful refresh with the new access
	// token and, when configured, the rotated refresh token, so the caller
	// can persist them.
	OnTokensRefreshed func(accessToken, refreshToken string)

	// Handler switches to custom mode: it performs the refresh itself using
	// the restricted bypass client and returns the new access token.
	// Endpoint fields are ignored when set.
	Handler func(ctx context.Context, bypass *BypassClient) (string, error)
}

func (r *RefreshConfig) applyDefaults() {
	if len(r.TriggerStatuses) == 0 {
		r.TriggerStatuses = []int{http.StatusUnauthorized}
	}
	if r.Method == "" {
		r.Method = http.MethodPost
	}
	if r.RequestField == "" {
		r.RequestField = defaultRequestField
	}
	if r.AccessTokenField == "" {
		r.AccessTokenField = defaultAccessTokenField
	}
}

func (r *RefreshConfig) triggersOn(status int) bool {
	return slices.Contains(r.TriggerStatuses, status)
}

// BypassClient issues requests that skip auth injection and refresh
// triggering. It is handed to custom refresh handlers so the refresh call
// itself cannot recurse into the refresh path.
type BypassClient struct {
	c *Client
}

// Do executes a request on the bypass path. Non-2xx responses are returned
// as data, not errors.
func (b *BypassClient) Do(ctx context.Context, d Descriptor) (*RawResponse, error) {
	return b.c.execute(ctx, d, callOptions{bypass: true, allowHTTPError: true})
}

// shouldRefresh decides whether a response status on the standard execution
// path qualifies for an auth-refresh retry.
func (c *Client) shouldRefresh(d *Descriptor, status int, alreadyRefreshed bool) bool {
	if alreadyRefreshed || d.refreshDisabled || d.noAuth {
		return false
	}
	_, _, cfg := c.creds.snapshot()
	if cfg == nil || !cfg.triggersOn(status) {
		return false
	}
	if strings.TrimSpace(d.authToken) != "" && !cfg.AppliesToPerRequestToken {
		return false
	}
	return c.creds.hasCredentialSource()
}

// refreshToken runs, or joins, the single-flight refresh episode and returns
// the refreshed access token. The shared operation is detached from any one
// caller's cancellation; a cancelled waiter detaches promptly while the
// refresh completes for the remaining waiters, and the ticket is always
// cleared when the operation resolves.
func (c *Client) refreshToken(ctx context.Context, d *Descriptor) (string, error) {
	opCtx := context.WithoutCancel(ctx)
	ch := c.creds.sf.DoChan("auth-refresh", func() (any, error) {
		return c.performRefresh(opCtx, d)
	})

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return "", &RefreshError{wrapped: res.Err}
		}
		return res.Val.(string), nil
	}
}

// performRefresh executes one refresh operation and commits the new token to
// the client's credential state on success.
func (c *Client) performRefresh(ctx context.Context, d *Descriptor) (string, error) {
	_, _, cfg := c.creds.snapshot()
	if cfg == nil {
		return "", errors.New("auth refresh is not configured")
	}

	var token, rotated string
	if cfg.Handler != nil {
		tok, err := cfg.Handler(ctx, &BypassClient{c: c})
		if err != nil {
			return "", err
		}
		token = strings.TrimSpace(tok)
	} else {
		var err error
		token, rotated, err = c.endpointRefresh(ctx, cfg, d)
		if err != nil {
			return "", err
		}
	}

	if token == "" {
		return "", errors.New("refresh produced an empty token")
	}

	c.creds.setToken(token)
	if cfg.OnTokensRefreshed != nil {
		cfg.OnTokensRefreshed(token, rotated)
	}
	return token, nil
}

// endpointRefresh posts the current refresh token to the configured endpoint
// on the bypass path and extracts the new tokens from the JSON response.
func (c *Client) endpointRefresh(ctx context.Context, cfg *RefreshConfig, d *Descriptor) (access, rotated string, err error) {
	if cfg.Path == "" {
		return "", "", errors.New("refresh endpoint path is not configured")
	}

	provider := d.refreshTokenProvider
	if provider == nil {
		provider = cfg.RefreshTokenProvider
	}
	if provider == nil {
		return "", "", errors.New("no refresh-token provider configured")
	}

	refreshTok, err := provider(ctx)
	if err != nil {
		return "", "", err
	}
	if refreshTok = strings.TrimSpace(refreshTok); refreshTok == "" {
		return "", "", errors.New("refresh-token provider returned no token")
	}

	req := NewRequest(cfg.Method, cfg.Path).
		WithJSONBody(map[string]string{cfg.RequestField: refreshTok})
	resp, err := c.execute(ctx, req, callOptions{bypass: true})
	if err != nil {
		return "", "", err
	}

	var payload map[string]any
	if err := c.coding.Unmarshal(resp.Body, &payload); err != nil {
		return "", "", err
	}

	access, _ = payload[cfg.AccessTokenField].(string)
	if access = strings.TrimSpace(access); access == "" {
		return "", "", errors.New("refresh response is missing field " + strconv.Quote(cfg.AccessTokenField))
	}
	if cfg.RefreshTokenField != "" {
		rotated, _ = payload[cfg.RefreshTokenField].(string)
	}
	return access, rotated, nil
}
