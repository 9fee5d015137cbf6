package client

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/restline/go-restline/codec"
	"github.com/restline/go-restline/logger"
	"github.com/restline/go-restline/retry"
	"github.com/restline/go-restline/transport"
)

const (
	// DefaultTimeout is the default per-round-trip timeout.
	DefaultTimeout = 30 * time.Second
	// minTimeout is the smallest accepted timeout.
	minTimeout = 100 * time.Millisecond
)

// Config holds the client configuration. Zero values fall back to defaults.
type Config struct {
	// BaseHeaders are sent with every request; per-request headers override
	// them on key collision.
	BaseHeaders map[string]string
	// Timeout applies per transport round trip, not per logical call.
	// Defaults to 30s; must be at least 100ms.
	Timeout time.Duration
	// Retry is the default retry policy. Defaults to retry.DefaultPolicy().
	Retry *retry.Policy
	// Coding is the default JSON coding. Defaults to codec.Default().
	Coding *codec.Coding

	// AuthToken is the static bearer token.
	AuthToken string
	// TokenProvider resolves a bearer token per request; it takes precedence
	// over AuthToken.
	TokenProvider TokenProvider
	// Refresh configures unauthorized-response recovery.
	Refresh *RefreshConfig

	// Transport overrides the wire transport. Defaults to transport.NewHTTP.
	Transport transport.Transport
	// RequestsPerSecond enables client-side rate limiting on the default
	// transport when > 0. Ignored when Transport is set.
	RequestsPerSecond float64
	// RateBurst is the rate limiter burst size.
	RateBurst int

	// Debug configures request/response debug logging.
	Debug *DebugConfig
	// Logger receives debug log events. Defaults to a discarding logger
	// unless Debug is enabled, in which case a zerolog logger is created.
	Logger logger.Logger

	// EnableW3CTrace additionally propagates a W3C traceparent header.
	EnableW3CTrace bool
}

// Client executes declarative request descriptors against one base endpoint.
// It is safe for concurrent use; credential state is isolated behind its own
// lock while requests proceed in parallel.
type Client struct {
	baseURL     *url.URL
	baseHeaders http.Header
	timeout     time.Duration
	policy      retry.Policy
	coding      codec.Coding
	transport   transport.Transport
	log         logger.Logger
	debug       DebugConfig
	w3cTrace    bool

	creds credentials
}

// New creates a client for the given base endpoint. The base URL must parse
// with an http or https scheme and a non-empty host.
func New(baseURL string, cfg Config) (*Client, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, &BaseURLError{Raw: baseURL, Reason: err.Error()}
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, &BaseURLError{Raw: baseURL, Reason: "scheme must be http or https"}
	}
	if parsed.Host == "" {
		return nil, &BaseURLError{Raw: baseURL, Reason: "host must not be empty"}
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	if timeout < minTimeout {
		return nil, fmt.Errorf("client: timeout %v is below the %v minimum", timeout, minTimeout)
	}

	policy := retry.DefaultPolicy()
	if cfg.Retry != nil {
		policy = cfg.Retry.Normalized()
	}

	coding := codec.Default()
	if cfg.Coding != nil {
		coding = *cfg.Coding
	}

	tr := cfg.Transport
	if tr == nil {
		tr = transport.NewHTTP(transport.Options{
			RequestsPerSecond: cfg.RequestsPerSecond,
			Burst:             cfg.RateBurst,
		})
	}

	debug := DebugConfig{}
	if cfg.Debug != nil {
		debug = *cfg.Debug
		debug.applyDefaults()
	}

	log := cfg.Logger
	if log == nil {
		if debug.Enabled {
			log = logger.New("debug", false)
		} else {
			log = logger.Noop()
		}
	}

	baseHeaders := make(http.Header, len(cfg.BaseHeaders))
	for k, v := range cfg.BaseHeaders {
		baseHeaders.Set(k, v)
	}

	c := &Client{
		baseURL:     parsed,
		baseHeaders: baseHeaders,
		timeout:     timeout,
		policy:      policy,
		coding:      coding,
		transport:   tr,
		log:         log,
		debug:       debug,
		w3cTrace:    cfg.EnableW3CTrace,
	}
	c.creds.token = strings.TrimSpace(cfg.AuthToken)
	c.creds.provider = cfg.TokenProvider
	c.creds.setRefresh(cfg.Refresh)
	return c, nil
}

// SetAuthToken replaces the client's static bearer token.
func (c *Client) SetAuthToken(token string) {
	c.creds.setToken(strings.TrimSpace(token))
}

// SetTokenProvider replaces the client's token provider.
func (c *Client) SetTokenProvider(p TokenProvider) {
	c.creds.setProvider(p)
}

// SetRefreshConfig replaces the client's auth-refresh configuration.
// Passing nil disables refresh.
func (c *Client) SetRefreshConfig(cfg *RefreshConfig) {
	c.creds.setRefresh(cfg)
}

// BaseURL returns the client's base endpoint.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

func (c *Client) policyFor(d *Descriptor) retry.Policy {
	if d.retryPolicy != nil {
		return d.retryPolicy.Normalized()
	}
	return c.policy
}

func (c *Client) codingFor(d *Descriptor) codec.Coding {
	if d.coding != nil {
		return *d.coding
	}
	return c.coding
}
