package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/restline/go-restline/codec"
)

const minimalYAML = "base_url: https://api.example.com\n"

func TestLoadBytesDefaults(t *testing.T) {
	s, err := LoadBytes([]byte(minimalYAML))
	require.NoError(t, err)

	assert.Equal(t, "https://api.example.com", s.BaseURL)
	assert.Equal(t, 30*time.Second, s.Timeout)
	assert.Equal(t, 3, s.Retry.MaxAttempts)
	assert.Equal(t, 250*time.Millisecond, s.Retry.BaseDelay)
	assert.Equal(t, 2.0, s.Retry.BackoffMultiplier)
	assert.Equal(t, 10*time.Second, s.Retry.MaxDelay)
	assert.Equal(t, []int{408, 429, 500, 502, 503, 504}, s.Retry.RetryableStatuses)
	assert.True(t, s.Retry.RetryOnNetworkErrors)
	assert.Equal(t, "deferred", s.Coding.Dates)
	assert.Equal(t, "verbatim", s.Coding.Keys)
	assert.Equal(t, "base64", s.Coding.Data)
}

func TestLoadBytesOverrides(t *testing.T) {
	yaml := `
base_url: https://api.example.com/v2
timeout: 5s
headers:
  X-Api-Version: "2"
retry:
  max_attempts: 5
  base_delay: 100ms
coding:
  dates: millis
  keys: snake_case
auth:
  token: static-tok
  refresh_path: auth/refresh
debug:
  enabled: true
  log_body: true
`
	s, err := LoadBytes([]byte(yaml))
	require.NoError(t, err)

	assert.Equal(t, 5*time.Second, s.Timeout)
	assert.Equal(t, "2", s.Headers["X-Api-Version"])
	assert.Equal(t, 5, s.Retry.MaxAttempts)
	assert.Equal(t, 100*time.Millisecond, s.Retry.BaseDelay)
	assert.Equal(t, "millis", s.Coding.Dates)
	assert.Equal(t, "snake_case", s.Coding.Keys)
	assert.Equal(t, "static-tok", s.Auth.Token)
	assert.Equal(t, "auth/refresh", s.Auth.RefreshPath)
	assert.True(t, s.Debug.Enabled)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "client.yaml")
	require.NoError(t, os.WriteFile(path, []byte(minimalYAML), 0o600))

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://api.example.com", s.BaseURL)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("RESTLINE_BASE_URL", "https://env.example.com")
	t.Setenv("RESTLINE_RETRY__MAX_ATTEMPTS", "7")
	t.Setenv("RESTLINE_CODING__KEYS", "snake_case")

	s, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "https://env.example.com", s.BaseURL)
	assert.Equal(t, 7, s.Retry.MaxAttempts)
	assert.Equal(t, "snake_case", s.Coding.Keys)
}

func TestEnvironmentBeatsFile(t *testing.T) {
	t.Setenv("RESTLINE_BASE_URL", "https://env.example.com")

	s, err := LoadBytes([]byte(minimalYAML))
	require.NoError(t, err)
	assert.Equal(t, "https://env.example.com", s.BaseURL)
}

func TestValidation(t *testing.T) {
	t.Run("base_url is required", func(t *testing.T) {
		_, err := LoadBytes([]byte("timeout: 5s\n"))
		assert.Error(t, err)
	})

	t.Run("coding strategy names are checked", func(t *testing.T) {
		_, err := LoadBytes([]byte(minimalYAML + "coding:\n  dates: roman\n"))
		assert.Error(t, err)
	})

	t.Run("retry attempts must be positive", func(t *testing.T) {
		_, err := LoadBytes([]byte(minimalYAML + "retry:\n  max_attempts: -2\n"))
		assert.Error(t, err)
	})
}

func TestClientConfigMapping(t *testing.T) {
	yaml := `
base_url: https://api.example.com
timeout: 2s
requests_per_second: 10
rate_burst: 3
retry:
  max_attempts: 4
coding:
  dates: iso8601_fractional
  keys: snake_case
  data: verbatim
auth:
  token: tok
  refresh_path: auth/refresh
  refresh_method: PUT
debug:
  enabled: true
  redact_headers: [X-Internal]
`
	s, err := LoadBytes([]byte(yaml))
	require.NoError(t, err)

	cfg := s.ClientConfig()
	assert.Equal(t, 2*time.Second, cfg.Timeout)
	assert.Equal(t, 10.0, cfg.RequestsPerSecond)
	assert.Equal(t, 3, cfg.RateBurst)
	require.NotNil(t, cfg.Retry)
	assert.Equal(t, 4, cfg.Retry.MaxAttempts)
	require.NotNil(t, cfg.Coding)
	assert.Equal(t, codec.DateISO8601Fractional, cfg.Coding.Dates)
	assert.Equal(t, codec.KeysSnakeCase, cfg.Coding.Keys)
	assert.Equal(t, codec.DataVerbatim, cfg.Coding.Data)
	assert.Equal(t, "tok", cfg.AuthToken)
	require.NotNil(t, cfg.Refresh)
	assert.Equal(t, "auth/refresh", cfg.Refresh.Path)
	assert.Equal(t, "PUT", cfg.Refresh.Method)
	require.NotNil(t, cfg.Debug)
	assert.True(t, cfg.Debug.Enabled)
	assert.Equal(t, []string{"X-Internal"}, cfg.Debug.RedactHeaders)

	c, err := s.NewClient()
	require.NoError(t, err)
	assert.Equal(t, "https://api.example.com", c.BaseURL())
}

func TestClientConfigWithoutRefresh(t *testing.T) {
	s, err := LoadBytes([]byte(minimalYAML))
	require.NoError(t, err)

	cfg := s.ClientConfig()
	assert.Nil(t, cfg.Refresh)
	assert.Nil(t, cfg.Debug)
}
