// Package config loads client configuration from YAML files, raw bytes, and
// environment variables, with priority: environment > file > defaults.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	env "github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

// envPrefix namespaces the environment variables the loader reads,
// e.g. RESTLINE_BASE_URL overrides base_url.
const envPrefix = "RESTLINE_"

// Settings is the serializable client configuration.
type Settings struct {
	BaseURL string            `koanf:"base_url" validate:"required"`
	Timeout time.Duration     `koanf:"timeout" validate:"omitempty,min=100ms"`
	Headers map[string]string `koanf:"headers"`

	Retry  RetrySettings  `koanf:"retry"`
	Coding CodingSettings `koanf:"coding"`
	Auth   AuthSettings   `koanf:"auth"`
	Debug  DebugSettings  `koanf:"debug"`

	RequestsPerSecond float64 `koanf:"requests_per_second" validate:"gte=0"`
	RateBurst         int     `koanf:"rate_burst" validate:"gte=0"`
}

// RetrySettings mirrors retry.Policy.
type RetrySettings struct {
	MaxAttempts          int           `koanf:"max_attempts" validate:"omitempty,gte=1"`
	BaseDelay            time.Duration `koanf:"base_delay" validate:"gte=0"`
	BackoffMultiplier    float64       `koanf:"backoff_multiplier" validate:"omitempty,gte=1"`
	MaxDelay             time.Duration `koanf:"max_delay" validate:"gte=0"`
	RetryableStatuses    []int         `koanf:"retryable_statuses" validate:"dive,gte=100,lt=600"`
	RetryOnNetworkErrors bool          `koanf:"retry_on_network_errors"`
}

// CodingSettings names a JSON coding convention.
type CodingSettings struct {
	Dates         string `koanf:"dates" validate:"omitempty,oneof=deferred seconds millis iso8601 iso8601_fractional"`
	Keys          string `koanf:"keys" validate:"omitempty,oneof=verbatim snake_case"`
	Data          string `koanf:"data" validate:"omitempty,oneof=base64 verbatim"`
	PrettyPrinted bool   `koanf:"pretty_printed"`
}

// AuthSettings carries the static credential part of the configuration.
// Providers and refresh handlers are code, not configuration.
type AuthSettings struct {
	Token string `koanf:"token"`

	RefreshPath              string `koanf:"refresh_path"`
	RefreshMethod            string `koanf:"refresh_method"`
	RefreshRequestField      string `koanf:"refresh_request_field"`
	RefreshAccessTokenField  string `koanf:"refresh_access_token_field"`
	RefreshRefreshTokenField string `koanf:"refresh_refresh_token_field"`
}

// DebugSettings mirrors client.DebugConfig.
type DebugSettings struct {
	Enabled         bool     `koanf:"enabled"`
	LogBody         bool     `koanf:"log_body"`
	MaxBodyLogBytes int      `koanf:"max_body_log_bytes" validate:"gte=0"`
	RedactHeaders   []string `koanf:"redact_headers"`
}

var validate = validator.New()

// Load reads settings from an optional YAML file and the environment.
// An empty path skips file loading.
func Load(path string) (*Settings, error) {
	k, err := baseKoanf()
	if err != nil {
		return nil, err
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("config: load %s: %w", path, err)
		}
	}
	return finish(k)
}

// LoadBytes reads settings from in-memory YAML and the environment.
func LoadBytes(data []byte) (*Settings, error) {
	k, err := baseKoanf()
	if err != nil {
		return nil, err
	}
	if err := k.Load(rawbytes.Provider(data), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}
	return finish(k)
}

func baseKoanf() (*koanf.Koanf, error) {
	k := koanf.New(".")
	defaults := map[string]any{
		"timeout":                       "30s",
		"retry.max_attempts":            3,
		"retry.base_delay":              "250ms",
		"retry.backoff_multiplier":      2.0,
		"retry.max_delay":               "10s",
		"retry.retryable_statuses":      []int{408, 429, 500, 502, 503, 504},
		"retry.retry_on_network_errors": true,
		"coding.dates":                  "deferred",
		"coding.keys":                   "verbatim",
		"coding.data":                   "base64",
	}
	if err := k.Load(confmap.Provider(defaults, "."), nil); err != nil {
		return nil, fmt.Errorf("config: load defaults: %w", err)
	}
	return k, nil
}

func finish(k *koanf.Koanf) (*Settings, error) {
	if err := k.Load(env.Provider(".", env.Opt{
		Prefix: envPrefix,
		TransformFunc: func(key, value string) (string, any) {
			key = strings.ToLower(strings.TrimPrefix(key, envPrefix))
			return strings.ReplaceAll(key, "__", "."), value
		},
	}), nil); err != nil {
		return nil, fmt.Errorf("config: load environment: %w", err)
	}

	var s Settings
	if err := k.Unmarshal("", &s); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := validate.Struct(&s); err != nil {
		return nil, fmt.Errorf("config: invalid configuration: %w", err)
	}
	return &s, nil
}
