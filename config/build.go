package config

import (
	"github.com/restline/go-restline/client"
	"github.com/restline/go-restline/codec"
	"github.com/restline/go-restline/retry"
)

// NewClient constructs a client from loaded settings.
func (s *Settings) NewClient() (*client.Client, error) {
	return client.New(s.BaseURL, s.ClientConfig())
}

// ClientConfig maps settings onto a client.Config.
func (s *Settings) ClientConfig() client.Config {
	policy := retry.Policy{
		MaxAttempts:          s.Retry.MaxAttempts,
		BaseDelay:            s.Retry.BaseDelay,
		BackoffMultiplier:    s.Retry.BackoffMultiplier,
		MaxDelay:             s.Retry.MaxDelay,
		RetryableStatuses:    s.Retry.RetryableStatuses,
		RetryOnNetworkErrors: s.Retry.RetryOnNetworkErrors,
	}

	coding := codec.Coding{
		Dates:         dateStrategy(s.Coding.Dates),
		Keys:          keyStrategy(s.Coding.Keys),
		Data:          dataStrategy(s.Coding.Data),
		PrettyPrinted: s.Coding.PrettyPrinted,
	}

	cfg := client.Config{
		BaseHeaders:       s.Headers,
		Timeout:           s.Timeout,
		Retry:             &policy,
		Coding:            &coding,
		AuthToken:         s.Auth.Token,
		RequestsPerSecond: s.RequestsPerSecond,
		RateBurst:         s.RateBurst,
	}

	if s.Auth.RefreshPath != "" {
		cfg.Refresh = &client.RefreshConfig{
			Path:              s.Auth.RefreshPath,
			Method:            s.Auth.RefreshMethod,
			RequestField:      s.Auth.RefreshRequestField,
			AccessTokenField:  s.Auth.RefreshAccessTokenField,
			RefreshTokenField: s.Auth.RefreshRefreshTokenField,
		}
	}

	if s.Debug.Enabled {
		cfg.Debug = &client.DebugConfig{
			Enabled:         true,
			LogBody:         s.Debug.LogBody,
			MaxBodyLogBytes: s.Debug.MaxBodyLogBytes,
			RedactHeaders:   s.Debug.RedactHeaders,
		}
	}

	return cfg
}

func dateStrategy(name string) codec.DateStrategy {
	switch name {
	case "seconds":
		return codec.DateSecondsSince1970
	case "millis":
		return codec.DateMillisecondsSince1970
	case "iso8601":
		return codec.DateISO8601
	case "iso8601_fractional":
		return codec.DateISO8601Fractional
	default:
		return codec.DateDeferred
	}
}

func keyStrategy(name string) codec.KeyStrategy {
	if name == "snake_case" {
		return codec.KeysSnakeCase
	}
	return codec.KeysVerbatim
}

func dataStrategy(name string) codec.DataStrategy {
	if name == "verbatim" {
		return codec.DataVerbatim
	}
	return codec.DataBase64
}
