// Package retry provides the retry decision policy used by the client's
// execution engine. A Policy is a plain value; ShouldRetry and DelayFor are
// pure functions over it, which keeps retry behavior deterministic and
// directly testable.
package retry

import (
	"errors"
	"math"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"
)

// Classifier is implemented by errors that expose retry classification.
// The client's network and HTTP errors implement it.
type Classifier interface {
	// RetryClass returns the error's classification for retry purposes.
	RetryClass() Class
}

// Class categorizes an error for retry decisions.
type Class int

const (
	// ClassNone marks errors that are never retried (configuration,
	// decoding, refresh failures).
	ClassNone Class = iota
	// ClassNetwork marks transport-level failures (connect, DNS, timeout).
	ClassNetwork
	// ClassHTTP marks non-2xx protocol responses.
	ClassHTTP
)

// StatusCoder is implemented by HTTP-classified errors carrying a status code.
type StatusCoder interface {
	StatusCode() int
}

// Policy describes when and how quickly a failed attempt is retried.
// MaxAttempts includes the first try; a Policy with MaxAttempts 1 never
// retries. The zero value retries nothing.
type Policy struct {
	MaxAttempts          int
	BaseDelay            time.Duration
	BackoffMultiplier    float64
	MaxDelay             time.Duration
	RetryableStatuses    []int
	RetryOnNetworkErrors bool
}

// DefaultPolicy retries transient server failures with exponential backoff.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:          3,
		BaseDelay:            250 * time.Millisecond,
		BackoffMultiplier:    2.0,
		MaxDelay:             10 * time.Second,
		RetryableStatuses:    []int{http.StatusRequestTimeout, http.StatusTooManyRequests, http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout},
		RetryOnNetworkErrors: true,
	}
}

// NoRetry performs exactly one attempt.
func NoRetry() Policy {
	return Policy{MaxAttempts: 1}
}

// Normalized returns a copy with out-of-range fields clamped to valid values.
func (p Policy) Normalized() Policy {
	if p.MaxAttempts < 1 {
		p.MaxAttempts = 1
	}
	if p.BaseDelay < 0 {
		p.BaseDelay = 0
	}
	if p.BackoffMultiplier < 1 {
		p.BackoffMultiplier = 1
	}
	if p.MaxDelay < 0 {
		p.MaxDelay = 0
	}
	return p
}

// ShouldRetry reports whether another attempt is allowed after err failed
// attempt number attempt (1-based).
func ShouldRetry(err error, attempt int, p Policy) bool {
	p = p.Normalized()
	if attempt >= p.MaxAttempts {
		return false
	}

	class := ClassNone
	if c, ok := classify(err); ok {
		class = c
	}

	switch class {
	case ClassNetwork:
		return p.RetryOnNetworkErrors
	case ClassHTTP:
		sc, ok := statusCode(err)
		return ok && slices.Contains(p.RetryableStatuses, sc)
	default:
		return false
	}
}

// DelayFor computes the wait before the next attempt, where attempt is the
// 1-based index of the attempt that just failed. A non-negative numeric
// Retry-After header takes precedence over the computed backoff.
func DelayFor(attempt int, p Policy, lastHeaders http.Header) time.Duration {
	p = p.Normalized()

	if lastHeaders != nil {
		if raw := strings.TrimSpace(lastHeaders.Get("Retry-After")); raw != "" {
			if secs, err := strconv.ParseFloat(raw, 64); err == nil && secs >= 0 {
				return time.Duration(secs * float64(time.Second))
			}
		}
	}

	if attempt < 1 {
		attempt = 1
	}
	delay := float64(p.BaseDelay) * math.Pow(p.BackoffMultiplier, float64(attempt-1))
	if delay > float64(p.MaxDelay) {
		delay = float64(p.MaxDelay)
	}
	if delay < 0 {
		delay = 0
	}
	return time.Duration(delay)
}

func classify(err error) (Class, bool) {
	var c Classifier
	if errors.As(err, &c) {
		return c.RetryClass(), true
	}
	return ClassNone, false
}

func statusCode(err error) (int, bool) {
	var sc StatusCoder
	if errors.As(err, &sc) {
		return sc.StatusCode(), true
	}
	return 0, false
}
