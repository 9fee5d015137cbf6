package retry

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type netErr struct{ msg string }

func (e *netErr) Error() string     { return e.msg }
func (e *netErr) RetryClass() Class { return ClassNetwork }

type httpErr struct{ status int }

func (e *httpErr) Error() string     { return fmt.Sprintf("HTTP %d", e.status) }
func (e *httpErr) RetryClass() Class { return ClassHTTP }
func (e *httpErr) StatusCode() int   { return e.status }

func TestShouldRetryAttemptBound(t *testing.T) {
	p := DefaultPolicy()
	err := &httpErr{status: 503}

	assert.True(t, ShouldRetry(err, 1, p))
	assert.True(t, ShouldRetry(err, 2, p))
	assert.False(t, ShouldRetry(err, 3, p), "attempt MaxAttempts must not retry")
	assert.False(t, ShouldRetry(err, 4, p))
}

func TestShouldRetryClassification(t *testing.T) {
	p := DefaultPolicy()

	t.Run("network errors follow the flag", func(t *testing.T) {
		assert.True(t, ShouldRetry(&netErr{msg: "connection refused"}, 1, p))

		noNet := p
		noNet.RetryOnNetworkErrors = false
		assert.False(t, ShouldRetry(&netErr{msg: "connection refused"}, 1, noNet))
	})

	t.Run("http errors follow the status list", func(t *testing.T) {
		assert.True(t, ShouldRetry(&httpErr{status: 429}, 1, p))
		assert.True(t, ShouldRetry(&httpErr{status: 502}, 1, p))
		assert.False(t, ShouldRetry(&httpErr{status: 404}, 1, p))
		assert.False(t, ShouldRetry(&httpErr{status: 400}, 1, p))
	})

	t.Run("unclassified errors never retry", func(t *testing.T) {
		assert.False(t, ShouldRetry(errors.New("boom"), 1, p))
		assert.False(t, ShouldRetry(nil, 1, p))
	})

	t.Run("wrapped classified errors retry", func(t *testing.T) {
		wrapped := fmt.Errorf("call failed: %w", &netErr{msg: "reset"})
		assert.True(t, ShouldRetry(wrapped, 1, p))
	})
}

func TestNoRetry(t *testing.T) {
	p := NoRetry()
	assert.Equal(t, 1, p.MaxAttempts)
	assert.False(t, ShouldRetry(&httpErr{status: 503}, 1, p))
}

func TestDelayForBackoff(t *testing.T) {
	p := Policy{
		MaxAttempts:       5,
		BaseDelay:         100 * time.Millisecond,
		BackoffMultiplier: 2.0,
		MaxDelay:          350 * time.Millisecond,
	}

	assert.Equal(t, 100*time.Millisecond, DelayFor(1, p, nil))
	assert.Equal(t, 200*time.Millisecond, DelayFor(2, p, nil))
	assert.Equal(t, 350*time.Millisecond, DelayFor(3, p, nil), "growth is capped at MaxDelay")
	assert.Equal(t, 350*time.Millisecond, DelayFor(4, p, nil))
}

func TestDelayForRetryAfter(t *testing.T) {
	p := DefaultPolicy()

	tests := []struct {
		name       string
		retryAfter string
		want       time.Duration
	}{
		{"integer seconds", "2", 2 * time.Second},
		{"fractional seconds", "0.5", 500 * time.Millisecond},
		{"zero", "0", 0},
		{"exceeds max delay verbatim", "30", 30 * time.Second},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := http.Header{}
			h.Set("Retry-After", tt.retryAfter)
			assert.Equal(t, tt.want, DelayFor(1, p, h))
		})
	}

	t.Run("non-numeric falls back to backoff", func(t *testing.T) {
		h := http.Header{}
		h.Set("Retry-After", "Wed, 21 Oct 2026 07:28:00 GMT")
		assert.Equal(t, p.BaseDelay, DelayFor(1, p, h))
	})

	t.Run("negative falls back to backoff", func(t *testing.T) {
		h := http.Header{}
		h.Set("Retry-After", "-3")
		assert.Equal(t, p.BaseDelay, DelayFor(1, p, h))
	})

	t.Run("absent header uses backoff", func(t *testing.T) {
		assert.Equal(t, p.BaseDelay, DelayFor(1, p, nil))
	})
}

func TestNormalized(t *testing.T) {
	p := Policy{
		MaxAttempts:       0,
		BaseDelay:         -time.Second,
		BackoffMultiplier: 0.5,
		MaxDelay:          -time.Second,
	}.Normalized()

	assert.Equal(t, 1, p.MaxAttempts)
	assert.Equal(t, time.Duration(0), p.BaseDelay)
	assert.Equal(t, 1.0, p.BackoffMultiplier)
	assert.Equal(t, time.Duration(0), p.MaxDelay)
}
