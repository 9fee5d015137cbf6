package client

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewValidation(t *testing.T) {
	t.Run("accepts http and https", func(t *testing.T) {
		for _, u := range []string{"http://localhost:8080", "https://api.example.com/v1"} {
			c, err := New(u, Config{})
			require.NoError(t, err)
			assert.Equal(t, u, c.BaseURL())
		}
	})

	t.Run("rejects unsupported schemes", func(t *testing.T) {
		_, err := New("ftp://files.example.com", Config{})
		require.Error(t, err)
		assert.True(t, IsErrorType(err, ErrTypeInvalidBaseURL))
	})

	t.Run("rejects missing host", func(t *testing.T) {
		_, err := New("https://", Config{})
		require.Error(t, err)
		assert.True(t, IsErrorType(err, ErrTypeInvalidBaseURL))
	})

	t.Run("rejects relative URLs", func(t *testing.T) {
		_, err := New("/just/a/path", Config{})
		require.Error(t, err)
		assert.True(t, IsErrorType(err, ErrTypeInvalidBaseURL))
	})

	t.Run("rejects unparseable URLs", func(t *testing.T) {
		_, err := New("http://exa mple.com/%zz", Config{})
		require.Error(t, err)
		assert.True(t, IsErrorType(err, ErrTypeInvalidBaseURL))
	})

	t.Run("rejects sub-minimum timeouts", func(t *testing.T) {
		_, err := New("https://api.example.com", Config{Timeout: 10 * time.Millisecond})
		assert.Error(t, err)
	})

	t.Run("zero timeout falls back to the default", func(t *testing.T) {
		c, err := New("https://api.example.com", Config{})
		require.NoError(t, err)
		assert.Equal(t, DefaultTimeout, c.timeout)
	})
}
