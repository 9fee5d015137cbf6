package client

import (
	"bytes"
	"context"
	"encoding/json"
	nethttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/restline/go-restline/logger"
)

func TestShouldRedact(t *testing.T) {
	d := DebugConfig{RedactHeaders: []string{"X-Internal"}}

	assert.True(t, d.shouldRedact("Authorization"))
	assert.True(t, d.shouldRedact("X-Auth-Token"))
	assert.True(t, d.shouldRedact("X-Client-Secret"))
	assert.True(t, d.shouldRedact("x-internal"), "configured names match case-insensitively")
	assert.False(t, d.shouldRedact("Content-Type"))
	assert.False(t, d.shouldRedact("Accept"))
}

func TestRedactHeaders(t *testing.T) {
	d := DebugConfig{}
	h := nethttp.Header{}
	h.Set("Authorization", "Bearer abc")
	h.Set("Accept", "application/json")
	h.Add("Accept", "text/plain")

	out := d.redactHeaders(h)
	assert.Equal(t, RedactedValue, out["Authorization"])
	assert.Equal(t, "application/json, text/plain", out["Accept"])
}

func TestDebugLoggingRedactsAuthorization(t *testing.T) {
	srv := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	var buf bytes.Buffer
	c := newTestClient(t, srv.URL, Config{
		AuthToken: "super-secret",
		Debug:     &DebugConfig{Enabled: true, LogBody: true},
		Logger:    logger.NewWithOutput("debug", false, &buf),
	})

	_, err := c.DoExpectSuccess(context.Background(), Get("ping"))
	require.NoError(t, err)

	logged := buf.String()
	assert.Contains(t, logged, "REST client request")
	assert.Contains(t, logged, "REST client response")
	assert.NotContains(t, logged, "super-secret", "credentials must never reach log output")

	// Both events are well-formed JSON lines.
	for _, line := range strings.Split(strings.TrimSpace(logged), "\n") {
		var parsed map[string]any
		assert.NoError(t, json.Unmarshal([]byte(line), &parsed))
	}
}

func TestDebugDisabledLogsNothing(t *testing.T) {
	srv := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		w.WriteHeader(nethttp.StatusNoContent)
	}))
	defer srv.Close()

	var buf bytes.Buffer
	c := newTestClient(t, srv.URL, Config{
		Logger: logger.NewWithOutput("debug", false, &buf),
	})

	_, err := c.DoExpectSuccess(context.Background(), Get("ping"))
	require.NoError(t, err)
	assert.Empty(t, buf.Bytes())
}

func TestCapBody(t *testing.T) {
	body := []byte("0123456789")
	assert.Equal(t, body, capBody(body, 100))
	assert.Equal(t, []byte("0123"), capBody(body, 4))
	assert.Equal(t, body, capBody(body, 0))
}
