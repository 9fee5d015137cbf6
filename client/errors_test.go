package client

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/restline/go-restline/retry"
)

func TestIsErrorType(t *testing.T) {
	tests := []struct {
		err error
		typ ErrorType
	}{
		{&BaseURLError{Raw: "x", Reason: "r"}, ErrTypeInvalidBaseURL},
		{&URLError{Reason: "r"}, ErrTypeInvalidURL},
		{&NetworkError{wrapped: errors.New("refused")}, ErrTypeNetwork},
		{&DecodingError{wrapped: errors.New("bad")}, ErrTypeDecoding},
		{&HTTPError{Status: 500}, ErrTypeHTTP},
		{&EmptyBodyError{ExpectedType: "T"}, ErrTypeEmptyBody},
		{&RetryLimitError{Attempts: 3}, ErrTypeRetryLimit},
		{&RefreshError{wrapped: errors.New("nope")}, ErrTypeAuthRefresh},
		{&QueryError{Reason: "r"}, ErrTypeInvalidQuery},
	}
	for _, tt := range tests {
		assert.True(t, IsErrorType(tt.err, tt.typ), "%T should be %s", tt.err, tt.typ)
		assert.True(t, IsErrorType(fmt.Errorf("wrapped: %w", tt.err), tt.typ))
	}

	assert.False(t, IsErrorType(errors.New("plain"), ErrTypeNetwork))
	assert.False(t, IsErrorType(nil, ErrTypeNetwork))
	assert.False(t, IsErrorType(&HTTPError{Status: 500}, ErrTypeNetwork))
}

func TestHTTPErrorSnippet(t *testing.T) {
	small := &HTTPError{Status: 404, Body: []byte("not found")}
	assert.Equal(t, "not found", small.Snippet())
	assert.Equal(t, "HTTP 404: not found", small.Error())

	big := &HTTPError{Status: 500, Body: []byte(strings.Repeat("x", snippetLimit+100))}
	assert.Len(t, big.Snippet(), snippetLimit+3)
	assert.True(t, strings.HasSuffix(big.Snippet(), "..."))
}

func TestRetryClassification(t *testing.T) {
	var nerr error = &NetworkError{wrapped: errors.New("reset")}
	var c retry.Classifier
	assert.True(t, errors.As(nerr, &c))
	assert.Equal(t, retry.ClassNetwork, c.RetryClass())

	var herr error = &HTTPError{Status: 502}
	var sc retry.StatusCoder
	assert.True(t, errors.As(herr, &sc))
	assert.Equal(t, 502, sc.StatusCode())
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("root cause")
	assert.ErrorIs(t, &NetworkError{wrapped: cause}, cause)
	assert.ErrorIs(t, &DecodingError{wrapped: cause}, cause)
	assert.ErrorIs(t, &RefreshError{wrapped: cause}, cause)
	assert.ErrorIs(t, &URLError{Reason: "r", wrapped: cause}, cause)
	assert.ErrorIs(t, &QueryError{Reason: "r", wrapped: cause}, cause)
}
