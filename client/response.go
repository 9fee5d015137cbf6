package client

import (
	"net/http"
	"time"
)

// RawResponse is the undecoded outcome of one logical request.
type RawResponse struct {
	StatusCode  int
	Body        []byte
	Headers     http.Header
	Elapsed     time.Duration
	FinalURL    string
	ContentType string
}

// IsSuccess reports whether the status code is 2xx.
func (r *RawResponse) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode <= 299
}
