package client

import "context"

// Typed verb helpers. Each is Execute over the matching descriptor
// constructor, so all engine semantics (retry, auth, refresh, coding) apply
// unchanged.

// GetJSON fetches path and decodes the response body into T.
func GetJSON[T any](ctx context.Context, c *Client, path string) (*T, error) {
	return Execute[T](ctx, c, Get(path))
}

// PostJSON sends body as JSON to path and decodes the response into T.
func PostJSON[T any](ctx context.Context, c *Client, path string, body any) (*T, error) {
	return Execute[T](ctx, c, Post(path, body))
}

// PutJSON sends body as JSON to path and decodes the response into T.
func PutJSON[T any](ctx context.Context, c *Client, path string, body any) (*T, error) {
	return Execute[T](ctx, c, Put(path, body))
}

// PatchJSON sends body as JSON to path and decodes the response into T.
func PatchJSON[T any](ctx context.Context, c *Client, path string, body any) (*T, error) {
	return Execute[T](ctx, c, Patch(path, body))
}

// DeleteJSON issues a DELETE to path and decodes the response into T.
// Many delete endpoints respond with no body; the result is then nil.
func DeleteJSON[T any](ctx context.Context, c *Client, path string) (*T, error) {
	return Execute[T](ctx, c, Delete(path))
}
