package client

import (
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// JoinPath joins path segments into one normalized relative path. Empty
// segments are dropped and redundant slashes collapse, so
// JoinPath("v1/", "/sessions/", "abc123", "events") yields
// "v1/sessions/abc123/events".
func JoinPath(segments ...string) string {
	var parts []string
	for _, seg := range segments {
		for _, p := range strings.Split(seg, "/") {
			if p != "" {
				parts = append(parts, p)
			}
		}
	}
	return strings.Join(parts, "/")
}

// buildURL assembles the absolute request URL from the client's base URL, a
// relative path, and query parameters.
func buildURL(base *url.URL, path string, query map[string]string) (string, error) {
	ref, err := url.Parse(JoinPath(path))
	if err != nil {
		return "", &URLError{Reason: "unparseable path " + strconv.Quote(path), wrapped: err}
	}

	resolved := base.JoinPath(ref.Path)
	if resolved.Scheme == "" || resolved.Host == "" {
		return "", &URLError{Reason: "resolved URL has no scheme or host"}
	}
	// A query string embedded in the path is kept; explicit parameters are
	// merged on top of it.
	resolved.RawQuery = ref.RawQuery

	if len(query) > 0 {
		q := resolved.Query()
		keys := make([]string, 0, len(query))
		for k := range query {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			q.Set(k, query[k])
		}
		resolved.RawQuery = q.Encode()
	}

	return resolved.String(), nil
}
