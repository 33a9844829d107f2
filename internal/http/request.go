package http

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// Request represents an HTTP request against an absolute URL
type Request struct {
	Method  string
	URL     string
	Headers map[string]string
}

// NewRequest creates a new HTTP request
func NewRequest(method, url string) *Request {
	return &Request{
		Method:  method,
		URL:     url,
		Headers: make(map[string]string),
	}
}

// WithHeader adds a header to the request
func (r *Request) WithHeader(key, value string) *Request {
	r.Headers[key] = value
	return r
}

// Build constructs an http.Request bound to ctx
func (r *Request) Build(ctx context.Context) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, r.Method, r.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid request %s %s: %w", r.Method, r.URL, err)
	}

	for key, value := range r.Headers {
		req.Header.Set(key, value)
	}

	return req, nil
}

// ResolveURL resolves path against base as a relative reference. When base
// ends in "/" the result is base followed by path; otherwise the last
// segment of base is replaced, as browsers do.
func ResolveURL(base, path string) (string, error) {
	baseURL, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid base URL %q: %w", base, err)
	}
	if !baseURL.IsAbs() {
		return "", fmt.Errorf("base URL %q must be absolute", base)
	}

	ref, err := url.Parse(path)
	if err != nil {
		return "", fmt.Errorf("invalid path %q: %w", path, err)
	}

	return baseURL.ResolveReference(ref).String(), nil
}
