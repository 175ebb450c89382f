package httpclient

import (
	"net/http"
	"time"
)

// NewDefaultHTTPClient creates a simple HTTP client with a timeout
func NewDefaultHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
	}
}

// NewHTTPClientWithAuth creates an HTTP client that sends basic auth
// credentials with every request. Empty credentials return a plain client.
func NewHTTPClientWithAuth(username, token string, timeout time.Duration) *http.Client {
	if username == "" && token == "" {
		return NewDefaultHTTPClient(timeout)
	}

	return &http.Client{
		Timeout: timeout,
		Transport: &basicAuthTransport{
			username: username,
			token:    token,
			base:     http.DefaultTransport,
		},
	}
}

// basicAuthTransport decorates requests with basic auth credentials
type basicAuthTransport struct {
	username string
	token    string
	base     http.RoundTripper
}

func (t *basicAuthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// RoundTrippers must not modify the caller's request
	clone := req.Clone(req.Context())
	clone.SetBasicAuth(t.username, t.token)
	return t.base.RoundTrip(clone)
}
