// Package transport provides the authenticated HTTP client shared by
// the platform connectors, and the normalization of HTTP outcomes into
// the draftsync error taxonomy.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/draftsync/draftsync/pkg/errors"
)

// DefaultHTTPTimeout bounds every outbound request, so no connector
// call can block a run indefinitely.
const DefaultHTTPTimeout = 30 * time.Second

// Authenticator applies platform credentials to an outbound request.
type Authenticator interface {
	Apply(req *http.Request)
}

// HeaderAuth sets a static header, the scheme both dev.to ("api-key")
// and Hashnode ("Authorization") use.
type HeaderAuth struct {
	Header string
	Value  string
}

// Apply implements Authenticator.
func (a *HeaderAuth) Apply(req *http.Request) {
	if a.Value != "" {
		req.Header.Set(a.Header, a.Value)
	}
}

// NoAuth leaves the request untouched.
type NoAuth struct{}

// Apply implements Authenticator.
func (a *NoAuth) Apply(_ *http.Request) {}

// Client provides HTTP client functionality with authentication.
type Client struct {
	http     *http.Client
	auth     Authenticator
	platform string
}

// New creates a transport client for a platform with the given
// authenticator.
func New(platform string, auth Authenticator) *Client {
	if auth == nil {
		auth = &NoAuth{}
	}
	return &Client{
		http:     &http.Client{Timeout: DefaultHTTPTimeout},
		auth:     auth,
		platform: platform,
	}
}

// Do performs an HTTP request with authentication and common headers
// applied. Network-level failures are normalized to TransientError.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	c.auth.Apply(req)

	req.Header.Set("Accept", "application/json")
	if req.Method == http.MethodPost || req.Method == http.MethodPut || req.Method == http.MethodPatch {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := req.Context().Err(); ctxErr != nil {
			return nil, errors.ErrCanceled
		}
		return nil, errors.NewTransientError(c.platform, err)
	}
	return resp, nil
}

// Get performs a GET request.
func (c *Client) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.NewAPIError(c.platform, 0, "build request: "+err.Error())
	}
	return c.Do(req)
}

// JSON performs a request with a JSON-encoded body.
func (c *Client) JSON(ctx context.Context, method, url string, body any) (*http.Response, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, errors.NewAPIError(c.platform, 0, "encode request: "+err.Error())
	}
	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(data))
	if err != nil {
		return nil, errors.NewAPIError(c.platform, 0, "build request: "+err.Error())
	}
	return c.Do(req)
}

// Delete performs a DELETE request.
func (c *Client) Delete(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, url, nil)
	if err != nil {
		return nil, errors.NewAPIError(c.platform, 0, "build request: "+err.Error())
	}
	return c.Do(req)
}
