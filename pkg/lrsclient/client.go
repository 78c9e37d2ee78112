// Package lrsclient is a small Go client for the plat-lrs REST API.
package lrsclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/joeblew999/plat-lrs/internal/api"
)

// Client talks to a running plat-lrs server.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a client for the given base URL, e.g.
// "http://localhost:8087".
func New(baseURL string) *Client {
	return &Client{baseURL: baseURL, http: http.DefaultClient}
}

// WithHTTPClient replaces the underlying HTTP client.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.http = hc
	return c
}

// Health checks the server health endpoint.
func (c *Client) Health(ctx context.Context) (*api.HealthBody, error) {
	var out api.HealthBody
	if err := c.get(ctx, "/health", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetInfo returns the service info.
func (c *Client) GetInfo(ctx context.Context) (*api.InfoBody, error) {
	var out api.InfoBody
	if err := c.get(ctx, "/api/v1/info", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Resolve resolves a route and measure location to geometry.
func (c *Client) Resolve(ctx context.Context, networkID int, loc api.LocationBody) (*api.ResolveBody, error) {
	var out api.ResolveBody
	path := fmt.Sprintf("/api/v1/networks/%d/resolve", networkID)
	if err := c.post(ctx, path, loc, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Locate resolves a map point to a route and measure.
func (c *Client) Locate(ctx context.Context, networkID int, req api.LocateRequestBody) (*api.LocateBody, error) {
	var out api.LocateBody
	path := fmt.Sprintf("/api/v1/networks/%d/locate", networkID)
	if err := c.post(ctx, path, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Validate validates a route and measure input combination.
func (c *Client) Validate(ctx context.Context, networkID int, req api.ValidateRequestBody) (*api.ValidateBody, error) {
	var out api.ValidateBody
	path := fmt.Sprintf("/api/v1/networks/%d/validate", networkID)
	if err := c.post(ctx, path, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("%s %s: status %d", req.Method, req.URL.Path, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
