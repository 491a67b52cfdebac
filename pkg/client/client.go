// Package client provides the collaborator-side glue for the API: a
// readiness gate that polls /health before first use, and a thin HTTP client
// that deduplicates concurrent identical reads.
package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/sync/singleflight"
)

const (
	readyPollInterval = 200 * time.Millisecond
	readyTimeout      = 60 * time.Second
	readyProbeTimeout = 2 * time.Second
)

// WaitReady polls the server's /health endpoint until it answers 200 or the
// deadline passes. Individual probes use a short timeout so a hung accept
// cannot stall the poll loop.
func WaitReady(ctx context.Context, baseURL string) error {
	deadline := time.Now().Add(readyTimeout)
	httpClient := &http.Client{Timeout: readyProbeTimeout}

	for {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/health", nil)
		if err != nil {
			return fmt.Errorf("build health request: %w", err)
		}

		resp, err := httpClient.Do(req)
		if err == nil {
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}

		if time.Now().After(deadline) {
			return fmt.Errorf("server at %s not ready after %s", baseURL, readyTimeout)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(readyPollInterval):
		}
	}
}

// Client is an HTTP client for the task API. Concurrent identical GETs are
// coalesced: all callers share the one in-flight response.
type Client struct {
	baseURL    string
	httpClient *http.Client

	inflight singleflight.Group
}

// New creates a client for the given base URL, e.g. "http://localhost:8080".
func New(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Response is a settled HTTP response with its body drained.
type Response struct {
	StatusCode int
	Body       []byte
}

// Get performs a deduplicated GET. Callers issuing the same path while a
// request is in flight receive the shared result; the dedup entry is removed
// as soon as the underlying response settles.
func (c *Client) Get(ctx context.Context, path string) (*Response, error) {
	key := http.MethodGet + " " + c.baseURL + path

	v, err, _ := c.inflight.Do(key, func() (interface{}, error) {
		defer c.inflight.Forget(key)
		return c.do(ctx, http.MethodGet, path)
	})
	if err != nil {
		return nil, err
	}
	return v.(*Response), nil
}

func (c *Client) do(ctx context.Context, method, path string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	return &Response{StatusCode: resp.StatusCode, Body: body}, nil
}
