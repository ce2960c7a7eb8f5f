// Package client talks to a running txwarden server over HTTP. Used by the
// CLI submit path and the MCP tools.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/txwarden/txwarden/internal/model"
)

const defaultTimeout = 30 * time.Second

// Client submits transactions to a txwarden admission server.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a client for the given server base URL, e.g.
// "http://localhost:8000".
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
	}
}

// Submit sends a transaction request and waits for the terminal decision.
// The admission path can take the full window budget plus quiet period, so
// callers should pass a generous context.
func (c *Client) Submit(ctx context.Context, req model.TransactionRequest) (model.SubmitResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return model.SubmitResponse{}, fmt.Errorf("failed to encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/agent/transaction", bytes.NewReader(body))
	if err != nil {
		return model.SubmitResponse{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return model.SubmitResponse{}, fmt.Errorf("server unreachable: %w", err)
	}
	defer resp.Body.Close()

	var out model.SubmitResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return model.SubmitResponse{}, fmt.Errorf("failed to decode response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return out, fmt.Errorf("server returned %d: %s", resp.StatusCode, out.Message)
	}
	return out, nil
}

// Health checks the server's health endpoint.
func (c *Client) Health(ctx context.Context) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/healthz", nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(httpReq)
	if err != nil {
		return fmt.Errorf("server unreachable: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned %d", resp.StatusCode)
	}
	return nil
}
