// Package dispatch forwards approved transactions to the external chain
// broadcaster. Delivery failures are contained: the pipeline's own response
// already reflects "processed" and a broadcaster outage must not surface to
// the ingress caller.
package dispatch

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/txwarden/txwarden/internal/model"
)

const maxRetries = 3

// Config holds broadcaster endpoint configuration.
type Config struct {
	URL     string
	Timeout time.Duration
}

// Payload is the downstream wire shape: the full transaction plus the warning
// that was weighed during arbitration, if any.
type Payload struct {
	Transaction model.TransactionRequest `json:"transaction"`
	Warning     *string                  `json:"warning"`
}

// Broadcaster posts decisions to the configured endpoint.
type Broadcaster struct {
	cfg    Config
	client *http.Client
}

// New creates a broadcaster client with a bounded request timeout.
func New(cfg Config) *Broadcaster {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Broadcaster{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

// Send posts the transaction and optional warning downstream, retrying on
// 5xx. Any returned error is a delivery error to be logged by the caller,
// never raised to the ingress caller as a pipeline failure.
func (b *Broadcaster) Send(req model.TransactionRequest, warning *model.Warning) error {
	if b.cfg.URL == "" {
		return fmt.Errorf("no broadcaster endpoint configured")
	}

	payload := Payload{Transaction: req}
	if warning != nil {
		payload.Warning = &warning.Message
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(time.Duration(attempt) * time.Second)
		}

		httpReq, err := http.NewRequest(http.MethodPost, b.cfg.URL, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		httpReq.Header.Set("Content-Type", "application/json")

		resp, err := b.client.Do(httpReq)
		if err != nil {
			lastErr = err
			continue
		}
		resp.Body.Close()

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return nil
		}
		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			return fmt.Errorf("broadcaster rejected: HTTP %d", resp.StatusCode)
		}
		lastErr = fmt.Errorf("broadcaster server error: HTTP %d", resp.StatusCode)
	}

	return fmt.Errorf("broadcaster unreachable after %d attempts: %w", maxRetries, lastErr)
}
