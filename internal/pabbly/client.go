// Package pabbly provides a thin REST client for the Pabbly Connect webhook
// used for social media auto-posting.
package pabbly

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Payload is the JSON body sent to the Pabbly webhook
type Payload struct {
	Message  string `json:"message"`
	Link     string `json:"link,omitempty"`
	Networks string `json:"networks"`
}

// Client posts payloads to a configured Pabbly webhook URL
type Client struct {
	webhookURL string
	httpClient *http.Client
}

// NewClient creates a new Pabbly webhook client
func NewClient(webhookURL string, timeout time.Duration) *Client {
	return &Client{
		webhookURL: webhookURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Enabled reports whether a webhook URL is configured
func (c *Client) Enabled() bool {
	return c.webhookURL != ""
}

// Send delivers a payload to the webhook. A non-2xx response is an error.
func (c *Client) Send(ctx context.Context, payload *Payload) error {
	if !c.Enabled() {
		return fmt.Errorf("pabbly webhook URL is not configured")
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal pabbly payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create pabbly request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call pabbly webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Read a bounded amount of the body for the error message
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("pabbly webhook returned status %d: %s", resp.StatusCode, string(respBody))
	}

	return nil
}
