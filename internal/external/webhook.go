package external

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"kassa/internal/logger"
)

// WebhookClient posts purchase notifications to an external endpoint. An
// empty URL disables it. Delivery is best-effort: failures are logged and
// never retried, and callers must not let a failed notification fail the
// purchase.
type WebhookClient struct {
	url        string
	httpClient *http.Client
}

type WebhookConfig struct {
	URL     string
	Timeout time.Duration
}

// TicketWebhookPayload is the JSON body sent for a completed purchase.
type TicketWebhookPayload struct {
	EventType string          `json:"event_type"`
	Ticket    json.RawMessage `json:"ticket"`
	Timestamp time.Time       `json:"timestamp"`
}

func NewWebhookClient(cfg WebhookConfig) *WebhookClient {
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}

	return &WebhookClient{
		url: cfg.URL,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// Enabled reports whether an endpoint is configured.
func (wc *WebhookClient) Enabled() bool {
	return wc.url != ""
}

// NotifyAsync fires the notification in a goroutine with its own bounded
// context, detached from the request lifecycle.
func (wc *WebhookClient) NotifyAsync(eventType string, payload interface{}) {
	if !wc.Enabled() {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), wc.httpClient.Timeout)
		defer cancel()

		if err := wc.notify(ctx, eventType, payload); err != nil {
			logger.WithFields("component", "webhook").Warn("Webhook notification failed",
				"event_type", eventType, "error", err)
		}
	}()
}

func (wc *WebhookClient) notify(ctx context.Context, eventType string, payload interface{}) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	body, err := json.Marshal(TicketWebhookPayload{
		EventType: eventType,
		Ticket:    raw,
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal webhook body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, wc.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := wc.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	return nil
}
