package alert

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/mining-game-bot/pkg/logger"
)

// Notifier delivers short operator alerts. Delivery is best-effort and
// fire-and-forget; failures must not affect the caller.
type Notifier interface {
	Notify(ctx context.Context, message string)
}

// Webhook posts alert messages as JSON to a configured endpoint.
type Webhook struct {
	url        string
	httpClient *http.Client
	logger     *logger.Logger
}

// NewWebhook creates a webhook notifier targeting url.
func NewWebhook(url string, log *logger.Logger) *Webhook {
	return &Webhook{
		url: url,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: log,
	}
}

// Notify posts the message to the webhook. Delivery failures are
// logged and swallowed.
func (w *Webhook) Notify(ctx context.Context, message string) {
	payload, err := json.Marshal(map[string]string{"message": message})
	if err != nil {
		w.logger.Error("Failed to marshal alert", logger.F("error", err.Error()))
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewBuffer(payload))
	if err != nil {
		w.logger.Error("Failed to create alert request", logger.F("error", err.Error()))
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.httpClient.Do(req)
	if err != nil {
		w.logger.Error("Failed to deliver alert", logger.F("error", err.Error()))
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		w.logger.Error("Alert webhook rejected message",
			logger.F("status", http.StatusText(resp.StatusCode)))
	}
}

// Noop discards alerts. Used when no webhook is configured.
type Noop struct{}

// Notify discards the message.
func (Noop) Notify(ctx context.Context, message string) {}
