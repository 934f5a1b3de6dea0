package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

// =============================================================================
// WebhookNotifier
// =============================================================================

// DefaultWebhookRetries is how many times a failed delivery is retried.
const DefaultWebhookRetries = 3

// WebhookNotifier POSTs each event as JSON to a URL. Connection errors and
// 5xx responses are retried with backoff.
type WebhookNotifier struct {
	URL     string
	Headers map[string]string
	Client  *retryablehttp.Client
}

// NewWebhookNotifier creates a webhook notifier.
func NewWebhookNotifier(url string, headers map[string]string) *WebhookNotifier {
	client := retryablehttp.NewClient()
	client.RetryMax = DefaultWebhookRetries
	client.RetryWaitMin = 200 * time.Millisecond
	client.RetryWaitMax = 2 * time.Second
	client.HTTPClient.Timeout = 10 * time.Second
	client.Logger = nil

	return &WebhookNotifier{
		URL:     url,
		Headers: headers,
		Client:  client,
	}
}

// WithLogger routes the retry client's logging to logger.
func (n *WebhookNotifier) WithLogger(logger *slog.Logger) *WebhookNotifier {
	if logger != nil {
		n.Client.Logger = retryablehttp.LeveledLogger(logger)
	}
	return n
}

// Notify implements Notifier.
func (n *WebhookNotifier) Notify(ctx context.Context, event Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, n.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	for k, v := range n.Headers {
		req.Header.Set(k, v)
	}

	resp, err := n.Client.Do(req)
	if err != nil {
		return fmt.Errorf("send webhook: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 400 {
		return fmt.Errorf("webhook returned %d", resp.StatusCode)
	}

	return nil
}
