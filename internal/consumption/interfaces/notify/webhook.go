package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// WebhookNotifier posts publish messages as JSON.
type WebhookNotifier struct {
	url    string
	secret []byte
	client *http.Client
	now    func() time.Time
}

// WebhookOption configures a WebhookNotifier.
type WebhookOption func(*WebhookNotifier)

// WithSecret signs each request with an HS256 bearer token.
func WithSecret(secret string) WebhookOption {
	return func(n *WebhookNotifier) {
		if secret != "" {
			n.secret = []byte(secret)
		}
	}
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(client *http.Client) WebhookOption {
	return func(n *WebhookNotifier) {
		if client != nil {
			n.client = client
		}
	}
}

// WithNow overrides the token clock.
func WithNow(now func() time.Time) WebhookOption {
	return func(n *WebhookNotifier) {
		if now != nil {
			n.now = now
		}
	}
}

// NewWebhookNotifier constructs a notifier.
func NewWebhookNotifier(url string, opts ...WebhookOption) *WebhookNotifier {
	n := &WebhookNotifier{
		url:    url,
		client: &http.Client{Timeout: 10 * time.Second},
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Notify posts msg to the webhook.
func (n *WebhookNotifier) Notify(ctx context.Context, msg PublishMessage) error {
	if n == nil || n.url == "" {
		return errors.New("webhook notifier: empty url")
	}
	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if len(n.secret) > 0 {
		token, err := SignToken(msg, n.secret, n.now(), 0)
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := n.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook notifier: status %d", resp.StatusCode)
	}
	return nil
}
