package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/stockpulse/invsync/internal/domain/notification"
)

// Webhook kinds
const (
	KindSlack   = "slack"
	KindDiscord = "discord"
)

// ChatWebhookNotifier posts alerts to Slack and Discord incoming webhooks
type ChatWebhookNotifier struct {
	client  *http.Client
	printer *message.Printer
}

// NewChatWebhookNotifier creates a notifier whose calls are bounded by timeout
func NewChatWebhookNotifier(timeout time.Duration) *ChatWebhookNotifier {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &ChatWebhookNotifier{
		client:  &http.Client{Timeout: timeout},
		printer: message.NewPrinter(language.English),
	}
}

// Notify posts msg to url using the payload shape of kind
func (n *ChatWebhookNotifier) Notify(ctx context.Context, kind, url string, msg notification.AlertMessage) error {
	if url == "" {
		return ErrMissingWebhookURL
	}

	text := n.printer.Sprintf(":warning: Low stock: *%s* (SKU %s) in %s is down to %d (threshold %d)",
		msg.ProductTitle, msg.SKU, msg.StoreName, msg.Quantity, msg.Threshold)

	var body map[string]any
	switch kind {
	case KindSlack:
		body = map[string]any{"text": text}
	case KindDiscord:
		body = map[string]any{"content": text, "allowed_mentions": map[string]any{"parse": []string{}}}
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedHook, kind)
	}

	raw, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode webhook body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("create webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("post %s webhook: %w", kind, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode >= 300 {
		return fmt.Errorf("%w: %s HTTP %d", ErrWebhookRejected, kind, resp.StatusCode)
	}
	return nil
}

var _ notification.WebhookNotifier = (*ChatWebhookNotifier)(nil)
