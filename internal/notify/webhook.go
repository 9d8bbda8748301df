package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/letscout-hq/letscout/pkg/httpclient"
)

// webhookNotifier posts the message text to an incoming-webhook URL.
// Slack and Mattermost both accept the same {"text": ...} payload.
type webhookNotifier struct {
	id     string
	client *resty.Client
	url    string
}

func newWebhookNotifier(_ context.Context, cfg NotifierConfig) (Notifier, error) {
	if cfg.Webhook.URL == "" {
		return nil, fmt.Errorf("webhook: url is required")
	}
	return &webhookNotifier{
		id:     cfg.ID,
		client: httpclient.NewRestyHTTPClient(15 * time.Second),
		url:    cfg.Webhook.URL,
	}, nil
}

func (w *webhookNotifier) ID() string { return w.id }

func (w *webhookNotifier) Send(ctx context.Context, msg Message) error {
	resp, err := w.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]string{"text": msg.Text}).
		Post(w.url)
	if err != nil {
		return err
	}
	if resp.IsError() {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode())
	}
	return nil
}

func (w *webhookNotifier) Close() error { return nil }
