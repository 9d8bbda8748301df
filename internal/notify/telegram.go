package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/letscout-hq/letscout/pkg/httpclient"
)

const telegramAPIBase = "https://api.telegram.org"

// telegramNotifier posts each message to one or more chats via the Bot API.
type telegramNotifier struct {
	id      string
	client  *resty.Client
	token   string
	chatIDs []string
	baseURL string
}

func newTelegramNotifier(_ context.Context, cfg NotifierConfig) (Notifier, error) {
	if cfg.Telegram.BotToken == "" {
		return nil, fmt.Errorf("telegram: bot_token is required")
	}
	if len(cfg.Telegram.ChatIDs) == 0 {
		return nil, fmt.Errorf("telegram: at least one chat id is required")
	}
	return &telegramNotifier{
		id:      cfg.ID,
		client:  httpclient.NewRestyHTTPClient(15 * time.Second),
		token:   cfg.Telegram.BotToken,
		chatIDs: cfg.Telegram.ChatIDs,
		baseURL: telegramAPIBase,
	}, nil
}

func (t *telegramNotifier) ID() string { return t.id }

func (t *telegramNotifier) Send(ctx context.Context, msg Message) error {
	var errs []error
	for _, chatID := range t.chatIDs {
		var out struct {
			OK          bool   `json:"ok"`
			Description string `json:"description"`
		}
		resp, err := t.client.R().
			SetContext(ctx).
			SetBody(map[string]string{
				"chat_id": chatID,
				"text":    msg.Text,
			}).
			SetResult(&out).
			SetError(&out).
			Post(fmt.Sprintf("%s/bot%s/sendMessage", t.baseURL, t.token))
		if err != nil {
			errs = append(errs, fmt.Errorf("chat %s: %w", chatID, err))
			continue
		}
		if resp.IsError() || !out.OK {
			errs = append(errs, fmt.Errorf("chat %s: status %d: %s", chatID, resp.StatusCode(), out.Description))
		}
	}
	return errors.Join(errs...)
}

func (t *telegramNotifier) Close() error { return nil }
