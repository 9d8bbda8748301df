package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"cloud.google.com/go/pubsub"
	"google.golang.org/api/option"

	"github.com/letscout-hq/letscout/internal/logger"
)

// pubsubNotifier publishes each listing as a JSON message to a GCP
// Pub/Sub topic. Publish results are awaited so delivery failures
// surface to the fan-out.
type pubsubNotifier struct {
	id     string
	client *pubsub.Client
	topic  *pubsub.Topic
}

func newPubSubNotifier(ctx context.Context, cfg NotifierConfig) (Notifier, error) {
	if cfg.PubSub.ProjectID == "" {
		return nil, fmt.Errorf("pubsub: project_id is required")
	}
	if cfg.PubSub.TopicID == "" {
		return nil, fmt.Errorf("pubsub: topic_id is required")
	}

	var opts []option.ClientOption
	if cfg.PubSub.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.PubSub.CredentialsFile))
	}
	client, err := pubsub.NewClient(ctx, cfg.PubSub.ProjectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("create pubsub client: %w", err)
	}

	return &pubsubNotifier{
		id:     cfg.ID,
		client: client,
		topic:  client.Topic(cfg.PubSub.TopicID),
	}, nil
}

func (p *pubsubNotifier) ID() string { return p.id }

func (p *pubsubNotifier) Send(ctx context.Context, msg Message) error {
	payload, err := json.Marshal(msg.Listing)
	if err != nil {
		return fmt.Errorf("marshal listing: %w", err)
	}

	result := p.topic.Publish(ctx, &pubsub.Message{
		Data: payload,
		Attributes: map[string]string{
			"source": msg.Listing.Source,
		},
	})
	if _, err := result.Get(ctx); err != nil {
		logger.ErrorObj("pubsub publish failed", "notifier_error", map[string]any{"notifier": p.id, "error": err.Error()})
		return fmt.Errorf("publish to pubsub: %w", err)
	}
	logger.DebugObj("pubsub delivered listing", "notifier_delivery", map[string]any{"notifier": p.id, "listing": msg.Listing.ID})
	return nil
}

func (p *pubsubNotifier) Close() error {
	p.topic.Stop()
	return p.client.Close()
}
