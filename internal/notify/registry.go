package notify

import (
	"context"
	"fmt"

	"github.com/letscout-hq/letscout/internal/logger"
)

// Notifier delivers messages to one channel.
type Notifier interface {
	ID() string
	Send(ctx context.Context, msg Message) error
	Close() error
}

// Builder constructs a notifier from its config entry.
type Builder func(ctx context.Context, cfg NotifierConfig) (Notifier, error)

// Registry maps notifier types to builders.
type Registry struct {
	builders map[string]Builder
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{builders: make(map[string]Builder)}
}

// Register binds a type name to a builder, replacing any previous binding.
func (r *Registry) Register(typ string, b Builder) {
	r.builders[typ] = b
}

// Build constructs the notifier for one config entry.
func (r *Registry) Build(ctx context.Context, cfg NotifierConfig) (Notifier, error) {
	b, ok := r.builders[cfg.Type]
	if !ok {
		return nil, fmt.Errorf("no builder registered for type %q", cfg.Type)
	}
	return b(ctx, cfg)
}

// BuildAll constructs every enabled notifier. A single failing entry aborts
// the whole build so misconfiguration is caught at startup, not at send time.
func (r *Registry) BuildAll(ctx context.Context, configs []NotifierConfig) ([]Notifier, error) {
	notifiers := make([]Notifier, 0, len(configs))
	for _, cfg := range configs {
		if !cfg.IsEnabled() {
			logger.InfoObj("notifier disabled, skipping", "notifier", map[string]any{"id": cfg.ID, "type": cfg.Type})
			continue
		}
		n, err := r.Build(ctx, cfg)
		if err != nil {
			for _, built := range notifiers {
				built.Close()
			}
			return nil, fmt.Errorf("building notifier %q: %w", cfg.ID, err)
		}
		notifiers = append(notifiers, n)
	}
	return notifiers, nil
}

// DefaultRegistry returns a registry with every built-in notifier type.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register("telegram", newTelegramNotifier)
	r.Register("slack", newWebhookNotifier)
	r.Register("webhook", newWebhookNotifier)
	r.Register("file", newFileNotifier)
	r.Register("sqs", newSQSNotifier)
	r.Register("sns", newSNSNotifier)
	r.Register("pubsub", newPubSubNotifier)
	return r
}
