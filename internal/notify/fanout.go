package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/letscout-hq/letscout/internal/logger"
)

// Fanout delivers each message to every channel. Channels fail
// independently; one broken webhook never silences the rest.
type Fanout struct {
	notifiers []Notifier
}

// NewFanout returns a fan-out over the given channels.
func NewFanout(notifiers []Notifier) *Fanout {
	return &Fanout{notifiers: notifiers}
}

// Size returns the number of channels.
func (f *Fanout) Size() int { return len(f.notifiers) }

// Notify sends the message to every channel and returns how many
// deliveries succeeded. The error joins every per-channel failure.
func (f *Fanout) Notify(ctx context.Context, msg Message) (int, error) {
	var errs []error
	sent := 0
	for _, n := range f.notifiers {
		if err := n.Send(ctx, msg); err != nil {
			logger.WarnObj("notifier send failed", "notifier_error", map[string]any{"notifier": n.ID(), "error": err.Error()})
			errs = append(errs, fmt.Errorf("%s: %w", n.ID(), err))
			continue
		}
		sent++
	}
	return sent, errors.Join(errs...)
}

// Close closes every channel, returning the joined errors.
func (f *Fanout) Close() error {
	var errs []error
	for _, n := range f.notifiers {
		if err := n.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
