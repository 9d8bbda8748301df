package processing

import (
	"context"

	"github.com/letscout-hq/letscout/internal/domain"
	"github.com/letscout-hq/letscout/internal/filters"
	"github.com/letscout-hq/letscout/internal/logger"
	"github.com/letscout-hq/letscout/internal/notify"
	"github.com/letscout-hq/letscout/internal/storage"
)

// MessageSink delivers a rendered message to every configured channel and
// reports how many deliveries succeeded.
type MessageSink interface {
	Notify(ctx context.Context, msg notify.Message) (int, error)
}

type filterStage struct {
	set *filters.Set
}

func (s *filterStage) Name() string { return "apply_filter" }

func (s *filterStage) ProcessListings(_ context.Context, listings []domain.Listing) []domain.Listing {
	if s.set == nil || s.set.Size() == 0 {
		return listings
	}
	return s.set.Apply(listings)
}

// dedupeStage drops listings whose key was already processed, including
// duplicates within the same batch.
type dedupeStage struct {
	store storage.Store
}

func (s *dedupeStage) Name() string { return "dedupe" }

func (s *dedupeStage) ProcessListings(_ context.Context, listings []domain.Listing) []domain.Listing {
	out := listings[:0]
	seen := make(map[string]struct{}, len(listings))
	for _, l := range listings {
		key := l.Key()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		done, err := s.store.IsProcessed(key)
		if err != nil {
			logger.ErrorObj("dedupe check failed", "dedupe_error", map[string]any{"id": l.ID, "error": err.Error()})
			continue
		}
		if done {
			continue
		}
		out = append(out, l)
	}
	return out
}

type saveStage struct {
	store storage.Store
}

func (s *saveStage) Name() string { return "save" }

func (s *saveStage) ProcessListings(_ context.Context, listings []domain.Listing) []domain.Listing {
	for _, l := range listings {
		if err := s.store.SaveListing(l); err != nil {
			logger.ErrorObj("failed to save listing", "save_error", map[string]any{"id": l.ID, "source": l.Source, "error": err.Error()})
		}
	}
	return listings
}

// notifyStage renders each listing through the message format, fans it out,
// and marks the listing processed so it is never announced twice.
type notifyStage struct {
	sink   MessageSink
	format string
	store  storage.Store
}

func (s *notifyStage) Name() string { return "notify" }

func (s *notifyStage) ProcessListings(ctx context.Context, listings []domain.Listing) []domain.Listing {
	for _, l := range listings {
		first, err := s.store.MarkProcessed(l.Key())
		if err != nil {
			logger.ErrorObj("failed to mark listing processed", "dedupe_error", map[string]any{"id": l.ID, "error": err.Error()})
			continue
		}
		if !first {
			continue
		}
		msg := notify.NewMessage(s.format, l)
		sent, err := s.sink.Notify(ctx, msg)
		if err != nil {
			logger.WarnObj("notification fan-out partially failed", "notify_error", map[string]any{
				"id":    l.ID,
				"sent":  sent,
				"error": err.Error(),
			})
			continue
		}
		logger.DebugObj("listing announced", "notify_result", map[string]any{"id": l.ID, "channels": sent})
	}
	return listings
}
