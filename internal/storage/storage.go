package storage

import (
	"fmt"
	"strings"
	"time"

	"github.com/letscout-hq/letscout/internal/domain"
)

// Package storage provides the durable deduplication and saved-listing layer.

// Store tracks notified listing IDs and keeps a durable log of saved listings.
//
// MarkProcessed is a conditional insert: it reports whether this call wrote
// the first marker for the id, and concurrent callers for the same id see at
// most one true result. SaveListing upserts by (id, source) and is
// independent of the processed set, so recency queries keep working even if
// the processed markers were pruned.
type Store interface {
	Close() error

	IsProcessed(id string) (bool, error)
	MarkProcessed(id string) (bool, error)

	SaveListing(l domain.Listing) error
	GetRecent(count int, pred func(domain.Listing) bool) ([]domain.Listing, error)
	GetListingsSince(t time.Time) ([]domain.Listing, error)

	RecordExecution(t time.Time) error
	LastExecution() (time.Time, bool, error)
}

// NewStore creates the configured storage backend.
func NewStore(typ, path string) (Store, error) {
	typ = strings.TrimSpace(strings.ToLower(typ))

	switch typ {
	case "", "none", "disabled":
		return noopStore{}, nil
	case "bbolt":
		if strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("bbolt storage requires a path")
		}
		return openBolt(path)
	default:
		return nil, fmt.Errorf("unsupported storage type %q", typ)
	}
}

type noopStore struct{}

func (noopStore) Close() error                          { return nil }
func (noopStore) IsProcessed(string) (bool, error)      { return false, nil }
func (noopStore) MarkProcessed(string) (bool, error)    { return true, nil }
func (noopStore) SaveListing(domain.Listing) error      { return nil }
func (noopStore) RecordExecution(time.Time) error       { return nil }
func (noopStore) LastExecution() (time.Time, bool, error) { return time.Time{}, false, nil }

func (noopStore) GetRecent(int, func(domain.Listing) bool) ([]domain.Listing, error) {
	return nil, nil
}

func (noopStore) GetListingsSince(time.Time) ([]domain.Listing, error) {
	return nil, nil
}
