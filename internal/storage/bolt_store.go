package storage

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/letscout-hq/letscout/internal/domain"
	bolt "go.etcd.io/bbolt"
)

const (
	processedBucket  = "processed"
	listingsBucket   = "listings"
	listingsByTime   = "listings_by_time"
	executionsBucket = "executions"

	timeKeyBytes = 8
)

// savedListing is the stored payload for one saved listing.
type savedListing struct {
	SavedAt int64          `json:"saved_at"`
	Listing domain.Listing `json:"listing"`
}

// boltStore implements Store backed by BoltDB. Bolt serializes write
// transactions, which gives MarkProcessed its conditional-insert guarantee
// under concurrent pollers.
type boltStore struct {
	db *bolt.DB
}

// openBolt initializes a BoltDB-backed Store.
func openBolt(path string) (Store, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage directory: %w", err)
		}
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bbolt db: %w", err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		for _, name := range []string{processedBucket, listingsBucket, listingsByTime, executionsBucket} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("init buckets: %w", err)
	}

	return &boltStore{db: db}, nil
}

// Close closes the BoltDB store.
func (b *boltStore) Close() error {
	if b == nil || b.db == nil {
		return nil
	}
	return b.db.Close()
}

// IsProcessed reports whether the given listing id has already been notified.
func (b *boltStore) IsProcessed(id string) (bool, error) {
	if b == nil || b.db == nil {
		return false, nil
	}

	var exists bool
	err := b.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(processedBucket))
		if bucket == nil {
			return fmt.Errorf("processed bucket missing")
		}
		exists = bucket.Get([]byte(id)) != nil
		return nil
	})
	return exists, err
}

// MarkProcessed inserts a durable marker for the id. It returns true only
// when this call wrote the first marker; marking twice leaves one marker.
func (b *boltStore) MarkProcessed(id string) (bool, error) {
	if b == nil || b.db == nil {
		return false, nil
	}

	var first bool
	err := b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(processedBucket))
		if bucket == nil {
			return fmt.Errorf("processed bucket missing")
		}
		if bucket.Get([]byte(id)) != nil {
			first = false
			return nil
		}
		first = true
		return bucket.Put([]byte(id), encodeTimeKey(time.Now()))
	})
	return first, err
}

// SaveListing upserts the listing keyed by (id, source) and maintains the
// save-time index used by recency queries. Re-saving the same listing
// replaces the previous copy and its index entry.
func (b *boltStore) SaveListing(l domain.Listing) error {
	if b == nil || b.db == nil {
		return nil
	}
	if l.ID == "" {
		return fmt.Errorf("listing id is empty")
	}

	now := time.Now()
	key := []byte(l.Key())

	payload, err := json.Marshal(savedListing{SavedAt: now.UnixNano(), Listing: l})
	if err != nil {
		return fmt.Errorf("marshal listing: %w", err)
	}

	return b.db.Update(func(tx *bolt.Tx) error {
		listings := tx.Bucket([]byte(listingsBucket))
		index := tx.Bucket([]byte(listingsByTime))
		if listings == nil || index == nil {
			return fmt.Errorf("listing buckets missing")
		}

		if old := listings.Get(key); old != nil {
			var prev savedListing
			if err := json.Unmarshal(old, &prev); err == nil {
				if err := index.Delete(indexKey(prev.SavedAt, key)); err != nil {
					return err
				}
			}
		}

		if err := listings.Put(key, payload); err != nil {
			return err
		}
		return index.Put(indexKey(now.UnixNano(), key), key)
	})
}

// GetRecent returns up to count listings in descending save-time order. The
// optional predicate is re-applied after the storage-level fetch, so the
// result never exceeds count even when more listings match.
func (b *boltStore) GetRecent(count int, pred func(domain.Listing) bool) ([]domain.Listing, error) {
	if b == nil || b.db == nil || count <= 0 {
		return nil, nil
	}

	var out []domain.Listing
	err := b.db.View(func(tx *bolt.Tx) error {
		listings := tx.Bucket([]byte(listingsBucket))
		index := tx.Bucket([]byte(listingsByTime))
		if listings == nil || index == nil {
			return fmt.Errorf("listing buckets missing")
		}

		cursor := index.Cursor()
		for k, v := cursor.Last(); k != nil && len(out) < count; k, v = cursor.Prev() {
			listing, ok := decodeSaved(listings.Get(v))
			if !ok {
				continue
			}
			if pred != nil && !pred(listing) {
				continue
			}
			out = append(out, listing)
		}
		return nil
	})
	return out, err
}

// GetListingsSince returns listings saved at or after t, oldest first.
func (b *boltStore) GetListingsSince(t time.Time) ([]domain.Listing, error) {
	if b == nil || b.db == nil {
		return nil, nil
	}

	var out []domain.Listing
	err := b.db.View(func(tx *bolt.Tx) error {
		listings := tx.Bucket([]byte(listingsBucket))
		index := tx.Bucket([]byte(listingsByTime))
		if listings == nil || index == nil {
			return fmt.Errorf("listing buckets missing")
		}

		seek := indexKey(t.UnixNano(), nil)
		cursor := index.Cursor()
		for k, v := cursor.Seek(seek); k != nil; k, v = cursor.Next() {
			if listing, ok := decodeSaved(listings.Get(v)); ok {
				out = append(out, listing)
			}
		}
		return nil
	})
	return out, err
}

// RecordExecution appends a run timestamp to the executions log.
func (b *boltStore) RecordExecution(t time.Time) error {
	if b == nil || b.db == nil {
		return nil
	}
	return b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(executionsBucket))
		if bucket == nil {
			return fmt.Errorf("executions bucket missing")
		}
		return bucket.Put(encodeTimeKey(t), nil)
	})
}

// LastExecution returns the most recent recorded run timestamp.
func (b *boltStore) LastExecution() (time.Time, bool, error) {
	if b == nil || b.db == nil {
		return time.Time{}, false, nil
	}

	var (
		last  time.Time
		found bool
	)
	err := b.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(executionsBucket))
		if bucket == nil {
			return fmt.Errorf("executions bucket missing")
		}
		if k, _ := bucket.Cursor().Last(); k != nil {
			if ts, ok := decodeTimeKey(k); ok {
				last = ts
				found = true
			}
		}
		return nil
	})
	return last, found, err
}

// indexKey builds a sortable save-time index key: big-endian nanos + listing key.
func indexKey(nanos int64, key []byte) []byte {
	buf := make([]byte, timeKeyBytes, timeKeyBytes+len(key))
	binary.BigEndian.PutUint64(buf, uint64(nanos))
	return append(buf, key...)
}

func encodeTimeKey(t time.Time) []byte {
	buf := make([]byte, timeKeyBytes)
	binary.BigEndian.PutUint64(buf, uint64(t.UnixNano()))
	return buf
}

func decodeTimeKey(value []byte) (time.Time, bool) {
	if len(value) < timeKeyBytes {
		return time.Time{}, false
	}
	nanos := int64(binary.BigEndian.Uint64(value[:timeKeyBytes]))
	if nanos <= 0 {
		return time.Time{}, false
	}
	return time.Unix(0, nanos), true
}

func decodeSaved(payload []byte) (domain.Listing, bool) {
	if len(payload) == 0 || !bytes.HasPrefix(bytes.TrimSpace(payload), []byte("{")) {
		return domain.Listing{}, false
	}
	var saved savedListing
	if err := json.Unmarshal(payload, &saved); err != nil {
		return domain.Listing{}, false
	}
	return saved.Listing, true
}
