package locations

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/letscout-hq/letscout/internal/logger"
)

// Package locations caches provider-specific location identifiers for
// human-readable area names across process restarts.

// ErrUnavailable is returned when an area cannot be resolved to an
// identifier. Nothing is cached in that case so a later resolve retries.
var ErrUnavailable = errors.New("location identifier unavailable")

// DefaultVerifyInterval is how long a cached identifier is trusted before it
// becomes a candidate for re-verification.
const DefaultVerifyInterval = 7 * 24 * time.Hour

// Outcome classifies what a verification pass did with one entry.
type Outcome string

const (
	OutcomeOK      Outcome = "ok"
	OutcomeUpdated Outcome = "updated"
	OutcomeFailed  Outcome = "failed"
)

// Entry is one persisted cache record. New optional fields stay
// forward-readable because decoding ignores unknown keys.
type Entry struct {
	Identifier string    `json:"identifier"`
	CachedAt   time.Time `json:"cached_at"`
	VerifiedAt time.Time `json:"verified_at"`
}

// Resolver looks up the provider identifier for an area name.
type Resolver interface {
	LookupIdentifier(ctx context.Context, area, searchType string) (string, error)
}

// Cache maps area names to provider location identifiers, backed by a single
// JSON document on disk.
type Cache struct {
	path           string
	resolver       Resolver
	verifyInterval time.Duration

	mu      sync.Mutex
	entries map[string]Entry
	loaded  bool

	// maintenanceMu gates VerifyAll so only one pass runs system-wide.
	maintenanceMu   sync.Mutex
	lastMaintenance time.Time
}

// NewCache builds a cache persisted at path, resolving misses through r.
func NewCache(path string, r Resolver, verifyInterval time.Duration) *Cache {
	if verifyInterval <= 0 {
		verifyInterval = DefaultVerifyInterval
	}
	return &Cache{
		path:           path,
		resolver:       r,
		verifyInterval: verifyInterval,
	}
}

// Resolve returns the identifier for area. A cached entry is returned
// immediately regardless of staleness; staleness only matters to the
// maintenance pass. On a miss, one lookup is performed and a successful
// result is persisted with cached_at = verified_at = now.
func (c *Cache) Resolve(ctx context.Context, area, searchType string) (string, error) {
	if c == nil || c.resolver == nil {
		return "", ErrUnavailable
	}

	c.mu.Lock()
	if err := c.loadLocked(); err != nil {
		c.mu.Unlock()
		return "", err
	}
	if entry, ok := c.entries[area]; ok {
		c.mu.Unlock()
		return entry.Identifier, nil
	}
	c.mu.Unlock()

	identifier, err := c.resolver.LookupIdentifier(ctx, area, searchType)
	if err != nil || identifier == "" {
		logger.WarnObj("location lookup failed", "location_error", map[string]any{
			"area":  area,
			"error": fmt.Sprint(err),
		})
		return "", ErrUnavailable
	}

	now := time.Now().UTC()

	c.mu.Lock()
	defer c.mu.Unlock()
	// Another resolve may have raced us; keep whichever entry landed first.
	if entry, ok := c.entries[area]; ok {
		return entry.Identifier, nil
	}
	c.entries[area] = Entry{Identifier: identifier, CachedAt: now, VerifiedAt: now}
	if err := c.persistLocked(); err != nil {
		return "", fmt.Errorf("persist location cache: %w", err)
	}
	logger.InfoObj("location identifier cached", "location_entry", map[string]any{
		"area":       area,
		"identifier": identifier,
	})
	return identifier, nil
}

// VerifyAll re-resolves entries whose verified_at is older than the verify
// interval. Entries inside the interval are reported ok without a lookup.
// A failed lookup leaves the entry (and its verified_at) untouched so it
// stays a retry candidate. The cache file is rewritten once at the end, not
// per entry.
func (c *Cache) VerifyAll(ctx context.Context, searchType string) (map[string]Outcome, error) {
	if c == nil || c.resolver == nil {
		return nil, nil
	}

	c.maintenanceMu.Lock()
	defer c.maintenanceMu.Unlock()

	c.mu.Lock()
	if err := c.loadLocked(); err != nil {
		c.mu.Unlock()
		return nil, err
	}
	snapshot := make(map[string]Entry, len(c.entries))
	for area, entry := range c.entries {
		snapshot[area] = entry
	}
	c.mu.Unlock()

	results := make(map[string]Outcome, len(snapshot))
	cutoff := time.Now().UTC().Add(-c.verifyInterval)
	changed := false

	for area, entry := range snapshot {
		if entry.VerifiedAt.After(cutoff) {
			results[area] = OutcomeOK
			continue
		}

		identifier, err := c.resolver.LookupIdentifier(ctx, area, searchType)
		if err != nil || identifier == "" {
			results[area] = OutcomeFailed
			continue
		}

		entry.VerifiedAt = time.Now().UTC()
		if identifier != entry.Identifier {
			logger.WarnObj("location identifier changed", "location_drift", map[string]any{
				"area": area,
				"was":  entry.Identifier,
				"now":  identifier,
			})
			entry.Identifier = identifier
			results[area] = OutcomeUpdated
		} else {
			results[area] = OutcomeOK
		}

		c.mu.Lock()
		c.entries[area] = entry
		c.mu.Unlock()
		changed = true
	}

	if changed {
		c.mu.Lock()
		err := c.persistLocked()
		c.mu.Unlock()
		if err != nil {
			return results, fmt.Errorf("persist location cache: %w", err)
		}
	}
	return results, nil
}

// MaybeVerify runs VerifyAll at most once per verify interval. It is safe to
// call on every URL-build attempt; outside the interval it is a no-op.
func (c *Cache) MaybeVerify(ctx context.Context, searchType string) {
	if c == nil {
		return
	}

	c.maintenanceMu.Lock()
	due := c.lastMaintenance.IsZero() || time.Since(c.lastMaintenance) > c.verifyInterval
	if due {
		c.lastMaintenance = time.Now()
	}
	c.maintenanceMu.Unlock()
	if !due {
		return
	}

	results, err := c.VerifyAll(ctx, searchType)
	if err != nil {
		logger.ErrorObj("location cache verification failed", "error", err)
		return
	}
	if len(results) > 0 {
		logger.InfoObj("location cache verified", "verification_results", results)
	}
}

// loadLocked reads the cache file on first use. Callers hold c.mu.
func (c *Cache) loadLocked() error {
	if c.loaded {
		return nil
	}
	c.entries = make(map[string]Entry)
	c.loaded = true

	raw, err := os.ReadFile(c.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read location cache: %w", err)
	}
	if err := json.Unmarshal(raw, &c.entries); err != nil {
		return fmt.Errorf("decode location cache: %w", err)
	}
	return nil
}

// persistLocked writes the whole cache document. Callers hold c.mu.
func (c *Cache) persistLocked() error {
	dir := filepath.Dir(c.path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	raw, err := json.MarshalIndent(c.entries, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(c.path, raw, 0o644)
}
