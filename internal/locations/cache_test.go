package locations

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"testing"
	"time"
)

type stubResolver struct {
	identifiers map[string]string
	err         error
	lookups     int
}

func (s *stubResolver) LookupIdentifier(_ context.Context, area, _ string) (string, error) {
	s.lookups++
	if s.err != nil {
		return "", s.err
	}
	return s.identifiers[area], nil
}

func TestResolveCachesAfterSingleLookup(t *testing.T) {
	resolver := &stubResolver{identifiers: map[string]string{"Fitzrovia": "REGION^87490"}}
	cache := NewCache(t.TempDir()+"/locations.json", resolver, 0)

	id, err := cache.Resolve(context.Background(), "Fitzrovia", "rent")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if id != "REGION^87490" {
		t.Fatalf("identifier = %q", id)
	}

	again, err := cache.Resolve(context.Background(), "Fitzrovia", "rent")
	if err != nil || again != id {
		t.Fatalf("second Resolve: id=%q err=%v", again, err)
	}
	if resolver.lookups != 1 {
		t.Fatalf("expected at most one external lookup, got %d", resolver.lookups)
	}
}

func TestResolveFailureWritesNothing(t *testing.T) {
	resolver := &stubResolver{err: errors.New("network down")}
	path := t.TempDir() + "/locations.json"
	cache := NewCache(path, resolver, 0)

	if _, err := cache.Resolve(context.Background(), "Peckham", "rent"); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("cache file should not have been written")
	}

	// A later resolve retries the lookup.
	resolver.err = nil
	resolver.identifiers = map[string]string{"Peckham": "REGION^1"}
	if _, err := cache.Resolve(context.Background(), "Peckham", "rent"); err != nil {
		t.Fatalf("retry Resolve: %v", err)
	}
	if resolver.lookups != 2 {
		t.Fatalf("expected 2 lookups, got %d", resolver.lookups)
	}
}

func TestResolveSurvivesRestart(t *testing.T) {
	path := t.TempDir() + "/locations.json"
	resolver := &stubResolver{identifiers: map[string]string{"Camden": "REGION^93965"}}

	cache := NewCache(path, resolver, 0)
	if _, err := cache.Resolve(context.Background(), "Camden", "rent"); err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	reopened := NewCache(path, resolver, 0)
	id, err := reopened.Resolve(context.Background(), "Camden", "rent")
	if err != nil || id != "REGION^93965" {
		t.Fatalf("Resolve after restart: id=%q err=%v", id, err)
	}
	if resolver.lookups != 1 {
		t.Fatalf("restart should not trigger another lookup, got %d", resolver.lookups)
	}
}

func writeEntries(t *testing.T, path string, entries map[string]Entry) {
	t.Helper()
	raw, err := json.Marshal(entries)
	if err != nil {
		t.Fatalf("marshal entries: %v", err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatalf("write entries: %v", err)
	}
}

func TestVerifyAllOutcomes(t *testing.T) {
	path := t.TempDir() + "/locations.json"
	stale := time.Now().UTC().Add(-30 * 24 * time.Hour)
	fresh := time.Now().UTC()

	writeEntries(t, path, map[string]Entry{
		"Fresh":   {Identifier: "REGION^1", CachedAt: fresh, VerifiedAt: fresh},
		"Same":    {Identifier: "REGION^2", CachedAt: stale, VerifiedAt: stale},
		"Moved":   {Identifier: "REGION^3", CachedAt: stale, VerifiedAt: stale},
		"Gone":    {Identifier: "REGION^4", CachedAt: stale, VerifiedAt: stale},
	})

	resolver := &stubResolver{identifiers: map[string]string{
		"Same":  "REGION^2",
		"Moved": "REGION^3-new",
		// "Gone" resolves to "" -> failed
	}}
	cache := NewCache(path, resolver, DefaultVerifyInterval)

	results, err := cache.VerifyAll(context.Background(), "rent")
	if err != nil {
		t.Fatalf("VerifyAll: %v", err)
	}

	want := map[string]Outcome{
		"Fresh": OutcomeOK,
		"Same":  OutcomeOK,
		"Moved": OutcomeUpdated,
		"Gone":  OutcomeFailed,
	}
	for area, outcome := range want {
		if results[area] != outcome {
			t.Fatalf("outcome[%s] = %s, want %s", area, results[area], outcome)
		}
	}
	if resolver.lookups != 3 {
		t.Fatalf("fresh entry must skip lookup; lookups = %d", resolver.lookups)
	}

	// The failed entry keeps its old verified_at and stays a retry candidate.
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read cache: %v", err)
	}
	var persisted map[string]Entry
	if err := json.Unmarshal(raw, &persisted); err != nil {
		t.Fatalf("decode cache: %v", err)
	}
	if !persisted["Gone"].VerifiedAt.Equal(stale) {
		t.Fatalf("failed entry verified_at advanced: %v", persisted["Gone"].VerifiedAt)
	}
	if persisted["Moved"].Identifier != "REGION^3-new" {
		t.Fatalf("updated entry not persisted: %q", persisted["Moved"].Identifier)
	}
}

func TestMaybeVerifyGatesOnInterval(t *testing.T) {
	path := t.TempDir() + "/locations.json"
	stale := time.Now().UTC().Add(-30 * 24 * time.Hour)
	writeEntries(t, path, map[string]Entry{
		"Area": {Identifier: "REGION^1", CachedAt: stale, VerifiedAt: stale},
	})

	resolver := &stubResolver{identifiers: map[string]string{"Area": "REGION^1"}}
	cache := NewCache(path, resolver, DefaultVerifyInterval)

	cache.MaybeVerify(context.Background(), "rent")
	if resolver.lookups != 1 {
		t.Fatalf("first MaybeVerify should run a pass, lookups = %d", resolver.lookups)
	}

	// Within the interval the call is a no-op.
	cache.MaybeVerify(context.Background(), "rent")
	if resolver.lookups != 1 {
		t.Fatalf("second MaybeVerify should be gated, lookups = %d", resolver.lookups)
	}
}

func TestTokenizeArea(t *testing.T) {
	cases := map[string]string{
		"Fitzrovia":    "FI/TZ/RO/VI/A",
		"Stoke Newington": "ST/OK/EN/EW/IN/GT/ON",
		"W2":           "W2",
	}
	for area, want := range cases {
		if got := tokenizeArea(area); got != want {
			t.Fatalf("tokenizeArea(%q) = %q, want %q", area, got, want)
		}
	}
}
