package storage

import (
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/letscout-hq/letscout/internal/domain"
)

func openTestStore(t *testing.T) Store {
	t.Helper()
	store, err := openBolt(t.TempDir() + "/listings.db")
	if err != nil {
		t.Fatalf("openBolt: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestMarkProcessedIsIdempotent(t *testing.T) {
	store := openTestStore(t)

	seen, err := store.IsProcessed("id1")
	if err != nil || seen {
		t.Fatalf("expected unprocessed, seen=%v err=%v", seen, err)
	}

	first, err := store.MarkProcessed("id1")
	if err != nil || !first {
		t.Fatalf("expected first mark, first=%v err=%v", first, err)
	}

	first, err = store.MarkProcessed("id1")
	if err != nil {
		t.Fatalf("MarkProcessed twice: %v", err)
	}
	if first {
		t.Fatalf("second mark should not report first insert")
	}

	seen, err = store.IsProcessed("id1")
	if err != nil || !seen {
		t.Fatalf("expected processed, seen=%v err=%v", seen, err)
	}
}

func TestMarkProcessedConcurrentlyYieldsOneFirstMarker(t *testing.T) {
	store := openTestStore(t)

	const workers = 16
	var wg sync.WaitGroup
	firsts := make(chan bool, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			first, err := store.MarkProcessed("race-id")
			if err != nil {
				t.Errorf("MarkProcessed: %v", err)
				return
			}
			firsts <- first
		}()
	}
	wg.Wait()
	close(firsts)

	count := 0
	for first := range firsts {
		if first {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("expected exactly one first marker, got %d", count)
	}

	seen, err := store.IsProcessed("race-id")
	if err != nil || !seen {
		t.Fatalf("expected processed after races, seen=%v err=%v", seen, err)
	}
}

func TestSaveListingUpsertsByIDAndSource(t *testing.T) {
	store := openTestStore(t)

	l := domain.Listing{ID: "1", Source: "rightmove", URL: "u", Title: "old", Price: "£1,400 pcm"}
	if err := store.SaveListing(l); err != nil {
		t.Fatalf("SaveListing: %v", err)
	}
	l.Title = "new"
	if err := store.SaveListing(l); err != nil {
		t.Fatalf("SaveListing again: %v", err)
	}

	recent, err := store.GetRecent(10, nil)
	if err != nil {
		t.Fatalf("GetRecent: %v", err)
	}
	if len(recent) != 1 {
		t.Fatalf("expected 1 listing after upsert, got %d", len(recent))
	}
	if recent[0].Title != "new" {
		t.Fatalf("expected updated title, got %q", recent[0].Title)
	}
}

func TestGetRecentOrdersAndCaps(t *testing.T) {
	store := openTestStore(t)

	for i := 0; i < 15; i++ {
		l := domain.Listing{
			ID:     fmt.Sprintf("%d", i),
			Source: "zoopla",
			Title:  fmt.Sprintf("listing %d", i),
			Price:  "£1000",
		}
		if err := store.SaveListing(l); err != nil {
			t.Fatalf("SaveListing %d: %v", i, err)
		}
		time.Sleep(time.Millisecond)
	}

	recent, err := store.GetRecent(10, nil)
	if err != nil {
		t.Fatalf("GetRecent: %v", err)
	}
	if len(recent) != 10 {
		t.Fatalf("expected exactly 10, got %d", len(recent))
	}
	if recent[0].ID != "14" || recent[9].ID != "5" {
		t.Fatalf("expected most-recent-first ordering, got %s .. %s", recent[0].ID, recent[9].ID)
	}

	// Predicate matches everything: the cap still holds.
	all := func(domain.Listing) bool { return true }
	recent, err = store.GetRecent(10, all)
	if err != nil || len(recent) != 10 {
		t.Fatalf("filtered GetRecent: len=%d err=%v", len(recent), err)
	}

	even := func(l domain.Listing) bool { return strings.ContainsAny(l.ID, "02468") }
	recent, err = store.GetRecent(3, even)
	if err != nil {
		t.Fatalf("filtered GetRecent: %v", err)
	}
	if len(recent) != 3 {
		t.Fatalf("expected 3 filtered listings, got %d", len(recent))
	}
}

func TestGetListingsSince(t *testing.T) {
	store := openTestStore(t)

	if err := store.SaveListing(domain.Listing{ID: "old", Source: "s", Title: "t"}); err != nil {
		t.Fatalf("SaveListing: %v", err)
	}
	time.Sleep(5 * time.Millisecond)
	cutoff := time.Now()
	time.Sleep(5 * time.Millisecond)
	if err := store.SaveListing(domain.Listing{ID: "new", Source: "s", Title: "t"}); err != nil {
		t.Fatalf("SaveListing: %v", err)
	}

	since, err := store.GetListingsSince(cutoff)
	if err != nil {
		t.Fatalf("GetListingsSince: %v", err)
	}
	if len(since) != 1 || since[0].ID != "new" {
		t.Fatalf("expected only the new listing, got %#v", since)
	}
}

func TestExecutionsLog(t *testing.T) {
	store := openTestStore(t)

	_, found, err := store.LastExecution()
	if err != nil || found {
		t.Fatalf("expected no executions yet, found=%v err=%v", found, err)
	}

	first := time.Now().Add(-time.Hour)
	second := time.Now()
	if err := store.RecordExecution(first); err != nil {
		t.Fatalf("RecordExecution: %v", err)
	}
	if err := store.RecordExecution(second); err != nil {
		t.Fatalf("RecordExecution: %v", err)
	}

	last, found, err := store.LastExecution()
	if err != nil || !found {
		t.Fatalf("LastExecution: found=%v err=%v", found, err)
	}
	if last.UnixNano() != second.UnixNano() {
		t.Fatalf("expected last execution %v, got %v", second, last)
	}
}

func TestNewStoreSupportsNoop(t *testing.T) {
	store, err := NewStore("none", "")
	if err != nil {
		t.Fatalf("NewStore none: %v", err)
	}
	if _, err := store.MarkProcessed("x"); err != nil {
		t.Fatalf("noop store MarkProcessed: %v", err)
	}
}
