package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/letscout-hq/letscout/internal/config"
	"github.com/letscout-hq/letscout/internal/domain"
	"github.com/letscout-hq/letscout/internal/hunter"
	"github.com/letscout-hq/letscout/internal/logger"
)

type fakeCrawler struct {
	name     string
	listings []domain.Listing
	err      error
	delay    time.Duration
}

func (f *fakeCrawler) Name() string { return f.name }

func (f *fakeCrawler) Crawl(ctx context.Context, _ string, _ int) ([]domain.Listing, error) {
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return f.listings, f.err
}

func TestCrawlAllPreservesTargetOrder(t *testing.T) {
	h := &Hunter{
		cfg: &config.Config{MaxConcurrentSources: 2, MaxPages: 1},
		log: logger.NopLogger{},
	}

	// The slow first target must not lose its slot to faster ones.
	targets := []hunter.Target{
		{URL: "a", Crawler: &fakeCrawler{name: "slow", delay: 50 * time.Millisecond, listings: []domain.Listing{{ID: "1"}}}},
		{URL: "b", Crawler: &fakeCrawler{name: "fast", listings: []domain.Listing{{ID: "2"}, {ID: "3"}}}},
	}

	all, err := h.crawlAll(context.Background(), targets)
	if err != nil {
		t.Fatalf("crawlAll: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("got %d listings, want 3", len(all))
	}
	for i, want := range []string{"1", "2", "3"} {
		if all[i].ID != want {
			t.Fatalf("listing %d = %q, want %q", i, all[i].ID, want)
		}
	}
}

func TestCrawlAllOneFailureKeepsOthers(t *testing.T) {
	h := &Hunter{
		cfg: &config.Config{MaxConcurrentSources: 4, MaxPages: 1},
		log: logger.NopLogger{},
	}

	targets := []hunter.Target{
		{URL: "a", Crawler: &fakeCrawler{name: "broken", err: errors.New("blocked")}},
		{URL: "b", Crawler: &fakeCrawler{name: "ok", listings: []domain.Listing{{ID: "1"}}}},
	}

	all, err := h.crawlAll(context.Background(), targets)
	if err == nil {
		t.Fatalf("expected joined error")
	}
	if len(all) != 1 || all[0].ID != "1" {
		t.Fatalf("healthy target results lost: %#v", all)
	}
}
