package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/letscout-hq/letscout/internal/config"
	"github.com/letscout-hq/letscout/internal/domain"
	"github.com/letscout-hq/letscout/internal/filters"
	"github.com/letscout-hq/letscout/internal/hunter"
	"github.com/letscout-hq/letscout/internal/locations"
	"github.com/letscout-hq/letscout/internal/logger"
	"github.com/letscout-hq/letscout/internal/notify"
	"github.com/letscout-hq/letscout/internal/processing"
	"github.com/letscout-hq/letscout/internal/search"
	"github.com/letscout-hq/letscout/internal/storage"
	"github.com/letscout-hq/letscout/pkg/httpclient"
)

const requestDelay = 2 * time.Second

// Hunter is the polling runtime. Each cycle it builds search URLs, crawls
// every matched portal concurrently, and runs the results through the
// processing chain.
type Hunter struct {
	cfg          *config.Config
	searches     []search.Search
	builders     map[string]search.Builder
	crawlerReg   *hunter.Registry
	chain        *processing.Chain
	fanout       *notify.Fanout
	cache        *locations.Cache
	pollInterval time.Duration
	log          logger.Logger
	store        storage.Store
}

// NewHunter builds the runtime from config files.
func NewHunter(ctx context.Context, cfg *config.Config, log logger.Logger) (*Hunter, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	if ctx == nil {
		ctx = context.Background()
	}

	searches, err := search.LoadSearches(cfg.SearchesFile)
	if err != nil {
		return nil, fmt.Errorf("load searches: %w", err)
	}
	for i := range searches {
		searches[i] = search.ResolveAreas(searches[i])
	}
	names := make([]string, 0, len(searches))
	for _, s := range searches {
		names = append(names, s.Name)
	}
	log.InfoObj("searches loaded", "searches_meta", map[string]any{
		"count": len(names),
		"names": names,
	})

	notifierConfigs, err := notify.LoadConfigs(cfg.NotifiersFile)
	if err != nil {
		return nil, fmt.Errorf("load notifiers: %w", err)
	}
	notifiers, err := notify.DefaultRegistry().BuildAll(ctx, notifierConfigs)
	if err != nil {
		return nil, fmt.Errorf("build notifiers: %w", err)
	}
	if len(notifiers) == 0 {
		return nil, fmt.Errorf("no notifiers enabled")
	}
	fanout := notify.NewFanout(notifiers)
	log.InfoObj("notifiers loaded", "notifiers_meta", map[string]any{
		"count": fanout.Size(),
	})

	store, err := storage.NewStore(cfg.StorageType, cfg.BBoltPath)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}
	log.InfoObj("storage initialized", "storage_config", map[string]any{
		"type": cfg.StorageType,
		"path": cfg.BBoltPath,
	})

	client := httpclient.NewRestyClient(cfg.RequestTimeout)
	cache := locations.NewCache(cfg.LocationCachePath, locations.NewTypeaheadResolver(client), cfg.LocationVerifyInterval)
	crawlerReg := hunter.DefaultRegistry(client, requestDelay)

	builders := map[string]search.Builder{
		"rightmove": search.NewRightmoveBuilder(cache),
		"zoopla":    search.NewZooplaBuilder(),
	}

	filterSet := filters.NewBuilder().
		ExcludeTitles(cfg.ExcludeTitles).
		ExcludeAreas(cfg.ExcludeAreaNames, cfg.ExcludePostcodes).
		PriceRange(cfg.PriceMin, cfg.PriceMax).
		SizeRange(cfg.SizeMin, cfg.SizeMax).
		RoomsRange(cfg.RoomsMin, cfg.RoomsMax).
		Build()

	var durations *processing.DurationsProcessor
	if cfg.GMapsEnabled {
		durations = processing.NewDurationsProcessor(cfg.GMapsAPIKey, cfg.GMapsDestinations)
	}
	var scorer *processing.ScoreProcessor
	if cfg.LLMEnabled {
		scorer = processing.NewScoreProcessor(cfg.LLMAPIKey, cfg.LLMModel, cfg.LLMPriorities, cfg.LLMDealbreakers)
	}

	chain := processing.NewChainBuilder().
		ResolveAddresses(crawlerLoaders{reg: crawlerReg}).
		CalculateDurations(durations).
		ScoreListings(scorer).
		ApplyFilter(filterSet).
		SaveAll(store).
		DedupeAgainst(store).
		SendNotifications(fanout, cfg.MessageFormat, store).
		Build()
	log.InfoObj("processing chain built", "chain_stages", chain.Stages())

	return &Hunter{
		cfg:          cfg,
		searches:     searches,
		builders:     builders,
		crawlerReg:   crawlerReg,
		chain:        chain,
		fanout:       fanout,
		cache:        cache,
		pollInterval: cfg.PollInterval,
		log:          log,
		store:        store,
	}, nil
}

// Run starts the poll loop until the context is cancelled.
func (h *Hunter) Run(ctx context.Context) error {
	if h == nil || h.chain == nil {
		return fmt.Errorf("hunter is not initialized")
	}
	defer h.close()

	if len(h.searches) == 0 {
		h.log.WarnObj("no searches configured; hunter idle", "searches_file", h.cfg.SearchesFile)
		<-ctx.Done()
		return ctx.Err()
	}

	h.log.InfoObj("hunter loop starting", "hunter_state", map[string]any{
		"searches_count":  len(h.searches),
		"notifiers_count": h.fanout.Size(),
		"poll_interval":   h.pollInterval.String(),
	})

	if err := h.runOnce(ctx); err != nil {
		h.log.ErrorObj("initial hunt failed", "error", err)
	}

	ticker := time.NewTicker(h.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			h.log.InfoObj("hunter loop exiting", "reason", ctx.Err())
			return nil
		case <-ticker.C:
			if err := h.runOnce(ctx); err != nil {
				h.log.ErrorObj("scheduled hunt failed", "error", err)
			}
		}
	}
}

// runOnce performs a single hunt across all searches.
func (h *Hunter) runOnce(ctx context.Context) error {
	start := time.Now()

	for _, typ := range h.searchTypes() {
		h.cache.MaybeVerify(ctx, typ)
	}

	urls := search.BuildURLs(ctx, h.builders, h.searches)
	targets := h.crawlerReg.CrawlersFor(urls)
	h.log.InfoObj("hunt started", "hunt_meta", map[string]any{
		"targets_count": len(targets),
		"started_at":    start.UTC(),
	})

	listings, err := h.crawlAll(ctx, targets)
	processed := h.chain.Process(ctx, listings)

	if recErr := h.store.RecordExecution(start); recErr != nil {
		h.log.WarnObj("failed to record execution", "error", recErr)
	}

	h.log.InfoObj("hunt completed", "hunt_meta", map[string]any{
		"targets_count":  len(targets),
		"listings_found": len(listings),
		"listings_kept":  len(processed),
		"elapsed_ms":     time.Since(start).Milliseconds(),
	})
	return err
}

// crawlAll fetches every target with bounded concurrency. Results keep
// target order regardless of which crawl finishes first.
func (h *Hunter) crawlAll(ctx context.Context, targets []hunter.Target) ([]domain.Listing, error) {
	results := make([][]domain.Listing, len(targets))
	errs := make([]error, len(targets))

	sem := make(chan struct{}, h.cfg.MaxConcurrentSources)
	var wg sync.WaitGroup
	for i, target := range targets {
		wg.Add(1)
		go func(i int, t hunter.Target) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			listings, err := t.Crawler.Crawl(ctx, t.URL, h.cfg.MaxPages)
			if err != nil {
				errs[i] = fmt.Errorf("%s: %w", t.Crawler.Name(), err)
				return
			}
			results[i] = listings
		}(i, target)
	}
	wg.Wait()

	var all []domain.Listing
	for _, batch := range results {
		all = append(all, batch...)
	}
	return all, errors.Join(errs...)
}

func (h *Hunter) searchTypes() []string {
	seen := make(map[string]struct{}, 2)
	var types []string
	for _, s := range h.searches {
		if _, ok := seen[s.Type]; ok {
			continue
		}
		seen[s.Type] = struct{}{}
		types = append(types, s.Type)
	}
	return types
}

func (h *Hunter) close() {
	if h == nil {
		return
	}
	if err := h.fanout.Close(); err != nil {
		h.log.ErrorObj("notifier close failed", "error", err)
	}
	if err := h.store.Close(); err != nil {
		h.log.ErrorObj("storage close failed", "error", err)
	}
}

// crawlerLoaders adapts the crawler registry to the address-resolution
// stage. Only crawlers that expose detail-page loading participate.
type crawlerLoaders struct {
	reg *hunter.Registry
}

func (c crawlerLoaders) LoaderFor(url string) (processing.AddressLoader, bool) {
	crawler, err := c.reg.CrawlerFor(url)
	if err != nil {
		return nil, false
	}
	loader, ok := crawler.(hunter.AddressLoader)
	return loader, ok
}
