package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/letscout-hq/letscout/internal/config"
	"github.com/letscout-hq/letscout/internal/domain"
	"github.com/letscout-hq/letscout/internal/filters"
	"github.com/letscout-hq/letscout/internal/storage"
)

// recent prints the newest saved listings, optionally re-applying the
// configured filters so already-persisted listings can be reviewed
// against updated criteria.
func main() {
	count := flag.Int("count", 20, "number of listings to print")
	filtered := flag.Bool("filtered", false, "apply the configured filters to saved listings")
	flag.Parse()

	if err := run(*count, *filtered); err != nil {
		fmt.Fprintf(os.Stderr, "recent failed: %v\n", err)
		os.Exit(1)
	}
}

func run(count int, filtered bool) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	store, err := storage.NewStore(cfg.StorageType, cfg.BBoltPath)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer store.Close()

	var pred func(domain.Listing) bool
	if filtered {
		set := filters.NewBuilder().
			ExcludeTitles(cfg.ExcludeTitles).
			ExcludeAreas(cfg.ExcludeAreaNames, cfg.ExcludePostcodes).
			PriceRange(cfg.PriceMin, cfg.PriceMax).
			SizeRange(cfg.SizeMin, cfg.SizeMax).
			RoomsRange(cfg.RoomsMin, cfg.RoomsMax).
			Build()
		pred = set.IsInteresting
	}

	listings, err := store.GetRecent(count, pred)
	if err != nil {
		return fmt.Errorf("read recent listings: %w", err)
	}

	if len(listings) == 0 {
		fmt.Println("no saved listings")
		return nil
	}
	for _, l := range listings {
		printListing(l)
	}
	return nil
}

func printListing(l domain.Listing) {
	fmt.Printf("[%s] %s\n", l.Source, l.Title)
	if l.Price != "" {
		fmt.Printf("  price: %s\n", l.Price)
	}
	if l.Rooms != "" {
		fmt.Printf("  rooms: %s\n", l.Rooms)
	}
	if l.Address != "" {
		fmt.Printf("  address: %s\n", l.Address)
	}
	if l.AIScore != nil {
		fmt.Printf("  score: %.1f (%s)\n", *l.AIScore, l.AIConfidence)
	}
	fmt.Printf("  %s\n\n", l.URL)
}
