package hunter

import (
	"context"

	"github.com/letscout-hq/letscout/internal/domain"
)

// Crawler extracts listings for one provider. Implementations live in
// provider-specific files (e.g. rightmove.go); the registry and pipeline
// depend only on this contract, never on a plugin's DOM logic.
type Crawler interface {
	Name() string
	Crawl(ctx context.Context, url string, maxPages int) ([]domain.Listing, error)
}

// AddressLoader is implemented by crawlers that can fetch the full address
// from a listing's detail page.
type AddressLoader interface {
	LoadAddress(ctx context.Context, url string) (string, error)
}

// Constructor builds a crawler instance. Plugins are only constructed after
// their pattern matched, so resolution never leaks half-built plugins.
type Constructor func() Crawler
