package processing

import (
	"context"

	"github.com/letscout-hq/letscout/internal/domain"
	"github.com/letscout-hq/letscout/internal/logger"
)

// AddressLoaderRegistry maps a listing URL to the loader able to fetch its
// detail page, mirroring how crawler routing works for search pages.
type AddressLoaderRegistry interface {
	LoaderFor(url string) (AddressLoader, bool)
}

// AddressLoader fetches the full address from a listing's detail page.
type AddressLoader interface {
	LoadAddress(ctx context.Context, url string) (string, error)
}

// addressStage fills empty addresses from detail pages. Listings that
// already carry an address, or whose detail fetch fails, pass through
// unchanged.
type addressStage struct {
	loaders AddressLoaderRegistry
}

func (s *addressStage) Name() string { return "resolve_addresses" }

func (s *addressStage) ProcessListings(ctx context.Context, listings []domain.Listing) []domain.Listing {
	for i := range listings {
		if listings[i].Address != "" {
			continue
		}
		loader, ok := s.loaders.LoaderFor(listings[i].URL)
		if !ok {
			continue
		}
		addr, err := loader.LoadAddress(ctx, listings[i].URL)
		if err != nil {
			logger.DebugObj("address lookup failed", "address_error", map[string]any{"url": listings[i].URL, "error": err.Error()})
			continue
		}
		listings[i].Address = addr
	}
	return listings
}
