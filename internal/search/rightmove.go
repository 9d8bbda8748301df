package search

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/letscout-hq/letscout/internal/locations"
	"github.com/letscout-hq/letscout/internal/logger"
)

const (
	rightmoveRentBase = "https://www.rightmove.co.uk/property-to-rent/find.html"
	rightmoveBuyBase  = "https://www.rightmove.co.uk/property-for-sale/find.html"
)

var rightmoveAddedSince = map[string]string{
	"last_24_hours": "last24Hours",
	"last_3_days":   "last3Days",
	"last_7_days":   "last7Days",
	"last_14_days":  "last14Days",
}

// RightmoveBuilder builds Rightmove search URLs. Areas are resolved to
// location identifiers through the cache; stale-entry maintenance piggybacks
// on URL building and is interval-gated inside the cache.
type RightmoveBuilder struct {
	cache *locations.Cache
}

// NewRightmoveBuilder wires a builder to the location cache.
func NewRightmoveBuilder(cache *locations.Cache) *RightmoveBuilder {
	return &RightmoveBuilder{cache: cache}
}

func (b *RightmoveBuilder) Site() string { return "rightmove" }

// Build constructs a single search URL, or ok=false when the area's location
// identifier cannot be resolved.
func (b *RightmoveBuilder) Build(ctx context.Context, area, searchType string, f Filters) (string, bool) {
	b.cache.MaybeVerify(ctx, searchType)

	base := rightmoveRentBase
	if searchType == "buy" {
		base = rightmoveBuyBase
	}

	identifier, err := b.cache.Resolve(ctx, area, searchType)
	if err != nil {
		logger.WarnObj("no location identifier; skipping area", "url_build", map[string]any{
			"site": b.Site(),
			"area": area,
		})
		return "", false
	}

	params := url.Values{}
	params.Set("searchLocation", area)
	params.Set("useLocationIdentifier", "true")
	params.Set("locationIdentifier", identifier)

	if f.PriceMin != nil {
		params.Set("minPrice", strconv.Itoa(*f.PriceMin))
	}
	if f.PriceMax != nil {
		params.Set("maxPrice", strconv.Itoa(*f.PriceMax))
	}
	if f.BedroomsMin != nil {
		params.Set("minBedrooms", strconv.Itoa(*f.BedroomsMin))
	}
	if f.BedroomsMax != nil {
		params.Set("maxBedrooms", strconv.Itoa(*f.BedroomsMax))
	}
	if f.Radius != nil {
		params.Set("radius", strconv.FormatFloat(*f.Radius, 'f', -1, 64))
	}
	if mapped, ok := rightmoveAddedSince[f.AddedSince]; ok {
		params.Set("added_to_site", mapped)
	}

	var dontShow []string
	if f.ExcludeShared {
		dontShow = append(dontShow, "sharedOwnership")
	}
	if f.ExcludeRetirement {
		dontShow = append(dontShow, "retirement")
	}
	if f.ExcludeStudent {
		dontShow = append(dontShow, "student")
	}
	if len(dontShow) > 0 {
		params.Set("dontShow", strings.Join(dontShow, ","))
	}

	return base + "?" + params.Encode(), true
}
