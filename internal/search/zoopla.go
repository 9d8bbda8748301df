package search

import (
	"context"
	"net/url"
	"strconv"
)

const (
	zooplaRentBase = "https://www.zoopla.co.uk/to-rent/property"
	zooplaBuyBase  = "https://www.zoopla.co.uk/for-sale/property"
)

var zooplaAddedSince = map[string]string{
	"last_24_hours": "today",
	"last_3_days":   "last_3_days",
	"last_7_days":   "last_week",
	"last_14_days":  "last_2_weeks",
}

// ZooplaBuilder builds Zoopla search URLs. Zoopla searches by area slug, so
// no identifier resolution is needed and Build never fails.
type ZooplaBuilder struct{}

// NewZooplaBuilder returns a Zoopla URL builder.
func NewZooplaBuilder() *ZooplaBuilder { return &ZooplaBuilder{} }

func (b *ZooplaBuilder) Site() string { return "zoopla" }

// Build constructs a single search URL for the area.
func (b *ZooplaBuilder) Build(_ context.Context, area, searchType string, f Filters) (string, bool) {
	base := zooplaRentBase
	source := "to-rent"
	if searchType == "buy" {
		base = zooplaBuyBase
		source = "for-sale"
	}

	params := url.Values{}
	params.Set("q", area)
	params.Set("search_source", source)

	if f.PriceMin != nil {
		params.Set("price_min", strconv.Itoa(*f.PriceMin))
	}
	if f.PriceMax != nil {
		params.Set("price_max", strconv.Itoa(*f.PriceMax))
	}
	if searchType == "rent" {
		params.Set("price_frequency", "per_month")
	}
	if f.BedroomsMin != nil {
		params.Set("beds_min", strconv.Itoa(*f.BedroomsMin))
	}
	if f.BedroomsMax != nil {
		params.Set("beds_max", strconv.Itoa(*f.BedroomsMax))
	}
	if f.Radius != nil {
		params.Set("radius", strconv.FormatFloat(*f.Radius, 'f', -1, 64))
	}
	if mapped, ok := zooplaAddedSince[f.AddedSince]; ok {
		params.Set("added", mapped)
	}
	if f.ExcludeShared {
		params.Set("is_shared_accommodation", "false")
	}
	if f.ExcludeRetirement {
		params.Set("is_retirement_home", "false")
	}
	if f.ExcludeStudent {
		params.Set("is_student_accommodation", "false")
	}

	return base + "/" + url.PathEscape(area) + "/?" + params.Encode(), true
}
