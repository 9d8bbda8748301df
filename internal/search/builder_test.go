package search

import (
	"context"
	"strings"
	"testing"

	"github.com/letscout-hq/letscout/internal/locations"
)

type mapResolver struct {
	identifiers map[string]string
}

func (m mapResolver) LookupIdentifier(_ context.Context, area, _ string) (string, error) {
	return m.identifiers[area], nil
}

func newTestRightmove(t *testing.T, identifiers map[string]string) *RightmoveBuilder {
	t.Helper()
	cache := locations.NewCache(t.TempDir()+"/locations.json", mapResolver{identifiers}, 0)
	return NewRightmoveBuilder(cache)
}

func intp(v int) *int { return &v }

func TestRightmoveBuildIsDeterministic(t *testing.T) {
	b := newTestRightmove(t, map[string]string{"EC1": "REGION^904"})
	f := Filters{PriceMax: intp(1500)}

	url, ok := b.Build(context.Background(), "EC1", "rent", f)
	if !ok {
		t.Fatalf("expected URL for resolvable area")
	}
	want := "https://www.rightmove.co.uk/property-to-rent/find.html?" +
		"locationIdentifier=REGION%5E904&maxPrice=1500&searchLocation=EC1&useLocationIdentifier=true"
	if url != want {
		t.Fatalf("url = %s\nwant %s", url, want)
	}

	again, _ := b.Build(context.Background(), "EC1", "rent", f)
	if again != url {
		t.Fatalf("Build is not pure: %s != %s", again, url)
	}
}

func TestRightmoveBuildFullFilterSet(t *testing.T) {
	b := newTestRightmove(t, map[string]string{"Fitzrovia": "REGION^87490"})
	radius := 0.5
	f := Filters{
		PriceMin:          intp(1000),
		PriceMax:          intp(2000),
		BedroomsMin:       intp(1),
		BedroomsMax:       intp(2),
		Radius:            &radius,
		AddedSince:        "last_3_days",
		ExcludeShared:     true,
		ExcludeRetirement: true,
		ExcludeStudent:    true,
	}

	url, ok := b.Build(context.Background(), "Fitzrovia", "buy", f)
	if !ok {
		t.Fatalf("expected URL")
	}
	if !strings.HasPrefix(url, "https://www.rightmove.co.uk/property-for-sale/find.html?") {
		t.Fatalf("buy search should use the sale base: %s", url)
	}
	for _, fragment := range []string{
		"minPrice=1000", "maxPrice=2000",
		"minBedrooms=1", "maxBedrooms=2",
		"radius=0.5", "added_to_site=last3Days",
		"dontShow=sharedOwnership%2Cretirement%2Cstudent",
	} {
		if !strings.Contains(url, fragment) {
			t.Fatalf("url missing %q: %s", fragment, url)
		}
	}
}

func TestRightmoveBuildSkipsUnresolvableArea(t *testing.T) {
	b := newTestRightmove(t, map[string]string{})
	if _, ok := b.Build(context.Background(), "Atlantis", "rent", Filters{}); ok {
		t.Fatalf("expected ok=false for unresolvable area")
	}
}

func TestZooplaBuildLiteralURL(t *testing.T) {
	b := NewZooplaBuilder()
	url, ok := b.Build(context.Background(), "Camden", "rent", Filters{PriceMin: intp(1000)})
	if !ok {
		t.Fatalf("zoopla build should not fail")
	}
	want := "https://www.zoopla.co.uk/to-rent/property/Camden/?" +
		"price_frequency=per_month&price_min=1000&q=Camden&search_source=to-rent"
	if url != want {
		t.Fatalf("url = %s\nwant %s", url, want)
	}
}

func TestZooplaBuildExclusions(t *testing.T) {
	b := NewZooplaBuilder()
	url, _ := b.Build(context.Background(), "Hackney", "buy", Filters{
		ExcludeShared:  true,
		ExcludeStudent: true,
		AddedSince:     "last_7_days",
	})
	for _, fragment := range []string{
		"search_source=for-sale",
		"is_shared_accommodation=false",
		"is_student_accommodation=false",
		"added=last_week",
	} {
		if !strings.Contains(url, fragment) {
			t.Fatalf("url missing %q: %s", fragment, url)
		}
	}
	if strings.Contains(url, "price_frequency") {
		t.Fatalf("buy search must not carry price_frequency: %s", url)
	}
}

func TestBuildURLsExpandsZonesAndSkipsUnknownSites(t *testing.T) {
	identifiers := make(map[string]string)
	for _, district := range ExpandZones([]int{1}) {
		identifiers[district] = "REGION^" + district
	}
	rightmove := newTestRightmove(t, identifiers)

	builders := map[string]Builder{"rightmove": rightmove}
	searches := []Search{{
		Name:    "zone1",
		Sites:   []string{"rightmove", "gumtree"}, // gumtree unregistered
		Type:    "rent",
		Zones:   []int{1},
		Filters: Filters{PriceMax: intp(1500)},
	}}

	urls := BuildURLs(context.Background(), builders, searches)
	if len(urls) != len(identifiers) {
		t.Fatalf("expected %d urls, got %d", len(identifiers), len(urls))
	}
	if !strings.Contains(urls[0], "maxPrice=1500") {
		t.Fatalf("url missing price filter: %s", urls[0])
	}
	if !strings.Contains(urls[0], "searchLocation=EC1") {
		t.Fatalf("first url should target the first zone-1 district: %s", urls[0])
	}
}

func TestBuildAllContinuesPastFailedAreas(t *testing.T) {
	b := newTestRightmove(t, map[string]string{"W2": "REGION^2"})
	s := Search{
		Name:  "partial",
		Sites: []string{"rightmove"},
		Type:  "rent",
		Areas: []string{"Nowhere", "W2"},
	}

	urls := BuildAll(context.Background(), b, s)
	if len(urls) != 1 || !strings.Contains(urls[0], "searchLocation=W2") {
		t.Fatalf("expected only the resolvable area, got %v", urls)
	}
}
