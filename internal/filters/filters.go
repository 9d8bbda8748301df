package filters

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/letscout-hq/letscout/internal/domain"
)

// Package filters implements the admission test for listings. Every
// predicate is pure and order-independent; a listing passes the composite
// filter only if every predicate passes. A predicate that depends on a
// missing field passes, since absence means no exclusion reason was found.

// Predicate decides whether a single listing is worth keeping.
type Predicate interface {
	IsInteresting(l domain.Listing) bool
}

// Set is the logical AND of its predicates.
type Set struct {
	predicates []Predicate
}

// IsInteresting reports whether every predicate admits the listing.
func (s *Set) IsInteresting(l domain.Listing) bool {
	if s == nil {
		return true
	}
	for _, p := range s.predicates {
		if !p.IsInteresting(l) {
			return false
		}
	}
	return true
}

// Apply keeps the admitted listings, preserving input order.
func (s *Set) Apply(listings []domain.Listing) []domain.Listing {
	if s == nil || len(s.predicates) == 0 {
		return listings
	}
	out := make([]domain.Listing, 0, len(listings))
	for _, l := range listings {
		if s.IsInteresting(l) {
			out = append(out, l)
		}
	}
	return out
}

// Size returns the number of predicates in the set.
func (s *Set) Size() int {
	if s == nil {
		return 0
	}
	return len(s.predicates)
}

// Builder assembles a Set from the configured exclusions and bounds. Only
// configured predicates are appended.
type Builder struct {
	predicates []Predicate
}

// NewBuilder returns an empty filter builder.
func NewBuilder() *Builder { return &Builder{} }

// ExcludeTitles excludes listings whose title contains any of the given
// substrings (case-insensitive).
func (b *Builder) ExcludeTitles(titles []string) *Builder {
	if len(titles) > 0 {
		b.predicates = append(b.predicates, newExcludeTitles(titles))
	}
	return b
}

// ExcludeAreas excludes listings whose address mentions any of the area
// names (substring) or postcode districts (word-boundary match).
func (b *Builder) ExcludeAreas(names, postcodes []string) *Builder {
	if len(names) > 0 || len(postcodes) > 0 {
		b.predicates = append(b.predicates, newExcludeAreas(names, postcodes))
	}
	return b
}

// PriceRange bounds the listing price. Non-positive bounds are unset.
func (b *Builder) PriceRange(min, max int) *Builder {
	return b.numericRange(min, max, func(l domain.Listing) string { return l.Price })
}

// SizeRange bounds the listing size.
func (b *Builder) SizeRange(min, max int) *Builder {
	return b.numericRange(min, max, func(l domain.Listing) string { return l.Size })
}

// RoomsRange bounds the number of rooms.
func (b *Builder) RoomsRange(min, max int) *Builder {
	return b.numericRange(min, max, func(l domain.Listing) string { return l.Rooms })
}

func (b *Builder) numericRange(min, max int, field func(domain.Listing) string) *Builder {
	if min > 0 || max > 0 {
		b.predicates = append(b.predicates, rangePredicate{min: min, max: max, field: field})
	}
	return b
}

// Build returns the composed filter set.
func (b *Builder) Build() *Set {
	return &Set{predicates: b.predicates}
}

// excludeTitles rejects titles containing any configured substring.
type excludeTitles struct {
	needles []string
}

func newExcludeTitles(titles []string) excludeTitles {
	needles := make([]string, 0, len(titles))
	for _, t := range titles {
		if t = strings.ToLower(strings.TrimSpace(t)); t != "" {
			needles = append(needles, t)
		}
	}
	return excludeTitles{needles: needles}
}

func (e excludeTitles) IsInteresting(l domain.Listing) bool {
	title := strings.ToLower(l.Title)
	if title == "" {
		return true
	}
	for _, needle := range e.needles {
		if strings.Contains(title, needle) {
			return false
		}
	}
	return true
}

// excludeAreas rejects addresses mentioning an excluded area name or
// postcode district. Postcodes match on word boundaries so that "SE1" does
// not falsely match "SE15".
type excludeAreas struct {
	names    []string
	postcode *regexp.Regexp
}

func newExcludeAreas(names, postcodes []string) excludeAreas {
	lowered := make([]string, 0, len(names))
	for _, n := range names {
		if n = strings.ToLower(strings.TrimSpace(n)); n != "" {
			lowered = append(lowered, n)
		}
	}

	var re *regexp.Regexp
	quoted := make([]string, 0, len(postcodes))
	for _, p := range postcodes {
		if p = strings.TrimSpace(p); p != "" {
			quoted = append(quoted, regexp.QuoteMeta(p))
		}
	}
	if len(quoted) > 0 {
		re = regexp.MustCompile(`(?i)\b(?:` + strings.Join(quoted, "|") + `)\b`)
	}

	return excludeAreas{names: lowered, postcode: re}
}

func (e excludeAreas) IsInteresting(l domain.Listing) bool {
	if l.Address == "" {
		return true
	}
	address := strings.ToLower(l.Address)
	for _, name := range e.names {
		if strings.Contains(address, name) {
			return false
		}
	}
	if e.postcode != nil && e.postcode.MatchString(l.Address) {
		return false
	}
	return true
}

// rangePredicate bounds a numeric field parsed out of a free-form string.
// A missing or unparseable value satisfies the bound.
type rangePredicate struct {
	min   int
	max   int
	field func(domain.Listing) string
}

func (r rangePredicate) IsInteresting(l domain.Listing) bool {
	value, ok := parseNumber(r.field(l))
	if !ok {
		return true
	}
	if r.min > 0 && value < float64(r.min) {
		return false
	}
	if r.max > 0 && value > float64(r.max) {
		return false
	}
	return true
}

var numberPattern = regexp.MustCompile(`[0-9][0-9,]*(?:\.[0-9]+)?`)

// parseNumber extracts the first number from a free-form string like
// "£1,400 pcm" or "62 sq m".
func parseNumber(s string) (float64, bool) {
	match := numberPattern.FindString(s)
	if match == "" {
		return 0, false
	}
	value, err := strconv.ParseFloat(strings.ReplaceAll(match, ",", ""), 64)
	if err != nil {
		return 0, false
	}
	return value, true
}
