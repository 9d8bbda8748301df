package search

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/letscout-hq/letscout/internal/logger"
	"gopkg.in/yaml.v3"
)

// Filters holds the structured search filters of one search entry. Pointer
// fields distinguish "not set" from zero values.
type Filters struct {
	PriceMin    *int     `json:"price_min" yaml:"price_min"`
	PriceMax    *int     `json:"price_max" yaml:"price_max"`
	BedroomsMin *int     `json:"bedrooms_min" yaml:"bedrooms_min"`
	BedroomsMax *int     `json:"bedrooms_max" yaml:"bedrooms_max"`
	Radius      *float64 `json:"radius" yaml:"radius"`
	AddedSince  string   `json:"added_since" yaml:"added_since"`

	ExcludeShared     bool `json:"exclude_shared" yaml:"exclude_shared"`
	ExcludeRetirement bool `json:"exclude_retirement" yaml:"exclude_retirement"`
	ExcludeStudent    bool `json:"exclude_student" yaml:"exclude_student"`
}

// Search is one named search entry from the searches file.
type Search struct {
	Name    string   `json:"name" yaml:"name"`
	Sites   []string `json:"sites" yaml:"sites"`
	Type    string   `json:"type" yaml:"type"`
	Zones   []int    `json:"zones" yaml:"zones"`
	Areas   []string `json:"areas" yaml:"areas"`
	Filters Filters  `json:"filters" yaml:"filters"`
}

type searchesFile struct {
	Searches []Search `json:"searches" yaml:"searches"`
}

// LoadSearches loads the searches file (YAML or JSON by extension).
func LoadSearches(path string) ([]Search, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("searches file path is empty")
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open searches file: %w", err)
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read searches file: %w", err)
	}

	parsed, err := parseSearches(raw, filepath.Ext(path))
	if err != nil {
		return nil, err
	}
	if len(parsed.Searches) == 0 {
		return nil, errors.New("searches file contains no searches entries")
	}

	names := make(map[string]struct{}, len(parsed.Searches))
	for i := range parsed.Searches {
		s := sanitizeSearch(parsed.Searches[i])
		if err := validateSearch(s); err != nil {
			return nil, fmt.Errorf("searches[%d]: %w", i, err)
		}
		if _, exists := names[s.Name]; exists {
			return nil, fmt.Errorf("duplicate search name %q", s.Name)
		}
		names[s.Name] = struct{}{}
		parsed.Searches[i] = s
	}

	return parsed.Searches, nil
}

func parseSearches(data []byte, ext string) (searchesFile, error) {
	ext = strings.ToLower(strings.TrimSpace(ext))

	decoders := []struct {
		name string
		ext  string
		fn   func([]byte, any) error
	}{
		{name: "yaml", ext: ".yaml", fn: yamlUnmarshal},
		{name: "yaml", ext: ".yml", fn: yamlUnmarshal},
		{name: "json", ext: ".json", fn: json.Unmarshal},
	}

	for _, d := range decoders {
		if ext != "" && ext != d.ext {
			continue
		}
		var out searchesFile
		if err := d.fn(data, &out); err == nil {
			return out, nil
		}
	}

	return searchesFile{}, errors.New("searches file format not recognized (expected YAML or JSON)")
}

func yamlUnmarshal(data []byte, v any) error { return yaml.Unmarshal(data, v) }

func sanitizeSearch(s Search) Search {
	s.Name = strings.TrimSpace(s.Name)
	s.Type = strings.ToLower(strings.TrimSpace(s.Type))
	if s.Type == "" {
		s.Type = "rent"
	}
	sites := make([]string, 0, len(s.Sites))
	for _, site := range s.Sites {
		if site = strings.ToLower(strings.TrimSpace(site)); site != "" {
			sites = append(sites, site)
		}
	}
	s.Sites = sites
	areas := make([]string, 0, len(s.Areas))
	for _, area := range s.Areas {
		if area = strings.TrimSpace(area); area != "" {
			areas = append(areas, area)
		}
	}
	s.Areas = areas
	return s
}

func validateSearch(s Search) error {
	if s.Name == "" {
		return errors.New("name is required")
	}
	if len(s.Sites) == 0 {
		return fmt.Errorf("at least one site is required for search %q", s.Name)
	}
	if s.Type != "rent" && s.Type != "buy" {
		return fmt.Errorf("type must be rent or buy for search %q", s.Name)
	}
	if len(s.Areas) == 0 && len(s.Zones) == 0 {
		return fmt.Errorf("areas or zones required for search %q", s.Name)
	}
	return nil
}

// ResolveAreas returns a copy of s with zones expanded and merged into the
// area list: zone-derived districts first, then explicit areas not already
// present, all in first-seen order.
func ResolveAreas(s Search) Search {
	if len(s.Zones) == 0 {
		return s
	}

	zoneAreas := ExpandZones(s.Zones)
	seen := make(map[string]struct{}, len(zoneAreas))
	merged := make([]string, 0, len(zoneAreas)+len(s.Areas))
	for _, area := range zoneAreas {
		seen[area] = struct{}{}
		merged = append(merged, area)
	}
	for _, area := range s.Areas {
		if _, ok := seen[area]; ok {
			continue
		}
		seen[area] = struct{}{}
		merged = append(merged, area)
	}

	logger.InfoObj("zones expanded", "zone_expansion", map[string]any{
		"search": s.Name,
		"zones":  s.Zones,
		"areas":  len(merged),
	})

	out := s
	out.Areas = merged
	return out
}
