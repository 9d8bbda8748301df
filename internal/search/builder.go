package search

import (
	"context"

	"github.com/letscout-hq/letscout/internal/logger"
)

// Builder produces crawlable search URLs for one site.
//
// Build must be pure given a resolved location identifier: the same
// area/type/filters always yield the same URL. It returns ok=false only
// when identifier resolution fails for the area; the caller skips that area
// and continues with the rest.
type Builder interface {
	Site() string
	Build(ctx context.Context, area, searchType string, f Filters) (url string, ok bool)
}

// BuildAll builds one URL per area of the search entry, skipping areas whose
// identifier could not be resolved.
func BuildAll(ctx context.Context, b Builder, s Search) []string {
	urls := make([]string, 0, len(s.Areas))
	for _, area := range s.Areas {
		if url, ok := b.Build(ctx, area, s.Type, s.Filters); ok {
			urls = append(urls, url)
		}
	}
	return urls
}

// BuildURLs expands zones for each search and concatenates the URLs produced
// by every listed site. An unknown site contributes zero URLs.
func BuildURLs(ctx context.Context, builders map[string]Builder, searches []Search) []string {
	var all []string
	for _, s := range searches {
		resolved := ResolveAreas(s)
		for _, site := range resolved.Sites {
			b, ok := builders[site]
			if !ok {
				logger.WarnObj("unknown site in search", "search_site", map[string]any{
					"search": s.Name,
					"site":   site,
				})
				continue
			}
			urls := BuildAll(ctx, b, resolved)
			logger.InfoObj("search urls built", "search_urls", map[string]any{
				"search": s.Name,
				"site":   site,
				"count":  len(urls),
			})
			all = append(all, urls...)
		}
	}
	return all
}
