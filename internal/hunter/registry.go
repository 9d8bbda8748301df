package hunter

import (
	"fmt"
	"regexp"
	"sync"
	"time"

	"github.com/letscout-hq/letscout/internal/logger"
	"github.com/letscout-hq/letscout/pkg/httpclient"
)

// ErrNoCrawler is returned when no registered pattern matches a URL.
var ErrNoCrawler = fmt.Errorf("no crawler registered for url")

type rule struct {
	pattern *regexp.Regexp
	ctor    Constructor
}

// Registry routes search URLs to crawler constructors by URL pattern.
// Rules are checked in registration order, so when two patterns both match
// a URL the first-registered rule wins.
type Registry struct {
	mu    sync.RWMutex
	rules []rule
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry { return &Registry{} }

// Register appends a routing rule. It never overwrites an earlier rule.
func (r *Registry) Register(pattern *regexp.Regexp, ctor Constructor) {
	if pattern == nil || ctor == nil {
		return
	}
	r.mu.Lock()
	r.rules = append(r.rules, rule{pattern: pattern, ctor: ctor})
	r.mu.Unlock()
}

// CrawlerFor constructs the crawler for the first pattern matching url.
func (r *Registry) CrawlerFor(url string) (Crawler, error) {
	if r == nil {
		return nil, fmt.Errorf("registry is nil")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, rule := range r.rules {
		if rule.pattern.MatchString(url) {
			return rule.ctor(), nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNoCrawler, url)
}

// Target pairs a search URL with the crawler that will poll it.
type Target struct {
	URL     string
	Crawler Crawler
}

// CrawlersFor resolves one target per URL in input order. URLs with no
// matching crawler are logged and skipped rather than failing the batch.
func (r *Registry) CrawlersFor(urls []string) []Target {
	targets := make([]Target, 0, len(urls))
	for _, url := range urls {
		crawler, err := r.CrawlerFor(url)
		if err != nil {
			logger.WarnObj("no crawler for url", "unmatched_url", url)
			continue
		}
		targets = append(targets, Target{URL: url, Crawler: crawler})
	}
	return targets
}

// DefaultRegistry wires up the built-in crawlers.
func DefaultRegistry(client httpclient.Client, requestDelay time.Duration) *Registry {
	if client == nil {
		client = httpclient.NewRestyClient(15 * time.Second)
	}

	reg := NewRegistry()
	reg.Register(
		regexp.MustCompile(`https://www\.rightmove\.co\.uk`),
		func() Crawler { return NewRightmove(client, requestDelay) },
	)
	reg.Register(
		regexp.MustCompile(`https://www\.zoopla\.co\.uk`),
		func() Crawler { return NewZoopla(client, requestDelay) },
	)
	return reg
}
