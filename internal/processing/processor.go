package processing

import (
	"context"

	"github.com/letscout-hq/letscout/internal/domain"
	"github.com/letscout-hq/letscout/internal/filters"
	"github.com/letscout-hq/letscout/internal/storage"
)

// Package processing runs sequences of listings through an ordered chain of
// processors. A stage may shrink the sequence or mutate listings in place,
// but never reorders the survivors.

// Processor is one stage of the chain.
type Processor interface {
	Name() string
	ProcessListings(ctx context.Context, listings []domain.Listing) []domain.Listing
}

// Chain holds an immutable, ordered list of processors.
type Chain struct {
	processors []Processor
}

// Process folds the listings through every stage in order.
func (c *Chain) Process(ctx context.Context, listings []domain.Listing) []domain.Listing {
	if c == nil {
		return listings
	}
	for _, p := range c.processors {
		listings = p.ProcessListings(ctx, listings)
	}
	return listings
}

// Stages returns the stage names in chain order.
func (c *Chain) Stages() []string {
	if c == nil {
		return nil
	}
	names := make([]string, len(c.processors))
	for i, p := range c.processors {
		names[i] = p.Name()
	}
	return names
}

// ChainBuilder appends stages in caller-specified order. A stage whose
// underlying feature is disabled is appended as an identity no-op rather
// than omitted, so chain composition stays order-stable.
type ChainBuilder struct {
	processors []Processor
}

// NewChainBuilder returns an empty chain builder.
func NewChainBuilder() *ChainBuilder { return &ChainBuilder{} }

// Append adds an arbitrary processor stage.
func (b *ChainBuilder) Append(p Processor) *ChainBuilder {
	if p != nil {
		b.processors = append(b.processors, p)
	}
	return b
}

// Map adds a stage applying fn to every listing.
func (b *ChainBuilder) Map(name string, fn func(domain.Listing) domain.Listing) *ChainBuilder {
	return b.Append(&lambdaStage{name: name, fn: fn})
}

// ApplyFilter adds the admission-test stage.
func (b *ChainBuilder) ApplyFilter(set *filters.Set) *ChainBuilder {
	return b.Append(&filterStage{set: set})
}

// DedupeAgainst adds the stage dropping listings already processed.
func (b *ChainBuilder) DedupeAgainst(store storage.Store) *ChainBuilder {
	return b.Append(&dedupeStage{store: store})
}

// SaveAll adds the stage persisting every surviving listing.
func (b *ChainBuilder) SaveAll(store storage.Store) *ChainBuilder {
	return b.Append(&saveStage{store: store})
}

// SendNotifications adds the fan-out stage. Listings are marked processed
// after the fan-out attempt regardless of per-channel failures.
func (b *ChainBuilder) SendNotifications(sink MessageSink, format string, store storage.Store) *ChainBuilder {
	return b.Append(&notifyStage{sink: sink, format: format, store: store})
}

// ResolveAddresses adds the stage filling empty addresses from detail pages.
func (b *ChainBuilder) ResolveAddresses(loaders AddressLoaderRegistry) *ChainBuilder {
	if loaders == nil {
		return b.Append(identity("resolve_addresses"))
	}
	return b.Append(&addressStage{loaders: loaders})
}

// CalculateDurations adds the commute-duration stage, or its identity no-op
// when the feature is disabled.
func (b *ChainBuilder) CalculateDurations(p *DurationsProcessor) *ChainBuilder {
	if p == nil || !p.Enabled() {
		return b.Append(identity("calculate_durations"))
	}
	return b.Append(p)
}

// ScoreListings adds the LLM scoring stage, or its identity no-op when no
// API key is configured.
func (b *ChainBuilder) ScoreListings(p *ScoreProcessor) *ChainBuilder {
	if p == nil || !p.Enabled() {
		return b.Append(identity("score_listings"))
	}
	return b.Append(p)
}

// Build returns the assembled chain.
func (b *ChainBuilder) Build() *Chain {
	return &Chain{processors: b.processors}
}

// identity is the no-op stage standing in for a disabled feature.
type identityStage struct {
	name string
}

func identity(name string) Processor { return identityStage{name: name} }

func (s identityStage) Name() string { return s.name }
func (s identityStage) ProcessListings(_ context.Context, listings []domain.Listing) []domain.Listing {
	return listings
}

// lambdaStage applies a function to each listing.
type lambdaStage struct {
	name string
	fn   func(domain.Listing) domain.Listing
}

func (s *lambdaStage) Name() string { return s.name }
func (s *lambdaStage) ProcessListings(_ context.Context, listings []domain.Listing) []domain.Listing {
	for i := range listings {
		listings[i] = s.fn(listings[i])
	}
	return listings
}
