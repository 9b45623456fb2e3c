package market

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// DefaultSearchLimit is the number of listings requested from a source.
const DefaultSearchLimit = 20

// DefaultSourceTimeout bounds each individual source call. Market data is
// advisory, so a slow source is dropped rather than waited on.
const DefaultSourceTimeout = 10 * time.Second

// PriceSource is the primary (marketplace) data source: structured listings
// with a price each.
type PriceSource interface {
	SearchUsedPrices(ctx context.Context, query string, limit int) ([]int, error)
}

// WebSource is the secondary (web search) data source: unstructured snippets
// to mine prices from.
type WebSource interface {
	Search(ctx context.Context, query string, limit int) ([]WebResult, error)
}

// SnapshotRecorder persists aggregation results for auditing. Optional.
type SnapshotRecorder interface {
	SaveSnapshot(query string, stats Stats) error
}

// AggregatorOpts configures an Aggregator. Primary and Cache are required in
// practice; Web and Recorder may be nil.
type AggregatorOpts struct {
	Primary           PriceSource
	Web               WebSource
	Cache             *StatsCache
	Recorder          SnapshotRecorder
	Filter            OutlierFilter
	AccessoryKeywords []string
	SourceTimeout     time.Duration
}

// Aggregator turns a free-text product query into a cleaned statistical price
// estimate, falling back through sources and degrading to an empty sentinel
// instead of failing.
type Aggregator struct {
	primary       PriceSource
	web           WebSource
	cache         *StatsCache
	recorder      SnapshotRecorder
	filter        OutlierFilter
	accessories   []string
	sourceTimeout time.Duration
}

// NewAggregator creates an aggregator from opts, filling in defaults.
func NewAggregator(opts AggregatorOpts) *Aggregator {
	cache := opts.Cache
	if cache == nil {
		cache = NewStatsCache(0, 0)
	}
	accessories := opts.AccessoryKeywords
	if accessories == nil {
		accessories = DefaultAccessoryKeywords
	}
	timeout := opts.SourceTimeout
	if timeout == 0 {
		timeout = DefaultSourceTimeout
	}
	return &Aggregator{
		primary:       opts.Primary,
		web:           opts.Web,
		cache:         cache,
		recorder:      opts.Recorder,
		filter:        opts.Filter,
		accessories:   accessories,
		sourceTimeout: timeout,
	}
}

// FetchMarketData aggregates used-market prices for query. It never returns
// an error: any failure degrades to the Count=0 sentinel with an explanatory
// Error string, because market data is context for the judgment step, not a
// hard dependency.
func (a *Aggregator) FetchMarketData(ctx context.Context, query string, limit int) Stats {
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	normalized := NormalizeQuery(query)

	if stats, ok := a.cache.Get(normalized); ok {
		log.Debug().Str("query", normalized).Msg("market stats served from cache")
		return stats
	}

	source := SourcePrimary
	prices := a.fetchPrimary(ctx, normalized, limit)
	if len(prices) == 0 {
		source = SourceSecondary
		prices = a.fetchSecondary(ctx, normalized, limit)
	}
	if len(prices) == 0 {
		return emptyStats("no market data found")
	}

	filtered := a.filter.Filter(prices)
	if len(filtered) == 0 {
		// Everything sat at or below the plausibility floor.
		return emptyStats("all observations below plausibility floor")
	}

	stats := computeStats(source, filtered)
	a.cache.Put(normalized, stats)

	if a.recorder != nil {
		if err := a.recorder.SaveSnapshot(normalized, stats); err != nil {
			log.Warn().Err(err).Str("query", normalized).Msg("failed to persist market snapshot")
		}
	}

	log.Info().
		Str("query", normalized).
		Str("source", stats.Source).
		Int("count", stats.Count).
		Int("median", stats.Median).
		Msg("market data aggregated")

	return stats
}

// fetchPrimary queries the marketplace search API. Transport errors and empty
// results both yield an empty list so the caller falls through to the
// secondary source.
func (a *Aggregator) fetchPrimary(ctx context.Context, query string, limit int) []int {
	if a.primary == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, a.sourceTimeout)
	defer cancel()

	prices, err := a.primary.SearchUsedPrices(ctx, query, limit)
	if err != nil {
		log.Warn().Err(err).Str("query", query).Msg("primary market source failed")
		return nil
	}
	return prices
}

// fetchSecondary runs a broadened web search and mines CLP amounts from the
// result text. Results that mention accessory keywords are rejected entirely
// so an accessory price is never attributed to the product.
func (a *Aggregator) fetchSecondary(ctx context.Context, query string, limit int) []int {
	if a.web == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, a.sourceTimeout)
	defer cancel()

	results, err := a.web.Search(ctx, query+" precio usado chile", limit)
	if err != nil {
		log.Warn().Err(err).Str("query", query).Msg("secondary market source failed")
		return nil
	}

	var prices []int
	for _, r := range results {
		text := r.Title + " " + r.Snippet
		if mentionsAccessory(text, a.accessories) {
			continue
		}
		prices = append(prices, ExtractPrices(text, a.filter.Floor)...)
	}
	return prices
}
