// Package orchestrator implements SearchOrchestrator: the single entry
// point that turns one inbound query into a fanned-out, deduplicated,
// ranked, cached list of canonical items. It is the only
// component that talks to every other one — registry, rate limiter,
// cache, deduper, ranker — and owns the settled-join over concurrent
// provider calls using golang.org/x/sync/errgroup, the same launch-N-wait-
// for-all shape a feed-fetch service uses for parallel content fetches.
package orchestrator

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mediadirectory/searchcore/internal/cache"
	"github.com/mediadirectory/searchcore/internal/catalog"
	"github.com/mediadirectory/searchcore/internal/config"
	"github.com/mediadirectory/searchcore/internal/dedupe"
	"github.com/mediadirectory/searchcore/internal/metrics"
	"github.com/mediadirectory/searchcore/internal/provider"
	"github.com/mediadirectory/searchcore/internal/rank"
	"github.com/mediadirectory/searchcore/internal/ratelimiter"
	"github.com/mediadirectory/searchcore/internal/searcherr"
)

const (
	namespaceStations = "radio-search"
	namespacePodcasts = "podcasts:multi"
)

// Registry is the subset of *provider.Registry the orchestrator needs,
// narrowed so tests can supply a fake without building real adapters.
type Registry interface {
	EnabledStations(filter *catalog.StringSet) []provider.StationProvider
	EnabledPodcasts(filter *catalog.StringSet) []provider.PodcastProvider
	PriorityOf(name catalog.ProviderName) int
}

// Orchestrator wires the registry, rate limiter, and cache into the
// station/podcast search algorithm.
type Orchestrator struct {
	registry Registry
	limiter  *ratelimiter.Limiter
	cache    cache.Cache
	cfg      *config.Config
	log      *log.Logger
	codec    codec
}

// New builds an Orchestrator. cache may be nil, in which case every search
// is a cache miss and results are never stored (useful for tests and for
// deployments that accept always-fresh results).
func New(registry Registry, limiter *ratelimiter.Limiter, c cache.Cache, cfg *config.Config) *Orchestrator {
	return &Orchestrator{
		registry: registry,
		limiter:  limiter,
		cache:    c,
		cfg:      cfg,
		log:      log.New(log.Writer(), "orchestrator: ", log.LstdFlags),
		codec:    jsonCodec{},
	}
}

// SearchStations runs the concurrent fan-out/merge/rank/cache pipeline
// against the configured station limit bounds.
func (o *Orchestrator) SearchStations(ctx context.Context, p provider.Params) []catalog.StationItem {
	p.Query = strings.TrimSpace(p.Query)
	p.Limit = clampLimit(p.Limit, o.cfg.DefaultStationLimit, o.cfg.MaxStationLimit)

	key := cacheKey(namespaceStations, p)
	if !p.CacheBypass {
		if cached, ok := o.readStationCache(key); ok {
			metrics.RecordCacheLookup("stations", true)
			metrics.RecordSearch("stations", len(cached), true)
			return cached
		}
		metrics.RecordCacheLookup("stations", false)
	}

	providers := o.registry.EnabledStations(p.ProviderFilter)
	if len(providers) == 0 {
		o.log.Printf("no enabled station providers for request")
		return []catalog.StationItem{}
	}

	eg, egCtx := errgroup.WithContext(ctx)
	collected := make([][]catalog.StationItem, len(providers))
	for i, pr := range providers {
		i, pr := i, pr
		eg.Go(func() error {
			collected[i] = o.callStation(egCtx, pr, p)
			return nil
		})
	}
	_ = eg.Wait()

	if ctx.Err() != nil {
		o.log.Printf("%v: discarding partial station results", fmt.Errorf("%w: %v", searcherr.ErrCancelledByCaller, ctx.Err()))
		return []catalog.StationItem{}
	}

	merged := flattenStations(collected)
	stampStationProvenance(merged)
	merged = dedupe.Stations(merged)
	merged = rank.Stations(merged, o.registry.PriorityOf)
	merged = truncateStations(merged, p.Limit)

	if !p.CacheBypass {
		o.writeStationCache(key, merged, p)
	}
	metrics.RecordSearch("stations", len(merged), false)
	return merged
}

// SearchPodcasts runs the concurrent fan-out/merge/rank/cache pipeline
// against the configured podcast limit bounds.
func (o *Orchestrator) SearchPodcasts(ctx context.Context, p provider.Params) []catalog.PodcastItem {
	p.Query = strings.TrimSpace(p.Query)
	p.Limit = clampLimit(p.Limit, o.cfg.DefaultPodcastLimit, o.cfg.MaxPodcastLimit)

	key := cacheKey(namespacePodcasts, p)
	if !p.CacheBypass {
		if cached, ok := o.readPodcastCache(key); ok {
			metrics.RecordCacheLookup("podcasts", true)
			metrics.RecordSearch("podcasts", len(cached), true)
			return cached
		}
		metrics.RecordCacheLookup("podcasts", false)
	}

	providers := o.registry.EnabledPodcasts(p.ProviderFilter)
	if len(providers) == 0 {
		o.log.Printf("no enabled podcast providers for request")
		return []catalog.PodcastItem{}
	}

	eg, egCtx := errgroup.WithContext(ctx)
	collected := make([][]catalog.PodcastItem, len(providers))
	for i, pr := range providers {
		i, pr := i, pr
		eg.Go(func() error {
			collected[i] = o.callPodcast(egCtx, pr, p)
			return nil
		})
	}
	_ = eg.Wait()

	if ctx.Err() != nil {
		o.log.Printf("%v: discarding partial podcast results", fmt.Errorf("%w: %v", searcherr.ErrCancelledByCaller, ctx.Err()))
		return []catalog.PodcastItem{}
	}

	merged := flattenPodcasts(collected)
	stampPodcastProvenance(merged)
	merged = dedupe.Podcasts(merged)
	merged = rank.Podcasts(merged, o.registry.PriorityOf)
	merged = truncatePodcasts(merged, p.Limit)

	if !p.CacheBypass {
		o.writePodcastCache(key, merged, p)
	}
	metrics.RecordSearch("podcasts", len(merged), false)
	return merged
}

// callStation wraps one provider call with the admission check and a
// per-provider deadline. A denied admission or an expired deadline both
// yield an empty slice, never an error.
func (o *Orchestrator) callStation(ctx context.Context, pr provider.StationProvider, p provider.Params) []catalog.StationItem {
	name := string(pr.Name())
	if !o.limiter.Admit(pr.Name()) {
		o.log.Print(fmt.Errorf("%w: %s", searcherr.ErrProviderRateLimited, name))
		metrics.RecordProviderCall(name, 0, true)
		return nil
	}
	callCtx, cancel := context.WithTimeout(ctx, providerTimeout(o.cfg, pr.Name()))
	defer cancel()
	out := safeCallStations(callCtx, pr, p)
	metrics.RecordProviderCall(name, len(out), false)
	if stats := o.limiter.StatsFor(pr.Name()); stats.Limit > 0 {
		metrics.UpdateRateLimitRemaining(name, stats.Remaining)
	}
	return out
}

func (o *Orchestrator) callPodcast(ctx context.Context, pr provider.PodcastProvider, p provider.Params) []catalog.PodcastItem {
	name := string(pr.Name())
	if !o.limiter.Admit(pr.Name()) {
		o.log.Print(fmt.Errorf("%w: %s", searcherr.ErrProviderRateLimited, name))
		metrics.RecordProviderCall(name, 0, true)
		return nil
	}
	callCtx, cancel := context.WithTimeout(ctx, providerTimeout(o.cfg, pr.Name()))
	defer cancel()
	out := safeCallPodcasts(callCtx, pr, p)
	metrics.RecordProviderCall(name, len(out), false)
	if stats := o.limiter.StatsFor(pr.Name()); stats.Limit > 0 {
		metrics.UpdateRateLimitRemaining(name, stats.Remaining)
	}
	return out
}

// safeCallStations recovers from an adapter panic so one broken adapter
// cannot take the whole request down.
func safeCallStations(ctx context.Context, pr provider.StationProvider, p provider.Params) (out []catalog.StationItem) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("orchestrator: provider %s panicked: %v", pr.Name(), r)
			out = nil
		}
	}()
	return pr.SearchStations(ctx, p)
}

func safeCallPodcasts(ctx context.Context, pr provider.PodcastProvider, p provider.Params) (out []catalog.PodcastItem) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("orchestrator: provider %s panicked: %v", pr.Name(), r)
			out = nil
		}
	}()
	return pr.SearchPodcasts(ctx, p)
}

// providerTimeout finds the configured timeout for name, falling back to a
// conservative default if the provider has no configured timeout (e.g. a
// fake used in tests).
func providerTimeout(cfg *config.Config, name catalog.ProviderName) time.Duration {
	for _, pc := range cfg.Providers {
		if pc.Name == name {
			return pc.TimeoutDuration()
		}
	}
	return 5 * time.Second
}

func flattenStations(collected [][]catalog.StationItem) []catalog.StationItem {
	total := 0
	for _, c := range collected {
		total += len(c)
	}
	out := make([]catalog.StationItem, 0, total)
	for _, c := range collected {
		out = append(out, c...)
	}
	return out
}

func flattenPodcasts(collected [][]catalog.PodcastItem) []catalog.PodcastItem {
	total := 0
	for _, c := range collected {
		total += len(c)
	}
	out := make([]catalog.PodcastItem, 0, total)
	for _, c := range collected {
		out = append(out, c...)
	}
	return out
}

// stampStationProvenance guarantees sourceProviders ⊇ {source} before
// dedupe runs, so a station that survives merge always credits its own
// adapter even if no duplicate was found.
func stampStationProvenance(items []catalog.StationItem) {
	for i := range items {
		if items[i].SourceProviders == nil {
			items[i].SourceProviders = catalog.NewStringSet()
		}
		items[i].SourceProviders.Add(string(items[i].Source))
	}
}

func stampPodcastProvenance(items []catalog.PodcastItem) {
	for i := range items {
		if items[i].SourceProviders == nil {
			items[i].SourceProviders = catalog.NewStringSet()
		}
		items[i].SourceProviders.Add(string(items[i].Source))
	}
}

func truncateStations(items []catalog.StationItem, limit int) []catalog.StationItem {
	if limit > 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}

func truncatePodcasts(items []catalog.PodcastItem, limit int) []catalog.PodcastItem {
	if limit > 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}

// clampLimit bounds a requested limit into [1, max], substituting def when
// limit is zero or negative: a non-positive limit is treated as "use the
// default" rather than rejected outright.
func clampLimit(limit, def, max int) int {
	if limit <= 0 {
		limit = def
	}
	if limit > max {
		limit = max
	}
	return limit
}

// cacheKey builds a stable cache key: namespace, query,
// country, language, tag, limit, sorted provider-filter CSV, colon-joined.
// Missing filters encode as "all"; an absent provider filter encodes as "any".
func cacheKey(namespace string, p provider.Params) string {
	fields := []string{
		namespace,
		orAll(strings.ToLower(strings.TrimSpace(p.Query))),
		orAll(strings.ToLower(strings.TrimSpace(p.Country))),
		orAll(strings.ToLower(strings.TrimSpace(p.Language))),
		orAll(strings.ToLower(strings.TrimSpace(p.Tag))),
		strconv.Itoa(p.Limit),
		providerFilterCSV(p.ProviderFilter),
	}
	return strings.Join(fields, ":")
}

func orAll(s string) string {
	if s == "" {
		return "all"
	}
	return s
}

func providerFilterCSV(filter *catalog.StringSet) string {
	if filter == nil || filter.Len() == 0 {
		return "any"
	}
	values := filter.Values()
	sorted := make([]string, len(values))
	copy(sorted, values)
	sort.Strings(sorted)
	for i, v := range sorted {
		sorted[i] = strings.ToLower(v)
	}
	return strings.Join(sorted, ",")
}

// cacheTTL picks the query-class TTL: a freeform query (non-empty search
// term) gets the shorter TTL, a filter-only-or-empty query gets the longer
// one.
func (o *Orchestrator) cacheTTL(p provider.Params) time.Duration {
	if strings.TrimSpace(p.Query) != "" {
		return time.Duration(o.cfg.CacheTTLFreeformMillis) * time.Millisecond
	}
	return time.Duration(o.cfg.CacheTTLFilterOnlyMillis) * time.Millisecond
}

func (o *Orchestrator) readStationCache(key string) ([]catalog.StationItem, bool) {
	if o.cache == nil {
		return nil, false
	}
	raw, ok := o.cache.Get(key)
	if !ok {
		return nil, false
	}
	items, err := o.codec.decodeStations(raw)
	if err != nil {
		o.log.Print(fmt.Errorf("%w: decode %q: %v", searcherr.ErrCacheError, key, err))
		return nil, false
	}
	return items, true
}

func (o *Orchestrator) writeStationCache(key string, items []catalog.StationItem, p provider.Params) {
	if o.cache == nil {
		return
	}
	raw, err := o.codec.encodeStations(items)
	if err != nil {
		o.log.Print(fmt.Errorf("%w: encode %q: %v", searcherr.ErrCacheError, key, err))
		return
	}
	o.cache.Set(key, raw, o.cacheTTL(p))
}

func (o *Orchestrator) readPodcastCache(key string) ([]catalog.PodcastItem, bool) {
	if o.cache == nil {
		return nil, false
	}
	raw, ok := o.cache.Get(key)
	if !ok {
		return nil, false
	}
	items, err := o.codec.decodePodcasts(raw)
	if err != nil {
		o.log.Print(fmt.Errorf("%w: decode %q: %v", searcherr.ErrCacheError, key, err))
		return nil, false
	}
	return items, true
}

func (o *Orchestrator) writePodcastCache(key string, items []catalog.PodcastItem, p provider.Params) {
	if o.cache == nil {
		return
	}
	raw, err := o.codec.encodePodcasts(items)
	if err != nil {
		o.log.Print(fmt.Errorf("%w: encode %q: %v", searcherr.ErrCacheError, key, err))
		return
	}
	o.cache.Set(key, raw, o.cacheTTL(p))
}
