package provider

import (
	"log"
	"sort"

	"github.com/mediadirectory/searchcore/internal/catalog"
	"github.com/mediadirectory/searchcore/internal/ratelimiter"
)

// Status is one provider's entry in Registry.Statuses, matching the
// status endpoint shape (name, enabled, priority, quota, remaining budget).
type Status struct {
	Name              catalog.ProviderName
	Enabled           bool
	Priority          int
	RateLimitQuota    int
	RatePeriodSeconds int
	Remaining         int
	SecondsUntilReset int
}

// Registry holds the provider name → instance and ProviderConfig mapping,
// built once at startup and immutable for the process lifetime.
type Registry struct {
	configs  map[catalog.ProviderName]catalog.ProviderConfig
	stations []StationProvider
	podcasts []PodcastProvider
	limiter  *ratelimiter.Limiter
	log      *log.Logger
}

// NewRegistry builds every known adapter from configs and wires them to
// limiter for quota accounting. A name absent from configs is skipped with
// a warn log.
func NewRegistry(configs []catalog.ProviderConfig, limiter *ratelimiter.Limiter) *Registry {
	r := &Registry{
		configs: make(map[catalog.ProviderName]catalog.ProviderConfig, len(configs)),
		limiter: limiter,
		log:     log.New(log.Writer(), "provider.registry: ", log.LstdFlags),
	}
	byName := make(map[catalog.ProviderName]catalog.ProviderConfig, len(configs))
	for _, c := range configs {
		byName[c.Name] = c
		r.configs[c.Name] = c
	}

	for _, name := range []catalog.ProviderName{
		catalog.ProviderCommunityRadio,
		catalog.ProviderCommercialRadio,
		catalog.ProviderShoutcastStyle,
		catalog.ProviderKeywordDirectory,
	} {
		cfg, ok := byName[name]
		if !ok {
			r.log.Printf("no configuration for known provider %q, skipping", name)
			continue
		}
		r.stations = append(r.stations, newStationAdapter(name, cfg, limiter))
	}

	for _, name := range []catalog.ProviderName{
		catalog.ProviderAppleITunes,
		catalog.ProviderIndexHMAC,
		catalog.ProviderTaddyGraphQL,
	} {
		cfg, ok := byName[name]
		if !ok {
			r.log.Printf("no configuration for known provider %q, skipping", name)
			continue
		}
		r.podcasts = append(r.podcasts, newPodcastAdapter(name, cfg, limiter))
	}

	return r
}

func newStationAdapter(name catalog.ProviderName, cfg catalog.ProviderConfig, limiter *ratelimiter.Limiter) StationProvider {
	switch name {
	case catalog.ProviderCommunityRadio:
		return NewCommunityRadioAdapter(cfg, limiter)
	case catalog.ProviderCommercialRadio:
		return NewCommercialRadioAdapter(cfg, limiter)
	case catalog.ProviderShoutcastStyle:
		return NewShoutcastAdapter(cfg, limiter)
	case catalog.ProviderKeywordDirectory:
		return NewKeywordDirectoryAdapter(cfg, limiter)
	default:
		panic("provider: unknown station provider " + string(name))
	}
}

func newPodcastAdapter(name catalog.ProviderName, cfg catalog.ProviderConfig, limiter *ratelimiter.Limiter) PodcastProvider {
	switch name {
	case catalog.ProviderAppleITunes:
		return NewITunesAdapter(cfg, limiter)
	case catalog.ProviderIndexHMAC:
		return NewIndexHMACAdapter(cfg, limiter)
	case catalog.ProviderTaddyGraphQL:
		return NewGraphQLAdapter(cfg, limiter)
	default:
		panic("provider: unknown podcast provider " + string(name))
	}
}

// PriorityOf looks up the configured priority for name, used by rank.PriorityOf.
func (r *Registry) PriorityOf(name catalog.ProviderName) int {
	if cfg, ok := r.configs[name]; ok {
		return cfg.Priority
	}
	return int(^uint(0) >> 1)
}

// EnabledStations returns enabled station providers that intersect filter
// (nil filter means no restriction), sorted ascending by priority with a
// stable tie-break by name.
func (r *Registry) EnabledStations(filter *catalog.StringSet) []StationProvider {
	var out []StationProvider
	for _, p := range r.stations {
		if !p.IsAvailable() {
			continue
		}
		if filter != nil && !filter.Has(string(p.Name())) {
			continue
		}
		out = append(out, p)
	}
	sort.SliceStable(out, func(i, j int) bool {
		pi, pj := r.PriorityOf(out[i].Name()), r.PriorityOf(out[j].Name())
		if pi != pj {
			return pi < pj
		}
		return out[i].Name() < out[j].Name()
	})
	return out
}

// EnabledPodcasts is the podcast-provider counterpart of EnabledStations.
func (r *Registry) EnabledPodcasts(filter *catalog.StringSet) []PodcastProvider {
	var out []PodcastProvider
	for _, p := range r.podcasts {
		if !p.IsAvailable() {
			continue
		}
		if filter != nil && !filter.Has(string(p.Name())) {
			continue
		}
		out = append(out, p)
	}
	sort.SliceStable(out, func(i, j int) bool {
		pi, pj := r.PriorityOf(out[i].Name()), r.PriorityOf(out[j].Name())
		if pi != pj {
			return pi < pj
		}
		return out[i].Name() < out[j].Name()
	})
	return out
}

// Statuses returns one Status per configured provider, in the order
// providers were registered (station adapters, then podcast adapters).
func (r *Registry) Statuses() []Status {
	var names []catalog.ProviderName
	for _, p := range r.stations {
		names = append(names, p.Name())
	}
	for _, p := range r.podcasts {
		names = append(names, p.Name())
	}
	out := make([]Status, 0, len(names))
	for _, name := range names {
		cfg := r.configs[name]
		stats := r.limiter.StatsFor(name)
		out = append(out, Status{
			Name:              name,
			Enabled:           cfg.Enabled,
			Priority:          cfg.Priority,
			RateLimitQuota:    cfg.RateLimitQuota,
			RatePeriodSeconds: cfg.RatePeriodSeconds,
			Remaining:         stats.Remaining,
			SecondsUntilReset: stats.SecondsUntilReset,
		})
	}
	return out
}
