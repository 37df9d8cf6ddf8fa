// Package provider implements the per-upstream adapters that speak one
// catalog provider's protocol and emit canonical catalog items. Every
// adapter follows the uniform contract: name, requiresAuth, isAvailable,
// search. Adapters never return an error to the orchestrator; any upstream
// failure becomes an empty result, logged at warn: the same isolation
// discipline a supervisor applies to child processes, applied here to
// upstream HTTP calls instead.
package provider

import (
	"context"

	"github.com/mediadirectory/searchcore/internal/catalog"
)

// Params bundles one inbound search request's normalized fields. Query is
// trimmed; Country/Language/Tag are passed through as given by the caller
// (adapters do their own case handling for upstream query strings).
type Params struct {
	Query          string
	Country        string
	Language       string
	Tag            string
	Limit          int
	ProviderFilter *catalog.StringSet // nil means no restriction
	CacheBypass    bool
}

// Allows reports whether name passes this request's optional provider filter.
func (p Params) Allows(name catalog.ProviderName) bool {
	if p.ProviderFilter == nil {
		return true
	}
	return p.ProviderFilter.Has(string(name))
}

// StationProvider is implemented by adapters that can answer station
// searches (community-radio, commercial-radio, keyword-directory,
// shoutcast-style).
type StationProvider interface {
	Name() catalog.ProviderName
	RequiresAuth() bool
	IsAvailable() bool
	SearchStations(ctx context.Context, params Params) []catalog.StationItem
}

// PodcastProvider is implemented by adapters that can answer podcast
// searches (apple-itunes, index-hmac, taddy-graphql).
type PodcastProvider interface {
	Name() catalog.ProviderName
	RequiresAuth() bool
	IsAvailable() bool
	SearchPodcasts(ctx context.Context, params Params) []catalog.PodcastItem
}
