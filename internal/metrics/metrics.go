// Package metrics exposes Prometheus counters and gauges for the search
// core: request volume by operation and outcome, cache hit/miss, and
// per-provider rate-limit headroom. Grounded on the pack's promauto-based
// metrics packages (see tomtom215-cartographus's internal/authz/metrics.go).
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SearchRequestsTotal counts inbound search calls by operation and outcome.
	SearchRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "searchcore_requests_total",
			Help: "Total number of search requests handled, by operation and outcome",
		},
		[]string{"operation", "outcome"}, // operation: "stations"|"podcasts", outcome: "hit"|"miss"|"empty"
	)

	// CacheLookupsTotal counts cache probes by operation and result.
	CacheLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "searchcore_cache_lookups_total",
			Help: "Total number of cache lookups, by operation and result",
		},
		[]string{"operation", "result"}, // result: "hit"|"miss"
	)

	// ProviderCallsTotal counts provider adapter invocations by provider and outcome.
	ProviderCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "searchcore_provider_calls_total",
			Help: "Total number of provider adapter calls, by provider and outcome",
		},
		[]string{"provider", "outcome"}, // outcome: "ok"|"empty"|"rate_limited"
	)

	// ProviderRateLimitRemaining tracks remaining quota per provider.
	ProviderRateLimitRemaining = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "searchcore_provider_rate_limit_remaining",
			Help: "Remaining request quota in the current rate-limit window, by provider",
		},
		[]string{"provider"},
	)

	// SearchResultCount observes the number of items returned per search.
	SearchResultCount = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "searchcore_result_count",
			Help:    "Number of items returned by a search, by operation",
			Buckets: []float64{0, 1, 5, 10, 20, 50, 100},
		},
		[]string{"operation"},
	)
)

// RecordSearch records one completed search request.
func RecordSearch(operation string, resultCount int, cacheHit bool) {
	outcome := "miss"
	if cacheHit {
		outcome = "hit"
	} else if resultCount == 0 {
		outcome = "empty"
	}
	SearchRequestsTotal.WithLabelValues(operation, outcome).Inc()
	SearchResultCount.WithLabelValues(operation).Observe(float64(resultCount))
}

// RecordCacheLookup records one cache probe outcome.
func RecordCacheLookup(operation string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	CacheLookupsTotal.WithLabelValues(operation, result).Inc()
}

// RecordProviderCall records one adapter invocation outcome.
func RecordProviderCall(providerName string, resultCount int, rateLimited bool) {
	outcome := "ok"
	switch {
	case rateLimited:
		outcome = "rate_limited"
	case resultCount == 0:
		outcome = "empty"
	}
	ProviderCallsTotal.WithLabelValues(providerName, outcome).Inc()
}

// UpdateRateLimitRemaining sets the current remaining-quota gauge for a provider.
func UpdateRateLimitRemaining(providerName string, remaining int) {
	ProviderRateLimitRemaining.WithLabelValues(providerName).Set(float64(remaining))
}
