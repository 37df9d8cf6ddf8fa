// Package config loads orchestrator and provider configuration from the
// environment using a flat Config struct plus typed env-var helpers.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/mediadirectory/searchcore/internal/catalog"
)

// Config holds the orchestrator's tunables plus the per-provider config set.
type Config struct {
	// Defaults applied when the inbound request does not specify a limit.
	DefaultStationLimit int
	MaxStationLimit     int
	DefaultPodcastLimit int
	MaxPodcastLimit     int

	// Cache TTLs (query-class dependent: freeform queries get a shorter TTL).
	CacheTTLFilterOnlyMillis int // longer: empty/filter-only queries
	CacheTTLFreeformMillis   int // shorter: freeform text queries

	// ShutdownTimeout bounds how long the HTTP server waits for in-flight
	// requests to finish during a graceful shutdown before giving up.
	ShutdownTimeout time.Duration

	Providers []catalog.ProviderConfig
}

var knownProviders = []catalog.ProviderName{
	catalog.ProviderCommunityRadio,
	catalog.ProviderCommercialRadio,
	catalog.ProviderShoutcastStyle,
	catalog.ProviderAppleITunes,
	catalog.ProviderIndexHMAC,
	catalog.ProviderTaddyGraphQL,
	catalog.ProviderKeywordDirectory,
}

// envPrefix turns a provider name like "index-hmac" into "INDEX_HMAC", the
// prefix used for its env vars (e.g. SEARCHCORE_PROVIDER_INDEX_HMAC_ENABLED).
func envPrefix(name catalog.ProviderName) string {
	return strings.ToUpper(strings.ReplaceAll(string(name), "-", "_"))
}

// Load reads Config from the environment. Call LoadEnvFile(".env") first to
// source a .env file into the process environment. Unknown env variables are
// ignored.
func Load() *Config {
	c := &Config{
		DefaultStationLimit:      getEnvInt("SEARCHCORE_DEFAULT_STATION_LIMIT", 20),
		MaxStationLimit:          getEnvInt("SEARCHCORE_MAX_STATION_LIMIT", 100),
		DefaultPodcastLimit:      getEnvInt("SEARCHCORE_DEFAULT_PODCAST_LIMIT", 20),
		MaxPodcastLimit:          getEnvInt("SEARCHCORE_MAX_PODCAST_LIMIT", 50),
		CacheTTLFilterOnlyMillis: getEnvInt("SEARCHCORE_CACHE_TTL_FILTER_ONLY_MS", 10*60*1000),
		CacheTTLFreeformMillis:   getEnvInt("SEARCHCORE_CACHE_TTL_FREEFORM_MS", 2*60*1000),
		ShutdownTimeout:          getEnvDuration("SEARCHCORE_SHUTDOWN_TIMEOUT", 10*time.Second),
	}
	if c.DefaultStationLimit <= 0 {
		c.DefaultStationLimit = 20
	}
	if c.MaxStationLimit <= 0 {
		c.MaxStationLimit = 100
	}
	if c.DefaultPodcastLimit <= 0 {
		c.DefaultPodcastLimit = 20
	}
	if c.MaxPodcastLimit <= 0 {
		c.MaxPodcastLimit = 50
	}

	for i, name := range knownProviders {
		prefix := "SEARCHCORE_PROVIDER_" + envPrefix(name)
		c.Providers = append(c.Providers, catalog.ProviderConfig{
			Name:              name,
			Enabled:           getEnvBool(prefix+"_ENABLED", true),
			Priority:          getEnvInt(prefix+"_PRIORITY", i),
			TimeoutMillis:     getEnvInt(prefix+"_TIMEOUT_MS", 5000),
			CacheTTLMillis:    getEnvInt(prefix+"_CACHE_TTL_MS", 5*60*1000),
			RateLimitQuota:    getEnvInt(prefix+"_RATE_LIMIT", 0),
			RatePeriodSeconds: getEnvInt(prefix+"_RATE_PERIOD_SECONDS", 0),
			APIKey:            os.Getenv(prefix + "_API_KEY"),
			APISecret:         os.Getenv(prefix + "_API_SECRET"),
			BearerToken:       os.Getenv(prefix + "_BEARER"),
			BaseURL:           os.Getenv(prefix + "_BASE_URL"),
		})
	}
	return c
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if v := os.Getenv(key); v != "" {
		return v == "1" || strings.EqualFold(v, "true")
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}
