package config

import (
	"os"
	"testing"
	"time"

	"github.com/mediadirectory/searchcore/internal/catalog"
)

func TestLoadDefaults(t *testing.T) {
	os.Clearenv()
	c := Load()
	if c.DefaultStationLimit != 20 {
		t.Errorf("DefaultStationLimit = %d, want 20", c.DefaultStationLimit)
	}
	if c.MaxStationLimit != 100 {
		t.Errorf("MaxStationLimit = %d, want 100", c.MaxStationLimit)
	}
	if c.DefaultPodcastLimit != 20 {
		t.Errorf("DefaultPodcastLimit = %d, want 20", c.DefaultPodcastLimit)
	}
	if c.MaxPodcastLimit != 50 {
		t.Errorf("MaxPodcastLimit = %d, want 50", c.MaxPodcastLimit)
	}
	if len(c.Providers) != 7 {
		t.Fatalf("len(Providers) = %d, want 7", len(c.Providers))
	}
	if c.ShutdownTimeout != 10*time.Second {
		t.Errorf("ShutdownTimeout = %v, want 10s", c.ShutdownTimeout)
	}
}

func TestLoadShutdownTimeoutOverride(t *testing.T) {
	os.Clearenv()
	os.Setenv("SEARCHCORE_SHUTDOWN_TIMEOUT", "30s")
	c := Load()
	if c.ShutdownTimeout != 30*time.Second {
		t.Errorf("ShutdownTimeout = %v, want 30s", c.ShutdownTimeout)
	}
}

func TestLoadShutdownTimeoutInvalidFallsBackToDefault(t *testing.T) {
	os.Clearenv()
	os.Setenv("SEARCHCORE_SHUTDOWN_TIMEOUT", "not-a-duration")
	c := Load()
	if c.ShutdownTimeout != 10*time.Second {
		t.Errorf("ShutdownTimeout = %v, want 10s default on parse failure", c.ShutdownTimeout)
	}
}

func TestLoadLimitsOverride(t *testing.T) {
	os.Clearenv()
	os.Setenv("SEARCHCORE_DEFAULT_STATION_LIMIT", "5")
	os.Setenv("SEARCHCORE_MAX_PODCAST_LIMIT", "200")
	c := Load()
	if c.DefaultStationLimit != 5 {
		t.Errorf("DefaultStationLimit = %d, want 5", c.DefaultStationLimit)
	}
	if c.MaxPodcastLimit != 200 {
		t.Errorf("MaxPodcastLimit = %d, want 200", c.MaxPodcastLimit)
	}
}

func TestLoadProviderDefaultsEnabled(t *testing.T) {
	os.Clearenv()
	c := Load()
	for _, p := range c.Providers {
		if !p.Enabled {
			t.Errorf("provider %q should default enabled", p.Name)
		}
	}
}

func TestLoadProviderEnvOverrides(t *testing.T) {
	os.Clearenv()
	os.Setenv("SEARCHCORE_PROVIDER_INDEX_HMAC_ENABLED", "false")
	os.Setenv("SEARCHCORE_PROVIDER_INDEX_HMAC_PRIORITY", "1")
	os.Setenv("SEARCHCORE_PROVIDER_INDEX_HMAC_TIMEOUT_MS", "2500")
	os.Setenv("SEARCHCORE_PROVIDER_INDEX_HMAC_API_KEY", "key123")
	os.Setenv("SEARCHCORE_PROVIDER_INDEX_HMAC_API_SECRET", "secret456")
	os.Setenv("SEARCHCORE_PROVIDER_INDEX_HMAC_RATE_LIMIT", "10")
	os.Setenv("SEARCHCORE_PROVIDER_INDEX_HMAC_RATE_PERIOD_SECONDS", "60")

	c := Load()
	var got *catalog.ProviderConfig
	for i := range c.Providers {
		if c.Providers[i].Name == catalog.ProviderIndexHMAC {
			got = &c.Providers[i]
		}
	}
	if got == nil {
		t.Fatal("index-hmac provider config not found")
	}
	if got.Enabled {
		t.Error("Enabled should be false")
	}
	if got.Priority != 1 {
		t.Errorf("Priority = %d, want 1", got.Priority)
	}
	if got.TimeoutMillis != 2500 {
		t.Errorf("TimeoutMillis = %d, want 2500", got.TimeoutMillis)
	}
	if got.APIKey != "key123" || got.APISecret != "secret456" {
		t.Errorf("APIKey/APISecret = %q/%q", got.APIKey, got.APISecret)
	}
	if got.RateLimitQuota != 10 || got.RatePeriodSeconds != 60 {
		t.Errorf("RateLimitQuota/RatePeriodSeconds = %d/%d", got.RateLimitQuota, got.RatePeriodSeconds)
	}
	if got.RequiresAuth() {
		t.Error("index-hmac RequiresAuth() should be false once key+secret are both set")
	}
}

func TestLoadUnknownEnvVarsIgnored(t *testing.T) {
	os.Clearenv()
	os.Setenv("SEARCHCORE_PROVIDER_NONEXISTENT_ENABLED", "true")
	os.Setenv("SOME_UNRELATED_VAR", "x")
	c := Load()
	if len(c.Providers) != 7 {
		t.Fatalf("len(Providers) = %d, want 7 (unknown provider names are not synthesized)", len(c.Providers))
	}
}
