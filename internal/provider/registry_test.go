package provider

import (
	"testing"

	"github.com/mediadirectory/searchcore/internal/catalog"
	"github.com/mediadirectory/searchcore/internal/ratelimiter"
)

func testConfigs() []catalog.ProviderConfig {
	return []catalog.ProviderConfig{
		{Name: catalog.ProviderCommunityRadio, Enabled: true, Priority: 2},
		{Name: catalog.ProviderCommercialRadio, Enabled: true, Priority: 1},
		{Name: catalog.ProviderShoutcastStyle, Enabled: false, Priority: 3},
		{Name: catalog.ProviderKeywordDirectory, Enabled: true, Priority: 4},
		{Name: catalog.ProviderAppleITunes, Enabled: true, Priority: 1},
		{Name: catalog.ProviderIndexHMAC, Enabled: true, Priority: 2, APIKey: "k", APISecret: "s"},
		{Name: catalog.ProviderTaddyGraphQL, Enabled: true, Priority: 3, BearerToken: "t"},
	}
}

func TestRegistryEnabledStationsSortedByPriority(t *testing.T) {
	r := NewRegistry(testConfigs(), ratelimiter.New(testConfigs()))
	out := r.EnabledStations(nil)
	if len(out) != 3 {
		t.Fatalf("len(out) = %d, want 3 (shoutcast-style disabled)", len(out))
	}
	if out[0].Name() != catalog.ProviderCommercialRadio {
		t.Errorf("out[0].Name() = %q, want %q (lowest priority first)", out[0].Name(), catalog.ProviderCommercialRadio)
	}
}

func TestRegistryEnabledStationsRespectsFilter(t *testing.T) {
	r := NewRegistry(testConfigs(), ratelimiter.New(testConfigs()))
	filter := catalog.NewStringSet(string(catalog.ProviderCommunityRadio))
	out := r.EnabledStations(filter)
	if len(out) != 1 || out[0].Name() != catalog.ProviderCommunityRadio {
		t.Fatalf("EnabledStations(filter) = %v, want only community-radio", out)
	}
}

func TestRegistryEnabledPodcastsSkipsUnavailable(t *testing.T) {
	configs := testConfigs()
	for i := range configs {
		if configs[i].Name == catalog.ProviderIndexHMAC {
			configs[i].APIKey = ""
		}
	}
	r := NewRegistry(configs, ratelimiter.New(configs))
	out := r.EnabledPodcasts(nil)
	for _, p := range out {
		if p.Name() == catalog.ProviderIndexHMAC {
			t.Error("index-hmac without credentials should not be in EnabledPodcasts")
		}
	}
}

func TestRegistryStatusesCoversAllProviders(t *testing.T) {
	r := NewRegistry(testConfigs(), ratelimiter.New(testConfigs()))
	statuses := r.Statuses()
	if len(statuses) != 7 {
		t.Fatalf("len(statuses) = %d, want 7", len(statuses))
	}
}
