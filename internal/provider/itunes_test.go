package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mediadirectory/searchcore/internal/catalog"
	"github.com/mediadirectory/searchcore/internal/ratelimiter"
)

func TestITunesSearchNormalizesExplicitAndArtwork(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(itunesSearchResponse{
			ResultCount: 1,
			Results: []itunesSearchResult{{
				TrackID: 42, CollectionName: "Daily News", ArtistName: "Newsroom",
				ArtworkURL600: "https://img/600", ArtworkURL100: "https://img/100",
				CollectionExplicit: "explicit", TrackCount: 10,
			}},
		})
	}))
	defer srv.Close()

	cfg := catalog.ProviderConfig{Name: catalog.ProviderAppleITunes, Enabled: true, BaseURL: srv.URL}
	a := NewITunesAdapter(cfg, ratelimiter.New(nil))
	out := a.SearchPodcasts(context.Background(), Params{Query: "news", Limit: 5})

	if len(out) != 1 {
		t.Fatalf("len(out) = %d, want 1", len(out))
	}
	got := out[0]
	if got.ArtworkURL != "https://img/600" {
		t.Errorf("ArtworkURL = %q, want the 600 variant preferred over 100", got.ArtworkURL)
	}
	if got.Explicit != catalog.ExplicitTrue {
		t.Errorf("Explicit = %v, want true", got.Explicit)
	}
	if got.ITunesID != "42" {
		t.Errorf("ITunesID = %q, want %q", got.ITunesID, "42")
	}
}

func TestITunesDisabledReturnsNil(t *testing.T) {
	cfg := catalog.ProviderConfig{Name: catalog.ProviderAppleITunes, Enabled: false}
	a := NewITunesAdapter(cfg, ratelimiter.New(nil))
	if out := a.SearchPodcasts(context.Background(), Params{Limit: 5}); out != nil {
		t.Errorf("disabled adapter should return nil, got %v", out)
	}
}
