package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mediadirectory/searchcore/internal/catalog"
	"github.com/mediadirectory/searchcore/internal/ratelimiter"
)

func TestIndexHMACSignsRequestAndSearches(t *testing.T) {
	var gotAuth, gotDate, gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotDate = r.Header.Get("X-Auth-Date")
		gotKey = r.Header.Get("X-Auth-Key")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"feeds": []indexHMACResult{{ID: 1, Title: "Show", URL: "https://f"}},
		})
	}))
	defer srv.Close()

	cfg := catalog.ProviderConfig{
		Name: catalog.ProviderIndexHMAC, Enabled: true, BaseURL: srv.URL,
		APIKey: "key123", APISecret: "secret456",
	}
	a := NewIndexHMACAdapter(cfg, ratelimiter.New(nil))
	a.now = func() time.Time { return time.Unix(1000, 0) }

	out := a.SearchPodcasts(context.Background(), Params{Query: "x", Limit: 5})
	if len(out) != 1 {
		t.Fatalf("len(out) = %d, want 1", len(out))
	}
	if gotKey != "key123" {
		t.Errorf("X-Auth-Key = %q, want %q", gotKey, "key123")
	}
	if gotDate != "1000" {
		t.Errorf("X-Auth-Date = %q, want %q", gotDate, "1000")
	}
	want := signIndexHMAC("key123", "secret456", "1000")
	if gotAuth != want {
		t.Errorf("Authorization = %q, want %q", gotAuth, want)
	}
}

func TestIndexHMACMissingCredentialsShortCircuits(t *testing.T) {
	cfg := catalog.ProviderConfig{Name: catalog.ProviderIndexHMAC, Enabled: true}
	a := NewIndexHMACAdapter(cfg, ratelimiter.New(nil))
	if a.IsAvailable() {
		t.Fatal("IsAvailable() should be false without key+secret")
	}
	if out := a.SearchPodcasts(context.Background(), Params{Query: "x", Limit: 5}); out != nil {
		t.Errorf("missing credentials should return nil, got %v", out)
	}
}
