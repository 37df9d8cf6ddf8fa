package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mediadirectory/searchcore/internal/cache"
	"github.com/mediadirectory/searchcore/internal/catalog"
	"github.com/mediadirectory/searchcore/internal/config"
	"github.com/mediadirectory/searchcore/internal/orchestrator"
	"github.com/mediadirectory/searchcore/internal/provider"
	"github.com/mediadirectory/searchcore/internal/ratelimiter"
)

type stubRegistry struct{}

func (stubRegistry) EnabledStations(*catalog.StringSet) []provider.StationProvider { return nil }
func (stubRegistry) EnabledPodcasts(*catalog.StringSet) []provider.PodcastProvider { return nil }
func (stubRegistry) PriorityOf(catalog.ProviderName) int                          { return 0 }
func (stubRegistry) Statuses() []provider.Status {
	return []provider.Status{{Name: catalog.ProviderAppleITunes, Enabled: true, Priority: 1}}
}

func testAPI() *API {
	cfg := &config.Config{DefaultStationLimit: 20, MaxStationLimit: 100, DefaultPodcastLimit: 20, MaxPodcastLimit: 50}
	orch := orchestrator.New(stubRegistry{}, ratelimiter.New(nil), cache.NewMemory(), cfg)
	return NewAPI(orch, stubRegistry{})
}

func TestSearchStationsReturnsEmptyEnvelope(t *testing.T) {
	api := testAPI()
	req := httptest.NewRequest(http.MethodGet, "/v1/stations/search?q=jazz", nil)
	rr := httptest.NewRecorder()
	api.SearchStations(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	var body stationsResponse
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Total != 0 {
		t.Errorf("Total = %d, want 0 (no providers registered)", body.Total)
	}
}

func TestProviderStatusesReturnsRegistrySnapshot(t *testing.T) {
	api := testAPI()
	req := httptest.NewRequest(http.MethodGet, "/v1/providers/status", nil)
	rr := httptest.NewRecorder()
	api.ProviderStatuses(rr, req)

	var statuses []provider.Status
	if err := json.NewDecoder(rr.Body).Decode(&statuses); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(statuses) != 1 || statuses[0].Name != catalog.ProviderAppleITunes {
		t.Errorf("statuses = %+v, want one apple-itunes entry", statuses)
	}
}

func TestParseFeedRejectsMissingURL(t *testing.T) {
	api := testAPI()
	req := httptest.NewRequest(http.MethodPost, "/v1/feeds/parse", nil)
	rr := httptest.NewRecorder()
	api.ParseFeed(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rr.Code)
	}
}

func TestParseFeedMalformedBodyIsUnprocessable(t *testing.T) {
	api := testAPI()
	req := httptest.NewRequest(http.MethodPost, "/v1/feeds/parse?url=https://example.com/f.xml",
		strings.NewReader("not xml"))
	rr := httptest.NewRecorder()
	api.ParseFeed(rr, req)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", rr.Code)
	}
}
