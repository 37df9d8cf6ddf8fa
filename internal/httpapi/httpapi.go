// Package httpapi exposes the four inbound search-core operations as
// plain net/http handlers: SearchStations, SearchPodcasts,
// ProviderStatuses, ParseFeed. Request validation, pagination envelope
// shaping, and auth middleware are deliberately thin here — the core's
// contract is the orchestrator, not the transport.
package httpapi

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/mediadirectory/searchcore/internal/catalog"
	"github.com/mediadirectory/searchcore/internal/feedparser"
	"github.com/mediadirectory/searchcore/internal/orchestrator"
	"github.com/mediadirectory/searchcore/internal/provider"
)

// Registry is the subset of *provider.Registry the HTTP layer needs for
// the status endpoint.
type Registry interface {
	Statuses() []provider.Status
}

// API wires the orchestrator and registry into http.Handler values.
type API struct {
	orch     *orchestrator.Orchestrator
	registry Registry
	log      *log.Logger
}

func NewAPI(orch *orchestrator.Orchestrator, registry Registry) *API {
	return &API{
		orch:     orch,
		registry: registry,
		log:      log.New(log.Writer(), "httpapi: ", log.LstdFlags),
	}
}

type stationsResponse struct {
	Data       []catalog.StationItem `json:"data"`
	Total      int                   `json:"total"`
	Page       int                   `json:"page"`
	TotalPages int                   `json:"totalPages"`
}

type podcastsResponse struct {
	Data []catalog.PodcastItem `json:"data"`
}

type feedResponse struct {
	Podcast  catalog.PodcastItem   `json:"podcast"`
	Episodes []catalog.EpisodeItem `json:"episodes"`
}

// SearchStations handles GET /v1/stations/search.
func (a *API) SearchStations(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	params := provider.Params{
		Query:          q.Get("q"),
		Country:        q.Get("country"),
		Language:       q.Get("language"),
		Tag:            q.Get("tag"),
		Limit:          parseIntOr(q.Get("limit"), 0),
		ProviderFilter: parseProviderFilter(q.Get("providers")),
		CacheBypass:    q.Get("cacheBypass") == "true",
	}
	page := parseIntOr(q.Get("page"), 1)
	if page < 1 {
		page = 1
	}

	items := a.orch.SearchStations(r.Context(), params)
	writeJSON(w, http.StatusOK, stationsResponse{
		Data:       items,
		Total:      len(items),
		Page:       page,
		TotalPages: 1,
	})
}

// SearchPodcasts handles GET /v1/podcasts/search.
func (a *API) SearchPodcasts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	params := provider.Params{
		Query:          q.Get("q"),
		Language:       q.Get("language"),
		Limit:          parseIntOr(q.Get("limit"), 0),
		ProviderFilter: parseProviderFilter(q.Get("providers")),
		CacheBypass:    q.Get("cacheBypass") == "true",
	}
	items := a.orch.SearchPodcasts(r.Context(), params)
	writeJSON(w, http.StatusOK, podcastsResponse{Data: items})
}

// ProviderStatuses handles GET /v1/providers/status.
func (a *API) ProviderStatuses(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.registry.Statuses())
}

// ParseFeed handles POST /v1/feeds/parse. The request body is the raw feed
// bytes; the feed URL is passed as the "url" query parameter (used only to
// derive the deterministic podcast id and to stamp FeedURL).
func (a *API) ParseFeed(w http.ResponseWriter, r *http.Request) {
	feedURL := r.URL.Query().Get("url")
	if strings.TrimSpace(feedURL) == "" {
		http.Error(w, "missing url query parameter", http.StatusBadRequest)
		return
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, 16<<20))
	if err != nil {
		http.Error(w, "read body: "+err.Error(), http.StatusBadRequest)
		return
	}
	podcast, episodes, err := feedparser.ParseFeed(body, feedURL)
	if err != nil {
		a.log.Printf("parse feed %s: %v", feedURL, err)
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	writeJSON(w, http.StatusOK, feedResponse{Podcast: podcast, Episodes: episodes})
}

func parseIntOr(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

func parseProviderFilter(csv string) *catalog.StringSet {
	csv = strings.TrimSpace(csv)
	if csv == "" {
		return nil
	}
	return catalog.NewStringSet(strings.Split(csv, ",")...)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("httpapi: encode response: %v", err)
	}
}
