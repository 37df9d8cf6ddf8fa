package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/mediadirectory/searchcore/internal/catalog"
	"github.com/mediadirectory/searchcore/internal/httpclient"
	"github.com/mediadirectory/searchcore/internal/ratelimiter"
	"github.com/mediadirectory/searchcore/internal/searcherr"
)

// defaultKeywordSeeds are synthesized when the request carries no search
// facet at all, to elicit a non-empty result from a keyword-only endpoint.
var defaultKeywordSeeds = []string{"top", "music"}

// keywordDirectoryStation is one entry of the keyword-directory's response,
// across both its by-keyword and by-country endpoints.
type keywordDirectoryStation struct {
	StationID  string   `json:"stationId"`
	Name       string   `json:"name"`
	StreamURL  string   `json:"streamUrl"`
	StreamURLs []string `json:"streamUrls"`
	Country    string   `json:"country"`
	Language   string   `json:"language"`
	Tags       []string `json:"tags"`
}

// KeywordDirectoryAdapter queries a directory that exposes separate
// by-keyword and by-country search endpoints and has no native language/tag
// filter, so those are applied as an in-memory post-filter.
type KeywordDirectoryAdapter struct {
	cfg     catalog.ProviderConfig
	client  *http.Client
	limiter *ratelimiter.Limiter
	log     *log.Logger
	baseURL string
}

func NewKeywordDirectoryAdapter(cfg catalog.ProviderConfig, limiter *ratelimiter.Limiter) *KeywordDirectoryAdapter {
	base := cfg.BaseURL
	if base == "" {
		base = "https://directory.keyword-style.example"
	}
	return &KeywordDirectoryAdapter{
		cfg:     cfg,
		client:  httpclient.Default(),
		limiter: limiter,
		log:     log.New(log.Writer(), "provider.keyword-directory: ", log.LstdFlags),
		baseURL: base,
	}
}

func (a *KeywordDirectoryAdapter) Name() catalog.ProviderName { return catalog.ProviderKeywordDirectory }
func (a *KeywordDirectoryAdapter) RequiresAuth() bool          { return false }
func (a *KeywordDirectoryAdapter) IsAvailable() bool           { return a.cfg.Enabled }

func (a *KeywordDirectoryAdapter) SearchStations(ctx context.Context, p Params) []catalog.StationItem {
	if !a.cfg.Enabled {
		return nil
	}
	a.limiter.Record(a.Name())

	var raw []keywordDirectoryStation
	var err error
	switch {
	case p.Country != "" && p.Query == "":
		raw, err = a.fetch(ctx, "/search/stationsbycountry", url.Values{
			"country": {p.Country}, "limit": {strconv.Itoa(p.Limit)},
		})
	case p.Query != "":
		raw, err = a.fetch(ctx, "/search/stationsbykeyword", url.Values{
			"keyword": {p.Query}, "limit": {strconv.Itoa(p.Limit)},
		})
	default:
		for _, seed := range defaultKeywordSeeds {
			raw, err = a.fetch(ctx, "/search/stationsbykeyword", url.Values{
				"keyword": {seed}, "limit": {strconv.Itoa(p.Limit)},
			})
			if err == nil && len(raw) > 0 {
				break
			}
		}
	}
	if err != nil {
		a.log.Print(fmt.Errorf("%w: %v", searcherr.ErrProviderUnavailable, err))
		return nil
	}

	out := make([]catalog.StationItem, 0, len(raw))
	for _, s := range raw {
		if p.Language != "" && !strings.EqualFold(s.Language, p.Language) {
			continue
		}
		if p.Tag != "" && !containsFold(s.Tags, p.Tag) {
			continue
		}
		item, ok := normalizeKeywordDirectoryStation(s, a.Name())
		if !ok {
			continue // no usable stream URL: discard per fallback order
		}
		out = append(out, item)
	}
	return out
}

func (a *KeywordDirectoryAdapter) fetch(ctx context.Context, path string, query url.Values) ([]keywordDirectoryStation, error) {
	reqURL := a.baseURL + path + "?" + query.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "searchcore/1.0 (+media-directory-search)")
	resp, err := httpclient.DoWithRetry(ctx, a.client, req, httpclient.StationRetryPolicy)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: http %d", searcherr.ErrProviderUnavailable, resp.StatusCode)
	}
	var raw []keywordDirectoryStation
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %v", searcherr.ErrProviderMalformed, err)
	}
	return raw, nil
}

// normalizeKeywordDirectoryStation resolves the stream URL using the
// documented fallback order: explicit streamUrl, then streamUrls[0], then a
// synthesized station-id URL, else ok=false (item is discarded).
func normalizeKeywordDirectoryStation(s keywordDirectoryStation, source catalog.ProviderName) (catalog.StationItem, bool) {
	streamURL := s.StreamURL
	if streamURL == "" && len(s.StreamURLs) > 0 {
		streamURL = s.StreamURLs[0]
	}
	if streamURL == "" && s.StationID != "" {
		streamURL = fmt.Sprintf("https://directory.keyword-style.example/stream/%s", s.StationID)
	}
	if streamURL == "" {
		return catalog.StationItem{}, false
	}
	return catalog.StationItem{
		ID:              s.StationID,
		Name:            s.Name,
		StreamURL:       streamURL,
		Country:         s.Country,
		Language:        s.Language,
		Tags:            catalog.NewStringSet(s.Tags...),
		Source:          source,
		SourceProviders: catalog.NewStringSet(string(source)),
	}, true
}

func containsFold(values []string, target string) bool {
	for _, v := range values {
		if strings.EqualFold(v, target) {
			return true
		}
	}
	return false
}
