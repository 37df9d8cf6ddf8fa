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

// shoutcastStation is one entry of a Shoutcast-style directory's
// /Search/UpdateSearch response.
type shoutcastStation struct {
	ID        int    `json:"ID"`
	Name      string `json:"Name"`
	StreamURL string `json:"StreamUrl"`
	Genre     string `json:"Genre"`
	Bitrate   int    `json:"Bitrate"`
	Format    string `json:"Format"`
}

// ShoutcastAdapter queries a Shoutcast-style directory that exposes a
// single free-text search endpoint and no independent country/language
// facets, so those filters are folded into the query string.
type ShoutcastAdapter struct {
	cfg     catalog.ProviderConfig
	client  *http.Client
	limiter *ratelimiter.Limiter
	log     *log.Logger
	baseURL string
}

func NewShoutcastAdapter(cfg catalog.ProviderConfig, limiter *ratelimiter.Limiter) *ShoutcastAdapter {
	base := cfg.BaseURL
	if base == "" {
		base = "https://directory.shoutcast-style.example"
	}
	return &ShoutcastAdapter{
		cfg:     cfg,
		client:  httpclient.Default(),
		limiter: limiter,
		log:     log.New(log.Writer(), "provider.shoutcast-style: ", log.LstdFlags),
		baseURL: base,
	}
}

func (a *ShoutcastAdapter) Name() catalog.ProviderName { return catalog.ProviderShoutcastStyle }
func (a *ShoutcastAdapter) RequiresAuth() bool          { return false }
func (a *ShoutcastAdapter) IsAvailable() bool           { return a.cfg.Enabled }

func (a *ShoutcastAdapter) SearchStations(ctx context.Context, p Params) []catalog.StationItem {
	if !a.cfg.Enabled {
		return nil
	}
	a.limiter.Record(a.Name())

	parts := make([]string, 0, 4)
	for _, f := range []string{p.Query, p.Tag, p.Country, p.Language} {
		if f = strings.TrimSpace(f); f != "" {
			parts = append(parts, f)
		}
	}
	query := url.Values{}
	query.Set("query", strings.Join(parts, " "))
	query.Set("limit", strconv.Itoa(p.Limit))

	reqURL := a.baseURL + "/Search/UpdateSearch?" + query.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		a.log.Printf("build request: %v", err)
		return nil
	}
	req.Header.Set("User-Agent", "searchcore/1.0 (+media-directory-search)")

	resp, err := httpclient.DoWithRetry(ctx, a.client, req, httpclient.StationRetryPolicy)
	if err != nil {
		a.log.Print(fmt.Errorf("%w: request failed: %v", searcherr.ErrProviderUnavailable, err))
		return nil
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		a.log.Print(fmt.Errorf("%w: unexpected status %d", searcherr.ErrProviderUnavailable, resp.StatusCode))
		return nil
	}

	var raw []shoutcastStation
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		a.log.Print(fmt.Errorf("%w: decode failed: %v", searcherr.ErrProviderMalformed, err))
		return nil
	}
	out := make([]catalog.StationItem, 0, len(raw))
	for _, s := range raw {
		out = append(out, normalizeShoutcastStation(s, a.Name()))
	}
	return out
}

func normalizeShoutcastStation(s shoutcastStation, source catalog.ProviderName) catalog.StationItem {
	streamURL := s.StreamURL
	if streamURL == "" && s.ID != 0 {
		streamURL = fmt.Sprintf("https://yp.shoutcast-style.example/tune-in/station-%d", s.ID)
	}
	tags := catalog.NewStringSet()
	for _, g := range strings.Split(s.Genre, ",") {
		if g = strings.TrimSpace(g); g != "" {
			tags.Add(g)
		}
	}
	return catalog.StationItem{
		ID:              strconv.Itoa(s.ID),
		Name:            s.Name,
		StreamURL:       streamURL,
		Tags:            tags,
		BitrateKbps:     s.Bitrate,
		Codec:           s.Format,
		Source:          source,
		SourceProviders: catalog.NewStringSet(string(source)),
	}
}
