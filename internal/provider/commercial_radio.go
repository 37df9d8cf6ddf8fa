package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"

	"github.com/mediadirectory/searchcore/internal/catalog"
	"github.com/mediadirectory/searchcore/internal/httpclient"
	"github.com/mediadirectory/searchcore/internal/ratelimiter"
	"github.com/mediadirectory/searchcore/internal/searcherr"
)

// commercialRadioStation is one entry of the commercial REST API's station
// search response.
type commercialRadioStation struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	StreamURL   string   `json:"streamUrl"`
	WebsiteURL  string   `json:"websiteUrl"`
	Country     string   `json:"country"`
	CountryCode string   `json:"countryCode"`
	Language    string   `json:"language"`
	Genres      []string `json:"genres"`
	BitrateKbps int      `json:"bitrateKbps"`
	Codec       string   `json:"codec"`
	LogoURL     string   `json:"logoUrl"`
	Popularity  int      `json:"popularity"`
}

// CommercialRadioAdapter queries a single-host commercial station directory.
// Auth is optional: a bearer token is sent when configured, omitted
// otherwise, since the provider's own docs mark most search endpoints as
// publicly readable with elevated quota for authenticated callers.
type CommercialRadioAdapter struct {
	cfg     catalog.ProviderConfig
	client  *http.Client
	limiter *ratelimiter.Limiter
	log     *log.Logger
	baseURL string
}

func NewCommercialRadioAdapter(cfg catalog.ProviderConfig, limiter *ratelimiter.Limiter) *CommercialRadioAdapter {
	base := cfg.BaseURL
	if base == "" {
		base = "https://api.commercial-radio.example"
	}
	return &CommercialRadioAdapter{
		cfg:     cfg,
		client:  httpclient.Default(),
		limiter: limiter,
		log:     log.New(log.Writer(), "provider.commercial-radio: ", log.LstdFlags),
		baseURL: base,
	}
}

func (a *CommercialRadioAdapter) Name() catalog.ProviderName { return catalog.ProviderCommercialRadio }
func (a *CommercialRadioAdapter) RequiresAuth() bool         { return false }
func (a *CommercialRadioAdapter) IsAvailable() bool          { return a.cfg.Enabled }

func (a *CommercialRadioAdapter) SearchStations(ctx context.Context, p Params) []catalog.StationItem {
	if !a.cfg.Enabled {
		return nil
	}
	a.limiter.Record(a.Name())

	query := url.Values{}
	if p.Query != "" {
		query.Set("q", p.Query)
	}
	if p.Country != "" {
		query.Set("country", p.Country)
	}
	if p.Language != "" {
		query.Set("language", p.Language)
	}
	if p.Tag != "" {
		query.Set("genre", p.Tag)
	}
	query.Set("limit", strconv.Itoa(p.Limit))

	reqURL := a.baseURL + "/api/v1/stations/search?" + query.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		a.log.Printf("build request: %v", err)
		return nil
	}
	req.Header.Set("User-Agent", "searchcore/1.0 (+media-directory-search)")
	if a.cfg.BearerToken != "" {
		req.Header.Set("Authorization", "Bearer "+a.cfg.BearerToken)
	}

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

	var parsed struct {
		Stations []commercialRadioStation `json:"stations"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		a.log.Print(fmt.Errorf("%w: decode failed: %v", searcherr.ErrProviderMalformed, err))
		return nil
	}
	out := make([]catalog.StationItem, 0, len(parsed.Stations))
	for _, s := range parsed.Stations {
		out = append(out, normalizeCommercialRadioStation(s, a.Name()))
	}
	return out
}

func normalizeCommercialRadioStation(s commercialRadioStation, source catalog.ProviderName) catalog.StationItem {
	tags := catalog.NewStringSet(s.Genres...)
	return catalog.StationItem{
		ID:              s.ID,
		Name:            s.Name,
		StreamURL:       s.StreamURL,
		HomepageURL:     s.WebsiteURL,
		Country:         s.Country,
		CountryCode:     s.CountryCode,
		Language:        s.Language,
		Tags:            tags,
		BitrateKbps:     s.BitrateKbps,
		Codec:           s.Codec,
		LogoURL:         s.LogoURL,
		Votes:           s.Popularity,
		Source:          source,
		SourceProviders: catalog.NewStringSet(string(source)),
	}
}
