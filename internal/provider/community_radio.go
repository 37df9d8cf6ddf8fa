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
	"sync"
	"time"

	"github.com/mediadirectory/searchcore/internal/catalog"
	"github.com/mediadirectory/searchcore/internal/httpclient"
	"github.com/mediadirectory/searchcore/internal/ratelimiter"
	"github.com/mediadirectory/searchcore/internal/searcherr"
)

// communityRadioStation is one entry of the community directory's
// /json/stations/search response.
type communityRadioStation struct {
	UUID        string `json:"stationuuid"`
	Name        string `json:"name"`
	URL         string `json:"url"`
	URLResolved string `json:"url_resolved"`
	Homepage    string `json:"homepage"`
	Favicon     string `json:"favicon"`
	Country     string `json:"country"`
	CountryCode string `json:"countrycode"`
	State       string `json:"state"`
	Language    string `json:"language"`
	Tags        string `json:"tags"`
	Codec       string `json:"codec"`
	Bitrate     int    `json:"bitrate"`
	Votes       int    `json:"votes"`
	ClickCount  int    `json:"clickcount"`
	SSL         bool   `json:"hassslfallback"` // station marked SSL-capable
	LastChange  string `json:"lastchangetime"`
}

// CommunityRadioAdapter queries a directory of community-maintained radio
// stations, with rotating-mirror host fallback: a connection failure or
// non-2xx response against the current host advances to the next mirror,
// and the first success against a new host promotes it for future calls.
type CommunityRadioAdapter struct {
	cfg     catalog.ProviderConfig
	client  *http.Client
	limiter *ratelimiter.Limiter
	log     *log.Logger

	mu      sync.Mutex
	hosts   []string // mirror hosts, preferred host first
	current int
}

// defaultCommunityRadioMirrors is the rotating host list used when the
// provider config does not override BaseURL.
var defaultCommunityRadioMirrors = []string{
	"https://de1.api.radio-browser.info",
	"https://de2.api.radio-browser.info",
	"https://nl1.api.radio-browser.info",
}

// NewCommunityRadioAdapter builds the adapter. When cfg.BaseURL is set it
// becomes the sole (non-rotating) host.
func NewCommunityRadioAdapter(cfg catalog.ProviderConfig, limiter *ratelimiter.Limiter) *CommunityRadioAdapter {
	hosts := defaultCommunityRadioMirrors
	if cfg.BaseURL != "" {
		hosts = []string{cfg.BaseURL}
	}
	return &CommunityRadioAdapter{
		cfg:     cfg,
		client:  httpclient.Default(),
		limiter: limiter,
		log:     log.New(log.Writer(), "provider.community-radio: ", log.LstdFlags),
		hosts:   hosts,
	}
}

func (a *CommunityRadioAdapter) Name() catalog.ProviderName { return catalog.ProviderCommunityRadio }
func (a *CommunityRadioAdapter) RequiresAuth() bool          { return false }
func (a *CommunityRadioAdapter) IsAvailable() bool           { return a.cfg.Enabled }

func (a *CommunityRadioAdapter) preferredHost() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.hosts[a.current]
}

func (a *CommunityRadioAdapter) promote(host string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for i, h := range a.hosts {
		if h == host && i != a.current {
			a.current = i
			a.log.Printf("promoting mirror %s to preferred host", host)
			return
		}
	}
}

func (a *CommunityRadioAdapter) SearchStations(ctx context.Context, p Params) []catalog.StationItem {
	if !a.cfg.Enabled {
		return nil
	}
	a.limiter.Record(a.Name())

	query := url.Values{}
	if p.Query != "" {
		query.Set("name", p.Query)
	}
	if p.Country != "" {
		query.Set("country", p.Country)
	}
	if p.Language != "" {
		query.Set("language", p.Language)
	}
	if p.Tag != "" {
		query.Set("tag", p.Tag)
	}
	query.Set("limit", strconv.Itoa(p.Limit))
	query.Set("order", "votes")
	query.Set("reverse", "true")

	// Try each mirror starting from the current preferred host.
	a.mu.Lock()
	hosts := append([]string(nil), a.hosts[a.current:]...)
	hosts = append(hosts, a.hosts[:a.current]...)
	a.mu.Unlock()

	for _, host := range hosts {
		stations, err := a.fetch(ctx, host, query)
		if err != nil {
			a.log.Printf("mirror %s failed: %v", host, err)
			continue
		}
		a.promote(host)
		return stations
	}
	a.log.Printf("all mirrors exhausted for query %q", p.Query)
	return nil
}

func (a *CommunityRadioAdapter) fetch(ctx context.Context, host string, query url.Values) ([]catalog.StationItem, error) {
	reqURL := host + "/json/stations/search?" + query.Encode()
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
	var raw []communityRadioStation
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %v", searcherr.ErrProviderMalformed, err)
	}
	out := make([]catalog.StationItem, 0, len(raw))
	for _, s := range raw {
		out = append(out, normalizeCommunityRadioStation(s, a.Name()))
	}
	return out, nil
}

func normalizeCommunityRadioStation(s communityRadioStation, source catalog.ProviderName) catalog.StationItem {
	streamURL := s.URLResolved
	if streamURL == "" {
		streamURL = s.URL
	}
	if s.SSL && strings.HasPrefix(streamURL, "http://") {
		streamURL = "https://" + strings.TrimPrefix(streamURL, "http://")
	}
	tags := catalog.NewStringSet()
	for _, t := range strings.Split(s.Tags, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags.Add(t)
		}
	}
	var lastChanged time.Time
	if s.LastChange != "" {
		if t, err := time.Parse("2006-01-02 15:04:05", s.LastChange); err == nil {
			lastChanged = t
		}
	}
	return catalog.StationItem{
		ID:              s.UUID,
		Name:            s.Name,
		StreamURL:       streamURL,
		HomepageURL:     s.Homepage,
		Country:         s.Country,
		CountryCode:     s.CountryCode,
		State:           s.State,
		Language:        s.Language,
		Tags:            tags,
		BitrateKbps:     s.Bitrate,
		Codec:           s.Codec,
		LogoURL:         s.Favicon,
		Votes:           s.Votes,
		ClickCount:      s.ClickCount,
		LastChanged:     lastChanged,
		Source:          source,
		SourceProviders: catalog.NewStringSet(string(source)),
	}
}
