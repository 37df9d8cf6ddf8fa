package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/mediadirectory/searchcore/internal/catalog"
	"github.com/mediadirectory/searchcore/internal/httpclient"
	"github.com/mediadirectory/searchcore/internal/ratelimiter"
	"github.com/mediadirectory/searchcore/internal/searcherr"
)

// itunesSearchResult is one entry of Apple's /search?media=podcast response.
type itunesSearchResult struct {
	TrackID            int64  `json:"trackId"`
	CollectionName     string `json:"collectionName"`
	ArtistName         string `json:"artistName"`
	FeedURL            string `json:"feedUrl"`
	ArtworkURL600      string `json:"artworkUrl600"`
	ArtworkURL100      string `json:"artworkUrl100"`
	PrimaryGenreName   string `json:"primaryGenreName"`
	Country            string `json:"country"`
	CollectionExplicit string `json:"collectionExplicitness"`
	TrackCount         int    `json:"trackCount"`
}

type itunesSearchResponse struct {
	ResultCount int                  `json:"resultCount"`
	Results     []itunesSearchResult `json:"results"`
}

// ITunesAdapter queries Apple's public podcast search endpoint, which
// requires no credentials but does publish an informal rate limit; a
// token-bucket pacer throttles outbound calls so quota admission (handled
// one layer up by RateLimiter) doesn't translate into a request burst.
type ITunesAdapter struct {
	cfg     catalog.ProviderConfig
	client  *http.Client
	pacer   *rate.Limiter
	limiter *ratelimiter.Limiter
	log     *log.Logger
	baseURL string
}

func NewITunesAdapter(cfg catalog.ProviderConfig, limiter *ratelimiter.Limiter) *ITunesAdapter {
	base := cfg.BaseURL
	if base == "" {
		base = "https://itunes.apple.com"
	}
	return &ITunesAdapter{
		cfg:     cfg,
		client:  httpclient.Default(),
		pacer:   rate.NewLimiter(rate.Every(time.Minute/time.Duration(250)), 5),
		limiter: limiter,
		log:     log.New(log.Writer(), "provider.apple-itunes: ", log.LstdFlags),
		baseURL: base,
	}
}

func (a *ITunesAdapter) Name() catalog.ProviderName { return catalog.ProviderAppleITunes }
func (a *ITunesAdapter) RequiresAuth() bool          { return false }
func (a *ITunesAdapter) IsAvailable() bool           { return a.cfg.Enabled }

func (a *ITunesAdapter) SearchPodcasts(ctx context.Context, p Params) []catalog.PodcastItem {
	if !a.cfg.Enabled {
		return nil
	}
	if err := a.pacer.Wait(ctx); err != nil {
		return nil
	}
	a.limiter.Record(a.Name())

	query := url.Values{}
	query.Set("media", "podcast")
	query.Set("term", p.Query)
	query.Set("limit", strconv.Itoa(p.Limit))
	if p.Language != "" {
		query.Set("lang", p.Language)
	}

	reqURL := a.baseURL + "/search?" + query.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		a.log.Printf("build request: %v", err)
		return nil
	}
	req.Header.Set("User-Agent", "searchcore/1.0 (+media-directory-search)")

	resp, err := httpclient.DoWithRetry(ctx, a.client, req, httpclient.AuthenticatedRetryPolicy)
	if err != nil {
		a.log.Print(fmt.Errorf("%w: request failed: %v", searcherr.ErrProviderUnavailable, err))
		return nil
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		a.log.Print(fmt.Errorf("%w: unexpected status %d", searcherr.ErrProviderUnavailable, resp.StatusCode))
		return nil
	}

	var parsed itunesSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		a.log.Print(fmt.Errorf("%w: decode failed: %v", searcherr.ErrProviderMalformed, err))
		return nil
	}
	out := make([]catalog.PodcastItem, 0, len(parsed.Results))
	for _, r := range parsed.Results {
		out = append(out, normalizeITunesResult(r, a.Name()))
	}
	return out
}

func normalizeITunesResult(r itunesSearchResult, source catalog.ProviderName) catalog.PodcastItem {
	artwork := r.ArtworkURL600
	if artwork == "" {
		artwork = r.ArtworkURL100
	}
	explicit := catalog.ExplicitFalse
	if r.CollectionExplicit == "explicit" {
		explicit = catalog.ExplicitTrue
	}
	var episodeCount *int
	if r.TrackCount > 0 {
		n := r.TrackCount
		episodeCount = &n
	}
	return catalog.PodcastItem{
		ID:              strconv.FormatInt(r.TrackID, 10),
		Title:           r.CollectionName,
		Author:          r.ArtistName,
		ArtworkURL:      artwork,
		FeedURL:         r.FeedURL,
		ITunesID:        strconv.FormatInt(r.TrackID, 10),
		Categories:      catalog.NewStringSet(r.PrimaryGenreName),
		EpisodeCount:    episodeCount,
		Explicit:        explicit,
		Source:          source,
		SourceProviders: catalog.NewStringSet(string(source)),
	}
}
