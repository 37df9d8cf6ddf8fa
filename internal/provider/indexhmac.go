package provider

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/mediadirectory/searchcore/internal/catalog"
	"github.com/mediadirectory/searchcore/internal/httpclient"
	"github.com/mediadirectory/searchcore/internal/ratelimiter"
	"github.com/mediadirectory/searchcore/internal/searcherr"
)

// indexHMACResult is one entry of the index's /search/byterm response.
type indexHMACResult struct {
	ID           int64             `json:"id"`
	Title        string            `json:"title"`
	Author       string            `json:"author"`
	Description  string            `json:"description"`
	Image        string            `json:"image"`
	URL          string            `json:"url"`
	Language     string            `json:"language"`
	Categories   map[string]string `json:"categories"`
	EpisodeCount int               `json:"episodeCount"`
	Explicit     bool              `json:"explicit"`
}

// IndexHMACAdapter queries a podcast index that authenticates every request
// with an HMAC-shaped signature: Authorization = sha1(key + secret + unix
// seconds), sent alongside the date and key as separate headers.
type IndexHMACAdapter struct {
	cfg     catalog.ProviderConfig
	client  *http.Client
	limiter *ratelimiter.Limiter
	log     *log.Logger
	baseURL string
	now     func() time.Time
}

func NewIndexHMACAdapter(cfg catalog.ProviderConfig, limiter *ratelimiter.Limiter) *IndexHMACAdapter {
	base := cfg.BaseURL
	if base == "" {
		base = "https://api.index-hmac.example"
	}
	return &IndexHMACAdapter{
		cfg:     cfg,
		client:  httpclient.Default(),
		limiter: limiter,
		log:     log.New(log.Writer(), "provider.index-hmac: ", log.LstdFlags),
		baseURL: base,
		now:     time.Now,
	}
}

func (a *IndexHMACAdapter) Name() catalog.ProviderName { return catalog.ProviderIndexHMAC }
func (a *IndexHMACAdapter) RequiresAuth() bool          { return true }
func (a *IndexHMACAdapter) IsAvailable() bool {
	return a.cfg.Enabled && a.cfg.APIKey != "" && a.cfg.APISecret != ""
}

func (a *IndexHMACAdapter) SearchPodcasts(ctx context.Context, p Params) []catalog.PodcastItem {
	if !a.cfg.Enabled {
		return nil
	}
	if a.cfg.APIKey == "" || a.cfg.APISecret == "" {
		a.log.Print(fmt.Errorf("%w: missing API key or secret", searcherr.ErrProviderAuthMissing))
		return nil
	}

	query := url.Values{}
	query.Set("q", p.Query)
	query.Set("max", strconv.Itoa(p.Limit))
	reqURL := a.baseURL + "/search/byterm?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		a.log.Printf("build request: %v", err)
		return nil
	}
	req.Header.Set("User-Agent", "searchcore/1.0 (+media-directory-search)")
	authDate := strconv.FormatInt(a.now().Unix(), 10)
	req.Header.Set("X-Auth-Date", authDate)
	req.Header.Set("X-Auth-Key", a.cfg.APIKey)
	req.Header.Set("Authorization", signIndexHMAC(a.cfg.APIKey, a.cfg.APISecret, authDate))

	// The quota meter is charged for every issued call, success or failure.
	a.limiter.Record(a.Name())

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

	var parsed struct {
		Feeds []indexHMACResult `json:"feeds"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		a.log.Print(fmt.Errorf("%w: decode failed: %v", searcherr.ErrProviderMalformed, err))
		return nil
	}
	out := make([]catalog.PodcastItem, 0, len(parsed.Feeds))
	for _, f := range parsed.Feeds {
		out = append(out, normalizeIndexHMACResult(f, a.Name()))
	}
	return out
}

func signIndexHMAC(key, secret, unixSeconds string) string {
	sum := sha1.Sum([]byte(key + secret + unixSeconds))
	return hex.EncodeToString(sum[:])
}

func normalizeIndexHMACResult(f indexHMACResult, source catalog.ProviderName) catalog.PodcastItem {
	categories := catalog.NewStringSet()
	for _, name := range f.Categories {
		categories.Add(name)
	}
	explicit := catalog.ExplicitFalse
	if f.Explicit {
		explicit = catalog.ExplicitTrue
	}
	var episodeCount *int
	if f.EpisodeCount > 0 {
		n := f.EpisodeCount
		episodeCount = &n
	}
	return catalog.PodcastItem{
		ID:              strconv.FormatInt(f.ID, 10),
		Title:           f.Title,
		Author:          f.Author,
		Description:     f.Description,
		ArtworkURL:      f.Image,
		FeedURL:         f.URL,
		Language:        f.Language,
		Categories:      categories,
		EpisodeCount:    episodeCount,
		Explicit:        explicit,
		Source:          source,
		SourceProviders: catalog.NewStringSet(string(source)),
	}
}
