package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/mediadirectory/searchcore/internal/catalog"
	"github.com/mediadirectory/searchcore/internal/httpclient"
	"github.com/mediadirectory/searchcore/internal/ratelimiter"
	"github.com/mediadirectory/searchcore/internal/searcherr"
)

// graphQLSearchQuery is the fixed search document sent to the GraphQL
// provider; only the variables change per call.
const graphQLSearchQuery = `query SearchPodcasts($term: String!, $limit: Int!) {
  searchForTerm(term: $term, limit: $limit) {
    podcastSeries {
      uuid
      name
      description
      imageUrl
      rssUrl
      itunesId
      genres
      episodeCount
      isExplicit
    }
  }
}`

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type graphQLPodcastSeries struct {
	UUID         string   `json:"uuid"`
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	ImageURL     string   `json:"imageUrl"`
	RSSURL       string   `json:"rssUrl"`
	ITunesID     string   `json:"itunesId"`
	Genres       []string `json:"genres"`
	EpisodeCount int      `json:"episodeCount"`
	IsExplicit   bool     `json:"isExplicit"`
}

type graphQLResponse struct {
	Data struct {
		SearchForTerm struct {
			PodcastSeries []graphQLPodcastSeries `json:"podcastSeries"`
		} `json:"searchForTerm"`
	} `json:"data"`
}

// GraphQLAdapter queries a bearer-authenticated GraphQL podcast catalog
// with a single fixed query document, subject to a monthly rate limit
// (the provider config's quota period is measured in seconds; a monthly
// period is simply a large RatePeriodSeconds value).
type GraphQLAdapter struct {
	cfg     catalog.ProviderConfig
	client  *http.Client
	limiter *ratelimiter.Limiter
	log     *log.Logger
	baseURL string
}

func NewGraphQLAdapter(cfg catalog.ProviderConfig, limiter *ratelimiter.Limiter) *GraphQLAdapter {
	base := cfg.BaseURL
	if base == "" {
		base = "https://api.taddy-graphql.example"
	}
	return &GraphQLAdapter{
		cfg:     cfg,
		client:  httpclient.Default(),
		limiter: limiter,
		log:     log.New(log.Writer(), "provider.taddy-graphql: ", log.LstdFlags),
		baseURL: base,
	}
}

func (a *GraphQLAdapter) Name() catalog.ProviderName { return catalog.ProviderTaddyGraphQL }
func (a *GraphQLAdapter) RequiresAuth() bool          { return true }
func (a *GraphQLAdapter) IsAvailable() bool {
	return a.cfg.Enabled && a.cfg.BearerToken != ""
}

func (a *GraphQLAdapter) SearchPodcasts(ctx context.Context, p Params) []catalog.PodcastItem {
	if !a.cfg.Enabled {
		return nil
	}
	if a.cfg.BearerToken == "" {
		a.log.Print(fmt.Errorf("%w: no bearer token configured", searcherr.ErrProviderAuthMissing))
		return nil
	}

	body, err := json.Marshal(graphQLRequest{
		Query: graphQLSearchQuery,
		Variables: map[string]any{
			"term":  p.Query,
			"limit": p.Limit,
		},
	})
	if err != nil {
		a.log.Printf("encode request: %v", err)
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/graphql", bytes.NewReader(body))
	if err != nil {
		a.log.Printf("build request: %v", err)
		return nil
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "searchcore/1.0 (+media-directory-search)")
	req.Header.Set("Authorization", "Bearer "+a.cfg.BearerToken)

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

	var parsed graphQLResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		a.log.Print(fmt.Errorf("%w: decode failed: %v", searcherr.ErrProviderMalformed, err))
		return nil
	}
	series := parsed.Data.SearchForTerm.PodcastSeries
	out := make([]catalog.PodcastItem, 0, len(series))
	for _, s := range series {
		out = append(out, normalizeGraphQLSeries(s, a.Name()))
	}
	return out
}

func normalizeGraphQLSeries(s graphQLPodcastSeries, source catalog.ProviderName) catalog.PodcastItem {
	explicit := catalog.ExplicitFalse
	if s.IsExplicit {
		explicit = catalog.ExplicitTrue
	}
	var episodeCount *int
	if s.EpisodeCount > 0 {
		n := s.EpisodeCount
		episodeCount = &n
	}
	return catalog.PodcastItem{
		ID:              s.UUID,
		Title:           s.Name,
		Description:     s.Description,
		ArtworkURL:      s.ImageURL,
		FeedURL:         s.RSSURL,
		ITunesID:        s.ITunesID,
		Categories:      catalog.NewStringSet(s.Genres...),
		EpisodeCount:    episodeCount,
		Explicit:        explicit,
		Source:          source,
		SourceProviders: catalog.NewStringSet(string(source)),
	}
}
