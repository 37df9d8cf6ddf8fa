// Package dedupe implements identity resolution and metadata merge across
// provider results. Stations are keyed by normalized stream
// URL; podcasts by feed URL, then iTunes catalog id, then title+author.
package dedupe

import (
	"strings"

	"github.com/mediadirectory/searchcore/internal/catalog"
	"github.com/mediadirectory/searchcore/internal/safeurl"
)

// Stations merges a flat list of station candidates into a canonical list.
// Items with an empty StreamURL are discarded before identity resolution
// (it cannot play). Input order is preserved as merge order, so
// callers must pass items in provider-priority order for atomic fields to
// fall to the highest-priority contributor.
func Stations(items []catalog.StationItem) []catalog.StationItem {
	order := make([]string, 0, len(items))
	byKey := make(map[string]*catalog.StationItem, len(items))

	for _, incoming := range items {
		item := incoming
		if strings.TrimSpace(item.StreamURL) == "" || !safeurl.IsHTTPOrHTTPS(item.StreamURL) {
			continue
		}
		key := normalizeStreamURL(item.StreamURL)
		if existing, ok := byKey[key]; ok {
			mergeStation(existing, &item)
			continue
		}
		stored := item
		byKey[key] = &stored
		order = append(order, key)
	}

	out := make([]catalog.StationItem, 0, len(order))
	for _, k := range order {
		out = append(out, *byKey[k])
	}
	return out
}

// normalizeStreamURL strips scheme, lowercases host+path, and trims a
// trailing slash, so "http://x/stream" and "HTTPS://X/stream/" collide.
func normalizeStreamURL(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	if idx := strings.Index(s, "://"); idx >= 0 {
		s = s[idx+3:]
	}
	s = strings.TrimSuffix(s, "/")
	return s
}

func mergeStation(existing, incoming *catalog.StationItem) {
	if existing.Name == "" {
		existing.Name = incoming.Name
	}
	if existing.HomepageURL == "" {
		existing.HomepageURL = incoming.HomepageURL
	}
	if existing.Country == "" {
		existing.Country = incoming.Country
	}
	if existing.CountryCode == "" {
		existing.CountryCode = incoming.CountryCode
	}
	if existing.State == "" {
		existing.State = incoming.State
	}
	if existing.City == "" {
		existing.City = incoming.City
	}
	if existing.Language == "" {
		existing.Language = incoming.Language
	}
	if existing.Codec == "" {
		existing.Codec = incoming.Codec
	}
	if existing.LogoURL == "" {
		existing.LogoURL = incoming.LogoURL
	}
	if existing.BitrateKbps == 0 {
		existing.BitrateKbps = incoming.BitrateKbps
	}
	if incoming.LastChanged.After(existing.LastChanged) {
		existing.LastChanged = incoming.LastChanged
	}

	if existing.Tags == nil {
		existing.Tags = catalog.NewStringSet()
	}
	existing.Tags.Union(incoming.Tags)

	existing.Votes += incoming.Votes
	existing.ClickCount += incoming.ClickCount

	if existing.SourceProviders == nil {
		existing.SourceProviders = catalog.NewStringSet()
	}
	existing.SourceProviders.Union(incoming.SourceProviders)
	existing.SourceProviders.Add(string(incoming.Source))
	// source (atomic, highest-priority-wins) is left unchanged.
}

// Podcasts merges a flat list of podcast candidates into a canonical list.
// Identity falls back in descending confidence: feed URL, iTunes id, then
// normalized title+author. Input order is merge order (provider priority).
func Podcasts(items []catalog.PodcastItem) []catalog.PodcastItem {
	order := make([]string, 0, len(items))
	byKey := make(map[string]*catalog.PodcastItem, len(items))
	// aliases lets a later item that matches via a *different* key tier
	// (e.g. title+author) still find an existing record keyed by feed URL,
	// once any one of its identity candidates has been seen before.
	aliases := make(map[string]string, len(items))

	for _, incoming := range items {
		item := incoming
		keys := podcastIdentityKeys(&item)
		if len(keys) == 0 {
			// No usable identity at all; treat as unique by a private key.
			keys = []string{"unidentified:" + item.ID + ":" + string(item.Source)}
		}

		var canonicalKey string
		for _, k := range keys {
			if real, ok := aliases[k]; ok {
				canonicalKey = real
				break
			}
		}

		if canonicalKey == "" {
			canonicalKey = keys[0]
			stored := item
			byKey[canonicalKey] = &stored
			order = append(order, canonicalKey)
		} else {
			mergePodcast(byKey[canonicalKey], &item)
		}
		for _, k := range keys {
			aliases[k] = canonicalKey
		}
	}

	out := make([]catalog.PodcastItem, 0, len(order))
	for _, k := range order {
		out = append(out, *byKey[k])
	}
	return out
}

// podcastIdentityKeys returns every identity candidate for item, most
// confident first: feed URL, iTunes id, normalized title+author.
func podcastIdentityKeys(item *catalog.PodcastItem) []string {
	var keys []string
	if f := strings.TrimSpace(item.FeedURL); f != "" {
		keys = append(keys, "feed:"+strings.ToLower(f))
	}
	if id := strings.TrimSpace(item.ITunesID); id != "" {
		keys = append(keys, "itunes:"+strings.ToLower(id))
	}
	if ta := normalizeTitleAuthor(item.Title, item.Author); ta != "-" {
		keys = append(keys, "titleauthor:"+ta)
	}
	return keys
}

func normalizeTitleAuthor(title, author string) string {
	norm := func(s string) string {
		s = strings.ToLower(strings.TrimSpace(s))
		return strings.Join(strings.Fields(s), " ")
	}
	return norm(title) + "-" + norm(author)
}

func mergePodcast(existing, incoming *catalog.PodcastItem) {
	if existing.Title == "" {
		existing.Title = incoming.Title
	}
	if existing.Author == "" {
		existing.Author = incoming.Author
	}
	if len(incoming.Description) > len(existing.Description) {
		existing.Description = incoming.Description
	}
	if existing.ArtworkURL == "" {
		existing.ArtworkURL = incoming.ArtworkURL
	}
	if existing.FeedURL == "" {
		existing.FeedURL = incoming.FeedURL
	}
	if existing.ITunesID == "" {
		existing.ITunesID = incoming.ITunesID
	}
	if existing.Language == "" {
		existing.Language = incoming.Language
	}
	if existing.WebsiteURL == "" {
		existing.WebsiteURL = incoming.WebsiteURL
	}
	if incoming.LastUpdated.After(existing.LastUpdated) {
		existing.LastUpdated = incoming.LastUpdated
	}
	if existing.EpisodeCount == nil {
		existing.EpisodeCount = incoming.EpisodeCount
	}

	if existing.Categories == nil {
		existing.Categories = catalog.NewStringSet()
	}
	existing.Categories.Union(incoming.Categories)

	existing.PopularityScore += incoming.PopularityScore
	existing.Explicit = catalog.OrExplicit(existing.Explicit, incoming.Explicit)

	if existing.SourceProviders == nil {
		existing.SourceProviders = catalog.NewStringSet()
	}
	existing.SourceProviders.Union(incoming.SourceProviders)
	existing.SourceProviders.Add(string(incoming.Source))
}
