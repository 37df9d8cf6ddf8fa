// Package feedparser decodes an XML podcast feed (RSS 2.0 with the iTunes
// namespace) into a PodcastItem and its episode list, the narrow-contract
// collaborator kept separate from the JSON-speaking provider
// adapters. Field shapes follow the unified Feed/FeedItem/Enclosure model
// the pack's rss package uses, trimmed to the channel/item fields the
// catalog needs.
package feedparser

import (
	"bytes"
	"encoding/xml"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/net/html/charset"

	"github.com/mediadirectory/searchcore/internal/catalog"
	"github.com/mediadirectory/searchcore/internal/searcherr"
)

const itunesNS = "http://www.itunes.com/dtds/podcast-1.0.dtd"

type rssFeed struct {
	Channel rssChannel `xml:"channel"`
}

// ITunesImage precedes Image in rssChannel: encoding/xml gives an element to
// the first matching field, and the namespace-free Image tag also matches
// itunes:image.
type rssChannel struct {
	Title       string        `xml:"title"`
	Link        string        `xml:"link"`
	Description string        `xml:"description"`
	Language    string        `xml:"language"`
	Author      string        `xml:"http://www.itunes.com/dtds/podcast-1.0.dtd author"`
	ITunesImage rssItunesHref `xml:"http://www.itunes.com/dtds/podcast-1.0.dtd image"`
	Image       rssImage      `xml:"image"`
	Explicit    string        `xml:"http://www.itunes.com/dtds/podcast-1.0.dtd explicit"`
	Categories  []rssCategory `xml:"http://www.itunes.com/dtds/podcast-1.0.dtd category"`
	// Items is populated whether the feed carries zero, one, or many <item>
	// elements; encoding/xml always collects repeated siblings into a slice.
	Items []rssItem `xml:"item"`
}

type rssImage struct {
	URL string `xml:"url"`
}

type rssItunesHref struct {
	Href string `xml:"href,attr"`
}

type rssCategory struct {
	Text string `xml:"text,attr"`
}

type rssItem struct {
	Title       string        `xml:"title"`
	Description string        `xml:"description"`
	GUID        string        `xml:"guid"`
	PubDate     string        `xml:"pubDate"`
	Duration    string        `xml:"duration"`
	Image       rssItunesHref `xml:"image"`
	Enclosure   *rssEnclosure `xml:"enclosure"`
}

type rssEnclosure struct {
	URL string `xml:"url,attr"`
}

// ParseFeed decodes data as an RSS podcast feed fetched from feedURL,
// returning the channel-level PodcastItem and its episodes (ordered as they
// appeared in the document). Items without an enclosure are skipped. The
// podcast id is a version-5 UUID derived from feedURL, so parsing the same
// feed twice yields an identical id and, given identical bytes, an
// identical PodcastItem and episode list.
func ParseFeed(data []byte, feedURL string) (catalog.PodcastItem, []catalog.EpisodeItem, error) {
	decoder := xml.NewDecoder(bytes.NewReader(data))
	decoder.CharsetReader = charset.NewReaderLabel

	var doc rssFeed
	if err := decoder.Decode(&doc); err != nil {
		return catalog.PodcastItem{}, nil, searcherr.ErrFeedInvalid
	}
	if doc.Channel.Title == "" && len(doc.Channel.Items) == 0 {
		return catalog.PodcastItem{}, nil, searcherr.ErrFeedInvalid
	}

	podcastID := uuid.NewSHA1(uuid.NameSpaceURL, []byte(feedURL)).String()

	artwork := doc.Channel.ITunesImage.Href
	if artwork == "" {
		artwork = doc.Channel.Image.URL
	}

	categories := catalog.NewStringSet()
	for _, c := range doc.Channel.Categories {
		if c.Text != "" {
			categories.Add(c.Text)
		}
	}

	episodeCount := len(doc.Channel.Items)

	podcast := catalog.PodcastItem{
		ID:           podcastID,
		Title:        strings.TrimSpace(doc.Channel.Title),
		Author:       strings.TrimSpace(doc.Channel.Author),
		Description:  strings.TrimSpace(doc.Channel.Description),
		ArtworkURL:   artwork,
		FeedURL:      feedURL,
		Categories:   categories,
		EpisodeCount: &episodeCount,
		Language:     doc.Channel.Language,
		WebsiteURL:   doc.Channel.Link,
		Explicit:     parseExplicit(doc.Channel.Explicit),
	}

	episodes := make([]catalog.EpisodeItem, 0, len(doc.Channel.Items))
	for _, item := range doc.Channel.Items {
		if item.Enclosure == nil || item.Enclosure.URL == "" {
			continue
		}
		guid := strings.TrimSpace(item.GUID)
		if guid == "" {
			guid = item.Enclosure.URL
		}
		episodeArtwork := item.Image.Href
		if episodeArtwork == "" {
			episodeArtwork = artwork
		}
		episodes = append(episodes, catalog.EpisodeItem{
			GUID:        guid,
			ParentID:    podcastID,
			Title:       strings.TrimSpace(item.Title),
			Description: strings.TrimSpace(item.Description),
			AudioURL:    item.Enclosure.URL,
			DurationSec: parseDurationSeconds(item.Duration),
			ArtworkURL:  episodeArtwork,
			PublishedAt: parsePubDate(item.PubDate),
		})
	}

	return podcast, episodes, nil
}

func parseExplicit(v string) catalog.Explicit {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "yes", "true", "explicit":
		return catalog.ExplicitTrue
	case "no", "false", "clean":
		return catalog.ExplicitFalse
	default:
		return catalog.ExplicitUnknown
	}
}

// parseDurationSeconds accepts a plain seconds integer, "MM:SS", or
// "HH:MM:SS". An unparseable value yields nil rather than failing the
// episode.
func parseDurationSeconds(v string) *int {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	if n, err := strconv.Atoi(v); err == nil && n >= 0 {
		return &n
	}
	parts := strings.Split(v, ":")
	var nums []int
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil
		}
		nums = append(nums, n)
	}
	var total int
	switch len(nums) {
	case 2: // MM:SS
		total = nums[0]*60 + nums[1]
	case 3: // HH:MM:SS
		total = nums[0]*3600 + nums[1]*60 + nums[2]
	default:
		return nil
	}
	return &total
}

var pubDateLayouts = []string{
	time.RFC1123Z,
	time.RFC1123,
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"Mon, 2 Jan 2006 15:04:05 MST",
	time.RFC3339,
}

func parsePubDate(v string) time.Time {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}
	}
	for _, layout := range pubDateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t
		}
	}
	return time.Time{}
}
