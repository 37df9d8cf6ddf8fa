// Package rank orders merged items by a three-key compare:
// ascending min-priority among contributing providers, descending
// popularity, ascending display name. Sort is stable.
package rank

import (
	"sort"
	"strings"

	"github.com/mediadirectory/searchcore/internal/catalog"
)

// PriorityOf looks up a provider's configured priority.
type PriorityOf func(catalog.ProviderName) int

// minPriority returns the smallest configured priority among providers,
// falling back to a sentinel that sorts last when providers is empty or
// none of its members are known to priorityOf.
func minPriority(providers *catalog.StringSet, priorityOf PriorityOf) int {
	const unranked = int(^uint(0) >> 1) // max int: unranked providers sort last
	if providers == nil {
		return unranked
	}
	best := unranked
	for _, name := range providers.Values() {
		p := priorityOf(catalog.ProviderName(name))
		if p < best {
			best = p
		}
	}
	return best
}

// Stations orders merged station items in place order (a new slice is
// returned; the input is not mutated) using votes+clicks as popularity.
func Stations(items []catalog.StationItem, priorityOf PriorityOf) []catalog.StationItem {
	out := make([]catalog.StationItem, len(items))
	copy(out, items)
	sort.SliceStable(out, func(i, j int) bool {
		pi, pj := minPriority(out[i].SourceProviders, priorityOf), minPriority(out[j].SourceProviders, priorityOf)
		if pi != pj {
			return pi < pj
		}
		vi, vj := out[i].Popularity(), out[j].Popularity()
		if vi != vj {
			return vi > vj
		}
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out
}

// Podcasts orders merged podcast items using the merged PopularityScore.
func Podcasts(items []catalog.PodcastItem, priorityOf PriorityOf) []catalog.PodcastItem {
	out := make([]catalog.PodcastItem, len(items))
	copy(out, items)
	sort.SliceStable(out, func(i, j int) bool {
		pi, pj := minPriority(out[i].SourceProviders, priorityOf), minPriority(out[j].SourceProviders, priorityOf)
		if pi != pj {
			return pi < pj
		}
		vi, vj := out[i].Popularity(), out[j].Popularity()
		if vi != vj {
			return vi > vj
		}
		return strings.ToLower(out[i].Title) < strings.ToLower(out[j].Title)
	})
	return out
}
