package rank

import (
	"testing"

	"github.com/mediadirectory/searchcore/internal/catalog"
)

func priorities(m map[catalog.ProviderName]int) PriorityOf {
	return func(p catalog.ProviderName) int {
		if v, ok := m[p]; ok {
			return v
		}
		return 999
	}
}

func TestStationsSortsByPriorityThenPopularityThenName(t *testing.T) {
	p := priorities(map[catalog.ProviderName]int{
		catalog.ProviderCommunityRadio:  1,
		catalog.ProviderCommercialRadio: 2,
	})
	items := []catalog.StationItem{
		{Name: "Zebra FM", Votes: 1, SourceProviders: catalog.NewStringSet(string(catalog.ProviderCommercialRadio))},
		{Name: "Alpha FM", Votes: 100, SourceProviders: catalog.NewStringSet(string(catalog.ProviderCommunityRadio))},
		{Name: "Beta FM", Votes: 1, SourceProviders: catalog.NewStringSet(string(catalog.ProviderCommunityRadio))},
	}
	out := Stations(items, p)
	if out[0].Name != "Alpha FM" || out[1].Name != "Beta FM" || out[2].Name != "Zebra FM" {
		names := []string{out[0].Name, out[1].Name, out[2].Name}
		t.Fatalf("order = %v, want [Alpha FM Beta FM Zebra FM]", names)
	}
}

func TestStationsStableOnTies(t *testing.T) {
	p := priorities(nil)
	items := []catalog.StationItem{
		{ID: "first", Name: "Same", SourceProviders: catalog.NewStringSet()},
		{ID: "second", Name: "Same", SourceProviders: catalog.NewStringSet()},
	}
	out := Stations(items, p)
	if out[0].ID != "first" || out[1].ID != "second" {
		t.Fatalf("expected stable order preserved on full tie, got %q then %q", out[0].ID, out[1].ID)
	}
}

func TestPodcastsSortsByPopularityDescending(t *testing.T) {
	p := priorities(nil)
	items := []catalog.PodcastItem{
		{Title: "Low", PopularityScore: 1, SourceProviders: catalog.NewStringSet()},
		{Title: "High", PopularityScore: 50, SourceProviders: catalog.NewStringSet()},
	}
	out := Podcasts(items, p)
	if out[0].Title != "High" {
		t.Fatalf("out[0].Title = %q, want %q", out[0].Title, "High")
	}
}

func TestDoesNotMutateInput(t *testing.T) {
	p := priorities(nil)
	items := []catalog.StationItem{
		{Name: "B", SourceProviders: catalog.NewStringSet()},
		{Name: "A", SourceProviders: catalog.NewStringSet()},
	}
	_ = Stations(items, p)
	if items[0].Name != "B" {
		t.Error("input slice must not be reordered in place")
	}
}
