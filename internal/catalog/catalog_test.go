package catalog

import "testing"

func TestStringSetDedupeCaseInsensitive(t *testing.T) {
	s := NewStringSet("Rock", "rock", "ROCK", "Jazz")
	if s.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", s.Len())
	}
	values := s.Values()
	if values[0] != "Rock" {
		t.Errorf("first value = %q, want original case %q preserved", values[0], "Rock")
	}
}

func TestStringSetUnion(t *testing.T) {
	a := NewStringSet("Rock", "Pop")
	b := NewStringSet("pop", "Jazz")
	a.Union(b)
	if a.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", a.Len())
	}
}

func TestStringSetIntersects(t *testing.T) {
	a := NewStringSet("A", "B")
	b := NewStringSet("b", "C")
	if !a.Intersects(b) {
		t.Error("expected intersection on case-insensitive match")
	}
	c := NewStringSet("D")
	if a.Intersects(c) {
		t.Error("did not expect intersection")
	}
}

func TestStationPopularitySumsVotesAndClicks(t *testing.T) {
	s := &StationItem{Votes: 10, ClickCount: 5}
	if got := s.Popularity(); got != 15 {
		t.Errorf("Popularity() = %d, want 15", got)
	}
}

func TestPodcastPopularityNeverNegative(t *testing.T) {
	p := &PodcastItem{PopularityScore: -3}
	if got := p.Popularity(); got != 0 {
		t.Errorf("Popularity() = %d, want 0", got)
	}
}

func TestOrExplicitConservativeTrue(t *testing.T) {
	if got := OrExplicit(ExplicitFalse, ExplicitTrue); got != ExplicitTrue {
		t.Errorf("OrExplicit(false, true) = %v, want ExplicitTrue", got)
	}
	if got := OrExplicit(ExplicitUnknown, ExplicitFalse); got != ExplicitFalse {
		t.Errorf("OrExplicit(unknown, false) = %v, want ExplicitFalse", got)
	}
}

func TestProviderConfigRequiresAuth(t *testing.T) {
	c := ProviderConfig{Name: ProviderIndexHMAC}
	if !c.RequiresAuth() {
		t.Error("index-hmac with no key/secret should require auth")
	}
	c.APIKey, c.APISecret = "k", "s"
	if c.RequiresAuth() {
		t.Error("index-hmac with key+secret should not require auth")
	}
}
