package types

import "testing"

func TestLabelFor(t *testing.T) {
	tests := []struct {
		score float64
		want  SentimentLabel
	}{
		{0.6, Positive},
		{0.1001, Positive},
		{0.1, Neutral},
		{0, Neutral},
		{-0.1, Neutral},
		{-0.1001, Negative},
		{-1, Negative},
	}
	for _, tt := range tests {
		if got := LabelFor(tt.score); got != tt.want {
			t.Errorf("LabelFor(%v) = %s, want %s", tt.score, got, tt.want)
		}
	}
	if got := LabelForPtr(nil); got != "" {
		t.Errorf("expected empty label for nil score, got %q", got)
	}
}

func TestPlayerAddAliasCaseInsensitive(t *testing.T) {
	p := Player{ID: "p1", Name: "LeBron James", Aliases: []string{"King James"}}
	if p.AddAlias("king james") {
		t.Fatalf("duplicate alias should not be added")
	}
	if p.AddAlias("lebron james") {
		t.Fatalf("the player's own name is not an alias")
	}
	if !p.AddAlias("LBJ") {
		t.Fatalf("new alias should be added")
	}
	if len(p.Aliases) != 2 {
		t.Fatalf("expected 2 aliases, got %v", p.Aliases)
	}
	if p.Surname() != "James" {
		t.Errorf("expected surname James, got %s", p.Surname())
	}
}

func TestRosterOrderAndVersion(t *testing.T) {
	a := Player{ID: "a", Name: "John Smith", Team: "Lakers"}
	b := Player{ID: "b", Name: "Will Smith", Team: "Celtics"}

	r := NewRoster([]Player{a, b, a})
	if r.Len() != 2 {
		t.Fatalf("duplicate IDs should be ignored, got %d players", r.Len())
	}
	if r.Order("b") != 1 || r.Order("zzz") != -1 {
		t.Errorf("unexpected registration order")
	}

	same := NewRoster([]Player{a, b})
	if r.Version() != same.Version() {
		t.Errorf("equal rosters should share a version")
	}

	b.Aliases = []string{"Big Will"}
	changed := NewRoster([]Player{a, b})
	if changed.Version() == r.Version() {
		t.Errorf("alias change should change the version")
	}

	snap := r.Snapshot()
	players := snap.Players()
	players[0].Name = "mutated"
	if p, _ := snap.Get("a"); p.Name != "John Smith" {
		t.Errorf("Players() must return a copy")
	}
}

func TestSpanOverlap(t *testing.T) {
	s := Span{Start: 5, End: 10}
	if !s.Overlaps(Span{Start: 9, End: 12}) {
		t.Errorf("expected overlap")
	}
	if s.Overlaps(Span{Start: 10, End: 12}) {
		t.Errorf("half-open spans touching at the edge must not overlap")
	}
}
