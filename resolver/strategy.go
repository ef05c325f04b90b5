package resolver

import (
	"go-commentary/textutil"
	"go-commentary/types"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
)

// Query is one cleaned-up candidate plus the transcript it came from.
type Query struct {
	Surface string
	Norm    string
	Span    types.Span
	Text    string
	Tokens  []textutil.Token
}

// Match is what a strategy proposes for a query.
type Match struct {
	PlayerID   string
	Confidence float64
	Ambiguous  bool
}

// Strategy maps a query against the roster. Strategies run in a fixed order
// and the first one that returns ok wins.
type Strategy interface {
	Name() string
	Match(q Query, roster *types.Roster) (Match, bool)
}

const (
	fullNameConfidence      = 1.0
	aliasConfidence         = 0.95
	uniqueSurnameConfidence = 0.9
	ambiguousCeiling        = 0.5
)

type FullName struct {
	Radius int
}

func (FullName) Name() string { return "full_name" }

func (s FullName) Match(q Query, roster *types.Roster) (Match, bool) {
	var ids []string
	for _, p := range roster.Players() {
		if strings.EqualFold(strings.Join(strings.Fields(p.Name), " "), q.Norm) {
			ids = append(ids, p.ID)
		}
	}
	return pick(ids, q, roster, s.Radius, fullNameConfidence)
}

type Alias struct {
	Radius int
}

func (Alias) Name() string { return "alias" }

func (s Alias) Match(q Query, roster *types.Roster) (Match, bool) {
	var ids []string
	for _, p := range roster.Players() {
		for _, a := range p.Aliases {
			if strings.EqualFold(strings.Join(strings.Fields(a), " "), q.Norm) {
				ids = append(ids, p.ID)
				break
			}
		}
	}
	return pick(ids, q, roster, s.Radius, aliasConfidence)
}

// Surname matches a single-word candidate against roster surnames and uses
// team keywords near the mention to choose between namesakes.
type Surname struct {
	Radius int
}

func (Surname) Name() string { return "surname" }

func (s Surname) Match(q Query, roster *types.Roster) (Match, bool) {
	if strings.Contains(q.Norm, " ") {
		return Match{}, false
	}
	var ids []string
	for _, p := range roster.Players() {
		if strings.EqualFold(p.Surname(), q.Norm) {
			ids = append(ids, p.ID)
		}
	}
	if len(ids) == 1 {
		p, _ := roster.Get(ids[0])
		conf := uniqueSurnameConfidence
		if contextScore(q, p, s.Radius) > 0 {
			conf = 1.0
		}
		return Match{PlayerID: ids[0], Confidence: conf}, true
	}
	return pick(ids, q, roster, s.Radius, 1.0)
}

// Fuzzy accepts the most similar name or alias at or above Threshold.
// Equal similarity falls back to registration order.
type Fuzzy struct {
	Threshold float64
}

func (Fuzzy) Name() string { return "fuzzy" }

func (s Fuzzy) Match(q Query, roster *types.Roster) (Match, bool) {
	best := Match{}
	for _, p := range roster.Players() {
		names := append([]string{p.Name}, p.Aliases...)
		for _, n := range names {
			sim := Similarity(q.Norm, strings.ToLower(strings.Join(strings.Fields(n), " ")))
			if sim >= s.Threshold && sim > best.Confidence {
				best = Match{PlayerID: p.ID, Confidence: sim}
			}
		}
	}
	return best, best.PlayerID != ""
}

// Similarity is 1 - levenshtein/len(longer), in runes.
func Similarity(a, b string) float64 {
	la, lb := len([]rune(a)), len([]rune(b))
	longest := la
	if lb > longest {
		longest = lb
	}
	if longest == 0 {
		return 0
	}
	d := levenshtein.ComputeDistance(a, b)
	return 1 - float64(d)/float64(longest)
}

// pick settles a set of players that matched equally well on the name alone.
func pick(ids []string, q Query, roster *types.Roster, radius int, conf float64) (Match, bool) {
	switch len(ids) {
	case 0:
		return Match{}, false
	case 1:
		return Match{PlayerID: ids[0], Confidence: conf}, true
	}
	sort.SliceStable(ids, func(i, j int) bool { return roster.Order(ids[i]) < roster.Order(ids[j]) })

	bestScore, bestID, tied := 0, "", false
	for _, id := range ids {
		p, _ := roster.Get(id)
		score := contextScore(q, p, radius)
		switch {
		case score > bestScore:
			bestScore, bestID, tied = score, id, false
		case score == bestScore && score > 0:
			tied = true
		}
	}
	if bestScore > 0 && !tied {
		return Match{PlayerID: bestID, Confidence: conf}, true
	}

	// no usable context: first by registration order, flagged
	ambiguous := 1 / float64(len(ids))
	if ambiguous > ambiguousCeiling {
		ambiguous = ambiguousCeiling
	}
	return Match{PlayerID: ids[0], Confidence: ambiguous, Ambiguous: true}, true
}

// contextScore counts team keywords within radius tokens of the query.
func contextScore(q Query, p types.Player, radius int) int {
	keywords := teamKeywords(p.Team)
	if len(keywords) == 0 {
		return 0
	}
	first, last, ok := textutil.Overlapping(q.Tokens, q.Span.Start, q.Span.End)
	if !ok {
		return 0
	}
	lo, hi := first-radius, last+radius
	if lo < 0 {
		lo = 0
	}
	if hi > len(q.Tokens)-1 {
		hi = len(q.Tokens) - 1
	}

	score := 0
	for i := lo; i <= hi; i++ {
		if i >= first && i <= last {
			continue
		}
		if keywords[q.Tokens[i].Norm] {
			score++
		}
	}
	return score
}

const minTeamKeywordLen = 4

func teamKeywords(team string) map[string]bool {
	keywords := make(map[string]bool)
	for _, w := range strings.Fields(team) {
		w = textutil.Normalize(w)
		if len(w) >= minTeamKeywordLen {
			keywords[w] = true
		}
	}
	return keywords
}
