package resolver

import (
	"go-commentary/logger"
	"go-commentary/textutil"
	"go-commentary/types"
	"regexp"
	"sort"
	"strings"
)

const (
	DefaultSurnameRadius  = 15
	DefaultFuzzyThreshold = 0.85
	minScanLen            = 3
)

// sportsTerms are words the entity pass sometimes tags as people.
var sportsTerms = map[string]bool{
	"goal": true, "score": true, "point": true, "basket": true, "touchdown": true, "home run": true,
	"strike": true, "ball": true, "out": true, "safe": true, "foul": true, "penalty": true, "timeout": true,
	"quarter": true, "half": true, "period": true, "inning": true, "set": true, "game": true, "match": true,
	"championship": true, "playoff": true, "finals": true, "super bowl": true, "world series": true,
	"mvp": true, "rookie": true, "veteran": true, "coach": true, "ref": true, "referee": true, "umpire": true,
}

var titlePattern = regexp.MustCompile(`(?i)^(mr|mrs|ms|dr|coach|captain|sir)\.?\s+`)

type Options struct {
	SurnameRadius  int
	FuzzyThreshold float64
	// ScanRoster adds roster names the entity pass missed.
	ScanRoster bool
}

type Resolver struct {
	opts       Options
	strategies []Strategy
}

// Resolution is the full outcome of one resolve pass.
type Resolution struct {
	Mentions   []types.Mention
	Unresolved int
}

func New(opts Options) *Resolver {
	if opts.SurnameRadius <= 0 {
		opts.SurnameRadius = DefaultSurnameRadius
	}
	if opts.FuzzyThreshold <= 0 || opts.FuzzyThreshold > 1 {
		opts.FuzzyThreshold = DefaultFuzzyThreshold
	}
	return &Resolver{
		opts: opts,
		strategies: []Strategy{
			FullName{Radius: opts.SurnameRadius},
			Alias{Radius: opts.SurnameRadius},
			Surname{Radius: opts.SurnameRadius},
			Fuzzy{Threshold: opts.FuzzyThreshold},
		},
	}
}

// Resolve returns mentions ordered by span start. Unmatched candidates are dropped.
func (r *Resolver) Resolve(text string, candidates []types.Candidate, roster *types.Roster) []types.Mention {
	return r.ResolveDetailed(text, candidates, roster).Mentions
}

func (r *Resolver) ResolveDetailed(text string, candidates []types.Candidate, roster *types.Roster) Resolution {
	var res Resolution
	if roster.Len() == 0 || text == "" {
		res.Unresolved = len(candidates)
		return res
	}

	all := dedupe(candidates, len(text))
	if r.opts.ScanRoster {
		all = dedupe(append(all, ScanRoster(text, roster, all)...), len(text))
	}

	tokens := textutil.Tokenize(text)
	for _, c := range all {
		q, ok := prepare(text, c, tokens)
		if !ok {
			res.Unresolved++
			continue
		}

		matched := false
		for _, s := range r.strategies {
			m, ok := s.Match(q, roster)
			if !ok {
				continue
			}
			res.Mentions = append(res.Mentions, types.Mention{
				PlayerID:   m.PlayerID,
				Span:       q.Span,
				Surface:    q.Surface,
				Confidence: m.Confidence,
				Strategy:   s.Name(),
				Ambiguous:  m.Ambiguous,
			})
			matched = true
			break
		}
		if !matched {
			res.Unresolved++
		}
	}

	logger.Debug("resolved candidates", "candidates", len(all), "mentions", len(res.Mentions), "unresolved", res.Unresolved)
	return res
}

// prepare strips titles and possessives and rejects sports vocabulary.
func prepare(text string, c types.Candidate, tokens []textutil.Token) (Query, bool) {
	surface := c.Surface
	start := c.Span.Start
	if loc := titlePattern.FindStringIndex(surface); loc != nil {
		start += loc[1]
		surface = surface[loc[1]:]
	}
	trimmed := strings.TrimRight(surface, " \t\n.,;:!?")
	for _, suffix := range []string{"'s", "’s"} {
		trimmed = strings.TrimSuffix(trimmed, suffix)
	}
	end := start + len(trimmed)

	norm := strings.ToLower(strings.Join(strings.Fields(trimmed), " "))
	if norm == "" || sportsTerms[norm] {
		return Query{}, false
	}
	return Query{
		Surface: trimmed,
		Norm:    norm,
		Span:    types.Span{Start: start, End: end},
		Text:    text,
		Tokens:  tokens,
	}, true
}

// dedupe keeps the earliest, then longest, of any overlapping candidates and
// drops spans that do not fit the text.
func dedupe(candidates []types.Candidate, textLen int) []types.Candidate {
	sorted := make([]types.Candidate, 0, len(candidates))
	for _, c := range candidates {
		if c.Span.Start < 0 || c.Span.End > textLen || c.Span.Start >= c.Span.End {
			continue
		}
		sorted = append(sorted, c)
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Span.Start != sorted[j].Span.Start {
			return sorted[i].Span.Start < sorted[j].Span.Start
		}
		return sorted[i].Span.Len() > sorted[j].Span.Len()
	})

	out := sorted[:0]
	for _, c := range sorted {
		if len(out) > 0 && out[len(out)-1].Span.Overlaps(c.Span) {
			continue
		}
		out = append(out, c)
	}
	return out
}

// ScanRoster finds roster names and aliases in text that do not overlap existing candidates.
func ScanRoster(text string, roster *types.Roster, existing []types.Candidate) []types.Candidate {
	type pattern struct {
		re  *regexp.Regexp
		len int
	}
	var patterns []pattern
	for _, p := range roster.Players() {
		for _, n := range append([]string{p.Name}, p.Aliases...) {
			n = strings.TrimSpace(n)
			if len(n) < minScanLen {
				continue
			}
			patterns = append(patterns, pattern{re: regexp.MustCompile(`(?i)` + regexp.QuoteMeta(n)), len: len(n)})
		}
	}
	// full names before their shorter aliases
	sort.SliceStable(patterns, func(i, j int) bool { return patterns[i].len > patterns[j].len })

	taken := make([]types.Span, 0, len(existing))
	for _, c := range existing {
		taken = append(taken, c.Span)
	}

	var found []types.Candidate
	for _, p := range patterns {
		for _, loc := range p.re.FindAllStringIndex(text, -1) {
			if textutil.IsWordCharBefore(text, loc[0]) || textutil.IsWordChar(text, loc[1]) {
				continue
			}
			span := types.Span{Start: loc[0], End: loc[1]}
			if overlapsAny(span, taken) {
				continue
			}
			taken = append(taken, span)
			found = append(found, types.Candidate{Span: span, Surface: text[loc[0]:loc[1]]})
		}
	}
	sort.Slice(found, func(i, j int) bool { return found[i].Span.Start < found[j].Span.Start })
	return found
}

func overlapsAny(s types.Span, spans []types.Span) bool {
	for _, o := range spans {
		if s.Overlaps(o) {
			return true
		}
	}
	return false
}
