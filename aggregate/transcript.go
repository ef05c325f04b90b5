package aggregate

import (
	"go-commentary/types"
	"math"
	"sort"
)

const (
	DefaultExcerptCap = 10
	DefaultTopN       = 10
)

type Options struct {
	ExcerptCap int
	// TopN caps adjectives and phrases in a summary.
	TopN int
}

func (o Options) withDefaults() Options {
	if o.ExcerptCap <= 0 {
		o.ExcerptCap = DefaultExcerptCap
	}
	if o.TopN <= 0 {
		o.TopN = DefaultTopN
	}
	return o
}

// Observation is everything the pipeline learned about one mention.
// A nil Sentiment means the sentiment service was unavailable for its window.
type Observation struct {
	Mention   types.Mention
	Window    types.ContextWindow
	Sentiment *types.MentionSentiment
	Patterns  types.WindowPatterns
}

// Transcript folds one player's observations into an AnalysisResult.
// Observations without sentiment are counted as unavailable and otherwise ignored.
func Transcript(transcriptID string, player types.Player, obs []Observation, opts Options) types.AnalysisResult {
	opts = opts.withDefaults()
	result := types.AnalysisResult{
		TranscriptID: transcriptID,
		PlayerID:     player.ID,
		PlayerName:   player.Name,
		Adjectives:   []types.AdjectiveDetail{},
		Phrases:      []types.PhraseDetail{},
		Excerpts:     []types.ExcerptDetail{},
	}

	var used []Observation
	for _, o := range obs {
		if o.Mention.PlayerID != player.ID {
			continue
		}
		if o.Sentiment == nil {
			result.UnavailableMentions++
			continue
		}
		used = append(used, o)
	}
	sort.SliceStable(used, func(i, j int) bool { return used[i].Mention.Span.Start < used[j].Mention.Span.Start })

	result.MentionCount = len(used)
	if len(used) == 0 {
		return result
	}

	var scoreSum, confSum float64
	adjectives := newCounter()
	phrases := newCounter()
	for _, o := range used {
		scoreSum += o.Sentiment.Score
		confSum += o.Mention.Confidence * o.Sentiment.Confidence

		s := o.Sentiment.Score
		for _, a := range o.Patterns.Adjectives {
			adjectives.add(a, 1, &s, o.Window.Text)
		}
		for _, p := range o.Patterns.Phrases {
			phrases.add(p, 1, &s, o.Window.Text)
		}
		result.Excerpts = append(result.Excerpts, types.ExcerptDetail{
			Text:      o.Window.Text,
			Sentiment: s,
			Position:  o.Mention.Span.Start,
		})
	}

	n := float64(len(used))
	score := types.ClampScore(scoreSum / n)
	result.SentimentScore = &score
	result.SentimentLabel = types.LabelFor(score)
	result.Confidence = types.ClampUnit(confSum / n)
	result.Adjectives = adjectives.adjectiveDetails(0)
	result.Phrases = phrases.phraseDetails(0)

	sort.SliceStable(result.Excerpts, func(i, j int) bool {
		ai, aj := math.Abs(result.Excerpts[i].Sentiment), math.Abs(result.Excerpts[j].Sentiment)
		if ai != aj {
			return ai > aj
		}
		return result.Excerpts[i].Position < result.Excerpts[j].Position
	})
	if len(result.Excerpts) > opts.ExcerptCap {
		result.Excerpts = result.Excerpts[:opts.ExcerptCap]
	}
	return result
}

// Players builds a result for every roster player with at least one mention,
// in roster order. includeUnmentioned adds empty results for the rest.
func Players(transcriptID string, roster *types.Roster, obs []Observation, opts Options, includeUnmentioned bool) []types.AnalysisResult {
	byPlayer := make(map[string][]Observation)
	for _, o := range obs {
		byPlayer[o.Mention.PlayerID] = append(byPlayer[o.Mention.PlayerID], o)
	}

	results := []types.AnalysisResult{}
	for _, p := range roster.Players() {
		playerObs, ok := byPlayer[p.ID]
		if !ok && !includeUnmentioned {
			continue
		}
		results = append(results, Transcript(transcriptID, p, playerObs, opts))
	}
	return results
}

// counter accumulates counts, a count-weighted sentiment and the first
// context seen for each key.
type counter struct {
	entries map[string]*entry
}

type entry struct {
	count       int
	weightedSum float64
	weight      int
	context     string
}

func newCounter() *counter {
	return &counter{entries: make(map[string]*entry)}
}

func (c *counter) add(key string, count int, sentiment *float64, context string) {
	e, ok := c.entries[key]
	if !ok {
		e = &entry{context: context}
		c.entries[key] = e
	}
	e.count += count
	if sentiment != nil {
		e.weightedSum += *sentiment * float64(count)
		e.weight += count
	}
	if e.context == "" {
		e.context = context
	}
}

func (e *entry) sentiment() *float64 {
	if e.weight == 0 {
		return nil
	}
	s := types.ClampScore(e.weightedSum / float64(e.weight))
	return &s
}

// keys orders by count descending then lexicographically; limit 0 keeps all.
func (c *counter) keys(limit int) []string {
	keys := make([]string, 0, len(c.entries))
	for k := range c.entries {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		ci, cj := c.entries[keys[i]].count, c.entries[keys[j]].count
		if ci != cj {
			return ci > cj
		}
		return keys[i] < keys[j]
	})
	if limit > 0 && len(keys) > limit {
		keys = keys[:limit]
	}
	return keys
}

func (c *counter) adjectiveDetails(limit int) []types.AdjectiveDetail {
	out := []types.AdjectiveDetail{}
	for _, k := range c.keys(limit) {
		e := c.entries[k]
		out = append(out, types.AdjectiveDetail{Word: k, Count: e.count, Sentiment: e.sentiment()})
	}
	return out
}

func (c *counter) phraseDetails(limit int) []types.PhraseDetail {
	out := []types.PhraseDetail{}
	for _, k := range c.keys(limit) {
		e := c.entries[k]
		out = append(out, types.PhraseDetail{Phrase: k, Count: e.count, Context: e.context, Sentiment: e.sentiment()})
	}
	return out
}
