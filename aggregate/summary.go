package aggregate

import (
	"go-commentary/types"
	"sort"
)

// Summarize merges a player's per-transcript results. Results are ordered
// by transcript first so any permutation of the input gives the same summary.
func Summarize(player types.Player, results []types.AnalysisResult, opts Options) types.PlayerAnalysisSummary {
	opts = opts.withDefaults()
	summary := types.PlayerAnalysisSummary{
		PlayerID:      player.ID,
		PlayerName:    player.Name,
		Team:          player.Team,
		TopAdjectives: []types.AdjectiveDetail{},
		TopPhrases:    []types.PhraseDetail{},
	}

	var own []types.AnalysisResult
	for _, r := range results {
		if r.PlayerID == player.ID {
			own = append(own, r)
		}
	}
	sort.SliceStable(own, func(i, j int) bool { return resultLess(own[i], own[j]) })

	var weighted float64
	adjectives := newCounter()
	phrases := newCounter()
	for _, r := range own {
		if r.MentionCount == 0 || r.SentimentScore == nil {
			continue
		}
		summary.TotalMentions += r.MentionCount
		summary.TranscriptCount++
		weighted += *r.SentimentScore * float64(r.MentionCount)

		for _, a := range r.Adjectives {
			adjectives.add(a.Word, a.Count, a.Sentiment, "")
		}
		for _, p := range r.Phrases {
			phrases.add(p.Phrase, p.Count, p.Sentiment, p.Context)
		}
	}

	if summary.TotalMentions > 0 {
		avg := types.ClampScore(weighted / float64(summary.TotalMentions))
		summary.AverageSentiment = &avg
		summary.SentimentLabel = types.LabelFor(avg)
	}
	summary.TopAdjectives = adjectives.adjectiveDetails(opts.TopN)
	summary.TopPhrases = phrases.phraseDetails(opts.TopN)
	return summary
}

// SummarizeAll returns one summary per roster player, in roster order.
func SummarizeAll(roster *types.Roster, results []types.AnalysisResult, opts Options) []types.PlayerAnalysisSummary {
	byPlayer := make(map[string][]types.AnalysisResult)
	for _, r := range results {
		byPlayer[r.PlayerID] = append(byPlayer[r.PlayerID], r)
	}
	summaries := make([]types.PlayerAnalysisSummary, 0, roster.Len())
	for _, p := range roster.Players() {
		summaries = append(summaries, Summarize(p, byPlayer[p.ID], opts))
	}
	return summaries
}

// TopPlayers ranks by total mentions and leaves out players never mentioned.
func TopPlayers(summaries []types.PlayerAnalysisSummary, n int) []types.PlayerAnalysisSummary {
	top := make([]types.PlayerAnalysisSummary, 0, len(summaries))
	for _, s := range summaries {
		if s.TotalMentions > 0 {
			top = append(top, s)
		}
	}
	sort.SliceStable(top, func(i, j int) bool {
		if top[i].TotalMentions != top[j].TotalMentions {
			return top[i].TotalMentions > top[j].TotalMentions
		}
		if top[i].PlayerName != top[j].PlayerName {
			return top[i].PlayerName < top[j].PlayerName
		}
		return top[i].PlayerID < top[j].PlayerID
	})
	if n > 0 && len(top) > n {
		top = top[:n]
	}
	return top
}

func resultLess(a, b types.AnalysisResult) bool {
	if a.TranscriptID != b.TranscriptID {
		return a.TranscriptID < b.TranscriptID
	}
	if a.MentionCount != b.MentionCount {
		return a.MentionCount < b.MentionCount
	}
	as, bs := scoreOf(a.SentimentScore), scoreOf(b.SentimentScore)
	return as < bs
}

func scoreOf(s *float64) float64 {
	if s == nil {
		return -2
	}
	return *s
}
