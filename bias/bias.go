package bias

import (
	"go-commentary/types"
	"math"
	"sort"
)

const (
	// strongSkew is the |average sentiment| that saturates the sentiment indicator.
	strongSkew = 0.3

	minimalThreshold  = 0.2
	lowThreshold      = 0.4
	moderateThreshold = 0.6
	highThreshold     = 0.8

	mentionsForConfidence   = 20
	adjectivesForConfidence = 10
)

type Weights struct {
	Sentiment float64
	Coverage  float64
	Language  float64
}

var DefaultWeights = Weights{Sentiment: 1, Coverage: 1, Language: 1}

func (w Weights) total() float64 {
	return w.Sentiment + w.Coverage + w.Language
}

type Scorer struct {
	weights Weights
}

// NewScorer falls back to equal weights when none are positive.
func NewScorer(weights Weights) *Scorer {
	if weights.Sentiment < 0 || weights.Coverage < 0 || weights.Language < 0 || weights.total() <= 0 {
		weights = DefaultWeights
	}
	return &Scorer{weights: weights}
}

func (s *Scorer) Weights() Weights { return s.weights }

// scored carries the per-player intermediate values Compare needs after ranking.
type scored struct {
	summary types.PlayerAnalysisSummary
	score   types.PlayerBiasScore
	// favor is the weighted signed deviation in [-1, 1]
	favor float64
	// raw is the weighted signed deviation before normalisation
	raw float64
}

// Compare scores every player against the rest of the cohort. The result
// does not depend on the order of summaries.
func (s *Scorer) Compare(scope types.Scope, summaries []types.PlayerAnalysisSummary) types.ComparativeAnalysis {
	cohort := canonical(summaries)
	out := types.ComparativeAnalysis{
		Scope:   scope,
		Status:  types.ComparisonOK,
		Players: []types.PlayerBiasScore{},
	}

	c := newCohortStats(cohort)
	perPlayer := make([][]indicator, len(cohort))
	for i, sum := range cohort {
		perPlayer[i] = indicatorsFor(sum, c)
	}
	active := activeIndicators(perPlayer)

	players := make([]scored, 0, len(cohort))
	for i, sum := range cohort {
		players = append(players, s.scorePlayer(sum, perPlayer[i], active))
	}

	withData := 0
	for _, p := range players {
		if p.summary.AverageSentiment != nil {
			withData++
		}
	}

	if len(players) > 0 {
		minRaw, maxRaw := players[0].raw, players[0].raw
		minBias, maxBias := players[0].score.BiasScore, players[0].score.BiasScore
		for _, p := range players[1:] {
			minRaw, maxRaw = math.Min(minRaw, p.raw), math.Max(maxRaw, p.raw)
			minBias, maxBias = math.Min(minBias, p.score.BiasScore), math.Max(maxBias, p.score.BiasScore)
		}
		out.DisparityScore = maxRaw - minRaw
		out.BiasSpread = maxBias - minBias
	}

	if withData < 2 {
		out.Status = types.InsufficientComparison
	} else {
		fairness := fairnessOf(players)
		out.FairnessScore = &fairness
		out.MostFavored, out.LeastFavored = favored(players)
	}

	sort.SliceStable(players, func(i, j int) bool { return rankLess(players[i].score, players[j].score) })
	for i := range players {
		players[i].score.Rank = i + 1
		out.Players = append(out.Players, players[i].score)
	}
	return out
}

func indicatorsFor(sum types.PlayerAnalysisSummary, c cohortStats) []indicator {
	return []indicator{
		sentimentIndicator(sum),
		coverageIndicator(sum, c),
		languageIndicator(sum, c),
	}
}

// activeIndicators marks the indicators that deviate for at least one player
// in the cohort.
func activeIndicators(perPlayer [][]indicator) []bool {
	var active []bool
	for _, inds := range perPlayer {
		if active == nil {
			active = make([]bool, len(inds))
		}
		for i, ind := range inds {
			if ind.normalized != 0 || ind.raw != 0 {
				active[i] = true
			}
		}
	}
	return active
}

// scorePlayer averages the indicators over the weight of the active ones, so
// an indicator that is flat across the whole cohort does not dilute the rest.
func (s *Scorer) scorePlayer(sum types.PlayerAnalysisSummary, indicators []indicator, active []bool) scored {
	weights := []float64{s.weights.Sentiment, s.weights.Coverage, s.weights.Language}

	var total float64
	for i, w := range weights {
		if active[i] {
			total += w
		}
	}
	if total == 0 {
		total = s.weights.total()
	}

	var biasSum, favorSum, rawSum float64
	details := make([]types.BiasIndicator, len(indicators))
	for i, ind := range indicators {
		w := weights[i]
		biasSum += w * math.Abs(ind.normalized)
		favorSum += w * ind.normalized
		rawSum += w * ind.raw
		details[i] = types.BiasIndicator{
			Category:    ind.category,
			Description: ind.description,
			Score:       math.Abs(ind.normalized),
			Weight:      w,
			Evidence:    ind.evidence,
		}
	}

	biasScore := types.ClampUnit(biasSum / total)
	score := types.PlayerBiasScore{
		PlayerID:         sum.PlayerID,
		PlayerName:       sum.PlayerName,
		BiasScore:        biasScore,
		BiasLevel:        LevelFor(biasScore),
		Confidence:       confidenceOf(sum),
		AverageSentiment: sum.AverageSentiment,
		MentionCount:     sum.TotalMentions,
		Indicators:       details,
	}
	favor := types.ClampScore(favorSum / total)
	score.Explanation = explain(score, favor)
	return scored{summary: sum, score: score, favor: favor, raw: rawSum / total}
}

func LevelFor(score float64) types.BiasLevel {
	switch {
	case score < minimalThreshold:
		return types.BiasMinimal
	case score < lowThreshold:
		return types.BiasLow
	case score < moderateThreshold:
		return types.BiasModerate
	case score < highThreshold:
		return types.BiasHigh
	default:
		return types.BiasSevere
	}
}

// fairnessOf is one minus the population variance of the signed
// favourability values, which lie in [-1, 1] and so have variance at most 1.
func fairnessOf(players []scored) float64 {
	var mean float64
	for _, p := range players {
		mean += p.favor
	}
	mean /= float64(len(players))

	var variance float64
	for _, p := range players {
		d := p.favor - mean
		variance += d * d
	}
	variance /= float64(len(players))
	return types.ClampUnit(1 - variance)
}

// favored uses signed average sentiment, never bias magnitude. Ties go to the lower player ID.
func favored(players []scored) (*string, *string) {
	var most, least *scored
	for i := range players {
		p := &players[i]
		avg := p.summary.AverageSentiment
		if avg == nil {
			continue
		}
		if most == nil || *avg > *most.summary.AverageSentiment {
			most = p
		}
		if least == nil || *avg < *least.summary.AverageSentiment {
			least = p
		}
	}
	if most == nil {
		return nil, nil
	}
	mostID, leastID := most.summary.PlayerID, least.summary.PlayerID
	return &mostID, &leastID
}

func rankLess(a, b types.PlayerBiasScore) bool {
	if a.BiasScore != b.BiasScore {
		return a.BiasScore > b.BiasScore
	}
	am, bm := magnitude(a.AverageSentiment), magnitude(b.AverageSentiment)
	if am != bm {
		return am > bm
	}
	if a.PlayerName != b.PlayerName {
		return a.PlayerName < b.PlayerName
	}
	return a.PlayerID < b.PlayerID
}

func magnitude(s *float64) float64 {
	if s == nil {
		return 0
	}
	return math.Abs(*s)
}

func confidenceOf(sum types.PlayerAnalysisSummary) float64 {
	adjectives := 0
	for _, a := range sum.TopAdjectives {
		adjectives += a.Count
	}
	mentionPart := math.Min(1, float64(sum.TotalMentions)/mentionsForConfidence)
	adjectivePart := math.Min(1, float64(adjectives)/adjectivesForConfidence)
	return 0.6*mentionPart + 0.4*adjectivePart
}

// canonical sorts by player ID and drops repeated IDs, keeping the entry
// with the most mentions.
func canonical(summaries []types.PlayerAnalysisSummary) []types.PlayerAnalysisSummary {
	sorted := make([]types.PlayerAnalysisSummary, len(summaries))
	copy(sorted, summaries)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].PlayerID != sorted[j].PlayerID {
			return sorted[i].PlayerID < sorted[j].PlayerID
		}
		return sorted[i].TotalMentions > sorted[j].TotalMentions
	})
	out := make([]types.PlayerAnalysisSummary, 0, len(sorted))
	for _, s := range sorted {
		if len(out) > 0 && out[len(out)-1].PlayerID == s.PlayerID {
			continue
		}
		out = append(out, s)
	}
	return out
}
