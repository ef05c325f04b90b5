package bias

import (
	"fmt"
	"go-commentary/types"
	"math"
	"strings"
)

// keyFactorScore is the indicator score above which its evidence is quoted.
const keyFactorScore = 0.2

type indicator struct {
	category    types.BiasCategory
	description string
	// raw is the signed deviation in the indicator's own unit
	raw float64
	// normalized is raw mapped into [-1, 1]
	normalized float64
	evidence   []string
}

type cohortStats struct {
	players       int
	totalMentions int
	// meanPositive is the mean positive-adjective ratio over players that have one
	meanPositive float64
	hasLanguage  bool
}

func newCohortStats(cohort []types.PlayerAnalysisSummary) cohortStats {
	c := cohortStats{players: len(cohort)}
	var ratioSum float64
	ratios := 0
	for _, s := range cohort {
		c.totalMentions += s.TotalMentions
		if r, ok := positiveRatio(s); ok {
			ratioSum += r
			ratios++
		}
	}
	if ratios > 0 {
		c.meanPositive = ratioSum / float64(ratios)
		c.hasLanguage = true
	}
	return c
}

func sentimentIndicator(s types.PlayerAnalysisSummary) indicator {
	ind := indicator{
		category:    types.SentimentSkew,
		description: "Overall sentiment analysis",
	}
	if s.AverageSentiment == nil {
		ind.evidence = []string{"No sentiment data"}
		return ind
	}
	avg := *s.AverageSentiment
	ind.raw = avg
	ind.normalized = types.ClampScore(avg / strongSkew)

	strength := ""
	if math.Abs(avg) >= strongSkew {
		strength = "strongly "
	}
	switch types.LabelFor(avg) {
	case types.Positive:
		ind.evidence = append(ind.evidence, fmt.Sprintf("Average sentiment %+.2f is %spositive", avg, strength))
	case types.Negative:
		ind.evidence = append(ind.evidence, fmt.Sprintf("Average sentiment %+.2f is %snegative", avg, strength))
	default:
		ind.evidence = append(ind.evidence, fmt.Sprintf("Average sentiment %+.2f is neutral", avg))
	}
	return ind
}

// coverageIndicator compares the player's share of mentions with an equal share.
func coverageIndicator(s types.PlayerAnalysisSummary, c cohortStats) indicator {
	ind := indicator{
		category:    types.CoverageDisparity,
		description: "Mention frequency relative to an equal share",
	}
	if c.players < 2 || c.totalMentions == 0 {
		ind.evidence = []string{"No expected frequency baseline"}
		return ind
	}
	expected := 1 / float64(c.players)
	share := float64(s.TotalMentions) / float64(c.totalMentions)
	ind.raw = share - expected
	ind.normalized = types.ClampScore(ind.raw / (1 - expected))

	ratio := share / expected
	switch {
	case s.TotalMentions == 0:
		ind.evidence = append(ind.evidence, "Not mentioned")
	case ratio > 1.2:
		ind.evidence = append(ind.evidence, fmt.Sprintf("Mentioned %.1fx more than expected", ratio))
	case ratio < 0.8:
		ind.evidence = append(ind.evidence, fmt.Sprintf("Mentioned %.1fx less than expected", 1/ratio))
	default:
		ind.evidence = append(ind.evidence, "Mentioned about as often as expected")
	}
	return ind
}

// languageIndicator compares the share of positive adjectives with the cohort mean.
func languageIndicator(s types.PlayerAnalysisSummary, c cohortStats) indicator {
	ind := indicator{
		category:    types.LanguageValence,
		description: "Adjective and descriptive language analysis",
	}
	ratio, ok := positiveRatio(s)
	if !ok || !c.hasLanguage {
		ind.evidence = []string{"Insufficient adjective data"}
		return ind
	}
	ind.raw = ratio - c.meanPositive
	ind.normalized = types.ClampScore(ind.raw)

	ind.evidence = append(ind.evidence, fmt.Sprintf("%.0f%% positive adjectives vs %.0f%% for the cohort", ratio*100, c.meanPositive*100))
	var positive, negative []string
	for _, a := range s.TopAdjectives {
		switch types.LabelForPtr(a.Sentiment) {
		case types.Positive:
			if len(positive) < 3 {
				positive = append(positive, a.Word)
			}
		case types.Negative:
			if len(negative) < 3 {
				negative = append(negative, a.Word)
			}
		}
	}
	if len(positive) > 0 {
		ind.evidence = append(ind.evidence, "Positive terms: "+strings.Join(positive, ", "))
	}
	if len(negative) > 0 {
		ind.evidence = append(ind.evidence, "Negative terms: "+strings.Join(negative, ", "))
	}
	return ind
}

// positiveRatio is the count-weighted share of scored adjectives labelled positive.
func positiveRatio(s types.PlayerAnalysisSummary) (float64, bool) {
	positive, scored := 0, 0
	for _, a := range s.TopAdjectives {
		if a.Sentiment == nil {
			continue
		}
		scored += a.Count
		if types.LabelFor(*a.Sentiment) == types.Positive {
			positive += a.Count
		}
	}
	if scored == 0 {
		return 0, false
	}
	return float64(positive) / float64(scored), true
}

func explain(score types.PlayerBiasScore, favor float64) string {
	var treatment string
	switch {
	case score.BiasLevel == types.BiasMinimal:
		treatment = "shows neutral treatment of"
	case favor > 0:
		treatment = fmt.Sprintf("shows %s positive bias toward", score.BiasLevel)
	case favor < 0:
		treatment = fmt.Sprintf("shows %s negative bias toward", score.BiasLevel)
	default:
		treatment = fmt.Sprintf("shows %s bias toward", score.BiasLevel)
	}

	conf := "low"
	if score.Confidence > 0.7 {
		conf = "high"
	} else if score.Confidence > 0.4 {
		conf = "moderate"
	}
	base := fmt.Sprintf("The commentary %s %s (%s confidence).", treatment, score.PlayerName, conf)

	var factors []string
	for _, ind := range score.Indicators {
		if len(ind.Evidence) > 0 && ind.Score > keyFactorScore && ind.Weight > 0 {
			factors = append(factors, ind.Evidence[0])
		}
	}
	if len(factors) > 3 {
		factors = factors[:3]
	}
	if len(factors) > 0 {
		base += " Key factors: " + strings.Join(factors, "; ") + "."
	}
	return base
}
