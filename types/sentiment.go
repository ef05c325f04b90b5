package types

type SentimentLabel string

const (
	Positive SentimentLabel = "positive"
	Negative SentimentLabel = "negative"
	Neutral  SentimentLabel = "neutral"
)

const labelThreshold = 0.1

// LabelFor is the only place a score is turned into a label.
func LabelFor(score float64) SentimentLabel {
	switch {
	case score > labelThreshold:
		return Positive
	case score < -labelThreshold:
		return Negative
	default:
		return Neutral
	}
}

// LabelForPtr returns "" for a missing score.
func LabelForPtr(score *float64) SentimentLabel {
	if score == nil {
		return ""
	}
	return LabelFor(*score)
}

func ClampScore(score float64) float64 {
	if score > 1 {
		return 1
	}
	if score < -1 {
		return -1
	}
	return score
}

func ClampUnit(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v < 0 {
		return 0
	}
	return v
}
