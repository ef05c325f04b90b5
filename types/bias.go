package types

type BiasCategory string

const (
	SentimentSkew     BiasCategory = "sentiment_skew"
	CoverageDisparity BiasCategory = "coverage_disparity"
	LanguageValence   BiasCategory = "language_valence"
)

type BiasLevel string

const (
	BiasMinimal  BiasLevel = "minimal"
	BiasLow      BiasLevel = "low"
	BiasModerate BiasLevel = "moderate"
	BiasHigh     BiasLevel = "high"
	BiasSevere   BiasLevel = "severe"
)

type BiasIndicator struct {
	Category    BiasCategory `json:"category"`
	Description string       `json:"description"`
	Score       float64      `json:"score"`
	Weight      float64      `json:"weight"`
	Evidence    []string     `json:"evidence"`
}

type PlayerBiasScore struct {
	PlayerID         string          `json:"player_id"`
	PlayerName       string          `json:"player_name"`
	Rank             int             `json:"rank"`
	BiasScore        float64         `json:"bias_score"`
	BiasLevel        BiasLevel       `json:"bias_level"`
	Confidence       float64         `json:"confidence"`
	AverageSentiment *float64        `json:"average_sentiment"`
	MentionCount     int             `json:"mention_count"`
	Indicators       []BiasIndicator `json:"indicators"`
	Explanation      string          `json:"explanation"`
}

type ScopeKind string

const (
	ScopeTranscript ScopeKind = "transcript"
	ScopeCorpus     ScopeKind = "corpus"
)

type Scope struct {
	Kind         ScopeKind `json:"kind"`
	TranscriptID string    `json:"transcript_id,omitempty"`
}

type ComparisonStatus string

const (
	ComparisonOK           ComparisonStatus = "ok"
	InsufficientComparison ComparisonStatus = "insufficient_comparison_set"
)

type ComparativeAnalysis struct {
	Scope          Scope             `json:"scope"`
	Status         ComparisonStatus  `json:"status"`
	FairnessScore  *float64          `json:"fairness_score"`
	DisparityScore float64           `json:"disparity_score"`
	BiasSpread     float64           `json:"bias_spread"`
	MostFavored    *string           `json:"most_favored"`
	LeastFavored   *string           `json:"least_favored"`
	Players        []PlayerBiasScore `json:"players"`
	Narrative      string            `json:"narrative,omitempty"`
}
