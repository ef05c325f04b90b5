package types

// Mention is one resolved occurrence of a roster player.
type Mention struct {
	PlayerID   string  `json:"player_id"`
	Span       Span    `json:"span"`
	Surface    string  `json:"surface"`
	Confidence float64 `json:"confidence"`
	Strategy   string  `json:"strategy"`
	// Ambiguous marks a surname match that context could not settle.
	Ambiguous bool `json:"ambiguous,omitempty"`
}

// ContextWindow is the text a single mention is judged by.
// Start and End are byte offsets into the transcript.
type ContextWindow struct {
	MentionIndex int    `json:"mention_index"`
	PlayerID     string `json:"player_id"`
	Mention      Span   `json:"mention"`
	Text         string `json:"text"`
	Start        int    `json:"start"`
	End          int    `json:"end"`
	Fallback     bool   `json:"fallback"`
}

// Relative maps an absolute transcript span into window coordinates.
func (w ContextWindow) Relative(s Span) Span {
	return Span{Start: s.Start - w.Start, End: s.End - w.Start}
}

type MentionSentiment struct {
	Score      float64        `json:"score"`
	Confidence float64        `json:"confidence"`
	Label      SentimentLabel `json:"label"`
}

// WindowPatterns are the descriptive words and phrases found in one window.
type WindowPatterns struct {
	Adjectives []string `json:"adjectives"`
	Phrases    []string `json:"phrases"`
	Sentiment  *float64 `json:"sentiment"`
}

type AdjectiveDetail struct {
	Word      string   `firestore:"word" json:"word"`
	Count     int      `firestore:"count" json:"count"`
	Sentiment *float64 `firestore:"sentiment" json:"sentiment"`
}

type PhraseDetail struct {
	Phrase    string   `firestore:"phrase" json:"phrase"`
	Count     int      `firestore:"count" json:"count"`
	Context   string   `firestore:"context" json:"context"`
	Sentiment *float64 `firestore:"sentiment" json:"sentiment"`
}

type ExcerptDetail struct {
	Text      string  `firestore:"text" json:"text"`
	Sentiment float64 `firestore:"sentiment" json:"sentiment"`
	Position  int     `firestore:"position" json:"position"`
}

// AnalysisResult is the outcome for one (transcript, player) pair.
type AnalysisResult struct {
	TranscriptID        string            `firestore:"transcriptId" json:"transcript_id"`
	PlayerID            string            `firestore:"playerId" json:"player_id"`
	PlayerName          string            `firestore:"playerName" json:"player_name"`
	SentimentScore      *float64          `firestore:"sentimentScore" json:"sentiment_score"`
	SentimentLabel      SentimentLabel    `firestore:"sentimentLabel,omitempty" json:"sentiment_label,omitempty"`
	Confidence          float64           `firestore:"confidence" json:"confidence"`
	MentionCount        int               `firestore:"mentionCount" json:"mention_count"`
	UnavailableMentions int               `firestore:"unavailableMentions" json:"unavailable_mentions"`
	Adjectives          []AdjectiveDetail `firestore:"adjectives" json:"adjectives"`
	Phrases             []PhraseDetail    `firestore:"phrases" json:"phrases"`
	Excerpts            []ExcerptDetail   `firestore:"excerpts" json:"excerpts"`
}

// PlayerAnalysisSummary is always recomputed from AnalysisResults.
type PlayerAnalysisSummary struct {
	PlayerID         string            `json:"player_id"`
	PlayerName       string            `json:"player_name"`
	Team             string            `json:"team,omitempty"`
	TotalMentions    int               `json:"total_mentions"`
	AverageSentiment *float64          `json:"average_sentiment"`
	SentimentLabel   SentimentLabel    `json:"sentiment_label,omitempty"`
	TopAdjectives    []AdjectiveDetail `json:"top_adjectives"`
	TopPhrases       []PhraseDetail    `json:"top_phrases"`
	TranscriptCount  int               `json:"transcript_count"`
}

type AnalysisStatus string

const (
	StatusOK         AnalysisStatus = "ok"
	StatusEmptyInput AnalysisStatus = "empty_input"
	// StatusPartial means at least one model call was unavailable.
	StatusPartial AnalysisStatus = "partial"
)

type Transcript struct {
	ID        string `firestore:"-" json:"id"`
	Title     string `firestore:"title" json:"title"`
	Text      string `firestore:"text" json:"text"`
	Sport     string `firestore:"sport" json:"sport"`
	Processed bool   `firestore:"processed" json:"processed"`
	CreatedAt string `firestore:"createdAt" json:"created_at"`
}

// TranscriptAnalysis is one pipeline run over one transcript.
type TranscriptAnalysis struct {
	RunID                string           `json:"run_id"`
	TranscriptID         string           `json:"transcript_id"`
	Status               AnalysisStatus   `json:"status"`
	Results              []AnalysisResult `json:"results"`
	MentionCount         int              `json:"mention_count"`
	UnresolvedCandidates int              `json:"unresolved_candidates"`
	UnavailableWindows   int              `json:"unavailable_windows"`
	NERUnavailable       bool             `json:"ner_unavailable"`
	Cached               bool             `json:"cached"`
}
