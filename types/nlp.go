package types

// Span is a half-open [Start, End) range of UTF-8 byte offsets into the source text.
type Span struct {
	Start int `firestore:"start" json:"start"`
	End   int `firestore:"end" json:"end"`
}

func (s Span) Overlaps(o Span) bool {
	return s.Start < o.End && o.Start < s.End
}

func (s Span) Contains(o Span) bool {
	return s.Start <= o.Start && o.End <= s.End
}

func (s Span) Len() int { return s.End - s.Start }

// Candidate is a person-name span produced by the entity pass.
type Candidate struct {
	Span    Span   `json:"span"`
	Surface string `json:"surface"`
}

// Sentiment is the raw output of a sentiment service for one text window.
type Sentiment struct {
	Score      float64 `firestore:"score" json:"score"`
	Confidence float64 `firestore:"confidence" json:"confidence"`
}

// SyntaxToken is one token of a dependency parse.
// HeadIndex points into the same token slice; a root points at itself.
type SyntaxToken struct {
	Text      string `json:"text"`
	Lemma     string `json:"lemma"`
	Offset    int    `json:"offset"`
	POS       string `json:"pos"`
	HeadIndex int    `json:"head_index"`
	Dep       string `json:"dep"`
}

func (t SyntaxToken) Span() Span {
	return Span{Start: t.Offset, End: t.Offset + len(t.Text)}
}

// Part-of-speech tags and dependency labels, as named by the syntax service.
const (
	POSAdjective   = "ADJ"
	POSPronoun     = "PRON"
	POSPunctuation = "PUNCT"
	POSVerb        = "VERB"

	DepAdjectivalModifier = "AMOD"
	DepAdjectivalComp     = "ACOMP"
	DepAttribute          = "ATTR"
	DepNominalSubject     = "NSUBJ"
	DepConjunct           = "CONJ"
)
