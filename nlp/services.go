package nlp

import (
	"context"
	"go-commentary/types"
)

// EntityService finds candidate person names in a transcript.
type EntityService interface {
	Persons(ctx context.Context, text string) ([]types.Candidate, error)
}

// SentimentService scores one context window.
type SentimentService interface {
	Analyze(ctx context.Context, text string) (types.Sentiment, error)
}

// SyntaxService returns a dependency parse of one context window.
type SyntaxService interface {
	Tokens(ctx context.Context, text string) ([]types.SyntaxToken, error)
}
