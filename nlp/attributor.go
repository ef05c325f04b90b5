package nlp

import (
	"context"
	"go-commentary/types"
)

// Attributor turns a context window into a mention sentiment.
type Attributor struct {
	svc SentimentService
	res *Resilient
}

func NewAttributor(svc SentimentService, res *Resilient) *Attributor {
	return &Attributor{svc: svc, res: res}
}

// Attribute returns a *ModelUnavailableError when the service gives up.
func (a *Attributor) Attribute(ctx context.Context, w types.ContextWindow) (types.MentionSentiment, error) {
	raw, err := Call(ctx, a.res, "sentiment", func(ctx context.Context) (types.Sentiment, error) {
		return a.svc.Analyze(ctx, w.Text)
	})
	if err != nil {
		return types.MentionSentiment{}, err
	}
	score := types.ClampScore(raw.Score)
	return types.MentionSentiment{
		Score:      score,
		Confidence: types.ClampUnit(raw.Confidence),
		Label:      types.LabelFor(score),
	}, nil
}
