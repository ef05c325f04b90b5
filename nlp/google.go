package nlp

import (
	"context"
	"encoding/base64"
	"fmt"
	"go-commentary/types"
	"sort"

	languagev1 "cloud.google.com/go/language/apiv1"
	syntaxpb "cloud.google.com/go/language/apiv1/languagepb"
	language "cloud.google.com/go/language/apiv2"
	"cloud.google.com/go/language/apiv2/languagepb"
	"google.golang.org/api/option"
)

// GoogleVersion identifies the Cloud Natural Language backends in cache keys.
const GoogleVersion = "google-nl:v2-entities:v2-sentiment:v1-syntax"

// LanguageClients holds both API versions; entity and sentiment calls use
// v2, dependency parsing only exists in v1.
type LanguageClients struct {
	V2 *language.Client
	V1 *languagev1.Client
}

// NewLanguageClients builds clients from base64 encoded service account JSON.
func NewLanguageClients(ctx context.Context, encodedCreds string) (*LanguageClients, error) {
	creds, err := base64.StdEncoding.DecodeString(encodedCreds)
	if err != nil {
		return nil, fmt.Errorf("failed to decode natural language credentials: %w", err)
	}
	opt := option.WithCredentialsJSON(creds)

	v2, err := language.NewClient(ctx, opt)
	if err != nil {
		return nil, fmt.Errorf("failed to create natural language client: %w", err)
	}
	v1, err := languagev1.NewClient(ctx, opt)
	if err != nil {
		v2.Close()
		return nil, fmt.Errorf("failed to create natural language syntax client: %w", err)
	}
	return &LanguageClients{V2: v2, V1: v1}, nil
}

func (c *LanguageClients) Close() {
	if c == nil {
		return
	}
	if c.V2 != nil {
		c.V2.Close()
	}
	if c.V1 != nil {
		c.V1.Close()
	}
}

func plainDocument(text string) *languagepb.Document {
	return &languagepb.Document{
		Source: &languagepb.Document_Content{
			Content: text,
		},
		Type: languagepb.Document_PLAIN_TEXT,
	}
}

type GoogleEntities struct {
	Client *language.Client
}

func (g GoogleEntities) Persons(ctx context.Context, text string) ([]types.Candidate, error) {
	req := &languagepb.AnalyzeEntitiesRequest{
		Document:     plainDocument(text),
		EncodingType: languagepb.EncodingType_UTF8,
	}
	resp, err := g.Client.AnalyzeEntities(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("AnalyzeEntities error: %w", err)
	}
	return personCandidates(resp), nil
}

// personCandidates keeps proper-noun PERSON mentions ordered by offset.
func personCandidates(resp *languagepb.AnalyzeEntitiesResponse) []types.Candidate {
	var candidates []types.Candidate
	for _, e := range resp.GetEntities() {
		if e.GetType() != languagepb.Entity_PERSON {
			continue
		}
		for _, m := range e.GetMentions() {
			if m.GetType() != languagepb.EntityMention_PROPER || m.GetText() == nil {
				continue
			}
			start := int(m.GetText().GetBeginOffset())
			content := m.GetText().GetContent()
			candidates = append(candidates, types.Candidate{
				Span:    types.Span{Start: start, End: start + len(content)},
				Surface: content,
			})
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].Span.Start < candidates[j].Span.Start })
	return candidates
}

type GoogleSentiment struct {
	Client *language.Client
}

func (g GoogleSentiment) Analyze(ctx context.Context, text string) (types.Sentiment, error) {
	req := &languagepb.AnalyzeSentimentRequest{
		Document:     plainDocument(text),
		EncodingType: languagepb.EncodingType_UTF8,
	}
	resp, err := g.Client.AnalyzeSentiment(ctx, req)
	if err != nil {
		return types.Sentiment{}, fmt.Errorf("AnalyzeSentiment error: %w", err)
	}
	ds := resp.GetDocumentSentiment()
	return sentimentFromDocument(float64(ds.GetScore()), float64(ds.GetMagnitude())), nil
}

// The API reports no confidence; magnitude stands in for it.
func sentimentFromDocument(score, magnitude float64) types.Sentiment {
	if magnitude > 1 {
		magnitude = 1
	}
	if magnitude < 0 {
		magnitude = 0
	}
	return types.Sentiment{
		Score:      types.ClampScore(score),
		Confidence: 0.5 + 0.5*magnitude,
	}
}

type GoogleSyntax struct {
	Client *languagev1.Client
}

func (g GoogleSyntax) Tokens(ctx context.Context, text string) ([]types.SyntaxToken, error) {
	req := &syntaxpb.AnalyzeSyntaxRequest{
		Document: &syntaxpb.Document{
			Source: &syntaxpb.Document_Content{
				Content: text,
			},
			Type: syntaxpb.Document_PLAIN_TEXT,
		},
		EncodingType: syntaxpb.EncodingType_UTF8,
	}
	resp, err := g.Client.AnalyzeSyntax(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("AnalyzeSyntax error: %w", err)
	}
	return syntaxTokens(resp), nil
}

func syntaxTokens(resp *syntaxpb.AnalyzeSyntaxResponse) []types.SyntaxToken {
	tokens := make([]types.SyntaxToken, 0, len(resp.GetTokens()))
	for i, t := range resp.GetTokens() {
		tok := types.SyntaxToken{
			Text:      t.GetText().GetContent(),
			Lemma:     t.GetLemma(),
			Offset:    int(t.GetText().GetBeginOffset()),
			POS:       t.GetPartOfSpeech().GetTag().String(),
			HeadIndex: i,
			Dep:       t.GetDependencyEdge().GetLabel().String(),
		}
		if edge := t.GetDependencyEdge(); edge != nil {
			tok.HeadIndex = int(edge.GetHeadTokenIndex())
		}
		tokens = append(tokens, tok)
	}
	return tokens
}
