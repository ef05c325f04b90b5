package summarization

import (
	"context"
	"errors"
	"fmt"
	"go-commentary/nlp"
	"go-commentary/types"
	"strings"

	"github.com/sashabaranov/go-openai"
)

const maxPromptLength = 15000 // rough character limit for prompt

var ErrNothingToSummarize = errors.New("comparison has no players to summarize")

// GenerateBiasNarrative asks the chat model for a short plain-language
// reading of a comparison. The numbers stay authoritative; the narrative is
// decoration.
func GenerateBiasNarrative(ctx context.Context, client nlp.ChatCompleter, model string, analysis types.ComparativeAnalysis) (string, error) {
	if len(analysis.Players) == 0 {
		return "", ErrNothingToSummarize
	}
	if model == "" {
		model = openai.GPT4oMini
	}

	resp, err := client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleSystem,
					Content: "You are an assistant that explains measured commentator bias toward athletes. Stay factual and do not invent numbers.",
				},
				{
					Role:    openai.ChatMessageRoleUser,
					Content: buildPrompt(analysis),
				},
			},
			MaxTokens:   200,
			N:           1,
			Temperature: 0.5,
		},
	)
	if err != nil {
		return "", fmt.Errorf("openai chat completion error: %w", err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("openai returned empty response or choices")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func buildPrompt(a types.ComparativeAnalysis) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Summarize how the commentary treats these players in 2-3 sentences.\n\n")
	if a.Scope.Kind == types.ScopeTranscript {
		fmt.Fprintf(&b, "Scope: transcript %s\n", a.Scope.TranscriptID)
	} else {
		fmt.Fprintf(&b, "Scope: all transcripts\n")
	}
	if a.FairnessScore != nil {
		fmt.Fprintf(&b, "Fairness: %.2f (1 is perfectly even)\n", *a.FairnessScore)
	} else {
		fmt.Fprintf(&b, "Fairness: not enough players with sentiment to compare\n")
	}
	fmt.Fprintf(&b, "Sentiment disparity: %.2f\n\n", a.DisparityScore)

	for _, p := range a.Players {
		avg := "n/a"
		if p.AverageSentiment != nil {
			avg = fmt.Sprintf("%+.2f", *p.AverageSentiment)
		}
		line := fmt.Sprintf("%d. %s: bias %.2f (%s), average sentiment %s, %d mentions. %s\n",
			p.Rank, p.PlayerName, p.BiasScore, p.BiasLevel, avg, p.MentionCount, p.Explanation)
		if b.Len()+len(line) > maxPromptLength {
			fmt.Fprintf(&b, "(%d more players omitted)\n", len(a.Players)-p.Rank+1)
			break
		}
		b.WriteString(line)
	}
	return b.String()
}
