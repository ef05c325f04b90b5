package nlp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"go-commentary/types"
	"math"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// ChatCompleter is the part of *openai.Client the sentiment backend uses.
type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

const sentimentPrompt = `Rate the sentiment the following sports commentary expresses toward the athlete it describes.
Respond with a JSON object {"score": <number from -1 (very negative) to 1 (very positive)>, "confidence": <number from 0 to 1>} and nothing else.

Commentary:
%s`

type OpenAISentiment struct {
	Client ChatCompleter
	Model  string
}

func (o OpenAISentiment) Version() string {
	return "openai:" + o.model()
}

func (o OpenAISentiment) model() string {
	if o.Model == "" {
		return openai.GPT4oMini
	}
	return o.Model
}

func (o OpenAISentiment) Analyze(ctx context.Context, text string) (types.Sentiment, error) {
	resp, err := o.Client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: o.model(),
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleSystem,
					Content: "You are an assistant that scores the sentiment of sports commentary about individual players.",
				},
				{
					Role:    openai.ChatMessageRoleUser,
					Content: fmt.Sprintf(sentimentPrompt, text),
				},
			},
			ResponseFormat: &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject},
			MaxTokens:      50,
			// zero would be dropped by omitempty
			Temperature: math.SmallestNonzeroFloat32,
		},
	)
	if err != nil {
		return types.Sentiment{}, classifyOpenAIError(err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return types.Sentiment{}, fmt.Errorf("openai returned empty response or choices")
	}
	return parseSentimentJSON(resp.Choices[0].Message.Content)
}

func parseSentimentJSON(content string) (types.Sentiment, error) {
	var out struct {
		Score      *float64 `json:"score"`
		Confidence *float64 `json:"confidence"`
	}
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.Trim(content, "` \n")
	if err := json.Unmarshal([]byte(content), &out); err != nil {
		return types.Sentiment{}, Permanent(fmt.Errorf("failed to parse sentiment response: %w", err))
	}
	if out.Score == nil {
		return types.Sentiment{}, Permanent(errors.New("sentiment response has no score"))
	}
	s := types.Sentiment{Score: types.ClampScore(*out.Score), Confidence: 0.5}
	if out.Confidence != nil {
		s.Confidence = types.ClampUnit(*out.Confidence)
	}
	return s, nil
}

// Client errors other than rate limiting will not succeed on retry.
func classifyOpenAIError(err error) error {
	code := 0
	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		code = apiErr.HTTPStatusCode
	case errors.As(err, &reqErr):
		code = reqErr.HTTPStatusCode
	}
	wrapped := fmt.Errorf("openai chat completion error: %w", err)
	if code >= 400 && code < 500 && code != http.StatusTooManyRequests && code != http.StatusRequestTimeout {
		return Permanent(wrapped)
	}
	return wrapped
}
