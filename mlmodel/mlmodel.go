package mlmodel

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"go-commentary/nlp"
	"go-commentary/types"
	"net/http"
	"time"
)

type MLRequest map[string]string

// MLResponse maps each request key to [p(negative), p(positive)].
type MLResponse map[string][]float64

const inputKey = "window"

// Classifier is a hosted binary sentiment classifier.
type Classifier struct {
	URL    string
	Client *http.Client
}

func NewClassifier(url string) *Classifier {
	return &Classifier{URL: url, Client: &http.Client{Timeout: 30 * time.Second}}
}

func (c *Classifier) Version() string {
	return "mlmodel:" + c.URL
}

func (c *Classifier) CallModel(ctx context.Context, inputs MLRequest) (MLResponse, error) {
	payloadBytes, err := json.Marshal(inputs)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL, bytes.NewBuffer(payloadBytes))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	client := c.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := errors.New("ML model returned status: " + resp.Status)
		if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
			return nil, nlp.Permanent(err)
		}
		return nil, err
	}

	var mlResp MLResponse
	if err := json.NewDecoder(resp.Body).Decode(&mlResp); err != nil {
		return nil, nlp.Permanent(fmt.Errorf("failed to decode model response: %w", err))
	}

	return mlResp, nil
}

// Analyze scores a window as p(positive) - p(negative); the larger
// probability is the confidence.
func (c *Classifier) Analyze(ctx context.Context, text string) (types.Sentiment, error) {
	resp, err := c.CallModel(ctx, MLRequest{inputKey: text})
	if err != nil {
		return types.Sentiment{}, err
	}
	probs, ok := resp[inputKey]
	if !ok || len(probs) < 2 {
		return types.Sentiment{}, nlp.Permanent(fmt.Errorf("model response missing %q probabilities", inputKey))
	}
	neg, pos := probs[0], probs[1]
	confidence := pos
	if neg > pos {
		confidence = neg
	}
	return types.Sentiment{
		Score:      types.ClampScore(pos - neg),
		Confidence: types.ClampUnit(confidence),
	}, nil
}
