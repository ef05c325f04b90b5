package processor

import (
	"context"
	"errors"
	"go-commentary/aggregate"
	"go-commentary/logger"
	"go-commentary/nlp"
	"go-commentary/types"

	"golang.org/x/sync/errgroup"
)

// windowOutcome is what the model calls produced for one context window.
type windowOutcome struct {
	sentiment   *types.MentionSentiment
	tokens      []types.SyntaxToken
	syntaxError bool
}

// run is the uncached pipeline: entities, resolution, windows, per-window
// model calls, extraction and aggregation.
func (a *Analyzer) run(ctx context.Context, transcriptID, text string, roster *types.Roster) types.TranscriptAnalysis {
	analysis := types.TranscriptAnalysis{
		TranscriptID: transcriptID,
		Status:       types.StatusOK,
		Results:      []types.AnalysisResult{},
	}

	var candidates []types.Candidate
	res := a.scanResolver
	if a.services.Entities != nil {
		found, err := nlp.Call(ctx, a.resilient, "entities", func(ctx context.Context) ([]types.Candidate, error) {
			return a.services.Entities.Persons(ctx, text)
		})
		if err != nil {
			logger.Warn("entity extraction unavailable, falling back to roster scan", "transcript", transcriptID, "err", err)
			analysis.NERUnavailable = true
		} else {
			candidates = found
			res = a.resolver
		}
	}

	resolution := res.ResolveDetailed(text, candidates, roster)
	mentions := resolution.Mentions
	analysis.UnresolvedCandidates = resolution.Unresolved

	windows := a.builder.Build(text, mentions)
	outcomes := a.callModels(ctx, windows)

	obs := make([]aggregate.Observation, len(windows))
	syntaxFailures := 0
	for i, w := range windows {
		out := outcomes[i]
		var score *float64
		if out.sentiment == nil {
			analysis.UnavailableWindows++
		} else {
			s := out.sentiment.Score
			score = &s
		}
		if out.syntaxError {
			syntaxFailures++
		}
		obs[i] = aggregate.Observation{
			Mention:   mentions[w.MentionIndex],
			Window:    w,
			Sentiment: out.sentiment,
			Patterns:  a.extractor.Extract(w, out.tokens, score, otherPlayers(mentions, w)),
		}
	}

	analysis.Results = aggregate.Players(transcriptID, roster, obs, a.opts.Aggregate, a.opts.IncludeUnmentioned)
	for _, r := range analysis.Results {
		analysis.MentionCount += r.MentionCount
	}
	if analysis.NERUnavailable || analysis.UnavailableWindows > 0 || syntaxFailures > 0 {
		analysis.Status = types.StatusPartial
	}

	logger.Debug("pipeline finished",
		"transcript", transcriptID,
		"candidates", len(candidates),
		"mentions", len(mentions),
		"unavailable_windows", analysis.UnavailableWindows,
		"syntax_failures", syntaxFailures,
	)
	return analysis
}

// callModels scores and parses every window with bounded concurrency. A
// failed window never cancels the others.
func (a *Analyzer) callModels(ctx context.Context, windows []types.ContextWindow) []windowOutcome {
	outcomes := make([]windowOutcome, len(windows))

	var g errgroup.Group
	g.SetLimit(a.opts.WindowConcurrency)
	for i := range windows {
		i := i
		g.Go(func() error {
			if a.services.Sentiment != nil {
				s, err := a.attributor.Attribute(ctx, windows[i])
				if err == nil {
					outcomes[i].sentiment = &s
				} else if !errors.Is(err, nlp.ErrModelUnavailable) {
					logger.Error("unexpected sentiment error", "err", err)
				}
			}
			return nil
		})
		if a.services.Syntax == nil {
			continue
		}
		g.Go(func() error {
			tokens, err := nlp.Call(ctx, a.resilient, "syntax", func(ctx context.Context) ([]types.SyntaxToken, error) {
				return a.services.Syntax.Tokens(ctx, windows[i].Text)
			})
			if err != nil {
				outcomes[i].syntaxError = true
				return nil
			}
			outcomes[i].tokens = tokens
			return nil
		})
	}
	g.Wait()
	return outcomes
}

// otherPlayers returns the spans of other players' mentions inside w.
func otherPlayers(mentions []types.Mention, w types.ContextWindow) []types.Span {
	var spans []types.Span
	bounds := types.Span{Start: w.Start, End: w.End}
	for _, m := range mentions {
		if m.PlayerID != w.PlayerID && bounds.Contains(m.Span) {
			spans = append(spans, m.Span)
		}
	}
	return spans
}
