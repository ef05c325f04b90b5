package processor

import (
	"context"
	"encoding/json"
	"go-commentary/aggregate"
	"go-commentary/cache"
	"go-commentary/logger"
	"go-commentary/nlp"
	"go-commentary/patterns"
	"go-commentary/resolver"
	"go-commentary/types"
	"go-commentary/window"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

const (
	defaultWorkers           = 4
	defaultWindowConcurrency = 8
)

// Services are the external model backends. Entities and Syntax may be nil:
// without entities only roster names are found, without syntax no language
// patterns are collected.
type Services struct {
	Entities  nlp.EntityService
	Sentiment nlp.SentimentService
	Syntax    nlp.SyntaxService
	// Version names the models; it is part of the cache key.
	Version string
}

type Options struct {
	Resolver  resolver.Options
	Window    window.Options
	Patterns  patterns.Options
	Aggregate aggregate.Options
	Resilient nlp.ResilientOptions

	// Workers bounds concurrent transcripts in AnalyzeBatch.
	Workers int
	// WindowConcurrency bounds concurrent model calls within a transcript.
	WindowConcurrency int
	// IncludeUnmentioned emits empty results for roster players not mentioned.
	IncludeUnmentioned bool
}

type Analyzer struct {
	services Services
	opts     Options

	resolver     *resolver.Resolver
	scanResolver *resolver.Resolver
	builder      *window.Builder
	extractor    *patterns.Extractor
	resilient    *nlp.Resilient
	attributor   *nlp.Attributor

	cache        *cache.AnalysisCache
	inflight     singleflight.Group
	modelVersion string
}

func NewAnalyzer(services Services, opts Options) *Analyzer {
	if opts.Workers <= 0 {
		opts.Workers = defaultWorkers
	}
	if opts.WindowConcurrency <= 0 {
		opts.WindowConcurrency = defaultWindowConcurrency
	}
	scanOpts := opts.Resolver
	scanOpts.ScanRoster = true

	res := nlp.NewResilient(opts.Resilient)
	a := &Analyzer{
		services:     services,
		opts:         opts,
		resolver:     resolver.New(opts.Resolver),
		scanResolver: resolver.New(scanOpts),
		builder:      window.NewBuilder(opts.Window),
		extractor:    patterns.NewExtractor(opts.Patterns),
		resilient:    res,
		attributor:   nlp.NewAttributor(services.Sentiment, res),
	}
	a.modelVersion = modelVersion(services, opts)
	return a
}

// WithCache enables result caching keyed by text, roster version and model version.
func (a *Analyzer) WithCache(c *cache.AnalysisCache) *Analyzer {
	a.cache = c
	return a
}

// ModelVersion covers the model backends and every option that changes results.
func (a *Analyzer) ModelVersion() string { return a.modelVersion }

func modelVersion(services Services, opts Options) string {
	fingerprint, _ := json.Marshal(struct {
		Resolver           resolver.Options
		Window             window.Options
		Patterns           patterns.Options
		Aggregate          aggregate.Options
		IncludeUnmentioned bool
		Entities           bool
		Syntax             bool
	}{opts.Resolver, opts.Window, opts.Patterns, opts.Aggregate, opts.IncludeUnmentioned, services.Entities != nil, services.Syntax != nil})
	return services.Version + ":" + types.HashString(string(fingerprint))[:16]
}

// Analyze runs the full pipeline on one transcript. It never fails: model
// outages show up as a partial status. Concurrent calls for the same
// transcript ID share one run.
func (a *Analyzer) Analyze(ctx context.Context, t types.Transcript, roster *types.Roster) types.TranscriptAnalysis {
	contentHash := types.HashString(t.Text)
	for {
		v, _, shared := a.inflight.Do(t.ID, func() (interface{}, error) {
			return flight{hash: contentHash, analysis: a.analyze(ctx, t, roster, contentHash)}, nil
		})
		f := v.(flight)
		// a run for different text under the same ID finished first; run again
		if shared && f.hash != contentHash && ctx.Err() == nil {
			continue
		}
		return copyAnalysis(f.analysis)
	}
}

type flight struct {
	hash     string
	analysis types.TranscriptAnalysis
}

// AnalyzeBatch analyzes transcripts on a bounded worker pool against one
// roster snapshot. Output order matches input order.
func (a *Analyzer) AnalyzeBatch(ctx context.Context, transcripts []types.Transcript, roster *types.Roster) []types.TranscriptAnalysis {
	snapshot := roster.Snapshot()
	out := make([]types.TranscriptAnalysis, len(transcripts))

	var g errgroup.Group
	g.SetLimit(a.opts.Workers)
	for i, t := range transcripts {
		i, t := i, t
		g.Go(func() error {
			out[i] = a.Analyze(ctx, t, snapshot)
			return nil
		})
	}
	g.Wait()

	logger.Info("batch analysis finished", "transcripts", len(transcripts), "workers", a.opts.Workers)
	return out
}

func (a *Analyzer) analyze(ctx context.Context, t types.Transcript, roster *types.Roster, contentHash string) types.TranscriptAnalysis {
	if strings.TrimSpace(t.Text) == "" {
		logger.Info("empty transcript", "transcript", t.ID)
		return types.TranscriptAnalysis{
			RunID:        uuid.NewString(),
			TranscriptID: t.ID,
			Status:       types.StatusEmptyInput,
			Results:      []types.AnalysisResult{},
		}
	}

	snapshot := roster.Snapshot()
	var analysis types.TranscriptAnalysis
	if a.cache != nil {
		key := cache.Key{ContentHash: contentHash, RosterVersion: snapshot.Version(), ModelVersion: a.modelVersion}
		cached, hit, err := a.cache.GetOrCompute(ctx, key, func(ctx context.Context) (types.TranscriptAnalysis, error) {
			return a.run(ctx, t.ID, t.Text, snapshot), nil
		})
		if err != nil {
			logger.Warn("analysis cache failed, running uncached", "transcript", t.ID, "err", err)
			analysis = a.run(ctx, t.ID, t.Text, snapshot)
		} else {
			analysis = cached
			analysis.Cached = hit
		}
	} else {
		analysis = a.run(ctx, t.ID, t.Text, snapshot)
	}

	analysis.RunID = uuid.NewString()
	analysis.TranscriptID = t.ID
	for i := range analysis.Results {
		analysis.Results[i].TranscriptID = t.ID
	}

	logger.Info("analyzed transcript",
		"transcript", t.ID,
		"status", analysis.Status,
		"mentions", analysis.MentionCount,
		"players", len(analysis.Results),
		"cached", analysis.Cached,
	)
	return analysis
}

// copyAnalysis gives each caller of a shared run its own slices.
func copyAnalysis(in types.TranscriptAnalysis) types.TranscriptAnalysis {
	out := in
	out.Results = make([]types.AnalysisResult, len(in.Results))
	for i, r := range in.Results {
		r.Adjectives = append([]types.AdjectiveDetail{}, r.Adjectives...)
		r.Phrases = append([]types.PhraseDetail{}, r.Phrases...)
		r.Excerpts = append([]types.ExcerptDetail{}, r.Excerpts...)
		out.Results[i] = r
	}
	return out
}
