package processor

import (
	"context"
	"encoding/json"
	"errors"
	"go-commentary/cache"
	"go-commentary/nlp"
	"go-commentary/types"
	"reflect"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// fakeEntities tags every occurrence of the given surfaces.
type fakeEntities struct {
	surfaces []string
	err      error
	calls    int32
	delay    time.Duration
}

func (f *fakeEntities) Persons(ctx context.Context, text string) ([]types.Candidate, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.err != nil {
		return nil, f.err
	}
	var out []types.Candidate
	for _, s := range f.surfaces {
		from := 0
		for {
			i := strings.Index(text[from:], s)
			if i < 0 {
				break
			}
			start := from + i
			out = append(out, types.Candidate{Span: types.Span{Start: start, End: start + len(s)}, Surface: s})
			from = start + len(s)
		}
	}
	return out, nil
}

// fakeSentiment scores by keyword and fails on windows containing "static".
type fakeSentiment struct{}

func (fakeSentiment) Analyze(ctx context.Context, text string) (types.Sentiment, error) {
	switch {
	case strings.Contains(text, "static"):
		return types.Sentiment{}, errors.New("connection reset")
	case strings.Contains(text, "brilliant"):
		return types.Sentiment{Score: 0.8, Confidence: 0.9}, nil
	case strings.Contains(text, "awful"):
		return types.Sentiment{Score: -0.6, Confidence: 0.9}, nil
	}
	return types.Sentiment{Score: 0, Confidence: 0.5}, nil
}

type fakeSyntax struct{}

func (fakeSyntax) Tokens(ctx context.Context, text string) ([]types.SyntaxToken, error) {
	var tokens []types.SyntaxToken
	offset := 0
	for _, w := range strings.Fields(text) {
		i := strings.Index(text[offset:], w) + offset
		tokens = append(tokens, types.SyntaxToken{Text: w, Lemma: strings.ToLower(w), Offset: i, POS: "NOUN", HeadIndex: len(tokens)})
		offset = i + len(w)
	}
	return tokens, nil
}

func testRoster() *types.Roster {
	return types.NewRoster([]types.Player{
		{ID: "smith-lal", Name: "John Smith", Team: "Los Angeles Lakers"},
		{ID: "smith-bos", Name: "Will Smith", Team: "Boston Celtics"},
		{ID: "tatum", Name: "Jayson Tatum", Team: "Boston Celtics"},
	})
}

func testAnalyzer(entities nlp.EntityService) *Analyzer {
	return NewAnalyzer(Services{
		Entities:  entities,
		Sentiment: fakeSentiment{},
		Syntax:    fakeSyntax{},
		Version:   "fake",
	}, Options{
		Resilient: nlp.ResilientOptions{Timeout: time.Second, Retries: 1, Backoff: time.Millisecond},
	})
}

const lakersText = "Smith is brilliant for the Lakers tonight. Smith again, brilliant."

func TestAnalyzeResolvesByTeamContext(t *testing.T) {
	a := testAnalyzer(&fakeEntities{surfaces: []string{"Smith"}})
	got := a.Analyze(context.Background(), types.Transcript{ID: "t1", Text: lakersText}, testRoster())

	if got.Status != types.StatusOK {
		t.Fatalf("expected ok, got %s", got.Status)
	}
	if len(got.Results) != 1 {
		t.Fatalf("only the Lakers Smith should have a result, got %+v", got.Results)
	}
	r := got.Results[0]
	if r.PlayerID != "smith-lal" || r.MentionCount != 2 || r.TranscriptID != "t1" {
		t.Errorf("unexpected result %+v", r)
	}
	if r.SentimentScore == nil || *r.SentimentScore != 0.8 || r.SentimentLabel != types.Positive {
		t.Errorf("unexpected sentiment %v %s", r.SentimentScore, r.SentimentLabel)
	}
	if len(r.Phrases) == 0 {
		t.Errorf("expected phrases around the mention")
	}
	if got.RunID == "" {
		t.Errorf("expected a run id")
	}
}

func TestAnalyzeEmptyInput(t *testing.T) {
	got := testAnalyzer(&fakeEntities{}).Analyze(context.Background(), types.Transcript{ID: "t0", Text: "   "}, testRoster())
	if got.Status != types.StatusEmptyInput || len(got.Results) != 0 {
		t.Errorf("expected empty input status, got %+v", got)
	}
}

func TestAnalyzeExcludesUnavailableWindows(t *testing.T) {
	text := "Jayson Tatum was awful early. Jayson Tatum through the static again."
	a := testAnalyzer(&fakeEntities{surfaces: []string{"Jayson Tatum"}})
	got := a.Analyze(context.Background(), types.Transcript{ID: "t2", Text: text}, testRoster())

	if got.Status != types.StatusPartial || got.UnavailableWindows != 1 {
		t.Fatalf("expected one unavailable window, got %s/%d", got.Status, got.UnavailableWindows)
	}
	r := got.Results[0]
	if r.MentionCount != 1 || r.UnavailableMentions != 1 {
		t.Errorf("unavailable mention must be excluded, got %d/%d", r.MentionCount, r.UnavailableMentions)
	}
	if *r.SentimentScore != -0.6 {
		t.Errorf("expected only the scored mention to count, got %v", *r.SentimentScore)
	}
}

func TestAnalyzeFallsBackToRosterScan(t *testing.T) {
	a := testAnalyzer(&fakeEntities{err: errors.New("dial tcp: connection refused")})
	got := a.Analyze(context.Background(), types.Transcript{ID: "t3", Text: "Jayson Tatum is brilliant."}, testRoster())
	if !got.NERUnavailable || got.Status != types.StatusPartial {
		t.Fatalf("expected NER outage to be reported, got %+v", got)
	}
	if len(got.Results) != 1 || got.Results[0].PlayerID != "tatum" {
		t.Errorf("roster scan should still find the full name, got %+v", got.Results)
	}
}

func TestAnalyzeIsIdempotent(t *testing.T) {
	tr := types.Transcript{ID: "t4", Text: lakersText + " Jayson Tatum looks awful."}
	entities := &fakeEntities{surfaces: []string{"Smith", "Jayson Tatum"}}

	first := testAnalyzer(entities).Analyze(context.Background(), tr, testRoster())
	second := testAnalyzer(entities).Analyze(context.Background(), tr, testRoster())
	a, _ := json.Marshal(first.Results)
	b, _ := json.Marshal(second.Results)
	if string(a) != string(b) {
		t.Errorf("re-analysis changed results:\n%s\n%s", a, b)
	}

	cached := testAnalyzer(entities).WithCache(cache.New(cache.NewMemoryStore()))
	c1 := cached.Analyze(context.Background(), tr, testRoster())
	c2 := cached.Analyze(context.Background(), tr, testRoster())
	if c1.Cached || !c2.Cached {
		t.Errorf("expected a miss then a hit, got %v/%v", c1.Cached, c2.Cached)
	}
	if !reflect.DeepEqual(c1.Results, c2.Results) || !reflect.DeepEqual(c1.Results, first.Results) {
		t.Errorf("cached results must equal computed ones")
	}
	if c1.RunID == c2.RunID {
		t.Errorf("each run gets its own id")
	}
}

func TestCacheKeyFollowsRoster(t *testing.T) {
	entities := &fakeEntities{surfaces: []string{"Jayson Tatum"}}
	a := testAnalyzer(entities).WithCache(cache.New(nil))
	tr := types.Transcript{ID: "t5", Text: "Jayson Tatum is brilliant."}

	a.Analyze(context.Background(), tr, testRoster())
	changed := types.NewRoster(append(testRoster().Players(), types.Player{ID: "new", Name: "Ann Jones"}))
	got := a.Analyze(context.Background(), tr, changed)
	if got.Cached {
		t.Errorf("a roster change must invalidate the cache")
	}
}

func TestAnalyzeBatchKeepsOrder(t *testing.T) {
	a := testAnalyzer(&fakeEntities{surfaces: []string{"Smith", "Jayson Tatum"}})
	transcripts := []types.Transcript{
		{ID: "a", Text: lakersText},
		{ID: "b", Text: ""},
		{ID: "c", Text: "Jayson Tatum through the static."},
		{ID: "d", Text: "Jayson Tatum is brilliant."},
	}
	got := a.AnalyzeBatch(context.Background(), transcripts, testRoster())
	if len(got) != len(transcripts) {
		t.Fatalf("expected %d analyses, got %d", len(transcripts), len(got))
	}
	for i, tr := range transcripts {
		if got[i].TranscriptID != tr.ID {
			t.Errorf("analysis %d is for %s, want %s", i, got[i].TranscriptID, tr.ID)
		}
	}
	wantStatus := []types.AnalysisStatus{types.StatusOK, types.StatusEmptyInput, types.StatusPartial, types.StatusOK}
	for i, s := range wantStatus {
		if got[i].Status != s {
			t.Errorf("transcript %s status = %s, want %s", transcripts[i].ID, got[i].Status, s)
		}
	}
}

func TestConcurrentAnalyzeSharesOneRun(t *testing.T) {
	entities := &fakeEntities{surfaces: []string{"Jayson Tatum"}, delay: 50 * time.Millisecond}
	a := testAnalyzer(entities)
	tr := types.Transcript{ID: "same", Text: "Jayson Tatum is brilliant."}

	var wg sync.WaitGroup
	runIDs := make([]string, 5)
	for i := range runIDs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			runIDs[i] = a.Analyze(context.Background(), tr, testRoster()).RunID
		}(i)
	}
	wg.Wait()

	if n := atomic.LoadInt32(&entities.calls); n != 1 {
		t.Errorf("expected one in-flight analysis, got %d entity calls", n)
	}
	for _, id := range runIDs[1:] {
		if id != runIDs[0] {
			t.Errorf("concurrent callers should share the run")
		}
	}
}
