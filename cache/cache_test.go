package cache

import (
	"context"
	"errors"
	"go-commentary/types"
	"os"
	"reflect"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func sampleAnalysis() types.TranscriptAnalysis {
	score := 0.42
	return types.TranscriptAnalysis{TranscriptID: "t1", Status: types.StatusOK, MentionCount: 2, Results: []types.AnalysisResult{{
		PlayerID:       "smith",
		PlayerName:     "John Smith",
		SentimentScore: &score,
		SentimentLabel: types.Positive,
		Confidence:     0.9,
		MentionCount:   2,
		Adjectives:     []types.AdjectiveDetail{{Word: "quick", Count: 2, Sentiment: &score}},
		Phrases:        []types.PhraseDetail{},
		Excerpts:       []types.ExcerptDetail{{Text: "Smith is quick.", Sentiment: score, Position: 0}},
	}}}
}

var key = Key{ContentHash: "abc", RosterVersion: "r1", ModelVersion: "m1"}

func TestGetOrComputeCachesResults(t *testing.T) {
	c := New(NewMemoryStore())
	calls := 0
	compute := func(ctx context.Context) (types.TranscriptAnalysis, error) {
		calls++
		return sampleAnalysis(), nil
	}

	first, hit, err := c.GetOrCompute(context.Background(), key, compute)
	if err != nil || hit {
		t.Fatalf("first call should compute, got hit=%v err=%v", hit, err)
	}
	second, hit, err := c.GetOrCompute(context.Background(), key, compute)
	if err != nil || !hit {
		t.Fatalf("second call should hit the cache, got hit=%v err=%v", hit, err)
	}
	if calls != 1 {
		t.Errorf("expected one computation, got %d", calls)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("cached results differ from computed ones")
	}

	second.Results[0].PlayerName = "mutated"
	third, _, _ := c.GetOrCompute(context.Background(), key, compute)
	if third.Results[0].PlayerName != "John Smith" {
		t.Errorf("callers must not share result slices")
	}
}

func TestKeyChangeInvalidates(t *testing.T) {
	c := New(nil)
	calls := 0
	compute := func(ctx context.Context) (types.TranscriptAnalysis, error) {
		calls++
		return sampleAnalysis(), nil
	}
	c.GetOrCompute(context.Background(), key, compute)

	for _, k := range []Key{
		{ContentHash: "abd", RosterVersion: "r1", ModelVersion: "m1"},
		{ContentHash: "abc", RosterVersion: "r2", ModelVersion: "m1"},
		{ContentHash: "abc", RosterVersion: "r1", ModelVersion: "m2"},
	} {
		if _, hit, _ := c.GetOrCompute(context.Background(), k, compute); hit {
			t.Errorf("key %+v should miss", k)
		}
	}
	if calls != 4 {
		t.Errorf("expected 4 computations, got %d", calls)
	}
}

func TestGetOrComputeSingleFlight(t *testing.T) {
	c := New(NewMemoryStore())
	var calls int32
	release := make(chan struct{})
	compute := func(ctx context.Context) (types.TranscriptAnalysis, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return sampleAnalysis(), nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			analysis, _, err := c.GetOrCompute(context.Background(), key, compute)
			if err != nil || len(analysis.Results) != 1 {
				t.Errorf("unexpected result %v, %v", analysis, err)
			}
		}()
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Errorf("expected a single in-flight computation, got %d", n)
	}
}

func TestErrorsAreNotCached(t *testing.T) {
	store := NewMemoryStore()
	c := New(store)
	boom := errors.New("boom")
	_, _, err := c.GetOrCompute(context.Background(), key, func(ctx context.Context) (types.TranscriptAnalysis, error) {
		return types.TranscriptAnalysis{}, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected compute error, got %v", err)
	}
	if store.Len() != 0 {
		t.Errorf("failed computation must not be stored")
	}
}

func TestPartialAnalysisNotCached(t *testing.T) {
	store := NewMemoryStore()
	c := New(store)
	calls := 0
	compute := func(ctx context.Context) (types.TranscriptAnalysis, error) {
		calls++
		a := sampleAnalysis()
		a.Status = types.StatusPartial
		return a, nil
	}
	got, _, err := c.GetOrCompute(context.Background(), key, compute)
	if err != nil || got.Status != types.StatusPartial {
		t.Fatalf("expected the partial analysis back, got %+v %v", got, err)
	}
	c.GetOrCompute(context.Background(), key, compute)
	if calls != 2 || store.Len() != 0 {
		t.Errorf("partial analyses must be recomputed, calls=%d stored=%d", calls, store.Len())
	}
}

func TestRedisStore(t *testing.T) {
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("REDIS_URL not set")
	}
	client, err := NewRedisClient(context.Background(), url)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer client.Close()

	store := NewRedisStore(client)
	k := Key{ContentHash: time.Now().String(), RosterVersion: "test", ModelVersion: "test"}.String()
	defer client.Del(context.Background(), k)

	if _, ok, err := store.Get(context.Background(), k); ok || err != nil {
		t.Fatalf("expected a miss, got ok=%v err=%v", ok, err)
	}
	if err := store.Set(context.Background(), k, []byte(`[]`)); err != nil {
		t.Fatalf("set: %v", err)
	}
	if data, ok, err := store.Get(context.Background(), k); !ok || err != nil || string(data) != "[]" {
		t.Errorf("expected stored value, got %q ok=%v err=%v", data, ok, err)
	}
}
