package aggregate

import (
	"go-commentary/types"
	"math"
	"reflect"
	"testing"
)

var smith = types.Player{ID: "smith", Name: "John Smith", Team: "Lakers"}

func ptr(f float64) *float64 { return &f }

func observation(start int, score, conf float64, window string, adjectives ...string) Observation {
	return Observation{
		Mention:   types.Mention{PlayerID: smith.ID, Span: types.Span{Start: start, End: start + 5}, Confidence: 1},
		Window:    types.ContextWindow{Text: window},
		Sentiment: &types.MentionSentiment{Score: score, Confidence: conf, Label: types.LabelFor(score)},
		Patterns:  types.WindowPatterns{Adjectives: adjectives, Phrases: []string{"smith is"}, Sentiment: ptr(score)},
	}
}

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestTranscriptAggregation(t *testing.T) {
	obs := []Observation{
		observation(40, -0.2, 0.5, "Smith is slow tonight.", "slow"),
		observation(0, 0.6, 1, "Smith is brilliant and quick.", "brilliant", "quick"),
		observation(80, 0.8, 1, "Smith is quick again.", "quick"),
	}
	obs = append(obs, Observation{Mention: types.Mention{PlayerID: smith.ID, Span: types.Span{Start: 120, End: 125}, Confidence: 1}})

	r := Transcript("t1", smith, obs, Options{ExcerptCap: 2})

	if r.MentionCount != 3 || r.UnavailableMentions != 1 {
		t.Fatalf("expected 3 mentions and 1 unavailable, got %d/%d", r.MentionCount, r.UnavailableMentions)
	}
	if r.SentimentScore == nil || !approx(*r.SentimentScore, 0.4) {
		t.Fatalf("expected mean sentiment 0.4, got %v", r.SentimentScore)
	}
	if r.SentimentLabel != types.Positive {
		t.Errorf("expected positive label, got %s", r.SentimentLabel)
	}
	if !approx(r.Confidence, (0.5+1+1)/3) {
		t.Errorf("unexpected confidence %v", r.Confidence)
	}

	wantWords := []string{"quick", "brilliant", "slow"}
	for i, a := range r.Adjectives {
		if a.Word != wantWords[i] {
			t.Errorf("adjective %d = %s, want %s", i, a.Word, wantWords[i])
		}
	}
	if r.Adjectives[0].Count != 2 || !approx(*r.Adjectives[0].Sentiment, 0.7) {
		t.Errorf("quick should have count 2 and sentiment 0.7, got %+v", r.Adjectives[0])
	}
	if r.Phrases[0].Count != 3 || r.Phrases[0].Context != "Smith is brilliant and quick." {
		t.Errorf("phrase context should come from the earliest mention, got %+v", r.Phrases[0])
	}

	if len(r.Excerpts) != 2 {
		t.Fatalf("expected excerpts capped at 2, got %d", len(r.Excerpts))
	}
	if r.Excerpts[0].Position != 80 || r.Excerpts[1].Position != 0 {
		t.Errorf("excerpts should be ordered by |sentiment|, got %+v", r.Excerpts)
	}
}

func TestZeroMentionResult(t *testing.T) {
	r := Transcript("t1", smith, nil, Options{})
	if r.MentionCount != 0 || r.SentimentScore != nil || r.SentimentLabel != "" {
		t.Fatalf("expected empty result, got %+v", r)
	}

	mentioned := Transcript("t2", smith, []Observation{observation(0, 0.3, 1, "Smith is fine.")}, Options{})
	s := Summarize(smith, []types.AnalysisResult{r, mentioned}, Options{})
	if s.TotalMentions != 1 || s.TranscriptCount != 1 {
		t.Errorf("zero-mention result must not contribute, got %+v", s)
	}

	empty := Summarize(smith, []types.AnalysisResult{r}, Options{})
	if empty.AverageSentiment != nil || empty.TotalMentions != 0 {
		t.Errorf("average must be nil without mentions, got %+v", empty)
	}
}

func TestSummarizeWeightsByMentions(t *testing.T) {
	results := []types.AnalysisResult{
		{TranscriptID: "a", PlayerID: "smith", MentionCount: 3, SentimentScore: ptr(0.5),
			Adjectives: []types.AdjectiveDetail{{Word: "quick", Count: 2, Sentiment: ptr(0.5)}, {Word: "calm", Count: 1, Sentiment: ptr(0.2)}}},
		{TranscriptID: "b", PlayerID: "smith", MentionCount: 1, SentimentScore: ptr(-0.5),
			Adjectives: []types.AdjectiveDetail{{Word: "quick", Count: 1, Sentiment: ptr(-0.4)}, {Word: "calm", Count: 2, Sentiment: nil}}},
		{TranscriptID: "c", PlayerID: "other", MentionCount: 9, SentimentScore: ptr(1)},
	}
	s := Summarize(smith, results, Options{})
	if s.TotalMentions != 4 || s.TranscriptCount != 2 {
		t.Fatalf("unexpected totals %+v", s)
	}
	if !approx(*s.AverageSentiment, 0.25) {
		t.Errorf("expected weighted average 0.25, got %v", *s.AverageSentiment)
	}
	if s.TopAdjectives[0].Word != "calm" || s.TopAdjectives[0].Count != 3 {
		t.Errorf("ties on count break lexicographically, got %+v", s.TopAdjectives)
	}
	if !approx(*s.TopAdjectives[0].Sentiment, 0.2) {
		t.Errorf("nil sentiments are ignored in the weighted mean, got %v", *s.TopAdjectives[0].Sentiment)
	}
	if !approx(*s.TopAdjectives[1].Sentiment, (0.5*2-0.4)/3) {
		t.Errorf("unexpected quick sentiment %v", *s.TopAdjectives[1].Sentiment)
	}
}

func TestSummarizeOrderIndependent(t *testing.T) {
	results := []types.AnalysisResult{
		{TranscriptID: "a", PlayerID: "smith", MentionCount: 3, SentimentScore: ptr(0.1),
			Phrases: []types.PhraseDetail{{Phrase: "smith drives", Count: 1, Context: "ctx a", Sentiment: ptr(0.1)}}},
		{TranscriptID: "b", PlayerID: "smith", MentionCount: 7, SentimentScore: ptr(-0.33),
			Phrases: []types.PhraseDetail{{Phrase: "smith drives", Count: 2, Context: "ctx b", Sentiment: ptr(-0.3)}}},
		{TranscriptID: "c", PlayerID: "smith", MentionCount: 1, SentimentScore: ptr(0.9)},
		{TranscriptID: "d", PlayerID: "smith", MentionCount: 0},
	}
	want := Summarize(smith, results, Options{})

	perms := [][]int{{3, 2, 1, 0}, {1, 3, 0, 2}, {2, 0, 3, 1}, {0, 2, 1, 3}}
	for _, p := range perms {
		shuffled := make([]types.AnalysisResult, len(p))
		for i, j := range p {
			shuffled[i] = results[j]
		}
		if got := Summarize(smith, shuffled, Options{}); !reflect.DeepEqual(got, want) {
			t.Errorf("permutation %v changed the summary:\n got %+v\nwant %+v", p, got, want)
		}
	}
	if want.TopPhrases[0].Context != "ctx a" {
		t.Errorf("phrase context should come from the first transcript, got %q", want.TopPhrases[0].Context)
	}
}

func TestPlayersAndTopPlayers(t *testing.T) {
	jones := types.Player{ID: "jones", Name: "Ann Jones"}
	roster := types.NewRoster([]types.Player{smith, jones})
	obs := []Observation{observation(0, 0.5, 1, "Smith scores.")}

	results := Players("t1", roster, obs, Options{}, false)
	if len(results) != 1 || results[0].PlayerID != "smith" {
		t.Fatalf("expected only mentioned players, got %+v", results)
	}
	all := Players("t1", roster, obs, Options{}, true)
	if len(all) != 2 || all[1].MentionCount != 0 {
		t.Fatalf("expected the whole roster, got %+v", all)
	}

	summaries := SummarizeAll(roster, all, Options{})
	top := TopPlayers(summaries, 5)
	if len(top) != 1 || top[0].PlayerID != "smith" {
		t.Errorf("zero-mention players must be excluded, got %+v", top)
	}
}
