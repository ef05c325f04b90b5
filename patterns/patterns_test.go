package patterns

import (
	"go-commentary/types"
	"reflect"
	"strings"
	"testing"
)

type tok struct {
	text, pos, dep string
	head           int
}

// parse lays tokens out left to right, one space apart unless the token is punctuation.
func parse(toks ...tok) (string, []types.SyntaxToken) {
	var b strings.Builder
	out := make([]types.SyntaxToken, len(toks))
	for i, t := range toks {
		if i > 0 && t.pos != types.POSPunctuation {
			b.WriteByte(' ')
		}
		out[i] = types.SyntaxToken{Text: t.text, Lemma: strings.ToLower(t.text), Offset: b.Len(), POS: t.pos, HeadIndex: t.head, Dep: t.dep}
		b.WriteString(t.text)
	}
	return b.String(), out
}

func windowFor(text string, offset int, mention string) types.ContextWindow {
	i := strings.Index(text, mention)
	return types.ContextWindow{
		Text:    text,
		Start:   offset,
		End:     offset + len(text),
		Mention: types.Span{Start: offset + i, End: offset + i + len(mention)},
	}
}

func TestExtractPredicateAndConjoinedAdjectives(t *testing.T) {
	text, tokens := parse(
		tok{"Smith", "NOUN", "NSUBJ", 1},
		tok{"is", "VERB", "ROOT", 1},
		tok{"brilliant", "ADJ", "ACOMP", 1},
		tok{"and", "CONJ", "CC", 2},
		tok{"clever", "ADJ", "CONJ", 2},
		tok{",", "PUNCT", "P", 1},
		tok{"and", "CONJ", "CC", 1},
		tok{"he", "PRON", "NSUBJ", 8},
		tok{"looks", "VERB", "CONJ", 1},
		tok{"unstoppable", "ADJ", "ACOMP", 8},
		tok{".", "PUNCT", "P", 1},
	)
	score := 0.7
	got := NewExtractor(Options{}).Extract(windowFor(text, 100, "Smith"), tokens, &score, nil)

	if want := []string{"brilliant", "clever", "unstoppable"}; !reflect.DeepEqual(got.Adjectives, want) {
		t.Errorf("adjectives = %v, want %v", got.Adjectives, want)
	}
	wantPhrases := []string{
		"smith is", "and he", "he looks",
		"smith is brilliant and", "and clever and he", "clever and he looks", "and he looks unstoppable",
	}
	if !reflect.DeepEqual(got.Phrases, wantPhrases) {
		t.Errorf("phrases = %v, want %v", got.Phrases, wantPhrases)
	}
	if got.Sentiment == nil || *got.Sentiment != 0.7 {
		t.Errorf("patterns must inherit the window sentiment")
	}
}

func TestExtractModifiersSkipGeneric(t *testing.T) {
	text, tokens := parse(
		tok{"The", "DET", "DET", 3},
		tok{"old", "ADJ", "AMOD", 3},
		tok{"fearless", "ADJ", "AMOD", 3},
		tok{"Smith", "NOUN", "NSUBJ", 4},
		tok{"scores", "VERB", "ROOT", 4},
	)
	got := NewExtractor(Options{}).Extract(windowFor(text, 0, "Smith"), tokens, nil, nil)
	if want := []string{"fearless"}; !reflect.DeepEqual(got.Adjectives, want) {
		t.Errorf("adjectives = %v, want %v", got.Adjectives, want)
	}
	if got.Sentiment != nil {
		t.Errorf("unavailable window sentiment must stay nil")
	}
}

func TestPronounsStopAtOtherPlayers(t *testing.T) {
	text, tokens := parse(
		tok{"Smith", "NOUN", "NSUBJ", 1},
		tok{"passed", "VERB", "ROOT", 1},
		tok{"to", "ADP", "PREP", 1},
		tok{"Jones", "NOUN", "POBJ", 2},
		tok{"and", "CONJ", "CC", 1},
		tok{"he", "PRON", "NSUBJ", 6},
		tok{"scored", "VERB", "CONJ", 1},
		tok{".", "PUNCT", "P", 1},
	)
	w := windowFor(text, 10, "Smith")
	j := strings.Index(text, "Jones")
	others := []types.Span{{Start: 10 + j, End: 10 + j + len("Jones")}}

	got := NewExtractor(Options{NGrams: []int{2}}).Extract(w, tokens, nil, others)
	for _, p := range got.Phrases {
		if strings.Contains(p, "he ") || strings.HasSuffix(p, " he") {
			t.Errorf("pronoun after another player should not be attributed: %q", p)
		}
	}
	if want := []string{"smith passed"}; !reflect.DeepEqual(got.Phrases, want) {
		t.Errorf("phrases = %v, want %v", got.Phrases, want)
	}
}

func TestExtractWithoutSyntax(t *testing.T) {
	score := -0.2
	got := NewExtractor(Options{}).Extract(windowFor("Smith again", 0, "Smith"), nil, &score, nil)
	if len(got.Adjectives) != 0 || len(got.Phrases) != 0 {
		t.Errorf("expected no patterns without tokens, got %+v", got)
	}
}
