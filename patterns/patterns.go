package patterns

import (
	"go-commentary/types"
	"strings"
	"unicode"
)

const minAdjectiveLen = 3

var defaultNGrams = []int{2, 4}

// skipAdjectives are too generic to say anything about a player.
var skipAdjectives = map[string]bool{
	"other": true, "same": true, "new": true, "old": true, "first": true, "last": true, "next": true, "more": true,
	"many": true, "few": true, "several": true, "such": true, "own": true, "only": true, "main": true, "certain": true,
}

var pronouns = map[string]bool{
	"he": true, "him": true, "his": true, "himself": true,
	"she": true, "her": true, "hers": true, "herself": true,
}

type Options struct {
	// NGrams are the phrase lengths collected, 2 and 4 by default.
	NGrams []int
}

type Extractor struct {
	ngrams []int
}

func NewExtractor(opts Options) *Extractor {
	ngrams := opts.NGrams
	if len(ngrams) == 0 {
		ngrams = defaultNGrams
	}
	return &Extractor{ngrams: ngrams}
}

// Extract finds adjectives attached to the window's mention and the n-grams
// that contain it. tokens use window offsets; the mention and others use
// transcript offsets. others are mentions of different players and stop
// pronouns from being attributed past them.
func (e *Extractor) Extract(w types.ContextWindow, tokens []types.SyntaxToken, sentiment *float64, others []types.Span) types.WindowPatterns {
	out := types.WindowPatterns{Sentiment: sentiment}
	if len(tokens) == 0 {
		return out
	}

	mention := w.Relative(w.Mention)
	refs := referenceTokens(tokens, mention)
	if len(refs) == 0 {
		return out
	}
	cutoff := len(w.Text)
	for _, o := range others {
		rel := w.Relative(o)
		if rel.Start >= mention.End && rel.Start < cutoff {
			cutoff = rel.Start
		}
	}
	for i, t := range tokens {
		if t.POS == types.POSPronoun && pronouns[strings.ToLower(t.Text)] && t.Offset >= mention.End && t.Offset < cutoff {
			refs[i] = true
		}
	}

	out.Adjectives = adjectives(tokens, refs)
	out.Phrases = e.phrases(tokens, refs)
	return out
}

func referenceTokens(tokens []types.SyntaxToken, mention types.Span) map[int]bool {
	refs := make(map[int]bool)
	for i, t := range tokens {
		if t.Span().Overlaps(mention) {
			refs[i] = true
		}
	}
	return refs
}

// adjectives takes direct modifiers of a reference, predicate adjectives of
// a clause whose subject is a reference, and adjectives conjoined to either.
func adjectives(tokens []types.SyntaxToken, refs map[int]bool) []string {
	subjectOf := make(map[int]bool)
	for i, t := range tokens {
		if refs[i] && strings.HasPrefix(t.Dep, types.DepNominalSubject) {
			subjectOf[t.HeadIndex] = true
		}
	}

	matched := make(map[int]bool)
	for i, t := range tokens {
		if t.POS != types.POSAdjective || !validHead(tokens, t.HeadIndex) {
			continue
		}
		switch t.Dep {
		case types.DepAdjectivalModifier:
			matched[i] = refs[t.HeadIndex]
		case types.DepAdjectivalComp, types.DepAttribute:
			matched[i] = subjectOf[t.HeadIndex]
		}
	}
	for changed := true; changed; {
		changed = false
		for i, t := range tokens {
			if matched[i] || t.POS != types.POSAdjective || t.Dep != types.DepConjunct || !validHead(tokens, t.HeadIndex) {
				continue
			}
			if matched[t.HeadIndex] {
				matched[i] = true
				changed = true
			}
		}
	}

	var words []string
	for i, t := range tokens {
		if !matched[i] {
			continue
		}
		word := strings.ToLower(t.Lemma)
		if word == "" {
			word = strings.ToLower(t.Text)
		}
		if len(word) < minAdjectiveLen || skipAdjectives[word] || isNumeric(word) {
			continue
		}
		words = append(words, word)
	}
	return words
}

func (e *Extractor) phrases(tokens []types.SyntaxToken, refs map[int]bool) []string {
	type word struct {
		text string
		ref  bool
	}
	var words []word
	for i, t := range tokens {
		if t.POS == types.POSPunctuation {
			continue
		}
		words = append(words, word{text: strings.ToLower(t.Text), ref: refs[i]})
	}

	var out []string
	for _, n := range e.ngrams {
		for i := 0; i+n <= len(words); i++ {
			gram := words[i : i+n]
			hasRef := false
			parts := make([]string, n)
			for j, w := range gram {
				parts[j] = w.text
				hasRef = hasRef || w.ref
			}
			if hasRef {
				out = append(out, strings.Join(parts, " "))
			}
		}
	}
	return out
}

func validHead(tokens []types.SyntaxToken, i int) bool {
	return i >= 0 && i < len(tokens)
}

func isNumeric(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) && r != '.' && r != ',' {
			return false
		}
	}
	return true
}
