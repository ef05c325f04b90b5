package window

import (
	"go-commentary/textutil"
	"go-commentary/types"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	DefaultWindowTokens      = 20
	DefaultMaxSentenceTokens = 50
)

var abbreviations = map[string]bool{
	"mr": true, "mrs": true, "ms": true, "dr": true, "st": true, "jr": true, "sr": true, "vs": true,
}

type Options struct {
	// WindowTokens is the size of the fallback window.
	WindowTokens int
	// MaxSentenceTokens is the longest sentence still treated as a clear boundary.
	MaxSentenceTokens int
}

type Builder struct {
	opts Options
}

func NewBuilder(opts Options) *Builder {
	if opts.WindowTokens <= 0 {
		opts.WindowTokens = DefaultWindowTokens
	}
	if opts.MaxSentenceTokens <= 0 {
		opts.MaxSentenceTokens = DefaultMaxSentenceTokens
	}
	return &Builder{opts: opts}
}

// Build returns one window per mention, in mention order. Mentions of the
// same player in one sentence each get their own window.
func (b *Builder) Build(text string, mentions []types.Mention) []types.ContextWindow {
	if len(mentions) == 0 {
		return nil
	}
	sentences := Sentences(text)
	var tokens []textutil.Token

	windows := make([]types.ContextWindow, 0, len(mentions))
	for i, m := range mentions {
		w := types.ContextWindow{MentionIndex: i, PlayerID: m.PlayerID, Mention: m.Span}

		if s, ok := enclosing(sentences, m.Span); ok && len(textutil.Tokenize(text[s.Start:s.End])) <= b.opts.MaxSentenceTokens {
			w.Start, w.End = s.Start, s.End
		} else {
			if tokens == nil {
				tokens = textutil.Tokenize(text)
			}
			w.Start, w.End = b.tokenWindow(tokens, m.Span)
			w.Fallback = true
		}
		w.Text = text[w.Start:w.End]
		windows = append(windows, w)
	}
	return windows
}

// tokenWindow takes WindowTokens tokens centred on the mention, shifting
// toward the other side at the edges of the text.
func (b *Builder) tokenWindow(tokens []textutil.Token, span types.Span) (int, int) {
	first, last, ok := textutil.Overlapping(tokens, span.Start, span.End)
	if !ok {
		return span.Start, span.End
	}
	extra := b.opts.WindowTokens - (last - first + 1)
	if extra < 0 {
		extra = 0
	}
	before := extra / 2
	lo, hi := first-before, last+extra-before
	if lo < 0 {
		hi -= lo
		lo = 0
	}
	if hi > len(tokens)-1 {
		lo -= hi - (len(tokens) - 1)
		hi = len(tokens) - 1
		if lo < 0 {
			lo = 0
		}
	}
	return tokens[lo].Start, tokens[hi].End
}

func enclosing(sentences []types.Span, span types.Span) (types.Span, bool) {
	for _, s := range sentences {
		if s.Contains(span) {
			return s, true
		}
		if s.Start >= span.End {
			break
		}
	}
	return types.Span{}, false
}

// Sentences splits text into trimmed sentence spans. A sentence ends at
// . ! or ? followed by whitespace and an upper case letter, at the end of
// the text, or at a line break.
func Sentences(text string) []types.Span {
	var out []types.Span
	start := 0
	emit := func(end int) {
		s := trim(text, start, end)
		if s.Start < s.End {
			out = append(out, s)
		}
		start = end
	}

	for i := 0; i < len(text); i++ {
		c := text[i]
		if c == '\n' {
			emit(i)
			continue
		}
		if c != '.' && c != '!' && c != '?' {
			continue
		}
		if c == '.' && abbreviations[strings.ToLower(wordBefore(text, i))] {
			continue
		}

		end := i + 1
		for end < len(text) && (text[end] == '"' || text[end] == '\'' || text[end] == ')' || text[end] == '.' || text[end] == '!' || text[end] == '?') {
			end++
		}
		if end >= len(text) {
			emit(len(text))
			break
		}
		if nextStartsSentence(text, end) {
			emit(end)
			i = end - 1
		}
	}
	if start < len(text) {
		emit(len(text))
	}
	return out
}

func nextStartsSentence(text string, i int) bool {
	r, size := utf8.DecodeRuneInString(text[i:])
	if !unicode.IsSpace(r) {
		return false
	}
	j := i + size
	for j < len(text) {
		r, size = utf8.DecodeRuneInString(text[j:])
		if r == '\n' {
			return true
		}
		if !unicode.IsSpace(r) {
			break
		}
		j += size
	}
	for j < len(text) && (text[j] == '"' || text[j] == '\'' || text[j] == '(') {
		j++
	}
	if j >= len(text) {
		return true
	}
	r, _ = utf8.DecodeRuneInString(text[j:])
	return unicode.IsUpper(r) || unicode.IsDigit(r)
}

func wordBefore(text string, i int) string {
	j := i
	for j > 0 && textutil.IsWordCharBefore(text, j) {
		_, size := utf8.DecodeLastRuneInString(text[:j])
		j -= size
	}
	return text[j:i]
}

func trim(text string, start, end int) types.Span {
	for start < end {
		r, size := utf8.DecodeRuneInString(text[start:end])
		if !unicode.IsSpace(r) {
			break
		}
		start += size
	}
	for end > start {
		r, size := utf8.DecodeLastRuneInString(text[start:end])
		if !unicode.IsSpace(r) {
			break
		}
		end -= size
	}
	return types.Span{Start: start, End: end}
}
