// Package sentence splits spoken-language transcripts into sentences.
//
// Transcripts from speech-to-text are long and loosely punctuated, so the
// splitter is conservative: a terminator only ends a sentence when it is
// followed by whitespace and the next word does not start in lower case.
// Known abbreviations and decimal numbers never end a sentence.
package sentence

import (
	"strings"
	"unicode"
)

// DefaultAbbreviations are tokens whose trailing period never ends a sentence.
// Matching is case-sensitive on the token as written.
var DefaultAbbreviations = []string{
	"Dr.", "Mr.", "Mrs.", "Ms.", "Prof.", "Sr.", "Jr.", "St.", "Mt.",
	"etc.", "e.g.", "i.e.", "vs.", "approx.", "cf.", "al.",
}

// Splitter splits text into sentences. It holds no per-call state and is
// safe for concurrent use.
type Splitter struct {
	abbreviations map[string]struct{}
}

// Option configures a Splitter.
type Option func(*Splitter)

// WithAbbreviations adds tokens (including their trailing period) to the
// abbreviation set.
func WithAbbreviations(abbrs ...string) Option {
	return func(s *Splitter) {
		for _, a := range abbrs {
			s.abbreviations[a] = struct{}{}
		}
	}
}

// New creates a Splitter with the default abbreviation set.
func New(opts ...Option) *Splitter {
	s := &Splitter{
		abbreviations: make(map[string]struct{}, len(DefaultAbbreviations)),
	}
	for _, a := range DefaultAbbreviations {
		s.abbreviations[a] = struct{}{}
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var defaultSplitter = New()

// Split splits text into sentences using the default abbreviation set.
func Split(text string) []string {
	return defaultSplitter.Split(text)
}

// Split returns the ordered, trimmed, non-empty sentences of text.
// Empty input yields an empty slice.
func (s *Splitter) Split(text string) []string {
	runes := []rune(text)
	sentences := make([]string, 0)

	start := 0
	for i := 0; i < len(runes); i++ {
		if !isTerminator(runes[i]) {
			continue
		}

		// Consume the whole terminator run ("?!", "..") and any closing
		// quotes or brackets that belong to the sentence.
		runEnd := i
		for runEnd+1 < len(runes) && isTerminator(runes[runEnd+1]) {
			runEnd++
		}
		end := runEnd
		for end+1 < len(runes) && isCloser(runes[end+1]) {
			end++
		}

		if s.isBoundary(runes, i, runEnd, end) {
			sentences = appendSentence(sentences, runes[start:end+1])
			start = end + 1
		}
		i = end
	}
	if start < len(runes) {
		sentences = appendSentence(sentences, runes[start:])
	}

	return sentences
}

// isBoundary decides whether the terminator run runes[runStart..runEnd],
// followed by closers up to end, ends a sentence.
func (s *Splitter) isBoundary(runes []rune, runStart, runEnd, end int) bool {
	next := end + 1
	if next >= len(runes) {
		return true
	}

	if runStart == runEnd && runes[runStart] == '.' {
		// 3.14, including repeated decimals within one sentence.
		if runEnd == end && runStart > 0 && unicode.IsDigit(runes[runStart-1]) && unicode.IsDigit(runes[next]) {
			return false
		}
		if s.isAbbreviation(runes, runStart) {
			return false
		}
	}

	if !unicode.IsSpace(runes[next]) {
		return false
	}

	for next < len(runes) && unicode.IsSpace(runes[next]) {
		next++
	}
	if next >= len(runes) {
		return true
	}

	// Lower-case continuation is treated as the same sentence.
	return !unicode.IsLower(runes[next])
}

// isAbbreviation reports whether the token ending at the period at dot is a
// known abbreviation.
func (s *Splitter) isAbbreviation(runes []rune, dot int) bool {
	tokenStart := dot
	for tokenStart > 0 && !unicode.IsSpace(runes[tokenStart-1]) {
		tokenStart--
	}
	for tokenStart < dot && isOpener(runes[tokenStart]) {
		tokenStart++
	}
	if tokenStart == dot {
		return false
	}
	_, ok := s.abbreviations[string(runes[tokenStart:dot+1])]
	return ok
}

// appendSentence trims the candidate and keeps it only if it has content.
// Stray terminator runs (". ." or "?!") do not count as sentences.
func appendSentence(sentences []string, candidate []rune) []string {
	text := strings.TrimSpace(string(candidate))
	if text == "" || !strings.ContainsFunc(text, isWordRune) {
		return sentences
	}
	return append(sentences, text)
}

func isTerminator(r rune) bool {
	return r == '.' || r == '!' || r == '?' || r == '…'
}

func isCloser(r rune) bool {
	switch r {
	case '"', '\'', ')', ']', '”', '’', '»':
		return true
	default:
		return false
	}
}

func isOpener(r rune) bool {
	switch r {
	case '"', '\'', '(', '[', '“', '‘', '«':
		return true
	default:
		return false
	}
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
