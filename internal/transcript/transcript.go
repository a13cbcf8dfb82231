// Package transcript cleans raw speech-to-text output into the lowercase word
// tokens consumed by the timestamp grammar.
//
// Recognizers differ in how they render the same utterance: whisper.cpp
// produces sentence case with punctuation and hyphenated compounds
// ("Twenty-one, Monday, March 18th.") and wraps non-speech in brackets
// ("[BLANK_AUDIO]", "(wind blowing)"). [Normalize] reduces all of these to the
// plain token stream of other engines ("twenty one monday march 18th").
package transcript

import (
	"strings"
	"unicode"
)

// Normalize lowercases text, removes bracketed annotations, splits hyphenated
// compounds and strips punctuation. Apostrophes inside a word are kept so
// that "o'clock" survives as one token.
func Normalize(text string) []string {
	text = stripAnnotations(strings.ToLower(text))

	fields := strings.FieldsFunc(text, func(r rune) bool {
		return unicode.IsSpace(r) || r == '-' || r == '–' || r == '—' || r == '/'
	})

	words := make([]string, 0, len(fields))
	for _, f := range fields {
		if w := cleanWord(f); w != "" {
			words = append(words, w)
		}
	}
	return words
}

// cleanWord drops every rune that is not a letter, digit or in-word
// apostrophe.
func cleanWord(w string) string {
	w = strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			return r
		case r == '\'' || r == '’':
			return '\''
		}
		return -1
	}, w)
	return strings.Trim(w, "'")
}

// stripAnnotations removes "[...]" and "(...)" spans. An unterminated
// bracket removes the rest of the text.
func stripAnnotations(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	var closer rune
	for _, r := range text {
		switch {
		case closer != 0:
			if r == closer {
				closer = 0
				b.WriteRune(' ')
			}
		case r == '[':
			closer = ']'
		case r == '(':
			closer = ')'
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
