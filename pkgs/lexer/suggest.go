package lexer

import (
	"github.com/lithammer/fuzzysearch/fuzzy"
)

// maxSuggestDistance bounds how far a misspelt word may be from a keyword
const maxSuggestDistance = 2

// SuggestKeyword returns the keyword closest to word, for "did you mean"
// hints on UNKNOWN or ID tokens. ok is false when nothing is close enough or
// word already is a keyword.
func SuggestKeyword(word string) (keyword string, ok bool) {
	if Classify(word).IsKeyword() {
		return "", false
	}

	best := maxSuggestDistance + 1
	for _, kw := range keywordList {
		d := fuzzy.LevenshteinDistance(word, kw)
		if d < best && d < len(kw) {
			best = d
			keyword = kw
		}
	}
	if best > maxSuggestDistance {
		return "", false
	}
	return keyword, true
}
