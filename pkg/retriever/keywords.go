package retriever

import (
	"regexp"
	"strings"
)

// DefaultMinKeywordLen is the minimum token length kept after stopword
// filtering: tokens must be strictly longer than this.
const DefaultMinKeywordLen = 2

var tokenRe = regexp.MustCompile(`[a-z0-9]+`)

// Function words, interrogatives and politeness fillers that carry no
// retrieval signal.
var stopwords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {}, "be": {},
	"but": {}, "by": {}, "for": {}, "if": {}, "in": {}, "into": {}, "is": {},
	"it": {}, "no": {}, "not": {}, "of": {}, "on": {}, "or": {}, "such": {},
	"that": {}, "the": {}, "their": {}, "then": {}, "there": {}, "these": {},
	"they": {}, "this": {}, "to": {}, "was": {}, "will": {}, "with": {},
	"what": {}, "who": {}, "where": {}, "when": {}, "why": {}, "how": {},
	"can": {}, "do": {}, "does": {}, "did": {}, "have": {}, "has": {},
	"had": {}, "would": {}, "could": {}, "should": {}, "about": {},
	"please": {}, "tell": {}, "me": {}, "explain": {},
}

// ExtractKeywords normalizes text into its significant terms:
// lowercase, word-character tokens, stopwords and short tokens removed.
// Order is preserved and duplicates are kept; consumers must tolerate
// both. Empty input yields an empty result.
func ExtractKeywords(text string) []string {
	return extractKeywords(text, DefaultMinKeywordLen)
}

func extractKeywords(text string, minLen int) []string {
	if text == "" {
		return nil
	}
	if minLen <= 0 {
		minLen = DefaultMinKeywordLen
	}

	var keywords []string
	for _, word := range tokenRe.FindAllString(strings.ToLower(text), -1) {
		if _, stop := stopwords[word]; stop {
			continue
		}
		if len(word) <= minLen {
			continue
		}
		keywords = append(keywords, word)
	}
	return keywords
}
