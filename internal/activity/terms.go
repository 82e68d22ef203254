package activity

import (
	"regexp"
	"strings"
	"unicode"
)

var nonWord = regexp.MustCompile(`[^\p{L}\p{N}\s]+`)

var stopwords = map[string]struct{}{
	"a": {}, "an": {}, "the": {}, "and": {}, "or": {}, "of": {},
	"to": {}, "in": {}, "on": {}, "for": {}, "with": {}, "about": {},
	"is": {}, "are": {}, "was": {}, "what": {}, "how": {}, "why": {},
}

// ExtractTerms normalizes an event subject (a search topic, filter list, or
// prompt fragment) into lowercase terms for aggregation. Order of first
// appearance is kept; duplicates and stopwords are dropped.
func ExtractTerms(subject string, limit, minLen int) []string {
	clean := nonWord.ReplaceAllString(strings.ToLower(subject), " ")
	if strings.TrimSpace(clean) == "" {
		return nil
	}

	seen := make(map[string]struct{})
	var terms []string
	for _, token := range strings.Fields(clean) {
		token = strings.TrimFunc(token, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsNumber(r)
		})
		if len([]rune(token)) < minLen {
			continue
		}
		if _, skip := stopwords[token]; skip {
			continue
		}
		if _, dup := seen[token]; dup {
			continue
		}
		seen[token] = struct{}{}
		terms = append(terms, token)
		if limit > 0 && len(terms) == limit {
			break
		}
	}
	return terms
}
