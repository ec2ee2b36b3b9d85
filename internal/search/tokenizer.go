package search

import "strings"

// stopWords are discarded during tokenization. The set is fixed; it is
// part of the search contract, not configuration.
var stopWords = map[string]struct{}{
	"and": {}, "or": {}, "the": {}, "a": {}, "an": {},
	"to": {}, "of": {}, "for": {}, "in": {}, "on": {}, "with": {},
}

const minTermLength = 2

// Tokenize lower-cases the query and extracts maximal runs of ASCII
// alphanumerics as terms, dropping stop words and terms shorter than
// two characters. An empty or all-stopword query yields no terms;
// callers decide how to fall back.
func Tokenize(query string) []string {
	query = strings.ToLower(query)

	var terms []string
	var b strings.Builder
	flush := func() {
		if b.Len() == 0 {
			return
		}
		term := b.String()
		b.Reset()
		if len(term) < minTermLength {
			return
		}
		if _, stop := stopWords[term]; stop {
			return
		}
		terms = append(terms, term)
	}

	for _, r := range query {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			continue
		}
		flush()
	}
	flush()

	return terms
}

// NormalizeQuery reduces a raw query to the string the fuzzy scorer
// compares against. Surviving terms are rejoined with single spaces.
// When no terms survive, the trimmed lower-cased query is used as-is,
// unless it did contain alphanumeric runs that were all discarded
// (stop words, single characters): such a query has no searchable
// content and normalizes to empty.
func NormalizeQuery(query string) string {
	if terms := Tokenize(query); len(terms) > 0 {
		return strings.Join(terms, " ")
	}

	raw := strings.TrimSpace(strings.ToLower(query))
	if strings.ContainsFunc(raw, func(r rune) bool {
		return (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
	}) {
		return ""
	}
	return raw
}
