package search

import (
	fuzzywuzzy "github.com/paul-mannino/go-fuzzywuzzy"
)

// Scorer computes a similarity between a query and a candidate text,
// scored 0 to 100. The fuzzy ranker treats it as a pluggable capability
// so alternate metrics can be substituted without touching the ranking
// algorithm.
type Scorer interface {
	Score(query, text string) int
}

// TokenSetScorer is the default Scorer: token-set similarity. Both
// strings are tokenized into word sets and compared on shared versus
// unique tokens, which makes the measure robust to word reordering and
// to one string's words being a subset of the other's. A plain edit
// distance ratio is not an acceptable replacement here; it ranks
// reordered and partially overlapping descriptions very differently.
type TokenSetScorer struct{}

func (TokenSetScorer) Score(query, text string) int {
	return fuzzywuzzy.TokenSetRatio(query, text)
}
