package search

import (
	"sort"

	"unitrates/internal/core"
)

// DefaultOverfetch is how many times the result limit the ranker keeps
// ahead of thresholding. Scoring keeps more rows than the caller asked
// for so the result does not come up short when many candidates fall
// below the minimum score. The value is a heuristic carried over from
// the reference deployment, not a tuned parameter.
const DefaultOverfetch = 10

// rankFuzzy scores every candidate's item description against the
// normalized query, keeps those at or above minScore, and returns the
// top results by descending score. Ties keep candidate order (the
// store's delivery order), so ranking is deterministic.
func rankFuzzy(candidates []core.Record, query string, limit, minScore, overfetch int, scorer Scorer) []core.ScoredRecord {
	norm := NormalizeQuery(query)
	if norm == "" {
		return nil
	}

	scored := make([]core.ScoredRecord, 0, len(candidates))
	for _, c := range candidates {
		scored = append(scored, core.ScoredRecord{
			Record: c,
			Score:  scorer.Score(norm, c.ItemDescription),
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	// Threshold only within the over-fetched pool, mirroring how the
	// candidate scoring is bounded: limit*overfetch rows at most are
	// considered before the score cut. An oversized limit must not
	// overflow the multiplication or size an allocation.
	pool := limit * overfetch
	if pool/overfetch != limit || pool > len(scored) {
		pool = len(scored)
	}

	capHint := limit
	if capHint > len(scored) {
		capHint = len(scored)
	}
	picked := make([]core.ScoredRecord, 0, capHint)
	for _, s := range scored[:pool] {
		if s.Score < minScore {
			continue
		}
		picked = append(picked, s)
		if len(picked) >= limit {
			break
		}
	}
	return picked
}
