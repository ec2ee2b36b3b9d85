package search

import (
	"testing"

	"unitrates/internal/core"
)

// lengthScorer scores by candidate description length, which makes
// ranking order easy to control in tests.
type lengthScorer struct{}

func (lengthScorer) Score(_, text string) int {
	if n := len(text); n <= 100 {
		return n
	}
	return 100
}

func record(id int64, desc string) core.Record {
	return core.Record{RowID: id, ItemDescription: desc}
}

func TestRankFuzzyThresholdAndOrder(t *testing.T) {
	candidates := []core.Record{
		record(1, "aaaa"),       // 4
		record(2, "aaaaaaaaaa"), // 10
		record(3, "aaaaaa"),     // 6
	}
	got := rankFuzzy(candidates, "query", 10, 6, DefaultOverfetch, lengthScorer{})
	if len(got) != 2 {
		t.Fatalf("expected 2 results, got %d", len(got))
	}
	if got[0].RowID != 2 || got[1].RowID != 3 {
		t.Fatalf("unexpected order: %d, %d", got[0].RowID, got[1].RowID)
	}
	for _, r := range got {
		if r.Score < 6 {
			t.Fatalf("score %d below threshold", r.Score)
		}
	}
}

func TestRankFuzzyStableTies(t *testing.T) {
	candidates := []core.Record{
		record(10, "aaaa"),
		record(20, "bbbb"),
		record(30, "cccc"),
	}
	got := rankFuzzy(candidates, "query", 10, 0, DefaultOverfetch, lengthScorer{})
	if len(got) != 3 {
		t.Fatalf("expected 3 results, got %d", len(got))
	}
	for i, want := range []int64{10, 20, 30} {
		if got[i].RowID != want {
			t.Fatalf("tie order broken at %d: got %d, want %d", i, got[i].RowID, want)
		}
	}
}

func TestRankFuzzyLimit(t *testing.T) {
	var candidates []core.Record
	for i := int64(0); i < 50; i++ {
		candidates = append(candidates, record(i, "aaaaaaaa"))
	}
	got := rankFuzzy(candidates, "query", 5, 0, DefaultOverfetch, lengthScorer{})
	if len(got) != 5 {
		t.Fatalf("expected limit of 5, got %d", len(got))
	}
}

func TestRankFuzzyOversizedLimit(t *testing.T) {
	// A limit far beyond the candidate count must not size allocations
	// or overflow the over-fetch multiplication.
	candidates := []core.Record{
		record(1, "aaaa"),     // 4
		record(2, "aaaaaaaa"), // 8
	}
	got := rankFuzzy(candidates, "query", 1<<62, 0, DefaultOverfetch, lengthScorer{})
	if len(got) != 2 {
		t.Fatalf("expected all candidates, got %d", len(got))
	}
	if got[0].RowID != 2 || got[1].RowID != 1 {
		t.Fatalf("unexpected order: %d, %d", got[0].RowID, got[1].RowID)
	}
}

func TestRankFuzzyOverfetchBoundsThresholding(t *testing.T) {
	// With limit 1 and overfetch 2, only the two highest-scored rows
	// are considered before the score cut.
	candidates := []core.Record{
		record(1, "aa"),        // 2
		record(2, "aaaa"),      // 4
		record(3, "aaaaaaaaa"), // 9, but below threshold 10
	}
	got := rankFuzzy(candidates, "query", 1, 10, 2, lengthScorer{})
	if len(got) != 0 {
		t.Fatalf("expected empty result, got %d rows", len(got))
	}
}

func TestRankFuzzyEmptyQuery(t *testing.T) {
	candidates := []core.Record{record(1, "Drywall Installation")}
	for _, q := range []string{"", "   ", "the and", "a b"} {
		if got := rankFuzzy(candidates, q, 200, 70, DefaultOverfetch, lengthScorer{}); len(got) != 0 {
			t.Fatalf("query %q: expected empty result, got %d rows", q, len(got))
		}
	}
}

func TestRankFuzzyEmptyCandidates(t *testing.T) {
	if got := rankFuzzy(nil, "drywall", 50, 70, DefaultOverfetch, lengthScorer{}); len(got) != 0 {
		t.Fatalf("expected empty result, got %d rows", len(got))
	}
}

func TestTokenSetScorerReordering(t *testing.T) {
	s := TokenSetScorer{}
	if got := s.Score("installation drywall", "Drywall Installation"); got != 100 {
		t.Fatalf("reordered words should score 100, got %d", got)
	}
}

func TestTokenSetScorerSubset(t *testing.T) {
	s := TokenSetScorer{}
	// The query's word set is contained in the description's.
	if got := s.Score("drywall", "Drywall Installation"); got != 100 {
		t.Fatalf("word subset should score 100, got %d", got)
	}
}

func TestTokenSetScorerTypo(t *testing.T) {
	s := TokenSetScorer{}
	got := s.Score("driwall repair", "Drywall Repair")
	if got < 70 || got >= 100 {
		t.Fatalf("typo match should land in [70,100), got %d", got)
	}
}

func TestTokenSetScorerUnrelated(t *testing.T) {
	s := TokenSetScorer{}
	if got := s.Score("drywall", "Demolition Work"); got >= 50 {
		t.Fatalf("unrelated text scored too high: %d", got)
	}
}

func TestRankFuzzyDrywallScenario(t *testing.T) {
	candidates := []core.Record{
		record(1, "Drywall Installation"),
		record(2, "Drywall Repair"),
		record(3, "Demolition Work"),
	}
	got := rankFuzzy(candidates, "drywall", 50, 70, DefaultOverfetch, TokenSetScorer{})
	if len(got) != 2 {
		t.Fatalf("expected the two drywall records, got %d rows", len(got))
	}
	seen := map[int64]bool{got[0].RowID: true, got[1].RowID: true}
	if !seen[1] || !seen[2] {
		t.Fatalf("wrong records returned: %v", seen)
	}
	for _, r := range got {
		if r.Score < 70 {
			t.Fatalf("record %d scored %d, below threshold", r.RowID, r.Score)
		}
	}
}
