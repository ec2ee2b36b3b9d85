package storage

import (
	"context"
	"path/filepath"
	"testing"

	"unitrates/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "records.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func intp(v int) *int { return &v }

func seedRecords(t *testing.T, repo *SQLiteRepository) {
	t.Helper()
	records := []core.Record{
		{
			GNCFile: "GNC-001", Province: "Alberta", City: "Calgary",
			ItemDescription: "Drywall Installation", UOM: "sqft", UnitRate: 2.5,
			InvoiceDate: "2025-03-07", Year: intp(2025), Month: intp(3), MonthName: "March",
			FileName: "march.xlsx",
		},
		{
			GNCFile: "GNC-002", Province: "Alberta", City: "Edmonton",
			ItemDescription: "Drywall Repair", UOM: "sqft", UnitRate: 3.1,
			InvoiceDate: "2025-04-12", Year: intp(2025), Month: intp(4), MonthName: "April",
			FileName: "april.xlsx",
		},
		{
			GNCFile: "GNC-003", Province: "Ontario", City: "Toronto",
			ItemDescription: "Demolition Work", UOM: "hr", UnitRate: 85,
			InvoiceDate: "2024-12-01", Year: intp(2024), Month: intp(12), MonthName: "December",
			FileName: "december.xlsx",
		},
		{
			GNCFile: "GNC-004", Province: "Ontario", City: "Ottawa",
			ItemDescription: "", UOM: "ea", UnitRate: 10,
			FileName: "undated.xlsx",
		},
	}
	if err := repo.ReplaceAll(context.Background(), records); err != nil {
		t.Fatalf("seed records: %v", err)
	}
}

func TestSearchExactTokenAnd(t *testing.T) {
	repo := newTestRepo(t)
	seedRecords(t, repo)

	got, err := repo.SearchExact(context.Background(), []string{"drywall"}, "", core.Filters{}, 50)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 drywall records, got %d", len(got))
	}
	// Equal scores keep store order.
	if got[0].ItemDescription != "Drywall Installation" || got[1].ItemDescription != "Drywall Repair" {
		t.Fatalf("unexpected order: %q, %q", got[0].ItemDescription, got[1].ItemDescription)
	}
	for _, r := range got {
		if r.Score != 1 {
			t.Fatalf("expected score 1 for single-token query, got %d", r.Score)
		}
	}
}

func TestSearchExactAllTokensRequired(t *testing.T) {
	repo := newTestRepo(t)
	seedRecords(t, repo)

	got, err := repo.SearchExact(context.Background(), []string{"drywall", "repair"}, "", core.Filters{}, 50)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(got) != 1 || got[0].ItemDescription != "Drywall Repair" {
		t.Fatalf("expected only the repair record, got %+v", got)
	}
	if got[0].Score != 2 {
		t.Fatalf("expected score 2 with two tokens, got %d", got[0].Score)
	}
}

func TestSearchExactFilters(t *testing.T) {
	repo := newTestRepo(t)
	seedRecords(t, repo)

	city := "Edmonton"
	got, err := repo.SearchExact(context.Background(), []string{"drywall"}, "", core.Filters{City: &city}, 50)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(got) != 1 || got[0].City != "Edmonton" {
		t.Fatalf("city filter not applied: %+v", got)
	}

	year := 2024
	got, err = repo.SearchExact(context.Background(), []string{"demolition"}, "", core.Filters{Year: &year}, 50)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(got) != 1 || got[0].Year == nil || *got[0].Year != 2024 {
		t.Fatalf("year filter not applied: %+v", got)
	}
}

func TestSearchExactLimit(t *testing.T) {
	repo := newTestRepo(t)
	seedRecords(t, repo)

	got, err := repo.SearchExact(context.Background(), []string{"drywall"}, "", core.Filters{}, 1)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("limit not applied, got %d rows", len(got))
	}
}

func TestSearchExactFallbackSubstring(t *testing.T) {
	repo := newTestRepo(t)
	seedRecords(t, repo)

	// Tokenizer yields nothing for "a"; the raw query matches as a substring.
	got, err := repo.SearchExact(context.Background(), nil, "demolition w", core.Filters{}, 50)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(got) != 1 || got[0].ItemDescription != "Demolition Work" {
		t.Fatalf("fallback substring not applied: %+v", got)
	}
	if got[0].Score != 0 {
		t.Fatalf("fallback score should be 0, got %d", got[0].Score)
	}
}

func TestFetchCandidates(t *testing.T) {
	repo := newTestRepo(t)
	seedRecords(t, repo)

	got, err := repo.FetchCandidates(context.Background(), core.Filters{}, 10000)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	// The empty-description row must be excluded.
	if len(got) != 3 {
		t.Fatalf("expected 3 candidates, got %d", len(got))
	}
	for _, c := range got {
		if c.RowID == 0 {
			t.Fatalf("candidate missing row identifier: %+v", c)
		}
	}
}

func TestFetchCandidatesCap(t *testing.T) {
	repo := newTestRepo(t)
	seedRecords(t, repo)

	got, err := repo.FetchCandidates(context.Background(), core.Filters{}, 2)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("candidate cap not enforced, got %d rows", len(got))
	}
}

func TestDistinctCatalogQueries(t *testing.T) {
	repo := newTestRepo(t)
	seedRecords(t, repo)
	ctx := context.Background()

	years, err := repo.DistinctYears(ctx)
	if err != nil {
		t.Fatalf("years: %v", err)
	}
	if len(years) != 2 || years[0] != 2024 || years[1] != 2025 {
		t.Fatalf("unexpected years: %v", years)
	}

	months, err := repo.DistinctMonths(ctx)
	if err != nil {
		t.Fatalf("months: %v", err)
	}
	if len(months) != 3 || months[0].Number != 3 || months[0].Name != "March" {
		t.Fatalf("unexpected months: %v", months)
	}

	provinces, err := repo.DistinctProvinces(ctx)
	if err != nil {
		t.Fatalf("provinces: %v", err)
	}
	if len(provinces) != 2 || provinces[0] != "Alberta" {
		t.Fatalf("unexpected provinces: %v", provinces)
	}

	cities, err := repo.DistinctCities(ctx)
	if err != nil {
		t.Fatalf("cities: %v", err)
	}
	if len(cities) != 4 {
		t.Fatalf("unexpected cities: %v", cities)
	}
}

func TestReadOnlyRepositoryMissingFile(t *testing.T) {
	if _, err := NewReadOnlyRepository(filepath.Join(t.TempDir(), "absent.db")); err == nil {
		t.Fatalf("expected error for missing database")
	}
}
