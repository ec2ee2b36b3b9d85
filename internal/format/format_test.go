package format

import (
	"testing"

	"unitrates/internal/core"
)

func intp(v int) *int { return &v }

func TestYearRendering(t *testing.T) {
	if got := Year(intp(2025)); got != "2025" {
		t.Fatalf("expected plain integer, got %q", got)
	}
	if got := Year(nil); got != "" {
		t.Fatalf("missing year should render empty, got %q", got)
	}
}

func TestUnitRateRendering(t *testing.T) {
	if got := UnitRate(2.5); got != "2.5" {
		t.Fatalf("got %q", got)
	}
	if got := UnitRate(85); got != "85" {
		t.Fatalf("whole rates should not carry a decimal point, got %q", got)
	}
}

func TestResultTableExactSchema(t *testing.T) {
	rs := core.ResultSet{Records: []core.ScoredRecord{{
		Record: core.Record{
			RowID: 7, GNCFile: "GNC-001", Province: "Alberta", City: "Calgary",
			ItemDescription: "Drywall Installation", UOM: "sqft", UnitRate: 2.5,
			Year: intp(2025), MonthName: "March", FileName: "march.xlsx",
		},
		Score: 1,
	}}}

	table := ResultTable(rs)
	if table.Columns[0] != "Invoice Year" {
		t.Fatalf("exact mode must not show a score column: %v", table.Columns)
	}
	if len(table.Rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(table.Rows))
	}
	row := table.Rows[0]
	if len(row) != len(table.Columns) {
		t.Fatalf("row width %d != %d columns", len(row), len(table.Columns))
	}
	want := []string{"2025", "March", "Alberta", "Calgary", "Drywall Installation", "sqft", "2.5", "GNC-001", "march.xlsx"}
	for i := range want {
		if row[i] != want[i] {
			t.Fatalf("cell %d = %q, want %q", i, row[i], want[i])
		}
	}
}

func TestResultTableFuzzySchema(t *testing.T) {
	rs := core.ResultSet{Fuzzy: true, Records: []core.ScoredRecord{{
		Record: core.Record{ItemDescription: "Drywall Repair"},
		Score:  93,
	}}}

	table := ResultTable(rs)
	if table.Columns[0] != "Score" {
		t.Fatalf("fuzzy mode must lead with the score column: %v", table.Columns)
	}
	if table.Rows[0][0] != "93" {
		t.Fatalf("score cell = %q", table.Rows[0][0])
	}
	// Absent year renders empty, not a null marker.
	if table.Rows[0][1] != "" {
		t.Fatalf("missing year cell = %q", table.Rows[0][1])
	}
}

func TestResultTableEmpty(t *testing.T) {
	table := ResultTable(core.ResultSet{})
	if len(table.Rows) != 0 {
		t.Fatalf("expected no rows")
	}
	if len(table.Columns) == 0 {
		t.Fatalf("columns must be present even for empty results")
	}
}
