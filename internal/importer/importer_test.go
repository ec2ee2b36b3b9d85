package importer

import (
	"context"
	"strings"
	"testing"

	"unitrates/internal/core"
	"unitrates/internal/sheets/memory"
)

func compiledGrid() [][]string {
	return [][]string{
		{"Master Workbook"}, // title band above the header
		{"GNC File", "Item Description", "UOM", "Unit Rate", "Invoice Date", "File Name"},
		{"GNC-001", "Drywall Installation", "sqft", "2.50", "2025-03-07", "march.xlsx"},
		{"GNC-002", "Demolition Work", "hr", "1,250.00", "2024-12-01", "december.xlsx"},
		{"GNC-003", "Unpriced Item", "ea", "", "not a date", "odd.xlsx"},
		{"", ""}, // blank padding row
	}
}

func detailsGrid() [][]string {
	return [][]string{
		{"GNC File", "Province", "City"},
		{"GNC-001", "Alberta", "Calgary"},
		{"GNC-001", "Ontario", "Toronto"}, // duplicate: first occurrence wins
		{"GNC-002", "Ontario", "Toronto"},
	}
}

func TestBuildRecordsJoin(t *testing.T) {
	records, err := BuildRecords(compiledGrid(), detailsGrid())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}

	first := records[0]
	if first.Province != "Alberta" || first.City != "Calgary" {
		t.Fatalf("duplicate details should keep the first occurrence: %+v", first)
	}
	if first.UnitRate != 2.5 {
		t.Fatalf("unit rate = %v", first.UnitRate)
	}
	if first.Year == nil || *first.Year != 2025 {
		t.Fatalf("year not derived: %+v", first.Year)
	}
	if first.Month == nil || *first.Month != 3 || first.MonthName != "March" {
		t.Fatalf("month not derived: %v %q", first.Month, first.MonthName)
	}
	if first.InvoiceDate != "2025-03-07" {
		t.Fatalf("invoice date = %q", first.InvoiceDate)
	}

	second := records[1]
	if second.UnitRate != 1250 {
		t.Fatalf("thousands separator not stripped: %v", second.UnitRate)
	}
	if second.MonthName != "December" {
		t.Fatalf("month name = %q", second.MonthName)
	}

	// No matching details row: location stays empty.
	third := records[2]
	if third.Province != "" || third.City != "" {
		t.Fatalf("unmatched record should have no location: %+v", third)
	}
	// Unparseable date: no derived year or month.
	if third.Year != nil || third.Month != nil || third.MonthName != "" {
		t.Fatalf("unparseable date should leave date fields empty: %+v", third)
	}
}

func TestBuildRecordsMissingColumns(t *testing.T) {
	compiled := [][]string{
		{"Master Workbook"},
		{"GNC File", "UOM"}, // no Item Description
	}
	_, err := BuildRecords(compiled, detailsGrid())
	if err == nil || !strings.Contains(err.Error(), "Item Description") {
		t.Fatalf("expected missing-column error naming the column, got %v", err)
	}

	details := [][]string{{"GNC File", "Province"}} // no City
	_, err = BuildRecords(compiledGrid(), details)
	if err == nil || !strings.Contains(err.Error(), "City") {
		t.Fatalf("expected missing-column error naming the column, got %v", err)
	}
}

func TestBuildRecordsHeaderWhitespace(t *testing.T) {
	compiled := compiledGrid()
	compiled[1] = []string{" GNC  File ", "Item   Description", "UOM", "Unit Rate", "Invoice Date", "File Name"}
	records, err := BuildRecords(compiled, detailsGrid())
	if err != nil {
		t.Fatalf("build with ragged headers: %v", err)
	}
	if records[0].ItemDescription != "Drywall Installation" {
		t.Fatalf("header normalization failed: %+v", records[0])
	}
}

func TestBuildRecordsEmptySheets(t *testing.T) {
	if _, err := BuildRecords([][]string{{"title"}}, detailsGrid()); err == nil {
		t.Fatalf("expected error for compiled sheet without header")
	}
	if _, err := BuildRecords(compiledGrid(), nil); err == nil {
		t.Fatalf("expected error for empty details sheet")
	}
}

// recordingWriter captures what the importer hands to the store.
type recordingWriter struct {
	records []core.Record
}

func (w *recordingWriter) ReplaceAll(_ context.Context, records []core.Record) error {
	w.records = records
	return nil
}

func TestImporterRun(t *testing.T) {
	source := memory.New(map[string][][]string{
		DefaultCompiledSheet: compiledGrid(),
		DefaultDetailsSheet:  detailsGrid(),
	})
	writer := &recordingWriter{}

	n, err := New(source, writer, "", "").Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if n != 3 || len(writer.records) != 3 {
		t.Fatalf("expected 3 imported records, got %d / %d", n, len(writer.records))
	}
}

func TestImporterRunMissingSheet(t *testing.T) {
	source := memory.New(map[string][][]string{
		DefaultCompiledSheet: compiledGrid(),
	})
	if _, err := New(source, &recordingWriter{}, "", "").Run(context.Background()); err == nil {
		t.Fatalf("expected error for missing details sheet")
	}
}
