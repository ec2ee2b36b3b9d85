// Package importer implements the one-shot batch that turns the master
// spreadsheet into the records table: the line-item sheet is joined
// with the per-file province/city sheet on GNC File, invoice dates are
// split into year, month and month name, and the table contents are
// replaced wholesale. It runs before any query is served and never
// concurrently with the server's writes, because the server has none.
package importer

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"unitrates/internal/core"
	"unitrates/internal/sheets"
)

// Sheet names in the master spreadsheet.
const (
	DefaultCompiledSheet = "Compiled Data"
	DefaultDetailsSheet  = "File Details"
)

// compiledHeaderRow accounts for the title band above the header in the
// line-item sheet.
const compiledHeaderRow = 1

// RecordWriter is the store-side port: replace the table contents with
// a fresh import.
type RecordWriter interface {
	ReplaceAll(ctx context.Context, records []core.Record) error
}

type Importer struct {
	source        sheets.SpreadsheetReader
	store         RecordWriter
	compiledSheet string
	detailsSheet  string
}

func New(source sheets.SpreadsheetReader, store RecordWriter, compiledSheet, detailsSheet string) *Importer {
	if compiledSheet == "" {
		compiledSheet = DefaultCompiledSheet
	}
	if detailsSheet == "" {
		detailsSheet = DefaultDetailsSheet
	}
	return &Importer{
		source:        source,
		store:         store,
		compiledSheet: compiledSheet,
		detailsSheet:  detailsSheet,
	}
}

// Run fetches both sheets, builds the joined record set and replaces
// the store contents. It returns the number of imported records. Any
// failure aborts the import with the previous table contents intact.
func (i *Importer) Run(ctx context.Context) (int, error) {
	compiled, err := i.source.ReadSheet(ctx, i.compiledSheet)
	if err != nil {
		return 0, fmt.Errorf("read %q: %w", i.compiledSheet, err)
	}
	details, err := i.source.ReadSheet(ctx, i.detailsSheet)
	if err != nil {
		return 0, fmt.Errorf("read %q: %w", i.detailsSheet, err)
	}

	records, err := BuildRecords(compiled, details)
	if err != nil {
		return 0, err
	}

	if err := i.store.ReplaceAll(ctx, records); err != nil {
		return 0, fmt.Errorf("replace records: %w", err)
	}

	slog.InfoContext(ctx, "Import completed",
		"records", len(records),
		"compiled_sheet", i.compiledSheet,
		"details_sheet", i.detailsSheet)

	return len(records), nil
}

// BuildRecords joins the line-item grid with the file-details grid on
// GNC File. Missing required columns are fatal: they indicate a broken
// source workbook, and no query should run against a partial import.
func BuildRecords(compiled, details [][]string) ([]core.Record, error) {
	if len(compiled) <= compiledHeaderRow {
		return nil, fmt.Errorf("sheet %q has no header row", DefaultCompiledSheet)
	}
	if len(details) == 0 {
		return nil, fmt.Errorf("sheet %q has no header row", DefaultDetailsSheet)
	}

	compiledCols := headerIndex(compiled[compiledHeaderRow])
	if err := requireColumns(DefaultCompiledSheet, compiledCols, "GNC File", "Item Description"); err != nil {
		return nil, err
	}
	detailCols := headerIndex(details[0])
	if err := requireColumns(DefaultDetailsSheet, detailCols, "GNC File", "Province", "City"); err != nil {
		return nil, err
	}

	locations := buildLocationIndex(details[1:], detailCols)

	var records []core.Record
	for _, row := range compiled[compiledHeaderRow+1:] {
		get := func(name string) string { return cell(row, compiledCols, name) }

		rec := core.Record{
			GNCFile:         get("GNC File"),
			ItemDescription: get("Item Description"),
			UOM:             get("UOM"),
			FileName:        get("File Name"),
		}
		if rec.GNCFile == "" && rec.ItemDescription == "" {
			continue // blank padding row
		}

		if loc, ok := locations[rec.GNCFile]; ok {
			rec.Province = loc.province
			rec.City = loc.city
		}

		rec.UnitRate = parseRate(get("Unit Rate"))

		if date, ok := parseDate(get("Invoice Date")); ok {
			rec.InvoiceDate = date.Format("2006-01-02")
			year, month := date.Year(), int(date.Month())
			rec.Year = &year
			rec.Month = &month
			rec.MonthName = date.Month().String()
		}

		records = append(records, rec)
	}

	return records, nil
}

type location struct {
	province string
	city     string
}

// buildLocationIndex deduplicates the details on GNC File, keeping the
// first occurrence, matching how the source workbook is maintained.
func buildLocationIndex(rows [][]string, cols map[string]int) map[string]location {
	index := make(map[string]location, len(rows))
	for _, row := range rows {
		file := cell(row, cols, "GNC File")
		if file == "" {
			continue
		}
		if _, seen := index[file]; seen {
			continue
		}
		index[file] = location{
			province: cell(row, cols, "Province"),
			city:     cell(row, cols, "City"),
		}
	}
	return index
}

// headerIndex maps normalized header names to column positions.
// Normalization collapses runs of whitespace, since hand-maintained
// workbooks routinely carry stray spaces in headers.
func headerIndex(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[normalizeHeader(name)] = i
	}
	return cols
}

func normalizeHeader(name string) string {
	return strings.Join(strings.Fields(name), " ")
}

func requireColumns(sheet string, cols map[string]int, names ...string) error {
	var missing []string
	for _, name := range names {
		if _, ok := cols[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("sheet %q missing required columns: %s", sheet, strings.Join(missing, ", "))
	}
	return nil
}

func cell(row []string, cols map[string]int, name string) string {
	i, ok := cols[name]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"01/02/2006",
}

// parseDate is tolerant: an unparseable date leaves the record without
// year and month rather than failing the import.
func parseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// parseRate is equally tolerant: thousands separators are stripped and
// a non-numeric cell imports as zero.
func parseRate(s string) float64 {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return 0
	}
	rate, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return rate
}
