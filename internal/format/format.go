// Package format turns result sets into display tables. The result's
// mode decides the schema up front: fuzzy results carry a visible Score
// column, exact results never do, and internal fields (row identifiers)
// are never part of a display table.
package format

import (
	"strconv"

	"unitrates/internal/core"
)

// Table is a schema-tagged display rendering of a result set: column
// names plus stringified cell values, ready for the HTML renderer or
// the CSV exporter.
type Table struct {
	Columns []string
	Rows    [][]string
}

var baseColumns = []string{
	"Invoice Year", "Invoice Month", "Province", "City",
	"Item Description", "UOM", "Unit Rate", "GNC File", "File Name",
}

// Columns returns the display column names for a result mode.
func Columns(fuzzy bool) []string {
	if !fuzzy {
		return baseColumns
	}
	return append([]string{"Score"}, baseColumns...)
}

// ResultTable renders a result set for display or export.
func ResultTable(rs core.ResultSet) Table {
	t := Table{
		Columns: Columns(rs.Fuzzy),
		Rows:    make([][]string, 0, len(rs.Records)),
	}
	for _, r := range rs.Records {
		row := make([]string, 0, len(t.Columns))
		if rs.Fuzzy {
			row = append(row, strconv.Itoa(r.Score))
		}
		row = append(row,
			Year(r.Year),
			r.MonthName,
			r.Province,
			r.City,
			r.ItemDescription,
			r.UOM,
			UnitRate(r.UnitRate),
			r.GNCFile,
			r.FileName,
		)
		t.Rows = append(t.Rows, row)
	}
	return t
}

// Year renders an invoice year as a plain integer string: no decimal
// point, and the empty string rather than any null marker when absent.
func Year(y *int) string {
	if y == nil {
		return ""
	}
	return strconv.Itoa(*y)
}

// UnitRate renders a rate with no trailing zeros.
func UnitRate(rate float64) string {
	return strconv.FormatFloat(rate, 'f', -1, 64)
}
