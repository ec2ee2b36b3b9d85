// Package export renders display tables as downloadable files.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"unitrates/internal/format"
)

// WriteCSV writes the table as UTF-8 CSV: a header row of the display
// column names preceded by a sequential "S. No." column numbered from 1.
func WriteCSV(w io.Writer, table format.Table) error {
	cw := csv.NewWriter(w)

	header := append([]string{"S. No."}, table.Columns...)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for i, row := range table.Rows {
		line := append([]string{strconv.Itoa(i + 1)}, row...)
		if err := cw.Write(line); err != nil {
			return fmt.Errorf("write csv row %d: %w", i+1, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}
