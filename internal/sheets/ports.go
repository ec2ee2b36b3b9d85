package sheets

import "context"

// Ports for outbound spreadsheet adapters.
type (
	// SpreadsheetReader fetches the raw cell grid of one sheet. Rows may
	// be ragged: trailing empty cells are omitted by the source.
	SpreadsheetReader interface {
		ReadSheet(ctx context.Context, sheetName string) ([][]string, error)
	}
)
