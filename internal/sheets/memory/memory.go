// Package memory provides an in-memory SpreadsheetReader, used in tests
// and for local runs without Google credentials.
package memory

import (
	"context"
	"fmt"
	"sync"

	ports "unitrates/internal/sheets"
)

type Store struct {
	mu     sync.Mutex
	sheets map[string][][]string
}

var _ ports.SpreadsheetReader = (*Store)(nil)

func New(sheets map[string][][]string) *Store {
	return &Store{sheets: sheets}
}

// ReadSheet returns a copy of the named grid.
func (s *Store) ReadSheet(_ context.Context, sheetName string) ([][]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	grid, ok := s.sheets[sheetName]
	if !ok {
		return nil, fmt.Errorf("sheet %q not found", sheetName)
	}
	out := make([][]string, len(grid))
	for i, row := range grid {
		out[i] = append([]string(nil), row...)
	}
	return out, nil
}
