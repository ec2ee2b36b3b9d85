package core

import (
	"errors"
	"fmt"
)

// AllValues is the sentinel filter value meaning "no filter applied".
// It is always the first entry of every filter catalog list.
const AllValues = "(All)"

type (
	// Record is one invoice line item from the backing store. It is
	// immutable at query time; write access belongs to the import step.
	Record struct {
		// RowID is the store-internal row identifier. The fuzzy path uses
		// it to map ranked candidates back to full rows; it is never shown
		// to the end user.
		RowID int64

		GNCFile         string
		Province        string
		City            string
		ItemDescription string
		UOM             string
		UnitRate        float64
		InvoiceDate     string

		// Year and Month are nil when the source row had no parseable
		// invoice date.
		Year      *int
		Month     *int
		MonthName string

		FileName string
	}

	// SearchRequest carries everything the UI collects for one search.
	// Filter fields hold either AllValues or a concrete catalog value.
	SearchRequest struct {
		Query    string
		Year     string
		Month    string
		Province string
		City     string
		Fuzzy    bool
		Limit    int
		MinScore int
	}

	// ScoredRecord is a Record annotated with its relevance score:
	// token-match count in exact mode, similarity in [0,100] in fuzzy mode.
	ScoredRecord struct {
		Record
		Score int
	}

	// ResultSet is an ordered, score-descending, limit-truncated sequence
	// of scored records. Fuzzy tags which result schema applies so the
	// formatter does not have to infer shape from the data.
	ResultSet struct {
		Fuzzy   bool
		Records []ScoredRecord
	}
)

var (
	ErrInvalidLimit    = errors.New("result limit must be positive")
	ErrInvalidMinScore = errors.New("minimum score must be between 0 and 100")
	// ErrUnknownMonth indicates a month filter value that is not in the
	// catalog's month mapping. The UI keeps the selection list and the
	// mapping in sync, so hitting this is a programming error, not user
	// input.
	ErrUnknownMonth = errors.New("unknown month name")
)

// Validate rejects caller contract violations. These are bugs in the
// caller, not user input errors, so they surface loudly instead of
// silently degrading.
func (r SearchRequest) Validate() error {
	if r.Limit <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidLimit, r.Limit)
	}
	if r.MinScore < 0 || r.MinScore > 100 {
		return fmt.Errorf("%w: got %d", ErrInvalidMinScore, r.MinScore)
	}
	return nil
}

// HasYearFilter reports whether a concrete year was selected.
func (r SearchRequest) HasYearFilter() bool { return r.Year != "" && r.Year != AllValues }

// HasMonthFilter reports whether a concrete month was selected.
func (r SearchRequest) HasMonthFilter() bool { return r.Month != "" && r.Month != AllValues }

// HasProvinceFilter reports whether a concrete province was selected.
func (r SearchRequest) HasProvinceFilter() bool { return r.Province != "" && r.Province != AllValues }

// HasCityFilter reports whether a concrete city was selected.
func (r SearchRequest) HasCityFilter() bool { return r.City != "" && r.City != AllValues }

// Month is one distinct (number, name) pair from the record set, used
// to build the catalog's month list and name-to-number mapping.
type Month struct {
	Number int
	Name   string
}

// Filters are the resolved categorical predicates handed to the store.
// A nil field means no filter on that column. Month is already resolved
// from name to number via the catalog mapping.
type Filters struct {
	Year     *int
	Month    *int
	Province *string
	City     *string
}
