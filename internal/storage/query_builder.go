package storage

import (
	"strings"

	"unitrates/internal/core"
)

// recordColumns is the scan order shared by every record query.
const recordColumns = `rowid, gnc_file, province, city, item_description, uom, unit_rate,
       invoice_date, invoice_year, invoice_month, invoice_month_name, file_name`

// buildExactQuery generates the token-AND search. Every term must match
// LOWER(item_description) as a substring; the score counts matching
// terms with one CASE expression per term. Score computation is kept
// separate from the WHERE token list on purpose: the filter could be
// relaxed to OR later without touching the scoring.
//
// Parameter order matters: score params first, then WHERE params, then
// the limit.
func buildExactQuery(terms []string, fallback string, f core.Filters, limit int) (string, []any) {
	var (
		where     []string
		whereArgs []any
		scoreSQL  string
		scoreArgs []any
	)

	if len(terms) > 0 {
		exprs := make([]string, len(terms))
		for i, term := range terms {
			where = append(where, "LOWER(item_description) LIKE ?")
			whereArgs = append(whereArgs, "%"+term+"%")
			exprs[i] = "CASE WHEN LOWER(item_description) LIKE ? THEN 1 ELSE 0 END"
			scoreArgs = append(scoreArgs, "%"+term+"%")
		}
		scoreSQL = "(" + strings.Join(exprs, " + ") + ")"
	} else {
		where = append(where, "LOWER(item_description) LIKE ?")
		whereArgs = append(whereArgs, "%"+fallback+"%")
		scoreSQL = "0"
	}

	where, whereArgs = appendFilterPredicates(where, whereArgs, f)

	sql := `SELECT ` + scoreSQL + ` AS score,
       ` + recordColumns + `
FROM records
WHERE ` + strings.Join(where, " AND ") + `
ORDER BY score DESC, rowid ASC
LIMIT ?`

	args := append(scoreArgs, whereArgs...)
	args = append(args, limit)
	return sql, args
}

// buildCandidateQuery generates the fuzzy path's stage-1 fetch: no text
// predicate at all, only the categorical filters, bounded by the
// candidate cap. Rows with no description are useless to the ranker and
// are excluded here.
func buildCandidateQuery(f core.Filters, limit int) (string, []any) {
	where := []string{"item_description IS NOT NULL"}
	var args []any
	where, args = appendFilterPredicates(where, args, f)

	sql := `SELECT ` + recordColumns + `
FROM records
WHERE ` + strings.Join(where, " AND ") + `
LIMIT ?`

	return sql, append(args, limit)
}

func appendFilterPredicates(where []string, args []any, f core.Filters) ([]string, []any) {
	if f.Year != nil {
		where = append(where, "invoice_year = ?")
		args = append(args, *f.Year)
	}
	if f.Month != nil {
		where = append(where, "invoice_month = ?")
		args = append(args, *f.Month)
	}
	if f.Province != nil {
		where = append(where, "province = ?")
		args = append(args, *f.Province)
	}
	if f.City != nil {
		where = append(where, "city = ?")
		args = append(args, *f.City)
	}
	return where, args
}
