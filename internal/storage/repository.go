package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"unitrates/internal/core"

	_ "modernc.org/sqlite"
)

// SQLiteRepository is the record store. The server opens it read-only;
// only the import step ever writes, through NewSQLiteRepository.
type SQLiteRepository struct {
	db   *sql.DB
	path string
}

// NewSQLiteRepository opens (creating if needed) the database for the
// import step and brings the schema up to date.
func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db, path: dbPath}, nil
}

// NewReadOnlyRepository opens an existing database for querying. The
// store is never written at query time, so a failure to open it is a
// hard failure surfaced immediately rather than something to fall back
// from.
func NewReadOnlyRepository(dbPath string) (*SQLiteRepository, error) {
	if _, err := os.Stat(dbPath); err != nil {
		return nil, fmt.Errorf("stat database: %w", err)
	}

	db, err := sql.Open("sqlite", "file:"+dbPath+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &SQLiteRepository{db: db, path: dbPath}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Identifier returns the store path, used as the filter catalog cache key.
func (r *SQLiteRepository) Identifier() string {
	return r.path
}

// SearchExact implements search.Repository.
func (r *SQLiteRepository) SearchExact(ctx context.Context, terms []string, fallback string, f core.Filters, limit int) ([]core.ScoredRecord, error) {
	query, args := buildExactQuery(terms, fallback, f, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("exact search query: %w", err)
	}
	defer rows.Close()

	var out []core.ScoredRecord
	for rows.Next() {
		var (
			score int
			rec   core.Record
		)
		if err := scanRecord(rows, &score, &rec); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		out = append(out, core.ScoredRecord{Record: rec, Score: score})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return out, nil
}

// FetchCandidates implements search.Repository.
func (r *SQLiteRepository) FetchCandidates(ctx context.Context, f core.Filters, limit int) ([]core.Record, error) {
	query, args := buildCandidateQuery(f, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("candidate query: %w", err)
	}
	defer rows.Close()

	var out []core.Record
	for rows.Next() {
		var rec core.Record
		if err := scanRecord(rows, nil, &rec); err != nil {
			return nil, fmt.Errorf("scan candidate: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate candidates: %w", err)
	}
	return out, nil
}

// scanRecord reads one row in recordColumns order. score is nil for
// queries without a score column.
func scanRecord(rows *sql.Rows, score *int, rec *core.Record) error {
	var (
		gncFile, province, city, desc, uom sql.NullString
		unitRate                           sql.NullFloat64
		invoiceDate, monthName, fileName   sql.NullString
		year, month                        sql.NullInt64
	)

	dest := []any{
		&rec.RowID, &gncFile, &province, &city, &desc, &uom, &unitRate,
		&invoiceDate, &year, &month, &monthName, &fileName,
	}
	if score != nil {
		dest = append([]any{score}, dest...)
	}
	if err := rows.Scan(dest...); err != nil {
		return err
	}

	rec.GNCFile = gncFile.String
	rec.Province = province.String
	rec.City = city.String
	rec.ItemDescription = desc.String
	rec.UOM = uom.String
	rec.UnitRate = unitRate.Float64
	rec.InvoiceDate = invoiceDate.String
	rec.MonthName = monthName.String
	rec.FileName = fileName.String
	if year.Valid {
		y := int(year.Int64)
		rec.Year = &y
	}
	if month.Valid {
		m := int(month.Int64)
		rec.Month = &m
	}
	return nil
}

// DistinctYears returns the distinct non-null invoice years, ascending.
func (r *SQLiteRepository) DistinctYears(ctx context.Context) ([]int, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT DISTINCT invoice_year FROM records WHERE invoice_year IS NOT NULL ORDER BY invoice_year`)
	if err != nil {
		return nil, fmt.Errorf("distinct years: %w", err)
	}
	defer rows.Close()

	var years []int
	for rows.Next() {
		var y int
		if err := rows.Scan(&y); err != nil {
			return nil, fmt.Errorf("scan year: %w", err)
		}
		years = append(years, y)
	}
	return years, rows.Err()
}

// DistinctMonths returns the distinct (number, name) month pairs,
// ordered by month number.
func (r *SQLiteRepository) DistinctMonths(ctx context.Context) ([]core.Month, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT DISTINCT invoice_month, invoice_month_name FROM records
		 WHERE invoice_month IS NOT NULL ORDER BY invoice_month`)
	if err != nil {
		return nil, fmt.Errorf("distinct months: %w", err)
	}
	defer rows.Close()

	var months []core.Month
	for rows.Next() {
		var m core.Month
		var name sql.NullString
		if err := rows.Scan(&m.Number, &name); err != nil {
			return nil, fmt.Errorf("scan month: %w", err)
		}
		m.Name = name.String
		months = append(months, m)
	}
	return months, rows.Err()
}

// DistinctProvinces returns the distinct non-null provinces, ascending.
func (r *SQLiteRepository) DistinctProvinces(ctx context.Context) ([]string, error) {
	return r.distinctStrings(ctx, "province")
}

// DistinctCities returns the distinct non-null cities, ascending.
func (r *SQLiteRepository) DistinctCities(ctx context.Context) ([]string, error) {
	return r.distinctStrings(ctx, "city")
}

func (r *SQLiteRepository) distinctStrings(ctx context.Context, column string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT DISTINCT `+column+` FROM records WHERE `+column+` IS NOT NULL ORDER BY `+column)
	if err != nil {
		return nil, fmt.Errorf("distinct %s: %w", column, err)
	}
	defer rows.Close()

	var values []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scan %s: %w", column, err)
		}
		values = append(values, v)
	}
	return values, rows.Err()
}

// ReplaceAll atomically swaps the table contents for a fresh import.
func (r *SQLiteRepository) ReplaceAll(ctx context.Context, records []core.Record) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM records`); err != nil {
		return fmt.Errorf("clear records: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO records
		(gnc_file, province, city, item_description, uom, unit_rate,
		 invoice_date, invoice_year, invoice_month, invoice_month_name, file_name)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		var year, month any
		if rec.Year != nil {
			year = *rec.Year
		}
		if rec.Month != nil {
			month = *rec.Month
		}
		if _, err := stmt.ExecContext(ctx,
			nullable(rec.GNCFile), nullable(rec.Province), nullable(rec.City),
			nullable(rec.ItemDescription), nullable(rec.UOM), rec.UnitRate,
			nullable(rec.InvoiceDate), year, month, nullable(rec.MonthName),
			nullable(rec.FileName),
		); err != nil {
			return fmt.Errorf("insert record: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit import: %w", err)
	}

	slog.InfoContext(ctx, "Records table replaced", "rows", len(records), "path", r.path)
	return nil
}

// nullable stores empty strings as NULL so the catalog's IS NOT NULL
// queries and the candidate fetch behave like the source data intended.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
