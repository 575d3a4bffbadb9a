// Package sqlite implements the Introspector port over modernc.org/sqlite.
//
// Databases are opened read-only and immutable so a corrupt or locked
// artifact can never be modified, and enumeration failures degrade to
// sentinel samples instead of aborting the database or the run.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/halcyon-forensics/imgtriage/internal/core/domain"
	"github.com/halcyon-forensics/imgtriage/internal/core/ports/driven"
	"github.com/halcyon-forensics/imgtriage/internal/logger"
)

// SentinelOpenError is the table name of the whole-database sentinel
// emitted when the file cannot be opened or enumerated.
const SentinelOpenError = "DB_ERROR"

// Ensure Introspector implements the interface.
var _ driven.Introspector = (*Introspector)(nil)

// Introspector reads staged SQLite files defensively.
type Introspector struct{}

// New creates an introspector.
func New() *Introspector {
	return &Introspector{}
}

// Introspect enumerates tables, reorders pattern-matched names first and
// extracts per-table schema, true row count and a bounded sample. Which
// tables count as important is the catalog's call, not this adapter's;
// the patterns only order the output.
//
// On open/enumeration failure it returns a single SentinelOpenError
// sample plus a domain.ErrConnect-wrapped error; a per-table failure
// yields a sentinel for that table only and no error.
func (i *Introspector) Introspect(ctx context.Context, path string, importantPatterns []string, rowLimit int) ([]domain.TableSample, error) {
	if rowLimit <= 0 {
		rowLimit = 10
	}

	db, err := sql.Open("sqlite", "file:"+path+"?mode=ro&immutable=1")
	if err != nil {
		return openSentinel(err), fmt.Errorf("%w: %w", domain.ErrConnect, err)
	}
	defer db.Close()

	tables, err := listTables(ctx, db)
	if err != nil {
		return openSentinel(err), fmt.Errorf("%w: %w", domain.ErrConnect, err)
	}

	ordered := reorderImportant(tables, importantPatterns)

	samples := make([]domain.TableSample, 0, len(ordered))
	for _, table := range ordered {
		samples = append(samples, i.sampleTable(ctx, db, table, rowLimit))
	}
	return samples, nil
}

// sampleTable reads one table. Any query failing turns the whole table
// into a sentinel; siblings are unaffected.
func (i *Introspector) sampleTable(ctx context.Context, db *sql.DB, table string, rowLimit int) domain.TableSample {
	columns, err := tableColumns(ctx, db, table)
	if err != nil {
		return querySentinel(table, err)
	}

	var rowCount int64
	if err := db.QueryRowContext(ctx,
		fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteIdent(table))).Scan(&rowCount); err != nil {
		return querySentinel(table, err)
	}

	rows, err := sampleRows(ctx, db, table, rowLimit)
	if err != nil {
		return querySentinel(table, err)
	}

	return domain.TableSample{
		Table:    table,
		Columns:  columns,
		Rows:     rows,
		RowCount: rowCount,
	}
}

// listTables enumerates user tables in schema order.
func listTables(ctx context.Context, db *sql.DB) ([]string, error) {
	rows, err := db.QueryContext(ctx, "SELECT name FROM sqlite_master WHERE type='table'")
	if err != nil {
		return nil, fmt.Errorf("listing tables: %w", err)
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scanning table name: %w", err)
		}
		tables = append(tables, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating tables: %w", err)
	}
	return tables, nil
}

func tableColumns(ctx context.Context, db *sql.DB, table string) ([]string, error) {
	rows, err := db.QueryContext(ctx,
		fmt.Sprintf("PRAGMA table_info(%s)", quoteIdent(table)))
	if err != nil {
		return nil, fmt.Errorf("table_info: %w", err)
	}
	defer rows.Close()

	var columns []string
	for rows.Next() {
		var (
			cid        int
			name, typ  string
			notnull    int
			defaultVal sql.NullString
			pk         int
		)
		if err := rows.Scan(&cid, &name, &typ, &notnull, &defaultVal, &pk); err != nil {
			return nil, fmt.Errorf("scanning column: %w", err)
		}
		columns = append(columns, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating columns: %w", err)
	}
	return columns, nil
}

// sampleRows fetches at most rowLimit rows with every cell coerced to
// text. NULL becomes the empty string, contributing zero matches.
func sampleRows(ctx context.Context, db *sql.DB, table string, rowLimit int) ([][]string, error) {
	rows, err := db.QueryContext(ctx,
		fmt.Sprintf("SELECT * FROM %s LIMIT %d", quoteIdent(table), rowLimit))
	if err != nil {
		return nil, fmt.Errorf("sampling rows: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("reading columns: %w", err)
	}

	var sampled [][]string
	for rows.Next() {
		raw := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range raw {
			ptrs[i] = &raw[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}

		cells := make([]string, len(cols))
		for i, v := range raw {
			cells[i] = coerceCell(v)
		}
		sampled = append(sampled, cells)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating rows: %w", err)
	}
	return sampled, nil
}

// coerceCell renders any SQLite value as text. Nil is the empty string.
func coerceCell(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case []byte:
		return string(val)
	case string:
		return val
	default:
		return fmt.Sprint(val)
	}
}

// reorderImportant lists pattern-matched tables first, then the rest,
// both in original enumeration order. A reordering, not a filter.
func reorderImportant(tables, patterns []string) []string {
	if len(patterns) == 0 {
		return tables
	}
	important := make([]string, 0, len(tables))
	other := make([]string, 0, len(tables))
	for _, t := range tables {
		if matchesAny(t, patterns) {
			important = append(important, t)
		} else {
			other = append(other, t)
		}
	}
	logger.Debug("table ordering: %d important, %d other", len(important), len(other))
	return append(important, other...)
}

func matchesAny(table string, patterns []string) bool {
	lower := strings.ToLower(table)
	for _, p := range patterns {
		if strings.Contains(lower, strings.ToLower(p)) {
			return true
		}
	}
	return false
}

// quoteIdent quotes a table name for interpolation. Table names come from
// sqlite_master, not user input, but hostile images can still contain
// quotes.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func openSentinel(err error) []domain.TableSample {
	return []domain.TableSample{{
		Table: SentinelOpenError,
		Err:   fmt.Sprintf("%v: %v", domain.ErrConnect, err),
	}}
}

func querySentinel(table string, err error) domain.TableSample {
	return domain.TableSample{
		Table: table,
		Err:   fmt.Sprintf("%v: %v", domain.ErrQuery, err),
	}
}
