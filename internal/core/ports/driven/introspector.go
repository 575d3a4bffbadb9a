package driven

import (
	"context"

	"github.com/halcyon-forensics/imgtriage/internal/core/domain"
)

// Introspector opens an accessible SQLite file defensively and extracts
// ordered table samples.
//
// Failure contract:
//   - a per-table query failure yields a sentinel TableSample for that
//     table only; siblings are returned normally
//   - an open failure yields a single whole-database sentinel and a
//     domain.ErrConnect-wrapped error
type Introspector interface {
	// Introspect reads the database at path. importantPatterns (may be nil)
	// reorders tables so pattern-matched names come first, in enumeration
	// order; it is a reordering, not a filter. rowLimit bounds the sample
	// per table; RowCount always reflects true cardinality.
	Introspect(ctx context.Context, path string, importantPatterns []string, rowLimit int) ([]domain.TableSample, error)
}
