package domain

// ClassificationResult records the content signals found in one table's
// sampled rows. Counts are additive with no deduplication: the same email
// address appearing twice counts twice.
type ClassificationResult struct {
	// HasTargetScript is true when any sampled cell contains at least one
	// code point in the configured target script range.
	HasTargetScript bool

	// TargetScriptChars is the total number of target-script code points
	// across all sampled cells.
	TargetScriptChars int

	// HasEmail is true when any sampled cell contains an email-shaped
	// substring.
	HasEmail bool

	// EmailCount is the total number of email matches across all cells.
	EmailCount int

	// Emails are the extracted addresses in encounter order, duplicates kept.
	Emails []string
}

// Merge folds another result into this one. Counts add, flags OR,
// addresses append in order.
func (c *ClassificationResult) Merge(other ClassificationResult) {
	c.HasTargetScript = c.HasTargetScript || other.HasTargetScript
	c.TargetScriptChars += other.TargetScriptChars
	c.HasEmail = c.HasEmail || other.HasEmail
	c.EmailCount += other.EmailCount
	c.Emails = append(c.Emails, other.Emails...)
}

// TableSample is one analysed table: schema, bounded row sample, true
// cardinality and classification. A failed table is represented by a
// sentinel sample with RowCount 0 and Err describing the failure.
type TableSample struct {
	// Table is the table name. Sentinels for whole-database failures use
	// the reserved names from the introspector adapter.
	Table string

	// Columns is the ordered column-name sequence.
	Columns []string

	// Rows holds at most the configured row limit of sampled rows,
	// each cell coerced to text (NULL becomes the empty string).
	Rows [][]string

	// RowCount is the table's true cardinality, independent of the
	// sample size.
	RowCount int64

	// Important is true when the table name matches the owning app's
	// important-pattern set.
	Important bool

	// Classification carries the content signals for the sampled rows.
	Classification ClassificationResult

	// Err is the human-readable failure reason for sentinel samples,
	// empty on success.
	Err string
}

// Failed reports whether this sample is a failure sentinel.
func (t TableSample) Failed() bool {
	return t.Err != ""
}
