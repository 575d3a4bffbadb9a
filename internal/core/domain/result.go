package domain

// TriageResult is the complete output of one triage run: full
// introspection detail per database plus the ranked evidence list.
// This is the sole input report-rendering collaborators require.
type TriageResult struct {
	// Root is the data root the scan ran against.
	Root string

	// Databases maps database path to its ordered table samples.
	Databases map[string][]TableSample

	// DatabaseOrder preserves discovery order of the Databases keys.
	DatabaseOrder []string

	// Evidence is the ranked evidence list (priority ascending, aggregate
	// rows descending, discovery order on ties).
	Evidence []EvidenceItem

	// Principal is the selected device-owner identity, empty when unknown.
	Principal string
}
