package driving

import (
	"context"

	"github.com/halcyon-forensics/imgtriage/internal/core/domain"
)

// TriageStatus reports pipeline progress for a running triage.
type TriageStatus struct {
	// Running is true while the pipeline is active.
	Running bool

	// CandidatesFound is the size of the merged candidate list.
	CandidatesFound int

	// DatabasesProcessed counts candidates whose analysis completed,
	// successfully or via sentinel.
	DatabasesProcessed int

	// FailureCount counts candidates that produced only sentinels
	// (sandbox or open failures).
	FailureCount int
}

// TriageOrchestrator drives the discovery → introspection → classification
// → scoring pipeline for one mounted image.
type TriageOrchestrator interface {
	// Run executes the full pipeline against the data root and returns the
	// structured result. Partial success is the designed common case: a
	// missing root yields an empty result and no error; per-database
	// failures are folded in as sentinels. Run returns an error only for
	// cancellation or invalid configuration.
	Run(ctx context.Context, root string) (*domain.TriageResult, error)

	// Status returns a snapshot of pipeline progress.
	Status() TriageStatus
}
