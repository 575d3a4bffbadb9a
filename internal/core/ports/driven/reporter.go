package driven

import (
	"context"

	"github.com/halcyon-forensics/imgtriage/internal/core/domain"
)

// Reporter renders a triage result. Rendering is out of the core's scope;
// emitters only consume the structured result.
type Reporter interface {
	// Write renders the result to the given path.
	Write(ctx context.Context, result *domain.TriageResult, path string) error
}
