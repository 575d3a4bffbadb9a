package driven

import (
	"context"

	"github.com/halcyon-forensics/imgtriage/internal/core/domain"
)

// StagedCopy is a user-readable temporary duplicate of a privileged-owned
// database file, valid until Release is called.
type StagedCopy struct {
	// Path is the readable temporary copy.
	Path string

	// Source is the original path inside the image. The original is never
	// mutated; staging only reads it.
	Source string

	// SHA256 is the hex digest of the staged copy, recorded for custody.
	SHA256 string

	// Release removes the copy and its scratch directory. It is idempotent
	// and safe to call on every exit path.
	Release func()
}

// Sandbox stages candidate databases for safe analysis.
type Sandbox interface {
	// Stage copies the candidate into an exclusive scratch directory,
	// relaxes permissions and reassigns ownership so the unprivileged
	// analysis process can read it. Any step failing yields a
	// domain.ErrSandbox-wrapped error; the source file is left untouched.
	Stage(ctx context.Context, candidate domain.DatabaseCandidate) (*StagedCopy, error)

	// Close removes the sandbox workspace directory. Idempotent.
	Close() error
}
