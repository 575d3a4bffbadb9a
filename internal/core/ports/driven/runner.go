package driven

import (
	"context"
	"time"
)

// RunResult carries the outcome of one elevated command invocation.
type RunResult struct {
	// ExitCode is the process exit code. Negative when the process
	// never ran or was killed by the timeout.
	ExitCode int

	// Stdout and Stderr are the captured output streams.
	Stdout string
	Stderr string
}

// Ok reports whether the command exited zero.
func (r RunResult) Ok() bool {
	return r.ExitCode == 0
}

// PrivilegedRunner executes commands with elevated privileges.
// All discovery, stat, copy, permission and ownership operations route
// through this single abstraction so the core stays testable with a
// deterministic fake requiring no real privileges.
//
// Implementations must bound each call by the given timeout: a hung
// external command is abandoned and reported as a failure for that call
// only, never allowed to stall the run.
type PrivilegedRunner interface {
	// Run executes argv and returns the captured result.
	// A non-zero exit is NOT an error; err is reserved for failures to
	// execute at all (context cancelled, timeout, binary missing).
	Run(ctx context.Context, argv []string, timeout time.Duration) (RunResult, error)
}
