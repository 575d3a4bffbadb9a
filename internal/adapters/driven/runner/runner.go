// Package runner implements the PrivilegedRunner port on top of sudo.
//
// Every elevated operation the pipeline performs (listing, stat, copy,
// chmod, chown, mount) funnels through this adapter. Calls are bounded
// by a per-call timeout and throttled by a token bucket so a burst of
// per-file stat calls cannot swamp the host.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"

	"golang.org/x/time/rate"

	"github.com/halcyon-forensics/imgtriage/internal/core/ports/driven"
	"github.com/halcyon-forensics/imgtriage/internal/logger"
)

// Ensure SudoRunner implements the interface.
var _ driven.PrivilegedRunner = (*SudoRunner)(nil)

// Config tunes the runner.
type Config struct {
	// Sudo disables privilege elevation when false (running as root, or
	// tests against a fixture tree).
	Sudo bool

	// CommandsPerSecond is the sustained invocation rate. Zero selects
	// a conservative default.
	CommandsPerSecond float64

	// BurstSize is the token bucket burst. Zero selects the default.
	BurstSize int
}

// SudoRunner executes commands through sudo with captured output.
type SudoRunner struct {
	sudo    bool
	limiter *rate.Limiter
}

// New creates a runner from config.
func New(cfg Config) *SudoRunner {
	if cfg.CommandsPerSecond <= 0 {
		cfg.CommandsPerSecond = 50
	}
	if cfg.BurstSize <= 0 {
		cfg.BurstSize = 20
	}
	return &SudoRunner{
		sudo:    cfg.Sudo,
		limiter: rate.NewLimiter(rate.Limit(cfg.CommandsPerSecond), cfg.BurstSize),
	}
}

// Run executes argv with the configured elevation, bounded by timeout.
// A non-zero exit is reported in the result, not as an error; err is
// reserved for cancellation, timeout and failures to execute at all.
func (r *SudoRunner) Run(ctx context.Context, argv []string, timeout time.Duration) (driven.RunResult, error) {
	if len(argv) == 0 {
		return driven.RunResult{ExitCode: -1}, errors.New("empty argv")
	}
	if err := r.limiter.Wait(ctx); err != nil {
		return driven.RunResult{ExitCode: -1}, err
	}

	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	name, args := argv[0], argv[1:]
	if r.sudo {
		name, args = "sudo", append([]string{"-n", argv[0]}, argv[1:]...)
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(cctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := driven.RunResult{
		ExitCode: exitCode(cmd, err),
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
	}

	if cctx.Err() == context.DeadlineExceeded {
		logger.Warn("command %v timed out after %s", argv, timeout)
		return result, fmt.Errorf("command %q timed out: %w", argv[0], cctx.Err())
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			// Ran but exited non-zero: the caller inspects ExitCode.
			return result, nil
		}
		return result, fmt.Errorf("running %q: %w", argv[0], err)
	}
	return result, nil
}

func exitCode(cmd *exec.Cmd, err error) int {
	if cmd.ProcessState != nil {
		return cmd.ProcessState.ExitCode()
	}
	if err != nil {
		return -1
	}
	return 0
}
