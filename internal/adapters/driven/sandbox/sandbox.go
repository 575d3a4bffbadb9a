// Package sandbox stages privileged-owned database files into readable
// temporary copies for analysis.
//
// The original file inside the image is only ever read. Each staged copy
// lives in its own uuid-named scratch directory so concurrent analyses
// cannot collide, and is removed again on every exit path.
package sandbox

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"os/user"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/halcyon-forensics/imgtriage/internal/core/domain"
	"github.com/halcyon-forensics/imgtriage/internal/core/ports/driven"
	"github.com/halcyon-forensics/imgtriage/internal/logger"
)

// Ensure Sandbox implements the interface.
var _ driven.Sandbox = (*Sandbox)(nil)

// Sandbox implements driven.Sandbox using the privileged runner for the
// copy, chmod and chown steps.
type Sandbox struct {
	runner      driven.PrivilegedRunner
	workspace   string
	copyTimeout time.Duration
	stepTimeout time.Duration
	owner       string

	mu     sync.Mutex
	closed bool
}

// New creates a sandbox rooted at workspace. An empty workspace selects a
// fresh directory under the system temp dir. copyTimeout bounds the copy
// step (default 60s); permission steps use a shorter fixed bound.
func New(runner driven.PrivilegedRunner, workspace string, copyTimeout time.Duration) (*Sandbox, error) {
	if copyTimeout <= 0 {
		copyTimeout = 60 * time.Second
	}

	if workspace == "" {
		dir, err := os.MkdirTemp("", "imgtriage-sandbox-")
		if err != nil {
			return nil, fmt.Errorf("creating sandbox workspace: %w", err)
		}
		workspace = dir
	} else if err := os.MkdirAll(workspace, 0o700); err != nil {
		return nil, fmt.Errorf("creating sandbox workspace: %w", err)
	}

	return &Sandbox{
		runner:      runner,
		workspace:   workspace,
		copyTimeout: copyTimeout,
		stepTimeout: 10 * time.Second,
		owner:       currentOwner(),
	}, nil
}

// Workspace returns the sandbox base directory.
func (s *Sandbox) Workspace() string {
	return s.workspace
}

// Stage copies the candidate into an exclusive scratch directory and makes
// it readable by the current user. Copy, permission relaxation and
// ownership reassignment are three independently fallible steps; any
// failure is logged, the scratch directory is removed, and a
// domain.ErrSandbox-wrapped error is returned.
func (s *Sandbox) Stage(ctx context.Context, cand domain.DatabaseCandidate) (*driven.StagedCopy, error) {
	scratch := filepath.Join(s.workspace, uuid.NewString())
	if err := os.MkdirAll(scratch, 0o700); err != nil {
		return nil, fmt.Errorf("%w: creating scratch dir: %w", domain.ErrSandbox, err)
	}
	dst := filepath.Join(scratch, cand.Name)

	release := func() {
		if err := os.RemoveAll(scratch); err != nil && !os.IsNotExist(err) {
			logger.Warn("removing scratch dir %s: %v", scratch, err)
		}
	}

	steps := []struct {
		name    string
		argv    []string
		timeout time.Duration
	}{
		{"copy", []string{"cp", cand.Path, dst}, s.copyTimeout},
		{"chmod", []string{"chmod", "644", dst}, s.stepTimeout},
		{"chown", []string{"chown", s.owner + ":" + s.owner, dst}, s.stepTimeout},
	}
	for _, step := range steps {
		res, err := s.runner.Run(ctx, step.argv, step.timeout)
		if err != nil {
			release()
			return nil, fmt.Errorf("%w: %s %s: %w", domain.ErrSandbox, step.name, cand.Name, err)
		}
		if !res.Ok() {
			release()
			return nil, fmt.Errorf("%w: %s %s: %s", domain.ErrSandbox, step.name, cand.Name,
				strings.TrimSpace(res.Stderr))
		}
	}

	digest, err := checksum(dst)
	if err != nil {
		release()
		return nil, fmt.Errorf("%w: verifying copy of %s: %w", domain.ErrSandbox, cand.Name, err)
	}
	logger.Debug("staged %s (sha256 %s)", cand.Name, digest)

	return &driven.StagedCopy{
		Path:    dst,
		Source:  cand.Path,
		SHA256:  digest,
		Release: sync.OnceFunc(release),
	}, nil
}

// Close removes the workspace directory. Idempotent.
func (s *Sandbox) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return os.RemoveAll(s.workspace)
}

// checksum hashes the staged copy; it doubles as the readability check.
func checksum(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func currentOwner() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	if name := os.Getenv("USER"); name != "" {
		return name
	}
	return "root"
}
