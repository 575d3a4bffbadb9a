// Package mount loop-mounts the decrypted image through the privileged
// runner. Mount lifecycle is a precondition of the triage core; this
// adapter exists so the CLI can accept a raw image as well as an
// already-mounted root.
package mount

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/halcyon-forensics/imgtriage/internal/core/domain"
	"github.com/halcyon-forensics/imgtriage/internal/core/ports/driven"
	"github.com/halcyon-forensics/imgtriage/internal/logger"
)

// Ensure LoopMounter implements the interface.
var _ driven.Mounter = (*LoopMounter)(nil)

// optionSets are tried in order; ext4 journal replay is refused on a
// read-only loop device, so noload variants go first.
var optionSets = []string{"loop,ro,noload", "loop,ro", "ro,noload", "ro"}

// LoopMounter mounts filesystem images via mount -o loop.
type LoopMounter struct {
	runner  driven.PrivilegedRunner
	timeout time.Duration
}

// New creates a mounter. timeout bounds each mount attempt (default 30s).
func New(runner driven.PrivilegedRunner, timeout time.Duration) *LoopMounter {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &LoopMounter{runner: runner, timeout: timeout}
}

// Mount exposes the image read-only at mountPoint. Option sets are tried
// in order until one succeeds; a stale mount at the same point is
// detached first.
func (m *LoopMounter) Mount(ctx context.Context, imagePath, mountPoint string) error {
	if _, err := os.Stat(imagePath); err != nil {
		return fmt.Errorf("%w: image %s: %w", domain.ErrMountFailed, imagePath, err)
	}
	if err := os.MkdirAll(mountPoint, 0o755); err != nil {
		return fmt.Errorf("%w: creating mount point: %w", domain.ErrMountFailed, err)
	}

	// A previous aborted run may have left the point mounted.
	if err := m.Unmount(ctx, mountPoint); err != nil {
		logger.Warn("pre-mount cleanup of %s: %v", mountPoint, err)
	}

	var lastErr string
	for i, opts := range optionSets {
		logger.Debug("mount attempt %d/%d: -o %s", i+1, len(optionSets), opts)
		res, err := m.runner.Run(ctx,
			[]string{"mount", "-o", opts, imagePath, mountPoint}, m.timeout)
		if err != nil {
			lastErr = err.Error()
			continue
		}
		if res.Ok() {
			logger.Info("mounted %s at %s (-o %s)", imagePath, mountPoint, opts)
			return nil
		}
		lastErr = strings.TrimSpace(res.Stderr)
		logger.Debug("mount attempt %d failed: %s", i+1, lastErr)
	}

	return fmt.Errorf("%w: all option sets failed, last error: %s", domain.ErrMountFailed, lastErr)
}

// Unmount detaches the image. Idempotent: an already-unmounted path is
// not an error.
func (m *LoopMounter) Unmount(ctx context.Context, mountPoint string) error {
	res, err := m.runner.Run(ctx, []string{"umount", mountPoint}, m.timeout)
	if err != nil {
		return err
	}
	if !res.Ok() {
		// "not mounted" is the idempotent success case.
		if strings.Contains(res.Stderr, "not mounted") || strings.Contains(res.Stderr, "no mount point") {
			return nil
		}
		logger.Warn("umount %s: %s", mountPoint, strings.TrimSpace(res.Stderr))
	}
	return nil
}
