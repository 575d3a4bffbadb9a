package driven

import "context"

// Mounter exposes the decrypted image as a read-only directory tree.
// Mount lifecycle is a precondition of the triage core; the orchestrator
// only consumes the mounted root and signals unmount during cleanup.
type Mounter interface {
	// Mount loop-mounts the image read-only at mountPoint, creating the
	// mount point if needed.
	Mount(ctx context.Context, imagePath, mountPoint string) error

	// Unmount detaches the image. Idempotent: unmounting an unmounted
	// path is not an error.
	Unmount(ctx context.Context, mountPoint string) error
}
