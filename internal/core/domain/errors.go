package domain

import "errors"

// Domain errors represent triage pipeline failures.
// These are distinct from infrastructure errors.
var (
	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// Discovery Errors.

	// ErrDiscovery indicates a listing/search call failed or timed out.
	// Non-fatal: the strategy's contribution is treated as empty.
	ErrDiscovery = errors.New("discovery failed")

	// Per-database Errors.

	// ErrSandbox indicates copy, permission relaxation or ownership
	// reassignment failed. The database is excluded via a sentinel entry.
	ErrSandbox = errors.New("sandbox staging failed")

	// ErrConnect indicates the database file could not be opened
	// (corruption, lock, unsupported format). Sentinel entry, database excluded.
	ErrConnect = errors.New("database open failed")

	// ErrQuery indicates a single table's schema/count/sample query failed.
	// Sentinel entry for that table only, siblings unaffected.
	ErrQuery = errors.New("table query failed")

	// Run-level Errors.

	// ErrAborted indicates the run was cancelled by the user.
	// In-flight operations drain to their next checkpoint, cleanup still runs.
	ErrAborted = errors.New("triage aborted")

	// ErrMountFailed indicates the decrypted image could not be loop-mounted
	// with any of the supported option sets.
	ErrMountFailed = errors.New("mount failed")
)
