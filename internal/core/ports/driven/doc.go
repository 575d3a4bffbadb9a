// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - PrivilegedRunner: executes elevated commands (listing, stat, copy, chmod, chown)
//   - Sandbox: stages privileged-owned files into readable temporary copies
//   - Introspector: opens a staged database and extracts table samples
//   - ConfigStore: application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - Mounter: loop-mounts a decrypted image (not needed when the caller
//     supplies an already-mounted root)
//   - Reporter: renders the triage result (the core only produces the
//     in-memory result)
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
