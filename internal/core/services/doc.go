// Package services implements the core triage pipeline:
// discovery (Scanner), content classification (Classifier), relevance
// scoring (Scorer) and the orchestrator wiring them to the driven ports.
//
// Services depend on ports and domain only. Infrastructure (sudo, SQLite,
// mounts, report rendering) lives behind the driven interfaces.
package services
