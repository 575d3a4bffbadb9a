// Package domain defines the core business entities for imgtriage.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - AppCategoryRule / Catalog: the static app classification table
//   - DatabaseCandidate: a discovered, not-yet-analysed database file
//   - TableSample: one table's schema, bounded sample and classification
//   - ClassificationResult: target-script and email signals in a sample
//   - EvidenceItem: a ranked, classified artifact group for analyst review
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
