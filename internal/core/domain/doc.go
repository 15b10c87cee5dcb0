// Package domain defines the core entities for ctxport.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - ContentBundle: A normalised conversation, issue or pull request
//   - Participant: A speaker referenced by content nodes
//   - ContentNode: One ordered message or comment
//   - Page: A snapshot of the browser page an adapter extracts from
//   - Error: A classified extraction failure with a stable code
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
