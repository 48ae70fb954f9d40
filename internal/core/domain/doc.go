// Package domain defines the core business entities for the drafter.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Revision: An immutable, uniquely named snapshot of a quote document
//   - Mutation/Marker: A semantic edit and its idempotency key
//   - Outcome: The typed result of a commit, including failures
//   - CommitRecord: An audit entry for one commit attempt
//
// The naming scheme ("{base}.{ext}", "{base}_v{n}.{ext}") also lives here
// because every layer depends on it.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
