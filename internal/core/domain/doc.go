// Package domain defines the core business entities for StudyBuddy.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: An uploaded study document tracked by the registry
//   - Chunk: A bounded span of a document's text, the unit of retrieval
//   - SearchResult: A ranked chunk returned by the retriever
//   - Answer: A grounded model answer with its source references
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
