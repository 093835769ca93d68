// Package domain defines the core business entities for murmur.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Recording: A journal entry produced by the recorder (consumed, not owned)
//   - Chunk: A retrieval-sized span of transcript text with an embedding
//   - SearchResult: A fused hit from keyword and vector retrieval
//   - ModelStatus: The pollable lifecycle state of the embedding model
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
