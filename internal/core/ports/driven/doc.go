// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - RecordingStore: Read access to journal recordings (plus writes for importers)
//   - KeywordIndex: BM25 keyword search over recording fields
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully to keyword search:
//
//   - EmbeddingService: Generates vector embeddings.
//   - VectorIndex: Chunk embedding storage and similarity search.
//   - TranscriptChunker: Splits transcripts into embedded chunks.
//   - ModelProvisioner: Downloads the embedding model. Absent means always ready.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
