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
//   - VectorIndex: Chunk storage and similarity search (SQLite, Chroma or memory)
//   - TextExtractor: Turns uploaded bytes into plain text
//   - Normaliser: A per-format extractor registered with the TextExtractor
//   - PostProcessorPipeline: Splits extracted text into chunks
//   - UploadStore: Keeps the original uploaded files
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - EmbeddingService: Generates vectors for index backends that need them.
//   - GenerativeModel: Text and image generation. Without it, ask,
//     visualisation, recommendation and analysis return ErrLLMUnavailable.
//   - PromptStore: Custom prompt templates. Defaults are used when nil.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or normaliser package
package driven
