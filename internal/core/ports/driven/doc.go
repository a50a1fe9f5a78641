// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - Normaliser: Extracts text from one document format
//   - NormaliserRegistry: Selects the normaliser for a file type
//   - PipelineBuilder: Builds the chunking post-processor pipeline
//   - EmbeddingService: Generates vector embeddings
//   - VectorStore: Persists embedding records and the dedupe hash index
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - Metrics: Pipeline counters and latencies
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, connector, or normaliser package
package driven
