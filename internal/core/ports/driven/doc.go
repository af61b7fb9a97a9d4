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
//   - LLMService: The model collaborator answering extraction requests
//   - Chunker: Splits a document into overlapping windows
//   - ChunkerRegistry: Builds a chunker by strategy name
//   - ResponseShaper: Renders the response-shape hint and checks payload envelopes
//   - PromptStore: Extraction prompt templates
//   - DocumentSource: Loads documents from files or stdin
//   - ResultSink: Persists a result set in one output format
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - ProgressReporter: Receives state transitions and per-chunk progress.
//   - RunStore: Run history. Without it, finished runs are not recorded.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
