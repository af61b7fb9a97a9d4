// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// The extraction pipeline lives here: ExtractionService moves a run through
// chunking, extraction and aggregation, Extractor handles one chunk, and
// Deduplicator merges candidates by identifier.
//
// Services are pure Go with no CGO or external dependencies.
package services
