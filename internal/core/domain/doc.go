// Package domain defines the core business entities for valvex.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: Raw input text for one extraction run
//   - Chunk: A bounded, overlapping window of a Document
//   - RecordSchema: The fields a record must carry and its identifier field
//   - Record: One schema-validated record extracted from a chunk
//   - ResultSet: The deduplicated records of a run
//   - RunResult: The outcome of one pipeline run with its summary
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
