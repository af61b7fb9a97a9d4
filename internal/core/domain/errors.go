package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates an unknown source format, sink format or provider.
	ErrUnsupportedType = errors.New("unsupported type")

	// Setup errors. Any of these aborts a run before extraction starts.

	// ErrEmptyDocument indicates the input document has no extractable text.
	ErrEmptyDocument = errors.New("document is empty")

	// ErrSchemaUnavailable indicates the record schema is missing or inconsistent.
	ErrSchemaUnavailable = errors.New("record schema unavailable")

	// ErrModelUnavailable indicates the model endpoint could not be reached at start.
	ErrModelUnavailable = errors.New("model unavailable")

	// Chunk-level errors. These are absorbed by the pipeline and only counted.

	// ErrChunkExtraction indicates one chunk produced no usable model response.
	ErrChunkExtraction = errors.New("chunk extraction failed")

	// ErrMalformedResponse indicates the model payload did not have the expected shape.
	ErrMalformedResponse = errors.New("malformed model response")
)

// IsSetupError reports whether err aborts a run before extraction starts.
func IsSetupError(err error) bool {
	return errors.Is(err, ErrEmptyDocument) ||
		errors.Is(err, ErrSchemaUnavailable) ||
		errors.Is(err, ErrModelUnavailable) ||
		errors.Is(err, ErrInvalidInput)
}
