package driven

import (
	"encoding/json"

	"github.com/custodia-labs/valvex/internal/core/domain"
)

// ResponseShaper describes and checks the JSON shape expected from the model:
// an object holding the schema's collection as an array of records.
type ResponseShaper interface {
	// Hint returns a JSON Schema document for the response shape.
	Hint(schema *domain.RecordSchema) (json.RawMessage, error)

	// Items checks payload against the response shape and returns the
	// candidate record mappings. A bare array of objects is also accepted.
	// Returns ErrMalformedResponse when the payload has another shape.
	Items(schema *domain.RecordSchema, payload []byte) ([]map[string]any, error)
}

// SchemaLoader reads and encodes record schema files.
type SchemaLoader interface {
	// Load parses the schema file at path. The format follows the extension:
	// .toml, .yaml/.yml or .json.
	Load(path string) (*domain.RecordSchema, error)

	// Marshal encodes schema in the file format named by ext (e.g. ".toml").
	// Returns ErrUnsupportedType for an unknown extension.
	Marshal(schema *domain.RecordSchema, ext string) ([]byte, error)
}
