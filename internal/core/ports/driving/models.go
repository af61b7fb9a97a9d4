package driving

import (
	"context"
	"encoding/json"

	"github.com/custodia-labs/valvex/internal/core/domain"
)

// ModelService queries the configured model provider.
type ModelService interface {
	// ListModels returns the models the provider can serve.
	ListModels(ctx context.Context, settings domain.LLMSettings) ([]string, error)

	// Ping checks the provider is reachable.
	Ping(ctx context.Context, settings domain.LLMSettings) error
}

// SchemaService resolves record schemas.
type SchemaService interface {
	// Load returns the schema at path, or the built-in valve schema when path is empty.
	Load(path string) (*domain.RecordSchema, error)

	// Hint returns the JSON Schema sent to the model for schema.
	Hint(schema *domain.RecordSchema) (json.RawMessage, error)

	// Render encodes schema as a schema file in the format named by ext.
	Render(schema *domain.RecordSchema, ext string) ([]byte, error)
}
