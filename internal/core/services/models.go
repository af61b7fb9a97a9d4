package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/custodia-labs/valvex/internal/core/domain"
	"github.com/custodia-labs/valvex/internal/core/ports/driven"
	"github.com/custodia-labs/valvex/internal/core/ports/driving"
)

// Ensure services implement the interfaces.
var (
	_ driving.ModelService  = (*ModelService)(nil)
	_ driving.SchemaService = (*SchemaService)(nil)
)

// ModelService queries model providers.
type ModelService struct {
	llmFactory driven.LLMFactory
}

// NewModelService creates a new model service.
func NewModelService(llmFactory driven.LLMFactory) *ModelService {
	return &ModelService{llmFactory: llmFactory}
}

// ListModels returns the models the provider can serve, sorted by name.
func (s *ModelService) ListModels(ctx context.Context, settings domain.LLMSettings) ([]string, error) {
	llm, err := s.llmFactory.Create(&settings)
	if err != nil {
		return nil, err
	}
	defer llm.Close()

	models, err := llm.ListModels(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrModelUnavailable, err)
	}
	sort.Strings(models)
	return models, nil
}

// Ping checks the provider is reachable.
func (s *ModelService) Ping(ctx context.Context, settings domain.LLMSettings) error {
	llm, err := s.llmFactory.Create(&settings)
	if err != nil {
		return err
	}
	defer llm.Close()

	if err := llm.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrModelUnavailable, err)
	}
	return nil
}

// SchemaService resolves record schemas.
type SchemaService struct {
	loader driven.SchemaLoader
	shaper driven.ResponseShaper
}

// NewSchemaService creates a new schema service.
func NewSchemaService(loader driven.SchemaLoader, shaper driven.ResponseShaper) *SchemaService {
	return &SchemaService{loader: loader, shaper: shaper}
}

// Load returns the schema at path, or the built-in valve schema when path is empty.
// The returned schema has passed Check.
func (s *SchemaService) Load(path string) (*domain.RecordSchema, error) {
	if path == "" {
		return domain.ValveSchema(), nil
	}
	schema, err := s.loader.Load(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrSchemaUnavailable, err)
	}
	if err := schema.Check(); err != nil {
		return nil, err
	}
	return schema, nil
}

// Hint returns the JSON Schema sent to the model for schema.
func (s *SchemaService) Hint(schema *domain.RecordSchema) (json.RawMessage, error) {
	if err := schema.Check(); err != nil {
		return nil, err
	}
	return s.shaper.Hint(schema)
}

// Render encodes schema as a schema file in the format named by ext.
func (s *SchemaService) Render(schema *domain.RecordSchema, ext string) ([]byte, error) {
	if err := schema.Check(); err != nil {
		return nil, err
	}
	return s.loader.Marshal(schema, ext)
}
