// Package jsonschema describes and checks model responses with JSON Schema.
//
// The hint sent to the model is strict: every schema field is listed with its
// type, optional fields are nullable. The check applied to replies is loose:
// it only requires the collection array of objects, since field values are
// coerced later by schema validation.
package jsonschema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	gschema "github.com/google/jsonschema-go/jsonschema"
	validator "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/custodia-labs/valvex/internal/core/domain"
	"github.com/custodia-labs/valvex/internal/core/ports/driven"
)

// Ensure Shaper implements the interface.
var _ driven.ResponseShaper = (*Shaper)(nil)

// Shaper implements driven.ResponseShaper.
// Compiled envelopes are cached per schema.
type Shaper struct {
	mu        sync.Mutex
	envelopes map[*domain.RecordSchema]*validator.Schema
}

// NewShaper creates a response shaper.
func NewShaper() *Shaper {
	return &Shaper{envelopes: make(map[*domain.RecordSchema]*validator.Schema)}
}

// Hint returns the JSON Schema of the expected response for schema.
func (s *Shaper) Hint(schema *domain.RecordSchema) (json.RawMessage, error) {
	if err := schema.Check(); err != nil {
		return nil, err
	}

	item := &gschema.Schema{
		Type:       "object",
		Properties: make(map[string]*gschema.Schema, len(schema.Fields)),
	}
	for _, f := range schema.Fields {
		item.Properties[f.Name] = fieldSchema(f)
		item.Required = append(item.Required, f.Name)
	}

	root := &gschema.Schema{
		Type: "object",
		Properties: map[string]*gschema.Schema{
			schema.Collection: {
				Type:        "array",
				Description: fmt.Sprintf("every %s found in the text", schema.Name),
				Items:       item,
			},
		},
		Required: []string{schema.Collection},
	}

	data, err := json.Marshal(root)
	if err != nil {
		return nil, fmt.Errorf("marshal response schema: %w", err)
	}
	return data, nil
}

func fieldSchema(f domain.Field) *gschema.Schema {
	fs := &gschema.Schema{Description: f.Description}

	base := "string"
	if f.Type == domain.FieldNumber {
		base = "number"
	}
	if f.Required {
		fs.Type = base
	} else {
		fs.Types = []string{base, "null"}
	}

	if f.Type == domain.FieldEnum {
		for _, v := range f.Values {
			fs.Enum = append(fs.Enum, v)
		}
		if !f.Required {
			fs.Enum = append(fs.Enum, nil)
		}
	}
	return fs
}

// Items checks payload and returns the candidate mappings in response order.
// A bare array is treated as the collection itself.
func (s *Shaper) Items(schema *domain.RecordSchema, payload []byte) ([]map[string]any, error) {
	envelope, err := s.envelope(schema)
	if err != nil {
		return nil, err
	}

	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrMalformedResponse, err)
	}
	if list, ok := doc.([]any); ok {
		doc = map[string]any{schema.Collection: list}
	}

	if err := envelope.Validate(doc); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrMalformedResponse, err)
	}

	raw := doc.(map[string]any)[schema.Collection].([]any)
	items := make([]map[string]any, len(raw))
	for i, r := range raw {
		items[i] = r.(map[string]any)
	}
	return items, nil
}

// envelope compiles {"<collection>": [object, ...]} for schema.
func (s *Shaper) envelope(schema *domain.RecordSchema) (*validator.Schema, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if compiled, ok := s.envelopes[schema]; ok {
		return compiled, nil
	}

	doc := &gschema.Schema{
		Type: "object",
		Properties: map[string]*gschema.Schema{
			schema.Collection: {
				Type:  "array",
				Items: &gschema.Schema{Type: "object"},
			},
		},
		Required: []string{schema.Collection},
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshal envelope schema: %w", err)
	}

	url := fmt.Sprintf("envelope_%d.json", len(s.envelopes))
	compiler := validator.NewCompiler()
	if err := compiler.AddResource(url, strings.NewReader(string(data))); err != nil {
		return nil, fmt.Errorf("add envelope schema: %w", err)
	}
	compiled, err := compiler.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile envelope schema: %w", err)
	}

	s.envelopes[schema] = compiled
	return compiled, nil
}
