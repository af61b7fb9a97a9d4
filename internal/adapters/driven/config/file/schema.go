package file

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/valvex/internal/core/domain"
	"github.com/custodia-labs/valvex/internal/core/ports/driven"
)

// Ensure SchemaLoader implements the interface.
var _ driven.SchemaLoader = (*SchemaLoader)(nil)

// schemaFile is the on-disk form of a record schema.
type schemaFile struct {
	Name                      string      `toml:"name" yaml:"name" json:"name"`
	Collection                string      `toml:"collection" yaml:"collection" json:"collection"`
	Identifier                string      `toml:"identifier" yaml:"identifier" json:"identifier"`
	IdentifierCaseInsensitive bool        `toml:"identifier_case_insensitive,omitempty" yaml:"identifier_case_insensitive,omitempty" json:"identifier_case_insensitive,omitempty"`
	Fields                    []fieldFile `toml:"fields" yaml:"fields" json:"fields"`
}

type fieldFile struct {
	Name        string   `toml:"name" yaml:"name" json:"name"`
	Type        string   `toml:"type" yaml:"type" json:"type"`
	Required    bool     `toml:"required,omitempty" yaml:"required,omitempty" json:"required,omitempty"`
	Values      []string `toml:"values,omitempty" yaml:"values,omitempty" json:"values,omitempty"`
	Description string   `toml:"description,omitempty" yaml:"description,omitempty" json:"description,omitempty"`
}

// SchemaLoader reads record schemas from TOML, YAML or JSON files.
type SchemaLoader struct{}

// NewSchemaLoader creates a schema loader.
func NewSchemaLoader() *SchemaLoader {
	return &SchemaLoader{}
}

// Load parses the schema file at path. The format follows the extension.
// A field without a type is text. The collection defaults to the name plus "s".
func (l *SchemaLoader) Load(path string) (*domain.RecordSchema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var sf schemaFile
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		err = toml.Unmarshal(data, &sf)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &sf)
	case ".json":
		err = json.Unmarshal(data, &sf)
	default:
		return nil, fmt.Errorf("%w: schema file extension %q", domain.ErrUnsupportedType, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("parse schema %s: %w", filepath.Base(path), err)
	}

	return sf.toDomain(), nil
}

func (sf schemaFile) toDomain() *domain.RecordSchema {
	schema := &domain.RecordSchema{
		Name:                      strings.TrimSpace(sf.Name),
		Collection:                strings.TrimSpace(sf.Collection),
		Identifier:                strings.TrimSpace(sf.Identifier),
		IdentifierCaseInsensitive: sf.IdentifierCaseInsensitive,
		Fields:                    make([]domain.Field, len(sf.Fields)),
	}
	if schema.Collection == "" && schema.Name != "" {
		schema.Collection = schema.Name + "s"
	}
	for i, f := range sf.Fields {
		typ := domain.FieldType(strings.ToLower(strings.TrimSpace(f.Type)))
		if typ == "" {
			typ = domain.FieldText
		}
		schema.Fields[i] = domain.Field{
			Name:        strings.TrimSpace(f.Name),
			Type:        typ,
			Required:    f.Required,
			Values:      f.Values,
			Description: f.Description,
		}
	}
	return schema
}

// Marshal encodes schema in the format named by ext.
func (l *SchemaLoader) Marshal(schema *domain.RecordSchema, ext string) ([]byte, error) {
	return MarshalSchema(schema, ext)
}

// MarshalSchema encodes schema in the format named by ext (".toml", ".yaml", ".yml" or ".json").
func MarshalSchema(schema *domain.RecordSchema, ext string) ([]byte, error) {
	sf := schemaFile{
		Name:                      schema.Name,
		Collection:                schema.Collection,
		Identifier:                schema.Identifier,
		IdentifierCaseInsensitive: schema.IdentifierCaseInsensitive,
		Fields:                    make([]fieldFile, len(schema.Fields)),
	}
	for i, f := range schema.Fields {
		sf.Fields[i] = fieldFile{
			Name:        f.Name,
			Type:        f.Type.String(),
			Required:    f.Required,
			Values:      f.Values,
			Description: f.Description,
		}
	}

	switch strings.ToLower(ext) {
	case ".toml":
		return toml.Marshal(sf)
	case ".yaml", ".yml":
		return yaml.Marshal(sf)
	case ".json":
		return json.MarshalIndent(sf, "", "  ")
	default:
		return nil, fmt.Errorf("%w: schema file extension %q", domain.ErrUnsupportedType, ext)
	}
}
