package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/valvex/internal/core/domain"
)

func writeSchema(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestSchemaLoader_Load_TOML(t *testing.T) {
	path := writeSchema(t, "pump.toml", `
name = "pump"
collection = "pumps"
identifier = "model"
identifier_case_insensitive = true

[[fields]]
name = "model"
required = true
description = "model number"

[[fields]]
name = "flow_rate"
type = "number"

[[fields]]
name = "drive"
type = "ENUM"
values = ["electric", "diesel"]
`)

	schema, err := NewSchemaLoader().Load(path)

	require.NoError(t, err)
	require.NoError(t, schema.Check())
	assert.Equal(t, "pump", schema.Name)
	assert.Equal(t, "pumps", schema.Collection)
	assert.True(t, schema.IdentifierCaseInsensitive)
	require.Len(t, schema.Fields, 3)
	assert.Equal(t, domain.FieldText, schema.Fields[0].Type)
	assert.True(t, schema.Fields[0].Required)
	assert.Equal(t, domain.FieldNumber, schema.Fields[1].Type)
	assert.Equal(t, domain.FieldEnum, schema.Fields[2].Type)
	assert.Equal(t, []string{"electric", "diesel"}, schema.Fields[2].Values)
}

func TestSchemaLoader_Load_YAML(t *testing.T) {
	path := writeSchema(t, "flange.yml", `
name: flange
identifier: part_no
fields:
  - name: part_no
    required: true
  - name: bore
    type: number
`)

	schema, err := NewSchemaLoader().Load(path)

	require.NoError(t, err)
	require.NoError(t, schema.Check())
	assert.Equal(t, "flanges", schema.Collection)
	assert.Equal(t, []string{"part_no", "bore"}, schema.FieldNames())
}

func TestSchemaLoader_Load_JSON(t *testing.T) {
	path := writeSchema(t, "gasket.json", `{
  "name": "gasket",
  "collection": "gaskets",
  "identifier": "sku",
  "fields": [{"name": "sku", "type": "text", "required": true}]
}`)

	schema, err := NewSchemaLoader().Load(path)

	require.NoError(t, err)
	assert.Equal(t, "sku", schema.Identifier)
}

func TestSchemaLoader_Load_Errors(t *testing.T) {
	loader := NewSchemaLoader()

	_, err := loader.Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = loader.Load(writeSchema(t, "schema.ini", "name=x"))
	assert.ErrorIs(t, err, domain.ErrUnsupportedType)

	_, err = loader.Load(writeSchema(t, "broken.yaml", "name: [unclosed"))
	assert.Error(t, err)
}

func TestMarshalSchema_RoundTrip(t *testing.T) {
	for _, ext := range []string{".toml", ".yaml", ".json"} {
		t.Run(ext, func(t *testing.T) {
			data, err := NewSchemaLoader().Marshal(domain.ValveSchema(), ext)
			require.NoError(t, err)

			path := writeSchema(t, "valve"+ext, string(data))
			loaded, err := NewSchemaLoader().Load(path)

			require.NoError(t, err)
			assert.Equal(t, domain.ValveSchema(), loaded)
		})
	}
}

func TestMarshalSchema_UnknownFormat(t *testing.T) {
	_, err := MarshalSchema(domain.ValveSchema(), ".xml")

	assert.ErrorIs(t, err, domain.ErrUnsupportedType)
}
