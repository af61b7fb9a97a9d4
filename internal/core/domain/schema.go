package domain

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// FieldType is the declared value type of a schema field.
type FieldType string

// Available field types.
const (
	// FieldText holds free text.
	FieldText FieldType = "text"

	// FieldNumber holds a decimal number.
	FieldNumber FieldType = "number"

	// FieldEnum holds one of a declared set of values.
	FieldEnum FieldType = "enum"
)

// IsValid returns true if the field type is recognised.
func (t FieldType) IsValid() bool {
	switch t {
	case FieldText, FieldNumber, FieldEnum:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (t FieldType) String() string {
	return string(t)
}

// Field declares one field of a record.
type Field struct {
	// Name is the JSON key of the field.
	Name string

	// Type is the value type.
	Type FieldType

	// Required fields must be present and non-null in every record.
	Required bool

	// Values lists the allowed values of an enum field.
	Values []string

	// Description is shown to the model in the extraction prompt.
	Description string
}

// RecordSchema declares the shape of extracted records.
// It is static and loaded once per pipeline run.
type RecordSchema struct {
	// Name is the singular record name (e.g., "valve").
	Name string

	// Collection is the plural key wrapping records in model responses (e.g., "valves").
	Collection string

	// Identifier names the field used as the uniqueness key.
	Identifier string

	// IdentifierCaseInsensitive folds case when comparing identifiers.
	IdentifierCaseInsensitive bool

	// Fields lists the record fields in output order.
	Fields []Field
}

// ValveSchema returns the built-in valve specification schema.
func ValveSchema() *RecordSchema {
	return &RecordSchema{
		Name:       "valve",
		Collection: "valves",
		Identifier: "serial_id",
		Fields: []Field{
			{Name: "valve_type", Type: FieldText, Required: true, Description: "kind of valve, e.g. butterfly, gate, check, ball, globe, control"},
			{Name: "serial_id", Type: FieldText, Required: true, Description: "serial or model number exactly as written, e.g. BF-2023-A101"},
			{Name: "width", Type: FieldNumber, Description: "width in inches"},
			{Name: "height", Type: FieldNumber, Description: "height in inches"},
			{Name: "pressure_rating", Type: FieldText, Description: "pressure rating including unit, e.g. 150 PSI"},
			{Name: "material", Type: FieldText, Description: "construction material"},
			{Name: "manufacturer", Type: FieldText, Description: "manufacturer name"},
		},
	}
}

// Field returns the field with the given name.
func (s *RecordSchema) Field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// FieldNames returns the field names in declaration order.
func (s *RecordSchema) FieldNames() []string {
	names := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		names[i] = f.Name
	}
	return names
}

// Check verifies the schema is usable for extraction.
func (s *RecordSchema) Check() error {
	if s == nil {
		return fmt.Errorf("%w: no schema", ErrSchemaUnavailable)
	}
	if strings.TrimSpace(s.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrSchemaUnavailable)
	}
	if strings.TrimSpace(s.Collection) == "" {
		return fmt.Errorf("%w: collection is required", ErrSchemaUnavailable)
	}
	if len(s.Fields) == 0 {
		return fmt.Errorf("%w: at least one field is required", ErrSchemaUnavailable)
	}

	seen := make(map[string]bool, len(s.Fields))
	for _, f := range s.Fields {
		if strings.TrimSpace(f.Name) == "" {
			return fmt.Errorf("%w: field with empty name", ErrSchemaUnavailable)
		}
		if seen[f.Name] {
			return fmt.Errorf("%w: duplicate field %q", ErrSchemaUnavailable, f.Name)
		}
		seen[f.Name] = true
		if !f.Type.IsValid() {
			return fmt.Errorf("%w: field %q has unknown type %q", ErrSchemaUnavailable, f.Name, f.Type)
		}
		if f.Type == FieldEnum && len(f.Values) == 0 {
			return fmt.Errorf("%w: enum field %q declares no values", ErrSchemaUnavailable, f.Name)
		}
	}

	id, ok := s.Field(s.Identifier)
	if !ok {
		return fmt.Errorf("%w: identifier field %q is not declared", ErrSchemaUnavailable, s.Identifier)
	}
	if !id.Required {
		return fmt.Errorf("%w: identifier field %q must be required", ErrSchemaUnavailable, s.Identifier)
	}
	return nil
}

// Describe renders the field list for inclusion in a prompt.
func (s *RecordSchema) Describe() string {
	var b strings.Builder
	for _, f := range s.Fields {
		b.WriteString("- ")
		b.WriteString(f.Name)
		b.WriteString(" (")
		b.WriteString(f.Type.String())
		if f.Required {
			b.WriteString(", required")
		} else {
			b.WriteString(", optional")
		}
		if f.Name == s.Identifier {
			b.WriteString(", unique identifier")
		}
		b.WriteString(")")
		if len(f.Values) > 0 {
			b.WriteString(" one of: ")
			b.WriteString(strings.Join(f.Values, ", "))
		}
		if f.Description != "" {
			b.WriteString(": ")
			b.WriteString(f.Description)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// ValidationKind classifies a validation failure.
type ValidationKind string

// Validation failure kinds.
const (
	// MissingField means a required field is absent, null or blank.
	MissingField ValidationKind = "missing_field"

	// TypeMismatch means a required field could not be coerced to its type.
	TypeMismatch ValidationKind = "type_mismatch"
)

// ValidationError describes why a candidate mapping was rejected.
type ValidationError struct {
	Kind  ValidationKind
	Field string
	Value any
}

func (e *ValidationError) Error() string {
	if e.Kind == MissingField {
		return fmt.Sprintf("missing required field %q", e.Field)
	}
	return fmt.Sprintf("field %q: cannot use %v", e.Field, e.Value)
}

// Validate turns a decoded candidate mapping into a Record.
// Values are coerced to the declared field types where possible; optional
// fields that cannot be coerced become nil. Unknown keys are dropped.
func (s *RecordSchema) Validate(candidate map[string]any) (Record, error) {
	values := make(map[string]any, len(s.Fields))

	for _, f := range s.Fields {
		raw, present := candidate[f.Name]
		if !present || raw == nil || isBlank(raw) {
			if f.Required {
				return Record{}, &ValidationError{Kind: MissingField, Field: f.Name}
			}
			values[f.Name] = nil
			continue
		}

		v, ok := coerce(f, raw)
		if !ok {
			if f.Required {
				return Record{}, &ValidationError{Kind: TypeMismatch, Field: f.Name, Value: raw}
			}
			values[f.Name] = nil
			continue
		}
		values[f.Name] = v
	}

	return Record{Values: values}, nil
}

// IdentifierKey returns the normalised identifier of r.
// The second result is false when the identifier is null or blank.
func (s *RecordSchema) IdentifierKey(r Record) (string, bool) {
	v, ok := r.Values[s.Identifier]
	if !ok || v == nil {
		return "", false
	}
	key := strings.TrimSpace(FormatValue(v))
	if key == "" {
		return "", false
	}
	if s.IdentifierCaseInsensitive {
		key = strings.ToLower(key)
	}
	return key, true
}

// numberPattern finds the first decimal number in free text such as `12.5 in` or `1,200 mm`.
var numberPattern = regexp.MustCompile(`-?\d[\d,]*(?:\.\d+)?|-?\.\d+`)

// thousandsPattern matches numbers grouped with commas, such as `1,200` or `12,500.75`.
var thousandsPattern = regexp.MustCompile(`^-?\d{1,3}(?:,\d{3})+(?:\.\d+)?$`)

// decimalCommaPattern matches a comma used as the decimal mark, such as `10,5`.
var decimalCommaPattern = regexp.MustCompile(`^-?\d+,\d+$`)

// parseNumberToken parses a token found by numberPattern. Commas are read as
// thousands separators when every group has three digits, otherwise a single
// comma is the decimal mark. Anything else fails.
func parseNumberToken(token string) (any, bool) {
	token = strings.TrimRight(token, ",")
	switch {
	case !strings.Contains(token, ","):
	case thousandsPattern.MatchString(token):
		token = strings.ReplaceAll(token, ",", "")
	case decimalCommaPattern.MatchString(token):
		token = strings.Replace(token, ",", ".", 1)
	default:
		return nil, false
	}
	f, err := strconv.ParseFloat(token, 64)
	if err != nil {
		return nil, false
	}
	return f, true
}

func coerce(f Field, raw any) (any, bool) {
	switch f.Type {
	case FieldNumber:
		return coerceNumber(raw)
	case FieldEnum:
		return coerceEnum(f.Values, raw)
	default:
		return coerceText(raw)
	}
}

func coerceText(raw any) (any, bool) {
	switch v := raw.(type) {
	case string:
		return strings.TrimSpace(v), true
	case float64, float32, int, int64, json.Number, bool:
		return FormatValue(v), true
	default:
		return nil, false
	}
}

func coerceNumber(raw any) (any, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case string:
		token := numberPattern.FindString(v)
		if token == "" {
			return nil, false
		}
		return parseNumberToken(token)
	default:
		return nil, false
	}
}

func coerceEnum(allowed []string, raw any) (any, bool) {
	text, ok := coerceText(raw)
	if !ok {
		return nil, false
	}
	for _, a := range allowed {
		if strings.EqualFold(a, text.(string)) {
			return a, true
		}
	}
	return nil, false
}

func isBlank(v any) bool {
	s, ok := v.(string)
	return ok && strings.TrimSpace(s) == ""
}

// FormatValue renders a record value as text.
// Nil renders as the empty string.
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case json.Number:
		return x.String()
	case bool:
		return strconv.FormatBool(x)
	default:
		return fmt.Sprint(x)
	}
}
