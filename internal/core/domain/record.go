package domain

// Record is one validated record extracted from a chunk.
type Record struct {
	// Values holds one value per schema field. Nil means the field is null.
	Values map[string]any

	// ChunkIndex is the chunk the record was extracted from.
	ChunkIndex int
}

// Value returns the value of the named field, or nil.
func (r Record) Value(name string) any {
	return r.Values[name]
}

// Text returns the named field rendered as text.
func (r Record) Text(name string) string {
	return FormatValue(r.Values[name])
}

// ResultSet is the deduplicated collection of records of one run.
// Records are kept in first-seen order and no two share an identifier.
type ResultSet struct {
	Schema  *RecordSchema
	Records []Record
}

// Len returns the number of records.
func (s ResultSet) Len() int {
	return len(s.Records)
}

// Rows returns the records as ordered rows of field values, one column per schema field.
func (s ResultSet) Rows() [][]any {
	names := s.Schema.FieldNames()
	rows := make([][]any, len(s.Records))
	for i, r := range s.Records {
		row := make([]any, len(names))
		for j, n := range names {
			row[j] = r.Values[n]
		}
		rows[i] = row
	}
	return rows
}
