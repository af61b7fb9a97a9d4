package tabular

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/custodia-labs/valvex/internal/core/domain"
)

func TestSink_Format(t *testing.T) {
	assert.Equal(t, domain.OutputTabular, New().Format())
	assert.Equal(t, ".xlsx", New().Format().Extension())
}

func TestSink_Write(t *testing.T) {
	result := &domain.RunResult{
		ID: "run-1",
		Records: domain.ResultSet{
			Schema: domain.ValveSchema(),
			Records: []domain.Record{
				{Values: map[string]any{"valve_type": "gate", "serial_id": "GV-2022-B205", "width": 12.5, "height": nil}},
				{Values: map[string]any{"valve_type": "check", "serial_id": "CV-2019-E512", "material": "brass"}},
			},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, New().Write(context.Background(), &buf, result))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	assert.Equal(t, []string{"valves"}, f.GetSheetList())
	rows, err := f.GetRows("valves")
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, domain.ValveSchema().FieldNames(), rows[0])
	assert.Equal(t, []string{"gate", "GV-2022-B205", "12.5"}, rows[1])
	assert.Equal(t, []string{"check", "CV-2019-E512", "", "", "", "brass"}, rows[2])
}

func TestSink_Write_HeaderOnly(t *testing.T) {
	result := &domain.RunResult{Records: domain.ResultSet{Schema: domain.ValveSchema()}}

	var buf bytes.Buffer
	require.NoError(t, New().Write(context.Background(), &buf, result))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	rows, err := f.GetRows("valves")
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestSink_Write_NoSchema(t *testing.T) {
	err := New().Write(context.Background(), &bytes.Buffer{}, &domain.RunResult{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSheetName(t *testing.T) {
	assert.Equal(t, "valves", SheetName(domain.ValveSchema()))
	assert.Equal(t, defaultSheet, SheetName(&domain.RecordSchema{}))
	assert.Len(t, SheetName(&domain.RecordSchema{Collection: strings.Repeat("x", 40)}), 31)

	tests := []struct {
		collection string
		want       string
	}{
		{"valves/fittings", "valves_fittings"},
		{"valve:specs", "valve_specs"},
		{`a\b?c*d[e]`, "a_b_c_d_e_"},
		{"'quoted'", "quoted"},
		{"/", "_"},
		{"''", defaultSheet},
		{strings.Repeat("é", 40), strings.Repeat("é", 31)},
	}
	for _, tt := range tests {
		t.Run(tt.collection, func(t *testing.T) {
			assert.Equal(t, tt.want, SheetName(&domain.RecordSchema{Collection: tt.collection}))
		})
	}
}

func TestSink_Write_UnsafeCollectionName(t *testing.T) {
	schema := domain.ValveSchema()
	schema.Collection = "valves/fittings"
	result := &domain.RunResult{
		ID: "run-1",
		Records: domain.ResultSet{
			Schema: schema,
			Records: []domain.Record{
				{Values: map[string]any{"valve_type": "gate", "serial_id": "GV-1"}},
			},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, New().Write(context.Background(), &buf, result))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"valves_fittings"}, f.GetSheetList())
	v, err := f.GetCellValue("valves_fittings", "B2")
	require.NoError(t, err)
	assert.Equal(t, "GV-1", v)
}
