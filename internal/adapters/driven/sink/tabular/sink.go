// Package tabular writes run results as Excel spreadsheets.
package tabular

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/custodia-labs/valvex/internal/core/domain"
	"github.com/custodia-labs/valvex/internal/core/ports/driven"
)

// Ensure Sink implements the interface.
var _ driven.ResultSink = (*Sink)(nil)

const (
	defaultSheet        = "Sheet1"
	maxSheetName        = 31
	forbiddenSheetChars = `:\/?*[]`
)

// Sink writes one header row of field names followed by one row per record.
// Null fields are left as empty cells.
type Sink struct{}

// New creates a new tabular sink.
func New() *Sink {
	return &Sink{}
}

// Format returns the output format written by this sink.
func (s *Sink) Format() domain.OutputFormat {
	return domain.OutputTabular
}

// Write serialises result to w as an .xlsx workbook.
func (s *Sink) Write(ctx context.Context, w io.Writer, result *domain.RunResult) error {
	if result == nil || result.Records.Schema == nil {
		return fmt.Errorf("%w: result has no schema", domain.ErrInvalidInput)
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := SheetName(result.Records.Schema)
	if err := f.SetSheetName(defaultSheet, sheet); err != nil {
		return fmt.Errorf("name sheet: %w", err)
	}

	names := result.Records.Schema.FieldNames()
	header := make([]any, len(names))
	for i, n := range names {
		header[i] = n
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, row := range result.Records.Rows() {
		if err := ctx.Err(); err != nil {
			return err
		}
		for j, v := range row {
			if v == nil {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(j+1, i+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return fmt.Errorf("write %s: %w", cell, err)
			}
		}
	}

	if err := f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("freeze header: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// SheetName returns the worksheet name used for schema's records.
// Characters Excel rejects in sheet names become "_", surrounding quotes are
// trimmed and the name is cut to 31 characters.
func SheetName(schema *domain.RecordSchema) string {
	name := strings.Map(func(r rune) rune {
		if strings.ContainsRune(forbiddenSheetChars, r) {
			return '_'
		}
		return r
	}, schema.Collection)
	name = strings.Trim(name, "' ")
	if runes := []rune(name); len(runes) > maxSheetName {
		name = strings.TrimRight(string(runes[:maxSheetName]), "' ")
	}
	if name == "" {
		return defaultSheet
	}
	return name
}
