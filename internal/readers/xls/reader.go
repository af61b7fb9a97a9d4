// Package xls reads legacy Excel 97-2003 workbooks.
package xls

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/shakinm/xlsReader/xls"
	"github.com/shakinm/xlsReader/xls/structure"

	"github.com/custodia-labs/valvex/internal/core/domain"
	"github.com/custodia-labs/valvex/internal/core/ports/driven"
	"github.com/custodia-labs/valvex/internal/readers/table"
)

// Ensure Reader implements the interface.
var _ driven.DocumentReader = (*Reader)(nil)

// Reader handles .xls workbooks.
type Reader struct{}

// New creates a new xls reader.
func New() *Reader {
	return &Reader{}
}

// Name returns the reader name.
func (r *Reader) Name() string {
	return "xls"
}

// Extensions returns the file extensions this reader handles.
func (r *Reader) Extensions() []string {
	return []string{".xls"}
}

// Read parses the workbook and extracts the selected column.
func (r *Reader) Read(ctx context.Context, in io.Reader, uri string, opts driven.SourceOptions) (*domain.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := io.ReadAll(in)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", uri, err)
	}

	wb, err := xls.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: open workbook %s: %v", domain.ErrInvalidInput, uri, err)
	}

	rows, err := sheetRows(&wb, opts.Sheet)
	if err != nil {
		return nil, err
	}

	content, err := table.Text(rows, opts.Column)
	if err != nil {
		return nil, err
	}
	return &domain.Document{URI: uri, Content: content}, nil
}

func sheetRows(wb *xls.Workbook, name string) ([][]string, error) {
	for i := 0; i < wb.GetNumberSheets(); i++ {
		sheet, err := wb.GetSheet(i)
		if err != nil || sheet == nil {
			continue
		}
		if name != "" && sheet.GetName() != name {
			continue
		}

		var rows [][]string
		for _, row := range sheet.GetRows() {
			rows = append(rows, cellValues(row.GetCols()))
		}
		return rows, nil
	}

	if name != "" {
		return nil, fmt.Errorf("%w: sheet %q not found", domain.ErrInvalidInput, name)
	}
	return nil, fmt.Errorf("%w: workbook has no sheets", domain.ErrInvalidInput)
}

func cellValues(cols []structure.CellData) []string {
	out := make([]string, 0, len(cols))
	for _, col := range cols {
		val := col.GetString()
		if val == "" {
			if num := col.GetFloat64(); num != 0 {
				val = strconv.FormatFloat(num, 'f', -1, 64)
			} else if in := col.GetInt64(); in != 0 {
				val = strconv.FormatInt(in, 10)
			}
		}
		out = append(out, val)
	}
	return out
}
