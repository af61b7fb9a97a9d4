// Package xlsx reads Excel workbooks.
package xlsx

import (
	"context"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/custodia-labs/valvex/internal/core/domain"
	"github.com/custodia-labs/valvex/internal/core/ports/driven"
	"github.com/custodia-labs/valvex/internal/readers/table"
)

// Ensure Reader implements the interface.
var _ driven.DocumentReader = (*Reader)(nil)

// Reader handles .xlsx workbooks. One column of one sheet becomes the
// document, one line per non-empty data row.
type Reader struct{}

// New creates a new xlsx reader.
func New() *Reader {
	return &Reader{}
}

// Name returns the reader name.
func (r *Reader) Name() string {
	return "xlsx"
}

// Extensions returns the file extensions this reader handles.
func (r *Reader) Extensions() []string {
	return []string{".xlsx", ".xlsm"}
}

// Read opens the workbook and extracts the selected column.
func (r *Reader) Read(ctx context.Context, in io.Reader, uri string, opts driven.SourceOptions) (*domain.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := excelize.OpenReader(in)
	if err != nil {
		return nil, fmt.Errorf("%w: open workbook %s: %v", domain.ErrInvalidInput, uri, err)
	}
	defer func() { _ = f.Close() }()

	sheet, err := selectSheet(f, opts.Sheet)
	if err != nil {
		return nil, err
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}

	content, err := table.Text(rows, opts.Column)
	if err != nil {
		return nil, err
	}
	return &domain.Document{URI: uri, Content: content}, nil
}

func selectSheet(f *excelize.File, name string) (string, error) {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return "", fmt.Errorf("%w: workbook has no sheets", domain.ErrInvalidInput)
	}
	if name == "" {
		return sheets[0], nil
	}
	for _, s := range sheets {
		if s == name {
			return s, nil
		}
	}
	return "", fmt.Errorf("%w: sheet %q not found", domain.ErrInvalidInput, name)
}
