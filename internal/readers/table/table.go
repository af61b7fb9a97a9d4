// Package table turns spreadsheet rows into document text.
package table

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/custodia-labs/valvex/internal/core/domain"
)

// AllColumns selects every column; each data row becomes one line.
const AllColumns = "*"

// rowSeparator joins the cells of one row when every column is selected.
const rowSeparator = " | "

// Text selects one column of rows and joins its non-empty data cells with
// newlines. The first row is the header. An empty column name selects the
// first textual column: the first column holding a non-numeric data cell,
// or the first column when every cell is numeric.
func Text(rows [][]string, column string) (string, error) {
	if len(rows) == 0 {
		return "", nil
	}
	if column == AllColumns {
		return allColumns(rows), nil
	}

	idx, err := columnIndex(rows, column)
	if err != nil {
		return "", err
	}

	lines := make([]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if idx >= len(row) {
			continue
		}
		cell := strings.TrimSpace(row[idx])
		if cell == "" {
			continue
		}
		lines = append(lines, cell)
	}
	return strings.Join(lines, "\n"), nil
}

func allColumns(rows [][]string) string {
	lines := make([]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		cells := make([]string, 0, len(row))
		for _, cell := range row {
			if cell = strings.TrimSpace(cell); cell != "" {
				cells = append(cells, cell)
			}
		}
		if len(cells) > 0 {
			lines = append(lines, strings.Join(cells, rowSeparator))
		}
	}
	return strings.Join(lines, "\n")
}

func columnIndex(rows [][]string, column string) (int, error) {
	header := rows[0]
	if column != "" {
		for i, h := range header {
			if strings.EqualFold(strings.TrimSpace(h), strings.TrimSpace(column)) {
				return i, nil
			}
		}
		return 0, fmt.Errorf("%w: column %q not found (columns: %s)",
			domain.ErrInvalidInput, column, strings.Join(header, ", "))
	}

	width := len(header)
	for _, row := range rows[1:] {
		width = max(width, len(row))
	}
	for i := 0; i < width; i++ {
		for _, row := range rows[1:] {
			if i < len(row) && isText(row[i]) {
				return i, nil
			}
		}
	}
	return 0, nil
}

func isText(cell string) bool {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return false
	}
	_, err := strconv.ParseFloat(strings.ReplaceAll(cell, ",", ""), 64)
	return err != nil
}
