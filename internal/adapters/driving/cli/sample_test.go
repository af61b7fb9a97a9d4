package cli

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestSampleCmd_WritesWorkbook(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	path := filepath.Join(t.TempDir(), "messy.xlsx")

	out, err := executeCmd(t, "sample", "-o", path, "-n", "12", "--seed", "5")

	require.NoError(t, err)
	assert.Contains(t, out, "Generated "+path+": 12 rows")

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(f.GetSheetList()[0])
	require.NoError(t, err)
	assert.Len(t, rows, 13)
}

func TestSampleCmd_BadPath(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	_, err := executeCmd(t, "sample", "-o", filepath.Join(t.TempDir(), "missing", "x.xlsx"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create")
}
