package excelextract

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const testSheet = "Sheet1"

// newSheet builds an in-memory workbook holding cells and returns its first sheet.
func newSheet(t *testing.T, cells map[string]any) *Worksheet {
	t.Helper()
	f := excelize.NewFile()
	t.Cleanup(func() { f.Close() })

	for name, v := range cells {
		require.NoError(t, f.SetCellValue(testSheet, name, v))
	}
	ws, err := OpenWorksheet(f, testSheet)
	require.NoError(t, err)
	return ws
}

// setRow writes values left to right starting at the given cell.
func setRow(cells map[string]any, row int, startColumn string, values ...any) {
	start, err := ColumnNumber(startColumn)
	if err != nil {
		panic(err)
	}
	for i, v := range values {
		if v == nil {
			continue
		}
		name, err := excelize.CoordinatesToCellName(start+i, row)
		if err != nil {
			panic(err)
		}
		cells[name] = v
	}
}
