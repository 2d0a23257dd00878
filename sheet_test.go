package excelextract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestWorksheetCellTypes(t *testing.T) {
	ws := newSheet(t, map[string]any{
		"A1": "Seattle",
		"B1": 42,
		"C1": 3.25,
		"D1": true,
		"E1": "  ",
	})

	c, err := ws.Cell(1, 1)
	require.NoError(t, err)
	assert.Equal(t, Cell{Row: 1, Column: 1, Value: "Seattle", Text: "Seattle"}, c)

	c, err = ws.Cell(1, 2)
	require.NoError(t, err)
	assert.Equal(t, 42.0, c.Value)
	assert.Equal(t, "42", c.Text)

	c, err = ws.Cell(1, 3)
	require.NoError(t, err)
	assert.Equal(t, 3.25, c.Value)

	c, err = ws.Cell(1, 4)
	require.NoError(t, err)
	assert.Equal(t, true, c.Value)

	c, err = ws.Cell(1, 5)
	require.NoError(t, err)
	assert.True(t, c.IsBlank())

	c, err = ws.Cell(9, 9)
	require.NoError(t, err)
	assert.Nil(t, c.Value)
	assert.True(t, c.IsBlank())
	assert.Equal(t, "I9", c.Address().String())

	_, err = ws.Cell(0, 1)
	assert.Error(t, err)
}

func TestOpenWorksheet(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	_, err := f.NewSheet("Branches")
	require.NoError(t, err)

	ws, err := OpenWorksheet(f, "Branches")
	require.NoError(t, err)
	assert.Equal(t, "Branches", ws.Name())

	_, err = OpenWorksheet(f, "Missing")
	assert.ErrorIs(t, err, ErrSheetNotFound)

	_, err = OpenWorksheet(nil, "Branches")
	assert.ErrorIs(t, err, ErrNilSheet)

	ws, err = WorksheetAt(f, 1)
	require.NoError(t, err)
	assert.Equal(t, "Branches", ws.Name())

	_, err = WorksheetAt(f, 2)
	assert.ErrorIs(t, err, ErrSheetNotFound)
}

func TestTypedValue(t *testing.T) {
	assert.Nil(t, typedValue(excelize.CellTypeUnset, ""))
	assert.Equal(t, "007", typedValue(excelize.CellTypeSharedString, "007"))
	assert.Equal(t, 7.0, typedValue(excelize.CellTypeNumber, "7"))
	assert.Equal(t, false, typedValue(excelize.CellTypeBool, "0"))
	assert.Equal(t, "#DIV/0!", typedValue(excelize.CellTypeError, "#DIV/0!"))
	assert.Equal(t, "n/a", typedValue(excelize.CellTypeNumber, "n/a"))
}

func TestRowCells(t *testing.T) {
	ws := newSheet(t, map[string]any{"B2": "x", "D2": "y"})

	cells, err := rowCells(ws, 2, 2, 4)
	require.NoError(t, err)
	require.Len(t, cells, 3)
	assert.Equal(t, "x", cells[0].Value)
	assert.True(t, cells[1].IsBlank())
	assert.Equal(t, 4, cells[2].Column)

	cells, err = rowCells(ws, 2, 4, 2)
	require.NoError(t, err)
	assert.Empty(t, cells)
}
