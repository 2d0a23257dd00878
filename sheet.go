package excelextract

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// Cell is a read-only view of one spreadsheet cell.
type Cell struct {
	Row    int
	Column int
	Value  any    // nil, bool, float64, time.Time or string
	Text   string // display text
}

// Address returns the cell coordinates.
func (c Cell) Address() CellAddress {
	return CellAddress{Row: c.Row, Column: c.Column}
}

// IsBlank reports whether the display text is empty after trimming.
func (c Cell) IsBlank() bool {
	return strings.TrimSpace(c.Text) == ""
}

// Sheet is the grid capability the extractor reads from.
// Rows and columns are 1-based.
type Sheet interface {
	Cell(row, column int) (Cell, error)
}

// rowCells reads the inclusive span [from, to] of one row.
func rowCells(s Sheet, row, from, to int) ([]Cell, error) {
	if to < from {
		return nil, nil
	}
	cells := make([]Cell, 0, to-from+1)
	for col := from; col <= to; col++ {
		c, err := s.Cell(row, col)
		if err != nil {
			return nil, err
		}
		cells = append(cells, c)
	}
	return cells, nil
}

// UntilBlank returns a continuation predicate that holds while the given
// column of the current row is non-blank. A failed read makes the predicate
// false, so the run ends without an error; use
// Configuration.GetDataUntilBlank to have read failures reported.
func UntilBlank(s Sheet, column string) (func(row int) bool, error) {
	if s == nil {
		return nil, ErrNilSheet
	}
	col, err := ColumnNumber(column)
	if err != nil {
		return nil, err
	}
	return func(row int) bool {
		c, err := s.Cell(row, col)
		return err == nil && !c.IsBlank()
	}, nil
}

/* =========================================================
 *  excelize adapter
 * ========================================================= */

// Worksheet exposes one sheet of an *excelize.File as a Sheet.
type Worksheet struct {
	file *excelize.File
	name string
}

// OpenWorksheet looks up a sheet by name.
func OpenWorksheet(f *excelize.File, name string) (*Worksheet, error) {
	if f == nil {
		return nil, ErrNilSheet
	}
	idx, err := f.GetSheetIndex(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrSheetNotFound, name, err)
	}
	if idx < 0 {
		return nil, fmt.Errorf("%w: %q", ErrSheetNotFound, name)
	}
	return &Worksheet{file: f, name: name}, nil
}

// WorksheetAt looks up a sheet by its 0-based position.
func WorksheetAt(f *excelize.File, index int) (*Worksheet, error) {
	if f == nil {
		return nil, ErrNilSheet
	}
	sheets := f.GetSheetList()
	if index < 0 || index >= len(sheets) {
		return nil, fmt.Errorf("%w: index %d out of range", ErrSheetNotFound, index)
	}
	return &Worksheet{file: f, name: sheets[index]}, nil
}

// Name returns the sheet name.
func (w *Worksheet) Name() string {
	return w.name
}

// Cell reads the cell at (row, column).
func (w *Worksheet) Cell(row, column int) (Cell, error) {
	name, err := excelize.CoordinatesToCellName(column, row)
	if err != nil {
		return Cell{}, err
	}
	text, err := w.file.GetCellValue(w.name, name)
	if err != nil {
		return Cell{}, err
	}
	raw, err := w.file.GetCellValue(w.name, name, excelize.Options{RawCellValue: true})
	if err != nil {
		return Cell{}, err
	}
	typ, err := w.file.GetCellType(w.name, name)
	if err != nil {
		return Cell{}, err
	}
	return Cell{
		Row:    row,
		Column: column,
		Value:  typedValue(typ, raw),
		Text:   text,
	}, nil
}

// typedValue turns the stored cell string into a Go value based on the cell type.
func typedValue(typ excelize.CellType, raw string) any {
	if raw == "" {
		return nil
	}
	switch typ {
	case excelize.CellTypeBool:
		if b, err := parseBool(raw); err == nil {
			return b
		}
	case excelize.CellTypeDate:
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			return t
		}
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString,
		excelize.CellTypeFormula, excelize.CellTypeError:
		return raw
	default:
		if f, err := strconv.ParseFloat(raw, 64); err == nil {
			return f
		}
	}
	return raw
}
