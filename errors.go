package excelextract

import (
	"errors"
	"fmt"
	"reflect"
)

// Configuration errors, reported when a rule is registered.
var (
	ErrNilSheet              = errors.New("excelextract: sheet is nil")
	ErrNilField              = errors.New("excelextract: field selector is nil")
	ErrInvalidColumn         = errors.New("excelextract: invalid column")
	ErrInvalidRow            = errors.New("excelextract: invalid row")
	ErrUnknownField          = errors.New("excelextract: unknown field")
	ErrUnsupportedCollection = errors.New("excelextract: unsupported collection type")
	ErrEmptyHeader           = errors.New("excelextract: empty header label")
	ErrDuplicateHeader       = errors.New("excelextract: duplicate header label")
	ErrNilConfigurator       = errors.New("excelextract: group configurator is nil")
	ErrNilPredicate          = errors.New("excelextract: continuation predicate is nil")
	ErrNotStruct             = errors.New("excelextract: struct validation needs a struct record type")
)

// Extraction errors.
var (
	// ErrNilCollection is returned while extracting when a collection field
	// that cannot be constructed automatically is still nil.
	ErrNilCollection = errors.New("excelextract: collection field is nil")

	// ErrSheetNotFound is returned when a worksheet lookup fails.
	ErrSheetNotFound = errors.New("excelextract: sheet not found")
)

// ConfigError describes a rule that could not be registered.
type ConfigError struct {
	Op     string // "WithProperty", "WithCollectionProperty", ...
	Column string
	Err    error
}

func (e *ConfigError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("%s(%q): %v", e.Op, e.Column, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// ConversionError is returned when the default conversion cannot turn a cell
// value into the field type.
type ConversionError struct {
	Cell  CellAddress
	Field string
	Value any
	Type  reflect.Type
	Err   error
}

func (e *ConversionError) Error() string {
	field := e.Field
	if field == "" {
		field = "?"
	}
	return fmt.Sprintf("excelextract: cell %s (field %s): cannot convert %v to %s: %v",
		e.Cell, field, e.Value, e.Type, e.Err)
}

func (e *ConversionError) Unwrap() error {
	return e.Err
}

// RowError represents a record that failed struct validation.
type RowError struct {
	Row       int    // Physical row index in the sheet (1-based)
	Column    int    // Column index (1-based), 0 when unknown
	ColLetter string // Column letter, e.g. "A", "B", "C"
	Field     string // Struct field name
	Value     any    // Converted field value
	Err       error  // Underlying error
}

func (e RowError) Error() string {
	if e.ColLetter != "" {
		return fmt.Sprintf("row %d col %s field %s: %v", e.Row, e.ColLetter, e.Field, e.Err)
	}
	return fmt.Sprintf("row %d: %v", e.Row, e.Err)
}

func (e RowError) Unwrap() error {
	return e.Err
}
