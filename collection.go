package excelextract

import (
	"fmt"
	"reflect"
)

/* =========================================================
 *  Collection targets
 * ========================================================= */

// Adder is a container that cannot be created by the extractor. Fields of
// this kind must be initialized by the caller, see WithInitializer.
type Adder[E any] interface {
	Add(item E)
}

// Collection appends extracted items to a collection field of T.
type Collection[T, E any] interface {
	// Field returns the bound field name, or "" when it cannot be resolved.
	Field() string

	check() error
	add(rec *T, item E) error
}

type sliceCollection[T, E any] struct {
	field string
	get   func(*T) *[]E
	err   error
}

// Slice targets a slice field. A nil slice is created on first append and a
// slice the record already holds is appended to.
func Slice[T, E any](field func(*T) *[]E) Collection[T, E] {
	if field == nil {
		return &sliceCollection[T, E]{err: ErrNilField}
	}
	name, ok := probeField(field)
	if !ok {
		return &sliceCollection[T, E]{err: ErrNilField}
	}
	return &sliceCollection[T, E]{field: name, get: field}
}

func (c *sliceCollection[T, E]) Field() string { return c.field }
func (c *sliceCollection[T, E]) check() error  { return c.err }

func (c *sliceCollection[T, E]) add(rec *T, item E) error {
	s := c.get(rec)
	*s = append(*s, item)
	return nil
}

type setCollection[T any, E comparable] struct {
	field string
	get   func(*T) *map[E]struct{}
	err   error
}

// Set targets a set field. A nil map is created before the first insert.
func Set[T any, E comparable](field func(*T) *map[E]struct{}) Collection[T, E] {
	if field == nil {
		return &setCollection[T, E]{err: ErrNilField}
	}
	name, ok := probeField(field)
	if !ok {
		return &setCollection[T, E]{err: ErrNilField}
	}
	return &setCollection[T, E]{field: name, get: field}
}

func (c *setCollection[T, E]) Field() string { return c.field }
func (c *setCollection[T, E]) check() error  { return c.err }

func (c *setCollection[T, E]) add(rec *T, item E) error {
	m := c.get(rec)
	if *m == nil {
		*m = make(map[E]struct{})
	}
	(*m)[item] = struct{}{}
	return nil
}

type adderCollection[T, E any] struct {
	get func(*T) Adder[E]
	err error
}

// Appender targets a caller-initialized container. Extraction fails with
// ErrNilCollection when the getter returns nil.
func Appender[T, E any](get func(*T) Adder[E]) Collection[T, E] {
	if get == nil {
		return &adderCollection[T, E]{err: ErrNilField}
	}
	return &adderCollection[T, E]{get: get}
}

func (c *adderCollection[T, E]) Field() string { return "" }
func (c *adderCollection[T, E]) check() error  { return c.err }

func (c *adderCollection[T, E]) add(rec *T, item E) error {
	a := c.get(rec)
	if a == nil {
		return fmt.Errorf("%w: %s returned a nil container; initialize it with WithInitializer",
			ErrNilCollection, reflect.TypeOf((*T)(nil)).Elem())
	}
	a.Add(item)
	return nil
}

type reflectCollection[T, E any] struct {
	fm  *fieldMeta
	err error
}

// CollectionByName targets an exported field by name. Slice and map[E]struct{}
// fields are created when nil; an interface field with an Add(E) method must
// be initialized by the caller. Any other field type is rejected.
func CollectionByName[T, E any](name string) Collection[T, E] {
	meta, err := getTypeMeta(reflect.TypeOf((*T)(nil)).Elem())
	if err != nil {
		return &reflectCollection[T, E]{err: err}
	}
	fm := meta.FindFieldByName(name)
	if fm == nil {
		return &reflectCollection[T, E]{err: &ConfigError{Op: "CollectionByName", Column: name, Err: ErrUnknownField}}
	}

	elem := reflect.TypeOf((*E)(nil)).Elem()
	adder := reflect.TypeOf((*Adder[E])(nil)).Elem()
	ft := fm.Type
	switch {
	case ft.Kind() == reflect.Slice && elem.AssignableTo(ft.Elem()):
	case ft.Kind() == reflect.Map && elem.AssignableTo(ft.Key()) && ft.Elem() == reflect.TypeOf(struct{}{}):
	case ft.Kind() == reflect.Interface && ft.Implements(adder):
	case ft.Kind() == reflect.Ptr && ft.Implements(adder):
	default:
		return &reflectCollection[T, E]{err: &ConfigError{
			Op:     "CollectionByName",
			Column: name,
			Err:    fmt.Errorf("%w: field %s is %s", ErrUnsupportedCollection, fm.FieldName, ft),
		}}
	}
	return &reflectCollection[T, E]{fm: fm}
}

func (c *reflectCollection[T, E]) Field() string {
	if c.fm == nil {
		return ""
	}
	return c.fm.FieldName
}

func (c *reflectCollection[T, E]) check() error { return c.err }

func (c *reflectCollection[T, E]) add(rec *T, item E) error {
	field := reflect.ValueOf(rec).Elem().FieldByIndex(c.fm.Index)
	v := reflect.ValueOf(&item).Elem()

	switch field.Kind() {
	case reflect.Slice:
		field.Set(reflect.Append(field, v))
	case reflect.Map:
		if field.IsNil() {
			field.Set(reflect.MakeMap(field.Type()))
		}
		field.SetMapIndex(v, reflect.ValueOf(struct{}{}))
	default:
		if field.IsNil() {
			return fmt.Errorf("%w: field %s is nil; initialize it with WithInitializer",
				ErrNilCollection, c.fm.FieldName)
		}
		field.Interface().(Adder[E]).Add(item)
	}
	return nil
}

/* =========================================================
 *  Collection rules
 * ========================================================= */

// CollectionRule fills one collection field from several cells of a row.
// Rules are built with Span, Paired and Unpivot.
type CollectionRule[T any] interface {
	Field() string

	check() error
	apply(rec *T, row int, sheet Sheet) error
}

type spanRule[T, E any] struct {
	target   Collection[T, E]
	from, to int
	err      error
}

// Span reads the inclusive column range [startColumn, endColumn] of each row
// and appends every non-blank cell, converted to E. Blank cells are skipped.
func Span[T, E any](target Collection[T, E], startColumn, endColumn string) CollectionRule[T] {
	r := &spanRule[T, E]{target: target}
	if target == nil {
		r.err = ErrNilField
		return r
	}
	r.from, r.to, r.err = columnSpan(startColumn, endColumn)
	return r
}

func (r *spanRule[T, E]) Field() string {
	if r.target == nil {
		return ""
	}
	return r.target.Field()
}

func (r *spanRule[T, E]) check() error {
	if r.err != nil {
		return r.err
	}
	return r.target.check()
}

func (r *spanRule[T, E]) apply(rec *T, row int, sheet Sheet) error {
	cells, err := rowCells(sheet, row, r.from, r.to)
	if err != nil {
		return err
	}
	for _, cell := range cells {
		if cell.IsBlank() {
			continue
		}
		item, err := convertValue[E](cell.Value, "")
		if err != nil {
			return &ConversionError{
				Cell:  cell.Address(),
				Field: r.target.Field(),
				Value: cell.Value,
				Type:  reflect.TypeOf((*E)(nil)).Elem(),
				Err:   err,
			}
		}
		if err := r.target.add(rec, item); err != nil {
			return err
		}
	}
	return nil
}

type pairedRule[T, E any] struct {
	target    Collection[T, E]
	header    Binding[E]
	value     Binding[E]
	headerRow int
	from, to  int
	err       error
}

// Paired reads the inclusive column range [startColumn, endColumn] and
// appends one item per column: header is bound from the cell in headerRow,
// value from the cell in the current row. Blank cells still produce items.
func Paired[T, E any](target Collection[T, E], header Binding[E], headerRow int, value Binding[E], startColumn, endColumn string) CollectionRule[T] {
	r := &pairedRule[T, E]{target: target, header: header, value: value, headerRow: headerRow}
	switch {
	case target == nil || header == nil || value == nil:
		r.err = ErrNilField
	case headerRow < 1:
		r.err = fmt.Errorf("%w: header row %d", ErrInvalidRow, headerRow)
	default:
		r.from, r.to, r.err = columnSpan(startColumn, endColumn)
	}
	return r
}

func (r *pairedRule[T, E]) Field() string {
	if r.target == nil {
		return ""
	}
	return r.target.Field()
}

func (r *pairedRule[T, E]) check() error {
	if r.err != nil {
		return r.err
	}
	for _, c := range []interface{ check() error }{r.target, r.header, r.value} {
		if err := c.check(); err != nil {
			return err
		}
	}
	return nil
}

func (r *pairedRule[T, E]) apply(rec *T, row int, sheet Sheet) error {
	cells, err := rowCells(sheet, row, r.from, r.to)
	if err != nil {
		return err
	}
	for _, cell := range cells {
		var item E

		head, err := sheet.Cell(r.headerRow, cell.Column)
		if err != nil {
			return err
		}
		// An abort inside an item only skips that item field.
		if _, err := r.header.bind(&item, head); err != nil {
			return err
		}
		if _, err := r.value.bind(&item, cell); err != nil {
			return err
		}

		if err := r.target.add(rec, item); err != nil {
			return err
		}
	}
	return nil
}

func columnSpan(startColumn, endColumn string) (int, int, error) {
	from, err := ColumnNumber(startColumn)
	if err != nil {
		return 0, 0, err
	}
	to, err := ColumnNumber(endColumn)
	if err != nil {
		return 0, 0, err
	}
	if to < from {
		return 0, 0, fmt.Errorf("%w: %s comes after %s", ErrInvalidColumn, startColumn, endColumn)
	}
	return from, to, nil
}
