package excelextract

import (
	"fmt"
	"reflect"
	"strings"
)

// columnRule reads one cell per row into one field.
type columnRule[T any] struct {
	column  int
	letters string
	binding Binding[T]
}

func (r *columnRule[T]) field() string {
	if name := r.binding.Field(); name != "" {
		return name
	}
	return r.letters
}

// Configuration is the set of rules used to extract records of type T from a sheet.
// It is built incrementally; the first configuration error is kept and
// reported by Err and by every run started with GetData or GetDataWhile.
//
// A Configuration may be reused for any number of sequential runs.
type Configuration[T any] struct {
	sheet       Sheet
	opts        Options
	init        func(*T)
	columns     []*columnRule[T]
	collections []CollectionRule[T]
	err         error
}

// Extract starts a configuration reading records of type T from sheet.
func Extract[T any](sheet Sheet, opts ...Option) *Configuration[T] {
	var o Options
	for _, opt := range opts {
		opt(&o)
	}
	applyDefaults(&o)

	c := &Configuration[T]{sheet: sheet, opts: o}
	switch {
	case sheet == nil:
		c.err = &ConfigError{Op: "Extract", Err: ErrNilSheet}
	case o.GoValidator != nil && !isStruct[T]():
		c.err = &ConfigError{Op: "UseValidator", Err: fmt.Errorf("%w: %s", ErrNotStruct, reflect.TypeOf((*T)(nil)).Elem())}
	}
	return c
}

// isStruct reports whether T is a struct or a pointer to one.
func isStruct[T any]() bool {
	t := reflect.TypeOf((*T)(nil)).Elem()
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Kind() == reflect.Struct
}

// Err returns the first configuration error, if any.
func (c *Configuration[T]) Err() error {
	return c.err
}

// WithProperty maps the field bound by b to a column given by its letters.
// Properties are read in the order they are registered.
func (c *Configuration[T]) WithProperty(b Binding[T], column string) *Configuration[T] {
	if c.err != nil {
		return c
	}
	if b == nil {
		c.err = &ConfigError{Op: "WithProperty", Column: column, Err: ErrNilField}
		return c
	}
	if err := b.check(); err != nil {
		c.err = &ConfigError{Op: "WithProperty", Column: column, Err: err}
		return c
	}
	if strings.TrimSpace(column) == "" {
		c.err = &ConfigError{Op: "WithProperty", Err: ErrInvalidColumn}
		return c
	}
	n, err := ColumnNumber(column)
	if err != nil {
		c.err = &ConfigError{Op: "WithProperty", Column: column, Err: err}
		return c
	}
	c.columns = append(c.columns, &columnRule[T]{
		column:  n,
		letters: strings.ToUpper(column),
		binding: b,
	})
	return c
}

// WithCollectionProperty adds a collection rule built with Span, Paired or Unpivot.
// Collection rules run after every property of the row has been read.
func (c *Configuration[T]) WithCollectionProperty(r CollectionRule[T]) *Configuration[T] {
	if c.err != nil {
		return c
	}
	if r == nil {
		c.err = &ConfigError{Op: "WithCollectionProperty", Err: ErrNilField}
		return c
	}
	if err := r.check(); err != nil {
		c.err = &ConfigError{Op: "WithCollectionProperty", Column: r.Field(), Err: err}
		return c
	}
	c.collections = append(c.collections, r)
	return c
}

// WithInitializer sets a function run on every new record before any rule.
// Use it to pre-populate fields, e.g. containers bound with Appender.
func (c *Configuration[T]) WithInitializer(init func(*T)) *Configuration[T] {
	if c.err != nil {
		return c
	}
	c.init = init
	return c
}

