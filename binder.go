package excelextract

import (
	"reflect"
)

// Hooks configures how one cell is turned into one field value.
// All members are optional.
type Hooks[V any] struct {
	// BeforeConvert receives the raw cell value. Calling ctx.Abort leaves the
	// field untouched and ends the extraction after the current record.
	BeforeConvert func(ctx *Context, raw any)

	// AfterConvert receives the converted value. Calling ctx.Abort discards
	// the value and ends the extraction after the current record.
	AfterConvert func(ctx *Context, value V)

	// Convert replaces the default type-driven conversion. Its error is
	// returned to the caller as is.
	Convert func(raw any) (V, error)

	// Layout is the time layout tried first when converting to time.Time.
	Layout string
}

func mergeHooks[V any](hooks []Hooks[V]) Hooks[V] {
	var h Hooks[V]
	for _, o := range hooks {
		if o.BeforeConvert != nil {
			h.BeforeConvert = o.BeforeConvert
		}
		if o.AfterConvert != nil {
			h.AfterConvert = o.AfterConvert
		}
		if o.Convert != nil {
			h.Convert = o.Convert
		}
		if o.Layout != "" {
			h.Layout = o.Layout
		}
	}
	return h
}

// Binding writes one cell into one field of T.
// Bindings are built with Property, Setter or FieldByName.
type Binding[T any] interface {
	// Field returns the bound field name, or "" when it cannot be resolved.
	Field() string

	check() error
	bind(rec *T, cell Cell) (applied bool, err error)
}

/* =========================================================
 *  Typed bindings
 * ========================================================= */

type propertyBinding[T, V any] struct {
	field string
	set   func(*T, V)
	hooks Hooks[V]
	err   error
}

// Property binds the field returned by the selector, e.g.
//
//	excelextract.Property(func(c *Car) *string { return &c.Name })
func Property[T, V any](field func(*T) *V, hooks ...Hooks[V]) Binding[T] {
	if field == nil {
		return &propertyBinding[T, V]{err: ErrNilField}
	}
	name, ok := probeField(field)
	if !ok {
		return &propertyBinding[T, V]{err: ErrNilField}
	}
	return &propertyBinding[T, V]{
		field: name,
		set:   func(rec *T, v V) { *field(rec) = v },
		hooks: mergeHooks(hooks),
	}
}

// Setter binds a write-only accessor. It is the form to use for targets
// that are not addressable, such as map entries.
func Setter[T, V any](set func(*T, V), hooks ...Hooks[V]) Binding[T] {
	if set == nil {
		return &propertyBinding[T, V]{err: ErrNilField}
	}
	return &propertyBinding[T, V]{set: set, hooks: mergeHooks(hooks)}
}

// Named sets the name reported in errors for bindings whose field cannot be
// discovered, such as Setter bindings.
func Named[T any](name string, b Binding[T]) Binding[T] {
	return &namedBinding[T]{Binding: b, name: name}
}

type namedBinding[T any] struct {
	Binding[T]
	name string
}

func (b *namedBinding[T]) Field() string { return b.name }

func (b *namedBinding[T]) check() error {
	if b.Binding == nil {
		return ErrNilField
	}
	return b.Binding.check()
}

func (b *propertyBinding[T, V]) Field() string { return b.field }

func (b *propertyBinding[T, V]) check() error { return b.err }

func (b *propertyBinding[T, V]) bind(rec *T, cell Cell) (bool, error) {
	// The context only exists when somebody can look at it.
	var ctx *Context
	if b.hooks.BeforeConvert != nil || b.hooks.AfterConvert != nil {
		ctx = newContext(cell.Address())
	}

	if b.hooks.BeforeConvert != nil {
		b.hooks.BeforeConvert(ctx, cell.Value)
		if ctx.aborted {
			return false, nil
		}
	}

	value, err := b.convert(cell)
	if err != nil {
		return false, err
	}

	if b.hooks.AfterConvert != nil {
		b.hooks.AfterConvert(ctx, value)
		if ctx.aborted {
			return false, nil
		}
	}

	b.set(rec, value)
	return true, nil
}

func (b *propertyBinding[T, V]) convert(cell Cell) (V, error) {
	if b.hooks.Convert != nil {
		return b.hooks.Convert(cell.Value)
	}
	v, err := convertValue[V](cell.Value, b.hooks.Layout)
	if err != nil {
		var zero V
		return zero, &ConversionError{
			Cell:  cell.Address(),
			Field: b.field,
			Value: cell.Value,
			Type:  reflect.TypeOf((*V)(nil)).Elem(),
			Err:   err,
		}
	}
	return v, nil
}

// probeField calls the selector on a zero T and resolves the name of the
// field it points to. ok is false when the selector returns nil.
func probeField[T, V any](field func(*T) *V) (name string, ok bool) {
	defer func() {
		// Selectors walking through nil pointers cannot be probed.
		if recover() != nil {
			name, ok = "", true
		}
	}()
	var probe T
	p := field(&probe)
	if p == nil {
		return "", false
	}
	return fieldPath(reflect.ValueOf(&probe).Elem(), reflect.ValueOf(p).Pointer(), reflect.TypeOf(p).Elem()), true
}

func fieldPath(v reflect.Value, addr uintptr, typ reflect.Type) string {
	if v.Kind() != reflect.Struct {
		return ""
	}
	for i := 0; i < v.NumField(); i++ {
		f := v.Field(i)
		if f.Addr().Pointer() == addr && f.Type() == typ {
			return v.Type().Field(i).Name
		}
		if f.Kind() == reflect.Struct {
			if sub := fieldPath(f, addr, typ); sub != "" {
				return v.Type().Field(i).Name + "." + sub
			}
		}
	}
	return ""
}

/* =========================================================
 *  Reflection binding
 * ========================================================= */

type fieldBinding[T any] struct {
	fm    *fieldMeta
	hooks Hooks[any]
	err   error
}

// FieldByName binds an exported struct field by name. The hooks see the
// converted value as any.
func FieldByName[T any](name string, hooks ...Hooks[any]) Binding[T] {
	meta, err := getTypeMeta(reflect.TypeOf((*T)(nil)).Elem())
	if err != nil {
		return &fieldBinding[T]{err: err}
	}
	fm := meta.FindFieldByName(name)
	if fm == nil {
		return &fieldBinding[T]{err: &ConfigError{Op: "FieldByName", Column: name, Err: ErrUnknownField}}
	}
	return &fieldBinding[T]{fm: fm, hooks: mergeHooks(hooks)}
}

func (b *fieldBinding[T]) Field() string {
	if b.fm == nil {
		return ""
	}
	return b.fm.FieldName
}

func (b *fieldBinding[T]) check() error { return b.err }

func (b *fieldBinding[T]) bind(rec *T, cell Cell) (bool, error) {
	var ctx *Context
	if b.hooks.BeforeConvert != nil || b.hooks.AfterConvert != nil {
		ctx = newContext(cell.Address())
	}

	if b.hooks.BeforeConvert != nil {
		b.hooks.BeforeConvert(ctx, cell.Value)
		if ctx.aborted {
			return false, nil
		}
	}

	raw := cell.Value
	if b.hooks.Convert != nil {
		v, err := b.hooks.Convert(cell.Value)
		if err != nil {
			return false, err
		}
		raw = v
	}

	layout := b.hooks.Layout
	if layout == "" {
		layout = b.fm.TimeFormat
	}
	tmp := reflect.New(b.fm.Type).Elem()
	if err := assignValue(tmp, raw, layout); err != nil {
		return false, &ConversionError{
			Cell:  cell.Address(),
			Field: b.fm.FieldName,
			Value: raw,
			Type:  b.fm.Type,
			Err:   err,
		}
	}

	if b.hooks.AfterConvert != nil {
		b.hooks.AfterConvert(ctx, tmp.Interface())
		if ctx.aborted {
			return false, nil
		}
	}

	reflect.ValueOf(rec).Elem().FieldByIndex(b.fm.Index).Set(tmp)
	return true, nil
}
