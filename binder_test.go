package excelextract

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type address struct {
	City string
}

type person struct {
	Name    string
	Age     int
	Home    address
	Nick    *string
	private int
}

func TestPropertyFieldName(t *testing.T) {
	assert.Equal(t, "Name", Property(func(p *person) *string { return &p.Name }).Field())
	assert.Equal(t, "Age", Property(func(p *person) *int { return &p.Age }).Field())
	assert.Equal(t, "Home.City", Property(func(p *person) *string { return &p.Home.City }).Field())

	b := Property[person, string](nil)
	assert.ErrorIs(t, b.check(), ErrNilField)

	b = Property(func(*person) *string { return nil })
	assert.ErrorIs(t, b.check(), ErrNilField)
}

func TestPropertyBind(t *testing.T) {
	var p person
	b := Property(func(p *person) *int { return &p.Age })

	applied, err := b.bind(&p, Cell{Row: 2, Column: 2, Value: 32.0, Text: "32"})
	require.NoError(t, err)
	assert.True(t, applied)
	assert.Equal(t, 32, p.Age)
}

func TestPropertyBindConversionError(t *testing.T) {
	var p person
	b := Property(func(p *person) *int { return &p.Age })

	_, err := b.bind(&p, Cell{Row: 4, Column: 2, Value: "thirty", Text: "thirty"})
	var cerr *ConversionError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, CellAddress{Row: 4, Column: 2}, cerr.Cell)
	assert.Equal(t, "Age", cerr.Field)
	assert.Equal(t, "thirty", cerr.Value)
	assert.Contains(t, err.Error(), "B4")
}

func TestPropertyBindCustomConvert(t *testing.T) {
	boom := errors.New("boom")
	var p person
	b := Property(func(p *person) *int { return &p.Age }, Hooks[int]{
		Convert: func(any) (int, error) { return 0, boom },
	})

	_, err := b.bind(&p, Cell{Row: 1, Column: 1, Value: 1.0, Text: "1"})
	assert.Same(t, boom, err)
}

func TestPropertyBindHooks(t *testing.T) {
	var (
		before, after *Context
		seenRaw       any
		seenValue     string
	)
	b := Property(func(p *person) *string { return &p.Name }, Hooks[string]{
		BeforeConvert: func(ctx *Context, raw any) { before, seenRaw = ctx, raw },
		AfterConvert:  func(ctx *Context, v string) { after, seenValue = ctx, v },
	})

	var p person
	applied, err := b.bind(&p, Cell{Row: 7, Column: 4, Value: "Ada", Text: "Ada"})
	require.NoError(t, err)
	assert.True(t, applied)
	assert.Equal(t, "Ada", p.Name)

	require.NotNil(t, before)
	assert.Same(t, before, after)
	assert.Equal(t, "D7", before.CellAddress().String())
	assert.Equal(t, "Ada", seenRaw)
	assert.Equal(t, "Ada", seenValue)
	assert.False(t, before.Aborted())
}

func TestPropertyBindAbort(t *testing.T) {
	converted := false
	before := Property(func(p *person) *string { return &p.Name }, Hooks[string]{
		BeforeConvert: func(ctx *Context, _ any) { ctx.Abort() },
		Convert: func(any) (string, error) {
			converted = true
			return "x", nil
		},
	})
	p := person{Name: "keep"}
	applied, err := before.bind(&p, Cell{Row: 1, Column: 1, Value: "Ada", Text: "Ada"})
	require.NoError(t, err)
	assert.False(t, applied)
	assert.False(t, converted)
	assert.Equal(t, "keep", p.Name)

	after := Property(func(p *person) *int { return &p.Age }, Hooks[int]{
		AfterConvert: func(ctx *Context, v int) {
			if v > 100 {
				ctx.Abort()
			}
		},
	})
	applied, err = after.bind(&p, Cell{Row: 1, Column: 2, Value: 250.0, Text: "250"})
	require.NoError(t, err)
	assert.False(t, applied)
	assert.Zero(t, p.Age)
}

func TestSetter(t *testing.T) {
	rec := map[string]any{}
	b := Named("total", Setter(func(m *map[string]any, v float64) { (*m)["total"] = v }))
	assert.Equal(t, "total", b.Field())
	require.NoError(t, b.check())

	_, err := b.bind(&rec, Cell{Value: 12.5, Text: "12.5"})
	require.NoError(t, err)
	assert.Equal(t, 12.5, rec["total"])

	assert.ErrorIs(t, Setter[person, int](nil).check(), ErrNilField)
	assert.ErrorIs(t, Named[person]("x", nil).check(), ErrNilField)
}

func TestFieldByName(t *testing.T) {
	b := FieldByName[person]("Nick")
	require.NoError(t, b.check())
	assert.Equal(t, "Nick", b.Field())

	var p person
	_, err := b.bind(&p, Cell{Value: "bob", Text: "bob"})
	require.NoError(t, err)
	require.NotNil(t, p.Nick)
	assert.Equal(t, "bob", *p.Nick)

	_, err = b.bind(&p, Cell{})
	require.NoError(t, err)
	assert.Nil(t, p.Nick)

	assert.ErrorIs(t, FieldByName[person]("private").check(), ErrUnknownField)
	assert.ErrorIs(t, FieldByName[person]("Missing").check(), ErrUnknownField)
	assert.ErrorIs(t, FieldByName[int]("X").check(), ErrUnknownField)
}

func TestFieldByNameHooks(t *testing.T) {
	b := FieldByName[person]("Age", Hooks[any]{
		AfterConvert: func(ctx *Context, v any) {
			if v.(int) < 0 {
				ctx.Abort()
			}
		},
	})
	p := person{Age: 3}
	applied, err := b.bind(&p, Cell{Value: -1.0, Text: "-1"})
	require.NoError(t, err)
	assert.False(t, applied)
	assert.Equal(t, 3, p.Age)
}
