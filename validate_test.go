package excelextract

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAbortOnInvalid(t *testing.T) {
	cells := map[string]any{}
	setRow(cells, 2, "A", "Toyota", 2018)
	setRow(cells, 3, "A", "Honda", 1850)
	setRow(cells, 4, "A", "Mazda", 2021)

	cfg := Extract[car](newSheet(t, cells)).
		WithProperty(Property(func(c *car) *string { return &c.Make }), "A").
		WithProperty(Property(func(c *car) *int { return &c.Year }, Hooks[int]{
			AfterConvert: AbortOnInvalid[int](validator.New(), "gte=1900"),
		}), "B")

	got, err := cfg.GetData(2, 4).Collect()
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, car{Make: "Honda"}, *got[1])
}

func TestAbortWhen(t *testing.T) {
	hook := AbortWhen(func(raw any) bool { return raw == nil })

	ctx := newContext(CellAddress{Row: 1, Column: 1})
	hook(ctx, "x")
	assert.False(t, ctx.Aborted())

	hook(ctx, nil)
	assert.True(t, ctx.Aborted())
}
