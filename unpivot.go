package excelextract

import (
	"fmt"
	"strings"
)

// Group maps header labels to fields of the collection item E.
type Group[E any] struct {
	byHeader map[string]Binding[E]
	err      error
}

// WithProperty binds the columns whose header text is exactly header.
func (g *Group[E]) WithProperty(b Binding[E], header string) *Group[E] {
	if g.err != nil {
		return g
	}
	switch {
	case b == nil:
		g.err = ErrNilField
	case strings.TrimSpace(header) == "":
		g.err = ErrEmptyHeader
	case g.byHeader[header] != nil:
		g.err = fmt.Errorf("%w: %q", ErrDuplicateHeader, header)
	default:
		g.err = b.check()
	}
	if g.err == nil {
		g.byHeader[header] = b
	}
	return g
}

type unpivotRule[T, E any] struct {
	target    Collection[T, E]
	group     *Group[E]
	headerRow int
	start     int
	err       error
}

// Unpivot turns a run of repeated column groups into collection items.
// Columns are scanned from startColumn while the header row holds a label
// registered in the group; a label seen twice starts the next item.
//
//	excelextract.Unpivot(excelextract.Slice(func(b *Branch) *[]Revenue { return &b.Revenues }),
//		1, "C", func(g *excelextract.Group[Revenue]) {
//			g.WithProperty(excelextract.Property(func(r *Revenue) *string { return &r.Month }), "Month").
//				WithProperty(excelextract.Property(func(r *Revenue) *float64 { return &r.Amount }), "Revenue")
//		})
func Unpivot[T, E any](target Collection[T, E], headerRow int, startColumn string, configure func(*Group[E])) CollectionRule[T] {
	r := &unpivotRule[T, E]{target: target, headerRow: headerRow}
	switch {
	case target == nil:
		r.err = ErrNilField
		return r
	case configure == nil:
		r.err = ErrNilConfigurator
		return r
	case headerRow < 1:
		r.err = fmt.Errorf("%w: header row %d", ErrInvalidRow, headerRow)
		return r
	}
	if r.start, r.err = ColumnNumber(startColumn); r.err != nil {
		return r
	}

	g := &Group[E]{byHeader: make(map[string]Binding[E])}
	configure(g)
	r.group = g
	r.err = g.err
	return r
}

func (r *unpivotRule[T, E]) Field() string {
	if r.target == nil {
		return ""
	}
	return r.target.Field()
}

func (r *unpivotRule[T, E]) check() error {
	if r.err != nil {
		return r.err
	}
	return r.target.check()
}

func (r *unpivotRule[T, E]) apply(rec *T, row int, sheet Sheet) error {
	var item E
	seen := make(map[string]struct{}, len(r.group.byHeader))

	for col := r.start; ; col++ {
		head, err := sheet.Cell(r.headerRow, col)
		if err != nil {
			return err
		}
		if head.IsBlank() {
			break
		}
		b := r.group.byHeader[head.Text]
		if b == nil {
			break
		}

		// A label already used by this item starts the next one.
		if _, ok := seen[head.Text]; ok {
			if err := r.target.add(rec, item); err != nil {
				return err
			}
			var next E
			item = next
			clear(seen)
		}
		seen[head.Text] = struct{}{}

		cell, err := sheet.Cell(row, col)
		if err != nil {
			return err
		}
		if _, err := b.bind(&item, cell); err != nil {
			return err
		}
	}

	if len(seen) > 0 {
		return r.target.add(rec, item)
	}
	return nil
}
