package excelextract

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"
)

/* =========================================================
 *  Type Metadata & Tags
 * ========================================================= */

// fieldMeta stores mapping info for a single struct field.
type fieldMeta struct {
	Index        []int
	FieldName    string
	Type         reflect.Type
	ColumnNames  []string // From `excel:"Code,Name,..."`
	ColIndexTag  int      // From `col:"2"` (1-based). 0 = none
	ColLetterTag string   // From `excelcol:"C"` (normalized uppercase)
	TimeFormat   string   // From tag `fmt:"2006-01-02"`
}

func (fm *fieldMeta) tagged() bool {
	return len(fm.ColumnNames) > 0 || fm.ColIndexTag > 0 || fm.ColLetterTag != ""
}

// typeMeta stores metadata for a struct type.
type typeMeta struct {
	Fields      []*fieldMeta          // tagged fields, in declaration order
	FieldByName map[string]*fieldMeta // every exported field
}

var metaCache sync.Map // map[reflect.Type]*typeMeta

// splitAndTrim splits a comma-separated string and trims each part.
func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// getTypeMeta builds and caches metadata for a struct type.
func getTypeMeta(t reflect.Type) (*typeMeta, error) {
	if v, ok := metaCache.Load(t); ok {
		return v.(*typeMeta), nil
	}
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w: type %s is not a struct", ErrUnknownField, t)
	}

	m := &typeMeta{FieldByName: make(map[string]*fieldMeta)}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		// Skip unexported fields.
		if f.PkgPath != "" {
			continue
		}

		fm := &fieldMeta{
			Index:       f.Index,
			FieldName:   f.Name,
			Type:        f.Type,
			ColumnNames: splitAndTrim(f.Tag.Get("excel")),
			TimeFormat:  f.Tag.Get("fmt"),
		}
		if colTag := f.Tag.Get("col"); colTag != "" {
			if n, err := strconv.Atoi(strings.TrimSpace(colTag)); err == nil && n > 0 {
				fm.ColIndexTag = n
			}
		}
		if excelColTag := f.Tag.Get("excelcol"); excelColTag != "" {
			fm.ColLetterTag = strings.ToUpper(strings.TrimSpace(excelColTag))
		}

		m.FieldByName[f.Name] = fm
		if fm.tagged() {
			m.Fields = append(m.Fields, fm)
		}
	}

	metaCache.Store(t, m)
	return m, nil
}

// FindFieldByName returns the fieldMeta for a given struct field name.
func (m *typeMeta) FindFieldByName(name string) *fieldMeta {
	if m.FieldByName == nil {
		return nil
	}
	return m.FieldByName[name]
}

// maxHeaderGap is the number of consecutive blank header cells that ends a header scan.
const maxHeaderGap = 16

// readHeader maps lowercased header text to its column, scanning the header
// row from column A until a long run of blank cells.
func readHeader(s Sheet, headerRow int) (map[string]int, error) {
	index := make(map[string]int)
	gap := 0
	for col := 1; gap < maxHeaderGap; col++ {
		c, err := s.Cell(headerRow, col)
		if err != nil {
			return nil, err
		}
		if c.IsBlank() {
			gap++
			continue
		}
		gap = 0
		key := strings.ToLower(strings.TrimSpace(c.Text))
		if _, ok := index[key]; !ok {
			index[key] = col
		}
	}
	return index, nil
}

// WithTaggedProperties registers a property for every field of T carrying a
// mapping tag, in declaration order:
//
//	`col:"3"`      → column index (1-based)
//	`excelcol:"C"` → column letter
//	`excel:"Code"` → header text in headerRow (case-insensitive, comma-separated alternatives)
//
// A `fmt:"2006-01-02"` tag sets the time layout. Header tags are ignored
// when headerRow is 0; fields whose header is not found are skipped.
func (c *Configuration[T]) WithTaggedProperties(headerRow int) *Configuration[T] {
	if c.err != nil {
		return c
	}
	meta, err := getTypeMeta(reflect.TypeOf((*T)(nil)).Elem())
	if err != nil {
		c.err = &ConfigError{Op: "WithTaggedProperties", Err: err}
		return c
	}

	var header map[string]int
	if headerRow > 0 {
		if header, err = readHeader(c.sheet, headerRow); err != nil {
			c.err = &ConfigError{Op: "WithTaggedProperties", Err: err}
			return c
		}
	}

	for _, fm := range meta.Fields {
		column := resolveColumn(fm, header)
		if column == "" {
			c.opts.Logger.Debug("tagged field has no column", zap.String("field", fm.FieldName))
			continue
		}
		c.WithProperty(&fieldBinding[T]{fm: fm}, column)
	}
	return c
}

// resolveColumn combines index-based (`col`), letter-based (`excelcol`)
// and header-based (`excel`) mapping, in that order.
func resolveColumn(fm *fieldMeta, header map[string]int) string {
	// 1. Explicit index: col:"2".
	if fm.ColIndexTag > 0 {
		letters, _ := ColumnLetters(fm.ColIndexTag)
		return letters
	}

	// 2. Letters: excelcol:"C".
	if fm.ColLetterTag != "" {
		return fm.ColLetterTag
	}

	// 3. Header-based: excel:"Code,Name".
	for _, name := range fm.ColumnNames {
		if col, ok := header[strings.ToLower(name)]; ok {
			letters, _ := ColumnLetters(col)
			return letters
		}
	}
	return ""
}
