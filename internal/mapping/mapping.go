// Package mapping describes an extraction in YAML so that sheets can be
// read without writing Go types, e.g.
//
//	sheet: Branches
//	from: 2
//	while: A
//	fields:
//	  - {name: code, column: A, type: string}
//	  - {name: opened, column: C, type: time, layout: "02.01.2006"}
//	groups:
//	  - name: revenues
//	    header_row: 1
//	    start: D
//	    labels:
//	      - {label: Month, name: month, type: string}
//	      - {label: Revenue, name: amount, type: float}
package mapping

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dreamph/excelextract"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// ErrInvalidMapping is returned for mapping documents that cannot be used.
var ErrInvalidMapping = errors.New("mapping: invalid mapping")

// Mapping is the root of a mapping document.
type Mapping struct {
	Sheet  string   `yaml:"sheet"`
	From   int      `yaml:"from"`
	To     int      `yaml:"to,omitempty"`
	While  string   `yaml:"while,omitempty"`
	Fields []Field  `yaml:"fields"`
	Spans  []Span   `yaml:"spans,omitempty"`
	Paired []Paired `yaml:"paired,omitempty"`
	Groups []Group  `yaml:"groups,omitempty"`
}

// Value describes how one cell becomes one record entry.
type Value struct {
	Name   string `yaml:"name"`
	Type   string `yaml:"type,omitempty"` // any, string, int, float, bool, time
	Layout string `yaml:"layout,omitempty"`

	// StopWhen ends the extraction at the first cell whose text equals it.
	StopWhen string `yaml:"stop_when,omitempty"`
	// StopWhenBlank ends the extraction at the first blank cell.
	StopWhenBlank bool `yaml:"stop_when_blank,omitempty"`
	// StopUnless ends the extraction at the first converted value failing
	// this validator tag, e.g. "gte=0".
	StopUnless string `yaml:"stop_unless,omitempty"`
}

// Field maps a column to a record entry.
type Field struct {
	Value  `yaml:",inline"`
	Column string `yaml:"column"`
}

// Span collects the non-blank cells of a column range into a list.
type Span struct {
	Name string `yaml:"name"`
	Type string `yaml:"type,omitempty"`
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

// Paired builds one item per column of a range from a header cell and a
// data cell.
type Paired struct {
	Name      string `yaml:"name"`
	HeaderRow int    `yaml:"header_row"`
	From      string `yaml:"from"`
	To        string `yaml:"to"`
	Header    Value  `yaml:"header"`
	Value     Value  `yaml:"value"`
}

// Group unpivots repeated labelled column groups into a list of items.
type Group struct {
	Name      string  `yaml:"name"`
	HeaderRow int     `yaml:"header_row"`
	Start     string  `yaml:"start"`
	Labels    []Label `yaml:"labels"`
}

// Label binds one header label of a group to an item entry.
type Label struct {
	Value `yaml:",inline"`
	Label string `yaml:"label"`
}

// Load decodes a mapping document. Unknown keys are rejected.
func Load(r io.Reader) (*Mapping, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var m Mapping
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMapping, err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// LoadFile decodes the mapping document at path.
func LoadFile(path string) (*Mapping, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Load(f)
}

// Validate checks what the extraction engine cannot: entry names and types.
// Column letters and rows are checked when the extraction is configured.
func (m *Mapping) Validate() error {
	if m.To == 0 && m.While == "" {
		return fmt.Errorf("%w: one of to or while is required", ErrInvalidMapping)
	}
	if m.To != 0 && m.While != "" {
		return fmt.Errorf("%w: to and while are exclusive", ErrInvalidMapping)
	}

	names := make(map[string]struct{})
	unique := func(name string) error {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("%w: entry without a name", ErrInvalidMapping)
		}
		if _, ok := names[name]; ok {
			return fmt.Errorf("%w: duplicate entry %q", ErrInvalidMapping, name)
		}
		names[name] = struct{}{}
		return nil
	}

	for _, f := range m.Fields {
		if err := unique(f.Name); err != nil {
			return err
		}
		if err := checkType(f.Name, f.Type); err != nil {
			return err
		}
	}
	for _, s := range m.Spans {
		if err := unique(s.Name); err != nil {
			return err
		}
		if err := checkType(s.Name, s.Type); err != nil {
			return err
		}
	}
	for _, p := range m.Paired {
		if err := unique(p.Name); err != nil {
			return err
		}
		if p.Header.Name == "" || p.Value.Name == "" || p.Header.Name == p.Value.Name {
			return fmt.Errorf("%w: paired %q needs distinct header and value names", ErrInvalidMapping, p.Name)
		}
		for _, v := range []Value{p.Header, p.Value} {
			if err := checkType(p.Name+"."+v.Name, v.Type); err != nil {
				return err
			}
		}
	}
	for _, g := range m.Groups {
		if err := unique(g.Name); err != nil {
			return err
		}
		if len(g.Labels) == 0 {
			return fmt.Errorf("%w: group %q has no labels", ErrInvalidMapping, g.Name)
		}
		for _, l := range g.Labels {
			if err := checkType(g.Name+"."+l.Name, l.Type); err != nil {
				return err
			}
		}
	}
	return nil
}

var knownTypes = map[string]bool{"": true, "any": true, "string": true, "int": true, "float": true, "bool": true, "time": true}

func checkType(name, typ string) error {
	if !knownTypes[typ] {
		return fmt.Errorf("%w: %s: unknown type %q", ErrInvalidMapping, name, typ)
	}
	return nil
}

/* =========================================================
 *  Records
 * ========================================================= */

// Record is one extracted row keyed by entry name. Lists are []any.
type Record map[string]any

func (r *Record) set(name string, v any) {
	if *r == nil {
		*r = Record{}
	}
	(*r)[name] = v
}

func (r *Record) append(name string, v any) {
	if *r == nil {
		*r = Record{}
	}
	items, _ := (*r)[name].([]any)
	(*r)[name] = append(items, v)
}

// list adds collection items to one entry of a record.
type list[E any] struct {
	rec  *Record
	name string
}

func (l list[E]) Add(item E) {
	l.rec.append(l.name, item)
}

func target[E any](name string) excelextract.Collection[Record, E] {
	return excelextract.Appender(func(r *Record) excelextract.Adder[E] {
		return list[E]{rec: r, name: name}
	})
}

/* =========================================================
 *  Configuration
 * ========================================================= */

// Configure builds the extraction configuration described by m.
func (m *Mapping) Configure(sheet excelextract.Sheet, opts ...excelextract.Option) *excelextract.Configuration[Record] {
	v := validator.New()
	cfg := excelextract.Extract[Record](sheet, opts...)

	for _, f := range m.Fields {
		cfg.WithProperty(binding(f.Value, v), f.Column)
	}
	for _, s := range m.Spans {
		cfg.WithCollectionProperty(span(s))
	}
	for _, p := range m.Paired {
		cfg.WithCollectionProperty(excelextract.Paired(target[Record](p.Name),
			binding(p.Header, v), p.HeaderRow, binding(p.Value, v), p.From, p.To))
	}
	for _, g := range m.Groups {
		labels := g.Labels
		cfg.WithCollectionProperty(excelextract.Unpivot(target[Record](g.Name), g.HeaderRow, g.Start,
			func(grp *excelextract.Group[Record]) {
				for _, l := range labels {
					grp.WithProperty(binding(l.Value, v), l.Label)
				}
			}))
	}

	// Every list is present in the output, even when empty.
	lists := m.listNames()
	if len(lists) > 0 {
		cfg.WithInitializer(func(r *Record) {
			*r = make(Record, len(m.Fields)+len(lists))
			for _, name := range lists {
				(*r)[name] = []any{}
			}
		})
	}
	return cfg
}

// Extract starts the extraction described by m.
func (m *Mapping) Extract(sheet excelextract.Sheet, opts ...excelextract.Option) (*excelextract.Rows[Record], error) {
	cfg := m.Configure(sheet, opts...)
	if err := cfg.Err(); err != nil {
		return nil, err
	}
	if m.While == "" {
		return cfg.GetData(m.From, m.To), nil
	}
	return cfg.GetDataUntilBlank(m.From, m.While), nil
}

func (m *Mapping) listNames() []string {
	var names []string
	for _, s := range m.Spans {
		names = append(names, s.Name)
	}
	for _, p := range m.Paired {
		names = append(names, p.Name)
	}
	for _, g := range m.Groups {
		names = append(names, g.Name)
	}
	return names
}

func binding(val Value, v *validator.Validate) excelextract.Binding[Record] {
	switch val.Type {
	case "string":
		return scalar[string](val, v)
	case "int":
		return scalar[int64](val, v)
	case "float":
		return scalar[float64](val, v)
	case "bool":
		return scalar[bool](val, v)
	case "time":
		return scalar[time.Time](val, v)
	default:
		return scalar[any](val, v)
	}
}

func scalar[V any](val Value, v *validator.Validate) excelextract.Binding[Record] {
	hooks := excelextract.Hooks[V]{Layout: val.Layout}
	if val.StopWhen != "" || val.StopWhenBlank {
		hooks.BeforeConvert = excelextract.AbortWhen(stopMatcher(val))
	}
	if val.StopUnless != "" {
		hooks.AfterConvert = excelextract.AbortOnInvalid[V](v, val.StopUnless)
	}
	name := val.Name
	return excelextract.Named(name, excelextract.Setter(func(r *Record, x V) { r.set(name, x) }, hooks))
}

func stopMatcher(val Value) func(raw any) bool {
	return func(raw any) bool {
		text := ""
		if raw != nil {
			text = strings.TrimSpace(fmt.Sprint(raw))
		}
		if val.StopWhenBlank && text == "" {
			return true
		}
		return val.StopWhen != "" && text == val.StopWhen
	}
}

func span(s Span) excelextract.CollectionRule[Record] {
	switch s.Type {
	case "string":
		return excelextract.Span(target[string](s.Name), s.From, s.To)
	case "int":
		return excelextract.Span(target[int64](s.Name), s.From, s.To)
	case "float":
		return excelextract.Span(target[float64](s.Name), s.From, s.To)
	case "bool":
		return excelextract.Span(target[bool](s.Name), s.From, s.To)
	case "time":
		return excelextract.Span(target[time.Time](s.Name), s.From, s.To)
	default:
		return excelextract.Span(target[any](s.Name), s.From, s.To)
	}
}
