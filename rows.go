package excelextract

import (
	"errors"
	"fmt"
	"iter"
	"slices"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// Rows is one lazy extraction run. Records are read only as Next is called.
//
//	rows := cfg.GetData(2, 10)
//	for rows.Next() {
//		rec := rows.Record()
//		...
//	}
//	if err := rows.Err(); err != nil {
//		...
//	}
//
// A Rows value must not be used from several goroutines at once.
type Rows[T any] struct {
	sheet       Sheet
	opts        Options
	newRecord   func() *T
	columns     []*columnRule[T]
	collections []CollectionRule[T]
	cont        func(row int) (bool, error)

	next    int
	cur     *T
	curRow  int
	stopped bool
	err     error
	rowErrs []RowError
	log     *zap.Logger
}

// GetData reads records from fromRow to toRow, both included.
func (c *Configuration[T]) GetData(fromRow, toRow int) *Rows[T] {
	return c.run("GetData", fromRow, func(row int) (bool, error) { return row <= toRow, nil })
}

// GetDataWhile reads records starting at fromRow for as long as cont
// reports true for the row about to be read.
func (c *Configuration[T]) GetDataWhile(fromRow int, cont func(row int) bool) *Rows[T] {
	if cont == nil {
		return c.run("GetDataWhile", fromRow, nil)
	}
	return c.run("GetDataWhile", fromRow, func(row int) (bool, error) { return cont(row), nil })
}

// GetDataUntilBlank reads records starting at fromRow while the given column
// of the row about to be read is non-blank. A failed read of that cell ends
// the run with the error.
func (c *Configuration[T]) GetDataUntilBlank(fromRow int, column string) *Rows[T] {
	col, err := ColumnNumber(column)
	if err != nil {
		cerr := &ConfigError{Op: "GetDataUntilBlank", Column: column, Err: err}
		return c.run("GetDataUntilBlank", fromRow, func(int) (bool, error) { return false, cerr })
	}
	sheet := c.sheet
	return c.run("GetDataUntilBlank", fromRow, func(row int) (bool, error) {
		cell, err := sheet.Cell(row, col)
		if err != nil {
			return false, err
		}
		return !cell.IsBlank(), nil
	})
}

func (c *Configuration[T]) run(op string, fromRow int, cont func(row int) (bool, error)) *Rows[T] {
	// The initializer is captured like the rules, so later calls to
	// WithInitializer do not reach this run.
	init := c.init
	newRecord := func() *T {
		rec := new(T)
		if init != nil {
			init(rec)
		}
		return rec
	}

	r := &Rows[T]{
		sheet:       c.sheet,
		opts:        c.opts,
		newRecord:   newRecord,
		columns:     slices.Clone(c.columns),
		collections: slices.Clone(c.collections),
		cont:        cont,
		next:        fromRow,
		log:         c.opts.Logger.With(zap.Int("from_row", fromRow)),
	}
	switch {
	case c.err != nil:
		r.fail(c.err)
	case fromRow < 1:
		r.fail(&ConfigError{Op: op, Err: fmt.Errorf("%w: first row %d", ErrInvalidRow, fromRow)})
	case cont == nil:
		r.fail(&ConfigError{Op: op, Err: ErrNilPredicate})
	default:
		r.log.Debug("extraction started",
			zap.Int("properties", len(r.columns)),
			zap.Int("collections", len(r.collections)))
	}
	return r
}

func (r *Rows[T]) fail(err error) {
	r.err = err
	r.stopped = true
	r.log.Debug("extraction failed", zap.Error(err))
}

// Next reads the next record. It returns false when the continuation
// predicate no longer holds, after an aborted record has been returned, or
// on error.
func (r *Rows[T]) Next() bool {
	r.cur = nil
	for !r.stopped {
		row := r.next
		ok, err := r.cont(row)
		if err != nil {
			r.fail(err)
			return false
		}
		if !ok {
			r.stopped = true
			r.log.Debug("extraction finished", zap.Int("last_row", row-1))
			return false
		}
		r.next++

		rec, abortedAt, err := r.extractRow(row)
		if err != nil {
			r.fail(err)
			return false
		}
		if abortedAt != nil {
			r.stopped = true
			r.log.Debug("extraction aborted",
				zap.Int("row", row),
				zap.String("cell", CellAddress{Row: row, Column: abortedAt.column}.String()),
				zap.String("field", abortedAt.field()))
			r.cur, r.curRow = rec, row
			return true
		}
		if r.opts.GoValidator != nil && !r.validate(rec, row) {
			continue
		}
		r.cur, r.curRow = rec, row
		return true
	}
	return false
}

// extractRow builds the record of one row. A non-nil abortedAt is the rule
// that aborted; the record is partially populated and no collection rule ran.
func (r *Rows[T]) extractRow(row int) (rec *T, abortedAt *columnRule[T], err error) {
	rec = r.newRecord()

	for _, rule := range r.columns {
		cell, err := r.sheet.Cell(row, rule.column)
		if err != nil {
			return nil, nil, err
		}
		applied, err := rule.binding.bind(rec, cell)
		if err != nil {
			return nil, nil, err
		}
		if !applied {
			return rec, rule, nil
		}
	}

	for _, rule := range r.collections {
		if err := rule.apply(rec, row, r.sheet); err != nil {
			return nil, nil, err
		}
	}
	return rec, nil, nil
}

// validate runs struct validation and records the failures.
func (r *Rows[T]) validate(rec *T, row int) bool {
	err := r.opts.GoValidator.Struct(rec)
	if err == nil {
		return true
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			re := RowError{
				Row:   row,
				Field: fe.StructField(),
				Value: fe.Value(),
				Err:   fmt.Errorf("field '%s' failed on '%s': %s", fe.Field(), fe.Tag(), fe.Error()),
			}
			if rule := r.ruleFor(fe.StructField()); rule != nil {
				re.Column = rule.column
				re.ColLetter = rule.letters
			}
			r.rowErrs = append(r.rowErrs, re)
		}
	} else {
		r.rowErrs = append(r.rowErrs, RowError{
			Row: row,
			Err: fmt.Errorf("struct validation error: %w", err),
		})
	}

	r.log.Debug("record failed validation", zap.Int("row", row), zap.Error(err))
	return false
}

func (r *Rows[T]) ruleFor(field string) *columnRule[T] {
	for _, rule := range r.columns {
		if rule.binding.Field() == field {
			return rule
		}
	}
	return nil
}

// Record returns the record read by the last successful call to Next.
func (r *Rows[T]) Record() *T {
	return r.cur
}

// Row returns the sheet row of the current record.
func (r *Rows[T]) Row() int {
	return r.curRow
}

// Err returns the error that ended the run, if any. An abort is not an error.
func (r *Rows[T]) Err() error {
	return r.err
}

// RowErrors returns the validation failures of skipped records.
func (r *Rows[T]) RowErrors() []RowError {
	return r.rowErrs
}

// All returns an iterator over the remaining records. The error that ends
// the run, if any, is yielded last with a nil record.
func (r *Rows[T]) All() iter.Seq2[*T, error] {
	return func(yield func(*T, error) bool) {
		for r.Next() {
			if !yield(r.cur, nil) {
				return
			}
		}
		if r.err != nil {
			yield(nil, r.err)
		}
	}
}

// Collect reads every remaining record into a slice.
func (r *Rows[T]) Collect() ([]*T, error) {
	var out []*T
	for r.Next() {
		out = append(out, r.cur)
	}
	return out, r.err
}
