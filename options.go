package excelextract

import (
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

/* =========================================================
 *  Options
 * ========================================================= */

// Option is the configuration option type for Extract.
type Option func(*Options)

// Options control how rows are extracted.
type Options struct {
	// Logger receives debug events about extraction runs. Defaults to a no-op logger.
	Logger *zap.Logger

	// GoValidator, when set, validates every completed record with
	// validator.Struct. Invalid records are skipped and reported by
	// Rows.RowErrors.
	GoValidator *validator.Validate
}

// applyDefaults fills in default values for unspecified options.
func applyDefaults(o *Options) {
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
}

// WithLogger sets the logger used for extraction events.
func WithLogger(l *zap.Logger) Option {
	return func(o *Options) { o.Logger = l }
}

// UseValidator sets the go-playground/validator instance used for struct validation.
func UseValidator(v *validator.Validate) Option {
	return func(o *Options) { o.GoValidator = v }
}
