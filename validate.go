package excelextract

import "github.com/go-playground/validator/v10"

// AbortOnInvalid returns an AfterConvert callback that aborts the extraction
// when the converted value fails the validator tag, e.g. "required,gt=0".
func AbortOnInvalid[V any](v *validator.Validate, tag string) func(*Context, V) {
	return func(ctx *Context, value V) {
		if err := v.Var(value, tag); err != nil {
			ctx.Abort()
		}
	}
}

// AbortWhen returns a BeforeConvert callback that aborts the extraction when
// the raw cell value matches.
func AbortWhen(match func(raw any) bool) func(*Context, any) {
	return func(ctx *Context, raw any) {
		if match(raw) {
			ctx.Abort()
		}
	}
}
