package validation

import (
	"context"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/mold/v4"
	"github.com/go-playground/mold/v4/modifiers"
	"github.com/go-playground/validator/v10"
	"github.com/inkwell/bookstore/pkg/errcodes"
	"github.com/inkwell/bookstore/pkg/models"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// Validator wraps go-playground/validator with the rules and field naming used
// by every payload in the API. The same instance backs request binding and the
// store write path.
type Validator struct {
	validate *validator.Validate
	conform  *mold.Transformer
	now      func() time.Time
}

type Option func(*Validator)

// WithClock overrides the wall clock used by time-relative rules.
func WithClock(now func() time.Time) Option {
	return func(v *Validator) {
		v.now = now
	}
}

func New(opts ...Option) *Validator {
	v := &Validator{
		validate: validator.New(),
		conform:  modifiers.New(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(v)
	}

	v.validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	v.validate.RegisterCustomTypeFunc(decimalValue, decimal.Decimal{})
	v.validate.RegisterCustomTypeFunc(dateValue, models.Date{})

	_ = v.validate.RegisterValidation(genre, genreValidator)
	_ = v.validate.RegisterValidation(httpURL, httpURLValidator)
	_ = v.validate.RegisterValidation(isbn, isbnValidator)
	_ = v.validate.RegisterValidation(notFuture, v.notFutureValidator)

	return v
}

// Conform applies the `mod` tag transforms (e.g. trim) to i in place.
func (v *Validator) Conform(ctx context.Context, i interface{}) error {
	return errors.WithStack(v.conform.Struct(ctx, i))
}

// Struct validates every field of i. Failures are collected, not
// short-circuited, and returned as an *errcodes.Error carrying one detail per
// failing field.
func (v *Validator) Struct(i interface{}) error {
	return v.check(v.validate.Struct(i))
}

// StructPartial validates only the named fields (JSON names are not accepted
// here; pass Go struct field names).
func (v *Validator) StructPartial(i interface{}, fields ...string) error {
	if len(fields) == 0 {
		return nil
	}
	return v.check(v.validate.StructPartial(i, fields...))
}

func (v *Validator) check(err error) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return errors.WithStack(err)
	}
	return errcodes.ValidationFailed(Details(verrs))
}

// Details converts validator errors into client-facing field errors.
func Details(verrs validator.ValidationErrors) []errcodes.FieldError {
	details := make([]errcodes.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		details = append(details, errcodes.FieldError{
			Field:   fe.Field(),
			Message: formatValidationError(fe),
			Value:   detailValue(fe.Value()),
		})
	}
	return details
}

func detailValue(v interface{}) interface{} {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return nil
		}
		return rv.Elem().Interface()
	}
	return v
}

func decimalValue(field reflect.Value) interface{} {
	if d, ok := field.Interface().(decimal.Decimal); ok {
		return d.InexactFloat64()
	}
	return nil
}

func dateValue(field reflect.Value) interface{} {
	if d, ok := field.Interface().(models.Date); ok {
		return d.Time
	}
	return nil
}
