package validation

import (
	"reflect"
	"testing"

	ut "github.com/go-playground/universal-translator"
	"github.com/stretchr/testify/assert"
)

type mockFieldError struct {
	tag   string
	field string
	param string
	kind  reflect.Kind
}

func (e *mockFieldError) Error() string           { return "Mock Field Error" }
func (e *mockFieldError) Tag() string             { return e.tag }
func (e *mockFieldError) ActualTag() string       { return e.tag }
func (e *mockFieldError) Namespace() string       { return "" }
func (e *mockFieldError) StructNamespace() string { return "" }
func (e *mockFieldError) Field() string           { return e.field }
func (e *mockFieldError) StructField() string     { return "" }
func (e *mockFieldError) Value() interface{}      { return "" }
func (e *mockFieldError) Param() string           { return e.param }
func (e *mockFieldError) Kind() reflect.Kind {
	if e.kind == 0 {
		return reflect.String
	}
	return e.kind
}
func (e *mockFieldError) Type() reflect.Type               { return reflect.TypeOf("") }
func (e *mockFieldError) Translate(_ ut.Translator) string { return "" }

func TestFormatValidationError(t *testing.T) {
	t.Parallel()
	cases := []struct {
		tag   string
		param string
		kind  reflect.Kind
		msg   string
	}{
		{gt, "0", 0, `"multiWord" must be greater than 0`},
		{gte, "0", reflect.Float64, `"multiWord" must be greater than or equal to 0`},
		{lte, "10000", reflect.Float64, `"multiWord" must be less than or equal to 10000`},
		// String min/max
		{mx, "200", reflect.String, `"multiWord" length must be less than or equal to 200 characters`},
		{mx, "1", reflect.String, `"multiWord" length must be less than or equal to 1 character`},
		{mn, "1", reflect.String, `"multiWord" length must be greater than or equal to 1 character`},
		// Numeric min/max
		{mx, "100", reflect.Int, `"multiWord" must be less than or equal to 100`},
		{mn, "1", reflect.Int, `"multiWord" must be greater than or equal to 1`},
		// Custom rules
		{isbn, "", 0, `"multiWord" must be 10 or 13 digits`},
		{httpURL, "", 0, `"multiWord" must be a valid URL`},
		{notFuture, "", 0, `"multiWord" cannot be in the future`},
		{genre, "", 0, `"multiWord" must be one of the following: "Fiction", "Non-Fiction", "Science Fiction", "Mystery", "Romance", "Biography", "History", "Self-Help", "Other"`},
		// Other
		{oneof, "asc desc", 0, `"multiWord" must be one of the following: "asc", "desc"`},
		{required, "", 0, `"multiWord" is required`},
		{"foo", "", 0, `"multiWord" is invalid`},
	}

	for _, tt := range cases {
		err := mockFieldError{tag: tt.tag, field: "multiWord", param: tt.param, kind: tt.kind}
		msg := formatValidationError(&err)
		assert.Equal(t, tt.msg, msg)
	}
}
