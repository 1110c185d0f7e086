package binder

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/gorilla/schema"
	"github.com/inkwell/bookstore/pkg/models"
	"github.com/segmentio/encoding/json"
	"github.com/shopspring/decimal"
)

var (
	dateType    = reflect.TypeOf(models.Date{})
	decimalType = reflect.TypeOf(decimal.Decimal{})
)

func fieldName(err *json.UnmarshalTypeError) string {
	return strings.Trim(err.Field, ".")
}

func formatUnmarshalTypeError(err *json.UnmarshalTypeError) string {
	return fmt.Sprintf("%q should be of type %s", fieldName(err), typeName(err.Type))
}

func formatSchemaConversionError(err schema.ConversionError) string {
	return fmt.Sprintf("%q should be of type %s", err.Key, typeName(err.Type))
}

func typeName(t reflect.Type) string {
	if t == nil {
		return "unknown"
	}
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	switch t {
	case dateType:
		return "date (YYYY-MM-DD)"
	case decimalType:
		return "number"
	}
	return t.String()
}

func convertDecimal(value string) reflect.Value {
	d, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil {
		return reflect.Value{}
	}
	return reflect.ValueOf(d)
}

func convertDate(value string) reflect.Value {
	d, err := models.ParseDate(value)
	if err != nil {
		return reflect.Value{}
	}
	return reflect.ValueOf(d)
}
