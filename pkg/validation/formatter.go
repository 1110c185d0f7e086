package validation

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/inkwell/bookstore/pkg/models"
)

const (
	gt       = "gt"
	gte      = "gte"
	lt       = "lt"
	lte      = "lte"
	mx       = "max"
	mn       = "min"
	oneof    = "oneof"
	required = "required"
)

func formatValidationError(err validator.FieldError) string {
	field := err.Field()

	switch err.Tag() {
	case genre:
		return fmt.Sprintf("%q must be one of the following: %s", field, quoteAll(genreNames()))
	case httpURL:
		return fmt.Sprintf("%q must be a valid URL", field)
	case isbn:
		return fmt.Sprintf("%q must be 10 or 13 digits", field)
	case notFuture:
		return fmt.Sprintf("%q cannot be in the future", field)
	case gt:
		return fmt.Sprintf("%q must be greater than %s", field, err.Param())
	case gte:
		return fmt.Sprintf("%q must be greater than or equal to %s", field, err.Param())
	case lt:
		return fmt.Sprintf("%q must be less than %s", field, err.Param())
	case lte:
		return fmt.Sprintf("%q must be less than or equal to %s", field, err.Param())
	case mx:
		if isNumeric(err.Kind()) {
			return fmt.Sprintf("%q must be less than or equal to %s", field, err.Param())
		}
		return fmt.Sprintf("%q length must be less than or equal to %s %s", field, err.Param(), plural("character", err.Param()))
	case mn:
		if isNumeric(err.Kind()) {
			return fmt.Sprintf("%q must be greater than or equal to %s", field, err.Param())
		}
		return fmt.Sprintf("%q length must be greater than or equal to %s %s", field, err.Param(), plural("character", err.Param()))
	case oneof:
		return fmt.Sprintf("%q must be one of the following: %s", field, quoteAll(strings.Fields(err.Param())))
	case required:
		return fmt.Sprintf("%q is required", field)
	default:
		return fmt.Sprintf("%q is invalid", field)
	}
}

func isNumeric(k reflect.Kind) bool {
	//exhaustive:ignore
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	default:
		return false
	}
}

func plural(resource, n string) string {
	if n != "1" {
		return resource + "s"
	}
	return resource
}

func quoteAll(vals []string) string {
	quoted := make([]string, 0, len(vals))
	for _, v := range vals {
		quoted = append(quoted, fmt.Sprintf("%q", v))
	}
	return strings.Join(quoted, ", ")
}

func genreNames() []string {
	names := make([]string, 0, len(models.Genres))
	for _, g := range models.Genres {
		names = append(names, string(g))
	}
	return names
}
