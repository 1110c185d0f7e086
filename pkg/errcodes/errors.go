package errcodes

import (
	"fmt"
	"net/http"
	"strings"
)

// Categories are the client-visible values of the "error" key in the error
// envelope.
const (
	CategoryValidation = "Validation Error"
	CategoryDuplicate  = "Duplicate Error"
	CategoryInvalidID  = "Invalid ID format"
	CategoryBadRequest = "Bad Request"
	CategoryRateLimit  = "Too Many Requests"
	CategoryRoute      = "Route not found"
	CategoryServer     = "Server Error"
)

// FieldError describes a single failing field constraint.
type FieldError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
}

type Error struct {
	HTTPCode int
	Category string
	Message  string
	Code     string
	Details  []FieldError
}

func (err *Error) Error() string {
	return err.Message
}

func (err *Error) As(target interface{}) bool {
	te, ok := target.(*Error)
	if !ok {
		return false
	}
	te.HTTPCode = err.HTTPCode
	te.Category = err.Category
	te.Message = err.Message
	te.Code = err.Code
	te.Details = err.Details
	return true
}

func (err *Error) Is(target error) bool {
	te, ok := target.(*Error)
	if !ok {
		return false
	}
	return te.HTTPCode == err.HTTPCode &&
		te.Message == err.Message &&
		te.Code == err.Code
}

// ValidationFailed returns a 400 error carrying every failing field.
func ValidationFailed(details []FieldError) error {
	msg := "Validation failed"
	if len(details) == 1 {
		msg = details[0].Message
	} else if len(details) > 1 {
		msg = fmt.Sprintf("Validation failed with %d errors", len(details))
	}
	return &Error{
		HTTPCode: http.StatusBadRequest,
		Category: CategoryValidation,
		Message:  msg,
		Code:     "validation_error",
		Details:  details,
	}
}

// NotFound returns a 404 error with a message indicating the given resource.
func NotFound(resource string) error {
	return &Error{
		HTTPCode: http.StatusNotFound,
		Category: resource + " not found",
		Message:  fmt.Sprintf("No %s found with the provided ID", lowerFirst(resource)),
		Code:     "not_found",
	}
}

// Duplicate returns a 400 error for a uniqueness collision on field.
func Duplicate(field string) error {
	return &Error{
		HTTPCode: http.StatusBadRequest,
		Category: CategoryDuplicate,
		Message:  fmt.Sprintf("A book with this %s already exists", field),
		Code:     "duplicate",
	}
}

func InvalidID() error {
	return &Error{
		HTTPCode: http.StatusBadRequest,
		Category: CategoryInvalidID,
		Message:  "The provided ID is not valid",
		Code:     "invalid_id",
	}
}

func RateLimited() error {
	return &Error{
		HTTPCode: http.StatusTooManyRequests,
		Category: CategoryRateLimit,
		Message:  "Too many requests from this IP, please try again later.",
		Code:     "rate_limited",
	}
}

func RouteNotFound(method, path string) error {
	return &Error{
		HTTPCode: http.StatusNotFound,
		Category: CategoryRoute,
		Message:  fmt.Sprintf("Cannot %s %s", method, path),
		Code:     "route_not_found",
	}
}

func UnsupportedMediaType() error {
	return &Error{
		HTTPCode: http.StatusUnsupportedMediaType,
		Category: CategoryBadRequest,
		Message:  "Unsupported Media Type",
		Code:     "unsupported_media_type",
	}
}

func UnknownParameter(param string) error {
	return &Error{
		HTTPCode: http.StatusBadRequest,
		Category: CategoryValidation,
		Message:  fmt.Sprintf("Unknown Parameter %q", param),
		Code:     "unknown_parameter",
		Details:  []FieldError{{Field: param, Message: "unknown parameter"}},
	}
}

func ValidationTypeError(field, msg string) error {
	return &Error{
		HTTPCode: http.StatusBadRequest,
		Category: CategoryValidation,
		Message:  msg,
		Code:     "validation_type_error",
		Details:  []FieldError{{Field: field, Message: msg}},
	}
}

func MalformedPayload() error {
	return &Error{
		HTTPCode: http.StatusBadRequest,
		Category: CategoryBadRequest,
		Message:  "Malformed Payload",
		Code:     "malformed_payload",
	}
}

func EmptyRequestBody() error {
	return &Error{
		HTTPCode: http.StatusBadRequest,
		Category: CategoryBadRequest,
		Message:  "Request body can't be empty.",
		Code:     "empty_request_body",
	}
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
