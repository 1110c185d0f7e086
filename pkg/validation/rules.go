package validation

import (
	"regexp"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/inkwell/bookstore/pkg/models"
)

const (
	genre     = "genre"
	httpURL   = "httpurl"
	isbn      = "isbn"
	notFuture = "notfuture"
)

var (
	isbnRE    = regexp.MustCompile(`^(?:\d{10}|\d{13})$`)
	httpURLRE = regexp.MustCompile(`^https?://.+`)
)

func genreValidator(fl validator.FieldLevel) bool {
	return models.IsValidGenre(fl.Field().String())
}

// isbnValidator accepts exactly 10 or 13 ASCII digits. An empty value means
// "no isbn" and is accepted.
func isbnValidator(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	return s == "" || isbnRE.MatchString(s)
}

func httpURLValidator(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	return s == "" || httpURLRE.MatchString(s)
}

func (v *Validator) notFutureValidator(fl validator.FieldLevel) bool {
	t, ok := fl.Field().Interface().(time.Time)
	if !ok {
		return false
	}
	return !t.After(v.now())
}
