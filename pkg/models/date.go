package models

import (
	"reflect"
	"strings"
	"time"

	"github.com/segmentio/encoding/json"
)

const DateLayout = "2006-01-02"

// Date is a calendar date on the wire. It accepts either YYYY-MM-DD or a full
// RFC 3339 timestamp and always holds the value in UTC.
type Date struct {
	time.Time
}

func NewDate(t time.Time) Date {
	return Date{t.UTC()}
}

func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{DateLayout, time.RFC3339Nano} {
		t, err := time.Parse(layout, s)
		if err == nil {
			return NewDate(t), nil
		}
	}
	return Date{}, &json.UnmarshalTypeError{Value: "string " + s, Type: reflect.TypeOf(Date{})}
}

func (d *Date) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return &json.UnmarshalTypeError{Value: "non-string", Type: reflect.TypeOf(Date{})}
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Time.UTC().Format(DateLayout))
}

func (d Date) String() string {
	return d.Time.UTC().Format(DateLayout)
}
