// Package validation checks create/update payloads for todos, bills and
// accounts and turns them into normalized model values.
package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

const (
	maxTitle       = 200
	maxDescription = 1000
	amountScale    = 2
)

var maxAmount = decimal.RequireFromString("999999.99")

// FieldError is one offending field and a human readable message.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Errors is returned whenever a payload is rejected.
type Errors []FieldError

func (e Errors) Error() string {
	parts := make([]string, len(e))
	for i, fe := range e {
		parts[i] = fe.Field + ": " + fe.Message
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// AsErrors extracts Errors from err.
func AsErrors(err error) (Errors, bool) {
	var ve Errors
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// DecodeError converts a JSON decoding failure into field errors.
func DecodeError(err error) Errors {
	var te *json.UnmarshalTypeError
	if errors.As(err, &te) {
		field := te.Field
		if field == "" {
			field = "body"
		}
		return Errors{{Field: field, Message: fmt.Sprintf("Expected %s, received %s", jsonKind(te.Type), te.Value)}}
	}
	return Errors{{Field: "body", Message: "Invalid JSON"}}
}

func jsonKind(t reflect.Type) string {
	if t == nil {
		return "value"
	}
	switch t.Kind() {
	case reflect.String:
		return "string"
	case reflect.Bool:
		return "boolean"
	case reflect.Slice, reflect.Array:
		return "array"
	case reflect.Int, reflect.Int64, reflect.Float64, reflect.Float32:
		return "number"
	default:
		return "object"
	}
}

// Validator wraps a go-playground validator configured to report JSON names.
type Validator struct {
	v *validator.Validate
}

// New returns a ready Validator. It is safe for concurrent use.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &Validator{v: v}
}

// collector accumulates field errors for one payload.
type collector struct {
	v    *validator.Validate
	errs Errors
}

func (c *collector) add(field, msg string) {
	c.errs = append(c.errs, FieldError{Field: field, Message: msg})
}

// check runs a validator tag against value and records msg on failure.
func (c *collector) check(field string, value any, tag, msg string) bool {
	if err := c.v.Var(value, tag); err != nil {
		c.add(field, msg)
		return false
	}
	return true
}

func (c *collector) err() error {
	if len(c.errs) == 0 {
		return nil
	}
	return c.errs
}

func (c *collector) title(s string) {
	if c.check("title", s, "min=1", "Title is required") {
		c.check("title", s, fmt.Sprintf("max=%d", maxTitle), "Title is too long")
	}
}

// description normalizes "" to nil.
func (c *collector) description(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	c.check("description", *s, fmt.Sprintf("max=%d", maxDescription), "Description is too long")
	return s
}

// date parses a YYYY-MM-DD prefixed string as a calendar date; "" is nil.
func (c *collector) date(field string, s *string) *civil.Date {
	if s == nil || *s == "" {
		return nil
	}
	if len(*s) < 10 {
		c.add(field, "Invalid date")
		return nil
	}
	if !c.check(field, (*s)[:10], "datetime=2006-01-02", "Invalid date") {
		return nil
	}
	d, err := civil.ParseDate((*s)[:10])
	if err != nil {
		c.add(field, "Invalid date")
		return nil
	}
	return &d
}

// timestamp accepts RFC 3339 or a bare date (midnight UTC); "" is nil.
func (c *collector) timestamp(field string, s *string) *time.Time {
	if s == nil || *s == "" {
		return nil
	}
	if t, err := time.Parse(time.RFC3339Nano, *s); err == nil {
		return &t
	}
	if t, err := time.Parse("2006-01-02", *s); err == nil {
		return &t
	}
	c.add(field, "Invalid timestamp")
	return nil
}

func (c *collector) amount(a Amount) (decimal.Decimal, bool) {
	d, err := a.Decimal()
	if err != nil {
		c.add("amount", "Amount must be a number")
		return decimal.Zero, false
	}
	if !d.IsPositive() {
		c.add("amount", "Amount must be greater than 0")
		return d, false
	}
	// The column keeps cents; anything finer would be rounded by Postgres.
	if !d.Equal(d.Round(amountScale)) {
		c.add("amount", "Amount must have at most 2 decimal places")
		return d, false
	}
	if d.GreaterThan(maxAmount) {
		c.add("amount", "Amount is too high")
		return d, false
	}
	return d, true
}

func (c *collector) attachments(field string, list []string) []string {
	for i, a := range list {
		c.check(fmt.Sprintf("%s.%d", field, i), a, "required", "Attachment must not be empty")
	}
	if len(list) == 0 {
		return nil
	}
	return list
}

func (c *collector) required(field string) {
	c.add(field, "Required")
}

func (c *collector) notNull(field, kind string) {
	c.add(field, fmt.Sprintf("Expected %s, received null", kind))
}

// Amount captures a JSON number or numeric string without failing the decode,
// so a bad amount is reported as a field error.
type Amount struct {
	raw json.RawMessage
}

// NewAmount builds an Amount from a JSON literal (e.g. `12.5` or `"12.50"`).
func NewAmount(literal string) Amount {
	return Amount{raw: json.RawMessage(literal)}
}

func (a *Amount) UnmarshalJSON(b []byte) error {
	a.raw = append(a.raw[:0], b...)
	return nil
}

// Decimal parses the captured literal.
func (a Amount) Decimal() (decimal.Decimal, error) {
	s := strings.TrimSpace(string(a.raw))
	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal([]byte(s), &str); err != nil {
			return decimal.Zero, err
		}
		s = strings.TrimSpace(str)
	}
	if s == "" || s == "null" {
		return decimal.Zero, errors.New("empty amount")
	}
	return decimal.NewFromString(s)
}
