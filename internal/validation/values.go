package validation

import (
	"context"
	"time"
)

// Values holds the normalized values of fields that passed their rules
type Values map[string]any

// Has reports whether name passed its rules with a value
func (v Values) Has(name string) bool {
	_, ok := v[name]
	return ok
}

// String returns the trimmed string value of name, or ""
func (v Values) String(name string) string {
	s, _ := v[name].(string)
	return s
}

// StringPtr returns nil when name has no value
func (v Values) StringPtr(name string) *string {
	s, ok := v[name].(string)
	if !ok {
		return nil
	}
	return &s
}

// Int returns the integer value of name, or def
func (v Values) Int(name string, def int) int {
	if n, ok := v[name].(int); ok {
		return n
	}
	return def
}

// Bool returns the boolean value of name, or false
func (v Values) Bool(name string) bool {
	b, _ := v[name].(bool)
	return b
}

// Time returns the date or date-time value of name
func (v Values) Time(name string) (time.Time, bool) {
	t, ok := v[name].(time.Time)
	return t, ok
}

// TimePtr returns nil when name has no value
func (v Values) TimePtr(name string) *time.Time {
	t, ok := v[name].(time.Time)
	if !ok {
		return nil
	}
	return &t
}

type contextKey string

const valuesKey contextKey = "validatedValues"

// WithValues returns a copy of ctx carrying values
func WithValues(ctx context.Context, values Values) context.Context {
	return context.WithValue(ctx, valuesKey, values)
}

// FromContext returns the values stored by the validation middleware.
// It never returns nil.
func FromContext(ctx context.Context) Values {
	if values, ok := ctx.Value(valuesKey).(Values); ok {
		return values
	}
	return Values{}
}
