package validation

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// FieldType is the type a raw input value is coerced to
type FieldType int

const (
	String FieldType = iota
	Int
	Bool
	// Date accepts YYYY-MM-DD
	Date
	// DateTime accepts RFC 3339, datetime-local (YYYY-MM-DDTHH:MM) and plain dates
	DateTime
)

const (
	dateLayout          = "2006-01-02"
	datetimeLocalLayout = "2006-01-02T15:04"
)

// Field declares the rules of one input field
type Field struct {
	Name     string
	Type     FieldType
	Required bool
	// Rules is a go-playground/validator tag applied to the normalized value, e.g. "min=3,max=200"
	Rules string
	// Message replaces the generated message of any violation on this field
	Message string
}

// Input is the raw request data keyed by field name
type Input map[string]any

// CrossRule runs after every per-field rule.
// values only contains fields that passed their own rules.
type CrossRule func(in Input, values Values) []Violation

// RuleSet is the declarative rule set of one route
type RuleSet struct {
	Fields []Field
	Cross  []CrossRule
}

// Violation is a single failed rule
type Violation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Result is the ordered list of violations of one evaluation.
// An empty list signals success.
type Result struct {
	Violations []Violation
}

// OK reports whether no rule failed
func (r Result) OK() bool {
	return len(r.Violations) == 0
}

// Evaluate runs every field rule of set against in, then every cross rule.
// No rule stops the evaluation of another.
func (v *Validator) Evaluate(set RuleSet, in Input) (Values, Result, error) {
	values := Values{}
	var result Result

	for _, field := range set.Fields {
		violation, normalized, err := v.evaluateField(field, in)
		if err != nil {
			return nil, Result{}, err
		}
		if violation != nil {
			if field.Message != "" {
				violation.Message = field.Message
			}
			result.Violations = append(result.Violations, *violation)
			continue
		}
		if normalized != nil {
			values[field.Name] = normalized
		}
	}

	for _, rule := range set.Cross {
		result.Violations = append(result.Violations, rule(in, values)...)
	}

	return values, result, nil
}

// evaluateField returns either a violation or the normalized value; both are nil for an absent optional field
func (v *Validator) evaluateField(field Field, in Input) (*Violation, any, error) {
	raw, present := in[field.Name]
	if present && isBlank(raw) {
		present = false
	}

	if !present {
		if field.Required {
			return &Violation{Field: field.Name, Message: "This field is required"}, nil, nil
		}
		return nil, nil, nil
	}

	normalized, msg := coerce(field.Type, raw)
	if msg != "" {
		return &Violation{Field: field.Name, Message: msg}, nil, nil
	}

	msg, err := v.check(normalized, field.Rules)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to apply rules %q to field %s: %w", field.Rules, field.Name, err)
	}
	if msg != "" {
		return &Violation{Field: field.Name, Message: msg}, nil, nil
	}

	return nil, normalized, nil
}

func isBlank(raw any) bool {
	switch val := raw.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(val) == ""
	}
	return false
}

// coerce converts a raw value to the declared type, returning a message when it cannot
func coerce(t FieldType, raw any) (any, string) {
	switch t {
	case String:
		s, ok := raw.(string)
		if !ok {
			return nil, "Must be a string"
		}
		return strings.TrimSpace(s), ""

	case Int:
		n, ok := toInt(raw)
		if !ok {
			return nil, "Must be an integer"
		}
		return n, ""

	case Bool:
		b, ok := toBool(raw)
		if !ok {
			return nil, "Must be true or false"
		}
		return b, ""

	case Date:
		s, ok := raw.(string)
		if !ok {
			return nil, "Must be a valid date (YYYY-MM-DD)"
		}
		d, err := time.Parse(dateLayout, strings.TrimSpace(s))
		if err != nil {
			return nil, "Must be a valid date (YYYY-MM-DD)"
		}
		return d, ""

	case DateTime:
		s, ok := raw.(string)
		if !ok {
			return nil, "Must be a valid date or date-time"
		}
		d, ok := parseDateTime(strings.TrimSpace(s))
		if !ok {
			return nil, "Must be a valid date or date-time"
		}
		return d, ""
	}

	return nil, "Unsupported field type"
}

func toInt(raw any) (int, bool) {
	switch val := raw.(type) {
	case int:
		return val, true
	case int64:
		return int(val), true
	case json.Number:
		n, err := val.Int64()
		return int(n), err == nil
	case float64:
		if val != math.Trunc(val) {
			return 0, false
		}
		return int(val), true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(val))
		return n, err == nil
	}
	return 0, false
}

func toBool(raw any) (bool, bool) {
	switch val := raw.(type) {
	case bool:
		return val, true
	case string:
		switch strings.ToLower(strings.TrimSpace(val)) {
		case "true", "1", "on", "yes":
			return true, true
		case "false", "0", "off", "no":
			return false, true
		}
	}
	return false, false
}

func parseDateTime(s string) (time.Time, bool) {
	for _, layout := range []string{time.RFC3339, datetimeLocalLayout, dateLayout} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// DateOrder requires end to be on or after start when both passed their own rules
func DateOrder(start, end string) CrossRule {
	return func(_ Input, values Values) []Violation {
		startAt, okStart := values.Time(start)
		endAt, okEnd := values.Time(end)
		if !okStart || !okEnd {
			return nil
		}
		if endAt.Before(startAt) {
			return []Violation{{Field: end, Message: fmt.Sprintf("Must be on or after %s", start)}}
		}
		return nil
	}
}

// PageBounds caps the offset a page/limit pair can reach.
// Absent fields take the given defaults.
func PageBounds(page, limit string, defaultLimit, maxOffset int) CrossRule {
	return func(in Input, values Values) []Violation {
		// A field that failed its own rule is already reported
		if failed(in, values, page) || failed(in, values, limit) {
			return nil
		}

		p := values.Int(page, 1)
		l := max(values.Int(limit, defaultLimit), 1)
		// p*l could overflow for huge pages
		if p > maxOffset/l {
			return []Violation{{Field: page, Message: fmt.Sprintf("%s * %s must not exceed %d", page, limit, maxOffset)}}
		}
		return nil
	}
}

func failed(in Input, values Values, name string) bool {
	raw, ok := in[name]
	return ok && !isBlank(raw) && !values.Has(name)
}
