// Package validation evaluates declarative per-field and cross-field rule sets against
// request input, collecting every violation before the handler runs.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// Validator wraps go-playground/validator for single-value checks
type Validator struct {
	validate *validator.Validate
}

// New creates a Validator with the custom rules registered
func New() *Validator {
	v := validator.New()

	mustRegister := func(tag string, fn validator.Func) {
		if err := v.RegisterValidation(tag, fn); err != nil {
			panic(fmt.Sprintf("failed to register validation tag %q: %v", tag, err))
		}
	}
	mustRegister("slug", validateSlug)

	return &Validator{validate: v}
}

func validateSlug(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	return slugPattern.MatchString(value) && strings.ContainsFunc(value, unicode.IsLetter)
}

// check applies a validator tag to a single normalized value and returns the message of the
// first failed tag, or an empty string
func (v *Validator) check(value any, rules string) (string, error) {
	if rules == "" {
		return "", nil
	}

	err := v.validate.Var(value, rules)
	if err == nil {
		return "", nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) || len(validationErrors) == 0 {
		return "", err
	}

	return getErrorMessage(validationErrors[0]), nil
}

// getErrorMessage turns a failed tag into a client message
func getErrorMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Must be a valid email address"
	case "url", "http_url":
		return "Must be a valid URL"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("Must be at least %s characters long", fe.Param())
		}
		return fmt.Sprintf("Must be at least %s", fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("Must be at most %s characters long", fe.Param())
		}
		return fmt.Sprintf("Must be at most %s", fe.Param())
	case "len":
		return fmt.Sprintf("Must be exactly %s characters long", fe.Param())
	case "oneof":
		return fmt.Sprintf("Must be one of: %s", strings.ReplaceAll(fe.Param(), " ", ", "))
	case "slug":
		return "Must contain only lowercase letters, digits and single hyphens, with at least one letter"
	default:
		return fmt.Sprintf("Invalid value (failed on '%s' tag)", fe.Tag())
	}
}
