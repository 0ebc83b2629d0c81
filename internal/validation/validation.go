// Package validation wraps go-playground/validator for record validation and
// turns its failures into per-field messages suitable for form rendering.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

// PasswordMessage is reported when the password rule fails.
const PasswordMessage = "Password must be at least 8 characters and contain 1 uppercase, 1 digit, and one special character"

// Errors maps a form field name to its message. It implements error so that
// services can return it through ordinary error paths.
type Errors map[string]string

func (e Errors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+e[f])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Add records msg for field unless the field already has a message.
func (e Errors) Add(field, msg string) {
	if _, ok := e[field]; !ok {
		e[field] = msg
	}
}

// Merge copies other into e without overwriting existing entries.
func (e Errors) Merge(other Errors) {
	for f, msg := range other {
		e.Add(f, msg)
	}
}

// AsErrors reports whether err carries field errors and returns them.
func AsErrors(err error) (Errors, bool) {
	var verrs Errors
	if errors.As(err, &verrs) {
		return verrs, true
	}
	return nil, false
}

type Validator struct {
	validate *validator.Validate
}

func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})

	// Registration only fails for empty tags or nil funcs.
	_ = v.RegisterValidation("password", passwordRule)

	return &Validator{validate: v}
}

// Struct validates s and returns Errors keyed by form field name, or nil.
func (v *Validator) Struct(s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate: %w", err)
	}

	out := make(Errors, len(verrs))
	for _, fe := range verrs {
		out.Add(fe.Field(), message(s, fe))
	}
	return out
}

// ValidPassword reports whether pw satisfies the password rule: at least 8
// characters with an ASCII uppercase letter, an ASCII digit and a character
// outside [a-zA-Z0-9]. Line terminators are not allowed anywhere.
func ValidPassword(pw string) bool {
	if utf8.RuneCountInString(pw) < 8 {
		return false
	}
	var upper, digit, special bool
	for _, r := range pw {
		switch {
		case isLineTerminator(r):
			return false
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= '0' && r <= '9':
			digit = true
		case r >= 'a' && r <= 'z':
		default:
			special = true
		}
	}
	return upper && digit && special
}

func isLineTerminator(r rune) bool {
	switch r {
	case '\n', '\r', '\u0085', '\u2028', '\u2029':
		return true
	}
	return false
}

func passwordRule(fl validator.FieldLevel) bool {
	return ValidPassword(fl.Field().String())
}

// message picks the text for one failed rule: rules with a fixed wording
// first, then the field's msg tag, then a generic description.
func message(s any, fe validator.FieldError) string {
	switch fe.Tag() {
	case "password":
		return PasswordMessage
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must not exceed %s characters", fe.Param())
		}
		return fmt.Sprintf("must not exceed %s", fe.Param())
	}

	if msg := fieldMessage(s, fe.StructField()); msg != "" {
		return msg
	}

	switch fe.Tag() {
	case "required":
		return "is required"
	case "gte", "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}

func fieldMessage(s any, structField string) string {
	t := reflect.TypeOf(s)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return ""
	}
	f, ok := t.FieldByName(structField)
	if !ok {
		return ""
	}
	return f.Tag.Get("msg")
}
