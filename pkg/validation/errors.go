package validation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ValidationError maps request field names (JSON names) to a readable message
type ValidationError struct {
	Errors map[string]string `json:"errors"`
}

// Error lists the field messages sorted by field name
func (v *ValidationError) Error() string {
	fields := make([]string, 0, len(v.Errors))
	for field := range v.Errors {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, len(fields))
	for i, field := range fields {
		parts[i] = field + ": " + v.Errors[field]
	}
	return strings.Join(parts, "; ")
}

// Field returns the message recorded for field
func (v *ValidationError) Field(field string) (string, bool) {
	msg, ok := v.Errors[field]
	return msg, ok
}

// NewValidationError keeps the first failure of each field
func NewValidationError(errs validator.ValidationErrors) *ValidationError {
	out := &ValidationError{Errors: make(map[string]string, len(errs))}
	for _, fe := range errs {
		if _, seen := out.Errors[fe.Field()]; !seen {
			out.Errors[fe.Field()] = fieldMessage(fe)
		}
	}
	return out
}

// Length limits on strings are counted in characters, not bytes
func fieldMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters long", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters long", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	case "phonekey":
		return field + " must contain at least one digit"
	default:
		return field + " is invalid"
	}
}
