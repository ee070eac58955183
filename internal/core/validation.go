package core

import (
	"fmt"
	"strings"
)

// FieldError is a single validation failure for a form field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e FieldError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

// ValidationError collects every field failure of one submission so the
// form can show them all at once.
type ValidationError struct {
	Errors []FieldError `json:"errors"`
}

// Add records a failure for field.
func (e *ValidationError) Add(field, message string) {
	e.Errors = append(e.Errors, FieldError{Field: field, Message: message})
}

// HasErrors reports whether any failure was recorded.
func (e *ValidationError) HasErrors() bool {
	return len(e.Errors) > 0
}

// Error starts with "validation failed" so MapError can classify it.
func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		parts[i] = fe.Error()
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// FieldMessage returns the first message recorded for field, if any.
func (e *ValidationError) FieldMessage(field string) string {
	for _, fe := range e.Errors {
		if fe.Field == field {
			return fe.Message
		}
	}
	return ""
}
