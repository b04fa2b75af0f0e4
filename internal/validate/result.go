package validate

import (
	"fmt"
	"strings"
)

// FieldError names the offending field and a human-readable reason. It is
// always recoverable by the caller; it never represents a system fault.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Result accumulates field errors and non-blocking warnings for one
// submission. Validators collect every violation rather than stopping at the
// first, so API consumers see the full list in a single round trip.
type Result struct {
	Errors   []FieldError `json:"errors,omitempty"`
	Warnings []string     `json:"warnings,omitempty"`
}

func (r *Result) Fail(field, message string) {
	r.Errors = append(r.Errors, FieldError{Field: field, Message: message})
}

func (r *Result) Warn(message string) {
	r.Warnings = append(r.Warnings, message)
}

func (r *Result) Merge(other Result) {
	r.Errors = append(r.Errors, other.Errors...)
	r.Warnings = append(r.Warnings, other.Warnings...)
}

func (r Result) Valid() bool {
	return len(r.Errors) == 0
}

// Err returns nil when the result is valid, otherwise an error summarizing
// every field violation.
func (r Result) Err() error {
	if r.Valid() {
		return nil
	}
	parts := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		parts = append(parts, e.Error())
	}
	return fmt.Errorf("validation failed: %s", strings.Join(parts, "; "))
}
