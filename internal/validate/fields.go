package validate

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern = regexp.MustCompile(`^\+?[1-9]\d{1,14}$`)
	namePattern  = regexp.MustCompile(`^[\p{L}][\p{L} '-]*$`)
)

func checkEmail(r *Result, field, value string) string {
	value = strings.TrimSpace(strings.ToLower(value))
	if value == "" {
		r.Fail(field, "email is required")
		return value
	}
	if !emailPattern.MatchString(value) {
		r.Fail(field, "must be a valid email address")
	}
	return value
}

func checkName(r *Result, field, value string, min, max int) string {
	value = strings.TrimSpace(value)
	length := utf8.RuneCountInString(value)
	if length < min || length > max {
		r.Fail(field, fmt.Sprintf("must be %d-%d characters", min, max))
		return value
	}
	if !namePattern.MatchString(value) {
		r.Fail(field, "must contain letters and spaces only")
	}
	return value
}

// checkPhone validates an optional E.164-shaped number; empty is allowed.
func checkPhone(r *Result, field, value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	if !phonePattern.MatchString(value) {
		r.Fail(field, "must be a valid phone number")
	}
	return &value
}

func checkIntRange(r *Result, field string, value, min, max int) {
	if value < min || value > max {
		r.Fail(field, fmt.Sprintf("must be between %d and %d", min, max))
	}
}

func checkMaxLen(r *Result, field, value string, max int) {
	if utf8.RuneCountInString(value) > max {
		r.Fail(field, fmt.Sprintf("must be at most %d characters", max))
	}
}
