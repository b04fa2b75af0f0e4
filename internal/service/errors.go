package service

import (
	"errors"
	"fmt"

	"github.com/driveops/driveops/internal/validate"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrPermissionDenied = errors.New("permission denied")
	ErrInvalidInput     = errors.New("invalid input")
	ErrNotPermitted     = errors.New("action not permitted")
	ErrDuplicateEntry   = errors.New("entry already exists")
	ErrTooManyAttempts  = errors.New("too many attempts")
	ErrBadCredentials   = errors.New("invalid email or password")
)

// ValidationError carries the aggregated field errors of one submission.
// Callers unwrap it with errors.As and surface each field to the user.
type ValidationError struct {
	Result validate.Result
}

func (e *ValidationError) Error() string {
	return e.Result.Err().Error()
}

func validationErr(r validate.Result) error {
	return &ValidationError{Result: r}
}

// gateErr reports a workflow-gate denial with its reason.
func gateErr(reason string) error {
	return fmt.Errorf("%w: %s", ErrNotPermitted, reason)
}
