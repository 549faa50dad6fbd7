package apperrors

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrForbidden indicates the caller is not allowed to touch the resource,
// typically a company scope mismatch or a missing edit approval.
var ErrForbidden = errors.New("forbidden")

// ErrConflict indicates the resource exists but is not in a state that allows
// the requested operation (e.g. downloading a report that is not done yet).
var ErrConflict = errors.New("conflict")

// ErrGone indicates a resource that used to exist has been evicted, such as a
// report artifact removed from storage after its job expired.
var ErrGone = errors.New("resource gone")

// ErrUnsupportedMedia indicates the stored artifact format does not support
// the requested delivery mode (inline viewing is PDF only).
var ErrUnsupportedMedia = errors.New("unsupported media type")

// ErrInternal indicates an unexpected internal failure.
var ErrInternal = errors.New("internal error")

// AppError wraps a lower-level error with an HTTP-ish status code and a
// message safe to log. Repositories use it for infrastructure failures.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new AppError wrapping err.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}
