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

// ErrUnauthorized indicates the caller has no valid session.
var ErrUnauthorized = errors.New("unauthorized")

// ErrConflict indicates the request conflicts with the current state of the resource.
var ErrConflict = errors.New("conflict")

// ErrInternal is returned for unexpected datastore or programming failures.
var ErrInternal = errors.New("internal error")

// ErrInsufficientFunds indicates a transfer would overdraw the source fund.
var ErrInsufficientFunds = errors.New("insufficient funds")

// ErrAlreadyArchived indicates an archive was requested for an archived entity.
var ErrAlreadyArchived = fmt.Errorf("%w: already archived", ErrConflict)

// ErrAlreadyActive indicates a restore was requested for an active entity.
var ErrAlreadyActive = fmt.Errorf("%w: already active", ErrConflict)

// AppError carries an HTTP-ish status code alongside the wrapped cause.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError wraps err with a status code and message.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}
