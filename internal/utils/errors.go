package utils

import (
	"errors"
	"fmt"
)

type ErrorKind string

const (
	KindValidation    ErrorKind = "ValidationError"
	KindNotFound      ErrorKind = "NotFoundError"
	KindAuthorization ErrorKind = "AuthorizationError"
	KindState         ErrorKind = "StateError"
	KindConflict      ErrorKind = "ConflictError"
)

// AppError is an expected, caller-recoverable failure of a swap operation.
type AppError struct {
	Kind    ErrorKind         `json:"kind"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
	Err     error             `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetail returns e with key set in Details.
func (e *AppError) WithDetail(key, value string) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

func NewValidationError(message string) *AppError {
	return &AppError{Kind: KindValidation, Message: message}
}

func NewNotFoundError(resource, id string) *AppError {
	return (&AppError{Kind: KindNotFound, Message: resource + " not found"}).WithDetail("id", id)
}

func NewAuthorizationError(message string) *AppError {
	return &AppError{Kind: KindAuthorization, Message: message}
}

func NewStateError(swapID, expected, actual string) *AppError {
	return (&AppError{
		Kind:    KindState,
		Message: fmt.Sprintf("swap is %s, expected %s", actual, expected),
	}).WithDetail("swap_id", swapID).WithDetail("expected_status", expected).WithDetail("actual_status", actual)
}

func NewConflictError(message string) *AppError {
	return &AppError{Kind: KindConflict, Message: message}
}

// KindOf returns the kind of the first AppError in err's chain, or "".
func KindOf(err error) ErrorKind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return ""
}

func IsKind(err error, kind ErrorKind) bool {
	return KindOf(err) == kind
}

func IsNotFound(err error) bool {
	return IsKind(err, KindNotFound)
}
