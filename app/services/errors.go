package services

import (
	"errors"
	"fmt"
)

// Sentinel errors shared by all services. Controllers translate these into
// HTTP status codes; services never see the transport layer.
var (
	// ErrNotFound: the target record does not exist, or the caller is not
	// allowed to know that it exists.
	ErrNotFound = errors.New("not found")

	// ErrForbidden: the caller is authenticated but lacks rights over the
	// target record.
	ErrForbidden = errors.New("forbidden")

	// ErrInvalidState: the operation is not legal in the record's current
	// status (e.g. cancelling a shipped order).
	ErrInvalidState = errors.New("invalid state")

	// ErrEmailTaken: registration with an address that already has an account.
	ErrEmailTaken = errors.New("email already registered")

	// ErrInvalidCredentials: login with a wrong email/password pair.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrCategoryInUse: category deletion blocked by referencing products.
	ErrCategoryInUse = errors.New("category has products and cannot be deleted")
)

// ValidationError is a semantically invalid request: empty item list,
// non-positive quantity, unknown or inactive product, insufficient stock.
// The message identifies the first offending item in input order.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func validationErrorf(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
