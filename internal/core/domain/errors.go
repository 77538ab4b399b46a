package domain

import (
	"errors"
	"fmt"
)

// Common domain errors
var (
	ErrNotAuthenticated      = errors.New("not authenticated")
	ErrInvalidCredentialPair = errors.New("credential pair is incomplete")
	ErrInvalidTransition     = errors.New("order status transition not allowed")
	ErrAlreadyAssigned       = errors.New("order is already assigned")
	ErrInvalidStatus         = errors.New("invalid order status")
)

// Validation errors (never sent to the server)
var (
	ErrEmptyCart        = errors.New("cart is empty")
	ErrAddressRequired  = errors.New("delivery address is required")
	ErrInvalidQuantity  = errors.New("quantity must be at least 1")
	ErrPasswordMismatch = errors.New("passwords do not match")
	ErrPasswordTooShort = errors.New("password must be at least 6 characters")
	ErrFieldRequired    = errors.New("field is required")
)

// ApiError is a failure status returned by the server
type ApiError struct {
	StatusCode int
	Message    string
}

func (e *ApiError) Error() string {
	return fmt.Sprintf("api error (%d): %s", e.StatusCode, e.Message)
}

// NetworkError means the request never produced a response
type NetworkError struct {
	Method string
	Path   string
	Err    error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %s %s: %v", e.Method, e.Path, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ValidationError is a client-side rejection of user input
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Err.Error()
	}
	return e.Field + ": " + e.Err.Error()
}

func (e *ValidationError) Unwrap() error { return e.Err }

// Invalid builds a ValidationError for field
func Invalid(field string, err error) error {
	return &ValidationError{Field: field, Err: err}
}

// IsStatus reports whether err is an ApiError with the given status code
func IsStatus(err error, code int) bool {
	var apiErr *ApiError
	return errors.As(err, &apiErr) && apiErr.StatusCode == code
}

// Message returns the human-readable text a store records for err.
// Server and validation messages are shown as-is; anything else
// falls back to the operation's generic message.
func Message(err error, fallback string) string {
	if err == nil {
		return ""
	}
	var apiErr *ApiError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return vErr.Err.Error()
	}
	return fallback
}
