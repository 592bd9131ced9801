// Package common defines the error taxonomy shared by the repository,
// service and transport layers of the users service. Callers should use
// errors.Is / errors.As to match these values.
package common

import "errors"

var (
	// Connection errors (store unreachable or authentication failure).
	ErrConnection = errors.New("database connection failed")

	// Validation errors (missing required fields, malformed input).
	ErrValidation = errors.New("validation error")

	// Repository-level errors.
	ErrorNotFound    = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
)

// StoreError is an unclassified failure reported by the store.
// Message is safe to return to API clients; Err keeps the full cause for logs.
type StoreError struct {
	Message string
	Err     error
}

func (e *StoreError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Err.Error()
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// PublicMessage returns the client-facing message of an unclassified store
// error, or fallback when err carries none.
func PublicMessage(err error, fallback string) string {
	var se *StoreError
	if errors.As(err, &se) && se.Message != "" {
		return se.Message
	}
	return fallback
}
