package database

import "errors"

var (
	// ErrNotConnected is returned when an operation runs against a closed or absent connection
	ErrNotConnected = errors.New("database: not connected")
	// ErrNotFound is returned when no contact matches the requested ID
	ErrNotFound = errors.New("database: contact not found")
	// ErrInvalidContact is returned when first or last name is missing
	ErrInvalidContact = errors.New("database: first and last name are required")
)

// ConnectionError reports a failure to open or close the store connection,
// including invalid connection settings.
type ConnectionError struct {
	Op  string
	Err error
}

func (e *ConnectionError) Error() string {
	return "connection " + e.Op + ": " + e.Err.Error()
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// StorageError reports a failed statement: constraint violation, malformed
// query, or a connection that is gone.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return "storage " + e.Op + ": " + e.Err.Error()
}

func (e *StorageError) Unwrap() error { return e.Err }
