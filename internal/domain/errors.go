package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for resolution and extraction outcomes
var (
	// ErrNoSKU indicates the extractor found no SKU in the input text
	ErrNoSKU = errors.New("no SKU found in text")

	// ErrFolderNotFound indicates the SKU has no remote folder
	ErrFolderNotFound = errors.New("no remote folder for SKU")

	// ErrAuthRequired indicates the backend rejected the call for missing
	// or expired credentials; recoverable through a sign-in
	ErrAuthRequired = errors.New("authentication required")

	// ErrCancelled indicates a resolution was invalidated or superseded
	// before it completed
	ErrCancelled = errors.New("resolution cancelled")
)

// TransientError wraps a network or rate-limit failure that is safe to
// retry. The cache retries these with backoff before surfacing them.
type TransientError struct {
	Cause error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("transient resolver failure: %v", e.Cause)
}

func (e *TransientError) Unwrap() error { return e.Cause }

// Transient wraps err as retryable. Returns nil for a nil err.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return &TransientError{Cause: err}
}

// IsTransient reports whether err is (or wraps) a TransientError.
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}

// PersistenceWarning reports that an in-memory mutation succeeded but
// writing it through to the persistence collaborator failed. Non-fatal:
// callers surface it as a warning and keep going.
type PersistenceWarning struct {
	Op    string
	Cause error
}

func (w *PersistenceWarning) Error() string {
	return fmt.Sprintf("%s not persisted: %v", w.Op, w.Cause)
}

func (w *PersistenceWarning) Unwrap() error { return w.Cause }
