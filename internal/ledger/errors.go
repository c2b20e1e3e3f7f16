package ledger

import (
	"errors"
	"fmt"

	"proteinbuddy/internal/repository"
)

// Not-found conditions reported by the store
var (
	ErrAccountNotFound = repository.ErrAccountNotFound
	ErrDayNotFound     = repository.ErrDayNotFound
)

// ValidationError reports bad user input
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// StorageError reports a failed store call. The operation was aborted and
// can be retried.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// ConsistencyWarning describes a day whose persisted total disagreed with its
// entries. The ledger repairs and logs these; they are never returned.
type ConsistencyWarning struct {
	Email  string
	Day    string
	Reason string
}

func (w *ConsistencyWarning) Error() string {
	return fmt.Sprintf("inconsistent day %s for %s: %s", w.Day, w.Email, w.Reason)
}

// IsNotFound reports whether err means the account or day does not exist
func IsNotFound(err error) bool {
	return errors.Is(err, ErrAccountNotFound) || errors.Is(err, ErrDayNotFound)
}

// storageError wraps a store failure for op, passing not-found and
// validation errors through untouched
func storageError(op string, err error) error {
	if err == nil {
		return nil
	}
	var validationErr *ValidationError
	if IsNotFound(err) || errors.As(err, &validationErr) {
		return err
	}
	return &StorageError{Op: op, Err: err}
}
