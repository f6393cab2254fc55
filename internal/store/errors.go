package store

import (
	"errors"
	"fmt"
)

// ErrPersistence is the error kind for every failure of the underlying store:
// an unreachable database, a violated constraint or a failed transaction.
var ErrPersistence = errors.New("persistence error")

// PersistenceError wraps a store failure with the operation that produced it.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrPersistence, e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// Is matches ErrPersistence so callers can test the kind without a type assertion.
func (e *PersistenceError) Is(target error) bool {
	return target == ErrPersistence
}

// Persistence wraps err as a PersistenceError for op. A nil err returns nil and an
// existing PersistenceError is returned unchanged.
func Persistence(op string, err error) error {
	if err == nil {
		return nil
	}

	var pe *PersistenceError
	if errors.As(err, &pe) {
		return err
	}

	return &PersistenceError{Op: op, Err: err}
}
