package service

import (
	"errors"
	"fmt"
)

var ErrInvalidCredentials = errors.New("invalid login or password")

// ValidationError is returned before any persistence call when the order form is incomplete.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// PersistenceError wraps a store failure. Its text carries the cause for the operator.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("failed to %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
