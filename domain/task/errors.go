package task

import (
	"errors"
	"fmt"
)

// Sentinel errors for task operations.
var (
	ErrNotFound = errors.New("task not found")
	ErrInvalid  = errors.New("invalid task request")
	ErrStore    = errors.New("task store failure")
)

// Kind classifies the outcome of a task operation.
type Kind string

const (
	KindOK           Kind = "ok"
	KindNotFound     Kind = "not_found"
	KindValidation   Kind = "validation_error"
	KindStoreFailure Kind = "store_failure"
)

// ValidationError reports a rejected input field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalid
}

// StoreError wraps a failure reported by the backing store.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

func (e *StoreError) Is(target error) bool {
	return target == ErrStore
}

// NotFound returns an error matching ErrNotFound that names the id.
func NotFound(id string) error {
	return fmt.Errorf("%w with ID: %s", ErrNotFound, id)
}

// KindOf classifies err. Errors outside the taxonomy count as store failures.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindOK
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrInvalid):
		return KindValidation
	default:
		return KindStoreFailure
	}
}

// kindError is an error rebuilt from a kind and message received over the wire.
type kindError struct {
	kind    Kind
	message string
}

func (e *kindError) Error() string {
	return e.message
}

func (e *kindError) Is(target error) bool {
	switch e.kind {
	case KindNotFound:
		return target == ErrNotFound
	case KindValidation:
		return target == ErrInvalid
	default:
		return target == ErrStore
	}
}

// ErrorFromKind rebuilds an error of the given kind. It returns nil for KindOK.
func ErrorFromKind(kind Kind, message string) error {
	if kind == KindOK || kind == "" {
		return nil
	}
	return &kindError{kind: kind, message: message}
}
