package review

import (
	"errors"
	"fmt"
)

// Kind classifies review errors so callers can branch on the failure category.
type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindNotFound
	KindNotPersisted
	KindStore
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindNotPersisted:
		return "not_persisted"
	case KindStore:
		return "store"
	default:
		return "unknown"
	}
}

var (
	ErrValidation   = errors.New("invalid review")
	ErrNotFound     = errors.New("review not found")
	ErrNotPersisted = errors.New("review has not been saved")
	ErrStore        = errors.New("review store failure")
)

// Reason narrows a validation failure.
type Reason string

const (
	ReasonInvalidType      Reason = "invalid-type"
	ReasonOutOfRange       Reason = "out-of-range"
	ReasonEmpty            Reason = "empty"
	ReasonUnknownReference Reason = "unknown-reference"
)

// ValidationError reports the first field that failed validation.
type ValidationError struct {
	Field   string
	Reason  Reason
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Is makes errors.Is(err, ErrValidation) hold for every ValidationError.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// StoreError wraps a failure returned by the backing store.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("review store: %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

func (e *StoreError) Is(target error) bool {
	return target == ErrStore
}

func storeErr(op string, err error) error {
	return &StoreError{Op: op, Err: err}
}

// KindOf returns the category of err, or KindUnknown for foreign errors.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindUnknown
	case errors.Is(err, ErrValidation):
		return KindValidation
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrNotPersisted):
		return KindNotPersisted
	case errors.Is(err, ErrStore):
		return KindStore
	default:
		return KindUnknown
	}
}
