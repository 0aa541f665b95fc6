// Package errors provides structured error handling for the statekit library.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"
)

// ErrorKind identifies the category of an error.
type ErrorKind int

const (
	// KindUnknown indicates an error of unknown type.
	KindUnknown ErrorKind = iota
	// KindValidation indicates a candidate value failed a field rule.
	KindValidation
	// KindWrite indicates the external write step reported failure.
	KindWrite
	// KindBusy indicates a commit was attempted while another was in flight.
	KindBusy
	// KindTimeout indicates a commit exceeded its deadline or was cancelled.
	KindTimeout
	// KindClosed indicates a mutation was attempted on a closed store.
	KindClosed
	// KindObserver indicates one or more observers failed during fan-out.
	KindObserver
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindWrite:
		return "write"
	case KindBusy:
		return "busy"
	case KindTimeout:
		return "timeout"
	case KindClosed:
		return "closed"
	case KindObserver:
		return "observer"
	default:
		return "unknown"
	}
}

// StoreError represents a structured error raised by a state store.
type StoreError struct {
	// Op is the operation that failed (e.g., "store.Commit").
	Op string
	// Kind categorizes the error.
	Kind ErrorKind
	// Field is the field involved, if the error is field-scoped.
	Field string
	// Err is the underlying error.
	Err error
	// Timestamp is when the error occurred.
	Timestamp time.Time
}

func (e *StoreError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s [%s] field=%s: %v", e.Op, e.Kind, e.Field, e.Err)
	}
	return fmt.Sprintf("%s [%s]: %v", e.Op, e.Kind, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// IsKind reports whether err or any error in its chain is a StoreError
// of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var se *StoreError
	if stderrors.As(err, &se) {
		return se.Kind == kind
	}
	return false
}

// FieldError describes a single field failing a single rule.
type FieldError struct {
	// Field is the candidate field name.
	Field string
	// Rule is the name of the rule that rejected the value.
	Rule string
	// Err is the underlying rule error.
	Err error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("field %q failed rule %q: %v", e.Field, e.Rule, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// ValidationErrors is the batch of all field failures from one commit attempt.
// Every failing field is reported, not just the first.
type ValidationErrors struct {
	Failures []*FieldError
}

func (e *ValidationErrors) Error() string {
	if len(e.Failures) == 0 {
		return "validation failed"
	}
	parts := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		parts[i] = f.Error()
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(parts, "; "))
}

// Fields returns the names of all failing fields in report order.
func (e *ValidationErrors) Fields() []string {
	fields := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		fields[i] = f.Field
	}
	return fields
}

// Has reports whether the batch contains a failure for the given field.
func (e *ValidationErrors) Has(field string) bool {
	for _, f := range e.Failures {
		if f.Field == field {
			return true
		}
	}
	return false
}

// ObserverError describes a single observer failing during one fan-out cycle.
type ObserverError struct {
	// Index is the position of the observer in the delivery order.
	Index int
	// Recovered is the value recovered from the observer's panic.
	Recovered any
	// StackTrace contains the call stack captured at recovery.
	StackTrace string
	// Timestamp is when the failure occurred.
	Timestamp time.Time
}

func (e *ObserverError) Error() string {
	return fmt.Sprintf("observer %d panicked: %v", e.Index, e.Recovered)
}

// ObserverErrors is the batch of observer failures collected during one
// notification cycle. A non-empty batch never prevented delivery to the
// remaining observers, and never means the state change was rolled back.
type ObserverErrors struct {
	Failures []*ObserverError
}

func (e *ObserverErrors) Error() string {
	return fmt.Sprintf("%d observer(s) failed during notification", len(e.Failures))
}

// Len returns the number of captured observer failures.
func (e *ObserverErrors) Len() int {
	return len(e.Failures)
}

// IsValidation reports whether err carries a ValidationErrors batch.
func IsValidation(err error) bool {
	var ve *ValidationErrors
	return stderrors.As(err, &ve)
}
