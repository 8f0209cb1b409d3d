// Package dberror defines the structured error type shared by the storage and
// execution layers. Every failure kind a caller may need to branch on has a code
// and an exported sentinel, so callers can test with errors.Is.
package dberror

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// ErrorCategory classifies errors by their nature and appropriate handling strategy.
type ErrorCategory int

const (
	// ErrCategoryUser covers contract violations by the caller, such as a tuple whose
	// schema does not match its table or a predicate on an unknown field.
	ErrCategoryUser ErrorCategory = iota

	// ErrCategoryTransient covers conditions that may clear up on retry.
	ErrCategoryTransient

	// ErrCategorySystem covers I/O failures and other environment problems.
	ErrCategorySystem

	// ErrCategoryData covers malformed on-disk data.
	ErrCategoryData
)

func (c ErrorCategory) String() string {
	switch c {
	case ErrCategoryUser:
		return "USER"
	case ErrCategoryTransient:
		return "TRANSIENT"
	case ErrCategorySystem:
		return "SYSTEM"
	case ErrCategoryData:
		return "DATA"
	default:
		return "UNKNOWN"
	}
}

// Error codes.
const (
	CodeSchemaMismatch       = "SCHEMA_MISMATCH"
	CodeNotFound             = "NOT_FOUND"
	CodePageFull             = "PAGE_FULL"
	CodeSlotEmpty            = "SLOT_EMPTY"
	CodeWrongPage            = "WRONG_PAGE"
	CodeShortRead            = "SHORT_READ"
	CodeIOFailure            = "IO_FAILURE"
	CodeInvalidPage          = "INVALID_PAGE"
	CodeIteratorState        = "ITERATOR_STATE"
	CodeNoMoreTuples         = "NO_MORE_TUPLES"
	CodeUnsupportedAggregate = "UNSUPPORTED_AGGREGATE"
	CodeCacheExhausted       = "CACHE_EXHAUSTED"
	CodeCorruptFile          = "CORRUPT_FILE"
	CodeInvalidArgument      = "INVALID_ARGUMENT"
)

// Sentinels for errors.Is. Matching is by Code, so a sentinel matches any DBError
// carrying the same code regardless of message or detail.
var (
	ErrSchemaMismatch       = New(ErrCategoryUser, CodeSchemaMismatch, "schema mismatch")
	ErrNotFound             = New(ErrCategoryUser, CodeNotFound, "not found")
	ErrPageFull             = New(ErrCategoryUser, CodePageFull, "page is full")
	ErrSlotEmpty            = New(ErrCategoryUser, CodeSlotEmpty, "slot is already empty")
	ErrWrongPage            = New(ErrCategoryUser, CodeWrongPage, "tuple is not on this page")
	ErrShortRead            = New(ErrCategoryData, CodeShortRead, "short page read")
	ErrIOFailure            = New(ErrCategorySystem, CodeIOFailure, "i/o failure")
	ErrInvalidPage          = New(ErrCategoryUser, CodeInvalidPage, "page number out of range")
	ErrIteratorState        = New(ErrCategoryUser, CodeIteratorState, "iterator not opened")
	ErrNoMoreTuples         = New(ErrCategoryUser, CodeNoMoreTuples, "no more tuples")
	ErrUnsupportedAggregate = New(ErrCategoryUser, CodeUnsupportedAggregate, "unsupported aggregate")
	ErrCacheExhausted       = New(ErrCategoryTransient, CodeCacheExhausted, "buffer pool cannot evict a page")
	ErrCorruptFile          = New(ErrCategoryData, CodeCorruptFile, "corrupt table file")
	ErrInvalidArgument      = New(ErrCategoryUser, CodeInvalidArgument, "invalid argument")
)

// DBError represents a structured database error with context information.
type DBError struct {
	// Code is a unique identifier for this error kind (e.g. "PAGE_FULL").
	Code string

	// Category classifies the error for handling.
	Category ErrorCategory

	// Message is a short description of the error kind.
	Message string

	// Detail describes this specific occurrence.
	Detail string

	// Operation names the operation in progress, e.g. "InsertTuple".
	Operation string

	// Component names where the error originated, e.g. "BufferPool".
	Component string

	// Cause is the underlying error, if any.
	Cause error

	// origin records the creation stack.
	origin error
}

// New creates a new DBError with the specified category, code and message.
func New(category ErrorCategory, code, message string) *DBError {
	return &DBError{
		Code:     code,
		Category: category,
		Message:  message,
		origin:   errors.New(message),
	}
}

// Wrap wraps an existing error with database-specific context information.
// If err is already a DBError, a copy keeping its code is returned with the missing
// operation and component filled in. Any other error becomes the Cause of a new
// DBError with the given code.
func Wrap(err error, code, operation, component string) *DBError {
	if err == nil {
		return nil
	}

	if dbErr, ok := err.(*DBError); ok {
		c := *dbErr
		if c.Operation == "" {
			c.Operation = operation
		}
		if c.Component == "" {
			c.Component = component
		}
		return &c
	}

	var inner *DBError
	if errors.As(err, &inner) {
		code = inner.Code
	}

	return &DBError{
		Code:      code,
		Category:  ErrCategorySystem,
		Message:   err.Error(),
		Operation: operation,
		Component: component,
		Cause:     err,
		origin:    errors.WithStack(err),
	}
}

// Detailf returns a copy of e carrying a formatted detail and a fresh stack.
// Sentinels are never mutated.
//
// Example:
//
//	return dberror.ErrPageFull.Detailf("page %s has no empty slot", pid)
func (e *DBError) Detailf(format string, args ...any) *DBError {
	c := *e
	c.Detail = fmt.Sprintf(format, args...)
	c.origin = errors.New(c.Detail)
	return &c
}

// WithCause returns a copy of e wrapping cause.
func (e *DBError) WithCause(cause error) *DBError {
	c := *e
	c.Cause = cause
	c.origin = errors.WithStack(cause)
	return &c
}

// At returns a copy of e annotated with the operation and component.
func (e *DBError) At(operation, component string) *DBError {
	c := *e
	c.Operation = operation
	c.Component = component
	return &c
}

// Error implements the error interface.
//
// Format: [CODE] Message: Detail (operation: Op, component: Comp) caused by: cause
func (e *DBError) Error() string {
	var b strings.Builder

	fmt.Fprintf(&b, "[%s] %s", e.Code, e.Message)

	if e.Detail != "" {
		fmt.Fprintf(&b, ": %s", e.Detail)
	}

	if e.Operation != "" {
		fmt.Fprintf(&b, " (operation: %s", e.Operation)
		if e.Component != "" {
			fmt.Fprintf(&b, ", component: %s", e.Component)
		}
		b.WriteString(")")
	}

	if e.Cause != nil {
		fmt.Fprintf(&b, " caused by: %v", e.Cause)
	}

	return b.String()
}

// Unwrap returns the underlying cause.
func (e *DBError) Unwrap() error {
	return e.Cause
}

// Is matches any DBError with the same code.
func (e *DBError) Is(target error) bool {
	t, ok := target.(*DBError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// FormatStack returns the stack recorded when the error was created.
func (e *DBError) FormatStack() string {
	if e.origin == nil {
		return ""
	}
	return fmt.Sprintf("%+v", e.origin)
}

// HasCode reports whether any DBError in err's chain carries code.
func HasCode(err error, code string) bool {
	var dbErr *DBError
	for err != nil {
		if errors.As(err, &dbErr) {
			if dbErr.Code == code {
				return true
			}
			err = dbErr.Cause
			continue
		}
		return false
	}
	return false
}

// CodeOf returns the code of the first DBError in err's chain, or "".
func CodeOf(err error) string {
	var dbErr *DBError
	if errors.As(err, &dbErr) {
		return dbErr.Code
	}
	return ""
}
