// Package errors provides standardized error types for table loading, derivation,
// aggregation and rendering. DataFrameError carries the failing operation, the
// column and row involved, and an optional wrapped cause.
package errors

import (
	"fmt"
)

// Kind classifies a DataFrameError.
type Kind int

const (
	// KindInvalidInput is an invalid argument to an operation.
	KindInvalidInput Kind = iota
	// KindColumnNotFound is a reference to a column the frame does not have.
	KindColumnNotFound
	// KindLoad is an unreadable or malformed record source. Fatal for the run.
	KindLoad
	// KindDerivation is a derivation function failing for some row. Fatal for the column.
	KindDerivation
	// KindEmptyGroup is a reduction over a group without rows.
	KindEmptyGroup
	// KindRender is a chart that cannot be produced. Fatal for that chart only.
	KindRender
	// KindInternal is an unexpected failure in a dependency.
	KindInternal
)

var kindNames = map[Kind]string{
	KindInvalidInput:   "invalid input",
	KindColumnNotFound: "column not found",
	KindLoad:           "load",
	KindDerivation:     "derivation",
	KindEmptyGroup:     "empty group",
	KindRender:         "render",
	KindInternal:       "internal",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// noRow marks errors that are not tied to a single row.
const noRow = -1

// DataFrameError represents standardized errors across all table operations
type DataFrameError struct {
	Kind    Kind   // Error class, matched by errors.Is against the Err* sentinels
	Op      string // Operation name (e.g., "Load", "AddColumn", "Render")
	Column  string // Column name if applicable
	Row     int    // Row index if applicable, -1 otherwise
	Message string // Human-readable error description
	Cause   error  // Underlying error cause
}

// Error implements the error interface
func (e *DataFrameError) Error() string {
	msg := fmt.Sprintf("%s operation failed", e.Op)
	if e.Column != "" {
		msg += fmt.Sprintf(" on column '%s'", e.Column)
	}
	if e.Row >= 0 {
		msg += fmt.Sprintf(" at row %d", e.Row)
	}
	msg += ": " + e.Message
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause for error wrapping support
func (e *DataFrameError) Unwrap() error {
	return e.Cause
}

// Is matches sentinels by kind, and other DataFrameErrors by kind, op, column and message.
func (e *DataFrameError) Is(target error) bool {
	df, ok := target.(*DataFrameError)
	if !ok {
		return false
	}
	if df.sentinel() {
		return e.Kind == df.Kind
	}
	return e.Kind == df.Kind && e.Op == df.Op && e.Column == df.Column && e.Message == df.Message
}

func (e *DataFrameError) sentinel() bool {
	return e.Op == "" && e.Column == "" && e.Message == ""
}

// Sentinels for errors.Is checks. Any DataFrameError of the same kind matches.
var (
	ErrLoad           = &DataFrameError{Kind: KindLoad, Row: noRow}
	ErrDerivation     = &DataFrameError{Kind: KindDerivation, Row: noRow}
	ErrEmptyGroup     = &DataFrameError{Kind: KindEmptyGroup, Row: noRow}
	ErrRender         = &DataFrameError{Kind: KindRender, Row: noRow}
	ErrColumnNotFound = &DataFrameError{Kind: KindColumnNotFound, Row: noRow}
)

// NewColumnNotFoundError creates an error for operations on non-existent columns
func NewColumnNotFoundError(op, column string) *DataFrameError {
	return &DataFrameError{
		Kind:    KindColumnNotFound,
		Op:      op,
		Column:  column,
		Row:     noRow,
		Message: "column does not exist",
	}
}

// NewInvalidInputError creates an error for invalid operation inputs
func NewInvalidInputError(op, message string) *DataFrameError {
	return &DataFrameError{
		Kind:    KindInvalidInput,
		Op:      op,
		Row:     noRow,
		Message: message,
	}
}

// NewUnsupportedTypeError creates an error for unsupported data types
func NewUnsupportedTypeError(op, typeName string) *DataFrameError {
	return &DataFrameError{
		Kind:    KindInvalidInput,
		Op:      op,
		Row:     noRow,
		Message: fmt.Sprintf("unsupported type: %s", typeName),
	}
}

// NewValidationError creates an error for input validation failures
func NewValidationError(op, column, message string) *DataFrameError {
	return &DataFrameError{
		Kind:    KindInvalidInput,
		Op:      op,
		Column:  column,
		Row:     noRow,
		Message: message,
	}
}

// NewLoadError creates an error for an unreadable or malformed source.
// line is the 1-based source line, or 0 when unknown.
func NewLoadError(source string, line int, cause error) *DataFrameError {
	msg := fmt.Sprintf("cannot load %s", source)
	if line > 0 {
		msg = fmt.Sprintf("cannot load %s (line %d)", source, line)
	}
	return &DataFrameError{
		Kind:    KindLoad,
		Op:      "Load",
		Row:     noRow,
		Message: msg,
		Cause:   cause,
	}
}

// NewDerivationError creates an error for a derivation that failed on a row.
// Pass a negative row for failures that precede row evaluation.
func NewDerivationError(column string, row int, message string, cause error) *DataFrameError {
	if row < 0 {
		row = noRow
	}
	return &DataFrameError{
		Kind:    KindDerivation,
		Op:      "AddColumn",
		Column:  column,
		Row:     row,
		Message: message,
		Cause:   cause,
	}
}

// NewEmptyGroupError creates an error for a reduction over an empty group.
func NewEmptyGroupError(op, column, groupKey string) *DataFrameError {
	return &DataFrameError{
		Kind:    KindEmptyGroup,
		Op:      op,
		Column:  column,
		Row:     noRow,
		Message: fmt.Sprintf("group %s has no values", groupKey),
	}
}

// NewRenderError creates an error for a chart that could not be produced.
func NewRenderError(chart, column, message string, cause error) *DataFrameError {
	return &DataFrameError{
		Kind:    KindRender,
		Op:      fmt.Sprintf("Render(%s)", chart),
		Column:  column,
		Row:     noRow,
		Message: message,
		Cause:   cause,
	}
}

// NewInternalError creates an error for internal operation failures
func NewInternalError(op string, cause error) *DataFrameError {
	return &DataFrameError{
		Kind:    KindInternal,
		Op:      op,
		Row:     noRow,
		Message: "internal error occurred",
		Cause:   cause,
	}
}
