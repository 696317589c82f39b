// Package errs defines the error taxonomy shared by every layer of the
// reader.  Callers test for a class of failure with [errors.Is] against the
// sentinels, and recover the details with [errors.As] against the typed
// wrappers.
package errs

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingPart reports that a required archive part is absent.
	ErrMissingPart = errors.New("missing archive part")
	// ErrMalformedReference reports a cell or range address that does not
	// decode.
	ErrMalformedReference = errors.New("malformed cell reference")
	// ErrMalformedSheet reports a worksheet missing a structurally required
	// attribute (row index, cell reference) or carrying an impossible one.
	ErrMalformedSheet = errors.New("malformed worksheet")
	// ErrOutOfRangeIndex reports a shared-string or style index beyond the
	// bounds of its table.
	ErrOutOfRangeIndex = errors.New("index out of range")
	// ErrUnsupportedContainer reports input that is not an OpenXML
	// spreadsheet container.
	ErrUnsupportedContainer = errors.New("unsupported container format")
	// ErrRowGapExceeded reports a jump in row indices larger than the
	// configured maximum number of synthesized empty rows.
	ErrRowGapExceeded = errors.New("row gap exceeds limit")
)

// PartError describes a failure tied to one named archive part.
type PartError struct {
	Part string
	Err  error
}

func (e *PartError) Error() string {
	return fmt.Sprintf("part %q: %v", e.Part, e.Err)
}

func (e *PartError) Unwrap() error {
	return e.Err
}

// MissingPart returns a PartError wrapping ErrMissingPart.
func MissingPart(part string) *PartError {
	return &PartError{Part: part, Err: ErrMissingPart}
}

// ReferenceError describes an address string that failed to decode.
type ReferenceError struct {
	Ref    string
	Reason string
}

func (e *ReferenceError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("%v: %q", ErrMalformedReference, e.Ref)
	}
	return fmt.Sprintf("%v: %q: %s", ErrMalformedReference, e.Ref, e.Reason)
}

func (e *ReferenceError) Unwrap() error {
	return ErrMalformedReference
}

// SheetError attributes a failure to one worksheet and the component that
// was processing it ("dimension", "rows", "hyperlinks").
type SheetError struct {
	Sheet     string
	Component string
	Err       error
}

func (e *SheetError) Error() string {
	return fmt.Sprintf("sheet %q (%s): %v", e.Sheet, e.Component, e.Err)
}

func (e *SheetError) Unwrap() error {
	return e.Err
}

// NewSheetError creates a new SheetError.
func NewSheetError(sheet, component string, err error) *SheetError {
	return &SheetError{
		Sheet:     sheet,
		Component: component,
		Err:       err,
	}
}

// Malformed returns an error wrapping ErrMalformedSheet with a formatted
// description.
func Malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformedSheet, fmt.Sprintf(format, args...))
}

// OutOfRange returns an error wrapping ErrOutOfRangeIndex for index idx of a
// table holding n entries.
func OutOfRange(table string, idx, n int) error {
	return fmt.Errorf("%w: %s index %d, table has %d entries", ErrOutOfRangeIndex, table, idx, n)
}
