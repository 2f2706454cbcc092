package ingest

import (
	"fmt"
	"strings"
)

// DecodeError reports malformed CSV content. Line is 1-based and counts the header.
type DecodeError struct {
	Line   int
	Column string
	Err    error
}

func (e *DecodeError) Error() string {
	switch {
	case e.Line > 0 && e.Column != "":
		return fmt.Sprintf("line %d, column %s: %v", e.Line, e.Column, e.Err)
	case e.Line > 0:
		return fmt.Sprintf("line %d: %v", e.Line, e.Err)
	default:
		return e.Err.Error()
	}
}

func (e *DecodeError) Unwrap() error { return e.Err }

// RowCountError reports a file whose record count is outside [MinRows, MaxRows].
type RowCountError struct {
	Count int
}

func (e *RowCountError) Error() string {
	return fmt.Sprintf("row count %d is outside the allowed range [%d, %d]", e.Count, MinRows, MaxRows)
}

// ValidationError collects every constraint violation found in a file.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Messages, "; ")
}
