package reference

import (
	"errors"
	"fmt"
)

var (
	// ErrUnreachable is returned when the reference source cannot be read or fetched
	ErrUnreachable = errors.New("reference source unreachable")

	// ErrMissingField is returned when a record lacks a required field
	ErrMissingField = errors.New("missing required field")

	// ErrMalformed is returned when the document or a field value cannot be interpreted
	ErrMalformed = errors.New("malformed reference data")
)

// DataLoadError describes why reference data could not be loaded
type DataLoadError struct {
	Source string // File path or URL
	Record int    // 0-based record index, -1 for document-level problems
	Field  string // Offending field, if any
	Err    error
}

func (e *DataLoadError) Error() string {
	msg := "load reference data from " + e.Source
	if e.Record >= 0 {
		msg += fmt.Sprintf(": record %d", e.Record)
	}
	if e.Field != "" {
		msg += fmt.Sprintf(": field %q", e.Field)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *DataLoadError) Unwrap() error {
	return e.Err
}

func documentError(source string, err error) *DataLoadError {
	return &DataLoadError{Source: source, Record: -1, Err: err}
}

func fieldError(source string, record int, field string, err error) *DataLoadError {
	return &DataLoadError{Source: source, Record: record, Field: field, Err: err}
}
