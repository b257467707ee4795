package csv

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyInput is returned when the source has no header row.
	ErrEmptyInput = errors.New("empty input")
	// ErrUnterminatedQuote is returned when EOF is reached inside a quoted field.
	ErrUnterminatedQuote = errors.New("unterminated quoted field")
	// ErrFieldCount is returned when a row's width differs from the header's.
	ErrFieldCount = errors.New("wrong number of fields")
	// ErrDuplicateColumn is returned when the header repeats a label.
	ErrDuplicateColumn = errors.New("duplicate column")
	// ErrBadInteger is returned when a declared integer column holds text.
	ErrBadInteger = errors.New("invalid integer")
)

// IngestionError reports a source that could not be read or is structurally
// malformed. It is fatal for a run and always surfaces before any write.
type IngestionError struct {
	Source string
	Line   int // 0 when the failure is not tied to a line
	Err    error
}

func (e *IngestionError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("ingest %s: line %d: %v", e.Source, e.Line, e.Err)
	}
	return fmt.Sprintf("ingest %s: %v", e.Source, e.Err)
}

func (e *IngestionError) Unwrap() error { return e.Err }
