package asnranger

import (
	"errors"
	"fmt"
)

// ErrMalformedTable is returned when records handed to NewTable cannot form a
// valid range table.
var ErrMalformedTable = errors.New("malformed range table")

// MalformedTableError describes the first offending record found while
// building a table. Index is the record's input position for invalid bounds
// and its position after sorting for overlaps.
type MalformedTableError struct {
	Index  int
	Record Record
	Reason string
}

func (e *MalformedTableError) Error() string {
	return fmt.Sprintf("%s: record %d (%s): %s", ErrMalformedTable, e.Index, e.Record, e.Reason)
}

func (e *MalformedTableError) Unwrap() error {
	return ErrMalformedTable
}
