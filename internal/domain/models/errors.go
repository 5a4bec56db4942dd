package models

import (
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyTable is returned when a table would have no rows.
var ErrEmptyTable = errors.New("table has no rows")

// SchemaError reports a table that does not carry usable OHLCV columns.
type SchemaError struct {
	Missing []string // required columns absent, canonical order
	Column  string   // column holding a non-numeric value
	Row     int
	Value   any
}

func (e *SchemaError) Error() string {
	if len(e.Missing) > 0 {
		return fmt.Sprintf("missing required columns: [%s]", strings.Join(e.Missing, ", "))
	}
	return fmt.Sprintf("invalid value %v for column %q at row %d", e.Value, e.Column, e.Row)
}
