package rolling

import (
	"fmt"
	"time"
)

// InsufficientDataError reports a series too short to sample the requested
// window. Callers treat it as a per-series condition, not a fatal one.
type InsufficientDataError struct {
	Have int
	Need int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient data: series has %d rows, window needs %d", e.Have, e.Need)
}

// MalformedDataError reports a non-numeric value where a count was
// expected, including the blank cells of days not yet reported.
type MalformedDataError struct {
	Field Field
	Value string
	Date  time.Time
}

func (e *MalformedDataError) Error() string {
	return fmt.Sprintf("malformed value %q for field %s on %s", e.Value, e.Field, e.Date.Format("2006-01-02"))
}

// ArithmeticError reports a calculation that cannot produce a meaningful
// result, such as a positivity rate over a zero rolling test total.
type ArithmeticError struct {
	Op string
}

func (e *ArithmeticError) Error() string {
	return "impossible calculation: " + e.Op
}
