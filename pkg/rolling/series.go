// Package rolling derives rolling-window statistics from cumulative
// epidemiological count series as published by the coronavirus dashboard:
// rolling totals, rolling deltas and test-positivity rates. All functions
// are pure; callers own logging and alert decisions.
package rolling

import (
	"strconv"
	"strings"
	"time"
)

// Field names one logical column of a fetched series. The mapping from
// these names to dashboard metric identifiers is resolved at the data
// source boundary; everything past that boundary works with Fields only.
type Field string

const (
	FieldDate           Field = "Date"
	FieldCases          Field = "Cases"
	FieldDeaths         Field = "Deaths"
	FieldPillarOneTests Field = "PillarOneTests"
	FieldPillarTwoTests Field = "PillarTwoTests"
	FieldNew            Field = "New"
)

// Row is one published day of a series: the specimen or publish date plus
// the raw value for each requested field. Values stay strings because the
// dashboard publishes blank cells for days whose counts are not reported
// yet, and blank must remain distinguishable from zero.
type Row struct {
	Date   time.Time
	Values map[Field]string
}

// Has reports whether the row carries a published value for f.
func (r Row) Has(f Field) bool {
	return strings.TrimSpace(r.Values[f]) != ""
}

// Float parses the row's value for f as a count. A blank or otherwise
// non-numeric value yields a MalformedDataError.
func (r Row) Float(f Field) (float64, error) {
	raw := strings.TrimSpace(r.Values[f])
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, &MalformedDataError{Field: f, Value: raw, Date: r.Date}
	}
	return v, nil
}

// Series is a cumulative count series ordered newest-first, exactly as the
// dashboard delivers it. Chronological (oldest-first) views are derived
// with Chronological.
type Series []Row

// SkipLeadingIncomplete drops rows from the newest end of the series until
// the first row carrying a published value for f. The dashboard lists days
// whose counts are not final yet as blank; left in place they would be
// sampled into windows and corrupt the arithmetic. Returns an empty series
// when no row carries the field.
func SkipLeadingIncomplete(s Series, f Field) Series {
	for i := range s {
		if s[i].Has(f) {
			return s[i:]
		}
	}
	return Series{}
}

// Chronological returns a copy of the series reordered oldest-first.
func (s Series) Chronological() Series {
	out := make(Series, len(s))
	for i := range s {
		out[len(s)-1-i] = s[i]
	}
	return out
}
