// Package dashboard provides integration with the UK coronavirus dashboard
// API for cumulative and daily count series.
package dashboard

import (
	"strings"

	"github.com/ukcovid/covidwatch/pkg/rolling"
)

// Structure maps logical field names to the dashboard metric identifiers
// backing them. The API echoes the logical names back as column headers,
// so everything downstream of the client deals with fields only and a
// metric can be renamed in one place.
type Structure map[rolling.Field]string

// Predefined request structures for the series the monitor consumes.
var (
	// OverviewStructure requests the national cumulative series together
	// with the pillar test totals needed for positivity rates.
	OverviewStructure = Structure{
		rolling.FieldDate:           "date",
		rolling.FieldCases:          "cumCasesByPublishDate",
		rolling.FieldDeaths:         "cumDeaths28DaysByPublishDate",
		rolling.FieldPillarOneTests: "cumPillarOneTestsByPublishDate",
		rolling.FieldPillarTwoTests: "cumPillarTwoTestsByPublishDate",
	}

	// CasesStructure requests an area's cumulative cases by specimen date.
	CasesStructure = Structure{
		rolling.FieldDate:  "date",
		rolling.FieldCases: "cumCasesBySpecimenDate",
	}

	// DeathsStructure requests cumulative deaths within 28 days of a
	// positive test.
	DeathsStructure = Structure{
		rolling.FieldDate:   "date",
		rolling.FieldDeaths: "cumDeaths28DaysByPublishDate",
	}

	// NewCasesStructure requests the daily new case counts the growth
	// detector smooths.
	NewCasesStructure = Structure{
		rolling.FieldDate: "date",
		rolling.FieldNew:  "newCasesByPublishDate",
	}
)

// fields returns the logical names in the structure, date first, so error
// messages read consistently.
func (s Structure) fields() []rolling.Field {
	out := make([]rolling.Field, 0, len(s))
	if _, ok := s[rolling.FieldDate]; ok {
		out = append(out, rolling.FieldDate)
	}
	for f := range s {
		if f != rolling.FieldDate {
			out = append(out, f)
		}
	}
	return out
}

// Filter selects the area whose series is requested.
type Filter struct {
	AreaType string
	AreaName string
}

// OverviewFilter selects the whole-UK series.
var OverviewFilter = Filter{AreaType: "overview"}

// AreaFilter selects one lower-tier local authority by name.
func AreaFilter(name string) Filter {
	return Filter{AreaType: "ltla", AreaName: name}
}

// encode renders the filter in the dashboard's semicolon-joined form, for
// example "areaType=ltla;areaName=Worthing".
func (f Filter) encode() string {
	parts := []string{"areaType=" + f.AreaType}
	if f.AreaName != "" {
		parts = append(parts, "areaName="+f.AreaName)
	}
	return strings.Join(parts, ";")
}

// Label names the filter in diagnostics.
func (f Filter) Label() string {
	if f.AreaName != "" {
		return f.AreaName
	}
	return f.AreaType
}
