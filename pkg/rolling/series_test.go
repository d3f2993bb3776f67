package rolling

import (
	"errors"
	"testing"
	"time"
)

func TestSkipLeadingIncomplete(t *testing.T) {
	tests := []struct {
		name    string
		values  []string
		wantLen int
		wantTop string
	}{
		{"no blanks", []string{"300", "200", "100"}, 3, "300"},
		{"two leading blanks", []string{"", "", "300", "200", "100"}, 3, "300"},
		{"interior blank kept", []string{"300", "", "100"}, 3, "300"},
		{"all blank", []string{"", "", ""}, 0, ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := cumulativeSeries(FieldDeaths, tc.values...)
			got := SkipLeadingIncomplete(s, FieldDeaths)
			if len(got) != tc.wantLen {
				t.Fatalf("len = %d, want %d", len(got), tc.wantLen)
			}
			if tc.wantLen > 0 && got[0].Values[FieldDeaths] != tc.wantTop {
				t.Errorf("newest row = %q, want %q", got[0].Values[FieldDeaths], tc.wantTop)
			}
		})
	}
}

func TestSkipLeadingIncompleteIgnoresOtherFields(t *testing.T) {
	base := time.Date(2020, 11, 20, 0, 0, 0, 0, time.UTC)
	s := Series{
		{Date: base, Values: map[Field]string{FieldCases: "90", FieldDeaths: ""}},
		{Date: base.AddDate(0, 0, -1), Values: map[Field]string{FieldCases: "80", FieldDeaths: "5"}},
	}

	got := SkipLeadingIncomplete(s, FieldDeaths)
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1", len(got))
	}
	if !got[0].Date.Equal(base.AddDate(0, 0, -1)) {
		t.Errorf("newest remaining row dated %s, want %s", got[0].Date, base.AddDate(0, 0, -1))
	}
}

func TestChronologicalReversesOrder(t *testing.T) {
	s := cumulativeSeries(FieldCases, "300", "200", "100")
	c := s.Chronological()
	if len(c) != 3 {
		t.Fatalf("len = %d, want 3", len(c))
	}
	if c[0].Values[FieldCases] != "100" || c[2].Values[FieldCases] != "300" {
		t.Errorf("chronological order = [%s %s %s], want [100 200 300]",
			c[0].Values[FieldCases], c[1].Values[FieldCases], c[2].Values[FieldCases])
	}
	// The source series must be left untouched.
	if s[0].Values[FieldCases] != "300" {
		t.Errorf("source series mutated: newest = %s", s[0].Values[FieldCases])
	}
}

func TestRowFloat(t *testing.T) {
	row := Row{Date: time.Date(2020, 11, 20, 0, 0, 0, 0, time.UTC), Values: map[Field]string{
		FieldCases:  "1234",
		FieldDeaths: "12.5",
		FieldNew:    "oops",
	}}

	if v, err := row.Float(FieldCases); err != nil || v != 1234 {
		t.Errorf("Float(Cases) = %v, %v, want 1234, nil", v, err)
	}
	if v, err := row.Float(FieldDeaths); err != nil || v != 12.5 {
		t.Errorf("Float(Deaths) = %v, %v, want 12.5, nil", v, err)
	}

	_, err := row.Float(FieldNew)
	var malformed *MalformedDataError
	if !errors.As(err, &malformed) {
		t.Fatalf("Float(New) error = %v, want MalformedDataError", err)
	}
	if malformed.Value != "oops" {
		t.Errorf("error value = %q, want %q", malformed.Value, "oops")
	}
}
