package trustreport

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// fixtureSheet builds a small converted spreadsheet: six organisational
// columns, ten daily columns for 01..10 April 2020, and the usual summary
// and verification tail.
func fixtureSheet(t *testing.T) string {
	t.Helper()
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{"Region", "Code", "A", "B", "Name", "C"}
	for d := 1; d <= 10; d++ {
		header = append(header, fmt.Sprintf("%02d-Apr-20", d))
	}
	header = append(header, "Up to 31-Mar-20", "Total", "Awaiting verification", "Notes")
	for i := 0; i < 14; i++ {
		header = append(header, fmt.Sprintf("x%d", i))
	}

	rows := [][]string{
		header,
		trustRow("WORTHING HOSPITAL", []string{"0", "0", "1", "0", "2", "0", "0", "3", "0", ""}),
		trustRow("ST RICHARDS HOSPITAL", []string{"0", "0", "0", "-", "0", "0", "0", "0", "0", "0"}),
		trustRow("ROYAL SUSSEX COUNTY HOSPITAL", []string{"0", "1", "0", "0", "0", "0", "0", "0", "0", "4"}),
	}
	if err := w.WriteAll(rows); err != nil {
		t.Fatalf("building fixture: %v", err)
	}
	return buf.String()
}

func trustRow(name string, daily []string) []string {
	row := []string{"South East", "RX", "a", "b", name, "c"}
	row = append(row, daily...)
	row = append(row, "5", "11", "0", "n")
	for i := 0; i < 14; i++ {
		row = append(row, "0")
	}
	return row
}

func loadFixture(t *testing.T) *Sheet {
	t.Helper()
	sheet, err := Load(strings.NewReader(fixtureSheet(t)))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return sheet
}

func TestLoad(t *testing.T) {
	sheet := loadFixture(t)

	if len(sheet.Dates) != 10 {
		t.Fatalf("len(Dates) = %d, want 10", len(sheet.Dates))
	}
	if !sheet.Dates[0].Equal(time.Date(2020, 4, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Dates[0] = %s, want 2020-04-01", sheet.Dates[0])
	}
	if !sheet.Dates[9].Equal(time.Date(2020, 4, 10, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Dates[9] = %s, want 2020-04-10", sheet.Dates[9])
	}

	if len(sheet.Rows) != 3 {
		t.Fatalf("len(Rows) = %d, want 3", len(sheet.Rows))
	}
	worthing := sheet.Rows[0]
	if worthing.Name != "WORTHING HOSPITAL" {
		t.Errorf("row 0 name = %q", worthing.Name)
	}
	if worthing.Daily[7] != 3 {
		t.Errorf("Daily[7] = %d, want 3", worthing.Daily[7])
	}
	// Blanks and markers read as zero deaths.
	if worthing.Daily[9] != 0 {
		t.Errorf("blank cell = %d, want 0", worthing.Daily[9])
	}
	if sheet.Rows[1].Daily[3] != 0 {
		t.Errorf("marker cell = %d, want 0", sheet.Rows[1].Daily[3])
	}
}

func TestLoadRejectsNarrowSheet(t *testing.T) {
	if _, err := Load(strings.NewReader("a,b,c\n")); err == nil {
		t.Fatal("Load accepted a sheet without date columns")
	}
}

func TestSelectMatchesPrefixes(t *testing.T) {
	sheet := loadFixture(t)

	rows := sheet.Select([]string{"WORTHING", "ROYAL SUSSEX"})
	if len(rows) != 2 {
		t.Fatalf("selected %d rows, want 2", len(rows))
	}
	if rows[0].Name != "WORTHING HOSPITAL" || rows[1].Name != "ROYAL SUSSEX COUNTY HOSPITAL" {
		t.Errorf("selected = %q, %q", rows[0].Name, rows[1].Name)
	}

	if rows := sheet.Select([]string{"GLOUCESTER"}); len(rows) != 0 {
		t.Errorf("selected %d rows for an unlisted trust", len(rows))
	}
}

func TestLastDeath(t *testing.T) {
	tests := []struct {
		name  string
		daily []int
		want  int
	}{
		{"latest of several", []int{0, 1, 0, 2, 0}, 3},
		{"single on last day", []int{0, 0, 0, 0, 7}, 4},
		{"none", []int{0, 0, 0}, -1},
		{"empty", nil, -1},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := LastDeath(tc.daily); got != tc.want {
				t.Errorf("LastDeath = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestBuildReportRecency(t *testing.T) {
	sheet := loadFixture(t)
	rows := sheet.Select([]string{"WORTHING", "ST RICHARDS", "ROYAL SUSSEX"})

	// Four days after Worthing's last death on 08 April.
	report := sheet.BuildReport(rows, time.Date(2020, 4, 12, 0, 0, 0, 0, time.UTC))
	if len(report.Entries) != 3 {
		t.Fatalf("entries = %d, want 3", len(report.Entries))
	}
	worthing := report.Entries[0]
	if !worthing.HasDeaths || !worthing.Recent {
		t.Errorf("Worthing entry = %+v, want recent deaths", worthing)
	}
	if !worthing.LastDeath.Equal(time.Date(2020, 4, 8, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Worthing last death = %s, want 2020-04-08", worthing.LastDeath)
	}
	if stRichards := report.Entries[1]; stRichards.HasDeaths || stRichards.Recent {
		t.Errorf("St Richards entry = %+v, want no deaths", stRichards)
	}
	if !report.Attention {
		t.Error("Attention = false, want true")
	}

	// Long after every death: nothing recent.
	report = sheet.BuildReport(rows, time.Date(2020, 4, 30, 0, 0, 0, 0, time.UTC))
	if report.Attention {
		t.Error("Attention = true three weeks on, want false")
	}
	if report.Entries[0].Recent || report.Entries[2].Recent {
		t.Error("stale deaths flagged recent")
	}
}

func TestWriteExtract(t *testing.T) {
	sheet := loadFixture(t)
	rows := sheet.Select([]string{"WORTHING"})

	var buf bytes.Buffer
	if err := sheet.WriteExtract(&buf, rows); err != nil {
		t.Fatalf("WriteExtract: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("reading extract back: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("extract has %d records, want 2", len(records))
	}
	header := records[0]
	// Name, ten dailies, four summary columns.
	if len(header) != 15 {
		t.Fatalf("header has %d columns, want 15", len(header))
	}
	if header[0] != "Name" || header[1] != "01-Apr-20" || header[14] != "Notes" {
		t.Errorf("header = %v", header)
	}
	row := records[1]
	if row[0] != "WORTHING HOSPITAL" || row[3] != "1" || row[8] != "3" {
		t.Errorf("extract row = %v", row)
	}
}

func TestOutputName(t *testing.T) {
	got := OutputName("out", time.Date(2020, 11, 20, 0, 0, 0, 0, time.UTC))
	want := filepath.Join("out", "trust_deaths_20201120.csv")
	if got != want {
		t.Errorf("OutputName = %q, want %q", got, want)
	}
}
