// Package trustreport reads the converted announced-deaths-by-trust
// spreadsheet, finds each monitored trust's most recent death, and
// extracts the monitored rows into a dated CSV for further review.
package trustreport

import (
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Fixed shape of the converted NHS spreadsheet: a block of organisational
// columns, one daily count column per date, then summary and verification
// columns. The extract keeps the first four summary columns (period
// totals) after the dailies.
const (
	nameColumn      = 4
	firstDateColumn = 6
	trailingColumns = 18
	extractTrailing = 14
)

// dateLayout is how the converted sheet labels its daily columns.
const dateLayout = "02-Jan-06"

// recentWindow is how far back a death still counts as recent.
const recentWindow = 7 * 24 * time.Hour

// Sheet is one parsed spreadsheet: the daily column dates and every trust
// row, with raw cells retained for the extract.
type Sheet struct {
	Dates  []time.Time
	Rows   []TrustRow
	header []string
}

// TrustRow is one trust's row: the announced deaths per day aligned with
// the sheet's dates. Cells that do not parse as counts (blanks, footnote
// markers) are read as zero.
type TrustRow struct {
	Name  string
	Daily []int
	cells []string
}

// Load parses a converted spreadsheet.
func Load(r io.Reader) (*Sheet, error) {
	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading trust sheet: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("trust sheet is empty")
	}

	header := records[0]
	minColumns := firstDateColumn + trailingColumns + 1
	if len(header) < minColumns {
		return nil, fmt.Errorf("trust sheet has %d columns, need at least %d", len(header), minColumns)
	}

	dateCells := header[firstDateColumn : len(header)-trailingColumns]
	dates := make([]time.Time, len(dateCells))
	for i, cell := range dateCells {
		d, err := time.Parse(dateLayout, strings.TrimSpace(cell))
		if err != nil {
			return nil, fmt.Errorf("parsing date column %d: %w", firstDateColumn+i, err)
		}
		dates[i] = d
	}

	sheet := &Sheet{Dates: dates, header: header}
	for _, record := range records[1:] {
		row := TrustRow{
			Name:  strings.TrimSpace(record[nameColumn]),
			Daily: make([]int, len(dates)),
			cells: record,
		}
		for i, cell := range record[firstDateColumn : len(record)-trailingColumns] {
			if v, err := strconv.Atoi(strings.TrimSpace(cell)); err == nil {
				row.Daily[i] = v
			}
		}
		sheet.Rows = append(sheet.Rows, row)
	}
	return sheet, nil
}

// Select returns the rows for the monitored trusts, in sheet order. Trust
// names are matched as prefixes, the way the sheet spells out site names
// that configurations abbreviate.
func (s *Sheet) Select(trusts []string) []TrustRow {
	var out []TrustRow
	for _, row := range s.Rows {
		for _, trust := range trusts {
			if strings.HasPrefix(row.Name, trust) {
				out = append(out, row)
				break
			}
		}
	}
	return out
}

// LastDeath returns the index of the most recent day with at least one
// death, or -1 when the row records none at all.
func LastDeath(daily []int) int {
	last := -1
	for i, v := range daily {
		if v > 0 {
			last = i
		}
	}
	return last
}

// Entry is one trust's report line.
type Entry struct {
	Name      string
	LastDeath time.Time
	HasDeaths bool
	Recent    bool
}

// Report summarizes the selected rows against today's date. Attention is
// set when any trust saw a death within the recent window.
type Report struct {
	Entries   []Entry
	Attention bool
}

// BuildReport derives the report for the selected rows.
func (s *Sheet) BuildReport(rows []TrustRow, today time.Time) *Report {
	report := &Report{}
	for _, row := range rows {
		entry := Entry{Name: row.Name}
		if i := LastDeath(row.Daily); i >= 0 {
			entry.HasDeaths = true
			entry.LastDeath = s.Dates[i]
			entry.Recent = today.Sub(entry.LastDeath) <= recentWindow
		}
		if entry.Recent {
			report.Attention = true
		}
		report.Entries = append(report.Entries, entry)
	}
	return report
}

// WriteExtract writes the selected rows as CSV: the trust name followed by
// the daily counts and the summary columns, one header row on top.
func (s *Sheet) WriteExtract(w io.Writer, rows []TrustRow) error {
	out := csv.NewWriter(w)

	header := append([]string{s.header[nameColumn]}, s.header[firstDateColumn:len(s.header)-extractTrailing]...)
	if err := out.Write(header); err != nil {
		return fmt.Errorf("writing extract header: %w", err)
	}
	for _, row := range rows {
		record := append([]string{row.Name}, row.cells[firstDateColumn:len(row.cells)-extractTrailing]...)
		if err := out.Write(record); err != nil {
			return fmt.Errorf("writing extract row for %s: %w", row.Name, err)
		}
	}
	out.Flush()
	return out.Error()
}

// OutputName is the dated path an extract is written to, for example
// data/trust_deaths_20201120.csv.
func OutputName(dir string, today time.Time) string {
	return filepath.Join(dir, fmt.Sprintf("trust_deaths_%s.csv", today.Format("20060102")))
}
