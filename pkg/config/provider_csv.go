package config

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// parameterCount is the fixed arity of the legacy parameter line. The
// parameters arrive positional and unlabeled, so anything but an exact
// match means the file and the code disagree about what the numbers mean.
const parameterCount = 12

// CSVProvider implements Provider for the legacy two-line CSV format: the
// first line lists the monitored area names, the second the twelve numeric
// parameters in fixed order (rolling period, UK cases increase/absolute,
// UK deaths increase/absolute, UK positivity increase/absolute, area cases
// increase/absolute, area deaths increase/absolute, exponential
// sensitivity).
type CSVProvider struct {
	filename string
	settings *Settings
}

// NewCSVProvider creates a new legacy CSV configuration provider
func NewCSVProvider(filename string) *CSVProvider {
	return &CSVProvider{
		filename: filename,
	}
}

// LoadSettings loads the complete configuration from the CSV file
func (c *CSVProvider) LoadSettings() (*Settings, error) {
	f, err := os.Open(c.filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", c.filename, err)
	}
	if len(records) < 2 {
		return nil, &ValidationError{Reason: fmt.Sprintf("%s holds %d lines, need an area line and a parameter line", c.filename, len(records))}
	}

	areas := make([]string, 0, len(records[0]))
	for _, a := range records[0] {
		areas = append(areas, strings.TrimSpace(a))
	}

	params := records[1]
	if len(params) != parameterCount {
		return nil, &ValidationError{Reason: fmt.Sprintf("parameter line holds %d values, need exactly %d", len(params), parameterCount)}
	}
	values := make([]float64, parameterCount)
	for i, p := range params {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, &ValidationError{Reason: fmt.Sprintf("parameter %d is not numeric: %q", i+1, p)}
		}
		values[i] = v
	}

	settings := &Settings{
		Areas: areas,
		Thresholds: Thresholds{
			RollingPeriod:          int(values[0]),
			UKCasesIncrease:        values[1],
			UKCasesAbsolute:        values[2],
			UKDeathsIncrease:       values[3],
			UKDeathsAbsolute:       values[4],
			UKPositivityIncrease:   values[5],
			UKPositivityAbsolute:   values[6],
			AreaCasesIncrease:      values[7],
			AreaCasesAbsolute:      values[8],
			AreaDeathsIncrease:     values[9],
			AreaDeathsAbsolute:     values[10],
			ExponentialSensitivity: int(values[11]),
		},
	}
	applyDefaults(settings)

	c.settings = settings
	return settings, nil
}

// IsReadOnly returns true since CSV files are read-only through this interface
func (c *CSVProvider) IsReadOnly() bool {
	return true
}

// Close is a no-op for CSV provider
func (c *CSVProvider) Close() error {
	return nil
}
