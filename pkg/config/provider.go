// Package config loads and validates monitor configuration from YAML,
// SQLite or legacy CSV sources behind a common Provider interface.
package config

import (
	"fmt"
	"time"
)

// Provider defines the interface for configuration data sources
type Provider interface {
	// Load complete configuration
	LoadSettings() (*Settings, error)

	// Configuration management
	IsReadOnly() bool
	Close() error
}

// Default values applied where a source leaves settings unset.
const (
	DefaultEndpoint      = "https://api.coronavirus.data.gov.uk/v1/data"
	DefaultTimeout       = 10 * time.Second
	DefaultLogFile       = "log/covidwatch.log"
	DefaultReportDataDir = "data"
)

// Settings represents the complete monitor configuration
type Settings struct {
	Areas      []string
	Trusts     []string
	Thresholds Thresholds
	Source     SourceSettings
	Logging    LoggingSettings
	Report     ReportSettings
}

// Thresholds holds the twelve numeric parameters driving the alert rules.
// Limits are exceeded strictly; a zero limit therefore means "alert on any
// positive amount", which is a deliberate configuration, not an error.
type Thresholds struct {
	RollingPeriod          int
	UKCasesIncrease        float64
	UKCasesAbsolute        float64
	UKDeathsIncrease       float64
	UKDeathsAbsolute       float64
	UKPositivityIncrease   float64
	UKPositivityAbsolute   float64
	AreaCasesIncrease      float64
	AreaCasesAbsolute      float64
	AreaDeathsIncrease     float64
	AreaDeathsAbsolute     float64
	ExponentialSensitivity int
}

// SourceSettings holds configuration for the dashboard data source
type SourceSettings struct {
	Endpoint             string
	Timeout              time.Duration
	AbortOnRegionFailure bool
}

// LoggingSettings holds configuration for the run log
type LoggingSettings struct {
	File  string
	Debug bool
}

// ReportSettings holds configuration for the trust deaths report
type ReportSettings struct {
	TrustInput string
	DataDir    string
}

// NewProvider returns the provider for the named backend. Supported
// backends are "yaml", "sqlite" and "csv" (the legacy two-line format).
func NewProvider(backend, path string) (Provider, error) {
	switch backend {
	case "yaml":
		return NewYAMLProvider(path), nil
	case "sqlite":
		return NewSQLiteProvider(path)
	case "csv":
		return NewCSVProvider(path), nil
	default:
		return nil, fmt.Errorf("unknown config backend %q (supported: yaml, sqlite, csv)", backend)
	}
}

// applyDefaults fills unset values so that providers stay free of
// defaulting logic.
func applyDefaults(s *Settings) {
	if s.Source.Endpoint == "" {
		s.Source.Endpoint = DefaultEndpoint
	}
	if s.Source.Timeout == 0 {
		s.Source.Timeout = DefaultTimeout
	}
	if s.Logging.File == "" {
		s.Logging.File = DefaultLogFile
	}
	if s.Report.DataDir == "" {
		s.Report.DataDir = DefaultReportDataDir
	}
}
