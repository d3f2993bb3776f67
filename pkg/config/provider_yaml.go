package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

// YAMLProvider implements Provider for YAML configuration files
type YAMLProvider struct {
	filename string
	settings *Settings
}

// NewYAMLProvider creates a new YAML configuration provider
func NewYAMLProvider(filename string) *YAMLProvider {
	return &YAMLProvider{
		filename: filename,
	}
}

// LoadSettings loads the complete configuration from the YAML file
func (y *YAMLProvider) LoadSettings() (*Settings, error) {
	cfgFile, err := os.ReadFile(y.filename)
	if err != nil {
		return nil, err
	}

	// Load into temporary struct with YAML tags
	var yamlSettings struct {
		Areas      []string       `yaml:"areas"`
		Trusts     []string       `yaml:"trusts,omitempty"`
		Thresholds thresholdsYAML `yaml:"thresholds"`
		Source     sourceYAML     `yaml:"source,omitempty"`
		Logging    loggingYAML    `yaml:"logging,omitempty"`
		Report     reportYAML     `yaml:"report,omitempty"`
	}

	err = yaml.Unmarshal(cfgFile, &yamlSettings)
	if err != nil {
		return nil, err
	}

	// Convert to our internal format
	settings := &Settings{
		Areas:  yamlSettings.Areas,
		Trusts: yamlSettings.Trusts,
		Thresholds: Thresholds{
			RollingPeriod:          yamlSettings.Thresholds.RollingPeriod,
			UKCasesIncrease:        yamlSettings.Thresholds.UKCasesIncrease,
			UKCasesAbsolute:        yamlSettings.Thresholds.UKCasesAbsolute,
			UKDeathsIncrease:       yamlSettings.Thresholds.UKDeathsIncrease,
			UKDeathsAbsolute:       yamlSettings.Thresholds.UKDeathsAbsolute,
			UKPositivityIncrease:   yamlSettings.Thresholds.UKPositivityIncrease,
			UKPositivityAbsolute:   yamlSettings.Thresholds.UKPositivityAbsolute,
			AreaCasesIncrease:      yamlSettings.Thresholds.AreaCasesIncrease,
			AreaCasesAbsolute:      yamlSettings.Thresholds.AreaCasesAbsolute,
			AreaDeathsIncrease:     yamlSettings.Thresholds.AreaDeathsIncrease,
			AreaDeathsAbsolute:     yamlSettings.Thresholds.AreaDeathsAbsolute,
			ExponentialSensitivity: yamlSettings.Thresholds.ExponentialSensitivity,
		},
		Source: SourceSettings{
			Endpoint:             yamlSettings.Source.Endpoint,
			Timeout:              time.Duration(yamlSettings.Source.TimeoutSeconds) * time.Second,
			AbortOnRegionFailure: yamlSettings.Source.AbortOnRegionFailure,
		},
		Logging: LoggingSettings{
			File:  yamlSettings.Logging.File,
			Debug: yamlSettings.Logging.Debug,
		},
		Report: ReportSettings{
			TrustInput: yamlSettings.Report.TrustInput,
			DataDir:    yamlSettings.Report.DataDir,
		},
	}
	applyDefaults(settings)

	y.settings = settings
	return settings, nil
}

// IsReadOnly returns true since YAML files are read-only through this interface
func (y *YAMLProvider) IsReadOnly() bool {
	return true
}

// Close is a no-op for YAML provider
func (y *YAMLProvider) Close() error {
	return nil
}

// YAML-specific structs with proper YAML tags for parsing the file format
type thresholdsYAML struct {
	RollingPeriod          int     `yaml:"rolling-period"`
	UKCasesIncrease        float64 `yaml:"uk-cases-increase"`
	UKCasesAbsolute        float64 `yaml:"uk-cases-absolute"`
	UKDeathsIncrease       float64 `yaml:"uk-deaths-increase"`
	UKDeathsAbsolute       float64 `yaml:"uk-deaths-absolute"`
	UKPositivityIncrease   float64 `yaml:"uk-positivity-increase"`
	UKPositivityAbsolute   float64 `yaml:"uk-positivity-absolute"`
	AreaCasesIncrease      float64 `yaml:"area-cases-increase"`
	AreaCasesAbsolute      float64 `yaml:"area-cases-absolute"`
	AreaDeathsIncrease     float64 `yaml:"area-deaths-increase"`
	AreaDeathsAbsolute     float64 `yaml:"area-deaths-absolute"`
	ExponentialSensitivity int     `yaml:"exponential-sensitivity"`
}

type sourceYAML struct {
	Endpoint             string `yaml:"endpoint,omitempty"`
	TimeoutSeconds       int    `yaml:"timeout-seconds,omitempty"`
	AbortOnRegionFailure bool   `yaml:"abort-on-region-failure,omitempty"`
}

type loggingYAML struct {
	File  string `yaml:"file,omitempty"`
	Debug bool   `yaml:"debug,omitempty"`
}

type reportYAML struct {
	TrustInput string `yaml:"trust-input,omitempty"`
	DataDir    string `yaml:"data-dir,omitempty"`
}
