package config

import (
	"database/sql"
	"fmt"
	"strconv"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteProvider implements Provider for SQLite database configuration
type SQLiteProvider struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteProvider creates a new SQLite configuration provider
func NewSQLiteProvider(dbPath string) (*SQLiteProvider, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping SQLite database: %w", err)
	}

	return &SQLiteProvider{
		db:     db,
		dbPath: dbPath,
	}, nil
}

// LoadSettings loads the complete configuration from the SQLite database
func (s *SQLiteProvider) LoadSettings() (*Settings, error) {
	settings := &Settings{}

	areas, err := s.readNames("areas")
	if err != nil {
		return nil, fmt.Errorf("failed to load areas: %w", err)
	}
	settings.Areas = areas

	trusts, err := s.readNames("trusts")
	if err != nil {
		return nil, fmt.Errorf("failed to load trusts: %w", err)
	}
	settings.Trusts = trusts

	if err := s.readThresholds(&settings.Thresholds); err != nil {
		return nil, fmt.Errorf("failed to load thresholds: %w", err)
	}

	if err := s.readSettings(settings); err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	applyDefaults(settings)

	return settings, nil
}

func (s *SQLiteProvider) readNames(table string) ([]string, error) {
	// Table names come from this package only, never from input.
	rows, err := s.db.Query("SELECT name FROM " + table + " ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (s *SQLiteProvider) readThresholds(t *Thresholds) error {
	rows, err := s.db.Query("SELECT name, value FROM thresholds")
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var name string
		var value float64
		if err := rows.Scan(&name, &value); err != nil {
			return err
		}
		if !setThreshold(t, name, value) {
			return fmt.Errorf("unknown threshold %q", name)
		}
	}
	return rows.Err()
}

func (s *SQLiteProvider) readSettings(settings *Settings) error {
	rows, err := s.db.Query("SELECT key, value FROM settings")
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return err
		}
		switch key {
		case "endpoint":
			settings.Source.Endpoint = value
		case "timeout-seconds":
			seconds, err := strconv.Atoi(value)
			if err != nil {
				return fmt.Errorf("timeout-seconds: %w", err)
			}
			settings.Source.Timeout = time.Duration(seconds) * time.Second
		case "abort-on-region-failure":
			b, err := strconv.ParseBool(value)
			if err != nil {
				return fmt.Errorf("abort-on-region-failure: %w", err)
			}
			settings.Source.AbortOnRegionFailure = b
		case "log-file":
			settings.Logging.File = value
		case "log-debug":
			b, err := strconv.ParseBool(value)
			if err != nil {
				return fmt.Errorf("log-debug: %w", err)
			}
			settings.Logging.Debug = b
		case "trust-input":
			settings.Report.TrustInput = value
		case "data-dir":
			settings.Report.DataDir = value
		default:
			return fmt.Errorf("unknown setting %q", key)
		}
	}
	return rows.Err()
}

// IsReadOnly returns false since SQLite configurations can be modified
func (s *SQLiteProvider) IsReadOnly() bool {
	return false
}

// Close closes the database connection
func (s *SQLiteProvider) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveSettings writes a complete configuration into the SQLite database at
// dbPath, creating the schema when needed and replacing whatever was
// stored before. Used by config-convert to migrate YAML and legacy CSV
// configurations.
func SaveSettings(dbPath string, settings *Settings) error {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return fmt.Errorf("failed to open SQLite database: %w", err)
	}
	defer db.Close()

	schema := []string{
		`CREATE TABLE IF NOT EXISTS areas (id INTEGER PRIMARY KEY AUTOINCREMENT, name TEXT NOT NULL)`,
		`CREATE TABLE IF NOT EXISTS trusts (id INTEGER PRIMARY KEY AUTOINCREMENT, name TEXT NOT NULL)`,
		`CREATE TABLE IF NOT EXISTS thresholds (name TEXT PRIMARY KEY, value REAL NOT NULL)`,
		`CREATE TABLE IF NOT EXISTS settings (key TEXT PRIMARY KEY, value TEXT NOT NULL)`,
	}
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"areas", "trusts", "thresholds", "settings"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	for _, area := range settings.Areas {
		if _, err := tx.Exec("INSERT INTO areas (name) VALUES (?)", area); err != nil {
			return fmt.Errorf("failed to insert area: %w", err)
		}
	}
	for _, trust := range settings.Trusts {
		if _, err := tx.Exec("INSERT INTO trusts (name) VALUES (?)", trust); err != nil {
			return fmt.Errorf("failed to insert trust: %w", err)
		}
	}
	for _, th := range thresholdValues(settings.Thresholds) {
		if _, err := tx.Exec("INSERT INTO thresholds (name, value) VALUES (?, ?)", th.name, th.value); err != nil {
			return fmt.Errorf("failed to insert threshold: %w", err)
		}
	}

	kv := [][2]string{
		{"endpoint", settings.Source.Endpoint},
		{"timeout-seconds", strconv.Itoa(int(settings.Source.Timeout / time.Second))},
		{"abort-on-region-failure", strconv.FormatBool(settings.Source.AbortOnRegionFailure)},
		{"log-file", settings.Logging.File},
		{"log-debug", strconv.FormatBool(settings.Logging.Debug)},
		{"trust-input", settings.Report.TrustInput},
		{"data-dir", settings.Report.DataDir},
	}
	for _, pair := range kv {
		if _, err := tx.Exec("INSERT INTO settings (key, value) VALUES (?, ?)", pair[0], pair[1]); err != nil {
			return fmt.Errorf("failed to insert setting: %w", err)
		}
	}

	return tx.Commit()
}

// namedThreshold pairs a threshold with the name it is stored under, the
// same names the YAML format uses.
type namedThreshold struct {
	name  string
	value float64
}

func thresholdValues(t Thresholds) []namedThreshold {
	return []namedThreshold{
		{"rolling-period", float64(t.RollingPeriod)},
		{"uk-cases-increase", t.UKCasesIncrease},
		{"uk-cases-absolute", t.UKCasesAbsolute},
		{"uk-deaths-increase", t.UKDeathsIncrease},
		{"uk-deaths-absolute", t.UKDeathsAbsolute},
		{"uk-positivity-increase", t.UKPositivityIncrease},
		{"uk-positivity-absolute", t.UKPositivityAbsolute},
		{"area-cases-increase", t.AreaCasesIncrease},
		{"area-cases-absolute", t.AreaCasesAbsolute},
		{"area-deaths-increase", t.AreaDeathsIncrease},
		{"area-deaths-absolute", t.AreaDeathsAbsolute},
		{"exponential-sensitivity", float64(t.ExponentialSensitivity)},
	}
}

func setThreshold(t *Thresholds, name string, value float64) bool {
	switch name {
	case "rolling-period":
		t.RollingPeriod = int(value)
	case "uk-cases-increase":
		t.UKCasesIncrease = value
	case "uk-cases-absolute":
		t.UKCasesAbsolute = value
	case "uk-deaths-increase":
		t.UKDeathsIncrease = value
	case "uk-deaths-absolute":
		t.UKDeathsAbsolute = value
	case "uk-positivity-increase":
		t.UKPositivityIncrease = value
	case "uk-positivity-absolute":
		t.UKPositivityAbsolute = value
	case "area-cases-increase":
		t.AreaCasesIncrease = value
	case "area-cases-absolute":
		t.AreaCasesAbsolute = value
	case "area-deaths-increase":
		t.AreaDeathsIncrease = value
	case "area-deaths-absolute":
		t.AreaDeathsAbsolute = value
	case "exponential-sensitivity":
		t.ExponentialSensitivity = int(value)
	default:
		return false
	}
	return true
}
