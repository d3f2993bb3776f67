package main

import (
	"flag"
	"fmt"
	"os"
	"reflect"

	"github.com/ukcovid/covidwatch/pkg/config"
)

func main() {
	var (
		yamlFile   = flag.String("yaml", "", "Path to YAML configuration file")
		sqliteFile = flag.String("sqlite", "", "Path to SQLite configuration file")
	)
	flag.Parse()

	if *yamlFile == "" || *sqliteFile == "" {
		fmt.Fprintf(os.Stderr, "Usage: %s -yaml <config.yaml> -sqlite <config.db>\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(1)
	}

	fmt.Println("Configuration Comparison Test")
	fmt.Println("===========================")

	// Load YAML configuration
	fmt.Printf("Loading YAML configuration: %s\n", *yamlFile)
	yamlProvider := config.NewYAMLProvider(*yamlFile)
	yamlSettings, err := yamlProvider.LoadSettings()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading YAML config: %v\n", err)
		os.Exit(1)
	}

	// Load SQLite configuration
	fmt.Printf("Loading SQLite configuration: %s\n", *sqliteFile)
	sqliteProvider, err := config.NewSQLiteProvider(*sqliteFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating SQLite provider: %v\n", err)
		os.Exit(1)
	}
	defer sqliteProvider.Close()

	sqliteSettings, err := sqliteProvider.LoadSettings()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading SQLite config: %v\n", err)
		os.Exit(1)
	}

	// Compare configurations
	fmt.Println("\nComparison Results:")
	fmt.Println("==================")

	ok := compareNames("Areas", yamlSettings.Areas, sqliteSettings.Areas)
	ok = compareNames("Trusts", yamlSettings.Trusts, sqliteSettings.Trusts) && ok
	ok = compareThresholds(yamlSettings.Thresholds, sqliteSettings.Thresholds) && ok
	ok = compareSection("Source", yamlSettings.Source, sqliteSettings.Source) && ok
	ok = compareSection("Logging", yamlSettings.Logging, sqliteSettings.Logging) && ok
	ok = compareSection("Report", yamlSettings.Report, sqliteSettings.Report) && ok

	fmt.Println("\nTest completed!")
	if !ok {
		os.Exit(1)
	}
}

func compareNames(label string, yaml, sqlite []string) bool {
	fmt.Printf("\n%s - YAML: %d, SQLite: %d\n", label, len(yaml), len(sqlite))
	if len(yaml) != len(sqlite) {
		fmt.Printf("✗ %s count mismatch\n", label)
		return false
	}
	fmt.Printf("✓ %s count matches\n", label)

	ok := true
	for i := range yaml {
		if yaml[i] == sqlite[i] {
			fmt.Printf("✓ %s matches\n", yaml[i])
		} else {
			fmt.Printf("✗ position %d: YAML='%s', SQLite='%s'\n", i, yaml[i], sqlite[i])
			ok = false
		}
	}
	return ok
}

func compareThresholds(yaml, sqlite config.Thresholds) bool {
	fmt.Println("\nThresholds:")
	if yaml == sqlite {
		fmt.Println("✓ Thresholds match")
		return true
	}
	fmt.Println("✗ Thresholds differ")

	fields := []struct {
		name         string
		yaml, sqlite float64
	}{
		{"rolling-period", float64(yaml.RollingPeriod), float64(sqlite.RollingPeriod)},
		{"uk-cases-increase", yaml.UKCasesIncrease, sqlite.UKCasesIncrease},
		{"uk-cases-absolute", yaml.UKCasesAbsolute, sqlite.UKCasesAbsolute},
		{"uk-deaths-increase", yaml.UKDeathsIncrease, sqlite.UKDeathsIncrease},
		{"uk-deaths-absolute", yaml.UKDeathsAbsolute, sqlite.UKDeathsAbsolute},
		{"uk-positivity-increase", yaml.UKPositivityIncrease, sqlite.UKPositivityIncrease},
		{"uk-positivity-absolute", yaml.UKPositivityAbsolute, sqlite.UKPositivityAbsolute},
		{"area-cases-increase", yaml.AreaCasesIncrease, sqlite.AreaCasesIncrease},
		{"area-cases-absolute", yaml.AreaCasesAbsolute, sqlite.AreaCasesAbsolute},
		{"area-deaths-increase", yaml.AreaDeathsIncrease, sqlite.AreaDeathsIncrease},
		{"area-deaths-absolute", yaml.AreaDeathsAbsolute, sqlite.AreaDeathsAbsolute},
		{"exponential-sensitivity", float64(yaml.ExponentialSensitivity), float64(sqlite.ExponentialSensitivity)},
	}
	for _, f := range fields {
		if f.yaml != f.sqlite {
			fmt.Printf("  %s: YAML=%g, SQLite=%g\n", f.name, f.yaml, f.sqlite)
		}
	}
	return false
}

func compareSection(label string, yaml, sqlite interface{}) bool {
	if reflect.DeepEqual(yaml, sqlite) {
		fmt.Printf("✓ %s configuration matches\n", label)
		return true
	}
	fmt.Printf("✗ %s configuration differs:\n  YAML:   %+v\n  SQLite: %+v\n", label, yaml, sqlite)
	return false
}
