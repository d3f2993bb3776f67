package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ukcovid/covidwatch/pkg/config"
)

func main() {
	var (
		inputFile    = flag.String("input", "", "Path to YAML or legacy CSV configuration file (required)")
		inputBackend = flag.String("input-backend", "yaml", "Input format: 'yaml' or 'csv'")
		sqliteFile   = flag.String("sqlite", "", "Path to SQLite database file (required)")
		force        = flag.Bool("force", false, "Overwrite existing SQLite database")
		dryRun       = flag.Bool("dry-run", false, "Show what would be done without executing")
	)
	flag.Parse()

	if *inputFile == "" || *sqliteFile == "" {
		fmt.Fprintf(os.Stderr, "Usage: %s -input <config.yaml> -sqlite <config.db>\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(1)
	}
	if *inputBackend != "yaml" && *inputBackend != "csv" {
		fmt.Fprintf(os.Stderr, "Error: unsupported input backend %q. Use 'yaml' or 'csv'\n", *inputBackend)
		os.Exit(1)
	}

	// Check if input file exists
	if _, err := os.Stat(*inputFile); os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Error: input file does not exist: %s\n", *inputFile)
		os.Exit(1)
	}

	// Check if SQLite file already exists
	if _, err := os.Stat(*sqliteFile); err == nil && !*force {
		fmt.Fprintf(os.Stderr, "Error: SQLite file already exists: %s\n", *sqliteFile)
		fmt.Fprintf(os.Stderr, "Use -force to overwrite or choose a different filename\n")
		os.Exit(1)
	}

	fmt.Printf("Converting %s configuration to SQLite...\n", *inputBackend)
	fmt.Printf("  Source: %s\n", *inputFile)
	fmt.Printf("  Target: %s\n", *sqliteFile)

	if *dryRun {
		fmt.Println("DRY RUN - No changes will be made")
	}

	// Load the source configuration
	fmt.Printf("Loading %s configuration...\n", *inputBackend)
	settings, err := loadSettings(*inputFile, *inputBackend)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}
	if err := config.Validate(settings); err != nil {
		fmt.Fprintf(os.Stderr, "Error: refusing to convert: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("  Loaded %d areas, %d trusts\n", len(settings.Areas), len(settings.Trusts))

	if *dryRun {
		printSettingsSummary(settings)
		fmt.Println("DRY RUN complete - no database created")
		return
	}

	// Remove existing SQLite file if force is specified
	if *force {
		if err := os.Remove(*sqliteFile); err != nil && !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "Error removing existing SQLite file: %v\n", err)
			os.Exit(1)
		}
	}

	fmt.Printf("Creating SQLite database...\n")
	if err := createSQLiteDatabase(*sqliteFile, settings); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating SQLite database: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Conversion completed successfully!\n")
	fmt.Printf("You can now use the SQLite backend with: -config-backend sqlite -config %s\n", *sqliteFile)
}

func loadSettings(inputFile, inputBackend string) (*config.Settings, error) {
	filename, _ := filepath.Abs(inputFile)

	provider, err := config.NewProvider(inputBackend, filename)
	if err != nil {
		return nil, err
	}
	defer provider.Close()

	return provider.LoadSettings()
}

func createSQLiteDatabase(dbPath string, settings *config.Settings) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	return config.SaveSettings(dbPath, settings)
}

func printSettingsSummary(settings *config.Settings) {
	fmt.Println("\nConfiguration Summary:")
	fmt.Printf("Areas (%d):\n", len(settings.Areas))
	for _, area := range settings.Areas {
		fmt.Printf("  - %s\n", area)
	}

	fmt.Printf("\nTrusts (%d):\n", len(settings.Trusts))
	for _, trust := range settings.Trusts {
		fmt.Printf("  - %s\n", trust)
	}

	th := settings.Thresholds
	fmt.Printf("\nThresholds:\n")
	fmt.Printf("  - rolling period: %d days\n", th.RollingPeriod)
	fmt.Printf("  - UK cases: increase %g, absolute %g\n", th.UKCasesIncrease, th.UKCasesAbsolute)
	fmt.Printf("  - UK deaths: increase %g, absolute %g\n", th.UKDeathsIncrease, th.UKDeathsAbsolute)
	fmt.Printf("  - UK positivity: increase %g, absolute %g\n", th.UKPositivityIncrease, th.UKPositivityAbsolute)
	fmt.Printf("  - area cases: increase %g, absolute %g\n", th.AreaCasesIncrease, th.AreaCasesAbsolute)
	fmt.Printf("  - area deaths: increase %g, absolute %g\n", th.AreaDeathsIncrease, th.AreaDeathsAbsolute)
	fmt.Printf("  - exponential sensitivity: %d\n", th.ExponentialSensitivity)

	fmt.Printf("\nSource:\n")
	fmt.Printf("  - endpoint: %s\n", settings.Source.Endpoint)
	fmt.Printf("  - timeout: %s\n", settings.Source.Timeout)
}
