package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/ukcovid/covidwatch/internal/app"
	"github.com/ukcovid/covidwatch/internal/constants"
	"github.com/ukcovid/covidwatch/internal/log"
	"github.com/ukcovid/covidwatch/pkg/config"
)

func main() {
	cfgFile := flag.String("config", "config.yaml", "Path to configuration source:\n\t\t\t  YAML: config.yaml\n\t\t\t  SQLite: config.db\n\t\t\t  CSV: general_alerts.csv (legacy two-line format)\n\t\t\t  Use 'config-convert' tool to convert YAML/CSV→SQLite")
	cfgBackend := flag.String("config-backend", "yaml", "Configuration backend type: 'yaml', 'sqlite' or 'csv'")
	debug := flag.Bool("debug", false, "Turn on debugging output")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("covidwatch %s\n", constants.Version)
		os.Exit(0)
	}

	// Set up console logging; the log file location is not known until the
	// configuration has been read.
	if err := log.Init("", *debug); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	// Optional .env for ad-hoc runs against a different API deployment
	_ = godotenv.Load()

	// Load configuration
	settings, err := loadSettings(*cfgFile, *cfgBackend)
	if err != nil {
		log.Errorf("Failed to load configuration: %v", err)
		os.Exit(1)
	}
	applyEnvOverrides(settings)

	if err := config.Validate(settings); err != nil {
		log.Errorf("Invalid configuration: %v", err)
		os.Exit(1)
	}

	if err := log.Init(settings.Logging.File, *debug || settings.Logging.Debug); err != nil {
		log.Errorf("Failed to open log file: %v", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Create and run the application
	application := app.New(settings, log.GetSugaredLogger())
	if err := application.Run(context.Background()); err != nil {
		log.Errorf("Monitor run failed: %v", err)
		os.Exit(1)
	}
}

func loadSettings(cfgFile, cfgBackend string) (*config.Settings, error) {
	filename, _ := filepath.Abs(cfgFile)

	provider, err := config.NewProvider(cfgBackend, filename)
	if err != nil {
		return nil, err
	}
	defer provider.Close()

	settings, err := provider.LoadSettings()
	if err != nil {
		return nil, fmt.Errorf("error reading config file. Did you pass the -config flag? Run with -h for help: %w", err)
	}
	return settings, nil
}

// applyEnvOverrides applies COVIDWATCH_API_URL and COVIDWATCH_TIMEOUT (in
// seconds) over the loaded configuration.
func applyEnvOverrides(settings *config.Settings) {
	if v := os.Getenv("COVIDWATCH_API_URL"); v != "" {
		settings.Source.Endpoint = v
	}
	if v := os.Getenv("COVIDWATCH_TIMEOUT"); v != "" {
		if seconds, err := strconv.Atoi(v); err == nil {
			settings.Source.Timeout = time.Duration(seconds) * time.Second
		}
	}
}
