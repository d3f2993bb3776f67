package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ukcovid/covidwatch/internal/alerting"
	"github.com/ukcovid/covidwatch/internal/constants"
	"github.com/ukcovid/covidwatch/internal/log"
	"github.com/ukcovid/covidwatch/internal/trustreport"
	"github.com/ukcovid/covidwatch/pkg/config"
)

const component = "trustreport"

func main() {
	cfgFile := flag.String("config", "config.yaml", "Path to configuration source (see covidwatch -h)")
	cfgBackend := flag.String("config-backend", "yaml", "Configuration backend type: 'yaml', 'sqlite' or 'csv'")
	inputFile := flag.String("input", "", "Converted deaths-by-trust CSV (default: the configured trust-input)")
	debug := flag.Bool("debug", false, "Turn on debugging output")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("trust-deaths %s\n", constants.Version)
		os.Exit(0)
	}

	if err := log.Init("", *debug); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	settings, err := loadSettings(*cfgFile, *cfgBackend)
	if err != nil {
		log.Errorf("Failed to load configuration: %v", err)
		os.Exit(1)
	}

	if err := log.Init(settings.Logging.File, *debug || settings.Logging.Debug); err != nil {
		log.Errorf("Failed to open log file: %v", err)
		os.Exit(1)
	}
	defer log.Sync()

	input := *inputFile
	if input == "" {
		input = settings.Report.TrustInput
	}
	if input == "" {
		log.Errorf("No input file: pass -input or configure trust-input")
		os.Exit(1)
	}
	if len(settings.Trusts) == 0 {
		log.Errorf("No trusts configured; nothing to report on")
		os.Exit(1)
	}

	if err := runReport(settings, input, time.Now()); err != nil {
		log.Errorf("Trust deaths report failed: %v", err)
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

// runReport reads the converted sheet, logs each monitored trust's most
// recent death, and writes the dated extract of the monitored rows.
func runReport(settings *config.Settings, input string, today time.Time) error {
	sink := alerting.NewLogSink(log.GetSugaredLogger())

	f, err := os.Open(input)
	if err != nil {
		return fmt.Errorf("opening %s: %w", input, err)
	}
	defer f.Close()

	log.Infof("Extracting data from csv file %s", input)
	sheet, err := trustreport.Load(f)
	if err != nil {
		return err
	}

	rows := sheet.Select(settings.Trusts)
	if len(rows) == 0 {
		sink.Log(component, fmt.Sprintf("None of the configured trusts appear in %s", input), alerting.SeverityWarning)
	}

	report := sheet.BuildReport(rows, today)
	for _, entry := range report.Entries {
		switch {
		case !entry.HasDeaths:
			sink.Log(component, fmt.Sprintf("No deaths recorded for %s", entry.Name), alerting.SeverityInfo)
		case entry.Recent:
			sink.Log(component,
				fmt.Sprintf("The last death in %s was on %s which is a week or less ago", entry.Name, entry.LastDeath.Format("2006-01-02")),
				alerting.SeverityWarning)
		default:
			sink.Log(component,
				fmt.Sprintf("The last death in %s was on %s", entry.Name, entry.LastDeath.Format("2006-01-02")),
				alerting.SeverityInfo)
		}
	}

	if err := os.MkdirAll(settings.Report.DataDir, 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}
	output := trustreport.OutputName(settings.Report.DataDir, today)
	log.Infof("Writing data to file %s", output)

	out, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("creating %s: %w", output, err)
	}
	if err := sheet.WriteExtract(out, rows); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", output, err)
	}

	if report.Attention {
		sink.Log(component, fmt.Sprintf("Attention flag set for %s please view", output), alerting.SeverityWarning)
	}
	return nil
}
