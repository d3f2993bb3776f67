package app

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/ukcovid/covidwatch/internal/alerting"
	"github.com/ukcovid/covidwatch/internal/dashboard"
	"github.com/ukcovid/covidwatch/internal/log"
	"github.com/ukcovid/covidwatch/internal/monitor"
	"github.com/ukcovid/covidwatch/pkg/config"
	"go.uber.org/zap"
)

// App represents the main application
type App struct {
	settings *config.Settings
	logger   *zap.SugaredLogger
}

// New creates a new application instance
func New(settings *config.Settings, logger *zap.SugaredLogger) *App {
	return &App{
		settings: settings,
		logger:   logger,
	}
}

// Run executes one monitor pass over the configured areas and returns when
// the pass completes. An interrupt cancels the pass between areas.
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	source := dashboard.NewClient(a.settings.Source.Endpoint, a.settings.Source.Timeout, a.logger)

	rc := &monitor.RunContext{
		ID:       uuid.New(),
		Date:     time.Now(),
		Settings: a.settings,
		Source:   source,
		Sink:     alerting.NewLogSink(a.logger),
		Logger:   a.logger,
	}

	summary, err := monitor.Run(ctx, rc)
	if err != nil {
		return err
	}

	log.Infof("Monitor pass finished: %d areas, %d failures, %d warnings, %d notes",
		summary.Areas, summary.Failures, summary.Warnings, summary.Notes)
	return nil
}
