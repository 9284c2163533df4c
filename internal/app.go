// Package internal provides the App struct that wires the metric tools
// together and hands the services to the CLI layer.
package internal

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/intel/svr-info/internal/cli"
	"github.com/intel/svr-info/internal/core"
	"github.com/intel/svr-info/internal/observability"
	"github.com/intel/svr-info/internal/storage"
	"github.com/intel/svr-info/pkg/models"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// App holds all service dependencies of perfmetrics.
type App struct {
	BasePath string

	// Configuration
	ConfigMgr core.ConfigurationManager
	Config    *models.GlobalConfig

	// Storage layer
	Store storage.DocumentStore

	// Core services
	Checker    core.EventChecker
	Translator core.MetricTranslator
	Reconciler core.MetricReconciler

	// Observability
	EventLog    observability.EventLog
	MetricsCalc observability.MetricsCalculator
}

// Options carry the command-line overrides applied on top of the
// configuration file.
type Options struct {
	ConfigFile string
	LogLevel   string
}

// NewApp loads configuration from basePath, sets up logging and creates all
// services.
func NewApp(basePath string, opts Options) (*App, error) {
	app := &App{BasePath: basePath}

	// --- Configuration ---
	app.ConfigMgr = core.NewConfigurationManager(basePath, opts.ConfigFile)
	cfg, err := app.ConfigMgr.LoadGlobalConfig()
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}
	if opts.LogLevel != "" {
		cfg.LogLevel = opts.LogLevel
	}
	if err := app.ConfigMgr.ValidateConfig(cfg); err != nil {
		return nil, err
	}
	app.Config = cfg

	configureLogging(cfg.LogLevel)

	// --- Observability ---
	if cfg.EventLogPath != "" {
		eventLogPath := cfg.EventLogPath
		if !filepath.IsAbs(eventLogPath) {
			eventLogPath = filepath.Join(basePath, eventLogPath)
		}
		app.EventLog, err = observability.NewJSONLEventLog(eventLogPath)
		if err != nil {
			// Non-fatal: run without history.
			log.Warn().Err(err).Msg("run history disabled")
			app.EventLog = nil
		}
	}
	var events core.EventLogger
	if app.EventLog != nil {
		app.MetricsCalc = observability.NewMetricsCalculator(app.EventLog)
		events = &eventLogAdapter{log: app.EventLog}
	}

	// --- Storage layer ---
	app.Store = storage.NewDocumentStore(cfg.OutputIndent)

	// --- Core services ---
	app.Checker = core.NewEventChecker(app.Store, cfg.ConstPrefix, events)
	app.Translator = core.NewMetricTranslator(app.Store, events)
	app.Reconciler = core.NewMetricReconciler(app.Store, cfg.OriginTag, events)

	// --- Wire CLI ---
	cli.Checker = app.Checker
	cli.Translator = app.Translator
	cli.Reconciler = app.Reconciler
	cli.EventLog = app.EventLog
	cli.MetricsCalc = app.MetricsCalc

	return app, nil
}

// Close releases resources held by the App.
func (a *App) Close() error {
	if a.EventLog != nil {
		return a.EventLog.Close()
	}
	return nil
}

// ResolveBasePath returns the directory holding .perfmetrics.yaml:
// $PERFMETRICS_HOME if set, else the nearest ancestor of the working
// directory containing the file, else the working directory.
func ResolveBasePath() string {
	if home := os.Getenv("PERFMETRICS_HOME"); home != "" {
		return home
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "."
	}
	for dir := cwd; ; {
		if _, err := os.Stat(filepath.Join(dir, core.ConfigFileName+".yaml")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return cwd
}

// configureLogging points the global zerolog logger at stderr.
func configureLogging(level string) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.WarnLevel
	}
	zerolog.SetGlobalLevel(lvl)
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		With().Timestamp().Logger()
}

// eventLogAdapter adapts observability.EventLog to core.EventLogger.
type eventLogAdapter struct {
	log observability.EventLog
}

func (a *eventLogAdapter) LogEvent(eventType string, data map[string]any) error {
	level := observability.LevelInfo
	if strings.HasSuffix(eventType, ".failed") {
		level = observability.LevelError
	}
	return a.log.Write(observability.Event{
		Time:    time.Now().UTC(),
		Level:   level,
		Type:    eventType,
		Message: eventType,
		Data:    data,
	})
}
