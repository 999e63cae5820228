// Package app provides the core application initialization and lifecycle management.
package app

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/schollz/progressbar/v3"

	"github.com/law-makers/quotecrawl/internal/config"
	"github.com/law-makers/quotecrawl/internal/crawl"
	"github.com/law-makers/quotecrawl/internal/engine"
	"github.com/law-makers/quotecrawl/internal/engine/dynamic"
	"github.com/law-makers/quotecrawl/internal/engine/static"
	"github.com/law-makers/quotecrawl/internal/metrics"
	"github.com/law-makers/quotecrawl/internal/reqctx"
	"github.com/law-makers/quotecrawl/internal/sink"
	"github.com/law-makers/quotecrawl/pkg/models"
)

// Options carries the process-level handles the application writes to.
type Options struct {
	// Stderr receives console logs and the progress bar. Defaults to os.Stderr.
	Stderr io.Writer
	// Transport replaces the HTTP transport of the static engine.
	Transport http.RoundTripper
}

// Application holds all dependencies of one crawl run and manages their
// lifecycle. Use Close() to release the log file.
type Application struct {
	Config     *config.Config
	Logger     zerolog.Logger
	Metrics    *metrics.Metrics
	Session    engine.Session
	Collection *sink.Collection
	Dumper     *sink.Dumper
	Progress   crawl.Progress

	logFile   *os.File
	startTime time.Time
}

// New creates and initializes an Application for the run carried by ctx.
//
// It performs the following initialization steps:
//   - Opens (truncates) the log file and builds the console + file logger
//   - Selects the session engine
//   - Creates the result collection and, in dump mode, the dumper
//   - Creates the metrics registry and the progress bar
func New(ctx context.Context, cfg *config.Config, opts Options) (*Application, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}

	var logFile *os.File
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
		if err != nil {
			return nil, engine.NewEngineError(engine.ErrCodeIO, "failed to open log file", err).
				WithDetail("path", cfg.LogFile)
		}
		logFile = f
	}

	var fileWriter io.Writer
	if logFile != nil {
		fileWriter = logFile
	}
	logger := NewLogger(cfg, opts.Stderr, fileWriter).With().
		Str("run_id", reqctx.GetRunContext(ctx).RunID).
		Logger()

	logger.Debug().
		Str("level", cfg.LogLevel).
		Bool("json", cfg.JSONLog).
		Str("log_file", cfg.LogFile).
		Msg("Logger initialized")

	var dumper *sink.Dumper
	if cfg.Dump {
		dumper = sink.NewDumper(cfg.DumpDir, cfg.DumpFormat, logger)
		logger.Debug().
			Str("dir", cfg.DumpDir).
			Str("format", string(cfg.DumpFormat)).
			Msg("Dump mode enabled")
	}

	a := &Application{
		Config:     cfg,
		Logger:     logger,
		Metrics:    metrics.New(),
		Session:    NewSession(cfg, opts.Transport, logger),
		Collection: sink.NewCollection(logger),
		Dumper:     dumper,
		logFile:    logFile,
		startTime:  time.Now(),
	}
	if !cfg.Quiet && !cfg.JSONLog {
		a.Progress = newProgressBar(opts.Stderr)
	}

	logger.Info().
		Str("engine", string(cfg.Engine)).
		Str("session", a.Session.Name()).
		Msg("Application initialized successfully")
	return a, nil
}

// NewLogger builds a logger writing to the console at the configured level
// and, when file is non-nil, to file at info level or lower.
func NewLogger(cfg *config.Config, console io.Writer, file io.Writer) zerolog.Logger {
	consoleLevel, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || consoleLevel == zerolog.NoLevel {
		consoleLevel = zerolog.ErrorLevel
	}
	if cfg.Quiet && consoleLevel < zerolog.ErrorLevel {
		consoleLevel = zerolog.ErrorLevel
	}

	var consoleWriter io.Writer = console
	if !cfg.JSONLog {
		consoleWriter = zerolog.ConsoleWriter{Out: console, TimeFormat: time.Kitchen}
	}

	writers := []io.Writer{
		&zerolog.FilteredLevelWriter{
			Writer: zerolog.LevelWriterAdapter{Writer: consoleWriter},
			Level:  consoleLevel,
		},
	}

	minLevel := consoleLevel
	if file != nil {
		fileLevel := zerolog.InfoLevel
		if consoleLevel < fileLevel {
			fileLevel = consoleLevel
		}
		writers = append(writers, &zerolog.FilteredLevelWriter{
			Writer: zerolog.LevelWriterAdapter{Writer: file},
			Level:  fileLevel,
		})
		if fileLevel < minLevel {
			minLevel = fileLevel
		}
	}

	return zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(minLevel).
		With().
		Timestamp().
		Logger()
}

// NewSession selects the session engine named by cfg.Engine.
func NewSession(cfg *config.Config, transport http.RoundTripper, logger zerolog.Logger) engine.Session {
	if cfg.Engine == models.EngineStatic {
		return static.New(static.Options{
			UserAgent: cfg.UserAgent,
			Headers:   cfg.Headers,
			Proxy:     cfg.Proxy,
			Timeout:   cfg.Timeout,
			Transport: transport,
		}, logger)
	}
	return dynamic.New(dynamic.Options{
		Headless:   cfg.Headless,
		UserAgent:  cfg.UserAgent,
		ChromePath: cfg.ChromePath,
		Proxy:      cfg.Proxy,
		Headers:    cfg.Headers,
		Timeout:    cfg.Timeout,
	}, logger)
}

func newProgressBar(w io.Writer) *progressbar.ProgressBar {
	return progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription("Crawling pages"),
		progressbar.OptionShowCount(),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionClearOnFinish(),
	)
}

// Crawler returns the crawl loop wired to the application's dependencies.
func (a *Application) Crawler() *crawl.Crawler {
	return crawl.New(a.Session, a.Collection, crawl.Options{
		StartURL:      a.Config.StartURL,
		OutputPath:    a.Config.OutputPath,
		MaxPages:      a.Config.MaxPages,
		StopOnRevisit: a.Config.StopOnRevisit,
		Dumper:        a.Dumper,
		Metrics:       a.Metrics,
		Progress:      a.Progress,
	}, a.Logger)
}

// Run executes one crawl and, when configured, writes the metrics file.
// A metrics write failure is logged and does not fail the run.
func (a *Application) Run(ctx context.Context) (*crawl.Result, error) {
	result, err := a.Crawler().Run(ctx)
	if a.Config.MetricsFile != "" {
		if werr := a.Metrics.WriteFile(a.Config.MetricsFile); werr != nil {
			a.Logger.Warn().Err(werr).Str("path", a.Config.MetricsFile).Msg("Failed to write metrics file")
		} else {
			a.Logger.Debug().Str("path", a.Config.MetricsFile).Msg("Metrics written")
		}
	}
	if err != nil {
		return nil, reqctx.NewRunError(ctx, err)
	}
	return result, nil
}

// Close releases the session, if still held, and the log file.
// Any errors during shutdown are logged but do not prevent other shutdown steps.
func (a *Application) Close() error {
	if a.Session != nil {
		if err := a.Session.Stop(); err != nil {
			a.Logger.Warn().Err(err).Msg("Error stopping session")
		}
	}

	a.Logger.Info().Dur("uptime", time.Since(a.startTime)).Msg("Application shutdown complete")

	if a.logFile != nil {
		return a.logFile.Close()
	}
	return nil
}
