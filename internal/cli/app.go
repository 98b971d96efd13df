package cli

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"api-test-generator/internal/config"
	"api-test-generator/internal/executor"
	"api-test-generator/internal/history"
	"api-test-generator/internal/logger"
	"api-test-generator/internal/reporter"
)

// app carries the state shared by every command once flags are parsed
type app struct {
	configPath string
	debug      bool

	cfg      *config.Config
	log      *zap.Logger
	closeLog func() error
}

func (a *app) init() error {
	cfg, err := config.LoadConfig(a.configPath)
	if err != nil {
		return err
	}
	if a.debug {
		cfg.Logging.Debug = true
	}

	log, closeLog, err := logger.NewLogger(logger.Config{Dir: cfg.Logging.Dir, Debug: cfg.Logging.Debug})
	if err != nil {
		return err
	}

	a.cfg, a.log, a.closeLog = cfg, log, closeLog
	a.log.Debug("Configuration loaded", zap.String("path", a.configPath))
	return nil
}

func (a *app) close() error {
	if a.closeLog == nil {
		return nil
	}
	return a.closeLog()
}

func (a *app) executor() *executor.JavaExecutor {
	c := a.cfg.Executor
	return executor.NewJavaExecutor(executor.Config{
		Java:       c.Java,
		Javac:      c.Javac,
		LibsDir:    c.LibsDir,
		WorkDir:    c.WorkDir,
		Timeout:    c.Timeout.Std(),
		MaxWorkers: c.MaxWorkers,
		MaxOutput:  c.MaxOutput,
		KeepFiles:  c.KeepFiles,
	}, a.log)
}

func (a *app) reporter(outputDir string) *reporter.Reporter {
	if outputDir == "" {
		outputDir = a.cfg.Reporting.OutputDir
	}
	return reporter.NewReporter(reporter.Config{OutputDir: outputDir}, a.log)
}

// openHistory returns nil when no history database is configured
func (a *app) openHistory(ctx context.Context) (history.Store, error) {
	if !a.cfg.History.Enabled() {
		return nil, nil
	}
	store, err := history.Open(ctx, a.cfg.History.Driver, a.cfg.History.DSN, a.log)
	if err != nil {
		return nil, fmt.Errorf("failed to open history: %w", err)
	}
	return store, nil
}

func (a *app) record(ctx context.Context, store history.Store, e history.Entry) {
	if store == nil {
		return
	}
	if err := store.Record(ctx, e); err != nil {
		a.log.Warn("Failed to record history", zap.String("className", e.ClassName), zap.Error(err))
	}
}
