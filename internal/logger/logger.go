package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config controls where and how verbosely the application logs
type Config struct {
	Dir   string
	Debug bool
}

// NewLogger creates a JSON logger writing to stderr and, when Dir is set, to a
// timestamped file inside it. The returned func flushes and closes the file.
func NewLogger(cfg Config) (*zap.Logger, func() error, error) {
	level := zap.NewAtomicLevelAt(zapcore.InfoLevel)
	if cfg.Debug {
		level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoder := zapcore.NewJSONEncoder(encoderCfg)

	cores := []zapcore.Core{
		zapcore.NewCore(encoder, zapcore.Lock(os.Stderr), level),
	}

	var file *os.File
	if cfg.Dir != "" {
		if err := os.MkdirAll(cfg.Dir, 0755); err != nil {
			return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
		}

		timestamp := time.Now().Format("2006-01-02_15-04-05")
		logPath := filepath.Join(cfg.Dir, fmt.Sprintf("api-test-generator_%s.log", timestamp))
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create log file: %w", err)
		}
		file = f
		cores = append(cores, zapcore.NewCore(encoder, zapcore.AddSync(file), level))
	}

	opts := []zap.Option{zap.AddCaller()}
	if cfg.Debug {
		opts = append(opts, zap.AddStacktrace(zapcore.ErrorLevel))
	}
	log := zap.New(zapcore.NewTee(cores...), opts...)

	closeFn := func() error {
		_ = log.Sync()
		if file != nil {
			return file.Close()
		}
		return nil
	}
	return log, closeFn, nil
}

// OrNop returns l, or a no-op logger when l is nil
func OrNop(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}
