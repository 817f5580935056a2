// internal/logging/logging.go
// Package logging configures the process-wide zap logger: human-readable
// output on stderr plus an optional JSON log file.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu      sync.Mutex
	logFile *os.File
	logger  = zap.NewNop()
	restore = func() {}
	console io.Writer = os.Stderr
)

// Options controls Init.
type Options struct {
	// Path of the JSON log file; empty disables file logging.
	Path  string
	Debug bool
	// Quiet drops console output below warn level.
	Quiet bool
}

// Init replaces the global logger. It may be called again to reconfigure.
func Init(opts Options) error {
	mu.Lock()
	defer mu.Unlock()

	closeLocked()

	consoleLevel := zapcore.InfoLevel
	if opts.Debug {
		consoleLevel = zapcore.DebugLevel
	}
	if opts.Quiet {
		consoleLevel = zapcore.WarnLevel
	}

	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.Lock(zapcore.AddSync(console)), consoleLevel),
	}

	if opts.Path != "" {
		if dir := filepath.Dir(opts.Path); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return err
			}
		}
		file, err := os.OpenFile(opts.Path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return err
		}
		logFile = file
		fileLevel := zapcore.InfoLevel
		if opts.Debug {
			fileLevel = zapcore.DebugLevel
		}
		cores = append(cores, zapcore.NewCore(
			zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
			zapcore.AddSync(logFile),
			fileLevel,
		))
	}

	logger = zap.New(zapcore.NewTee(cores...))
	restore = zap.ReplaceGlobals(logger)
	return nil
}

// Close flushes and closes the log file and restores the previous global
// logger.
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	return closeLocked()
}

func closeLocked() error {
	_ = logger.Sync()
	restore()
	restore = func() {}
	logger = zap.NewNop()
	if logFile == nil {
		return nil
	}
	err := logFile.Close()
	logFile = nil
	return err
}

// L returns the configured logger.
func L() *zap.Logger {
	mu.Lock()
	defer mu.Unlock()
	return logger
}

// LogEvent writes a formatted info message.
func LogEvent(format string, args ...any) {
	L().Info(fmt.Sprintf(format, args...))
}
