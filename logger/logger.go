// logger/logger.go
package logger

import (
	"fmt"
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Package-level leveled logging backed by zap. The default logger writes to
// stderr at debug level; Init reconfigures it with optional file output.

var (
	mu      sync.Mutex
	level   = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	sugared *zap.SugaredLogger
)

func init() {
	sugared = build("", true)
}

func build(filename string, console bool) *zap.SugaredLogger {
	encoderCfg := zap.NewDevelopmentEncoderConfig()
	encoderCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder

	var cores []zapcore.Core
	if console {
		cores = append(cores, zapcore.NewCore(
			zapcore.NewConsoleEncoder(encoderCfg),
			zapcore.Lock(os.Stderr),
			level,
		))
	}
	if filename != "" {
		fileCfg := zap.NewProductionEncoderConfig()
		fileCfg.EncodeTime = zapcore.ISO8601TimeEncoder
		sink, _, err := zap.Open(filename)
		if err == nil {
			cores = append(cores, zapcore.NewCore(
				zapcore.NewJSONEncoder(fileCfg),
				sink,
				level,
			))
		}
	}
	if len(cores) == 0 {
		return zap.NewNop().Sugar()
	}
	return zap.New(zapcore.NewTee(cores...), zap.AddCallerSkip(1)).Sugar()
}

// Init reconfigures the logger. If filename is non-empty, logs are also
// written there as JSON; if console is false, logs go only to the file.
func Init(filename string, console bool) error {
	if filename == "" && !console {
		return fmt.Errorf("no output destination specified")
	}
	mu.Lock()
	defer mu.Unlock()
	if sugared != nil {
		_ = sugared.Sync()
	}
	sugared = build(filename, console)
	return nil
}

// SetLevel sets the minimum level ("debug", "info", "warn", "error").
func SetLevel(name string) error {
	parsed, err := zapcore.ParseLevel(name)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", name, err)
	}
	level.SetLevel(parsed)
	return nil
}

// Close flushes any buffered log entries.
func Close() {
	mu.Lock()
	defer mu.Unlock()
	if sugared != nil {
		_ = sugared.Sync()
	}
}

func current() *zap.SugaredLogger {
	mu.Lock()
	defer mu.Unlock()
	return sugared
}

func Debug(v ...interface{})                 { current().Debug(v...) }
func Debugf(format string, v ...interface{}) { current().Debugf(format, v...) }
func Info(v ...interface{})                  { current().Info(v...) }
func Infof(format string, v ...interface{})  { current().Infof(format, v...) }
func Warn(v ...interface{})                  { current().Warn(v...) }
func Warnf(format string, v ...interface{})  { current().Warnf(format, v...) }
func Error(v ...interface{})                 { current().Error(v...) }
func Errorf(format string, v ...interface{}) { current().Errorf(format, v...) }
func Fatal(v ...interface{})                 { current().Fatal(v...) }
func Fatalf(format string, v ...interface{}) { current().Fatalf(format, v...) }
