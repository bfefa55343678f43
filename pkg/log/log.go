package log

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu       sync.Mutex
	logLevel Level
	sink     *os.File
)

func init() {
	zap.ReplaceGlobals(build(zapcore.Lock(os.Stdout)))
}

func build(ws zapcore.WriteSyncer) *zap.Logger {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "timestamp"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	return zap.New(zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderCfg),
		ws,
		zap.NewAtomicLevelAt(zapcore.DebugLevel),
	))
}

// SetOutput redirects log output to the file at path, creating it if
// necessary. An empty path restores stdout. The interactive console uses
// this so log lines never land on the terminal it draws on.
func SetOutput(path string) error {
	mu.Lock()
	defer mu.Unlock()

	_ = zap.L().Sync()

	if path == "" {
		zap.ReplaceGlobals(build(zapcore.Lock(os.Stdout)))
		closeSink()
		return nil
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}

	zap.ReplaceGlobals(build(zapcore.Lock(f)))
	closeSink()
	sink = f
	return nil
}

func closeSink() {
	if sink != nil {
		_ = sink.Close()
		sink = nil
	}
}

// Debug logs a debug message with optional key/value pairs. Refer to:
// https://godoc.org/go.uber.org/zap
// for more details.
func Debug(msg string, kv ...interface{}) {
	if logLevel <= DEBUG {
		zap.S().Debugw(msg, kv...)
	}
}

// Info logs an info message with optional key/value pairs.
func Info(msg string, kv ...interface{}) {
	if logLevel <= INFO {
		zap.S().Infow(msg, kv...)
	}
}

// Warn logs a warning message with optional key/value pairs.
func Warn(msg string, kv ...interface{}) {
	if logLevel <= WARNING {
		zap.S().Warnw(msg, kv...)
	}
}

// Error logs an error message with optional key/value pairs.
func Error(msg string, kv ...interface{}) {
	if logLevel <= ERROR {
		zap.S().Errorw(msg, kv...)
	}
}

// Fatal logs a fatal message and exits.
func Fatal(msg string, kv ...interface{}) {
	zap.S().Fatalw(msg, kv...)
}

// Sync flushes any buffered log entries.
func Sync() error {
	return zap.L().Sync()
}

// SetLevel sets the log level.
func SetLevel(level Level) {
	logLevel = level
}

// GetLevel returns the current log level.
func GetLevel() Level {
	return logLevel
}

// SetLevelFromString sets the log level by specifying
// a string which can be any of:
// ["DEBUG", "INFO", "WARNING", "ERROR", "FATAL"],
// case-insensitive.
func SetLevelFromString(level string) error {
	switch strings.ToUpper(level) {
	case "DEBUG":
		logLevel = DEBUG
	case "INFO":
		logLevel = INFO
	case "WARN", "WARNING":
		logLevel = WARNING
	case "ERROR":
		logLevel = ERROR
	case "FATAL":
		logLevel = FATAL
	default:
		return fmt.Errorf("invalid log level string: %v", level)
	}

	return nil
}

// Level enumerates the supported log levels
type Level int

const (
	DEBUG Level = iota
	INFO
	WARNING
	ERROR
	FATAL
)
