package logger

import (
	"sync"

	"github.com/mstgnz/funnelpay/infra/config"
	"github.com/mstgnz/funnelpay/infra/opensearch"
)

const (
	serviceName    = "funnelpay"
	serviceVersion = "1.0.0"
)

var (
	globalLogger *SystemLogger
	once         sync.Once
)

// InitGlobalLogger initializes the global system logger. osLogger may be nil.
func InitGlobalLogger(osLogger *opensearch.Logger, level string) {
	once.Do(func() {
		cfg := SystemLoggerConfig{
			EnableConsole:    true,
			EnableOpenSearch: osLogger != nil,
			MinLevel:         ParseLevel(level),
			Service:          serviceName,
			Version:          serviceVersion,
			Environment:      config.GetEnv("ENVIRONMENT", "development"),
		}

		if cfg.Environment == "development" {
			cfg.MinLevel = LevelDebug
		}

		globalLogger = NewSystemLogger(osLogger, cfg)
	})
}

// GetGlobalLogger returns the global logger, falling back to a console-only logger
func GetGlobalLogger() *SystemLogger {
	if globalLogger == nil {
		globalLogger = NewSystemLogger(nil, SystemLoggerConfig{
			EnableConsole: true,
			MinLevel:      LevelInfo,
			Service:       serviceName,
			Version:       serviceVersion,
			Environment:   "development",
		})
	}
	return globalLogger
}

// Convenience functions for global logging

func Debug(message string, ctx ...LogContext) {
	GetGlobalLogger().Debug(message, ctx...)
}

func Info(message string, ctx ...LogContext) {
	GetGlobalLogger().Info(message, ctx...)
}

func Warn(message string, ctx ...LogContext) {
	GetGlobalLogger().Warn(message, ctx...)
}

func Error(message string, err error, ctx ...LogContext) {
	GetGlobalLogger().Error(message, err, ctx...)
}

func Fatal(message string, err error, ctx ...LogContext) {
	GetGlobalLogger().Fatal(message, err, ctx...)
}

// Sync flushes the global logger
func Sync() {
	_ = GetGlobalLogger().Sync()
}

// WithContext binds ctx to the global logger
func WithContext(ctx LogContext) *ContextLogger {
	return GetGlobalLogger().WithContext(ctx)
}

// SetGlobalLogger replaces the global logger, used by tests that observe output
func SetGlobalLogger(l *SystemLogger) {
	globalLogger = l
}
