package logger

import (
	"context"
	"log"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/mstgnz/funnelpay/infra/opensearch"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogLevel represents the severity level of a log entry
type LogLevel string

const (
	LevelDebug LogLevel = "debug"
	LevelInfo  LogLevel = "info"
	LevelWarn  LogLevel = "warn"
	LevelError LogLevel = "error"
	LevelFatal LogLevel = "fatal"
)

var levelOrder = map[LogLevel]int{
	LevelDebug: 0,
	LevelInfo:  1,
	LevelWarn:  2,
	LevelError: 3,
	LevelFatal: 4,
}

// ParseLevel maps a LOGGING_LEVEL value to a LogLevel, defaulting to info
func ParseLevel(value string) LogLevel {
	level := LogLevel(strings.ToLower(strings.TrimSpace(value)))
	if _, ok := levelOrder[level]; ok {
		return level
	}
	return LevelInfo
}

// SystemLog represents a structured system log entry
type SystemLog struct {
	Timestamp   time.Time      `json:"timestamp"`
	Level       LogLevel       `json:"level"`
	Message     string         `json:"message"`
	Component   string         `json:"component"`
	Function    string         `json:"function"`
	File        string         `json:"file"`
	Line        int            `json:"line"`
	TenantID    string         `json:"tenant_id,omitempty"`
	Gateway     string         `json:"gateway,omitempty"`
	RequestID   string         `json:"request_id,omitempty"`
	Error       string         `json:"error,omitempty"`
	Fields      map[string]any `json:"fields,omitempty"`
	Environment string         `json:"environment"`
	Service     string         `json:"service"`
	Version     string         `json:"version"`
}

// SystemLogger writes structured logs to the console through zap and, optionally, to OpenSearch
type SystemLogger struct {
	openSearchLogger *opensearch.Logger
	console          *zap.Logger
	enableOpenSearch bool
	minLevel         LogLevel
	service          string
	version          string
	environment      string
}

// SystemLoggerConfig represents configuration for system logger
type SystemLoggerConfig struct {
	EnableConsole    bool
	EnableOpenSearch bool
	MinLevel         LogLevel
	Service          string
	Version          string
	Environment      string
	// Console replaces the zap sink built from Environment
	Console *zap.Logger
}

// NewSystemLogger creates a new system logger
func NewSystemLogger(openSearchLogger *opensearch.Logger, config SystemLoggerConfig) *SystemLogger {
	console := zap.NewNop()
	switch {
	case config.Console != nil:
		console = config.Console
	case config.EnableConsole:
		console = newConsole(config.Environment)
	}

	return &SystemLogger{
		openSearchLogger: openSearchLogger,
		console:          console,
		enableOpenSearch: config.EnableOpenSearch && openSearchLogger != nil,
		minLevel:         config.MinLevel,
		service:          config.Service,
		version:          config.Version,
		environment:      config.Environment,
	}
}

func newConsole(env string) *zap.Logger {
	var cfg zap.Config
	if env == "production" {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	// level filtering happens in shouldLog
	cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	cfg.DisableStacktrace = true

	l, err := cfg.Build(zap.AddCallerSkip(3))
	if err != nil {
		log.Printf("zap console logger unavailable: %v", err)
		return zap.NewNop()
	}
	return l
}

// LogContext holds contextual information for logging
type LogContext struct {
	TenantID  string
	Gateway   string
	RequestID string
	Fields    map[string]any
}

// Debug logs a debug message
func (sl *SystemLogger) Debug(message string, ctx ...LogContext) {
	sl.log(LevelDebug, message, ctx...)
}

// Info logs an info message
func (sl *SystemLogger) Info(message string, ctx ...LogContext) {
	sl.log(LevelInfo, message, ctx...)
}

// Warn logs a warning message
func (sl *SystemLogger) Warn(message string, ctx ...LogContext) {
	sl.log(LevelWarn, message, ctx...)
}

// Error logs an error message
func (sl *SystemLogger) Error(message string, err error, ctx ...LogContext) {
	logCtx := LogContext{}
	if len(ctx) > 0 {
		logCtx = ctx[0]
	}

	fields := make(map[string]any, len(logCtx.Fields)+1)
	for k, v := range logCtx.Fields {
		fields[k] = v
	}
	if err != nil {
		fields["error"] = err.Error()
	}
	logCtx.Fields = fields

	sl.log(LevelError, message, logCtx)
}

// Fatal logs a fatal message and exits
func (sl *SystemLogger) Fatal(message string, err error, ctx ...LogContext) {
	sl.Error(message, err, ctx...)
	_ = sl.console.Sync()
	os.Exit(1)
}

// Sync flushes the console sink
func (sl *SystemLogger) Sync() error {
	return sl.console.Sync()
}

func (sl *SystemLogger) log(level LogLevel, message string, ctx ...LogContext) {
	if !sl.shouldLog(level) {
		return
	}

	site := callerAt(3)
	entry := SystemLog{
		Timestamp:   time.Now().UTC(),
		Level:       level,
		Message:     message,
		Component:   componentOf(site.file),
		Function:    site.function,
		File:        site.file,
		Line:        site.line,
		Environment: sl.environment,
		Service:     sl.service,
		Version:     sl.version,
	}

	if len(ctx) > 0 {
		entry.TenantID = ctx[0].TenantID
		entry.Gateway = ctx[0].Gateway
		entry.RequestID = ctx[0].RequestID
		entry.Fields = ctx[0].Fields
		entry.Error, _ = ctx[0].Fields["error"].(string)
	}

	sl.logToConsole(entry)

	if sl.enableOpenSearch {
		go sl.logToOpenSearch(entry)
	}
}

func (sl *SystemLogger) shouldLog(level LogLevel) bool {
	return levelOrder[level] >= levelOrder[sl.minLevel]
}

type callSite struct {
	file     string
	line     int
	function string
}

func callerAt(skip int) callSite {
	pc, file, line, ok := runtime.Caller(skip + 1)
	if !ok {
		return callSite{file: "unknown", function: "unknown"}
	}
	site := callSite{file: file, line: line, function: "unknown"}
	if fn := runtime.FuncForPC(pc); fn != nil {
		name := fn.Name()
		site.function = name[strings.LastIndex(name, ".")+1:]
	}
	return site
}

// componentOf names the package a source file belongs to, at most two levels below
// the module root: /src/funnelpay/provider/cashfree/cashfree.go is provider/cashfree.
// Files outside the module fall back to their directory name.
func componentOf(file string) string {
	dir := path.Dir(filepath.ToSlash(file))
	if dir == "." || dir == "/" {
		return "unknown"
	}

	if i := strings.LastIndex(dir, "/funnelpay/"); i >= 0 {
		parts := strings.SplitN(dir[i+len("/funnelpay/"):], "/", 3)
		if len(parts) > 2 {
			parts = parts[:2]
		}
		return strings.Join(parts, "/")
	}
	return path.Base(dir)
}

func (sl *SystemLogger) logToConsole(entry SystemLog) {
	fields := make([]zap.Field, 0, len(entry.Fields)+4)
	fields = append(fields, zap.String("component", entry.Component))
	if entry.TenantID != "" {
		fields = append(fields, zap.String("tenant", entry.TenantID))
	}
	if entry.Gateway != "" {
		fields = append(fields, zap.String("gateway", entry.Gateway))
	}
	if entry.RequestID != "" {
		fields = append(fields, zap.String("req_id", entry.RequestID))
	}
	for key, value := range entry.Fields {
		fields = append(fields, zap.Any(key, value))
	}

	switch entry.Level {
	case LevelDebug:
		sl.console.Debug(entry.Message, fields...)
	case LevelInfo:
		sl.console.Info(entry.Message, fields...)
	case LevelWarn:
		sl.console.Warn(entry.Message, fields...)
	default:
		// fatal exits in Fatal, not in zap
		sl.console.Error(entry.Message, fields...)
	}
}

func (sl *SystemLogger) logToOpenSearch(entry SystemLog) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := sl.openSearchLogger.LogSystemEvent(ctx, entry); err != nil {
		log.Printf("Failed to log to OpenSearch: %v", err)
	}
}

// WithContext returns a logger that attaches ctx to every entry
func (sl *SystemLogger) WithContext(ctx LogContext) *ContextLogger {
	return &ContextLogger{systemLogger: sl, context: ctx}
}

// ContextLogger is a SystemLogger bound to a LogContext. It is immutable: With
// returns a copy, so a base logger can be shared across branches of a request.
type ContextLogger struct {
	systemLogger *SystemLogger
	context      LogContext
}

func (cl *ContextLogger) Debug(message string) {
	cl.systemLogger.Debug(message, cl.context)
}

func (cl *ContextLogger) Info(message string) {
	cl.systemLogger.Info(message, cl.context)
}

func (cl *ContextLogger) Warn(message string) {
	cl.systemLogger.Warn(message, cl.context)
}

func (cl *ContextLogger) Error(message string, err error) {
	cl.systemLogger.Error(message, err, cl.context)
}

// With returns a copy of the logger carrying one more field
func (cl *ContextLogger) With(key string, value any) *ContextLogger {
	fields := make(map[string]any, len(cl.context.Fields)+1)
	for k, v := range cl.context.Fields {
		fields[k] = v
	}
	fields[key] = value

	next := cl.context
	next.Fields = fields
	return &ContextLogger{systemLogger: cl.systemLogger, context: next}
}
