// Package logging provides the structured logger used across the service.
// Console output and an optional JSON log file are fanned out through slog-multi.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	slogmulti "github.com/samber/slog-multi"
)

// LogLevel mirrors slog levels and adds Trace and Fatal.
type LogLevel slog.Level

const (
	LevelTrace LogLevel = LogLevel(slog.LevelDebug - 4)
	LevelDebug LogLevel = LogLevel(slog.LevelDebug)
	LevelInfo  LogLevel = LogLevel(slog.LevelInfo)
	LevelWarn  LogLevel = LogLevel(slog.LevelWarn)
	LevelError LogLevel = LogLevel(slog.LevelError)
	LevelFatal LogLevel = LogLevel(slog.LevelError + 4)
)

// LogConfig holds logging configuration
type LogConfig struct {
	Level    LogLevel `json:"level"`
	Format   string   `json:"format"`    // "json" or "text" for the console handler
	Output   string   `json:"output"`    // "stdout" or "stderr"
	FilePath string   `json:"file_path"` // optional JSON log file, empty disables it
}

// DefaultLogConfig returns sensible default logging configuration
func DefaultLogConfig() LogConfig {
	return LogConfig{
		Level:  LevelInfo,
		Format: "text",
		Output: "stdout",
	}
}

// Logger provides structured logging with context support
type Logger struct {
	config  LogConfig
	slogger *slog.Logger
	file    *os.File
}

// NewLogger creates a new structured logger. When FilePath is set, entries go to the
// console and, as JSON, to the file.
func NewLogger(config LogConfig) (*Logger, error) {
	var console io.Writer = os.Stdout
	if config.Output == "stderr" {
		console = os.Stderr
	}

	l := &Logger{config: config}
	handlers := []slog.Handler{consoleHandler(console, config)}

	if config.FilePath != "" {
		if err := os.MkdirAll(filepath.Dir(config.FilePath), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		f, err := os.OpenFile(config.FilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		l.file = f
		handlers = append(handlers, slog.NewJSONHandler(f, &slog.HandlerOptions{Level: slog.Level(config.Level)}))
	}

	l.slogger = slog.New(slogmulti.Fanout(handlers...))
	return l, nil
}

// NewWithWriters builds a logger over arbitrary writers (tests, CLI).
func NewWithWriters(console, file io.Writer, config LogConfig) *Logger {
	handlers := []slog.Handler{consoleHandler(console, config)}
	if file != nil {
		handlers = append(handlers, slog.NewJSONHandler(file, &slog.HandlerOptions{Level: slog.Level(config.Level)}))
	}
	return &Logger{config: config, slogger: slog.New(slogmulti.Fanout(handlers...))}
}

// NewNop returns a logger that discards everything.
func NewNop() *Logger {
	return NewWithWriters(io.Discard, nil, LogConfig{Level: LevelFatal})
}

func consoleHandler(w io.Writer, config LogConfig) slog.Handler {
	opts := &slog.HandlerOptions{Level: slog.Level(config.Level)}
	if config.Format == "json" {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

// ParseLevel maps names like "debug" or "WARN" to a level; unknown names yield Info.
func ParseLevel(s string) LogLevel {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "TRACE":
		return LevelTrace
	case "DEBUG":
		return LevelDebug
	case "WARN", "WARNING":
		return LevelWarn
	case "ERROR":
		return LevelError
	case "FATAL":
		return LevelFatal
	default:
		return LevelInfo
	}
}

// Slog exposes the underlying slog logger for libraries that want one.
func (l *Logger) Slog() *slog.Logger { return l.slogger }

// Close flushes and closes the log file, if any.
func (l *Logger) Close() error {
	if l.file != nil {
		return l.file.Close()
	}
	return nil
}

type ctxKey string

const (
	requestIDKey ctxKey = "request_id"
	userIDKey    ctxKey = "user_id"
)

// WithRequestID stores a request id for ContextLogger.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// WithUserID stores the acting user id for ContextLogger.
func WithUserID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, userIDKey, id)
}

// RequestID returns the request id stored in ctx, if any.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// WithContext returns a logger with context information
func (l *Logger) WithContext(ctx context.Context) *ContextLogger {
	return &ContextLogger{logger: l, ctx: ctx}
}

// WithComponent returns a logger with component information
func (l *Logger) WithComponent(component string) *ComponentLogger {
	return &ComponentLogger{logger: l, component: component}
}

// ContextLogger provides context-aware logging
type ContextLogger struct {
	logger    *Logger
	ctx       context.Context
	component string
}

// ComponentLogger provides component-specific logging
type ComponentLogger struct {
	logger    *Logger
	component string
}

func (l *Logger) Trace(msg string, fields ...Field) { l.log(context.Background(), LevelTrace, msg, nil, fields) }
func (l *Logger) Debug(msg string, fields ...Field) { l.log(context.Background(), LevelDebug, msg, nil, fields) }
func (l *Logger) Info(msg string, fields ...Field)  { l.log(context.Background(), LevelInfo, msg, nil, fields) }
func (l *Logger) Warn(msg string, fields ...Field)  { l.log(context.Background(), LevelWarn, msg, nil, fields) }

func (l *Logger) Error(msg string, err error, fields ...Field) {
	l.log(context.Background(), LevelError, msg, err, fields)
}

// Fatal logs at fatal level and exits
func (l *Logger) Fatal(msg string, err error, fields ...Field) {
	l.log(context.Background(), LevelFatal, msg, err, fields)
	_ = l.Close()
	os.Exit(1)
}

func (cl *ComponentLogger) with(fields []Field) []Field {
	return append(fields, String("component", cl.component))
}

func (cl *ComponentLogger) Debug(msg string, fields ...Field) {
	cl.logger.log(context.Background(), LevelDebug, msg, nil, cl.with(fields))
}

func (cl *ComponentLogger) Info(msg string, fields ...Field) {
	cl.logger.log(context.Background(), LevelInfo, msg, nil, cl.with(fields))
}

func (cl *ComponentLogger) Warn(msg string, fields ...Field) {
	cl.logger.log(context.Background(), LevelWarn, msg, nil, cl.with(fields))
}

func (cl *ComponentLogger) Error(msg string, err error, fields ...Field) {
	cl.logger.log(context.Background(), LevelError, msg, err, cl.with(fields))
}

// WithContext keeps the component while adding request scoped values.
func (cl *ComponentLogger) WithContext(ctx context.Context) *ContextLogger {
	return &ContextLogger{logger: cl.logger, ctx: ctx, component: cl.component}
}

func (cl *ContextLogger) fields(fields []Field) []Field {
	if cl.component != "" {
		fields = append(fields, String("component", cl.component))
	}
	return fields
}

func (cl *ContextLogger) Debug(msg string, fields ...Field) {
	cl.logger.log(cl.ctx, LevelDebug, msg, nil, cl.fields(fields))
}

func (cl *ContextLogger) Info(msg string, fields ...Field) {
	cl.logger.log(cl.ctx, LevelInfo, msg, nil, cl.fields(fields))
}

func (cl *ContextLogger) Warn(msg string, fields ...Field) {
	cl.logger.log(cl.ctx, LevelWarn, msg, nil, cl.fields(fields))
}

func (cl *ContextLogger) Error(msg string, err error, fields ...Field) {
	cl.logger.log(cl.ctx, LevelError, msg, err, cl.fields(fields))
}

func (l *Logger) log(ctx context.Context, level LogLevel, msg string, err error, fields []Field) {
	if level < l.config.Level {
		return
	}

	attrs := make([]slog.Attr, 0, len(fields)+4)
	if id := RequestID(ctx); id != "" {
		attrs = append(attrs, slog.String("request_id", id))
	}
	if id, _ := ctx.Value(userIDKey).(string); id != "" {
		attrs = append(attrs, slog.String("user_id", id))
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	if level >= LevelWarn {
		if _, file, line, ok := runtime.Caller(2); ok {
			attrs = append(attrs, slog.String("caller", fmt.Sprintf("%s:%d", filepath.Base(file), line)))
		}
	}
	for _, f := range fields {
		attrs = append(attrs, slog.Any(f.Key, f.Value))
	}

	l.slogger.LogAttrs(ctx, slog.Level(level), msg, attrs...)
}

// Field represents a structured log field
type Field struct {
	Key   string
	Value interface{}
}

// Field constructors
func String(key, value string) Field                 { return Field{Key: key, Value: value} }
func Int(key string, value int) Field                { return Field{Key: key, Value: value} }
func Int64(key string, value int64) Field            { return Field{Key: key, Value: value} }
func Float64(key string, value float64) Field        { return Field{Key: key, Value: value} }
func Bool(key string, value bool) Field              { return Field{Key: key, Value: value} }
func Duration(key string, value time.Duration) Field { return Field{Key: key, Value: value} }
func Any(key string, value interface{}) Field        { return Field{Key: key, Value: value} }

func Error(err error) Field {
	if err == nil {
		return Field{Key: "error", Value: ""}
	}
	return Field{Key: "error", Value: err.Error()}
}
