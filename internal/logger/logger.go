// Package logger writes structured console logs through logrus. Each line
// carries the request, session and operator of the context it was logged in.
package logger

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Level represents the severity level of a log entry
type Level string

const (
	LevelDebug Level = "DEBUG"
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelError Level = "ERROR"
)

// Output formats
const (
	FormatJSON = "json"
	FormatText = "text"
)

type contextKey string

const (
	requestIDKey contextKey = "request_id"
	sessionIDKey contextKey = "session_id"
	operatorKey  contextKey = "operator"
)

// correlation keys in the order they are read from a context
var correlationKeys = []contextKey{requestIDKey, sessionIDKey, operatorKey}

// Entry is the JSON shape of a single log line
type Entry struct {
	Timestamp string                 `json:"timestamp"`
	Level     Level                  `json:"level"`
	Message   string                 `json:"message"`
	RequestID string                 `json:"request_id,omitempty"`
	SessionID string                 `json:"session_id,omitempty"`
	Operator  string                 `json:"operator,omitempty"`
	Context   map[string]interface{} `json:"context,omitempty"`
	Error     string                 `json:"error,omitempty"`
	Stack     []string               `json:"stack,omitempty"`
}

// Logger is a logrus-backed logger with optional preset fields. Loggers are
// immutable; WithFields returns a new one.
type Logger struct {
	base      *logrus.Logger
	minLevel  Level
	withStack bool
	fields    map[string]interface{}
}

// Config holds logger configuration
type Config struct {
	Output    io.Writer
	MinLevel  Level
	WithStack bool
	Format    string
}

// New creates a new logger with the given configuration
func New(cfg Config) *Logger {
	if cfg.Output == nil {
		cfg.Output = os.Stdout
	}
	if cfg.MinLevel == "" {
		cfg.MinLevel = LevelInfo
	}

	base := logrus.New()
	base.SetOutput(cfg.Output)
	base.SetLevel(toLogrus(cfg.MinLevel))
	if cfg.Format == FormatText {
		base.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.RFC3339,
			DisableColors:   true,
		})
	} else {
		base.SetFormatter(&entryFormatter{})
	}

	return &Logger{
		base:      base,
		minLevel:  cfg.MinLevel,
		withStack: cfg.WithStack,
	}
}

// Default creates an INFO logger writing JSON to stdout
func Default() *Logger {
	return New(Config{})
}

// ForLevel creates a stdout logger from a configured level name. Debug
// loggers also record stack traces on errors.
func ForLevel(level, format string) *Logger {
	minLevel := ParseLevel(level)
	return New(Config{
		MinLevel:  minLevel,
		WithStack: minLevel == LevelDebug,
		Format:    format,
	})
}

// ParseLevel converts a configured level name; unknown names mean INFO
func ParseLevel(level string) Level {
	switch strings.ToLower(level) {
	case "debug":
		return LevelDebug
	case "warn":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

func toLogrus(level Level) logrus.Level {
	switch level {
	case LevelDebug:
		return logrus.DebugLevel
	case LevelWarn:
		return logrus.WarnLevel
	case LevelError:
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}

func fromLogrus(level logrus.Level) Level {
	switch level {
	case logrus.TraceLevel, logrus.DebugLevel:
		return LevelDebug
	case logrus.WarnLevel:
		return LevelWarn
	case logrus.InfoLevel:
		return LevelInfo
	default:
		return LevelError
	}
}

var (
	mu         sync.RWMutex
	app, sqlog *Logger
)

// AppLogger returns the application logger
func AppLogger() *Logger {
	return shared(&app)
}

// DatabaseLogger returns the logger used for SQL statements
func DatabaseLogger() *Logger {
	return shared(&sqlog)
}

func shared(slot **Logger) *Logger {
	mu.RLock()
	l := *slot
	mu.RUnlock()
	if l != nil {
		return l
	}

	mu.Lock()
	defer mu.Unlock()
	if *slot == nil {
		*slot = Default()
	}
	return *slot
}

// Configure replaces the application and database loggers
func Configure(appLevel, dbLevel, format string) {
	mu.Lock()
	defer mu.Unlock()
	app = ForLevel(appLevel, format)
	sqlog = ForLevel(dbLevel, format)
}

// SetAppLogger replaces the application logger
func SetAppLogger(l *Logger) {
	mu.Lock()
	defer mu.Unlock()
	app = l
}

// SetDatabaseLogger replaces the database logger
func SetDatabaseLogger(l *Logger) {
	mu.Lock()
	defer mu.Unlock()
	sqlog = l
}

// WithFields returns a logger adding fields to every line. Fields given
// here override preset fields of the same name.
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	merged := make(map[string]interface{}, len(l.fields)+len(fields))
	for k, v := range l.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	clone := *l
	clone.fields = merged
	return &clone
}

// Writer returns a writer that logs each line at the given level, used to
// route third-party loggers through this one
func (l *Logger) Writer(level Level) *io.PipeWriter {
	return l.base.WriterLevel(toLogrus(level))
}

// Enabled reports whether lines at level are written
func (l *Logger) Enabled(level Level) bool {
	return l.base.IsLevelEnabled(toLogrus(level))
}

func (l *Logger) Debug(msg string) { l.emit(context.Background(), LevelDebug, msg, nil) }
func (l *Logger) Info(msg string)  { l.emit(context.Background(), LevelInfo, msg, nil) }
func (l *Logger) Warn(msg string)  { l.emit(context.Background(), LevelWarn, msg, nil) }

// Error logs msg with err at ERROR
func (l *Logger) Error(msg string, err error) { l.emit(context.Background(), LevelError, msg, err) }

func (l *Logger) DebugContext(ctx context.Context, msg string) { l.emit(ctx, LevelDebug, msg, nil) }
func (l *Logger) InfoContext(ctx context.Context, msg string)  { l.emit(ctx, LevelInfo, msg, nil) }
func (l *Logger) WarnContext(ctx context.Context, msg string)  { l.emit(ctx, LevelWarn, msg, nil) }

// ErrorContext logs msg with err at ERROR, tagged with the context's ids
func (l *Logger) ErrorContext(ctx context.Context, msg string, err error) {
	l.emit(ctx, LevelError, msg, err)
}

const stackKey = "stack"

func (l *Logger) emit(ctx context.Context, level Level, msg string, err error) {
	if !l.Enabled(level) {
		return
	}

	data := make(logrus.Fields, len(l.fields)+len(correlationKeys)+2)
	for k, v := range l.fields {
		data[k] = v
	}
	for _, key := range correlationKeys {
		if v, ok := ctx.Value(key).(string); ok && v != "" {
			data[string(key)] = v
		}
	}
	if err != nil {
		data[logrus.ErrorKey] = err.Error()
		if l.withStack && level == LevelError {
			data[stackKey] = callers()
		}
	}

	l.base.WithFields(data).Log(toLogrus(level), msg)
}

// callers lists the frames above the logging call
func callers() []string {
	var pcs [32]uintptr
	n := runtime.Callers(4, pcs[:])
	frames := runtime.CallersFrames(pcs[:n])

	stack := make([]string, 0, n)
	for {
		frame, more := frames.Next()
		stack = append(stack, fmt.Sprintf("%s:%d %s", frame.File, frame.Line, frame.Function))
		if !more {
			return stack
		}
	}
}

// entryFormatter renders logrus entries as Entry JSON lines
type entryFormatter struct{}

func (f *entryFormatter) Format(e *logrus.Entry) ([]byte, error) {
	entry := Entry{
		Timestamp: e.Time.UTC().Format(time.RFC3339Nano),
		Level:     fromLogrus(e.Level),
		Message:   e.Message,
	}

	for k, v := range e.Data {
		switch k {
		case logrus.ErrorKey:
			entry.Error = fmt.Sprint(v)
		case stackKey:
			entry.Stack, _ = v.([]string)
		case string(requestIDKey):
			entry.RequestID = fmt.Sprint(v)
		case string(sessionIDKey):
			entry.SessionID = fmt.Sprint(v)
		case string(operatorKey):
			entry.Operator = fmt.Sprint(v)
		default:
			if entry.Context == nil {
				entry.Context = make(map[string]interface{}, len(e.Data))
			}
			entry.Context[k] = v
		}
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal log entry: %w", err)
	}
	return append(data, '\n'), nil
}

// ContextWithRequestID tags log lines written with ctx with a request id
func ContextWithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// ContextWithSessionID tags log lines written with ctx with a console session id
func ContextWithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, sessionIDKey, sessionID)
}

// ContextWithOperator tags log lines written with ctx with the signed-in
// catalog username
func ContextWithOperator(ctx context.Context, username string) context.Context {
	return context.WithValue(ctx, operatorKey, username)
}
