package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// LogLevel represents the log level.
type LogLevel string

const (
	LogLevelDebug LogLevel = "DEBUG"
	LogLevelInfo  LogLevel = "INFO"
	LogLevelWarn  LogLevel = "WARN"
	LogLevelError LogLevel = "ERROR"
)

// LogEntry represents a structured log entry.
type LogEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Level     LogLevel  `json:"level"`
	Message   string    `json:"message"`
	RunID     string    `json:"run_id"`
	Operation string    `json:"operation,omitempty"`
	TrackID   string    `json:"track_id,omitempty"`
	Error     string    `json:"error,omitempty"`
}

// Logger is a structured JSON-lines logger. Stdout belongs to the wire
// protocol, so all diagnostics go to a file (or another writer).
type Logger struct {
	w     io.Writer
	file  *os.File
	mu    sync.Mutex
	runID string
}

// NewLogger creates a file-backed logger. runID correlates every entry of
// one orchestration run.
func NewLogger(logPath, runID string) (*Logger, error) {
	logDir := filepath.Dir(logPath)
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	return &Logger{w: file, file: file, runID: runID}, nil
}

// NewWriterLogger creates a logger on an arbitrary writer. Used in tests
// and as the discard fallback when the log file cannot be opened.
func NewWriterLogger(w io.Writer, runID string) *Logger {
	return &Logger{w: w, runID: runID}
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{w: io.Discard}
}

// Close closes the underlying log file, if any.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file != nil {
		return l.file.Close()
	}
	return nil
}

// log writes a log entry.
func (l *Logger) log(level LogLevel, message, operation, trackID string, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry := LogEntry{
		Timestamp: time.Now(),
		Level:     level,
		Message:   message,
		RunID:     l.runID,
		Operation: operation,
		TrackID:   trackID,
	}
	if err != nil {
		entry.Error = err.Error()
	}

	jsonData, marshalErr := json.Marshal(entry)
	if marshalErr != nil {
		_, _ = fmt.Fprintf(l.w, "{\"timestamp\":%q,\"level\":%q,\"message\":%q,\"run_id\":%q}\n",
			time.Now().Format(time.RFC3339), level, message, l.runID)
		return
	}

	_, _ = fmt.Fprintln(l.w, string(jsonData))
}

// Debug logs a debug message.
func (l *Logger) Debug(operation, message string) {
	l.log(LogLevelDebug, message, operation, "", nil)
}

// Info logs an info message.
func (l *Logger) Info(operation, message string) {
	l.log(LogLevelInfo, message, operation, "", nil)
}

// Infof logs a formatted info message.
func (l *Logger) Infof(operation, format string, args ...interface{}) {
	l.log(LogLevelInfo, fmt.Sprintf(format, args...), operation, "", nil)
}

// Warn logs a warning message.
func (l *Logger) Warn(operation, message string, err error) {
	l.log(LogLevelWarn, message, operation, "", err)
}

// Error logs an error message.
func (l *Logger) Error(operation, message string, err error) {
	l.log(LogLevelError, message, operation, "", err)
}

// TrackInfo logs an info message scoped to one track.
func (l *Logger) TrackInfo(operation, trackID, message string) {
	l.log(LogLevelInfo, message, operation, trackID, nil)
}

// TrackWarn logs a warning scoped to one track.
func (l *Logger) TrackWarn(operation, trackID, message string, err error) {
	l.log(LogLevelWarn, message, operation, trackID, err)
}

// TrackError logs an error scoped to one track.
func (l *Logger) TrackError(operation, trackID, message string, err error) {
	l.log(LogLevelError, message, operation, trackID, err)
}
