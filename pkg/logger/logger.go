// Package logger defines the structured logging interface used by all bridge
// components. Implementations live in internal/infrastructure/monitoring.
package logger

import "context"

// Fields carries structured key/value pairs attached to a log entry.
type Fields map[string]interface{}

// Logger is the logging interface consumed by bridge components.
type Logger interface {
	// Debug logs a debug message.
	Debug(ctx context.Context, msg string, fields ...Fields)

	// Info logs an informational message.
	Info(ctx context.Context, msg string, fields ...Fields)

	// Warn logs a warning message.
	Warn(ctx context.Context, msg string, fields ...Fields)

	// Error logs an error message with its cause.
	Error(ctx context.Context, msg string, err error, fields ...Fields)

	// Fatal logs a fatal message and terminates the process.
	Fatal(ctx context.Context, msg string, err error, fields ...Fields)

	// WithFields returns a logger that attaches fields to every entry.
	WithFields(fields Fields) Logger
}
