// Package logger provides structured logging functionality for the application.
//
// It builds on the standard library log/slog package: JSON output with a
// configurable level, plus helpers for carrying a request-scoped logger
// through a context.Context.
package logger
