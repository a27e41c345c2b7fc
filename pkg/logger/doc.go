// Package logger provides structured logging built on log/slog with configurable
// levels, a text or JSON handler chosen by environment, and request ID propagation
// through context.
package logger
