// Package logger builds the process-wide JSON slog logger from server
// configuration. It also exports TestLogBuffer, which tests in other
// packages use to assert on emitted records.
package logger
