// Package utils holds the small contracts shared by the sync pipeline.
package utils

// Logger is what the reader, syncer and watcher log through. The leveled
// terminal logger in internal/logger satisfies it.
type Logger interface {
	Debug(format string, args ...interface{})
	Info(format string, args ...interface{})
	Warn(format string, args ...interface{})
	Error(format string, args ...interface{})
}

// NoopLogger discards everything. Syncers and watchers built without a
// logger fall back to it, and tests use it to keep output quiet.
type NoopLogger struct{}

// Debug discards the message.
func (NoopLogger) Debug(string, ...interface{}) {}

// Info discards the message.
func (NoopLogger) Info(string, ...interface{}) {}

// Warn discards the message.
func (NoopLogger) Warn(string, ...interface{}) {}

// Error discards the message.
func (NoopLogger) Error(string, ...interface{}) {}
