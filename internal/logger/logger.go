// Package logger provides a leveled logger with optionally colored level prefixes.
package logger

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/CageChen/hideme/internal/utils"
	"github.com/fatih/color"
)

var _ utils.Logger = (*Logger)(nil)

// Level defines log severity levels
type Level int

// Log levels from least to most restrictive
const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelNone
)

// Logger writes one line per message: "[time LEVEL] message"
type Logger struct {
	mu        sync.Mutex
	out       io.Writer
	useColors bool
	level     Level
	now       func() time.Time
}

// New creates a Logger writing to out at info level
func New(out io.Writer, useColors bool) *Logger {
	return &Logger{
		out:       out,
		useColors: useColors,
		level:     LevelInfo,
		now:       time.Now,
	}
}

// WithLevel sets the log level and returns the logger
func (l *Logger) WithLevel(level Level) *Logger {
	l.level = level
	return l
}

// SetLevel sets the log level from its name
func (l *Logger) SetLevel(name string) {
	l.WithLevel(ParseLevel(name))
}

// ParseLevel converts a level name to a Level. Unknown names map to LevelInfo.
func ParseLevel(name string) Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return LevelDebug
	case "info", "":
		return LevelInfo
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	case "none", "off":
		return LevelNone
	default:
		return LevelInfo
	}
}

// Debug logs a debug message
func (l *Logger) Debug(format string, args ...interface{}) {
	l.log(LevelDebug, "DEBUG", color.CyanString, format, args...)
}

// Info logs an informational message
func (l *Logger) Info(format string, args ...interface{}) {
	l.log(LevelInfo, "INFO", color.BlueString, format, args...)
}

// Warn logs a warning message
func (l *Logger) Warn(format string, args ...interface{}) {
	l.log(LevelWarn, "WARN", color.YellowString, format, args...)
}

// Error logs an error message
func (l *Logger) Error(format string, args ...interface{}) {
	l.log(LevelError, "ERROR", color.RedString, format, args...)
}

func (l *Logger) log(level Level, prefix string, paint func(string, ...interface{}) string, format string, args ...interface{}) {
	if l.level > level {
		return
	}
	if l.useColors {
		prefix = paint(prefix)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.out, "[%s %s] %s\n", l.now().Format("15:04:05.000"), prefix, fmt.Sprintf(format, args...))
}
