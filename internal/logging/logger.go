// Package logging provides the small printf-style logger shared by every
// notetrack component.
package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"reflect"
	"strings"
	"sync"
)

// Logger defines a minimal, printf-style logging contract.
type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// Level is the minimum severity a std logger emits.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

var levelNames = map[Level]string{
	LevelDebug: "DEBUG",
	LevelInfo:  "INFO",
	LevelWarn:  "WARN",
	LevelError: "ERROR",
}

func (l Level) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return fmt.Sprintf("LEVEL(%d)", int(l))
}

// ParseLevel maps "debug", "info", "warn"/"warning" and "error" to a Level.
// Unknown names yield LevelInfo.
func ParseLevel(name string) Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

// Nop returns a logger that discards all output.
func Nop() Logger {
	return nopLogger{}
}

// IsNil reports whether logger is nil or wraps a nil pointer receiver.
func IsNil(logger Logger) bool {
	if logger == nil {
		return true
	}
	val := reflect.ValueOf(logger)
	switch val.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Slice, reflect.Map, reflect.Func:
		return val.IsNil()
	default:
		return false
	}
}

// OrNop returns logger when non-nil, otherwise a no-op logger.
func OrNop(logger Logger) Logger {
	if IsNil(logger) {
		return Nop()
	}
	return logger
}

// StdLogger writes leveled lines through a standard library *log.Logger.
type StdLogger struct {
	mu        sync.Mutex
	out       *log.Logger
	level     Level
	component string
}

// New creates a component logger writing to w at or above level.
// A nil writer defaults to stderr.
func New(w io.Writer, component string, level Level) *StdLogger {
	if w == nil {
		w = os.Stderr
	}
	return &StdLogger{
		out:       log.New(w, "", log.LstdFlags),
		level:     level,
		component: component,
	}
}

// With returns a logger sharing the same output scoped to another component.
func (l *StdLogger) With(component string) *StdLogger {
	return &StdLogger{out: l.out, level: l.level, component: component}
}

func (l *StdLogger) Debug(format string, args ...any) { l.write(LevelDebug, format, args...) }
func (l *StdLogger) Info(format string, args ...any)  { l.write(LevelInfo, format, args...) }
func (l *StdLogger) Warn(format string, args ...any)  { l.write(LevelWarn, format, args...) }
func (l *StdLogger) Error(format string, args ...any) { l.write(LevelError, format, args...) }

func (l *StdLogger) write(level Level, format string, args ...any) {
	if l == nil || level < l.level {
		return
	}
	msg := fmt.Sprintf(format, args...)
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.component != "" {
		l.out.Printf("[%s] [%s] %s", level, l.component, msg)
		return
	}
	l.out.Printf("[%s] %s", level, msg)
}
