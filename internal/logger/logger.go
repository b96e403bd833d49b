// Package logger provides a small logging interface for cpugrid components.
// Packages log debug, info, warn, and error messages without being coupled
// to a specific logging implementation.
package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync"
)

// Logger defines the interface for logging operations.
// All methods accept a format string and arguments, similar to fmt.Printf.
type Logger interface {
	Debug(format string, args ...interface{})
	Info(format string, args ...interface{})
	Warn(format string, args ...interface{})
	Error(format string, args ...interface{})
}

// stdLogger writes through a standard library *log.Logger.
// Debug messages are only printed when debug is enabled or CPUGRID_DEBUG is set.
type stdLogger struct {
	prefix string
	debug  bool
	out    *log.Logger
}

// New creates a logger writing to w. The prefix is prepended to every message
// (e.g. "[loop]" or "[session]").
func New(w io.Writer, prefix string, debug bool) Logger {
	return &stdLogger{
		prefix: prefix,
		debug:  debug || os.Getenv("CPUGRID_DEBUG") != "",
		out:    log.New(w, "", log.LstdFlags),
	}
}

func (l *stdLogger) Debug(format string, args ...interface{}) {
	if l.debug {
		l.out.Printf(l.prefix+" "+format, args...)
	}
}

func (l *stdLogger) Info(format string, args ...interface{}) {
	l.out.Printf(l.prefix+" "+format, args...)
}

func (l *stdLogger) Warn(format string, args ...interface{}) {
	l.out.Printf(l.prefix+" WARN: "+format, args...)
}

func (l *stdLogger) Error(format string, args ...interface{}) {
	l.out.Printf(l.prefix+" ERROR: "+format, args...)
}

// noopLogger implements Logger but discards all messages.
type noopLogger struct{}

// Noop returns a logger that discards all messages.
func Noop() Logger {
	return &noopLogger{}
}

func (l *noopLogger) Debug(format string, args ...interface{}) {}
func (l *noopLogger) Info(format string, args ...interface{})  {}
func (l *noopLogger) Warn(format string, args ...interface{})  {}
func (l *noopLogger) Error(format string, args ...interface{}) {}

// LogMessage represents a captured log message.
type LogMessage struct {
	Level   string
	Message string
}

// BufferLogger captures log messages for inspection.
type BufferLogger struct {
	mu       sync.Mutex
	Messages []LogMessage
}

// NewBufferLogger creates a logger that captures messages in memory.
func NewBufferLogger() *BufferLogger {
	return &BufferLogger{
		Messages: make([]LogMessage, 0),
	}
}

func (l *BufferLogger) add(level, format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Messages = append(l.Messages, LogMessage{Level: level, Message: fmt.Sprintf(format, args...)})
}

func (l *BufferLogger) Debug(format string, args ...interface{}) { l.add("debug", format, args...) }
func (l *BufferLogger) Info(format string, args ...interface{})  { l.add("info", format, args...) }
func (l *BufferLogger) Warn(format string, args ...interface{})  { l.add("warn", format, args...) }
func (l *BufferLogger) Error(format string, args ...interface{}) { l.add("error", format, args...) }

// HasLevel returns true if any message was logged at the given level.
func (l *BufferLogger) HasLevel(level string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, m := range l.Messages {
		if m.Level == level {
			return true
		}
	}
	return false
}

// Replay writes every captured message to dst in order, skipping debug
// messages unless debug is set.
func (l *BufferLogger) Replay(dst Logger, debug bool) {
	l.mu.Lock()
	msgs := append([]LogMessage(nil), l.Messages...)
	l.mu.Unlock()

	for _, m := range msgs {
		switch m.Level {
		case "debug":
			if debug {
				dst.Debug("%s", m.Message)
			}
		case "info":
			dst.Info("%s", m.Message)
		case "warn":
			dst.Warn("%s", m.Message)
		default:
			dst.Error("%s", m.Message)
		}
	}
}

// Clear removes all captured messages.
func (l *BufferLogger) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Messages = l.Messages[:0]
}
