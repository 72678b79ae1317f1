package logger

import (
	"io"
	"log"
	"os"
)

type LogLevel int

const (
	LogLevelNone LogLevel = iota
	LogLevelError
	LogLevelWarning
	LogLevelInfo
	LogLevelDebug
)

type Logger struct {
	logger *log.Logger
	level  LogLevel
	tag    string
}

// NewLogger wraps a standard logger. A nil logger discards all output.
func NewLogger(logger *log.Logger, level LogLevel) *Logger {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Logger{
		logger: logger,
		level:  level,
	}
}

// NewStdLogger builds the process logger. Under systemd (INVOCATION_ID set)
// journald already timestamps lines, so the prefix is dropped.
func NewStdLogger(level LogLevel) *Logger {
	flags := log.LstdFlags | log.Lmicroseconds | log.Lmsgprefix
	if os.Getenv("INVOCATION_ID") != "" {
		flags = 0
	}
	return NewLogger(log.New(os.Stdout, "", flags), level)
}

// WithTag creates a new logger with a tag prefix
func (l *Logger) WithTag(tag string) *Logger {
	return &Logger{
		logger: l.logger,
		level:  l.level,
		tag:    tag,
	}
}

func (l *Logger) Level() LogLevel {
	return l.level
}

func (l *Logger) formatMessage(level string, format string) string {
	if l.tag != "" {
		if level != "" {
			return "[" + l.tag + "] " + level + " " + format
		}
		return "[" + l.tag + "] " + format
	}
	if level != "" {
		return level + " " + format
	}
	return format
}

func (l *Logger) Debugf(format string, v ...interface{}) {
	if l.level >= LogLevelDebug {
		l.logger.Printf(l.formatMessage("DEBUG:", format), v...)
	}
}

func (l *Logger) Infof(format string, v ...interface{}) {
	if l.level >= LogLevelInfo {
		l.logger.Printf(l.formatMessage("", format), v...)
	}
}

// Printf is an alias for Infof so a Logger can stand in for *log.Logger
func (l *Logger) Printf(format string, v ...interface{}) {
	l.Infof(format, v...)
}

func (l *Logger) Warnf(format string, v ...interface{}) {
	if l.level >= LogLevelWarning {
		l.logger.Printf(l.formatMessage("WARN:", format), v...)
	}
}

func (l *Logger) Errorf(format string, v ...interface{}) {
	if l.level >= LogLevelError {
		l.logger.Printf(l.formatMessage("ERROR:", format), v...)
	}
}

func (l *Logger) Fatalf(format string, v ...interface{}) {
	l.logger.Fatalf(l.formatMessage("FATAL:", format), v...)
}
