package utils

import (
	"fmt"
	"io"
	"log"
	"os"
	"time"
)

// Logger wraps standard log with level-based output
type Logger struct {
	info  *log.Logger
	warn  *log.Logger
	error *log.Logger
	debug *log.Logger

	debugEnabled bool
}

// NewLogger creates a logger writing to stdout, with errors on stderr
func NewLogger(debug bool) *Logger {
	return NewLoggerTo(os.Stdout, os.Stderr, debug)
}

// NewLoggerTo creates a logger writing to the given streams
func NewLoggerTo(out, errOut io.Writer, debug bool) *Logger {
	flags := log.Lmsgprefix
	return &Logger{
		info:         log.New(out, "[INFO]  ", flags),
		warn:         log.New(out, "[WARN]  ", flags),
		error:        log.New(errOut, "[ERROR] ", flags),
		debug:        log.New(out, "[DEBUG] ", flags),
		debugEnabled: debug,
	}
}

// Discard returns a logger that drops everything
func Discard() *Logger {
	return NewLoggerTo(io.Discard, io.Discard, false)
}

func (l *Logger) prefix() string {
	return fmt.Sprintf(" %s ", time.Now().Format("15:04:05"))
}

func (l *Logger) Info(msg string, args ...interface{}) {
	l.info.Printf(l.prefix()+msg, args...)
}

func (l *Logger) Warn(msg string, args ...interface{}) {
	l.warn.Printf(l.prefix()+msg, args...)
}

func (l *Logger) Error(msg string, args ...interface{}) {
	l.error.Printf(l.prefix()+msg, args...)
}

func (l *Logger) Debug(msg string, args ...interface{}) {
	if !l.debugEnabled {
		return
	}
	l.debug.Printf(l.prefix()+msg, args...)
}
