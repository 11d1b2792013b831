package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"
)

// MaskLevel selects which log messages are printed
type MaskLevel int

const (
	Nothing   MaskLevel = 0x0
	ErrorMask MaskLevel = 0x1
	WarnMask  MaskLevel = 0x2
	InfoMask  MaskLevel = 0x4
	DebugMask MaskLevel = 0x8
	fatalMask MaskLevel = 0x10
)

var levelNames = map[string]MaskLevel{
	"none":  Nothing,
	"error": ErrorMask,
	"warn":  ErrorMask | WarnMask,
	"info":  ErrorMask | WarnMask | InfoMask,
	"debug": ErrorMask | WarnMask | InfoMask | DebugMask,
}

// ParseLevel turns a level name (none, error, warn, info, debug) into the
// mask that prints it and everything more severe.
func ParseLevel(name string) (MaskLevel, error) {
	m, ok := levelNames[strings.ToLower(name)]
	if !ok {
		return Nothing, fmt.Errorf("%w: unknown log level %q", ErrBadConfig, name)
	}
	return m, nil
}

// Logger writes leveled messages. Devices log from their own goroutines,
// so writes are serialized by mu.
type Logger struct {
	mu    sync.Mutex
	level MaskLevel
	w     io.Writer
}

// NewLogger creates New Logger
func NewLogger(w io.Writer, level MaskLevel) *Logger {
	return &Logger{w: w, level: level}
}

// SetLevel sets the mask and returns the previous one
func (l *Logger) SetLevel(mask MaskLevel) MaskLevel {
	l.mu.Lock()
	defer l.mu.Unlock()
	r := l.level
	l.level = mask
	return r
}

func (l *Logger) logf(m MaskLevel, format string, params ...interface{}) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if (l.level|fatalMask)&m == 0 || l.w == nil {
		return
	}
	switch m {
	case fatalMask:
		color.New(color.FgRed, color.Bold).Fprint(l.w, "FATAL:")
	case ErrorMask:
		color.New(color.FgRed).Fprint(l.w, "ERROR:")
	case WarnMask:
		color.New(color.FgYellow).Fprint(l.w, " WARN:")
	case InfoMask:
		color.New(color.FgGreen).Fprint(l.w, " INFO:")
	case DebugMask:
		color.New(color.FgBlue).Fprint(l.w, "DEBUG:")
	}
	if !strings.HasSuffix(format, "\n") {
		format += "\n"
	}
	fmt.Fprintf(l.w, " "+format, params...)
}

// Errorf prints the message at ErrorMask
func (l *Logger) Errorf(format string, params ...interface{}) {
	l.logf(ErrorMask, format, params...)
}

// Warnf prints the message at WarnMask
func (l *Logger) Warnf(format string, params ...interface{}) {
	l.logf(WarnMask, format, params...)
}

// Infof prints the message at InfoMask
func (l *Logger) Infof(format string, params ...interface{}) {
	l.logf(InfoMask, format, params...)
}

// Debugf prints the message at DebugMask
func (l *Logger) Debugf(format string, params ...interface{}) {
	l.logf(DebugMask, format, params...)
}

// Fatalf prints the message and exits with exitCode. It is not maskable.
func (l *Logger) Fatalf(exitCode int, format string, params ...interface{}) {
	l.logf(fatalMask, format, params...)
	os.Exit(exitCode)
}
