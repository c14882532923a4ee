// Package logger provides tagged, leveled log helpers on top of the standard
// library logger. Lines look like "[INFO] [Network] Loaded 3 ports".
package logger

import (
	"fmt"
	"log"
	"strings"
	"sync/atomic"
)

type Level int32

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

var level atomic.Int32

func init() {
	level.Store(int32(LevelInfo))
}

// ParseLevel converts "debug", "info", "warn" or "error" to a Level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "", "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	}
	return LevelInfo, fmt.Errorf("unknown log level %q", s)
}

// SetLevel sets the minimum level that is written.
func SetLevel(l Level) { level.Store(int32(l)) }

// Enabled reports whether messages at l are written.
func Enabled(l Level) bool { return int32(l) >= level.Load() }

func emit(l Level, label, tag, msg string) {
	if !Enabled(l) {
		return
	}
	log.Printf("[%s] [%s] %s", label, tag, msg)
}

func Debug(tag, msg string)   { emit(LevelDebug, "DEBUG", tag, msg) }
func Info(tag, msg string)    { emit(LevelInfo, "INFO", tag, msg) }
func Success(tag, msg string) { emit(LevelInfo, "OK", tag, msg) }
func Warn(tag, msg string)    { emit(LevelWarn, "WARN", tag, msg) }
func Error(tag, msg string)   { emit(LevelError, "ERROR", tag, msg) }

// Debugf formats only when debug output is enabled; the search loop calls it per port.
func Debugf(tag, format string, args ...interface{}) {
	if !Enabled(LevelDebug) {
		return
	}
	emit(LevelDebug, "DEBUG", tag, fmt.Sprintf(format, args...))
}

func Infof(tag, format string, args ...interface{}) {
	Info(tag, fmt.Sprintf(format, args...))
}

func Warnf(tag, format string, args ...interface{}) {
	Warn(tag, fmt.Sprintf(format, args...))
}

func Errorf(tag, format string, args ...interface{}) {
	Error(tag, fmt.Sprintf(format, args...))
}

// Banner prints the startup banner.
func Banner(version string) {
	if version == "" {
		version = "dev"
	}
	log.Printf("=== Sea Route Server %s ===", version)
}

// Section prints a section header.
func Section(title string) {
	log.Printf("--- %s ---", title)
}

// Stats prints a key/value line at info level.
func Stats(key string, value interface{}) {
	emit(LevelInfo, "INFO", "Stats", fmt.Sprintf("%s: %v", key, value))
}
