// Package logging provides component loggers for the lumi CLI, built on
// charmbracelet/log. Each package obtains a named logger via Get; levels
// can be overridden per component through the configuration file.
//
// Basic usage:
//
//	if err := logging.Init(logging.Config{Level: "info"}); err != nil {
//	    log.Fatal(err)
//	}
//	defer logging.Close()
//
//	logger := logging.Get("discover")
//	logger.Info("scan started", "root", root)
package logging

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/adrg/xdg"
	"github.com/charmbracelet/log"
)

// Level represents a logging level.
type Level int

// Log levels from least to most severe.
const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// String returns the string representation of the level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return "unknown"
	}
}

// toCharmLevel converts our Level to a charmbracelet/log level.
func (l Level) toCharmLevel() log.Level {
	switch l {
	case LevelDebug:
		return log.DebugLevel
	case LevelWarn:
		return log.WarnLevel
	case LevelError:
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}

// ErrInvalidLevel is returned when an invalid log level string is provided.
var ErrInvalidLevel = errors.New("invalid log level")

// ParseLevel parses a string into a Level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return LevelDebug, nil
	case "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, fmt.Errorf("%w: %s", ErrInvalidLevel, s)
	}
}

// Config configures the logging system.
type Config struct {
	// Level is the default log level (debug, info, warn, error).
	Level string

	// Path is an optional log file path. Empty logs to stderr.
	Path string

	// Components maps component names to their log levels, overriding
	// the default level for that component.
	Components map[string]string
}

// Logger wraps charmbracelet/log with component identification.
type Logger struct {
	inner     *log.Logger
	component string
}

// Debug logs a debug message.
func (l *Logger) Debug(msg string, args ...interface{}) { l.inner.Debug(msg, args...) }

// Info logs an info message.
func (l *Logger) Info(msg string, args ...interface{}) { l.inner.Info(msg, args...) }

// Warn logs a warning message.
func (l *Logger) Warn(msg string, args ...interface{}) { l.inner.Warn(msg, args...) }

// Error logs an error message.
func (l *Logger) Error(msg string, args ...interface{}) { l.inner.Error(msg, args...) }

// With returns a new logger with additional context.
func (l *Logger) With(args ...interface{}) *Logger {
	return &Logger{inner: l.inner.With(args...), component: l.component}
}

// state holds the global logging state.
type state struct {
	mu          sync.RWMutex
	initialized bool
	out         io.Writer
	file        *os.File
	level       Level
	components  map[string]Level
	loggers     map[string]*Logger
}

var globalState = &state{
	out:        io.Discard,
	loggers:    make(map[string]*Logger),
	components: make(map[string]Level),
}

// Init initializes the logging system with the given configuration.
// Before Init is called, all loggers write to io.Discard (silent).
func Init(cfg Config) error {
	globalState.mu.Lock()
	defer globalState.mu.Unlock()

	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return fmt.Errorf("parsing log level: %w", err)
	}
	globalState.level = level

	globalState.components = make(map[string]Level)
	for comp, lvl := range cfg.Components {
		parsed, err := ParseLevel(lvl)
		if err != nil {
			return fmt.Errorf("parsing level for component %s: %w", comp, err)
		}
		globalState.components[comp] = parsed
	}

	if globalState.file != nil {
		_ = globalState.file.Close()
		globalState.file = nil
	}

	if cfg.Path != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
			return fmt.Errorf("creating log directory: %w", err)
		}
		f, err := os.OpenFile(cfg.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}
		globalState.file = f
		globalState.out = f
	} else {
		globalState.out = os.Stderr
	}

	globalState.initialized = true

	// Rebind existing loggers in place. Packages capture their logger at
	// init time, before Init runs, so the handed-out pointers must start
	// writing to the configured destination rather than be replaced.
	for component, logger := range globalState.loggers {
		logger.inner = newInner(component)
	}

	return nil
}

// Get returns a logger for the given component. If the component has a
// level override in the config, it uses that level; otherwise the default.
func Get(component string) *Logger {
	globalState.mu.RLock()
	if logger, ok := globalState.loggers[component]; ok {
		globalState.mu.RUnlock()
		return logger
	}
	globalState.mu.RUnlock()

	globalState.mu.Lock()
	defer globalState.mu.Unlock()

	if logger, ok := globalState.loggers[component]; ok {
		return logger
	}

	logger := createLogger(component)
	globalState.loggers[component] = logger
	return logger
}

// newInner builds the underlying logger for a component from the current
// global configuration. Must be called with globalState.mu held.
func newInner(component string) *log.Logger {
	level := globalState.level
	if compLevel, ok := globalState.components[component]; ok {
		level = compLevel
	}

	return log.NewWithOptions(globalState.out, log.Options{
		Level:           level.toCharmLevel(),
		ReportTimestamp: globalState.file != nil,
		TimeFormat:      time.RFC3339,
		Prefix:          component,
	})
}

// createLogger creates a new logger for the given component.
// Must be called with globalState.mu held.
func createLogger(component string) *Logger {
	return &Logger{inner: newInner(component), component: component}
}

// Close flushes and closes the log file, if any.
func Close() error {
	globalState.mu.Lock()
	defer globalState.mu.Unlock()

	if globalState.file != nil {
		if err := globalState.file.Close(); err != nil {
			return fmt.Errorf("closing log file: %w", err)
		}
		globalState.file = nil
	}

	globalState.initialized = false
	globalState.out = io.Discard
	globalState.components = make(map[string]Level)

	// Handed-out loggers must go silent, not keep a closed file handle.
	for component, logger := range globalState.loggers {
		logger.inner = newInner(component)
	}

	return nil
}

// DefaultLogPath returns the default log file path under $XDG_STATE_HOME.
func DefaultLogPath() string {
	return filepath.Join(xdg.StateHome, "lumi", "lumi.log")
}
