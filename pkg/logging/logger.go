// Package logging provides structured debug logging for scribe components.
// All components of one execution append to the same file under
// ~/.scribe/logs/, named by a per-execution id, so a capture run can be
// reconstructed after the fact without polluting the terminal the session
// owns.
package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Logger writes timestamped, component-tagged log entries. All methods
// write unconditionally; there is no level filtering.
type Logger struct {
	executionID string
	component   string
	file        *os.File
	logger      *log.Logger
	mu          sync.Mutex
	logPath     string
	closeOnce   sync.Once
}

var (
	executionID     string
	executionIDOnce sync.Once

	logDir  string
	initErr error
	dirOnce sync.Once
)

// getExecutionID returns the id shared by every logger in this process.
func getExecutionID() string {
	executionIDOnce.Do(func() {
		executionID = uuid.New().String()
	})
	return executionID
}

func initLogDirectory() error {
	dirOnce.Do(func() {
		home, err := os.UserHomeDir()
		if err != nil {
			initErr = fmt.Errorf("logging: resolve home directory: %w", err)
			return
		}
		logDir = filepath.Join(home, ".scribe", "logs")
		if err := os.MkdirAll(logDir, 0o750); err != nil {
			initErr = fmt.Errorf("logging: create log directory: %w", err)
		}
	})
	return initErr
}

// New creates a logger for one component, writing to
// ~/.scribe/logs/<execution-id>-scribe.log. If the file cannot be opened
// it returns a stderr-backed fallback logger along with the error, so
// callers can detect degraded mode but keep logging.
func New(component string) (*Logger, error) {
	if err := initLogDirectory(); err != nil {
		return newFallback(component, err), err
	}
	id := getExecutionID()
	logPath := filepath.Join(logDir, fmt.Sprintf("%s-scribe.log", id))

	// Append mode: multiple components share one file.
	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		err = fmt.Errorf("logging: open log file: %w", err)
		return newFallback(component, err), err
	}
	return &Logger{
		executionID: id,
		component:   component,
		file:        file,
		logger:      log.New(file, "", 0),
		logPath:     logPath,
	}, nil
}

func newFallback(component string, err error) *Logger {
	l := log.New(os.Stderr, fmt.Sprintf("[%s] ", component), log.LstdFlags)
	l.Printf("WARNING: file logging unavailable, using stderr: %v", err)
	return &Logger{
		executionID: getExecutionID(),
		component:   component,
		logger:      l,
	}
}

func (l *Logger) write(level, format string, v ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	ts := time.Now().Format("2006-01-02 15:04:05.000")
	l.logger.Printf("[%s] [%s] [%s] %s", ts, l.component, level, fmt.Sprintf(format, v...))
}

// Debugf logs a debug-level message.
func (l *Logger) Debugf(format string, v ...any) { l.write("DEBUG", format, v...) }

// Infof logs an info-level message.
func (l *Logger) Infof(format string, v ...any) { l.write("INFO", format, v...) }

// Warnf logs a warning-level message.
func (l *Logger) Warnf(format string, v ...any) { l.write("WARN", format, v...) }

// Errorf logs an error-level message.
func (l *Logger) Errorf(format string, v ...any) { l.write("ERROR", format, v...) }

// Writer returns the destination this logger writes to.
func (l *Logger) Writer() io.Writer {
	if l.file != nil {
		return l.file
	}
	return os.Stderr
}

// ExecutionID returns the id shared by all loggers in this process.
func (l *Logger) ExecutionID() string { return l.executionID }

// LogPath returns the log file path, or "" in fallback mode.
func (l *Logger) LogPath() string { return l.logPath }

// Close closes the log file. Safe to call multiple times.
func (l *Logger) Close() error {
	var err error
	l.closeOnce.Do(func() {
		if l.file != nil {
			err = l.file.Close()
		}
	})
	return err
}
