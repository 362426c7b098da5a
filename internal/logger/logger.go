package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Logger writes leveled messages to stdout and, optionally, a log file.
// File lines always carry a timestamp and level, console lines only a level.
type Logger struct {
	Verbose bool
	writer  io.Writer
	errOut  io.Writer
	mu      sync.Mutex
	fileLog io.WriteCloser
	hasBar  bool
	now     func() time.Time
}

// New creates a new Logger instance
func New(verbose bool) *Logger {
	return &Logger{
		Verbose: verbose,
		writer:  os.Stdout,
		errOut:  os.Stderr,
		now:     time.Now,
	}
}

// SetOutput redirects console output. Errors go to errOut.
func (l *Logger) SetOutput(out, errOut io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.writer = out
	l.errOut = errOut
}

// SetFileLog enables logging to a file
func (l *Logger) SetFileLog(path string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	l.fileLog = f
	return nil
}

// SetProgressBar indicates that a progress bar is active
func (l *Logger) SetProgressBar(active bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.hasBar = active
}

// Close closes the log file if open
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.fileLog != nil {
		err := l.fileLog.Close()
		l.fileLog = nil
		return err
	}
	return nil
}

// Info logs informational messages
func (l *Logger) Info(format string, args ...any) {
	l.log("INFO", format, args...)
}

// Debug logs detailed messages only in verbose mode
func (l *Logger) Debug(format string, args ...any) {
	if l.Verbose {
		l.log("DEBUG", format, args...)
		return
	}
	// Always log debug to file even in non-verbose mode
	l.logToFile("DEBUG", fmt.Sprintf(format, args...))
}

// Error logs error messages to stderr
func (l *Logger) Error(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)

	l.mu.Lock()
	defer l.mu.Unlock()

	fmt.Fprintf(l.errOut, "[ERROR] %s\n", msg)
	l.writeFile("ERROR", msg)
}

// Warn logs warning messages
func (l *Logger) Warn(format string, args ...any) {
	l.log("WARN", format, args...)
}

// log handles the actual logging
func (l *Logger) log(level, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)

	l.mu.Lock()
	defer l.mu.Unlock()

	// Write to stdout (unless we have a progress bar and not verbose)
	if l.Verbose || !l.hasBar {
		if level == "INFO" {
			fmt.Fprintln(l.writer, msg)
		} else {
			fmt.Fprintf(l.writer, "[%s] %s\n", level, msg)
		}
	}

	l.writeFile(level, msg)
}

// logToFile writes only to file
func (l *Logger) logToFile(level, msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.writeFile(level, msg)
}

// writeFile must be called with l.mu held.
func (l *Logger) writeFile(level, msg string) {
	if l.fileLog == nil {
		return
	}
	fmt.Fprintf(l.fileLog, "%s [%s] %s\n", l.now().Format("2006-01-02 15:04:05"), level, msg)
}
