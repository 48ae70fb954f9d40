// Package logger is od-drafter's process-wide log.
//
// Commit steps (listing, resolved, gate, allocated, uploaded) log at Debug
// and only show with --verbose. Errors always show. Output goes to stderr
// so it never mixes with MCP stdio traffic or --json output on stdout.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// Level is a log severity.
type Level int

// Severities in increasing order.
const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// String returns the tag printed in front of each line.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	default:
		return "ERROR"
	}
}

var (
	mu        sync.Mutex
	threshold           = LevelError
	output    io.Writer = os.Stderr
)

// SetVerbose lowers the threshold to Debug, or raises it back to Error.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	if v {
		threshold = LevelDebug
	} else {
		threshold = LevelError
	}
}

// IsVerbose reports whether Debug lines are printed.
func IsVerbose() bool {
	mu.Lock()
	defer mu.Unlock()
	return threshold <= LevelDebug
}

// SetOutput redirects the log, mainly for tests.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

// Debug logs a commit step.
func Debug(format string, args ...any) {
	logf(LevelDebug, format, args...)
}

// Info logs a notable event such as a reconciled upload.
func Info(format string, args ...any) {
	logf(LevelInfo, format, args...)
}

// Warn logs a recoverable problem.
func Warn(format string, args ...any) {
	logf(LevelWarn, format, args...)
}

// Error logs a failure. It is printed even without --verbose.
func Error(format string, args ...any) {
	logf(LevelError, format, args...)
}

// Section prints a banner before the steps of one operation.
func Section(name string) {
	mu.Lock()
	defer mu.Unlock()
	if threshold <= LevelDebug {
		fmt.Fprintf(output, "\n=== %s ===\n", name)
	}
}

func logf(level Level, format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()
	if level < threshold {
		return
	}
	fmt.Fprintf(output, "[%s] "+format+"\n", append([]any{level}, args...)...)
}
