// Package logger provides verbose logging for the ctxport CLI.
// When verbose mode is enabled via the --verbose flag, debug messages
// are printed to stderr to trace each extraction step.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
)

var (
	mu       sync.RWMutex
	verbose  bool
	output   io.Writer = os.Stderr
	warnHook func(msg string)
)

// SetVerbose enables or disables verbose logging.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
}

// IsVerbose returns true if verbose mode is enabled.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetOutput sets the output writer for verbose logs.
// Defaults to os.Stderr. Useful for testing.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

// SetWarnHook registers a function that receives every warning,
// whether or not verbose mode is on. Pass nil to remove it.
func SetWarnHook(fn func(msg string)) {
	mu.Lock()
	defer mu.Unlock()
	warnHook = fn
}

// Debug prints a message if verbose mode is enabled.
func Debug(format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	if verbose {
		fmt.Fprintf(output, "[DEBUG] "+format+"\n", args...)
	}
}

// Section prints a section header if verbose mode is enabled.
func Section(name string) {
	mu.RLock()
	defer mu.RUnlock()
	if verbose {
		fmt.Fprintf(output, "\n=== %s ===\n", name)
	}
}

// Info prints an informational message if verbose mode is enabled.
func Info(format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	if verbose {
		fmt.Fprintf(output, "[INFO] "+format+"\n", args...)
	}
}

// Warn prints a warning message if verbose mode is enabled and
// forwards it to the warn hook.
func Warn(format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	msg := fmt.Sprintf(format, args...)
	if warnHook != nil {
		warnHook(msg)
	}
	if verbose {
		fmt.Fprintf(output, "[WARN] %s\n", msg)
	}
}
