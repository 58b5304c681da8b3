// Package cli provides command-line interface functionality for sqrlid.
package cli

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"sync/atomic"
)

// Reporter implements identity.ProgressReporter for terminal output,
// and doubles as the signal-triggered cancellation switch: an
// in-flight EnScrypt run polls Cancel's effect via OnProgress's
// return value, the same way the teacher's volume package cancelled a
// block loop mid-stream.
type Reporter struct {
	mu        sync.Mutex
	quiet     bool
	cancelled atomic.Bool
	lastLine  int // Length of last printed line (for clearing)
}

// NewReporter creates a new CLI progress reporter.
// If quiet is true, only errors are printed.
func NewReporter(quiet bool) *Reporter {
	return &Reporter{quiet: quiet}
}

// OnProgress implements identity.ProgressReporter. Returning false
// aborts the in-flight EnScrypt run with ErrCancelled.
func (r *Reporter) OnProgress(percent int) bool {
	if r.cancelled.Load() {
		return false
	}
	if r.quiet {
		return true
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	barWidth := 30
	filled := min(percent*barWidth/100, barWidth)
	bar := strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)
	line := fmt.Sprintf("\r[%s] %3d%%", bar, percent)
	if len(line) < r.lastLine {
		line += strings.Repeat(" ", r.lastLine-len(line))
	}
	r.lastLine = len(line)
	fmt.Fprint(os.Stderr, line)
	return true
}

// IsCancelled checks if the operation was cancelled.
func (r *Reporter) IsCancelled() bool {
	return r.cancelled.Load()
}

// Cancel marks the operation as cancelled.
func (r *Reporter) Cancel() {
	r.cancelled.Store(true)
}

// Finish prints a newline to move past the progress line.
func (r *Reporter) Finish() {
	if !r.quiet {
		fmt.Fprintln(os.Stderr)
	}
}

// PrintError prints an error message.
func (r *Reporter) PrintError(format string, args ...any) {
	if !r.quiet && r.lastLine > 0 {
		fmt.Fprintln(os.Stderr)
	}
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
}

// PrintSuccess prints a success message.
func (r *Reporter) PrintSuccess(format string, args ...any) {
	if r.quiet {
		return
	}
	fmt.Fprintf(os.Stderr, format+"\n", args...)
}
