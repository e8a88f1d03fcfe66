// Package logging provides colored, leveled console output for the sqlverify
// CLI and the structured logger handed to library components.
//
// Console functions write a prefixed, color-coded line to stderr so that stdout
// carries only the selected SQL or parsed records. Debug output is suppressed
// unless verbose mode is enabled via SetVerbose(true).
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/lmittmann/tint"
)

var (
	mu      sync.Mutex
	verbose bool
	out     io.Writer = os.Stderr
)

// Color printers for each log level.
var (
	infoPrefix    = color.New(color.FgBlue).SprintFunc()
	successPrefix = color.New(color.FgGreen).SprintFunc()
	warnPrefix    = color.New(color.FgYellow).SprintFunc()
	errorPrefix   = color.New(color.FgRed).SprintFunc()
	phasePrefix   = color.New(color.FgCyan).SprintFunc()
	debugPrefix   = color.New(color.FgBlue).SprintFunc()
)

// SetVerbose enables or disables Debug output.
func SetVerbose(v bool) {
	mu.Lock()
	verbose = v
	mu.Unlock()
}

// SetOutput redirects console output and returns the previous writer.
func SetOutput(w io.Writer) io.Writer {
	mu.Lock()
	defer mu.Unlock()
	prev := out
	out = w
	return prev
}

func writeLine(line string) {
	mu.Lock()
	defer mu.Unlock()
	fmt.Fprintln(out, line)
}

// Info prints an informational message in blue.
func Info(msg string) {
	writeLine(infoPrefix("[INFO]") + " " + msg)
}

// Success prints a success message in green.
func Success(msg string) {
	writeLine(successPrefix("[SUCCESS]") + " " + msg)
}

// Warn prints a warning message in yellow.
func Warn(msg string) {
	writeLine(warnPrefix("[WARN]") + " " + msg)
}

// Error prints an error message in red.
func Error(msg string) {
	writeLine(errorPrefix("[ERROR]") + " " + msg)
}

// Phase prints a phase header in cyan, surrounded by separator lines.
func Phase(msg string) {
	sep := phasePrefix("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	writeLine(sep)
	writeLine(phasePrefix("[PHASE]") + " " + msg)
	writeLine(sep)
}

// Debug prints a debug message in blue, only when verbose mode is enabled.
func Debug(msg string) {
	mu.Lock()
	v := verbose
	mu.Unlock()
	if !v {
		return
	}
	writeLine(debugPrefix("[DEBUG]") + " " + msg)
}

// NewLogger returns a tint-backed structured logger writing to the console
// output. Debug records are emitted only when verbose is set. Empty string
// attributes are dropped.
func NewLogger(verbose bool) *slog.Logger {
	mu.Lock()
	w := out
	mu.Unlock()

	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.TimeOnly,
		NoColor:    color.NoColor,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if s, ok := a.Value.Any().(string); ok && s == "" {
				return slog.Attr{}
			}
			return a
		},
	}))
}

// FormatDuration converts a duration in seconds to a human-readable string.
//
// Examples:
//
//	FormatDuration(0)    => "0s"
//	FormatDuration(45)   => "45s"
//	FormatDuration(90)   => "1m 30s"
//	FormatDuration(3661) => "1h 1m 1s"
func FormatDuration(seconds int) string {
	if seconds < 60 {
		return fmt.Sprintf("%ds", seconds)
	}
	if seconds < 3600 {
		return fmt.Sprintf("%dm %ds", seconds/60, seconds%60)
	}
	return fmt.Sprintf("%dh %dm %ds", seconds/3600, (seconds%3600)/60, seconds%60)
}
