// Package logger provides leveled diagnostic output for murmur.
//
// Debug, Info and Warn messages are only written in verbose mode (the
// --verbose flag). Error messages are always written. Output goes to
// stderr so it never mixes with command results on stdout.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// Level is the severity of a log line.
type Level int

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
	case LevelError:
		return "ERROR"
	default:
		return "LOG"
	}
}

var levelStyles = map[Level]lipgloss.Style{
	LevelDebug: lipgloss.NewStyle().Foreground(lipgloss.Color("#6C7086")),
	LevelInfo:  lipgloss.NewStyle().Foreground(lipgloss.Color("#89B4FA")),
	LevelWarn:  lipgloss.NewStyle().Foreground(lipgloss.Color("#F9E2AF")),
	LevelError: lipgloss.NewStyle().Foreground(lipgloss.Color("#F38BA8")).Bold(true),
}

var (
	mu      sync.RWMutex
	verbose bool
	styled  bool
	output  io.Writer = os.Stderr
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

// SetStyled toggles coloured level tags. The CLI enables it when stderr
// is a terminal.
func SetStyled(v bool) {
	mu.Lock()
	defer mu.Unlock()
	styled = v
}

// SetOutput sets the output writer. Defaults to os.Stderr.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

// Enabled reports whether a message at the given level would be written.
func Enabled(l Level) bool {
	mu.RLock()
	defer mu.RUnlock()
	return enabled(l)
}

func enabled(l Level) bool {
	return l >= LevelError || verbose
}

// Debug prints a message if verbose mode is enabled.
func Debug(format string, args ...any) {
	logf(LevelDebug, format, args...)
}

// Info prints an informational message if verbose mode is enabled.
func Info(format string, args ...any) {
	logf(LevelInfo, format, args...)
}

// Warn prints a warning if verbose mode is enabled.
func Warn(format string, args ...any) {
	logf(LevelWarn, format, args...)
}

// Error prints an error message regardless of verbose mode.
func Error(format string, args ...any) {
	logf(LevelError, format, args...)
}

// Section prints a section header if verbose mode is enabled.
func Section(name string) {
	mu.RLock()
	defer mu.RUnlock()
	if verbose {
		fmt.Fprintf(output, "\n=== %s ===\n", name)
	}
}

func logf(l Level, format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	if !enabled(l) {
		return
	}
	tag := "[" + l.String() + "]"
	if styled {
		tag = levelStyles[l].Render(tag)
	}
	fmt.Fprintf(output, tag+" "+format+"\n", args...)
}
