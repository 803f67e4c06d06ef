package talon

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
)

// LogLevel represents the severity of a log message (higher value =
// higher severity).
type LogLevel int

const (
	LevelTrace  LogLevel = iota // Detailed tracing (requires debug + category)
	LevelInfo                   // Informational messages (requires debug + category)
	LevelDebug                  // Development debugging (requires debug + category)
	LevelNotice                 // Notable events (shown by default)
	LevelWarn                   // Warnings (shown by default)
	LevelError                  // Runtime errors (shown by default)
	LevelFatal                  // Parse/unknown command errors (shown by default)
)

// LogCategory represents the subsystem generating the message.
type LogCategory string

const (
	CatNone      LogCategory = ""          // Uncategorized
	CatDispatch  LogCategory = "dispatch"  // Line dispatch pipeline
	CatCommand   LogCategory = "command"   // Command registry and execution
	CatVariable  LogCategory = "variable"  // Variable operations (get/set)
	CatExpr      LogCategory = "expr"      // Expression evaluation
	CatConstruct LogCategory = "construct" // Construct stack operations
	CatRoutine   LogCategory = "routine"   // Routine definition and replay
	CatIO        LogCategory = "io"        // Console and script I/O
)

// allCategories lists every category for the "log category all" switch.
var allCategories = []LogCategory{
	CatDispatch, CatCommand, CatVariable, CatExpr, CatConstruct, CatRoutine, CatIO,
}

// ANSI color codes for terminal output.
const (
	colorYellow = "\x1b[93m" // Bright yellow foreground
	colorReset  = "\x1b[0m"  // Reset to default
)

// Logger handles leveled, categorized logging for the interpreter.
type Logger struct {
	debug             bool
	minLevel          LogLevel
	enabledCategories map[LogCategory]bool
	out               io.Writer
	errOut            io.Writer
	// colorEnabled is true if terminal colors should be used for
	// stderr output.
	colorEnabled bool
}

// stderrSupportsColor checks if stderr is a terminal that supports
// color output.
func stderrSupportsColor() bool {
	if !isatty.IsTerminal(os.Stderr.Fd()) && !isatty.IsCygwinTerminal(os.Stderr.Fd()) {
		return false
	}

	// Respect NO_COLOR environment variable (https://no-color.org/)
	if _, exists := os.LookupEnv("NO_COLOR"); exists {
		return false
	}

	// TERM=dumb doesn't support colors
	if term := os.Getenv("TERM"); term == "dumb" {
		return false
	}

	return true
}

// NewLogger creates a new logger.
func NewLogger(debug bool) *Logger {
	return &Logger{
		debug:             debug,
		minLevel:          LevelNotice,
		enabledCategories: make(map[LogCategory]bool),
		out:               os.Stdout,
		errOut:            os.Stderr,
		colorEnabled:      stderrSupportsColor(),
	}
}

// SetOutput redirects log output, primarily for tests.
func (l *Logger) SetOutput(out, errOut io.Writer) {
	l.out = out
	l.errOut = errOut
	l.colorEnabled = false
}

// SetDebug enables or disables debug logging.
func (l *Logger) SetDebug(debug bool) {
	l.debug = debug
}

// SetMinLevel sets the minimum severity that is always shown.
func (l *Logger) SetMinLevel(level LogLevel) {
	if level < LevelTrace {
		level = LevelTrace
	}
	if level > LevelFatal {
		level = LevelFatal
	}
	l.minLevel = level
}

// MinLevel returns the current minimum severity.
func (l *Logger) MinLevel() LogLevel {
	return l.minLevel
}

// EnableCategory enables debug logging for a specific category.
func (l *Logger) EnableCategory(cat LogCategory) {
	l.enabledCategories[cat] = true
}

// DisableCategory disables debug logging for a specific category.
func (l *Logger) DisableCategory(cat LogCategory) {
	delete(l.enabledCategories, cat)
}

// EnableAllCategories enables every category for debug logging.
func (l *Logger) EnableAllCategories() {
	for _, cat := range allCategories {
		l.enabledCategories[cat] = true
	}
}

// IsCategoryEnabled checks if a category is enabled.
func (l *Logger) IsCategoryEnabled(cat LogCategory) bool {
	return l.enabledCategories[cat]
}

// shouldLog determines if a message should be logged based on level
// and category.
func (l *Logger) shouldLog(level LogLevel, cat LogCategory) bool {
	if level >= l.minLevel {
		return true
	}
	return l.debug && (cat == CatNone || l.enabledCategories[cat])
}

// Log is the unified logging method.
func (l *Logger) Log(level LogLevel, cat LogCategory, message string) {
	if !l.shouldLog(level, cat) {
		return
	}

	catSuffix := ""
	if cat != CatNone {
		catSuffix = fmt.Sprintf(":%s", cat)
	}

	var prefix string
	switch level {
	case LevelTrace:
		prefix = fmt.Sprintf("[TRACE%s]", catSuffix)
	case LevelInfo:
		prefix = fmt.Sprintf("[INFO%s]", catSuffix)
	case LevelDebug:
		prefix = fmt.Sprintf("[DEBUG%s]", catSuffix)
	case LevelNotice:
		prefix = fmt.Sprintf("[talon%s NOTICE]", catSuffix)
	case LevelWarn:
		prefix = fmt.Sprintf("[talon%s WARN]", catSuffix)
	case LevelError, LevelFatal:
		prefix = fmt.Sprintf("[talon%s ERROR]", catSuffix)
	}

	output := fmt.Sprintf("%s %s", prefix, message)

	// Trace, Info, Debug go to stdout; Notice, Warn, Error, Fatal go
	// to stderr.
	if level <= LevelDebug {
		_, _ = fmt.Fprintln(l.out, output)
		return
	}
	if l.colorEnabled {
		_, _ = fmt.Fprintf(l.errOut, "%s%s%s\n", colorYellow, output, colorReset)
	} else {
		_, _ = fmt.Fprintln(l.errOut, output)
	}
}

// Convenience methods that route through Log.
// Ordered by severity: Fatal, Error, Warn, Notice, Debug, Info, Trace.

// Fatal logs a fatal error message.
func (l *Logger) Fatal(format string, args ...interface{}) {
	l.Log(LevelFatal, CatNone, fmt.Sprintf(format, args...))
}

// FatalCat logs a categorized fatal error message.
func (l *Logger) FatalCat(cat LogCategory, format string, args ...interface{}) {
	l.Log(LevelFatal, cat, fmt.Sprintf(format, args...))
}

// Error logs an error message.
func (l *Logger) Error(format string, args ...interface{}) {
	l.Log(LevelError, CatNone, fmt.Sprintf(format, args...))
}

// ErrorCat logs a categorized error message.
func (l *Logger) ErrorCat(cat LogCategory, format string, args ...interface{}) {
	l.Log(LevelError, cat, fmt.Sprintf(format, args...))
}

// Warn logs a warning message.
func (l *Logger) Warn(format string, args ...interface{}) {
	l.Log(LevelWarn, CatNone, fmt.Sprintf(format, args...))
}

// WarnCat logs a categorized warning message.
func (l *Logger) WarnCat(cat LogCategory, format string, args ...interface{}) {
	l.Log(LevelWarn, cat, fmt.Sprintf(format, args...))
}

// Notice logs a notable event, less severe than a warning.
func (l *Logger) Notice(format string, args ...interface{}) {
	l.Log(LevelNotice, CatNone, fmt.Sprintf(format, args...))
}

// Debug logs a debug message.
func (l *Logger) Debug(format string, args ...interface{}) {
	l.Log(LevelDebug, CatNone, fmt.Sprintf(format, args...))
}

// DebugCat logs a categorized debug message.
func (l *Logger) DebugCat(cat LogCategory, format string, args ...interface{}) {
	l.Log(LevelDebug, cat, fmt.Sprintf(format, args...))
}

// Info logs an informational message.
func (l *Logger) Info(format string, args ...interface{}) {
	l.Log(LevelInfo, CatNone, fmt.Sprintf(format, args...))
}

// InfoCat logs a categorized informational message.
func (l *Logger) InfoCat(cat LogCategory, format string, args ...interface{}) {
	l.Log(LevelInfo, cat, fmt.Sprintf(format, args...))
}

// Trace logs a detailed trace message.
func (l *Logger) Trace(format string, args ...interface{}) {
	l.Log(LevelTrace, CatNone, fmt.Sprintf(format, args...))
}

// TraceCat logs a categorized trace message.
func (l *Logger) TraceCat(cat LogCategory, format string, args ...interface{}) {
	l.Log(LevelTrace, cat, fmt.Sprintf(format, args...))
}
