package logging

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"sync"

	"utsc/common"
	"utsc/diag"

	"github.com/mattn/go-isatty"
	"github.com/pterm/pterm"
)

// Enumeration of the different log levels
const (
	LogLevelSilent  = iota // no output at all
	LogLevelError          // only errors and closing notification (success/fail)
	LogLevelWarning        // errors, warnings, and closing message
	LogLevelVerbose        // everything including the header, phases and tips (DEFAULT)
)

// ParseLevel converts a log level name to a log level.  Unknown names,
// including the empty string, are verbose.
func ParseLevel(name string) int {
	switch name {
	case "silent":
		return LogLevelSilent
	case "error":
		return LogLevelError
	case "warn", "warning":
		return LogLevelWarning
	default:
		return LogLevelVerbose
	}
}

// ColorSupported reports whether f is a terminal that should receive colored
// output.  Setting NO_COLOR disables color everywhere.
func ColorSupported(f *os.File) bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}

	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// NewLogger creates the structured logger handed to the compiler's library
// packages.  A silent logger discards everything.
func NewLogger(loglevel int) *slog.Logger {
	if loglevel == LogLevelSilent {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	level := pterm.LogLevelInfo
	switch loglevel {
	case LogLevelError:
		level = pterm.LogLevelError
	case LogLevelWarning:
		level = pterm.LogLevelWarn
	}

	return slog.New(pterm.NewSlogHandler(pterm.DefaultLogger.WithLevel(level).WithWriter(os.Stderr)))
}

// Reporter is responsible for displaying the outcome of compilations to the
// user.  Compilations may finish concurrently so displaying is synchronized.
type Reporter struct {
	LogLevel int

	// inputDir is used to locate sources referenced by syntax errors
	inputDir string

	// color indicates whether the output is a color terminal
	color bool

	errorCount   int
	warningCount int

	m sync.Mutex
}

// NewReporter creates a new reporter.  Styling is disabled globally when the
// standard output does not support it.
func NewReporter(inputDir string, loglevel int) *Reporter {
	color := ColorSupported(os.Stdout)
	if !color {
		pterm.DisableStyling()
	}

	return &Reporter{
		LogLevel: loglevel,
		inputDir: inputDir,
		color:    color,
	}
}

// Color reports whether the reporter writes to a color terminal.
func (r *Reporter) Color() bool {
	return r.color
}

// ShouldProceed indicates whether no errors have been reported so far.
func (r *Reporter) ShouldProceed() bool {
	r.m.Lock()
	defer r.m.Unlock()

	return r.errorCount == 0
}

// ErrorCount returns the number of errors reported so far.
func (r *Reporter) ErrorCount() int {
	r.m.Lock()
	defer r.m.Unlock()

	return r.errorCount
}

// Header displays the compiler version and build parameters.
func (r *Reporter) Header(platform common.Platform, mode string, caching bool) {
	if r.LogLevel < LogLevelVerbose {
		return
	}

	r.m.Lock()
	defer r.m.Unlock()

	displayHeader(platform, mode, caching)
}

// ReportError displays an error.  Syntax errors are shown with the offending
// source line.
func (r *Reporter) ReportError(tag string, err error) {
	r.m.Lock()
	defer r.m.Unlock()

	r.errorCount++
	if r.LogLevel == LogLevelSilent {
		return
	}

	displayEndPhase(false)

	var se *diag.SyntaxError
	if errors.As(err, &se) {
		displaySyntaxError(se, r.inputDir)
	} else {
		PrintErrorMessage(tag, err)
	}
}

// RecordError counts an error that was reported through another channel.
func (r *Reporter) RecordError() {
	r.m.Lock()
	defer r.m.Unlock()

	r.errorCount++
}

// ReportWarning displays a warning.
func (r *Reporter) ReportWarning(tag, msg string) {
	r.m.Lock()
	defer r.m.Unlock()

	r.warningCount++
	if r.LogLevel >= LogLevelWarning {
		PrintWarningMessage(tag, msg)
	}
}

// ReportInfo displays an informational message.
func (r *Reporter) ReportInfo(tag, msg string) {
	if r.LogLevel < LogLevelVerbose {
		return
	}

	r.m.Lock()
	defer r.m.Unlock()

	PrintInfoMessage(tag, msg)
}

// BeginPhase displays the start of a long running phase.
func (r *Reporter) BeginPhase(name string) {
	if r.LogLevel < LogLevelVerbose {
		return
	}

	displayBeginPhase(name, r.color)
}

// EndPhase displays the end of the current phase.
func (r *Reporter) EndPhase(success bool) {
	displayEndPhase(success)
}

// Finish displays the closing summary and reports whether the build
// succeeded.
func (r *Reporter) Finish() bool {
	r.m.Lock()
	defer r.m.Unlock()

	success := r.errorCount == 0
	if r.LogLevel > LogLevelSilent {
		displayFinished(success, r.errorCount, r.warningCount)
	}

	return success
}
