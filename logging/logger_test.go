package logging

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"

	"utsc/diag"
)

func TestParseLevel(t *testing.T) {
	for name, want := range map[string]int{
		"silent":  LogLevelSilent,
		"error":   LogLevelError,
		"warn":    LogLevelWarning,
		"warning": LogLevelWarning,
		"verbose": LogLevelVerbose,
		"":        LogLevelVerbose,
		"bogus":   LogLevelVerbose,
	} {
		if got := ParseLevel(name); got != want {
			t.Errorf("ParseLevel(%q) = %d, want %d", name, got, want)
		}
	}
}

func TestNewLogger(t *testing.T) {
	for _, level := range []int{LogLevelSilent, LogLevelError, LogLevelVerbose} {
		if logger := NewLogger(level); logger == nil {
			t.Errorf("NewLogger(%d) = nil", level)
		}
	}

	NewLogger(LogLevelSilent).Log(context.Background(), slog.LevelError, "discarded")
}

func TestReporter_Counts(t *testing.T) {
	r := &Reporter{LogLevel: LogLevelSilent}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				r.ReportError("Build Error", &diag.SyntaxError{Message: "boom"})
			} else {
				r.ReportWarning("Tip", "warned")
			}
		}(i)
	}
	wg.Wait()

	if r.ShouldProceed() {
		t.Error("ShouldProceed after errors should be false")
	}

	if got := r.ErrorCount(); got != 4 {
		t.Errorf("ErrorCount = %d, want 4", got)
	}

	if r.Finish() {
		t.Error("Finish after errors should report failure")
	}
}

func TestReporter_Success(t *testing.T) {
	r := &Reporter{LogLevel: LogLevelSilent}
	r.ReportWarning("Tip", "only a warning")

	if !r.ShouldProceed() || !r.Finish() {
		t.Error("warnings alone should not fail the build")
	}

	r.ReportError("Build Error", errors.New("bundler crashed"))
	if r.Finish() {
		t.Error("Finish after an error should report failure")
	}
}
