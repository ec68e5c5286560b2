package logging

import (
	"strings"
	"testing"
)

func TestTestLoggerCapturesOutput(t *testing.T) {
	logger, buf := NewTestLogger()

	logger.Info("hello", "key", "value")

	out := buf.String()
	if !strings.Contains(out, "hello") {
		t.Errorf("expected log output to contain message, got: %q", out)
	}
	if !strings.Contains(out, "key=value") {
		t.Errorf("expected log output to contain keyvals, got: %q", out)
	}
}

func TestSetLevelSuppressesDebug(t *testing.T) {
	logger, buf := NewTestLogger()

	logger.SetLevel("warn")
	logger.Debug("quiet")
	logger.Warn("loud")

	out := buf.String()
	if strings.Contains(out, "quiet") {
		t.Errorf("debug message should be suppressed at warn level, got: %q", out)
	}
	if !strings.Contains(out, "loud") {
		t.Errorf("warn message should be logged, got: %q", out)
	}
}

func TestSetLevelIgnoresUnknown(t *testing.T) {
	logger, buf := NewTestLogger()

	logger.SetLevel("nonsense")
	logger.Debug("still here")

	if !strings.Contains(buf.String(), "still here") {
		t.Errorf("unknown level should leave verbosity unchanged")
	}
}
