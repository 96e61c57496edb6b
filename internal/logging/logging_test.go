package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestLevelRouting(t *testing.T) {
	var out, errOut bytes.Buffer
	logger := slog.New(NewHandler(&out, &errOut, slog.LevelWarn)).With("component", "test")

	logger.Info("hidden")
	logger.Warn("poll failed", "poller", "thread")
	logger.Error("server error")

	if strings.Contains(out.String(), "hidden") {
		t.Error("INFO written below the minimum level")
	}
	if !strings.Contains(out.String(), "poll failed") || !strings.Contains(out.String(), "component=test") {
		t.Errorf("WARN missing from stdout: %q", out.String())
	}
	if strings.Contains(out.String(), "server error") {
		t.Error("ERROR written to stdout")
	}
	if !strings.Contains(errOut.String(), "server error") {
		t.Errorf("ERROR missing from stderr: %q", errOut.String())
	}
}

func TestGroupKeepsLevel(t *testing.T) {
	var out, errOut bytes.Buffer
	logger := slog.New(NewHandler(&out, &errOut, slog.LevelInfo)).WithGroup("req")

	logger.Debug("debug")
	logger.Info("served", "status", 200)

	if strings.Contains(out.String(), "debug") {
		t.Error("DEBUG written")
	}
	if !strings.Contains(out.String(), "req.status=200") {
		t.Errorf("missing grouped attr: %q", out.String())
	}
}
