// Copyright © 2024 Galvanized Logic Inc.

package telemetry

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestMemorySinkCapturesWarnings(t *testing.T) {
	s := NewMemorySink()
	s.Warn("line length rejected", "length", -3.0)
	s.Warn("bridle trilateration degenerate")

	if len(s.Warnings) != 2 {
		t.Fatalf("expected 2 captured warnings, got %d", len(s.Warnings))
	}
	if s.Warnings[0].Msg != "line length rejected" {
		t.Errorf("unexpected first warning: %q", s.Warnings[0].Msg)
	}
	if len(s.Warnings[0].Args) != 2 {
		t.Errorf("expected the warning args captured, got %v", s.Warnings[0].Args)
	}
}

func TestMemorySinkCountsNonFiniteRecoveries(t *testing.T) {
	s := NewMemorySink()
	if s.NonFiniteCount() != 0 {
		t.Fatal("expected a fresh sink to start at zero")
	}
	s.NonFiniteRecovered()
	s.NonFiniteRecovered()
	if s.NonFiniteCount() != 2 {
		t.Errorf("expected 2 recoveries, got %d", s.NonFiniteCount())
	}
}

func TestSlogSinkWritesThroughLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	s := NewSlogSink(logger)

	s.Warn("wind speed rejected", "speed", -1.0)
	if !strings.Contains(buf.String(), "wind speed rejected") {
		t.Errorf("expected the warning in the log output, got %q", buf.String())
	}

	s.NonFiniteRecovered()
	if s.NonFiniteCount() != 1 {
		t.Errorf("expected the counter incremented, got %d", s.NonFiniteCount())
	}
	if !strings.Contains(buf.String(), "non-finite state recovered") {
		t.Errorf("expected the recovery logged, got %q", buf.String())
	}
}

func TestNewSlogSinkNilLoggerUsesDefault(t *testing.T) {
	s := NewSlogSink(nil)
	if s.Logger == nil {
		t.Fatal("expected a nil logger replaced with slog.Default()")
	}
}
