// Copyright © 2024 Galvanized Logic Inc.

// Package telemetry is the injected diagnostics sink for the simulation
// core: the core never imports a concrete logger, it is handed one at
// Initialize time, so the same process can run two independent
// simulations with independent telemetry.
package telemetry

import (
	"log/slog"
)

// Sink receives the core's diagnostic events: rejected setter inputs,
// non-finite-state recoveries, and degenerate trilaterations.
type Sink interface {
	// Warn records a recoverable condition: a rejected setter or a
	// trilateration with no real solution.
	Warn(msg string, args ...any)

	// NonFiniteRecovered records a non-finite-state revert and increments
	// the recovery counter.
	NonFiniteRecovered()

	// NonFiniteCount returns the number of non-finite-state recoveries
	// observed so far.
	NonFiniteCount() int
}

// SlogSink is the default Sink, backed by log/slog.
type SlogSink struct {
	Logger *slog.Logger
	count  int
}

// NewSlogSink wraps the given logger, or slog.Default() if nil.
func NewSlogSink(logger *slog.Logger) *SlogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogSink{Logger: logger}
}

func (s *SlogSink) Warn(msg string, args ...any) { s.Logger.Warn(msg, args...) }

func (s *SlogSink) NonFiniteRecovered() {
	s.count++
	s.Logger.Error("kitesim: non-finite state recovered", "count", s.count)
}

func (s *SlogSink) NonFiniteCount() int { return s.count }

// Record is one captured telemetry event, used by MemorySink.
type Record struct {
	Msg  string
	Args []any
}

// MemorySink is a test double: it captures every Warn call instead of
// writing anywhere, so tests can assert on what the core reported.
type MemorySink struct {
	Warnings []Record
	count    int
}

// NewMemorySink creates an empty in-memory sink.
func NewMemorySink() *MemorySink { return &MemorySink{} }

func (s *MemorySink) Warn(msg string, args ...any) {
	s.Warnings = append(s.Warnings, Record{Msg: msg, Args: args})
}

func (s *MemorySink) NonFiniteRecovered() { s.count++ }

func (s *MemorySink) NonFiniteCount() int { return s.count }
