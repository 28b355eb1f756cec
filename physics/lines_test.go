// Copyright © 2024 Galvanized Logic Inc.

package physics

import (
	"testing"

	"github.com/moyamatthieu/kitesim/math/lin"
)

func testLineConfig() LineConfig {
	return LineConfig{Length: 20, Stiffness: 50, PreTension: 2, MaxTension: 400, DampingCoeff: 5}
}

func TestLineConfigValidate(t *testing.T) {
	if err := testLineConfig().Validate(); err != nil {
		t.Errorf("expected a well-formed config to validate, got %v", err)
	}
	bad := testLineConfig()
	bad.Length = 0
	if bad.Validate() == nil {
		t.Error("expected a non-positive length to be rejected")
	}
	bad = testLineConfig()
	bad.MaxTension = 0
	if bad.Validate() == nil {
		t.Error("expected max tension below pre-tension to be rejected")
	}
}

func TestLinesUpdateTelemetrySlack(t *testing.T) {
	l := NewLines(testLineConfig())
	ctrl := lin.NewV3S(0, 0, 0)
	handle := lin.NewV3S(0, 0, 10) // well within the 20m line.

	l.UpdateTelemetry(LineGauche, ctrl, handle, 1.0/60)
	s := l.State[LineGauche]
	if s.Taut {
		t.Error("expected a slack line to report Taut=false")
	}
	if s.Tension != 0 {
		t.Errorf("expected zero tension while slack, got %.3f", s.Tension)
	}
	if s.Distance != 10 {
		t.Errorf("expected distance 10, got %.3f", s.Distance)
	}
}

func TestLinesUpdateTelemetryTaut(t *testing.T) {
	l := NewLines(testLineConfig())
	ctrl := lin.NewV3S(0, 0, 0)
	handle := lin.NewV3S(0, 0, 25) // 5m past the 20m line.

	l.UpdateTelemetry(LineGauche, ctrl, handle, 1.0/60)
	s := l.State[LineGauche]
	if !s.Taut {
		t.Error("expected an overextended line to report Taut=true")
	}
	wantTension := 2 + 50*5.0
	if !lin.Aeq(s.Tension, wantTension) {
		t.Errorf("got tension %.6f want %.6f", s.Tension, wantTension)
	}
}

func TestLinesUpdateTelemetryClampsToMaxTension(t *testing.T) {
	cfg := testLineConfig()
	cfg.MaxTension = 10
	l := NewLines(cfg)
	ctrl := lin.NewV3S(0, 0, 0)
	handle := lin.NewV3S(0, 0, 1000)

	l.UpdateTelemetry(LineGauche, ctrl, handle, 1.0/60)
	if l.State[LineGauche].Tension != 10 {
		t.Errorf("expected tension clamped to MaxTension=10, got %.3f", l.State[LineGauche].Tension)
	}
}

func TestLinesUpdateTelemetryDampingUsesRadialVelocity(t *testing.T) {
	l := NewLines(testLineConfig())
	ctrl := lin.NewV3S(0, 0, 0)

	l.UpdateTelemetry(LineGauche, ctrl, lin.NewV3S(0, 0, 25), 1.0/60)
	firstTension := l.State[LineGauche].Tension

	// Distance grows further next tick: positive radial velocity should add
	// damping tension on top of the stiffness term.
	l.UpdateTelemetry(LineGauche, ctrl, lin.NewV3S(0, 0, 26), 1.0/60)
	secondTension := l.State[LineGauche].Tension

	springOnly := 2 + 50*6.0
	if secondTension <= springOnly {
		t.Errorf("expected damping to add tension beyond the spring-only term %.3f, got %.3f", springOnly, secondTension)
	}
	_ = firstTension
}

func TestSetLineLengthRejectsNonPositive(t *testing.T) {
	l := NewLines(testLineConfig())
	if err := l.SetLength(0); err == nil {
		t.Error("expected a non-positive length to be rejected")
	}
	if l.Config[LineGauche].Length != testLineConfig().Length {
		t.Error("expected the previous length to be retained after rejection")
	}
}

func TestSetLineLengthUpdatesBothSides(t *testing.T) {
	l := NewLines(testLineConfig())
	if err := l.SetLength(15); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if l.Config[LineGauche].Length != 15 || l.Config[LineDroit].Length != 15 {
		t.Error("expected both line configs updated to the new length")
	}
}

func TestSetLineLengthResetsRadialVelocityHistory(t *testing.T) {
	l := NewLines(testLineConfig())
	ctrl := lin.NewV3S(0, 0, 0)
	l.UpdateTelemetry(LineGauche, ctrl, lin.NewV3S(0, 0, 25), 1.0/60)
	if err := l.SetLength(10); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if l.State[LineGauche].hasPrev {
		t.Error("expected SetLength to invalidate the stored previous distance")
	}
}
