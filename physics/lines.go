// Copyright © 2024 Galvanized Logic Inc.

package physics

import (
	"errors"

	"github.com/moyamatthieu/kitesim/math/lin"
)

// ErrInvalidLineConfig is returned by setters when a line configuration
// is rejected; the previous configuration is retained.
var ErrInvalidLineConfig = errors.New("kitesim: invalid line configuration")

// LineConfig is the immutable-per-session configuration of one tether
// line. Rebuilt whenever the caller changes line length.
type LineConfig struct {
	Length            float64 // m
	Stiffness         float64 // N/m, indicative tension only.
	PreTension        float64 // N
	MaxTension        float64 // N
	DampingCoeff      float64
	LinearMassDensity float64 // kg/m, unused by the constraint solver; carried for telemetry/future use.
}

// Validate checks the line configuration invariants: positive length,
// non-negative stiffness/damping/tension bounds.
func (c LineConfig) Validate() error {
	if c.Length <= 0 {
		return ErrInvalidLineConfig
	}
	if c.Stiffness < 0 || c.DampingCoeff < 0 || c.PreTension < 0 || c.MaxTension < c.PreTension {
		return ErrInvalidLineConfig
	}
	return nil
}

// LineSide identifies the left ("Gauche") or right ("Droit") line.
type LineSide int

const (
	LineGauche LineSide = iota
	LineDroit
)

// LineState is the per-tick, per-side telemetry and bookkeeping for one
// line: current end-to-end distance, taut flag, indicative tension, and
// the previous-tick distance used to estimate radial velocity.
type LineState struct {
	Distance   float64
	Taut       bool
	Tension    float64
	prevDistance float64
	hasPrev      bool
}

// Lines holds both line configurations and their per-tick state.
type Lines struct {
	Config [2]LineConfig
	State  [2]LineState
}

// NewLines creates a line pair; both sides share one configuration.
func NewLines(cfg LineConfig) *Lines {
	return &Lines{Config: [2]LineConfig{cfg, cfg}}
}

// SetLength rebuilds both line configs at the new length, invalidating
// stored previous distances used for the radial-velocity estimate.
func (l *Lines) SetLength(meters float64) error {
	candidate := l.Config[LineGauche]
	candidate.Length = meters
	if err := candidate.Validate(); err != nil {
		return err
	}
	l.Config[LineGauche].Length = meters
	l.Config[LineDroit].Length = meters
	l.State[LineGauche].hasPrev = false
	l.State[LineDroit].hasPrev = false
	return nil
}

// UpdateTelemetry computes the indicative tension for a line given the
// current control point and handle world positions. It does not mutate
// the pose; lines act on the kite only through the constraint solver,
// and this is purely the telemetry side.
func (l *Lines) UpdateTelemetry(side LineSide, ctrlWorld, handleWorld *lin.V3, dt float64) {
	cfg := l.Config[side]
	state := &l.State[side]

	d := ctrlWorld.Dist(handleWorld)
	state.Distance = d

	if d <= cfg.Length {
		state.Taut = false
		state.Tension = 0
		state.prevDistance = d
		state.hasPrev = true
		return
	}

	state.Taut = true
	var vRadial float64
	if state.hasPrev && dt > 0 {
		vRadial = (d - state.prevDistance) / dt
	}
	tension := cfg.PreTension + cfg.Stiffness*(d-cfg.Length) + cfg.DampingCoeff*vRadial
	state.Tension = lin.Clamp(tension, 0, cfg.MaxTension)
	state.prevDistance = d
	state.hasPrev = true
}
