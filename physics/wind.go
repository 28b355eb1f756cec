// Copyright © 2024 Galvanized Logic Inc.

package physics

import (
	"math"

	"github.com/moyamatthieu/kitesim/math/lin"
)

// WindConfig is the immutable-per-tick configuration of the wind field:
// base speed and direction, and a turbulence fraction. Units are SI
// internally (m/s, radians); the km/h / degree conversion happens at the
// kitesim package boundary.
type WindConfig struct {
	Speed       float64 // m/s
	DirectionRad float64 // radians, measured the same way as kite yaw.
	Turbulence  float64 // fraction in [0, 1].
}

// turbulenceAmplitude gives each axis of the pseudo-turbulent
// perturbation its own scale relative to the dominant along-wind
// component, so that turbulence never inverts the sign of the base wind.
var turbulenceAmplitude = lin.V3{X: 0.35, Y: 0.20, Z: 0.35}

// turbulenceFreq are the three low-frequency sinusoid rates (rad/s) used
// to build the deterministic perturbation from the phase accumulator.
var turbulenceFreq = lin.V3{X: 0.9, Y: 1.7, Z: 1.3}

// WindField is the stateful (phase-accumulator only) wind model. It is
// otherwise a pure function of its configuration.
type WindField struct {
	Config WindConfig
	phase  float64
}

// NewWindField creates a wind field at zero phase with the given config.
func NewWindField(cfg WindConfig) *WindField {
	return &WindField{Config: cfg}
}

// ApparentWind advances the internal phase by dt and returns the
// apparent wind vector at a point moving with kiteVelocity. The phase
// is advanced here and only here, which keeps replays deterministic.
func (w *WindField) ApparentWind(kiteVelocity *lin.V3, dt float64) *lin.V3 {
	w.phase += dt

	theta := w.Config.DirectionRad
	s := w.Config.Speed
	base := lin.NewV3S(math.Sin(theta)*s, 0, -math.Cos(theta)*s)

	if w.Config.Turbulence > 0 {
		amp := w.Config.Turbulence * s
		turb := lin.NewV3S(
			math.Sin(w.phase*turbulenceFreq.X)*amp*turbulenceAmplitude.X,
			math.Sin(w.phase*turbulenceFreq.Y)*amp*turbulenceAmplitude.Y,
			math.Sin(w.phase*turbulenceFreq.Z)*amp*turbulenceAmplitude.Z,
		)
		base.Add(base, turb)
	}

	base.Sub(base, kiteVelocity)
	return base
}

// Phase returns the current wind phase, in seconds of accumulated dt.
// Exposed for deterministic-reproduction tests.
func (w *WindField) Phase() float64 { return w.phase }

// SetConfig replaces the wind configuration; takes effect on the next
// ApparentWind call. The phase accumulator is untouched, so a wind
// change does not restart the turbulence pattern.
func (w *WindField) SetConfig(cfg WindConfig) { w.Config = cfg }
