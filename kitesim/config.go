// Copyright © 2024 Galvanized Logic Inc.

package kitesim

import (
	"math"

	"github.com/moyamatthieu/kitesim/math/lin"
	"github.com/moyamatthieu/kitesim/physics"
)

// Units on the boundary: wind speed in km/h, angles in degrees.
// Everything below this conversion layer is SI (m/s, radians).
const kmhToMs = 1.0 / 3.6

// WindSettings is the external (caller-facing) wind configuration. Any
// field left nil in a SetWind call retains its current value.
type WindSettings struct {
	SpeedKmh      *float64
	DirectionDeg  *float64
	TurbulencePct *float64 // 0-100.
}

// BridleLengths is the external {nez, inter, centre} triple in meters,
// identical in shape to physics.BridleLengths; kept as its own type so the
// kitesim package boundary does not leak the physics package's internals
// into caller code that only needs three floats.
type BridleLengths struct {
	Nez, Inter, Centre float64
}

func (b BridleLengths) toPhysics() physics.BridleLengths {
	return physics.BridleLengths{Nez: b.Nez, Inter: b.Inter, Centre: b.Centre}
}

// InitialPose is the caller-supplied starting pose for Initialize/Reset,
// in plain float64 fields so callers don't need to import math/lin.
type InitialPose struct {
	Position    [3]float64
	OrientWXYZ  [4]float64 // quaternion (w, x, y, z); zero value is treated as identity.
}

func (p InitialPose) toPose() physics.Pose {
	pose := physics.NewPose()
	pose.Position.SetS(p.Position[0], p.Position[1], p.Position[2])
	w, x, y, z := p.OrientWXYZ[0], p.OrientWXYZ[1], p.OrientWXYZ[2], p.OrientWXYZ[3]
	if w == 0 && x == 0 && y == 0 && z == 0 {
		pose.Orientation.Set(lin.QI)
	} else {
		pose.Orientation.SetS(x, y, z, w).Unit()
	}
	return pose
}

// Config is the closed configuration record consumed by Initialize; no
// string-keyed option bags anywhere near the tick path.
type Config struct {
	Geometry    *physics.KiteGeometry
	Mass        float64
	Inertia     float64
	Line        LineConfig
	Wind        WindSettings
	BarHalfWidth float64
	BarYawMax    float64 // radians; zero defaults to pi/3.
	PilotPosition [3]float64
	InitialPose   InitialPose
	Integrator    physics.IntegratorConfig // zero value filled with defaults, see applyDefaults.
}

// LineConfig is the external line configuration: length in meters plus
// the tension model used for telemetry.
type LineConfig struct {
	Length            float64
	Stiffness         float64
	PreTension        float64
	MaxTension        float64
	DampingCoeff      float64
	LinearMassDensity float64
}

func (c LineConfig) toPhysics() physics.LineConfig {
	return physics.LineConfig{
		Length:            c.Length,
		Stiffness:         c.Stiffness,
		PreTension:        c.PreTension,
		MaxTension:        c.MaxTension,
		DampingCoeff:      c.DampingCoeff,
		LinearMassDensity: c.LinearMassDensity,
	}
}

// applyDefaults fills zero-valued tunables with defaults that produce a
// stable simulation from a minimal Config.
func (c *Config) applyDefaults() {
	if c.BarYawMax == 0 {
		c.BarYawMax = math.Pi / 3
	}
	if c.Integrator.SmoothingRate == 0 {
		c.Integrator.SmoothingRate = 8.0
	}
	if c.Integrator.LinearAccelMax == 0 {
		c.Integrator.LinearAccelMax = 200.0
	}
	if c.Integrator.LinearVelMax == 0 {
		c.Integrator.LinearVelMax = 60.0
	}
	if c.Integrator.LinearDamping == 0 {
		c.Integrator.LinearDamping = 0.05
	}
	if c.Integrator.AngularAccelMax == 0 {
		c.Integrator.AngularAccelMax = 50.0
	}
	if c.Integrator.AngularVelMax == 0 {
		c.Integrator.AngularVelMax = 20.0
	}
	if c.Integrator.AngularDrag == 0 {
		c.Integrator.AngularDrag = 0.6
	}
}

// DefaultAeroCoeffs are the default lift/drag scalings, exposed as a
// package-level default since Config does not carry them — they are
// tunables, not session identity.
var DefaultAeroCoeffs = physics.AeroCoeffs{LiftScale: 1.0, DragScale: 1.0}
