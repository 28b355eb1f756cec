// Copyright © 2024 Galvanized Logic Inc.

// Package physics is a real-time simulation of a tethered kite.
// Physics applies wind, per-facet aerodynamic forces, and gravity to a
// single rigid body, then resolves line, bridle, and ground constraints
// by position-based projection.
//
// Package physics is provided as part of the kitesim flight-physics core.
package physics

import (
	"github.com/moyamatthieu/kitesim/math/lin"
)

// KiteBody is the rigid-body state of the kite: pose, velocities, mass,
// and a scalar (isotropic) moment of inertia. It is the single mutable
// value at the center of the pipeline; everything else is borrowed by
// the other components and mutated only through the integrator (G) and
// the constraint solver (F).
type KiteBody struct {
	Pose Pose // position, orientation, linear and angular velocity.

	Mass    float64 // kg, total kite mass.
	Inertia float64 // kg*m^2, isotropic approximation (see DESIGN.md open question 4).

	Geo *KiteGeometry // immutable body-frame geometry, rebuilt on bridle length change.

	// previous tick's committed position and linear velocity, kept for
	// the non-finite-state revert path.
	prevPosition *lin.V3
	prevVelocity *lin.V3
}

// Pose is the kite's world-frame position, orientation, and velocities.
// Mutated only by the integrator and the constraint solver.
type Pose struct {
	Position        *lin.V3
	Orientation     *lin.Q
	LinearVelocity  *lin.V3
	AngularVelocity *lin.V3
}

// NewPose returns a pose at the origin with identity orientation and
// zero velocities.
func NewPose() Pose {
	return Pose{
		Position:        lin.NewV3(),
		Orientation:     lin.NewQI(),
		LinearVelocity:  lin.NewV3(),
		AngularVelocity: lin.NewV3(),
	}
}

// NewKiteBody creates a kite body at the given pose with the given mass,
// inertia, and geometry. Mass and inertia are expected to already be
// validated positive by the caller (see errors.go).
func NewKiteBody(pose Pose, mass, inertia float64, geo *KiteGeometry) *KiteBody {
	return &KiteBody{
		Pose:         pose,
		Mass:         mass,
		Inertia:      inertia,
		Geo:          geo,
		prevPosition: lin.NewV3().Set(pose.Position),
		prevVelocity: lin.NewV3().Set(pose.LinearVelocity),
	}
}

// AnchorWorld returns the world-frame position of the named body-frame
// anchor: orientation applied, then position added.
func (b *KiteBody) AnchorWorld(name string) (*lin.V3, bool) {
	local, ok := b.Geo.Anchors[name]
	if !ok {
		return nil, false
	}
	world := lin.NewV3().MultQ(local, b.Pose.Orientation)
	world.Add(world, b.Pose.Position)
	return world, true
}

// Finite reports whether the body's pose is entirely finite: no NaN or
// infinite component in position, orientation, or either velocity.
func (b *KiteBody) Finite() bool {
	return b.Pose.Position.Finite() && b.Pose.Orientation.Finite() &&
		b.Pose.LinearVelocity.Finite() && b.Pose.AngularVelocity.Finite()
}

// UnitOrientation reports whether the orientation quaternion is unit
// length to within the given tolerance; a length within lin.Epsilon of 1
// is accepted even when the tolerance is smaller.
func (b *KiteBody) UnitOrientation(tolerance float64) bool {
	return lin.Aeq(b.Pose.Orientation.Len(), 1) || absDiff(b.Pose.Orientation.Len(), 1) < tolerance
}

func absDiff(a, b float64) float64 {
	if a > b {
		return a - b
	}
	return b - a
}

// StashPrevious records the current position and linear velocity as the
// "previous tick" snapshot used for non-finite-state recovery. Called by
// Integrator.Step at the start of each tick.
func (b *KiteBody) StashPrevious() {
	b.prevPosition.Set(b.Pose.Position)
	b.prevVelocity.Set(b.Pose.LinearVelocity)
}

// RevertToPrevious restores position to the last stashed value and zeros
// linear velocity; used when a tick produces non-finite state.
// Orientation is renormalized, or reset to identity if it is itself
// non-finite.
func (b *KiteBody) RevertToPrevious() {
	b.Pose.Position.Set(b.prevPosition)
	b.Pose.LinearVelocity.SetS(0, 0, 0)
	if b.Pose.Orientation.Finite() {
		b.Pose.Orientation.Unit()
	} else {
		b.Pose.Orientation.Set(lin.QI)
	}
}

// Reset restores the body to the given pose and zeros both velocities.
func (b *KiteBody) Reset(pose Pose) {
	b.Pose.Position.Set(pose.Position)
	b.Pose.Orientation.Set(pose.Orientation)
	b.Pose.LinearVelocity.SetS(0, 0, 0)
	b.Pose.AngularVelocity.SetS(0, 0, 0)
	b.prevPosition.Set(pose.Position)
	b.prevVelocity.SetS(0, 0, 0)
}
