// Copyright © 2024 Galvanized Logic Inc.

package physics

import (
	"math"

	"github.com/moyamatthieu/kitesim/math/lin"
)

// DtMax bounds the simulated time step; a longer caller-supplied frame is
// clamped rather than integrated whole, to bound worst-case instability
// after a stall or a debugger pause.
const DtMax = 1.0 / 30.0

// IntegratorConfig holds the integrator tunables: the exponential
// smoothing rate and the magnitude clamps on acceleration, velocity, and
// angular rate, plus the linear and angular aerodynamic-drag damping
// coefficients.
type IntegratorConfig struct {
	SmoothingRate   float64 // k, 1/s, in [0.1, 20].
	LinearAccelMax  float64
	LinearVelMax    float64
	LinearDamping   float64 // c_lin
	AngularAccelMax float64
	AngularVelMax   float64
	AngularDrag     float64 // k_drag
}

// Integrator carries the smoothed force/torque state across ticks,
// since the exponential smoothing filter is stateful.
type Integrator struct {
	Config IntegratorConfig

	smoothedForce  *lin.V3
	smoothedTorque *lin.V3

	spin *lin.Q // scratch for the per-step orientation delta.
}

// NewIntegrator creates an integrator with zeroed smoothing state.
func NewIntegrator(cfg IntegratorConfig) *Integrator {
	return &Integrator{
		Config:         cfg,
		smoothedForce:  lin.NewV3(),
		smoothedTorque: lin.NewV3(),
		spin:           lin.NewQ(),
	}
}

// Step smooths force and torque, advances velocities and the predicted
// position with semi-implicit Euler, updates orientation by the
// quaternion exponential of ω·dt, and then hands the predicted pose to
// solve before committing. dt is assumed already clamped to DtMax by
// the caller. solve is invoked with the predicted (not yet committed)
// pose written into body.Pose and is expected to mutate it in place.
// Step reports whether it had to revert to the previous tick's state,
// so the caller can drive the telemetry counter.
func (in *Integrator) Step(body *KiteBody, force, torque *lin.V3, dt float64, solve func()) (reverted bool) {
	body.StashPrevious()

	k := in.Config.SmoothingRate
	alpha := 1 - math.Exp(-k*dt)

	forceDelta := lin.NewV3().Sub(force, in.smoothedForce)
	in.smoothedForce.Add(in.smoothedForce, forceDelta.Scale(forceDelta, alpha))

	torqueDelta := lin.NewV3().Sub(torque, in.smoothedTorque)
	in.smoothedTorque.Add(in.smoothedTorque, torqueDelta.Scale(torqueDelta, alpha))

	accel := lin.NewV3().Scale(in.smoothedForce, 1/body.Mass)
	clampV3Mag(accel, in.Config.LinearAccelMax)

	body.Pose.LinearVelocity.Add(body.Pose.LinearVelocity, lin.NewV3().Scale(accel, dt))
	clampV3Mag(body.Pose.LinearVelocity, in.Config.LinearVelMax)
	body.Pose.LinearVelocity.Scale(body.Pose.LinearVelocity, math.Exp(-in.Config.LinearDamping*dt))

	body.Pose.Position.Add(body.Pose.Position, lin.NewV3().Scale(body.Pose.LinearVelocity, dt))

	dragTorque := lin.NewV3().Scale(body.Pose.AngularVelocity, -body.Inertia*in.Config.AngularDrag)
	torqueEff := lin.NewV3().Add(in.smoothedTorque, dragTorque)

	angAccel := lin.NewV3().Scale(torqueEff, 1/body.Inertia)
	clampV3Mag(angAccel, in.Config.AngularAccelMax)

	body.Pose.AngularVelocity.Add(body.Pose.AngularVelocity, lin.NewV3().Scale(angAccel, dt))
	clampV3Mag(body.Pose.AngularVelocity, in.Config.AngularVelMax)

	in.rotateOrientation(body.Pose.Orientation, body.Pose.AngularVelocity, dt)

	solve()

	if !body.Finite() {
		body.RevertToPrevious()
		return true
	}
	return false
}

// maxStepRotation caps how far the orientation may rotate in one step.
// A kite spinning faster than this per tick is already clamp-limited
// territory; capping the integrated angle keeps the exponential map well
// conditioned when a long frame meets a high angular rate.
const maxStepRotation = math.Pi / 4

// rotateOrientation advances the kite orientation by the world-frame
// angular velocity over dt, using the quaternion exponential of w*dt
// rather than a linearized update so large spin rates stay on the unit
// sphere. The sinc factor switches to its series expansion near zero
// angle to avoid the 0/0 in sin(a/2)/a.
func (in *Integrator) rotateOrientation(q *lin.Q, angv *lin.V3, dt float64) {
	rate := angv.Len()
	scale := 1.0
	if rate*dt > maxStepRotation {
		scale = maxStepRotation / (rate * dt)
		rate = maxStepRotation / dt
	}
	half := 0.5 * rate * dt
	var fac float64
	if rate < 0.001 {
		fac = 0.5*dt - dt*dt*dt*rate*rate/48
	} else {
		fac = math.Sin(half) / rate
	}
	fac *= scale
	in.spin.SetS(angv.X*fac, angv.Y*fac, angv.Z*fac, math.Cos(half))
	q.Mult(in.spin, q)
	q.Unit()
}

// clampV3Mag scales v down in place if its magnitude exceeds max; it
// never grows v.
func clampV3Mag(v *lin.V3, max float64) {
	length := v.Len()
	if length > max && length > lin.Epsilon {
		v.Scale(v, max/length)
	}
}
