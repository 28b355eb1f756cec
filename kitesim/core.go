// Copyright © 2024 Galvanized Logic Inc.

// Package kitesim is the narrow, value-oriented external surface of the
// kite flight-physics core. It owns the single mutable Core handle and
// wires together the physics package's otherwise-stateless components
// (wind, aerodynamics, lines, bridles, the PBD solver, the integrator,
// control-bar kinematics) into the fixed per-tick pipeline: wind and
// aerodynamics first, line/bridle telemetry next, then integration with
// the constraint solve, with the control-bar kinematics feeding the
// line targets.
package kitesim

import (
	"github.com/moyamatthieu/kitesim/internal/telemetry"
	"github.com/moyamatthieu/kitesim/math/lin"
	"github.com/moyamatthieu/kitesim/physics"
)

// Core is the opaque simulation handle. It is safe to instantiate more
// than once in the same process since it carries no package-level
// mutable state; only the telemetry sink is shared by reference, and
// callers may pass independent sinks.
type Core struct {
	body       *physics.KiteBody
	wind       *physics.WindField
	lines      *physics.Lines
	bridles    *physics.Bridles
	bar        *physics.ControlBar
	integrator *physics.Integrator
	solver     *physics.Solver
	aeroCoeffs physics.AeroCoeffs
	sink       telemetry.Sink

	lastAero physics.AeroResult
	lastWind *lin.V3
}

// Initialize builds a Core from a closed configuration record. sink may
// be nil, in which case a telemetry.SlogSink wrapping slog.Default() is
// used.
func Initialize(cfg Config, sink telemetry.Sink) (*Core, error) {
	cfg.applyDefaults()
	if sink == nil {
		sink = telemetry.NewSlogSink(nil)
	}

	if cfg.Mass <= 0 {
		return nil, ErrInvalidMass
	}
	if cfg.Inertia <= 0 {
		return nil, ErrInvalidInertia
	}
	if err := cfg.Line.toPhysics().Validate(); err != nil {
		return nil, err
	}

	geo := cfg.Geometry
	var err error
	if geo == nil {
		geo, err = BuildDeltaKiteGeometry(DefaultBridleLengths, cfg.Mass, cfg.Inertia)
		if err != nil {
			return nil, err
		}
	}

	pose := cfg.InitialPose.toPose()
	body := physics.NewKiteBody(pose, cfg.Mass, cfg.Inertia, geo)

	windCfg := windSettingsToConfig(physics.WindConfig{}, cfg.Wind)

	pilot := lin.NewV3S(cfg.PilotPosition[0], cfg.PilotPosition[1], cfg.PilotPosition[2])

	core := &Core{
		body:       body,
		wind:       physics.NewWindField(windCfg),
		lines:      physics.NewLines(cfg.Line.toPhysics()),
		bridles:    physics.NewBridles(bridleTensionModelFrom(cfg.Line)),
		bar:        physics.NewControlBar(pilot, cfg.BarHalfWidth, cfg.BarYawMax),
		integrator: physics.NewIntegrator(cfg.Integrator),
		solver:     physics.NewSolver(),
		aeroCoeffs: DefaultAeroCoeffs,
		sink:       sink,
		lastWind:   lin.NewV3(),
		lastAero: physics.AeroResult{
			Lift: lin.NewV3(), Drag: lin.NewV3(),
			Gravity: lin.NewV3(), Torque: lin.NewV3(),
		},
	}
	return core, nil
}

// bridleTensionModelFrom derives the bridle indicative-tension model
// from the line configuration: bridle tensions are reported the same
// way as line tensions, and bridles carry no configuration record of
// their own.
func bridleTensionModelFrom(line LineConfig) physics.BridleTensionModel {
	return physics.BridleTensionModel{
		Stiffness:    line.Stiffness,
		PreTension:   line.PreTension,
		MaxTension:   line.MaxTension,
		DampingCoeff: line.DampingCoeff,
	}
}

// windSettingsToConfig applies an (incremental) WindSettings onto a base
// physics.WindConfig, converting km/h/degrees to the internal
// m/s/radians units.
func windSettingsToConfig(base physics.WindConfig, s WindSettings) physics.WindConfig {
	out := base
	if s.SpeedKmh != nil {
		out.Speed = *s.SpeedKmh * kmhToMs
	}
	if s.DirectionDeg != nil {
		out.DirectionRad = lin.Rad(*s.DirectionDeg)
	}
	if s.TurbulencePct != nil {
		out.Turbulence = *s.TurbulencePct / 100
	}
	return out
}

// SetWind applies a partial wind update, taking effect on the next
// Update call. Rejects a negative speed or an out-of-range turbulence
// fraction, retaining the previous configuration.
func (c *Core) SetWind(s WindSettings) error {
	if s.SpeedKmh != nil && *s.SpeedKmh < 0 {
		return ErrInvalidWindSpeed
	}
	if s.TurbulencePct != nil && (*s.TurbulencePct < 0 || *s.TurbulencePct > 100) {
		return ErrInvalidTurbulence
	}
	c.wind.SetConfig(windSettingsToConfig(c.wind.Config, s))
	return nil
}

// SetLineLength rebuilds both line configs at the new length. Rejects a
// non-positive length, retaining the previous configuration.
func (c *Core) SetLineLength(meters float64) error {
	if meters <= 0 {
		return ErrInvalidLineLength
	}
	if err := c.lines.SetLength(meters); err != nil {
		c.sink.Warn("kitesim: line length rejected", "length", meters, "err", err)
		return err
	}
	return nil
}

// SetBridleLengths retrilaterates the control points and rebuilds the
// geometry at the new {nez, inter, centre} lengths. On a degenerate
// trilateration, the previous control points are retained and
// ErrBridleTrilateration is returned after warning through the
// telemetry sink.
func (c *Core) SetBridleLengths(b BridleLengths) error {
	if b.Nez <= 0 || b.Inter <= 0 || b.Centre <= 0 {
		return ErrInvalidBridleLength
	}
	if err := c.body.Geo.RebuildControlPoints(b.toPhysics()); err != nil {
		c.sink.Warn("kitesim: bridle lengths admit no trilateration solution, retaining previous control points", "err", err)
		return ErrBridleTrilateration
	}
	return nil
}

// SetBarRotation replaces the per-tick bar-rotation command, clamped to
// ±pi/3 inside physics.ControlBar.SetYaw.
func (c *Core) SetBarRotation(radians float64) { c.bar.SetYaw(radians) }

// SetBarPosition moves the control bar's world position (the pilot's
// hand position), letting an external input translator walk the pilot
// around the field.
func (c *Core) SetBarPosition(x, y, z float64) { c.bar.Position.SetS(x, y, z) }

// Reset restores position, zeros velocities, and rebuilds subsystem
// state: the wind phase, the stored previous-distance telemetry for
// lines/bridles, and the integrator's smoothing filters are all cleared
// so the next Update starts cold.
func (c *Core) Reset(pose InitialPose) {
	c.body.Reset(pose.toPose())
	c.wind = physics.NewWindField(c.wind.Config)
	c.lines = physics.NewLines(c.lines.Config[physics.LineGauche])
	c.bridles = physics.NewBridles(c.bridles.Tension)
	c.integrator = physics.NewIntegrator(c.integrator.Config)
}

// Update runs one tick of the fixed pipeline. dt is clamped to
// physics.DtMax before use.
func (c *Core) Update(dt float64) {
	if dt <= 0 {
		return
	}
	if dt > physics.DtMax {
		dt = physics.DtMax
	}

	ctrlGauche, _ := c.body.AnchorWorld(physics.AnchorCtrlGauche)
	ctrlDroit, _ := c.body.AnchorWorld(physics.AnchorCtrlDroit)
	handles := c.bar.Handles(ctrlGauche, ctrlDroit)

	c.lastWind = c.wind.ApparentWind(c.body.Pose.LinearVelocity, dt)
	aero := physics.ComputeAero(c.body.Geo, c.body.Pose.Orientation, c.lastWind, c.aeroCoeffs)
	c.lastAero = aero

	c.lines.UpdateTelemetry(physics.LineGauche, ctrlGauche, handles[physics.LineGauche], dt)
	c.lines.UpdateTelemetry(physics.LineDroit, ctrlDroit, handles[physics.LineDroit], dt)
	c.bridles.UpdateTelemetry(c.body, dt)

	force := lin.NewV3().Add(aero.Lift, aero.Drag)
	force.Add(force, aero.Gravity)

	reverted := c.integrator.Step(c.body, force, aero.Torque, dt, func() {
		c.solver.Run(c.body, c.lines, handles, c.bridles)
	})
	if reverted {
		c.sink.NonFiniteRecovered()
	}
}

// Pose returns a read-only snapshot of the current kite pose.
func (c *Core) Pose() PoseSnapshot {
	p := c.body.Pose
	x, y, z, w := p.Orientation.GetS()
	return PoseSnapshot{
		Position:        [3]float64{p.Position.X, p.Position.Y, p.Position.Z},
		OrientWXYZ:      [4]float64{w, x, y, z},
		LinearVelocity:  [3]float64{p.LinearVelocity.X, p.LinearVelocity.Y, p.LinearVelocity.Z},
		AngularVelocity: [3]float64{p.AngularVelocity.X, p.AngularVelocity.Y, p.AngularVelocity.Z},
	}
}

// ApparentWind returns the apparent wind vector computed during the most
// recent Update call.
func (c *Core) ApparentWind() [3]float64 {
	return [3]float64{c.lastWind.X, c.lastWind.Y, c.lastWind.Z}
}

// Aero returns the aerodynamic totals computed during the most recent
// Update call.
func (c *Core) Aero() AeroSnapshot {
	return AeroSnapshot{
		Lift:    [3]float64{c.lastAero.Lift.X, c.lastAero.Lift.Y, c.lastAero.Lift.Z},
		Drag:    [3]float64{c.lastAero.Drag.X, c.lastAero.Drag.Y, c.lastAero.Drag.Z},
		Gravity: [3]float64{c.lastAero.Gravity.X, c.lastAero.Gravity.Y, c.lastAero.Gravity.Z},
		Torque:  [3]float64{c.lastAero.Torque.X, c.lastAero.Torque.Y, c.lastAero.Torque.Z},
	}
}

// Line returns the per-tick telemetry for the given side: end-to-end
// distance, taut flag, indicative tension.
func (c *Core) Line(side physics.LineSide) LineSnapshot {
	s := c.lines.State[side]
	return LineSnapshot{Distance: s.Distance, Taut: s.Taut, Tension: s.Tension}
}

// Bridles returns the per-tick telemetry for all six bridles, in order:
// left NEZ/INTER/CENTRE, then right NEZ/INTER/CENTRE.
func (c *Core) Bridles() [6]BridleSnapshot {
	var out [6]BridleSnapshot
	for i, s := range c.bridles.State {
		out[i] = BridleSnapshot{Distance: s.Distance, Taut: s.Taut, Tension: s.Tension}
	}
	return out
}

// NonFiniteRecoveries returns the non-finite-state recovery counter,
// when the sink supports it (both built-in sinks do).
func (c *Core) NonFiniteRecoveries() int { return c.sink.NonFiniteCount() }

// AnchorWorld exposes the world-frame position of a named body anchor, for
// callers (rendering, debug visualization) that need it; mirrors
// physics.KiteBody.AnchorWorld.
func (c *Core) AnchorWorld(name string) ([3]float64, bool) {
	v, ok := c.body.AnchorWorld(name)
	if !ok {
		return [3]float64{}, false
	}
	return [3]float64{v.X, v.Y, v.Z}, true
}

// UnitOrientation reports whether the kite's orientation quaternion is
// unit-length to within the given tolerance, exposed for test
// assertions.
func (c *Core) UnitOrientation(tolerance float64) bool {
	return c.body.UnitOrientation(tolerance)
}
