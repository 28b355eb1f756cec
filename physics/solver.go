// Copyright © 2024 Galvanized Logic Inc.

package physics

import "github.com/moyamatthieu/kitesim/math/lin"

// DefaultSolverIterations is the outer-loop pass count: the
// (lines, bridles) projection repeats twice per tick. Lines and bridles
// couple through the control points, so one pass leaves residual error;
// more passes over-constrain and read as visible rigidity.
const DefaultSolverIterations = 2

// GroundY is y_min, the ground plane height.
const GroundY = 0.0

// GroundFriction scales horizontal velocity on ground contact.
const GroundFriction = 0.95

// Solver runs the position-based projection against a predicted pose
// already written into body.Pose by the integrator. It
// mutates body.Pose.Position/Orientation/LinearVelocity/AngularVelocity
// in place; it never allocates a new KiteBody.
type Solver struct {
	Iterations int
}

// NewSolver creates a solver with the default iteration count.
func NewSolver() *Solver { return &Solver{Iterations: DefaultSolverIterations} }

// Run projects the two line constraints and six bridle constraints
// against the body's current (predicted) pose, then applies ground
// contact. handles holds the two pilot-handle world positions, indexed
// by LineSide.
func (s *Solver) Run(body *KiteBody, lines *Lines, handles [2]*lin.V3, bridles *Bridles) {
	iterations := s.Iterations
	if iterations <= 0 {
		iterations = DefaultSolverIterations
	}
	for i := 0; i < iterations; i++ {
		// Alternate the left/right order between passes: the two line
		// constraints are near-parallel, and a fixed sequential order
		// biases the correction toward whichever side goes first.
		if i%2 == 0 {
			s.projectLine(body, AnchorCtrlGauche, handles[LineGauche], lines.Config[LineGauche].Length)
			s.projectLine(body, AnchorCtrlDroit, handles[LineDroit], lines.Config[LineDroit].Length)
		} else {
			s.projectLine(body, AnchorCtrlDroit, handles[LineDroit], lines.Config[LineDroit].Length)
			s.projectLine(body, AnchorCtrlGauche, handles[LineGauche], lines.Config[LineGauche].Length)
		}
		for _, bridle := range bridles.Defs {
			s.projectBridle(body, bridle.From, bridle.To, bridle.Length(body.Geo.Bridles))
		}
	}
	s.projectGround(body)
}

// projectLine projects the unilateral distance constraint between a
// body anchor and a fixed world point (the pilot handle).
func (s *Solver) projectLine(body *KiteBody, anchorName string, target *lin.V3, length float64) {
	p, ok := body.AnchorWorld(anchorName)
	if !ok {
		return
	}
	d := lin.NewV3().Sub(p, target)
	dist := d.Len()
	if dist <= length || dist < lin.Epsilon {
		return
	}
	n := lin.NewV3().Scale(d, 1/dist)
	r := lin.NewV3().Sub(p, body.Pose.Position)

	wEff := effectiveInverseMass(r, n, body.Mass, body.Inertia)
	if wEff <= 0 {
		return
	}
	c := dist - length
	lambda := c / wEff

	s.applyPositionalCorrection(body, r, n, lambda)
	s.applyVelocityImpulse(body, anchorName, target, wEff)
}

// projectBridle implements the bilateral (same-body) form of the
// unilateral distance constraint: both anchors belong to the kite's own
// body frame. The position correction combines both lever arms and is
// split evenly.
func (s *Solver) projectBridle(body *KiteBody, anchorA, anchorB string, length float64) {
	pa, ok1 := body.AnchorWorld(anchorA)
	pb, ok2 := body.AnchorWorld(anchorB)
	if !ok1 || !ok2 {
		return
	}
	d := lin.NewV3().Sub(pa, pb)
	dist := d.Len()
	if dist <= length || dist < lin.Epsilon {
		return
	}
	n := lin.NewV3().Scale(d, 1/dist)
	ra := lin.NewV3().Sub(pa, body.Pose.Position)
	rb := lin.NewV3().Sub(pb, body.Pose.Position)

	wa := effectiveInverseMass(ra, n, body.Mass, body.Inertia)
	wb := effectiveInverseMass(rb, n, body.Mass, body.Inertia)
	wEff := wa + wb
	if wEff <= 0 {
		return
	}
	c := dist - length
	lambda := c / wEff * 0.5 // split evenly between the two attachment points.

	s.applyPositionalCorrection(body, ra, n, lambda)
	s.applyPositionalCorrection(body, rb, lin.NewV3().Neg(n), lambda)
}

// effectiveInverseMass computes w_eff = 1/m + ||r x n||^2 / I, the
// scalar effective inverse mass of a positional constraint at lever arm
// r, with the inertia tensor reduced to a scalar.
func effectiveInverseMass(r, n *lin.V3, mass, inertia float64) float64 {
	cross := lin.NewV3().Cross(r, n)
	return 1/mass + cross.LenSqr()/inertia
}

// applyPositionalCorrection moves the predicted position along the
// constraint direction, then corrects orientation by the angle/axis
// implied by the lever arm and the scalar impulse, renormalizing
// afterward.
func (s *Solver) applyPositionalCorrection(body *KiteBody, r, n *lin.V3, lambda float64) {
	body.Pose.Position.Sub(body.Pose.Position, lin.NewV3().Scale(n, lambda/body.Mass))

	dtheta := lin.NewV3().Cross(r, n)
	dtheta.Scale(dtheta, -lambda/body.Inertia)
	angle := dtheta.Len()
	if angle < lin.Epsilon {
		return
	}
	axis := lin.NewV3().Scale(dtheta, 1/angle)
	rot := lin.NewQ().SetAa(axis.X, axis.Y, axis.Z, angle)
	body.Pose.Orientation.Mult(rot, body.Pose.Orientation)
	body.Pose.Orientation.Unit()
}

// applyVelocityImpulse removes any still-separating radial velocity at
// the anchor of a line constraint (point attached to a fixed world
// target).
func (s *Solver) applyVelocityImpulse(body *KiteBody, anchorName string, target *lin.V3, wEff float64) {
	p, ok := body.AnchorWorld(anchorName)
	if !ok {
		return
	}
	d := lin.NewV3().Sub(p, target)
	dist := d.Len()
	if dist < lin.Epsilon {
		return
	}
	n := lin.NewV3().Scale(d, 1/dist)
	r := lin.NewV3().Sub(p, body.Pose.Position)

	vAnchor := lin.NewV3().Cross(body.Pose.AngularVelocity, r)
	vAnchor.Add(vAnchor, body.Pose.LinearVelocity)

	radial := vAnchor.Dot(n)
	if radial <= 0 {
		return
	}
	j := -radial / wEff
	body.Pose.LinearVelocity.Add(body.Pose.LinearVelocity, lin.NewV3().Scale(n, j/body.Mass))

	angImpulse := lin.NewV3().Cross(r, n)
	angImpulse.Scale(angImpulse, j/body.Inertia)
	body.Pose.AngularVelocity.Add(body.Pose.AngularVelocity, angImpulse)
}

// projectGround lifts the predicted position by the largest anchor
// penetration depth, clamps vertical velocity, and applies ground
// friction to the horizontal velocity components.
func (s *Solver) projectGround(body *KiteBody) {
	maxPenetration := 0.0
	for name := range body.Geo.Anchors {
		p, ok := body.AnchorWorld(name)
		if !ok {
			continue
		}
		if depth := GroundY - p.Y; depth > maxPenetration {
			maxPenetration = depth
		}
	}
	if maxPenetration <= 0 {
		return
	}
	body.Pose.Position.Y += maxPenetration
	if body.Pose.LinearVelocity.Y < 0 {
		body.Pose.LinearVelocity.Y = 0
	}
	body.Pose.LinearVelocity.X *= GroundFriction
	body.Pose.LinearVelocity.Z *= GroundFriction
}
