// Copyright © 2024 Galvanized Logic Inc.

package physics

import (
	"math"
	"testing"

	"github.com/moyamatthieu/kitesim/math/lin"
)

func unitCoeffs() AeroCoeffs { return AeroCoeffs{LiftScale: 1, DragScale: 1} }

func TestComputeAeroBelowWindThresholdIsGravityOnly(t *testing.T) {
	geo := testGeometry(t)
	orient := lin.NewQI()
	wind := lin.NewV3S(0.05, 0, 0) // below the 0.1 m/s threshold.

	r := ComputeAero(geo, orient, wind, unitCoeffs())
	if !r.Lift.AeqZ() || !r.Drag.AeqZ() {
		t.Error("expected zero lift and drag below the wind-speed threshold")
	}

	wantMass := 0.0
	for _, f := range geo.Facets {
		wantMass += f.SurfaceMass
	}
	if !lin.Aeq(r.Gravity.Y, -wantMass*Gravity) {
		t.Errorf("expected gravity -m*g=%.6f, got %.6f", -wantMass*Gravity, r.Gravity.Y)
	}
	if r.Gravity.X != 0 || r.Gravity.Z != 0 {
		t.Error("expected gravity to be purely vertical")
	}
}

// Byte-identical recomputation: the aero component is a pure function
// of its inputs.
func TestComputeAeroIdempotent(t *testing.T) {
	geo := testGeometry(t)
	orient := lin.NewQ().SetAa(0, 1, 0, 0.3).Unit()
	wind := lin.NewV3S(1.5, -0.4, -6.0)

	a := ComputeAero(geo, orient, wind, unitCoeffs())
	b := ComputeAero(geo, orient, wind, unitCoeffs())

	if !a.Lift.Eq(b.Lift) || !a.Drag.Eq(b.Drag) || !a.Gravity.Eq(b.Gravity) || !a.Torque.Eq(b.Torque) {
		t.Error("expected byte-identical totals from identical inputs")
	}
	for i := range a.PerFacet {
		if !a.PerFacet[i].Eq(b.PerFacet[i]) {
			t.Errorf("facet %d force differs between identical computations", i)
		}
	}
}

func TestComputeAeroDragAlignsWithWind(t *testing.T) {
	geo := testGeometry(t)
	wind := lin.NewV3S(0, 0, -6)

	r := ComputeAero(geo, lin.NewQI(), wind, unitCoeffs())
	if r.Drag.AeqZ() {
		t.Fatal("expected nonzero drag for a sail facing the wind")
	}
	// Drag is a sum of positive multiples of the wind direction.
	w := lin.NewV3().Set(wind).Unit()
	d := lin.NewV3().Set(r.Drag).Unit()
	if !d.Aeq(w) {
		t.Errorf("drag direction (%.6f,%.6f,%.6f) not aligned with wind (%.6f,%.6f,%.6f)",
			d.X, d.Y, d.Z, w.X, w.Y, w.Z)
	}
}

func TestComputeAeroLiftPerpendicularToWind(t *testing.T) {
	geo := testGeometry(t)
	// Pitch the sail so the facets meet the wind at a genuine angle of
	// attack and produce lift.
	orient := lin.NewQ().SetAa(1, 0, 0, lin.Rad(35)).Unit()
	wind := lin.NewV3S(0, 0, -6)

	r := ComputeAero(geo, orient, wind, unitCoeffs())
	if r.Lift.AeqZ() {
		t.Fatal("expected nonzero lift at a 35 degree angle of attack")
	}
	w := lin.NewV3().Set(wind).Unit()
	if math.Abs(r.Lift.Dot(w)) > 1e-9*r.Lift.Len() {
		t.Errorf("lift has a component along the wind: dot=%.12f", r.Lift.Dot(w))
	}
}

// Mirror-symmetric geometry, symmetric wind: the lateral force and the
// yaw/roll torques must cancel, otherwise the kite steers itself.
func TestComputeAeroSymmetricGeometryNoLateralForce(t *testing.T) {
	geo := testGeometry(t)
	wind := lin.NewV3S(0, 0, -6)

	r := ComputeAero(geo, lin.NewQI(), wind, unitCoeffs())
	total := lin.NewV3().Add(r.Lift, r.Drag)
	if math.Abs(total.X) > 1e-9 {
		t.Errorf("expected zero lateral aero force for symmetric geometry, got %.12f", total.X)
	}
	if math.Abs(r.Torque.Y) > 1e-9 || math.Abs(r.Torque.Z) > 1e-9 {
		t.Errorf("expected zero yaw/roll torque for symmetric geometry, got (%.12f, %.12f)", r.Torque.Y, r.Torque.Z)
	}
}

// Yawing the kite relative to the wind breaks the left/right facet balance
// and must produce a steering torque with no scripted term anywhere:
// turning is emergent.
func TestComputeAeroAsymmetricOrientationProducesTorque(t *testing.T) {
	geo := testGeometry(t)
	orient := lin.NewQ().SetAa(0, 1, 0, lin.Rad(20)).Unit()
	wind := lin.NewV3S(0, 0, -6)

	r := ComputeAero(geo, orient, wind, unitCoeffs())
	aeroTorque := lin.NewV3().Set(r.Torque)
	// Remove the gravity torque so only the aero asymmetry remains.
	grav := ComputeAero(geo, orient, lin.NewV3(), unitCoeffs())
	aeroTorque.Sub(aeroTorque, grav.Torque)
	if aeroTorque.AeqZ() {
		t.Error("expected a nonzero aero torque once the kite is yawed against the wind")
	}
}

func TestComputeAeroScalesLiftAndDragIndependently(t *testing.T) {
	geo := testGeometry(t)
	orient := lin.NewQ().SetAa(1, 0, 0, lin.Rad(35)).Unit()
	wind := lin.NewV3S(0, 0, -6)

	base := ComputeAero(geo, orient, wind, unitCoeffs())
	scaled := ComputeAero(geo, orient, wind, AeroCoeffs{LiftScale: 2, DragScale: 0.5})

	if !lin.Aeq(scaled.Lift.Len(), 2*base.Lift.Len()) {
		t.Errorf("expected lift doubled: base %.6f scaled %.6f", base.Lift.Len(), scaled.Lift.Len())
	}
	if !lin.Aeq(scaled.Drag.Len(), 0.5*base.Drag.Len()) {
		t.Errorf("expected drag halved: base %.6f scaled %.6f", base.Drag.Len(), scaled.Drag.Len())
	}
	// Gravity is pure physics and never scaled.
	if !scaled.Gravity.Eq(base.Gravity) {
		t.Error("expected gravity unaffected by the aero scalings")
	}
}

func TestComputeAeroGrazingIncidenceContributesNothing(t *testing.T) {
	// A single facet in the XZ plane (normal -Y) with wind along X: the
	// wind grazes the facet edge-on, so only gravity remains.
	anchors := map[string]*lin.V3{
		"A": lin.NewV3S(0, 0, 0),
		"B": lin.NewV3S(1, 0, 0),
		"C": lin.NewV3S(0, 0, -1),
	}
	geo := &KiteGeometry{
		Anchors: anchors,
		Facets: []Facet{
			{V0: "A", V1: "C", V2: "B", Area: 0.5, Centroid: lin.NewV3S(0.33, 0, -0.33), SurfaceMass: 0.1},
		},
	}
	wind := lin.NewV3S(6, 0, 0)

	r := ComputeAero(geo, lin.NewQI(), wind, unitCoeffs())
	if !r.Lift.AeqZ() || !r.Drag.AeqZ() {
		t.Error("expected zero aero force at grazing incidence")
	}
	if lin.Aeq(r.Gravity.Y, 0) {
		t.Error("expected gravity still applied at grazing incidence")
	}
}
