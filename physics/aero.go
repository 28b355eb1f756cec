// Copyright © 2024 Galvanized Logic Inc.

package physics

import (
	"math"

	"github.com/moyamatthieu/kitesim/math/lin"
)

// AirDensity is rho_air, kg/m^3, at typical flying-field conditions.
const AirDensity = 1.225

// Gravity is the magnitude of gravitational acceleration, m/s^2.
const Gravity = 9.81

// minWindSpeed below which aerodynamic force is zero; gravity
// is still computed.
const minWindSpeed = 0.1

// grazingEpsilon is the |cos incidence| threshold below which a facet is
// treated as edge-on to the wind and contributes zero aero force.
const grazingEpsilon = 1e-4

// AeroCoeffs are the tunable lift and drag scalings.
type AeroCoeffs struct {
	LiftScale float64
	DragScale float64
}

// AeroResult is the per-tick output of the aerodynamics component: net
// lift, drag, gravity force, and the torque they produce about the kite
// position, plus the raw per-facet force for telemetry.
type AeroResult struct {
	Lift    *lin.V3
	Drag    *lin.V3
	Gravity *lin.V3
	Torque  *lin.V3

	PerFacet []*lin.V3 // lift+drag+gravity for each facet, same order as geo.Facets.
}

// ComputeAero accumulates flat-plate lift, drag, and distributed
// gravity over every facet into net force and torque about the kite
// position. apparentWind is the wind vector computed by the wind field
// (already kite-velocity-relative); orientation rotates body-frame
// normals/centroids to world.
func ComputeAero(geo *KiteGeometry, orientation *lin.Q, apparentWind *lin.V3, coeffs AeroCoeffs) AeroResult {
	result := AeroResult{
		Lift:     lin.NewV3(),
		Drag:     lin.NewV3(),
		Gravity:  lin.NewV3(),
		Torque:   lin.NewV3(),
		PerFacet: make([]*lin.V3, len(geo.Facets)),
	}

	windSpeed := apparentWind.Len()
	aeroActive := windSpeed >= minWindSpeed

	var w *lin.V3
	var q float64
	if aeroActive {
		w = lin.NewV3().Set(apparentWind).Unit()
		q = 0.5 * AirDensity * windSpeed * windSpeed
	}

	aeroTorque := lin.NewV3()
	gravTorque := lin.NewV3()

	for i, f := range geo.Facets {
		nBody := geo.FacetNormal(f)
		n := lin.NewV3().MultQ(nBody, orientation)

		centroidWorld := lin.NewV3().MultQ(f.Centroid, orientation)

		facetForce := lin.NewV3()

		if aeroActive {
			c := w.Dot(n)
			if math.Abs(c) > grazingEpsilon {
				sinA := math.Abs(c)
				cosA := math.Sqrt(math.Max(0, 1-sinA*sinA))
				cl := sinA * cosA
				cd := sinA * sinA

				sign := 1.0
				if c < 0 {
					sign = -1.0
				}
				nFace := lin.NewV3().Scale(n, sign)

				wDotNFace := nFace.Dot(w)
				liftDir := lin.NewV3().Scale(w, wDotNFace)
				liftDir.Sub(nFace, liftDir)
				if liftDir.Len() < lin.Epsilon {
					liftDir.Set(nFace)
				} else {
					liftDir.Unit()
				}

				lift := lin.NewV3().Scale(liftDir, q*f.Area*cl)
				drag := lin.NewV3().Scale(w, q*f.Area*cd)

				result.Lift.Add(result.Lift, lift)
				result.Drag.Add(result.Drag, drag)

				aeroTorque.Add(aeroTorque, lin.NewV3().Cross(centroidWorld, lin.NewV3().Add(lift, drag)))

				facetForce.Add(facetForce, lift)
				facetForce.Add(facetForce, drag)
			}
		}

		gravity := lin.NewV3S(0, -f.SurfaceMass*Gravity, 0)
		result.Gravity.Add(result.Gravity, gravity)
		gravTorque.Add(gravTorque, lin.NewV3().Cross(centroidWorld, gravity))
		facetForce.Add(facetForce, gravity)

		result.PerFacet[i] = facetForce
	}

	result.Lift.Scale(result.Lift, coeffs.LiftScale)
	result.Drag.Scale(result.Drag, coeffs.DragScale)
	torqueScale := (coeffs.LiftScale + coeffs.DragScale) / 2
	aeroTorque.Scale(aeroTorque, torqueScale)

	result.Torque.Add(aeroTorque, gravTorque)
	return result
}
