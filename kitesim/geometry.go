// Copyright © 2024 Galvanized Logic Inc.

package kitesim

import (
	"github.com/moyamatthieu/kitesim/math/lin"
	"github.com/moyamatthieu/kitesim/physics"
)

// DefaultDeltaKiteAnchors is the body-frame anchor layout of a generic
// two-line delta stunt kite, in meters. NEZ (nose/apex) is up and slightly
// forward; SPINE_BAS is the spine's trailing-low point; BORD_GAUCHE/DROIT
// are the wingtips; WHISKER_GAUCHE/DROIT are the interior points where the
// whisker strut bows the sail outward (toward the pilot, +Z); INTER_* and
// CENTRE are the bridle-attachment points on the frame; FIX_GAUCHE/DROIT
// are the frame fixation points near the leading edge. CTRL_GAUCHE/DROIT
// are intentionally absent: physics.NewKiteGeometry trilaterates them.
func DefaultDeltaKiteAnchors() map[string]*lin.V3 {
	return map[string]*lin.V3{
		physics.AnchorNez:           lin.NewV3S(0.00, 1.00, 0.05),
		physics.AnchorSpineBas:      lin.NewV3S(0.00, -0.85, -0.10),
		physics.AnchorBordGauche:    lin.NewV3S(-1.40, -0.25, -0.12),
		physics.AnchorBordDroit:     lin.NewV3S(1.40, -0.25, -0.12),
		physics.AnchorWhiskerGauche: lin.NewV3S(-0.50, -0.05, 0.22),
		physics.AnchorWhiskerDroit:  lin.NewV3S(0.50, -0.05, 0.22),
		physics.AnchorInterGauche:   lin.NewV3S(-0.22, 0.55, 0.08),
		physics.AnchorInterDroit:    lin.NewV3S(0.22, 0.55, 0.08),
		physics.AnchorCentre:        lin.NewV3S(0.00, 0.15, 0.10),
		physics.AnchorFixGauche:     lin.NewV3S(-0.15, 0.55, 0.00),
		physics.AnchorFixDroit:      lin.NewV3S(0.15, 0.55, 0.00),
	}
}

// DefaultBridleLengths are the nominal {nez, inter, centre} bridle lengths
// (meters) that trilaterate cleanly against DefaultDeltaKiteAnchors.
var DefaultBridleLengths = BridleLengths{Nez: 0.65, Inter: 0.65, Centre: 0.65}

// deltaFacetSpec is a named triangle plus which of the three conceptual
// spars (leading edge, whisker strut, central spine) borders it, used for
// the frame-mass-share pass of facetMassShares.
type deltaFacetSpec struct {
	v0, v1, v2 string
	spar       sparKind
}

type sparKind int

const (
	sparLeadingEdge sparKind = iota
	sparWhisker
	sparSpine
)

// DefaultDeltaKiteFacets triangulates each half of the sail as a
// 3-triangle fan around its WHISKER_* point. The WHISKER point lies inside
// the NEZ/BORD_*/SPINE_BAS triangle in projection but bows out of its
// plane, so NEZ/BORD_*/SPINE_BAS stays the outline of each half while the
// fan's total area is somewhat larger than the outline triangle's.
func DefaultDeltaKiteFacets() []deltaFacetSpec {
	return []deltaFacetSpec{
		{physics.AnchorNez, physics.AnchorBordGauche, physics.AnchorWhiskerGauche, sparLeadingEdge},
		{physics.AnchorBordGauche, physics.AnchorSpineBas, physics.AnchorWhiskerGauche, sparWhisker},
		{physics.AnchorSpineBas, physics.AnchorNez, physics.AnchorWhiskerGauche, sparSpine},
		{physics.AnchorNez, physics.AnchorWhiskerDroit, physics.AnchorBordDroit, sparLeadingEdge},
		{physics.AnchorWhiskerDroit, physics.AnchorSpineBas, physics.AnchorBordDroit, sparWhisker},
		{physics.AnchorSpineBas, physics.AnchorWhiskerDroit, physics.AnchorNez, sparSpine},
	}
}

// Mass budget fractions for the per-facet distribution: fabric
// proportional to area, frame (carbon spar) mass by which spar borders
// a facet, and an equal accessory-mass share.
const (
	fabricMassFraction    = 0.60
	frameMassFraction     = 0.30
	accessoryMassFraction = 0.10
)

// BuildDeltaKiteGeometry assembles a physics.KiteGeometry for a generic
// delta kite: anchors from DefaultDeltaKiteAnchors, facets from
// DefaultDeltaKiteFacets with the three-way mass distribution, and
// control points trilaterated at the given bridle lengths. mass and
// inertia are the kite's total mass (kg) and scalar moment of inertia
// (kg*m^2).
func BuildDeltaKiteGeometry(bridles BridleLengths, mass, inertia float64) (*physics.KiteGeometry, error) {
	anchors := DefaultDeltaKiteAnchors()
	specs := DefaultDeltaKiteFacets()

	areas := make([]float64, len(specs))
	totalArea := 0.0
	for i, s := range specs {
		v0, v1, v2 := anchors[s.v0], anchors[s.v1], anchors[s.v2]
		e1 := lin.NewV3().Sub(v1, v0)
		e2 := lin.NewV3().Sub(v2, v0)
		areas[i] = 0.5 * lin.NewV3().Cross(e1, e2).Len()
		totalArea += areas[i]
	}

	// Each of the 3 spar kinds is shared by exactly 2 facets (one per
	// side); the mass assigned to a spar kind is split evenly between them.
	sparFacetCount := map[sparKind]int{}
	for _, s := range specs {
		sparFacetCount[s.spar]++
	}
	frameMassTotal := mass * frameMassFraction
	accessoryMassTotal := mass * accessoryMassFraction
	accessoryShare := accessoryMassTotal / float64(len(specs))

	facets := make([]physics.Facet, len(specs))
	for i, s := range specs {
		v0, v1, v2 := anchors[s.v0], anchors[s.v1], anchors[s.v2]
		centroid := lin.NewV3().Add(v0, v1)
		centroid.Add(centroid, v2)
		centroid.Scale(centroid, 1.0/3.0)

		fabricShare := areas[i] / totalArea * mass * fabricMassFraction
		sparKindCount := float64(sparFacetCount[s.spar])
		// 3 spar kinds share frameMassTotal evenly; each kind's share then
		// splits evenly across the facets that border it (symmetric: 2).
		sparShare := (frameMassTotal / 3) / sparKindCount

		facets[i] = physics.Facet{
			V0: s.v0, V1: s.v1, V2: s.v2,
			Area:        areas[i],
			Centroid:    centroid,
			SurfaceMass: fabricShare + sparShare + accessoryShare,
		}
	}

	return physics.NewKiteGeometry(anchors, facets, bridles.toPhysics(), mass, inertia)
}
