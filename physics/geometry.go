// Copyright © 2024 Galvanized Logic Inc.

package physics

import (
	"errors"
	"math"

	"github.com/moyamatthieu/kitesim/math/lin"
)

// Required anchor names. CTRL_GAUCHE/DROIT are computed by
// trilateration rather than supplied directly; see RebuildControlPoints.
const (
	AnchorNez           = "NEZ"
	AnchorSpineBas      = "SPINE_BAS"
	AnchorBordGauche    = "BORD_GAUCHE"
	AnchorBordDroit     = "BORD_DROIT"
	AnchorWhiskerGauche = "WHISKER_GAUCHE"
	AnchorWhiskerDroit  = "WHISKER_DROIT"
	AnchorInterGauche   = "INTER_GAUCHE"
	AnchorInterDroit    = "INTER_DROIT"
	AnchorCentre        = "CENTRE"
	AnchorFixGauche     = "FIX_GAUCHE"
	AnchorFixDroit      = "FIX_DROIT"
	AnchorCtrlGauche    = "CTRL_GAUCHE"
	AnchorCtrlDroit     = "CTRL_DROIT"
)

var requiredAnchors = []string{
	AnchorNez, AnchorSpineBas, AnchorBordGauche, AnchorBordDroit,
	AnchorWhiskerGauche, AnchorWhiskerDroit, AnchorInterGauche, AnchorInterDroit,
	AnchorCentre, AnchorFixGauche, AnchorFixDroit,
}

// ErrTrilaterationDegenerate is returned when a control point's three
// sphere-distance constraints have no real intersection (negative
// radicand). The caller retains its previous control point positions.
var ErrTrilaterationDegenerate = errors.New("kitesim: bridle lengths admit no trilateration solution")

// Facet is one triangular subpanel of the sail: three vertex names plus
// cached per-facet quantities that do not change once the geometry is
// built (area, centroid, surface mass).
type Facet struct {
	V0, V1, V2  string
	Area        float64
	Centroid    *lin.V3 // body frame.
	SurfaceMass float64 // kg, this facet's share of total mass.
}

// BridleLengths is the {nez, inter, centre} length triple used to
// trilaterate the two control points.
type BridleLengths struct {
	Nez    float64
	Inter  float64
	Centre float64
}

// KiteGeometry is the immutable-per-session body-frame layout of the
// kite: named anchors, facets, total mass, and scalar inertia. It is
// rebuilt only when bridle lengths change.
type KiteGeometry struct {
	Anchors map[string]*lin.V3
	Facets  []Facet

	Mass    float64
	Inertia float64

	Bridles BridleLengths
}

// NewKiteGeometry builds a geometry from a caller-supplied anchor table
// (everything except the two CTRL points, which are trilaterated here),
// a facet list, and bridle lengths. Anchor and facet slices are copied;
// the caller's maps/slices may be reused afterward.
func NewKiteGeometry(anchors map[string]*lin.V3, facets []Facet, bridles BridleLengths, mass, inertia float64) (*KiteGeometry, error) {
	for _, name := range requiredAnchors {
		if _, ok := anchors[name]; !ok {
			return nil, errors.New("kitesim: missing required anchor " + name)
		}
	}
	geo := &KiteGeometry{
		Anchors: make(map[string]*lin.V3, len(anchors)+2),
		Facets:  append([]Facet(nil), facets...),
		Mass:    mass,
		Inertia: inertia,
		Bridles: bridles,
	}
	for name, v := range anchors {
		geo.Anchors[name] = lin.NewV3().Set(v)
	}
	if err := geo.RebuildControlPoints(bridles); err != nil {
		return nil, err
	}
	return geo, nil
}

// RebuildControlPoints trilaterates CTRL_GAUCHE and CTRL_DROIT from NEZ,
// the matching INTER_*, and CENTRE at the given bridle lengths. On a
// degenerate (no real solution) trilateration for either side, the
// existing control point positions are left untouched and
// ErrTrilaterationDegenerate is returned; the caller is expected to
// retain its previous value.
func (geo *KiteGeometry) RebuildControlPoints(bridles BridleLengths) error {
	left, err := trilaterate(geo.Anchors[AnchorNez], geo.Anchors[AnchorInterGauche], geo.Anchors[AnchorCentre],
		bridles.Nez, bridles.Inter, bridles.Centre)
	if err != nil {
		return err
	}
	right, err := trilaterate(geo.Anchors[AnchorNez], geo.Anchors[AnchorInterDroit], geo.Anchors[AnchorCentre],
		bridles.Nez, bridles.Inter, bridles.Centre)
	if err != nil {
		return err
	}
	geo.Anchors[AnchorCtrlGauche] = left
	geo.Anchors[AnchorCtrlDroit] = right
	geo.Bridles = bridles
	return nil
}

// trilaterate solves for the point P such that ‖P-p1‖=r1, ‖P-p2‖=r2,
// ‖P-p3‖=r3, given three known points and three sphere radii. Standard
// three-sphere trilateration: build an orthonormal basis (ex, ey, ez)
// from p1,p2,p3, solve for the in-plane (x,y) coordinates of P relative
// to p1 along that basis, then pick between the two z roots by world-frame
// Z, not local-frame sign: ez = ex × ey is a pseudovector, so it flips
// handedness under the left/right mirror reflection that relates the
// CTRL_GAUCHE and CTRL_DROIT bridle triangles, and always taking the
// "positive local z" root put the two control points on inconsistent,
// non-mirrored sides of the sail. Taking the candidate with the larger
// world-frame Z (toward the pilot, away from the sail surface, per this
// package's anchor convention) is basis-independent and yields a
// mirror-symmetric CTRL_GAUCHE/CTRL_DROIT pair for a mirror-symmetric
// bridle layout, which keeping a symmetric kite on the centerline
// depends on.
func trilaterate(p1, p2, p3 *lin.V3, r1, r2, r3 float64) (*lin.V3, error) {
	ex := lin.NewV3().Sub(p2, p1)
	d := ex.Len()
	if d < lin.Epsilon {
		return nil, ErrTrilaterationDegenerate
	}
	ex.Unit()

	p1p3 := lin.NewV3().Sub(p3, p1)
	i := ex.Dot(p1p3)
	eyTmp := lin.NewV3().Scale(ex, i)
	eyTmp.Sub(p1p3, eyTmp)
	eyLen := eyTmp.Len()
	if eyLen < lin.Epsilon {
		return nil, ErrTrilaterationDegenerate
	}
	ey := eyTmp.Div(eyLen)
	j := ey.Dot(p1p3)

	ez := lin.NewV3().Cross(ex, ey)

	x := (r1*r1 - r2*r2 + d*d) / (2 * d)
	y := (r1*r1-r3*r3+i*i+j*j)/(2*j) - (i/j)*x

	zSqr := r1*r1 - x*x - y*y
	if zSqr < 0 {
		return nil, ErrTrilaterationDegenerate
	}
	z := math.Sqrt(zSqr)

	base := lin.NewV3().Set(p1)
	base.Add(base, lin.NewV3().Scale(ex, x))
	base.Add(base, lin.NewV3().Scale(ey, y))

	plus := lin.NewV3().Add(base, lin.NewV3().Scale(ez, z))
	minus := lin.NewV3().Sub(base, lin.NewV3().Scale(ez, z))
	if plus.Z >= minus.Z {
		return plus, nil
	}
	return minus, nil
}

// FacetNormal returns the body-frame outward unit normal of a facet,
// computed from its three vertex anchors via the standard
// (v1-v0) x (v2-v0) cross product.
func (geo *KiteGeometry) FacetNormal(f Facet) *lin.V3 {
	v0, v1, v2 := geo.Anchors[f.V0], geo.Anchors[f.V1], geo.Anchors[f.V2]
	e1 := lin.NewV3().Sub(v1, v0)
	e2 := lin.NewV3().Sub(v2, v0)
	n := lin.NewV3().Cross(e1, e2)
	return n.Unit()
}
