// Copyright © 2024 Galvanized Logic Inc.

package physics

import "github.com/moyamatthieu/kitesim/math/lin"

// worldUp is the world vertical axis used for the pilot's yaw input.
var worldUp = lin.NewV3S(0, 1, 0)

// ControlBar derives the two pilot-handle world positions: the bar
// follows the line geometry (the axis from CTRL_GAUCHE to CTRL_DROIT),
// then the pilot's yaw input rotates that axis about the world vertical
// before the two handle positions are placed at ±half_width from the
// bar's world position.
type ControlBar struct {
	Position  *lin.V3
	HalfWidth float64
	YawMax    float64 // clamp on phi, radians (pi/3 by default).

	yaw float64
}

// NewControlBar creates a control bar at the given world position with
// the given half-width between the two handles.
func NewControlBar(position *lin.V3, halfWidth, yawMax float64) *ControlBar {
	return &ControlBar{Position: position, HalfWidth: halfWidth, YawMax: yawMax}
}

// SetYaw clamps and stores the pilot's bar-rotation input.
func (b *ControlBar) SetYaw(phi float64) {
	b.yaw = lin.Clamp(phi, -b.YawMax, b.YawMax)
}

// Yaw returns the currently stored bar-rotation input.
func (b *ControlBar) Yaw() float64 { return b.yaw }

// Handles computes the two pilot-handle world positions from the
// current CTRL anchor world positions. The returned array is indexed by
// LineSide.
func (b *ControlBar) Handles(ctrlGauche, ctrlDroit *lin.V3) [2]*lin.V3 {
	axis := lin.NewV3().Sub(ctrlDroit, ctrlGauche)
	if axis.Len() < lin.Epsilon {
		axis.Set(lin.NewV3S(1, 0, 0))
	} else {
		axis.Unit()
	}

	// Negative angle about the vertical: a positive input swings the left
	// handle toward the kite, tightening the right line, which steers the
	// kite toward the pilot's right (+X when facing downwind).
	if b.yaw != 0 {
		rot := lin.NewQ().SetAa(worldUp.X, worldUp.Y, worldUp.Z, -b.yaw)
		axis = lin.NewV3().MultQ(axis, rot)
	}

	var handles [2]*lin.V3
	handles[LineGauche] = lin.NewV3().Sub(b.Position, lin.NewV3().Scale(axis, b.HalfWidth))
	handles[LineDroit] = lin.NewV3().Add(b.Position, lin.NewV3().Scale(axis, b.HalfWidth))
	return handles
}
