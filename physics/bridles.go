// Copyright © 2024 Galvanized Logic Inc.

package physics

import "github.com/moyamatthieu/kitesim/math/lin"

// Bridle identifies one of the six internal unilateral constraints:
// an anchor-name pair plus a target length drawn from
// {nez, inter, centre}.
type Bridle struct {
	From, To string
	Length   func(BridleLengths) float64
}

// bridleTemplate lists the six bridles, left side first. Both
// endpoints of every bridle belong to the kite's own body frame.
var bridleTemplate = []Bridle{
	{From: AnchorNez, To: AnchorCtrlGauche, Length: func(b BridleLengths) float64 { return b.Nez }},
	{From: AnchorInterGauche, To: AnchorCtrlGauche, Length: func(b BridleLengths) float64 { return b.Inter }},
	{From: AnchorCentre, To: AnchorCtrlGauche, Length: func(b BridleLengths) float64 { return b.Centre }},
	{From: AnchorNez, To: AnchorCtrlDroit, Length: func(b BridleLengths) float64 { return b.Nez }},
	{From: AnchorInterDroit, To: AnchorCtrlDroit, Length: func(b BridleLengths) float64 { return b.Inter }},
	{From: AnchorCentre, To: AnchorCtrlDroit, Length: func(b BridleLengths) float64 { return b.Centre }},
}

// BridleState is the per-tick telemetry for one bridle: current length
// and indicative tension, computed the same way as line tension using
// one shared stiffness/damping model for all six strands.
type BridleState struct {
	Distance float64
	Taut     bool
	Tension  float64
	prevDistance float64
	hasPrev      bool
}

// Bridles holds the six bridle definitions and their per-tick telemetry
// state, plus the tension model shared by all six strands.
type Bridles struct {
	Defs    []Bridle
	State   [6]BridleState
	Tension BridleTensionModel
}

// BridleTensionModel is the {stiffness, damping, pre_tension, max_tension}
// tuple used for bridle indicative-tension telemetry, mirroring
// LineConfig's tension fields.
type BridleTensionModel struct {
	Stiffness    float64
	PreTension   float64
	MaxTension   float64
	DampingCoeff float64
}

// NewBridles creates the six-strand bridle set with the given tension
// model.
func NewBridles(model BridleTensionModel) *Bridles {
	return &Bridles{Defs: bridleTemplate, Tension: model}
}

// UpdateTelemetry computes distance/taut/tension for every bridle given
// the current body, mirroring Lines.UpdateTelemetry.
func (br *Bridles) UpdateTelemetry(body *KiteBody, dt float64) {
	for i, def := range br.Defs {
		from, _ := body.AnchorWorld(def.From)
		to, _ := body.AnchorWorld(def.To)
		target := def.Length(body.Geo.Bridles)

		state := &br.State[i]
		d := from.Dist(to)
		state.Distance = d

		if d <= target {
			state.Taut = false
			state.Tension = 0
			state.prevDistance = d
			state.hasPrev = true
			continue
		}

		state.Taut = true
		var vRadial float64
		if state.hasPrev && dt > 0 {
			vRadial = (d - state.prevDistance) / dt
		}
		tension := br.Tension.PreTension + br.Tension.Stiffness*(d-target) + br.Tension.DampingCoeff*vRadial
		state.Tension = lin.Clamp(tension, 0, br.Tension.MaxTension)
		state.prevDistance = d
		state.hasPrev = true
	}
}
