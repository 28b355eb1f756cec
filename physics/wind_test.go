// Copyright © 2024 Galvanized Logic Inc.

package physics

import (
	"math"
	"testing"

	"github.com/moyamatthieu/kitesim/math/lin"
)

func TestApparentWindNoTurbulenceMatchesBaseMinusKiteVelocity(t *testing.T) {
	cfg := WindConfig{Speed: 10, DirectionRad: 0, Turbulence: 0}
	w := NewWindField(cfg)

	kiteVel := lin.NewV3S(1, 0, 0)
	got := w.ApparentWind(kiteVel, 1.0/60.0)

	want := lin.NewV3S(0-1, 0, -10-0)
	if !got.Aeq(want) {
		t.Errorf("got (%.6f,%.6f,%.6f) want (%.6f,%.6f,%.6f)", got.X, got.Y, got.Z, want.X, want.Y, want.Z)
	}
}

func TestApparentWindZeroSpeedIsJustMinusKiteVelocity(t *testing.T) {
	w := NewWindField(WindConfig{Speed: 0, DirectionRad: 0, Turbulence: 0})
	kiteVel := lin.NewV3S(3, -2, 1)
	got := w.ApparentWind(kiteVel, 1.0/60.0)
	want := lin.NewV3().Neg(kiteVel)
	if !got.Aeq(want) {
		t.Errorf("got (%.6f,%.6f,%.6f) want (%.6f,%.6f,%.6f)", got.X, got.Y, got.Z, want.X, want.Y, want.Z)
	}
}

func TestApparentWindAdvancesPhaseMonotonically(t *testing.T) {
	w := NewWindField(WindConfig{Speed: 5, Turbulence: 0.2})
	zero := lin.NewV3()
	if w.Phase() != 0 {
		t.Fatalf("expected zero initial phase, got %.9f", w.Phase())
	}
	w.ApparentWind(zero, 0.1)
	w.ApparentWind(zero, 0.1)
	if !lin.Aeq(w.Phase(), 0.2) {
		t.Errorf("expected phase 0.2 after two 0.1s steps, got %.9f", w.Phase())
	}
}

// TestApparentWindDeterministicReplay: identical dt sequences from a
// freshly constructed field produce identical output, since turbulence
// is a deterministic function of the accumulated phase.
func TestApparentWindDeterministicReplay(t *testing.T) {
	cfg := WindConfig{Speed: 8, DirectionRad: lin.Rad(30), Turbulence: 0.4}
	dts := []float64{1.0 / 60, 1.0 / 60, 1.0 / 45, 1.0 / 30, 1.0 / 60}
	zero := lin.NewV3()

	run := func() []lin.V3 {
		w := NewWindField(cfg)
		out := make([]lin.V3, 0, len(dts))
		for _, dt := range dts {
			v := w.ApparentWind(zero, dt)
			out = append(out, *v)
		}
		return out
	}

	a, b := run(), run()
	for i := range a {
		if !a[i].Aeq(&b[i]) {
			t.Fatalf("step %d diverged: run1=(%.9f,%.9f,%.9f) run2=(%.9f,%.9f,%.9f)",
				i, a[i].X, a[i].Y, a[i].Z, b[i].X, b[i].Y, b[i].Z)
		}
	}
}

func TestApparentWindTurbulenceNeverInvertsBaseSign(t *testing.T) {
	cfg := WindConfig{Speed: 20, DirectionRad: 0, Turbulence: 1.0}
	w := NewWindField(cfg)
	zero := lin.NewV3()
	for i := 0; i < 200; i++ {
		v := w.ApparentWind(zero, 1.0/60)
		if v.Z > 0 {
			t.Fatalf("turbulent apparent wind Z flipped sign against a pure tailwind at step %d: %.6f", i, v.Z)
		}
	}
}

func TestSetConfigAppliesOnNextTick(t *testing.T) {
	w := NewWindField(WindConfig{Speed: 1})
	w.SetConfig(WindConfig{Speed: 99})
	if w.Config.Speed != 99 {
		t.Error("expected SetConfig to replace the configuration immediately")
	}
}

func TestApparentWindUsesSinCosConvention(t *testing.T) {
	w := NewWindField(WindConfig{Speed: 1, DirectionRad: lin.HalfPi})
	zero := lin.NewV3()
	v := w.ApparentWind(zero, 0)
	if !lin.Aeq(v.X, math.Sin(lin.HalfPi)) || !lin.Aeq(v.Z, -math.Cos(lin.HalfPi)) {
		t.Errorf("unexpected direction convention, got (%.6f,_,%.6f)", v.X, v.Z)
	}
}
