// Copyright © 2024 Galvanized Logic Inc.

// kitesim-bench drives the kite physics core headless from a YAML
// scenario file and prints periodic telemetry: pose, apparent wind, and
// per-line tension. It is the thin external collaborator the core's
// interface was designed for; rendering and interactive input live
// elsewhere.
//
// Usage:
//
//	kitesim-bench -scenario testdata/scenario.yaml
package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/moyamatthieu/kitesim/internal/telemetry"
	"github.com/moyamatthieu/kitesim/kitesim"
	"github.com/moyamatthieu/kitesim/physics"
)

func main() {
	scenarioPath := flag.String("scenario", "testdata/scenario.yaml", "scenario YAML file")
	flag.Parse()

	s, err := LoadScenario(*scenarioPath)
	if err != nil {
		log.Fatalf("kitesim-bench: %v", err)
	}
	if err := runScenario(s, os.Stdout); err != nil {
		log.Fatalf("kitesim-bench: %v", err)
	}
}

// runScenario executes the scenario's drive schedule against a fresh core,
// writing telemetry lines to out.
func runScenario(s *Scenario, out *os.File) error {
	sink := telemetry.NewSlogSink(slog.New(slog.NewTextHandler(os.Stderr, nil)))
	core, err := kitesim.Initialize(s.Config(), sink)
	if err != nil {
		return err
	}
	if s.Bridle != nil {
		lengths := kitesim.BridleLengths{Nez: s.Bridle.Nez, Inter: s.Bridle.Inter, Centre: s.Bridle.Centre}
		if err := core.SetBridleLengths(lengths); err != nil {
			return err
		}
	}

	dt := 1.0 / s.Run.RateHz
	reportEvery := int(s.Run.RateHz / s.Run.ReportHz)
	if reportEvery < 1 {
		reportEvery = 1
	}

	fmt.Fprintf(out, "# %s: %.1fs at %.0f Hz\n", s.Name, s.Run.Seconds, s.Run.RateHz)

	elapsed := 0.0
	next := 0
	for tick := 0; elapsed < s.Run.Seconds; tick++ {
		for next < len(s.Bar) && elapsed >= s.Bar[next].AtSeconds {
			core.SetBarRotation(s.Bar[next].RotationRad)
			next++
		}

		core.Update(dt)
		elapsed += dt

		if tick%reportEvery == 0 {
			report(out, elapsed, core)
		}
	}
	report(out, elapsed, core)
	return nil
}

func report(out *os.File, t float64, core *kitesim.Core) {
	pose := core.Pose()
	wind := core.ApparentWind()
	left := core.Line(physics.LineGauche)
	right := core.Line(physics.LineDroit)
	fmt.Fprintf(out, "t=%6.2fs pos=(%7.2f,%6.2f,%7.2f) wind=(%5.2f,%5.2f,%5.2f) lineL=%6.2fm/%5.1fN lineR=%6.2fm/%5.1fN\n",
		t, pose.Position[0], pose.Position[1], pose.Position[2],
		wind[0], wind[1], wind[2],
		left.Distance, left.Tension, right.Distance, right.Tension)
}
