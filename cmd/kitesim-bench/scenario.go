// Copyright © 2024 Galvanized Logic Inc.

package main

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/moyamatthieu/kitesim/kitesim"
)

// Scenario is the on-disk session description consumed by the bench
// harness: kite mass properties, line and wind configuration, pilot and
// kite starting positions, and the drive schedule. It is the YAML face of
// the kitesim.Config record; the core itself never reads files.
type Scenario struct {
	Name string `yaml:"name"`

	Kite struct {
		Mass    float64 `yaml:"mass_kg"`
		Inertia float64 `yaml:"inertia_kgm2"`
	} `yaml:"kite"`

	Line struct {
		Length       float64 `yaml:"length_m"`
		Stiffness    float64 `yaml:"stiffness_n_per_m"`
		PreTension   float64 `yaml:"pre_tension_n"`
		MaxTension   float64 `yaml:"max_tension_n"`
		DampingCoeff float64 `yaml:"damping_coeff"`
	} `yaml:"line"`

	Wind struct {
		SpeedKmh      *float64 `yaml:"speed_kmh"`
		DirectionDeg  *float64 `yaml:"direction_deg"`
		TurbulencePct *float64 `yaml:"turbulence_pct"`
	} `yaml:"wind"`

	Bridle *struct {
		Nez    float64 `yaml:"nez_m"`
		Inter  float64 `yaml:"inter_m"`
		Centre float64 `yaml:"centre_m"`
	} `yaml:"bridle"`

	Pilot        [3]float64 `yaml:"pilot_position"`
	BarHalfWidth float64    `yaml:"bar_half_width_m"`
	KiteStart    [3]float64 `yaml:"kite_start"`

	Run struct {
		Seconds  float64 `yaml:"seconds"`
		RateHz   float64 `yaml:"rate_hz"`
		ReportHz float64 `yaml:"report_hz"`
	} `yaml:"run"`

	// Optional piecewise-constant bar schedule, applied in order.
	Bar []BarCommand `yaml:"bar"`
}

// BarCommand applies a bar rotation from a given simulation time onward.
type BarCommand struct {
	AtSeconds   float64 `yaml:"at_s"`
	RotationRad float64 `yaml:"rotation_rad"`
}

// LoadScenario reads and validates a scenario file.
func LoadScenario(path string) (*Scenario, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var s Scenario
	if err := yaml.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", path, err)
	}
	if err := s.validate(); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", path, err)
	}
	return &s, nil
}

func (s *Scenario) validate() error {
	if s.Kite.Mass <= 0 {
		return errors.New("kite.mass_kg must be positive")
	}
	if s.Kite.Inertia <= 0 {
		return errors.New("kite.inertia_kgm2 must be positive")
	}
	if s.Line.Length <= 0 {
		return errors.New("line.length_m must be positive")
	}
	if s.Run.Seconds <= 0 {
		return errors.New("run.seconds must be positive")
	}
	if s.Run.RateHz <= 0 {
		s.Run.RateHz = 60
	}
	if s.Run.ReportHz <= 0 {
		s.Run.ReportHz = 2
	}
	return nil
}

// Config maps the scenario onto the core's closed configuration record.
func (s *Scenario) Config() kitesim.Config {
	cfg := kitesim.Config{
		Mass:    s.Kite.Mass,
		Inertia: s.Kite.Inertia,
		Line: kitesim.LineConfig{
			Length:       s.Line.Length,
			Stiffness:    s.Line.Stiffness,
			PreTension:   s.Line.PreTension,
			MaxTension:   s.Line.MaxTension,
			DampingCoeff: s.Line.DampingCoeff,
		},
		Wind: kitesim.WindSettings{
			SpeedKmh:      s.Wind.SpeedKmh,
			DirectionDeg:  s.Wind.DirectionDeg,
			TurbulencePct: s.Wind.TurbulencePct,
		},
		BarHalfWidth:  s.BarHalfWidth,
		PilotPosition: s.Pilot,
		InitialPose:   kitesim.InitialPose{Position: s.KiteStart},
	}
	if cfg.BarHalfWidth == 0 {
		cfg.BarHalfWidth = 0.75
	}
	return cfg
}
