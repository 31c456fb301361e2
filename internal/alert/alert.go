// Package alert evaluates threshold rules against a telemetry sample.
package alert

import (
	"math"

	"tiltwatch/internal/models"
)

// Default thresholds.
const (
	DefaultUVThreshold    = 8.0
	DefaultSmokeThreshold = 500.0
	DefaultTiltThreshold  = 45.0 // degrees, either direction
)

// Thresholds holds the alert boundaries for a sample.
type Thresholds struct {
	UV    float64
	Smoke float64
	Tilt  float64
}

// DefaultThresholds returns the documented default boundaries.
func DefaultThresholds() Thresholds {
	return Thresholds{
		UV:    DefaultUVThreshold,
		Smoke: DefaultSmokeThreshold,
		Tilt:  DefaultTiltThreshold,
	}
}

// Evaluator maps a sample to an alert verdict. Stateless; safe for
// concurrent use.
type Evaluator struct {
	t Thresholds
}

func NewEvaluator(t Thresholds) *Evaluator {
	return &Evaluator{t: t}
}

// Evaluate returns true when any reading crosses its threshold:
// uvi > UV, smoke > Smoke, or |angle_x| > Tilt. A nil reading makes its
// clause false rather than failing.
func (e *Evaluator) Evaluate(s models.Sample) bool {
	return above(s.UVIndex, e.t.UV) ||
		above(s.Smoke, e.t.Smoke) ||
		tilted(s.AngleX, e.t.Tilt)
}

func above(v *float64, threshold float64) bool {
	return v != nil && *v > threshold
}

func tilted(v *float64, threshold float64) bool {
	return v != nil && math.Abs(*v) > threshold
}
