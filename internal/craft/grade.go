// Package craft is the per-item crafting state machine: place a wrapper,
// moisten it, spread the moisture, add filling and seal, graded once on the
// release of the spreading gesture.
package craft

import "dumplingtale/internal/story"

type Grade string

const (
	Ungraded  Grade = ""
	Perfect   Grade = "perfect"
	Good      Grade = "good" // reserved; no step assigns it
	TooLittle Grade = "too_little"
	TooMuch   Grade = "too_much"
)

// Failed reports whether the grade counts as a mistake.
func (g Grade) Failed() bool {
	return g == TooLittle || g == TooMuch
}

// Tolerance is the spreading speed (coverage per second) and the inclusive
// coverage window graded Perfect.
type Tolerance struct {
	Rate float64
	Min  float64
	Max  float64
}

// DefaultTolerance is the Normal preset.
var DefaultTolerance = Tolerance{Rate: 0.1, Min: 0.25, Max: 0.50}

// Preset maps a difficulty tier to its tolerance. Unknown tiers use Normal.
func Preset(d story.Difficulty) Tolerance {
	switch d {
	case story.Easy:
		return Tolerance{Rate: 0.08, Min: 0.20, Max: 0.60}
	case story.Hard:
		return Tolerance{Rate: 0.15, Min: 0.30, Max: 0.45}
	default:
		return DefaultTolerance
	}
}

// GradeCoverage classifies coverage. Both window edges grade Perfect.
func GradeCoverage(coverage float64, tol Tolerance) Grade {
	switch {
	case coverage < tol.Min:
		return TooLittle
	case coverage > tol.Max:
		return TooMuch
	default:
		return Perfect
	}
}
