package generator

import (
	"time"
)

// Curve enumerates the interpolation shapes a modifier can apply between its
// start and end values over the lifetime of a scenario.
type Curve string

const (
	// CurveLinear interpolates linearly: start + (end-start)*progress.
	CurveLinear Curve = "linear"
	// CurveStep holds start until progress reaches the threshold, then end.
	CurveStep Curve = "step"
	// CurveExponential interpolates with squared progress:
	// start + (end-start)*progress². For end < start the curve overshoots
	// toward start early on; that is the documented behaviour, not a bug.
	CurveExponential Curve = "exponential"
)

// Modifier overrides a tag's baseline value while a scenario is active.
// It is a plain tagged variant rather than a closure so modifiers can cross
// ownership boundaries safely and serialize for persistence. The pure
// Evaluate function turns it into a value for a given elapsed time.
type Modifier struct {
	// CurveType is the interpolation shape.
	CurveType Curve `yaml:"curve" json:"curveType"`
	// StartValue is the value at progress 0. Numeric curves require a number;
	// step also accepts bool or string for discrete tags.
	StartValue any `yaml:"start_value" json:"startValue"`
	// EndValue is the value at progress 1.
	EndValue any `yaml:"end_value" json:"endValue"`
	// Threshold is the progress fraction at which a step curve flips.
	// Zero means 1.0 (flip only at full progress).
	Threshold float64 `yaml:"threshold,omitempty" json:"threshold,omitempty"`
	// Duration is the scenario duration used to derive progress.
	// Zero duration evaluates at full progress.
	Duration time.Duration `yaml:"-" json:"-"`
}

// Progress converts elapsed time into the bounded progress fraction.
// It is monotone in elapsed time and clamped to [0, 1].
func (m *Modifier) Progress(elapsed time.Duration) float64 {
	if m.Duration <= 0 {
		return 1
	}

	p := float64(elapsed) / float64(m.Duration)
	if p < 0 {
		return 0
	}

	if p > 1 {
		return 1
	}

	return p
}

// Evaluate computes the override value for the given elapsed time since
// scenario start. For numeric curves both endpoint values must be numbers;
// otherwise the fallback value is returned unchanged.
func (m *Modifier) Evaluate(fallback any, elapsed time.Duration) any {
	progress := m.Progress(elapsed)

	if m.CurveType == CurveStep {
		threshold := m.Threshold
		if threshold <= 0 {
			threshold = 1
		}

		if progress >= threshold {
			return m.EndValue
		}

		return m.StartValue
	}

	start, okStart := asFloat(m.StartValue)
	end, okEnd := asFloat(m.EndValue)
	if !okStart || !okEnd {
		return fallback
	}

	switch m.CurveType {
	case CurveLinear:
		return start + (end-start)*progress
	case CurveExponential:
		return start + (end-start)*progress*progress
	default:
		return fallback
	}
}

// Numeric reports whether both endpoint values are numbers. Interpolating
// curves need numeric endpoints to produce anything; a step between
// non-numeric endpoints is fine for discrete tags.
func (m *Modifier) Numeric() bool {
	_, okStart := asFloat(m.StartValue)
	_, okEnd := asFloat(m.EndValue)

	return okStart && okEnd
}

// asFloat normalizes the numeric types YAML and JSON decoding produce.
func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}
