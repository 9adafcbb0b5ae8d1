package generator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestLinearCurveEndpoints verifies start at progress 0 and end at progress 1.
func TestLinearCurveEndpoints(t *testing.T) {
	t.Parallel()

	m := &Modifier{
		CurveType:  CurveLinear,
		StartValue: 3000.0,
		EndValue:   1100.0,
		Duration:   480 * time.Second,
	}

	require.InEpsilon(t, 3000.0, m.Evaluate(0.0, 0), 1e-9)
	require.InEpsilon(t, 1100.0, m.Evaluate(0.0, 480*time.Second), 1e-9)

	// Elapsed past the duration stays pinned at the end value.
	require.InEpsilon(t, 1100.0, m.Evaluate(0.0, time.Hour), 1e-9)
}

// TestLinearCurveMidpoint checks the accumulator-decay arithmetic:
// 3000 - 1900*0.5 at half duration.
func TestLinearCurveMidpoint(t *testing.T) {
	t.Parallel()

	m := &Modifier{
		CurveType:  CurveLinear,
		StartValue: 3000.0,
		EndValue:   1100.0,
		Duration:   480 * time.Second,
	}

	require.InEpsilon(t, 2050.0, m.Evaluate(0.0, 240*time.Second), 1e-9)
}

// TestStepCurve verifies the default flip at full progress and a custom threshold.
func TestStepCurve(t *testing.T) {
	t.Parallel()

	m := &Modifier{
		CurveType:  CurveStep,
		StartValue: "Active",
		EndValue:   "Failed",
		Duration:   100 * time.Second,
	}

	require.Equal(t, "Active", m.Evaluate(nil, 0))
	require.Equal(t, "Active", m.Evaluate(nil, 99*time.Second))
	require.Equal(t, "Failed", m.Evaluate(nil, 100*time.Second))

	// Pod-failure style early flip at 83% of duration.
	m.Threshold = 0.83
	require.Equal(t, "Active", m.Evaluate(nil, 82*time.Second))
	require.Equal(t, "Failed", m.Evaluate(nil, 83*time.Second))
}

// TestExponentialCurve checks squared-progress interpolation.
func TestExponentialCurve(t *testing.T) {
	t.Parallel()

	m := &Modifier{
		CurveType:  CurveExponential,
		StartValue: 0.0,
		EndValue:   100.0,
		Duration:   10 * time.Second,
	}

	require.InDelta(t, 0.0, m.Evaluate(0.0, 0), 1e-9)
	require.InEpsilon(t, 25.0, m.Evaluate(0.0, 5*time.Second), 1e-9)
	require.InEpsilon(t, 100.0, m.Evaluate(0.0, 10*time.Second), 1e-9)
}

// TestEvaluateFallback asserts non-numeric endpoints on numeric curves leave
// the fallback value untouched.
func TestEvaluateFallback(t *testing.T) {
	t.Parallel()

	m := &Modifier{
		CurveType:  CurveLinear,
		StartValue: "not-a-number",
		EndValue:   10.0,
		Duration:   time.Second,
	}

	require.InEpsilon(t, 42.0, m.Evaluate(42.0, time.Second), 1e-9)
}

// TestNumeric asserts endpoint typing is checked for every curve, not just
// step: a linear ramp between strings must report non-numeric so scenario
// validation can reject it instead of letting it evaluate to the fallback
// forever.
func TestNumeric(t *testing.T) {
	t.Parallel()

	cases := map[string]struct {
		modifier Modifier
		want     bool
	}{
		"linear numbers":      {Modifier{CurveType: CurveLinear, StartValue: 1.0, EndValue: 2.0}, true},
		"linear strings":      {Modifier{CurveType: CurveLinear, StartValue: "low", EndValue: "high"}, false},
		"linear mixed":        {Modifier{CurveType: CurveLinear, StartValue: 1.0, EndValue: "high"}, false},
		"exponential strings": {Modifier{CurveType: CurveExponential, StartValue: "a", EndValue: "b"}, false},
		"step numbers":        {Modifier{CurveType: CurveStep, StartValue: 0, EndValue: 1}, true},
		"step strings":        {Modifier{CurveType: CurveStep, StartValue: "Active", EndValue: "Failed"}, false},
	}

	for name, tc := range cases {
		require.Equal(t, tc.want, tc.modifier.Numeric(), name)
	}
}

// TestZeroDurationEvaluatesAtFullProgress documents behaviour for
// indefinite scenarios carrying modifiers.
func TestZeroDurationEvaluatesAtFullProgress(t *testing.T) {
	t.Parallel()

	m := &Modifier{CurveType: CurveLinear, StartValue: 1.0, EndValue: 2.0}
	require.InEpsilon(t, 2.0, m.Evaluate(0.0, 0), 1e-9)
}
