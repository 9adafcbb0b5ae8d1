package scenario

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/PChiesa/pi-system-monitoring-agent-sub001/internal/generator"
)

// stepAt gives threshold literals an address in definition fixtures.
func stepAt(v float64) *float64 {
	return &v
}

// TestFromDefinitionValid builds a scenario and checks its declared tag set.
func TestFromDefinitionValid(t *testing.T) {
	t.Parallel()

	s, err := FromDefinition(&Definition{
		Name:     "test",
		Duration: time.Minute,
		Modifiers: []ModifierDefinition{
			{TagName: "A", StartValue: 1.0, EndValue: 2.0, CurveType: generator.CurveLinear},
			{TagName: "B", StartValue: "on", EndValue: "off", CurveType: generator.CurveStep, Threshold: stepAt(0.5)},
		},
	})
	require.NoError(t, err)
	require.Equal(t, []string{"A", "B"}, s.Tags())
	require.Equal(t, time.Minute, s.Duration)
	require.False(t, s.Baseline())
	require.InEpsilon(t, 0.5, s.Modifiers[1].Modifier.Threshold, 1e-9)
}

// TestFromDefinitionDefaultThreshold asserts a step without a threshold
// flips only at full progress.
func TestFromDefinitionDefaultThreshold(t *testing.T) {
	t.Parallel()

	s, err := FromDefinition(&Definition{
		Name:     "test",
		Duration: time.Minute,
		Modifiers: []ModifierDefinition{
			{TagName: "A", StartValue: "on", EndValue: "off", CurveType: generator.CurveStep},
		},
	})
	require.NoError(t, err)
	require.InEpsilon(t, 1.0, s.Modifiers[0].Modifier.Threshold, 1e-9)
}

// TestFromDefinitionRejectsMalformed covers every rejection path of the factory.
func TestFromDefinitionRejectsMalformed(t *testing.T) {
	t.Parallel()

	linear := func(tagName string, start, end any) ModifierDefinition {
		return ModifierDefinition{TagName: tagName, StartValue: start, EndValue: end, CurveType: generator.CurveLinear}
	}

	cases := map[string]*Definition{
		"nil definition":    nil,
		"missing name":      {Modifiers: []ModifierDefinition{linear("A", 1.0, 2.0)}},
		"negative duration": {Name: "x", Duration: -time.Second, Modifiers: []ModifierDefinition{linear("A", 1.0, 2.0)}},
		"no modifiers":      {Name: "x"},
		"empty tag":         {Name: "x", Modifiers: []ModifierDefinition{linear("", 1.0, 2.0)}},
		"non-numeric linear": {Name: "x", Modifiers: []ModifierDefinition{
			linear("A", "low", "high"),
		}},
		"unknown curve": {Name: "x", Modifiers: []ModifierDefinition{
			{TagName: "A", StartValue: 1.0, EndValue: 2.0, CurveType: "spline"},
		}},
		"threshold above one": {Name: "x", Modifiers: []ModifierDefinition{
			{TagName: "A", StartValue: 1.0, EndValue: 2.0, CurveType: generator.CurveStep, Threshold: stepAt(1.5)},
		}},
		"threshold of zero": {Name: "x", Modifiers: []ModifierDefinition{
			{TagName: "A", StartValue: 1.0, EndValue: 2.0, CurveType: generator.CurveStep, Threshold: stepAt(0)},
		}},
		"negative threshold": {Name: "x", Modifiers: []ModifierDefinition{
			{TagName: "A", StartValue: 1.0, EndValue: 2.0, CurveType: generator.CurveStep, Threshold: stepAt(-0.5)},
		}},
	}

	for name, def := range cases {
		_, err := FromDefinition(def)
		require.ErrorIs(t, err, ErrInvalidDefinition, name)
	}
}

// TestBuiltinsBuild ensures every shipped definition passes the factory.
func TestBuiltinsBuild(t *testing.T) {
	t.Parallel()

	for _, def := range Builtins() {
		s, err := FromDefinition(def)
		require.NoError(t, err, def.Name)
		require.NotEmpty(t, s.Tags())
	}
}
