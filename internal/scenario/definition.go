package scenario

import (
	"errors"
	"fmt"
	"time"

	"github.com/PChiesa/pi-system-monitoring-agent-sub001/internal/generator"
)

// ErrInvalidDefinition is returned when a declarative scenario definition is
// malformed. Such scenarios are rejected at creation and never registered.
var ErrInvalidDefinition = errors.New("invalid scenario definition")

// ModifierDefinition is one declarative (tag, start, end, curve) tuple.
type ModifierDefinition struct {
	// TagName is the overridden tag.
	TagName string
	// StartValue is the override at progress 0.
	StartValue any
	// EndValue is the override at progress 1.
	EndValue any
	// CurveType is linear, step or exponential.
	CurveType generator.Curve
	// Threshold is the step flip point as a progress fraction in (0, 1].
	// Nil means flip only at full progress.
	Threshold *float64
}

// Definition is the plain-data shape of a scenario. The definition store
// and the HTTP API each own their serialized encoding of it; both exchange
// durations in milliseconds.
type Definition struct {
	// Name uniquely identifies the scenario.
	Name string
	// Description is the operator-facing summary.
	Description string
	// Duration is how long the scenario runs before auto-revert.
	Duration time.Duration
	// Modifiers are the declarative per-tag override tuples.
	Modifiers []ModifierDefinition
}

// FromDefinition builds a Scenario from a declarative definition — the
// data-driven alternative to hand-written scenarios. Malformed tuples are
// rejected with ErrInvalidDefinition and the scenario is never built.
func FromDefinition(def *Definition) (*Scenario, error) {
	if def == nil {
		return nil, fmt.Errorf("%w: nil definition", ErrInvalidDefinition)
	}

	if def.Name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidDefinition)
	}

	if def.Duration < 0 {
		return nil, fmt.Errorf("%w: scenario %q has negative duration", ErrInvalidDefinition, def.Name)
	}

	if len(def.Modifiers) == 0 {
		return nil, fmt.Errorf("%w: scenario %q declares no modifiers", ErrInvalidDefinition, def.Name)
	}

	modifiers := make([]TagModifier, 0, len(def.Modifiers))

	for i, md := range def.Modifiers {
		if md.TagName == "" {
			return nil, fmt.Errorf("%w: scenario %q modifier %d has no tag", ErrInvalidDefinition, def.Name, i)
		}

		m := generator.Modifier{
			CurveType:  md.CurveType,
			StartValue: md.StartValue,
			EndValue:   md.EndValue,
		}

		switch md.CurveType {
		case generator.CurveLinear, generator.CurveExponential:
			if !m.Numeric() {
				return nil, fmt.Errorf("%w: scenario %q modifier for %s: curve %s requires numeric values",
					ErrInvalidDefinition, def.Name, md.TagName, md.CurveType)
			}
		case generator.CurveStep:
			// An omitted threshold flips only at full progress. An explicit
			// one must be a usable progress fraction; zero is rejected rather
			// than silently meaning either extreme.
			m.Threshold = 1
			if md.Threshold != nil {
				if *md.Threshold <= 0 || *md.Threshold > 1 {
					return nil, fmt.Errorf("%w: scenario %q modifier for %s: threshold out of (0,1]",
						ErrInvalidDefinition, def.Name, md.TagName)
				}

				m.Threshold = *md.Threshold
			}
		default:
			return nil, fmt.Errorf("%w: scenario %q modifier for %s: unknown curve %q",
				ErrInvalidDefinition, def.Name, md.TagName, md.CurveType)
		}

		modifiers = append(modifiers, TagModifier{Tag: md.TagName, Modifier: m})
	}

	return &Scenario{
		Name:        def.Name,
		Description: def.Description,
		Duration:    def.Duration,
		Modifiers:   modifiers,
	}, nil
}
