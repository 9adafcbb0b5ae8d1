package scenario

import (
	"errors"
	"fmt"
	"time"

	"github.com/PChiesa/pi-system-monitoring-agent-sub001/internal/generator"
)

// ModifierTarget is the slice of the generator a scenario needs: installing
// and clearing value overrides. Scenarios never hold generator state.
type ModifierTarget interface {
	SetModifier(name string, m *generator.Modifier, startedAt time.Time) error
	ClearModifier(name string)
}

// TagModifier binds one modifier to the tag it overrides.
type TagModifier struct {
	// Tag is the name of the overridden tag.
	Tag string
	// Modifier is the override installed while the scenario is active.
	Modifier generator.Modifier
}

// Scenario is a named, time-bounded perturbation of one or more tags.
// Activate installs one modifier per declared tag; Deactivate clears exactly
// those tags. A zero Duration marks an indefinite baseline scenario with no
// auto-revert.
type Scenario struct {
	// Name uniquely identifies the scenario.
	Name string
	// Description is the operator-facing summary.
	Description string
	// Duration is how long the scenario runs before auto-revert. Zero means indefinite.
	Duration time.Duration
	// Modifiers are the per-tag overrides the scenario installs.
	Modifiers []TagModifier
}

// Tags returns the declared set of tags the scenario may modify.
func (s *Scenario) Tags() []string {
	tags := make([]string, 0, len(s.Modifiers))
	for _, m := range s.Modifiers {
		tags = append(tags, m.Tag)
	}

	return tags
}

// Activate installs the scenario's modifiers on the target. A failed install
// for one tag never prevents installing the rest; all failures are joined
// into the returned error, which is recoverable — the scenario still counts
// as active for the tags that did install.
func (s *Scenario) Activate(target ModifierTarget, startedAt time.Time) error {
	var errs []error

	for _, tm := range s.Modifiers {
		m := tm.Modifier
		m.Duration = s.Duration

		if err := target.SetModifier(tm.Tag, &m, startedAt); err != nil {
			errs = append(errs, fmt.Errorf("install modifier for %s: %w", tm.Tag, err))
		}
	}

	return errors.Join(errs...)
}

// Deactivate clears every declared tag unconditionally. It is safe and
// idempotent even when activation partially failed: clearing a tag that
// never had a modifier is a no-op.
func (s *Scenario) Deactivate(target ModifierTarget) {
	for _, tm := range s.Modifiers {
		target.ClearModifier(tm.Tag)
	}
}

// Baseline reports whether the scenario is an indefinite baseline with no
// overrides to install.
func (s *Scenario) Baseline() bool {
	return s.Duration == 0 && len(s.Modifiers) == 0
}

// Normal returns the baseline scenario: no modifiers, indefinite.
func Normal() *Scenario {
	return &Scenario{
		Name:        "normal",
		Description: "Baseline operation, profile-driven values only",
	}
}
