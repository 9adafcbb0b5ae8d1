package tag

import (
	"errors"
	"fmt"
	"time"
)

// ValueType enumerates the kinds of values a tag can hold.
type ValueType string

const (
	// TypeNumber marks a continuously varying numeric tag.
	TypeNumber ValueType = "number"
	// TypeBoolean marks a two-state tag.
	TypeBoolean ValueType = "boolean"
	// TypeString marks a tag holding one of an enumerated set of strings.
	TypeString ValueType = "string"
)

var (
	// ErrInvalidDefinition is returned when a tag definition fails structural validation.
	ErrInvalidDefinition = errors.New("invalid tag definition")
)

// Profile describes how a tag's value evolves over time.
// Numeric tags wander around Nominal with Gaussian noise of standard
// deviation Sigma, clamped to [Min, Max] when bounds are present and rounded
// to the nearest whole unit when Discrete is set. Boolean and string tags
// hold a discrete state instead and ignore the numeric fields.
type Profile struct {
	// Nominal is the baseline value for a numeric tag.
	Nominal float64 `yaml:"nominal" json:"nominal"`
	// Sigma is the noise standard deviation. Zero means noiseless.
	Sigma float64 `yaml:"sigma" json:"sigma"`
	// Min is the optional lower clamp bound.
	Min *float64 `yaml:"min,omitempty" json:"min,omitempty"`
	// Max is the optional upper clamp bound.
	Max *float64 `yaml:"max,omitempty" json:"max,omitempty"`
	// Discrete rounds numeric values to the nearest whole unit (positions, counts).
	Discrete bool `yaml:"discrete,omitempty" json:"discrete,omitempty"`
	// BooleanDefault is the initial state of a boolean tag.
	BooleanDefault bool `yaml:"boolean_default,omitempty" json:"booleanDefault,omitempty"`
	// StringDefault is the initial state of a string tag.
	StringDefault string `yaml:"string_default,omitempty" json:"stringDefault,omitempty"`
	// StringOptions is the enumerated option set for a string tag.
	StringOptions []string `yaml:"string_options,omitempty" json:"stringOptions,omitempty"`
}

// Definition is the plain-data shape of a tag as loaded from and persisted
// to the definition store.
type Definition struct {
	// Name is the unique tag name, e.g. "BOP.ACC.PRESS.SYS".
	Name string `yaml:"name" json:"name"`
	// Unit is the engineering unit, e.g. "psi".
	Unit string `yaml:"unit" json:"unit"`
	// Type is the value type. Empty means number.
	Type ValueType `yaml:"type,omitempty" json:"valueType,omitempty"`
	// Profile describes the value behaviour.
	Profile Profile `yaml:",inline" json:"profile"`
}

// Sample is one computed value of a tag at a point in time. It is the single
// read-path source of truth for every subscriber; the generator stores a
// fresh Sample per tag per tick and readers receive copies, never live
// references.
type Sample struct {
	// Value is the computed value: float64, bool or string depending on the tag type.
	Value any `json:"value"`
	// Timestamp is when the value was computed.
	Timestamp time.Time `json:"timestamp"`
	// Good reports sensor health. Reserved for future failure modelling;
	// always true in the current design.
	Good bool `json:"good"`
}

// Validate checks the structural invariants of a definition.
// Definitions are re-validated defensively even when loaded from a trusted store.
func (d *Definition) Validate() error {
	if d.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidDefinition)
	}

	if d.Type == "" {
		d.Type = TypeNumber
	}

	switch d.Type {
	case TypeNumber, TypeBoolean, TypeString:
	default:
		return fmt.Errorf("%w: tag %q has unknown type %q", ErrInvalidDefinition, d.Name, d.Type)
	}

	p := &d.Profile
	if p.Sigma < 0 {
		return fmt.Errorf("%w: tag %q has negative sigma", ErrInvalidDefinition, d.Name)
	}

	if p.Min != nil && p.Max != nil && *p.Min > *p.Max {
		return fmt.Errorf("%w: tag %q has min above max", ErrInvalidDefinition, d.Name)
	}

	if d.Type == TypeNumber {
		if p.Min != nil && p.Nominal < *p.Min {
			return fmt.Errorf("%w: tag %q nominal below min", ErrInvalidDefinition, d.Name)
		}

		if p.Max != nil && p.Nominal > *p.Max {
			return fmt.Errorf("%w: tag %q nominal above max", ErrInvalidDefinition, d.Name)
		}
	}

	if d.Type == TypeString && len(p.StringOptions) > 0 && !contains(p.StringOptions, p.StringDefault) {
		return fmt.Errorf("%w: tag %q default %q not among options", ErrInvalidDefinition, d.Name, p.StringDefault)
	}

	return nil
}

// InitialValue returns the value a tag holds before any tick has run.
func (d *Definition) InitialValue() any {
	switch d.Type {
	case TypeBoolean:
		return d.Profile.BooleanDefault
	case TypeString:
		return d.Profile.StringDefault
	default:
		return d.Profile.Nominal
	}
}

// Numeric reports whether the tag carries numeric values.
func (d *Definition) Numeric() bool {
	return d.Type == "" || d.Type == TypeNumber
}

// Clone returns a deep copy of the definition.
func (d *Definition) Clone() *Definition {
	if d == nil {
		return nil
	}

	cloned := *d

	if d.Profile.Min != nil {
		v := *d.Profile.Min
		cloned.Profile.Min = &v
	}

	if d.Profile.Max != nil {
		v := *d.Profile.Max
		cloned.Profile.Max = &v
	}

	if d.Profile.StringOptions != nil {
		cloned.Profile.StringOptions = append([]string(nil), d.Profile.StringOptions...)
	}

	return &cloned
}

// contains reports whether the option set includes the value.
func contains(options []string, value string) bool {
	for _, o := range options {
		if o == value {
			return true
		}
	}

	return false
}
