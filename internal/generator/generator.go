package generator

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/PChiesa/pi-system-monitoring-agent-sub001/internal/catalog"
	"github.com/PChiesa/pi-system-monitoring-agent-sub001/internal/domain/tag"
	"github.com/PChiesa/pi-system-monitoring-agent-sub001/internal/logger"
)

// RandSource supplies Gaussian noise draws. *rand.Rand satisfies it; tests
// inject a deterministic source for reproducible values.
type RandSource interface {
	NormFloat64() float64
}

// installedModifier pairs a modifier with the scenario start time it was
// installed under, so Tick can derive elapsed time without consulting the
// scenario engine.
type installedModifier struct {
	// modifier is the override to evaluate each tick.
	modifier *Modifier
	// startedAt is when the owning scenario was activated.
	startedAt time.Time
}

// Generator owns one live value per catalogued tag and recomputes all of
// them on each tick of the shared clock. Ticks are the single writer;
// CurrentValue readers receive copies and never observe a tag mid-computation.
type Generator struct {
	// catalog supplies the tag definitions to simulate.
	catalog *catalog.Catalog
	// rng draws Gaussian noise. Used only from Tick, which is serialized.
	rng RandSource
	// samples holds the last computed value per tag.
	samples map[string]tag.Sample
	// state holds the current discrete state of boolean/string tags.
	state map[string]any
	// modifiers holds the active override per tag. At most one per tag;
	// installing replaces, clearing removes.
	modifiers map[string]installedModifier
	// mu guards samples, state and modifiers. Tick takes the write lock;
	// readers take the read lock and copy out.
	mu sync.RWMutex
}

// New creates a generator over the catalog, seeded with every tag's initial
// value. A nil random source gets an entropy-seeded default.
func New(cat *catalog.Catalog, rng RandSource) *Generator {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano())) //nolint:gosec // Simulation noise, not cryptography.
	}

	g := &Generator{
		catalog:   cat,
		rng:       rng,
		samples:   make(map[string]tag.Sample),
		state:     make(map[string]any),
		modifiers: make(map[string]installedModifier),
	}

	now := time.Now()
	for _, entry := range cat.List() {
		def := entry.Definition
		g.samples[def.Name] = tag.Sample{Value: def.InitialValue(), Timestamp: now, Good: true}

		if !def.Numeric() {
			g.state[def.Name] = def.InitialValue()
		}
	}

	return g
}

// Tick recomputes every tag's sample for the given instant. It is meant to
// be driven by one shared clock; overlapping calls are serialized by the
// generator's lock. A failure on one tag never aborts the rest.
func (g *Generator) Tick(ctx context.Context, now time.Time) {
	names := g.catalog.Names()

	g.mu.Lock()
	defer g.mu.Unlock()

	for _, name := range names {
		entry := g.catalog.ByName(name)
		if entry == nil {
			// Removed between listing and lookup.
			continue
		}

		value, err := g.computeValue(entry.Definition, now)
		if err != nil {
			logger.WarnKV(ctx, "Tag computation failed, keeping previous value", "tag", name, "error", err)

			continue
		}

		g.samples[name] = tag.Sample{Value: value, Timestamp: now, Good: true}
	}
}

// computeValue derives one tag's new value. Caller holds the write lock.
func (g *Generator) computeValue(def *tag.Definition, now time.Time) (any, error) {
	installed, hasModifier := g.modifiers[def.Name]

	if !def.Numeric() {
		// Discrete tags hold their state; only a modifier or an
		// administrative edit moves them.
		current, ok := g.state[def.Name]
		if !ok {
			current = def.InitialValue()
		}

		if hasModifier {
			current = installed.modifier.Evaluate(current, now.Sub(installed.startedAt))
		}

		g.state[def.Name] = current

		return current, nil
	}

	base := def.Profile.Nominal
	if hasModifier {
		evaluated := installed.modifier.Evaluate(def.Profile.Nominal, now.Sub(installed.startedAt))

		v, ok := asFloat(evaluated)
		if !ok {
			return nil, fmt.Errorf("modifier for %s produced non-numeric value %v", def.Name, evaluated)
		}

		base = v
	}

	if def.Profile.Sigma > 0 {
		base += g.rng.NormFloat64() * def.Profile.Sigma
	}

	if def.Profile.Min != nil && base < *def.Profile.Min {
		base = *def.Profile.Min
	}

	if def.Profile.Max != nil && base > *def.Profile.Max {
		base = *def.Profile.Max
	}

	if def.Profile.Discrete {
		base = math.Round(base)
	}

	return base, nil
}

// SetModifier installs or replaces the override for a single tag.
// startedAt is the activation time of the owning scenario.
func (g *Generator) SetModifier(name string, m *Modifier, startedAt time.Time) error {
	entry := g.catalog.ByName(name)
	if entry == nil {
		return fmt.Errorf("set modifier: %w: %s", catalog.ErrUnknownTag, name)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	g.modifiers[name] = installedModifier{modifier: m, startedAt: startedAt}

	return nil
}

// ClearModifier removes the override for a tag, reverting it to its
// profile-driven baseline on the next tick. Clearing an already-clear or
// unknown tag is a no-op.
func (g *Generator) ClearModifier(name string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	delete(g.modifiers, name)
}

// HasModifier reports whether an override is installed for the tag.
func (g *Generator) HasModifier(name string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()

	_, ok := g.modifiers[name]

	return ok
}

// CurrentValue returns a copy of the last computed sample for the tag, or
// nil for unknown tags. It never triggers computation.
func (g *Generator) CurrentValue(name string) *tag.Sample {
	g.mu.RLock()
	defer g.mu.RUnlock()

	sample, ok := g.samples[name]
	if !ok {
		return nil
	}

	return &sample
}

// SetDiscreteState applies an administrative edit to a boolean or string
// tag. The new state is visible immediately and from the next tick on.
func (g *Generator) SetDiscreteState(name string, value any) error {
	entry := g.catalog.ByName(name)
	if entry == nil {
		return fmt.Errorf("set state: %w: %s", catalog.ErrUnknownTag, name)
	}

	def := entry.Definition

	switch def.Type {
	case tag.TypeBoolean:
		if _, ok := value.(bool); !ok {
			return fmt.Errorf("%w: tag %s requires a boolean state", tag.ErrInvalidDefinition, name)
		}
	case tag.TypeString:
		s, ok := value.(string)
		if !ok {
			return fmt.Errorf("%w: tag %s requires a string state", tag.ErrInvalidDefinition, name)
		}

		if len(def.Profile.StringOptions) > 0 && !stringOption(def.Profile.StringOptions, s) {
			return fmt.Errorf("%w: %q is not an option for tag %s", tag.ErrInvalidDefinition, s, name)
		}
	default:
		return fmt.Errorf("%w: tag %s is numeric", tag.ErrInvalidDefinition, name)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	g.state[name] = value
	g.samples[name] = tag.Sample{Value: value, Timestamp: time.Now(), Good: true}

	return nil
}

// stringOption reports whether the option set includes the value.
func stringOption(options []string, value string) bool {
	for _, o := range options {
		if o == value {
			return true
		}
	}

	return false
}
