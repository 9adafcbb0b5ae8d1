package scenario

import (
	"fmt"
	"sort"
	"sync"

	"github.com/PChiesa/pi-system-monitoring-agent-sub001/internal/catalog"
	"github.com/PChiesa/pi-system-monitoring-agent-sub001/internal/generator"
)

// Registry holds the scenarios available for activation, keyed by name.
// The baseline scenario is always present and cannot be replaced.
type Registry struct {
	// catalog is used to type-check modifier tuples against their tags.
	catalog *catalog.Catalog
	// scenarios indexes registered scenarios by name.
	scenarios map[string]*Scenario
	// mu protects the index.
	mu sync.RWMutex
}

// NewRegistry creates a registry containing only the baseline scenario.
func NewRegistry(cat *catalog.Catalog) *Registry {
	normal := Normal()

	return &Registry{
		catalog: cat,
		scenarios: map[string]*Scenario{
			normal.Name: normal,
		},
	}
}

// Add builds a scenario from its definition, validates it against the tag
// catalogue and registers it. Registering an existing name replaces it;
// the baseline cannot be replaced. Unknown tags are allowed — their installs
// fail per-tag at activation time, which is recoverable — but a modifier on
// a known non-numeric tag must use the step curve.
func (r *Registry) Add(def *Definition) (*Scenario, error) {
	s, err := FromDefinition(def)
	if err != nil {
		return nil, err
	}

	if s.Name == Normal().Name {
		return nil, fmt.Errorf("%w: %q is reserved for the baseline", ErrInvalidDefinition, s.Name)
	}

	if r.catalog != nil {
		for _, tm := range s.Modifiers {
			entry := r.catalog.ByName(tm.Tag)
			if entry == nil {
				continue
			}

			if !entry.Definition.Numeric() && tm.Modifier.CurveType != generator.CurveStep {
				return nil, fmt.Errorf("%w: scenario %q: tag %s is %s, only step modifiers apply",
					ErrInvalidDefinition, s.Name, tm.Tag, entry.Definition.Type)
			}
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.scenarios[s.Name] = s

	return s, nil
}

// Get returns the scenario with the given name, or nil when unknown.
func (r *Registry) Get(name string) *Scenario {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.scenarios[name]
}

// List returns all registered scenarios sorted by name, baseline first.
func (r *Registry) List() []*Scenario {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]*Scenario, 0, len(r.scenarios))
	for _, s := range r.scenarios {
		list = append(list, s)
	}

	sort.Slice(list, func(i, j int) bool {
		if list[i].Baseline() != list[j].Baseline() {
			return list[i].Baseline()
		}

		return list[i].Name < list[j].Name
	})

	return list
}
