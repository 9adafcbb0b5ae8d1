package catalog

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/PChiesa/pi-system-monitoring-agent-sub001/internal/domain/tag"
)

// pathRoot prefixes every tag path in the simulated asset hierarchy.
const pathRoot = "Assets/Rig/BOP"

// ErrUnknownTag is returned when a lookup or edit names a tag that is not in the catalog.
var ErrUnknownTag = errors.New("unknown tag")

// Entry is one catalogued tag: its definition plus the identity the external
// world addresses it by. Subscribers use ID at the session boundary; the
// simulation core works with Name.
type Entry struct {
	// Definition is the tag's plain-data definition.
	Definition *tag.Definition
	// ID is the stable opaque external identifier for the tag.
	ID string
	// Path is the hierarchical asset path of the tag.
	Path string
}

// Clone returns a deep copy of the entry.
func (e *Entry) Clone() *Entry {
	if e == nil {
		return nil
	}

	return &Entry{
		Definition: e.Definition.Clone(),
		ID:         e.ID,
		Path:       e.Path,
	}
}

// Catalog is the registry of tag definitions with lookup by name and by
// external identifier. It is safe for concurrent use; administrative edits
// may run while sessions resolve subscriptions.
type Catalog struct {
	// byName indexes entries by tag name.
	byName map[string]*Entry
	// byID indexes entries by external identifier.
	byID map[string]*Entry
	// mu protects both indexes.
	mu sync.RWMutex
}

// New builds a catalog from the provided definitions. Every definition is
// validated; identifiers are deterministic across restarts so subscribers
// keep working after a process bounce.
func New(definitions []*tag.Definition) (*Catalog, error) {
	c := &Catalog{
		byName: make(map[string]*Entry, len(definitions)),
		byID:   make(map[string]*Entry, len(definitions)),
	}

	for _, d := range definitions {
		if err := c.Upsert(d); err != nil {
			return nil, err
		}
	}

	return c, nil
}

// Upsert validates the definition and adds or replaces its catalog entry.
// The external identifier and path of an existing tag never change.
func (c *Catalog) Upsert(d *tag.Definition) error {
	if d == nil {
		return fmt.Errorf("%w: nil definition", tag.ErrInvalidDefinition)
	}

	cloned := d.Clone()
	if err := cloned.Validate(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if existing, ok := c.byName[cloned.Name]; ok {
		existing.Definition = cloned

		return nil
	}

	entry := &Entry{
		Definition: cloned,
		ID:         externalID(cloned.Name),
		Path:       tagPath(cloned.Name),
	}

	c.byName[cloned.Name] = entry
	c.byID[entry.ID] = entry

	return nil
}

// Remove deletes a tag from the catalog.
func (c *Catalog) Remove(name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.byName[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTag, name)
	}

	delete(c.byName, name)
	delete(c.byID, entry.ID)

	return nil
}

// ByName returns the entry for a tag name, or nil when unknown.
func (c *Catalog) ByName(name string) *Entry {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.byName[name].Clone()
}

// ByID returns the entry for an external identifier, or nil when unknown.
func (c *Catalog) ByID(id string) *Entry {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.byID[id].Clone()
}

// List returns all entries sorted by tag name.
func (c *Catalog) List() []*Entry {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entries := make([]*Entry, 0, len(c.byName))
	for _, e := range c.byName {
		entries = append(entries, e.Clone())
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Definition.Name < entries[j].Definition.Name
	})

	return entries
}

// Names returns all tag names sorted.
func (c *Catalog) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.byName))
	for n := range c.byName {
		names = append(names, n)
	}

	sort.Strings(names)

	return names
}

// Count returns the number of catalogued tags.
func (c *Catalog) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.byName)
}

// externalID derives the stable opaque identifier for a tag name.
// UUIDv5 over a fixed namespace keeps identifiers stable across restarts
// without persisting an identity table.
func externalID(name string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte("pi-simulator/"+name)).String()
}

// tagPath derives the hierarchical asset path from a dotted tag name.
func tagPath(name string) string {
	return pathRoot + "/" + strings.ReplaceAll(name, ".", "/")
}
