package definitions

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/PChiesa/pi-system-monitoring-agent-sub001/internal/config"
	"github.com/PChiesa/pi-system-monitoring-agent-sub001/internal/domain/tag"
	"github.com/PChiesa/pi-system-monitoring-agent-sub001/internal/generator"
	"github.com/PChiesa/pi-system-monitoring-agent-sub001/internal/scenario"
)

// Repository defines persistence operations for tag and scenario definitions.
type Repository interface {
	LoadTags(ctx context.Context) ([]*tag.Definition, error)
	SaveTags(ctx context.Context, defs []*tag.Definition) error
	LoadScenarios(ctx context.Context) ([]*scenario.Definition, error)
	SaveScenarios(ctx context.Context, defs []*scenario.Definition) error
}

// ErrNotFound is returned when a definition file does not exist yet.
var ErrNotFound = errors.New("definitions not found")

// FileRepository persists definitions to YAML files on disk. It is an
// explicitly constructed store handle: callers create it with the two file
// paths and pass it where needed, never through package-level state.
type FileRepository struct {
	// tagsPath is the filesystem location of the tag definition file.
	tagsPath string
	// scenariosPath is the filesystem location of the scenario definition file.
	scenariosPath string
	// mu protects concurrent access to both files.
	mu sync.Mutex
}

// tagsDocument is the on-disk shape of the tag definition file.
type tagsDocument struct {
	// Tags holds all tag definitions.
	Tags []*tag.Definition `yaml:"tags"`
}

// scenariosDocument is the on-disk shape of the scenario definition file.
type scenariosDocument struct {
	// Scenarios holds all scenario records.
	Scenarios []*scenarioRecord `yaml:"scenarios"`
}

// scenarioRecord is the on-disk shape of one scenario definition.
// Durations are stored as integral milliseconds so hand-edited files carry
// plain numbers instead of Go duration strings.
type scenarioRecord struct {
	Name        string           `yaml:"name"`
	Description string           `yaml:"description,omitempty"`
	DurationMs  int64            `yaml:"duration_ms"`
	Modifiers   []modifierRecord `yaml:"modifiers"`
}

// modifierRecord is the on-disk shape of one modifier tuple.
type modifierRecord struct {
	TagName    string          `yaml:"tag"`
	StartValue any             `yaml:"start_value"`
	EndValue   any             `yaml:"end_value"`
	CurveType  generator.Curve `yaml:"curve"`
	Threshold  *float64        `yaml:"threshold,omitempty"`
}

// newScenarioRecord converts a definition to its on-disk shape.
func newScenarioRecord(def *scenario.Definition) *scenarioRecord {
	rec := &scenarioRecord{
		Name:        def.Name,
		Description: def.Description,
		DurationMs:  def.Duration.Milliseconds(),
		Modifiers:   make([]modifierRecord, 0, len(def.Modifiers)),
	}

	for _, md := range def.Modifiers {
		rec.Modifiers = append(rec.Modifiers, modifierRecord{
			TagName:    md.TagName,
			StartValue: md.StartValue,
			EndValue:   md.EndValue,
			CurveType:  md.CurveType,
			Threshold:  md.Threshold,
		})
	}

	return rec
}

// definition converts the record back to the in-memory shape.
func (rec *scenarioRecord) definition() *scenario.Definition {
	def := &scenario.Definition{
		Name:        rec.Name,
		Description: rec.Description,
		Duration:    time.Duration(rec.DurationMs) * time.Millisecond,
		Modifiers:   make([]scenario.ModifierDefinition, 0, len(rec.Modifiers)),
	}

	for _, md := range rec.Modifiers {
		def.Modifiers = append(def.Modifiers, scenario.ModifierDefinition{
			TagName:    md.TagName,
			StartValue: md.StartValue,
			EndValue:   md.EndValue,
			CurveType:  md.CurveType,
			Threshold:  md.Threshold,
		})
	}

	return def
}

// NewFileRepository creates a repository reading and writing YAML at the
// provided paths.
func NewFileRepository(tagsPath, scenariosPath string) *FileRepository {
	return &FileRepository{
		tagsPath:      filepath.Clean(tagsPath),
		scenariosPath: filepath.Clean(scenariosPath),
	}
}

// LoadTags reads tag definitions from disk. Every definition is re-validated
// structurally even though the store is trusted.
func (r *FileRepository) LoadTags(_ context.Context) ([]*tag.Definition, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var doc tagsDocument
	if err := r.readYAML(r.tagsPath, &doc); err != nil {
		return nil, err
	}

	for _, d := range doc.Tags {
		if d == nil {
			return nil, fmt.Errorf("decode tag definitions: %w: empty entry", tag.ErrInvalidDefinition)
		}

		if err := d.Validate(); err != nil {
			return nil, fmt.Errorf("decode tag definitions: %w", err)
		}
	}

	return doc.Tags, nil
}

// SaveTags writes tag definitions to disk.
func (r *FileRepository) SaveTags(_ context.Context, defs []*tag.Definition) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.writeYAML(r.tagsPath, &tagsDocument{Tags: defs})
}

// LoadScenarios reads scenario definitions from disk, re-validating each
// through the factory.
func (r *FileRepository) LoadScenarios(_ context.Context) ([]*scenario.Definition, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var doc scenariosDocument
	if err := r.readYAML(r.scenariosPath, &doc); err != nil {
		return nil, err
	}

	defs := make([]*scenario.Definition, 0, len(doc.Scenarios))

	for _, rec := range doc.Scenarios {
		if rec == nil {
			return nil, fmt.Errorf("decode scenario definitions: %w: empty entry", scenario.ErrInvalidDefinition)
		}

		def := rec.definition()
		if _, err := scenario.FromDefinition(def); err != nil {
			return nil, fmt.Errorf("decode scenario definitions: %w", err)
		}

		defs = append(defs, def)
	}

	return defs, nil
}

// SaveScenarios writes scenario definitions to disk.
func (r *FileRepository) SaveScenarios(_ context.Context, defs []*scenario.Definition) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc := &scenariosDocument{Scenarios: make([]*scenarioRecord, 0, len(defs))}
	for _, def := range defs {
		doc.Scenarios = append(doc.Scenarios, newScenarioRecord(def))
	}

	return r.writeYAML(r.scenariosPath, doc)
}

// readYAML decodes one definition file. Caller holds the lock.
func (r *FileRepository) readYAML(path string, out any) error {
	contents, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ErrNotFound
		}

		return fmt.Errorf("read %s: %w", path, err)
	}

	if err = yaml.Unmarshal(contents, out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}

	return nil
}

// writeYAML encodes one definition file. Caller holds the lock.
func (r *FileRepository) writeYAML(path string, doc any) error {
	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}

	if err = os.WriteFile(path, data, config.DefaultFilePermissions); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	return nil
}
