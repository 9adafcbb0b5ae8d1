package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/PChiesa/pi-system-monitoring-agent-sub001/internal/domain/tag"
	"github.com/PChiesa/pi-system-monitoring-agent-sub001/internal/generator"
	"github.com/PChiesa/pi-system-monitoring-agent-sub001/internal/logger"
	"github.com/PChiesa/pi-system-monitoring-agent-sub001/internal/scenario"
)

// statusResponse is the shape of GET /api/status.
type statusResponse struct {
	ActiveScenario    string `json:"activeScenario"`
	ScenarioElapsedMs int64  `json:"scenarioElapsedMs"`
	TagCount          int    `json:"tagCount"`
	SessionCount      int    `json:"sessionCount"`
	UptimeMs          int64  `json:"uptimeMs"`
}

// tagResponse is the shape of a tag in GET /api/tags.
type tagResponse struct {
	ID      string        `json:"id"`
	Name    string        `json:"name"`
	Path    string        `json:"path"`
	Unit    string        `json:"unit"`
	Type    tag.ValueType `json:"valueType"`
	Profile tag.Profile   `json:"profile"`
}

// valueResponse is the shape of GET /api/tags/{name}/value.
type valueResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Value     any       `json:"value"`
	Timestamp time.Time `json:"timestamp"`
	Good      bool      `json:"good"`
}

// scenarioResponse is the shape of a scenario in GET /api/scenarios.
type scenarioResponse struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	DurationMs  int64    `json:"durationMs"`
	Tags        []string `json:"tags"`
	Active      bool     `json:"active"`
}

// modifierRequest is one (tag, start, end, curve) tuple in a custom
// scenario creation request.
type modifierRequest struct {
	TagName    string  `json:"tagName"`
	StartValue any     `json:"startValue"`
	EndValue   any     `json:"endValue"`
	CurveType  string   `json:"curveType"`
	Threshold  *float64 `json:"threshold,omitempty"`
}

// scenarioRequest is the body of POST /api/scenarios.
type scenarioRequest struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	DurationMs  int64             `json:"durationMs"`
	Modifiers   []modifierRequest `json:"modifiers"`
}

// errorResponse is the shape of every error body.
type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	status := s.engine.Status()

	writeJSON(w, http.StatusOK, statusResponse{
		ActiveScenario:    status.ActiveScenario,
		ScenarioElapsedMs: status.Elapsed.Milliseconds(),
		TagCount:          s.catalog.Count(),
		SessionCount:      s.sessions.Count(),
		UptimeMs:          time.Since(s.startedAt).Milliseconds(),
	})
}

func (s *Server) handleListTags(w http.ResponseWriter, r *http.Request) {
	entries := s.catalog.List()

	tags := make([]tagResponse, 0, len(entries))
	for _, e := range entries {
		tags = append(tags, tagResponse{
			ID:      e.ID,
			Name:    e.Definition.Name,
			Path:    e.Path,
			Unit:    e.Definition.Unit,
			Type:    e.Definition.Type,
			Profile: e.Definition.Profile,
		})
	}

	writeJSON(w, http.StatusOK, tags)
}

func (s *Server) handleGetTag(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	entry := s.catalog.ByName(name)
	if entry == nil {
		writeError(w, http.StatusNotFound, "unknown tag")

		return
	}

	writeJSON(w, http.StatusOK, tagResponse{
		ID:      entry.ID,
		Name:    entry.Definition.Name,
		Path:    entry.Path,
		Unit:    entry.Definition.Unit,
		Type:    entry.Definition.Type,
		Profile: entry.Definition.Profile,
	})
}

func (s *Server) handleGetTagValue(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	entry := s.catalog.ByName(name)
	if entry == nil {
		writeError(w, http.StatusNotFound, "unknown tag")

		return
	}

	sample := s.values.CurrentValue(name)
	if sample == nil {
		writeError(w, http.StatusNotFound, "no value for tag")

		return
	}

	writeJSON(w, http.StatusOK, valueResponse{
		ID:        entry.ID,
		Name:      entry.Definition.Name,
		Value:     sample.Value,
		Timestamp: sample.Timestamp,
		Good:      sample.Good,
	})
}

func (s *Server) handleListScenarios(w http.ResponseWriter, r *http.Request) {
	active := s.engine.Active()

	list := s.registry.List()

	scenarios := make([]scenarioResponse, 0, len(list))
	for _, sc := range list {
		scenarios = append(scenarios, scenarioResponse{
			Name:        sc.Name,
			Description: sc.Description,
			DurationMs:  sc.Duration.Milliseconds(),
			Tags:        sc.Tags(),
			Active:      sc.Name == active.Name,
		})
	}

	writeJSON(w, http.StatusOK, scenarios)
}

func (s *Server) handleActivateScenario(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	sc := s.registry.Get(name)
	if sc == nil {
		writeError(w, http.StatusNotFound, "unknown scenario")

		return
	}

	if err := s.engine.Activate(r.Context(), sc); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())

		return
	}

	s.handleStatus(w, r)
}

func (s *Server) handleDeactivateScenario(w http.ResponseWriter, r *http.Request) {
	s.engine.Deactivate(r.Context())

	s.handleStatus(w, r)
}

func (s *Server) handleCreateScenario(w http.ResponseWriter, r *http.Request) {
	var request scenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")

		return
	}

	def := &scenario.Definition{
		Name:        request.Name,
		Description: request.Description,
		Duration:    time.Duration(request.DurationMs) * time.Millisecond,
		Modifiers:   make([]scenario.ModifierDefinition, 0, len(request.Modifiers)),
	}

	for _, m := range request.Modifiers {
		def.Modifiers = append(def.Modifiers, scenario.ModifierDefinition{
			TagName:    m.TagName,
			StartValue: m.StartValue,
			EndValue:   m.EndValue,
			CurveType:  generator.Curve(m.CurveType),
			Threshold:  m.Threshold,
		})
	}

	sc, err := s.registry.Add(def)
	if err != nil {
		if errors.Is(err, scenario.ErrInvalidDefinition) {
			writeError(w, http.StatusBadRequest, err.Error())

			return
		}

		writeError(w, http.StatusInternalServerError, err.Error())

		return
	}

	if err = s.persistScenario(r, def); err != nil {
		logger.ErrorKV(r.Context(), "persisting scenario definition",
			"scenario", def.Name,
			"error", err)
		writeError(w, http.StatusInternalServerError, "scenario registered but not persisted")

		return
	}

	writeJSON(w, http.StatusCreated, scenarioResponse{
		Name:        sc.Name,
		Description: sc.Description,
		DurationMs:  sc.Duration.Milliseconds(),
		Tags:        sc.Tags(),
	})
}

// persistScenario appends or replaces the definition in the persisted
// list and saves the whole document.
func (s *Server) persistScenario(r *http.Request, def *scenario.Definition) error {
	if s.store == nil {
		return nil
	}

	s.defsMu.Lock()
	defer s.defsMu.Unlock()

	replaced := false

	for i, existing := range s.defs {
		if existing.Name == def.Name {
			s.defs[i] = def
			replaced = true

			break
		}
	}

	if !replaced {
		s.defs = append(s.defs, def)
	}

	return s.store.SaveScenarios(r.Context(), s.defs)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	// The status line is already written, nothing useful to do on failure.
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}
