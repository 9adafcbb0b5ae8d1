package httpapi

import (
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/PChiesa/pi-system-monitoring-agent-sub001/internal/catalog"
	"github.com/PChiesa/pi-system-monitoring-agent-sub001/internal/logger"
	"github.com/PChiesa/pi-system-monitoring-agent-sub001/internal/metrics"
	"github.com/PChiesa/pi-system-monitoring-agent-sub001/internal/repository/definitions"
	"github.com/PChiesa/pi-system-monitoring-agent-sub001/internal/scenario"
	"github.com/PChiesa/pi-system-monitoring-agent-sub001/internal/stream"
)

// Options carries the collaborators the API serves.
type Options struct {
	// Catalog is the tag registry.
	Catalog *catalog.Catalog
	// Values serves the latest sample per tag.
	Values stream.ValueReader
	// Engine owns the active scenario.
	Engine *scenario.Engine
	// Registry holds the scenarios available for activation.
	Registry *scenario.Registry
	// Sessions is the streaming session manager behind /stream.
	Sessions *stream.Manager
	// Store persists custom scenario definitions.
	Store definitions.Repository
	// Metrics serves /metrics. Nil falls back to the default handler.
	Metrics *metrics.Metrics
	// ScenarioDefinitions seeds the persisted definition list.
	ScenarioDefinitions []*scenario.Definition
}

// Server is the administrative and streaming HTTP surface of the simulator.
type Server struct {
	catalog  *catalog.Catalog
	values   stream.ValueReader
	engine   *scenario.Engine
	registry *scenario.Registry
	sessions *stream.Manager
	store    definitions.Repository
	metrics  *metrics.Metrics

	startedAt time.Time

	// defs mirrors the persisted scenario definition list so custom
	// scenarios can be appended and saved as one document.
	defs   []*scenario.Definition
	defsMu sync.Mutex
}

// NewServer creates the API server.
func NewServer(opts Options) *Server {
	return &Server{
		catalog:   opts.Catalog,
		values:    opts.Values,
		engine:    opts.Engine,
		registry:  opts.Registry,
		sessions:  opts.Sessions,
		store:     opts.Store,
		metrics:   opts.Metrics,
		startedAt: time.Now(),
		defs:      opts.ScenarioDefinitions,
	}
}

// Router builds the route table.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Get("/status", s.handleStatus)
		r.Get("/tags", s.handleListTags)
		r.Get("/tags/{name}", s.handleGetTag)
		r.Get("/tags/{name}/value", s.handleGetTagValue)
		r.Get("/scenarios", s.handleListScenarios)
		r.Post("/scenarios", s.handleCreateScenario)
		r.Post("/scenarios/{name}/activate", s.handleActivateScenario)
		r.Post("/scenarios/deactivate", s.handleDeactivateScenario)
	})

	r.Get("/stream", s.sessions.ServeHTTP)
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())

	return r
}

// requestLogger logs one line per request after it completes.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		logger.DebugKV(r.Context(), "http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start))
	})
}
