package simulator

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	httpapi "github.com/PChiesa/pi-system-monitoring-agent-sub001/internal/api/http"
	"github.com/PChiesa/pi-system-monitoring-agent-sub001/internal/catalog"
	"github.com/PChiesa/pi-system-monitoring-agent-sub001/internal/config"
	"github.com/PChiesa/pi-system-monitoring-agent-sub001/internal/domain/tag"
	"github.com/PChiesa/pi-system-monitoring-agent-sub001/internal/generator"
	"github.com/PChiesa/pi-system-monitoring-agent-sub001/internal/logger"
	"github.com/PChiesa/pi-system-monitoring-agent-sub001/internal/metrics"
	"github.com/PChiesa/pi-system-monitoring-agent-sub001/internal/repository/definitions"
	"github.com/PChiesa/pi-system-monitoring-agent-sub001/internal/scenario"
	"github.com/PChiesa/pi-system-monitoring-agent-sub001/internal/stream"
)

// shutdownTimeout bounds the graceful HTTP shutdown on exit.
const shutdownTimeout = 10 * time.Second

// service wires the simulator core together: catalog, generator, scenario
// engine, streaming sessions and the shared tick loop.
type service struct {
	// settings holds the validated runtime configuration.
	settings *config.Config
	// repo persists tag and scenario definitions.
	repo definitions.Repository
	// catalog is the tag registry.
	catalog *catalog.Catalog
	// generator owns the live values.
	generator *generator.Generator
	// engine owns the active scenario.
	engine *scenario.Engine
	// registry holds the activatable scenarios.
	registry *scenario.Registry
	// sessions manages the streaming subscribers.
	sessions *stream.Manager
	// metrics is the Prometheus instrumentation.
	metrics *metrics.Metrics
	// scenarioDefs is the persisted scenario definition list.
	scenarioDefs []*scenario.Definition
}

// newService builds the simulator from the definition store. A missing
// tags or scenarios file is seeded with the built-in set and written back,
// so a first run leaves editable definition files behind.
func newService(ctx context.Context, repo definitions.Repository, settings *config.Config) (*service, error) {
	tags, err := loadOrSeedTags(ctx, repo)
	if err != nil {
		return nil, err
	}

	cat, err := catalog.New(tags)
	if err != nil {
		return nil, fmt.Errorf("build catalog: %w", err)
	}

	gen := generator.New(cat, nil)
	engine := scenario.NewEngine(gen)
	registry := scenario.NewRegistry(cat)

	defs, err := loadOrSeedScenarios(ctx, repo)
	if err != nil {
		return nil, err
	}

	for _, def := range defs {
		if _, err = registry.Add(def); err != nil {
			logger.WarnKV(ctx, "Skipping invalid scenario definition",
				"scenario", def.Name,
				"error", err)
		}
	}

	m := metrics.New()

	sessions := stream.NewManager(cat, gen, m, stream.Settings{
		UpdatePeriod:    settings.Stream.UpdatePeriod,
		HeartbeatPeriod: settings.Stream.HeartbeatPeriod,
	})

	return &service{
		settings:     settings,
		repo:         repo,
		catalog:      cat,
		generator:    gen,
		engine:       engine,
		registry:     registry,
		sessions:     sessions,
		metrics:      m,
		scenarioDefs: defs,
	}, nil
}

// loadOrSeedTags reads tag definitions from the store, seeding the default
// catalogue on first run.
func loadOrSeedTags(ctx context.Context, repo definitions.Repository) ([]*tag.Definition, error) {
	tags, err := repo.LoadTags(ctx)

	switch {
	case err == nil:
		return tags, nil
	case errors.Is(err, definitions.ErrNotFound):
		tags = catalog.DefaultDefinitions()
		if err = repo.SaveTags(ctx, tags); err != nil {
			return nil, fmt.Errorf("seed tag definitions: %w", err)
		}

		logger.Info(ctx, "Seeded default tag definitions")

		return tags, nil
	default:
		return nil, fmt.Errorf("load tag definitions: %w", err)
	}
}

// loadOrSeedScenarios reads scenario definitions from the store, seeding
// the built-in scenarios on first run.
func loadOrSeedScenarios(ctx context.Context, repo definitions.Repository) ([]*scenario.Definition, error) {
	defs, err := repo.LoadScenarios(ctx)

	switch {
	case err == nil:
		return defs, nil
	case errors.Is(err, definitions.ErrNotFound):
		defs = scenario.Builtins()
		if err = repo.SaveScenarios(ctx, defs); err != nil {
			return nil, fmt.Errorf("seed scenario definitions: %w", err)
		}

		logger.Info(ctx, "Seeded built-in scenario definitions")

		return defs, nil
	default:
		return nil, fmt.Errorf("load scenario definitions: %w", err)
	}
}

// run starts the tick loop and the HTTP server, blocking until the context
// is canceled or the server fails.
func (s *service) run(ctx context.Context, listenAddress string) error {
	api := httpapi.NewServer(httpapi.Options{
		Catalog:             s.catalog,
		Values:              s.generator,
		Engine:              s.engine,
		Registry:            s.registry,
		Sessions:            s.sessions,
		Store:               s.repo,
		Metrics:             s.metrics,
		ScenarioDefinitions: s.scenarioDefs,
	})

	server := &http.Server{
		Addr:              listenAddress,
		Handler:           api.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	tickDone := make(chan struct{})
	go s.tickLoop(ctx, tickDone)

	serveErr := make(chan error, 1)

	go func() {
		serveErr <- server.ListenAndServe()
	}()

	logger.InfoKV(ctx, "Simulator listening",
		"listen_address", listenAddress,
		"tick_period", s.settings.TickPeriod,
		"tags", s.catalog.Count())

	var runErr error

	select {
	case <-ctx.Done():
		logger.Info(ctx, "Shutting down")
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			runErr = fmt.Errorf("serve http: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.WarnKV(ctx, "HTTP shutdown incomplete", "error", err)
	}

	s.sessions.CloseAll()
	<-tickDone

	logger.Info(ctx, "Simulator stopped")

	return runErr
}

// tickLoop drives the shared clock: each tick recomputes every tag value,
// then checks the active scenario for expiry. Ticks never overlap.
func (s *service) tickLoop(ctx context.Context, done chan<- struct{}) {
	defer close(done)

	s.metrics.SetActiveScenario(s.engine.Active().Name)

	ticker := time.NewTicker(s.settings.TickPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			start := time.Now()

			s.generator.Tick(ctx, now)
			s.engine.CheckExpiry(ctx, now)

			s.metrics.ObserveTick(time.Since(start))
			s.metrics.SetActiveScenario(s.engine.Active().Name)
		}
	}
}
