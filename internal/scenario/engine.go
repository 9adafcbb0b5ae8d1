package scenario

import (
	"context"
	"sync"
	"time"

	"github.com/PChiesa/pi-system-monitoring-agent-sub001/internal/logger"
)

// Status is a snapshot of the engine state for introspection.
type Status struct {
	// ActiveScenario is the name of the currently active scenario.
	ActiveScenario string
	// Elapsed is the time spent in the current scenario.
	Elapsed time.Duration
	// Duration is the active scenario's configured duration. Zero means indefinite.
	Duration time.Duration
}

// Engine is the state machine owning which scenario is active. Exactly one
// scenario is active at all times; the initial state is the normal baseline.
// Activation, manual deactivation and expiry checks are mutually exclusive
// with each other.
type Engine struct {
	// target is the generator the active scenario's modifiers live on.
	target ModifierTarget
	// active is the currently active scenario, never nil.
	active *Scenario
	// startedAt is when the active scenario was activated.
	startedAt time.Time
	// mu serializes state transitions.
	mu sync.Mutex
}

// NewEngine creates an engine in the Normal baseline state.
func NewEngine(target ModifierTarget) *Engine {
	return &Engine{
		target:    target,
		active:    Normal(),
		startedAt: time.Now(),
	}
}

// Activate switches to the given scenario, deactivating the current one
// first so that only one fault scenario's modifiers are ever live.
// Re-activating the already-active scenario restarts it from the beginning
// (the start time is reset); activating the baseline while the baseline is
// current is a no-op.
func (e *Engine) Activate(ctx context.Context, s *Scenario) error {
	if s == nil {
		return ErrInvalidDefinition
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if s.Baseline() && e.active.Baseline() {
		return nil
	}

	e.deactivateLocked(ctx)

	now := time.Now()
	e.active = s
	e.startedAt = now

	if err := s.Activate(e.target, now); err != nil {
		// Partial installs are recoverable: the scenario stays active for
		// the tags that did install, and Deactivate cleans all of them.
		logger.WarnKV(ctx, "Scenario activated with failed modifier installs",
			"scenario", s.Name, "error", err)
	}

	logger.InfoKV(ctx, "Scenario activated", "scenario", s.Name, "duration", s.Duration)

	return nil
}

// CheckExpiry reverts to the baseline once the active scenario's duration
// has fully elapsed. Indefinite scenarios (zero duration) never expire.
// It is invoked on every tick of the shared clock.
func (e *Engine) CheckExpiry(ctx context.Context, now time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.active.Duration <= 0 {
		return
	}

	if now.Sub(e.startedAt) < e.active.Duration {
		return
	}

	logger.InfoKV(ctx, "Scenario expired", "scenario", e.active.Name)
	e.deactivateLocked(ctx)
}

// Deactivate stops the active scenario early and reverts to the baseline.
// Deactivating while the baseline is current is a no-op.
func (e *Engine) Deactivate(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.active.Baseline() {
		logger.InfoKV(ctx, "Scenario deactivated", "scenario", e.active.Name)
	}

	e.deactivateLocked(ctx)
}

// deactivateLocked clears the active scenario's modifiers and returns to the
// baseline. Caller holds the lock. Cleanup is unconditional per declared
// tag, never dependent on activation having fully succeeded.
func (e *Engine) deactivateLocked(_ context.Context) {
	if e.active.Baseline() {
		return
	}

	e.active.Deactivate(e.target)
	e.active = Normal()
	e.startedAt = time.Now()
}

// Active returns the currently active scenario.
func (e *Engine) Active() *Scenario {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.active
}

// Status returns a snapshot of the engine state.
func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()

	return Status{
		ActiveScenario: e.active.Name,
		Elapsed:        time.Since(e.startedAt),
		Duration:       e.active.Duration,
	}
}
