package stream

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/PChiesa/pi-system-monitoring-agent-sub001/internal/catalog"
	"github.com/PChiesa/pi-system-monitoring-agent-sub001/internal/domain/tag"
	"github.com/PChiesa/pi-system-monitoring-agent-sub001/internal/logger"
	"github.com/PChiesa/pi-system-monitoring-agent-sub001/internal/metrics"
)

// TagIndex resolves external tag identifiers to catalog entries.
// *catalog.Catalog satisfies it.
type TagIndex interface {
	ByID(id string) *catalog.Entry
}

// ValueReader serves the latest cached sample per tag.
// *generator.Generator satisfies it.
type ValueReader interface {
	CurrentValue(name string) *tag.Sample
}

// Settings holds the per-session timer periods.
type Settings struct {
	// UpdatePeriod is the cadence of value batches.
	UpdatePeriod time.Duration
	// HeartbeatPeriod is the cadence of liveness pings.
	HeartbeatPeriod time.Duration
}

// Manager owns every live streaming session: it upgrades incoming
// connections, hands each one an isolated session and closes them all
// on shutdown.
type Manager struct {
	tags     TagIndex
	values   ValueReader
	metrics  *metrics.Metrics
	defaults Settings

	upgrader websocket.Upgrader

	sessions map[string]*Session
	mu       sync.RWMutex
	closed   bool
}

// NewManager creates a session manager reading values from the given
// sources. A nil metrics handle disables instrumentation.
func NewManager(tags TagIndex, values ValueReader, m *metrics.Metrics, defaults Settings) *Manager {
	return &Manager{
		tags:     tags,
		values:   values,
		metrics:  m,
		defaults: defaults,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		sessions: make(map[string]*Session),
	}
}

// ServeHTTP upgrades the request to a WebSocket connection and runs a
// streaming session on it until the peer disconnects.
func (m *Manager) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := m.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.WarnKV(r.Context(), "websocket upgrade failed",
			"remote_addr", r.RemoteAddr,
			"error", err)

		return
	}

	session := m.StartSession(conn)
	if session == nil {
		_ = conn.Close()
	}
}

// StartSession registers a new session on the connection and starts its
// read and push loops. Returns nil when the manager is already closed.
func (m *Manager) StartSession(conn Conn) *Session {
	ctx, cancel := context.WithCancel(logger.WithName(context.Background(), "stream"))

	session := &Session{
		id:          uuid.NewString(),
		conn:        conn,
		manager:     m,
		ctx:         ctx,
		cancel:      cancel,
		subs:        make(map[string]*catalog.Entry),
		reconfigure: make(chan Settings),
		pushDone:    make(chan struct{}),
	}

	m.mu.Lock()

	if m.closed {
		m.mu.Unlock()
		cancel()
		close(session.pushDone)

		return nil
	}

	m.sessions[session.id] = session

	m.mu.Unlock()

	m.metrics.SessionOpened()

	logger.InfoKV(ctx, "streaming session opened", "session_id", session.id)

	go session.readPump()
	go session.pushLoop(m.defaults)

	return session
}

// remove drops a session from the live set.
func (m *Manager) remove(s *Session) {
	m.mu.Lock()

	_, ok := m.sessions[s.id]
	delete(m.sessions, s.id)

	m.mu.Unlock()

	if ok {
		m.metrics.SessionClosed()
	}
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.sessions)
}

// CloseAll closes every live session and rejects new ones.
// It returns after all session timers have stopped.
func (m *Manager) CloseAll() {
	m.mu.Lock()

	m.closed = true

	remaining := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		remaining = append(remaining, s)
	}

	m.mu.Unlock()

	for _, s := range remaining {
		s.Close()
	}
}
