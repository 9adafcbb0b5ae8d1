package stream

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/PChiesa/pi-system-monitoring-agent-sub001/internal/catalog"
	"github.com/PChiesa/pi-system-monitoring-agent-sub001/internal/logger"
)

// writeDeadline bounds every outbound frame so a stalled peer
// cannot block the push loop indefinitely.
const writeDeadline = 10 * time.Second

// Client actions understood by a session's read pump.
const (
	actionSubscribe   = "subscribe"
	actionUnsubscribe = "unsubscribe"
	actionConfigure   = "configure"
)

// Conn is the subset of the WebSocket connection a session uses.
// *websocket.Conn satisfies it.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	WriteControl(messageType int, data []byte, deadline time.Time) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

// clientRequest is the JSON message a subscriber sends to manage its session.
type clientRequest struct {
	Action            string   `json:"action"`
	IDs               []string `json:"ids,omitempty"`
	Snapshot          bool     `json:"snapshot,omitempty"`
	UpdatePeriodMs    int64    `json:"updatePeriodMs,omitempty"`
	HeartbeatPeriodMs int64    `json:"heartbeatPeriodMs,omitempty"`
}

// ValueItem is one timestamped reading inside a tag update.
type ValueItem struct {
	Timestamp time.Time `json:"timestamp"`
	Value     any       `json:"value"`
	Good      bool      `json:"good"`
}

// TagUpdate carries the latest readings for one subscribed tag.
type TagUpdate struct {
	ID    string      `json:"id"`
	Name  string      `json:"name"`
	Path  string      `json:"path"`
	Items []ValueItem `json:"items"`
}

// Session is one subscriber's connection state: its subscription set,
// its output cadence and its liveness timer. A session never outlives
// its connection and shares no mutable state with other sessions.
type Session struct {
	id      string
	conn    Conn
	manager *Manager

	ctx    context.Context
	cancel context.CancelFunc

	// writeMu serializes frames, gorilla panics on concurrent writes.
	writeMu sync.Mutex

	// subs maps external tag identifiers to resolved catalog entries.
	subs   map[string]*catalog.Entry
	subsMu sync.Mutex

	// reconfigure delivers new timer periods to the push loop.
	reconfigure chan Settings

	teardownOnce sync.Once
	pushDone     chan struct{}
}

// ID returns the session's unique identifier.
func (s *Session) ID() string {
	return s.id
}

// Close tears the session down and waits until both of its timers have
// stopped. No frame is sent after Close returns. Safe to call more than
// once and safe to call concurrently with the session's own teardown.
func (s *Session) Close() {
	s.teardown()
	<-s.pushDone
}

// teardown cancels the session exactly once: it stops the loops, closes
// the connection and removes the session from the manager.
func (s *Session) teardown() {
	s.teardownOnce.Do(func() {
		s.cancel()

		if err := s.conn.Close(); err != nil {
			logger.DebugKV(s.ctx, "closing streaming connection", "error", err)
		}

		s.manager.remove(s)

		logger.InfoKV(s.ctx, "streaming session closed", "session_id", s.id)
	})
}

// readPump decodes client requests until the connection drops,
// then tears the session down.
func (s *Session) readPump() {
	defer s.teardown()

	for {
		_, payload, err := s.conn.ReadMessage()
		if err != nil {
			return
		}

		var request clientRequest
		if err = json.Unmarshal(payload, &request); err != nil {
			logger.WarnKV(s.ctx, "malformed client request",
				"session_id", s.id,
				"error", err)

			continue
		}

		s.handleRequest(&request)
	}
}

// handleRequest applies one client request to the session.
func (s *Session) handleRequest(request *clientRequest) {
	switch request.Action {
	case actionSubscribe:
		s.subscribe(request.IDs, request.Snapshot)
	case actionUnsubscribe:
		s.unsubscribe(request.IDs)
	case actionConfigure:
		s.configure(request.UpdatePeriodMs, request.HeartbeatPeriodMs)
	default:
		logger.WarnKV(s.ctx, "unknown client action",
			"session_id", s.id,
			"action", request.Action)
	}
}

// subscribe resolves the requested identifiers against the catalog and
// adds the known ones to the subscription set. Unknown identifiers are
// dropped silently, a partial subscription is normal. When snapshot is
// set, the current values of the newly added tags are pushed at once.
func (s *Session) subscribe(ids []string, snapshot bool) {
	added := make([]*catalog.Entry, 0, len(ids))

	s.subsMu.Lock()

	for _, id := range ids {
		entry := s.manager.tags.ByID(id)
		if entry == nil {
			continue
		}

		s.subs[entry.ID] = entry
		added = append(added, entry)
	}

	s.subsMu.Unlock()

	logger.DebugKV(s.ctx, "subscription updated",
		"session_id", s.id,
		"requested", len(ids),
		"resolved", len(added))

	if snapshot && len(added) > 0 {
		s.pushBatch(added)
	}
}

// unsubscribe removes identifiers from the subscription set.
// Unknown identifiers are ignored.
func (s *Session) unsubscribe(ids []string) {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()

	for _, id := range ids {
		delete(s.subs, id)
	}
}

// configure adjusts the session's timer periods.
// Non-positive periods leave the current value unchanged.
func (s *Session) configure(updatePeriodMs, heartbeatPeriodMs int64) {
	settings := Settings{
		UpdatePeriod:    time.Duration(updatePeriodMs) * time.Millisecond,
		HeartbeatPeriod: time.Duration(heartbeatPeriodMs) * time.Millisecond,
	}

	select {
	case s.reconfigure <- settings:
	case <-s.ctx.Done():
	}
}

// subscriptions returns a snapshot of the current subscription set.
func (s *Session) subscriptions() []*catalog.Entry {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()

	entries := make([]*catalog.Entry, 0, len(s.subs))
	for _, entry := range s.subs {
		entries = append(entries, entry)
	}

	return entries
}

// pushLoop owns the session's two timers: the update ticker re-reads
// the current value of every subscribed tag and pushes one batch, the
// heartbeat ticker sends liveness pings. Both stop before pushDone is
// closed, so Close can wait for them synchronously.
func (s *Session) pushLoop(settings Settings) {
	defer close(s.pushDone)

	update := time.NewTicker(settings.UpdatePeriod)
	defer update.Stop()

	heartbeat := time.NewTicker(settings.HeartbeatPeriod)
	defer heartbeat.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case next := <-s.reconfigure:
			if next.UpdatePeriod > 0 {
				update.Reset(next.UpdatePeriod)
			}

			if next.HeartbeatPeriod > 0 {
				heartbeat.Reset(next.HeartbeatPeriod)
			}
		case <-update.C:
			s.pushBatch(s.subscriptions())
		case <-heartbeat.C:
			if err := s.ping(); err != nil {
				logger.WarnKV(s.ctx, "heartbeat failed",
					"session_id", s.id,
					"error", err)
				s.teardown()

				return
			}
		}
	}
}

// pushBatch reads the latest sample per entry and sends one batch.
// An empty resolve is a transient no-op, not an error. A send failure
// tears down this session only.
func (s *Session) pushBatch(entries []*catalog.Entry) {
	batch := make([]TagUpdate, 0, len(entries))

	for _, entry := range entries {
		sample := s.manager.values.CurrentValue(entry.Definition.Name)
		if sample == nil {
			continue
		}

		batch = append(batch, TagUpdate{
			ID:   entry.ID,
			Name: entry.Definition.Name,
			Path: entry.Path,
			Items: []ValueItem{{
				Timestamp: sample.Timestamp,
				Value:     sample.Value,
				Good:      sample.Good,
			}},
		})
	}

	if len(batch) == 0 {
		return
	}

	payload, err := json.Marshal(batch)
	if err != nil {
		logger.ErrorKV(s.ctx, "encoding update batch",
			"session_id", s.id,
			"error", err)

		return
	}

	if err = s.send(payload); err != nil {
		logger.WarnKV(s.ctx, "pushing update batch",
			"session_id", s.id,
			"error", err)
		s.teardown()

		return
	}

	s.manager.metrics.UpdateSent()
}

// send writes one text frame under the session's write lock.
func (s *Session) send(payload []byte) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.conn.SetWriteDeadline(time.Now().Add(writeDeadline)); err != nil {
		return err
	}

	return s.conn.WriteMessage(websocket.TextMessage, payload)
}

// ping sends a control frame proving the session is alive.
func (s *Session) ping() error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	return s.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeDeadline))
}
