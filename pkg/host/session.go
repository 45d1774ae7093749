package host

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/trinity-go/trinity/pkg/trinity"
)

// ViewModel is implemented by nodes that expose signals to the client.
// Each entry is pushed as a patch frame named "<kind>.<name>" whenever
// the signal emits, including a replay of the current value at session
// start.
type ViewModel interface {
	View() map[string]trinity.AnyWatcher
}

// EventHandler is implemented by nodes that accept client events.
// Events are addressed "<kind>.<name>"; the handler receives the name
// part. Handlers run on the session loop, so they may freely mutate
// signals.
type EventHandler interface {
	HandleEvent(name string, payload json.RawMessage) error
}

// Frame types on the wire.
const (
	frameHello = "hello"
	framePatch = "patch"
	frameEvent = "event"
	frameError = "error"
)

// frame is the JSON wire frame.
type frame struct {
	Type    string          `json:"type"`
	Name    string          `json:"name,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Session is one live WebSocket connection: a child scope populated by
// the server's session factory, a loop serializing all signal work,
// and the patch/event plumbing between the two.
type Session struct {
	id     string
	conn   *websocket.Conn
	scope  *trinity.Scope
	loop   *trinity.Loop
	cfg    *Config
	logger *slog.Logger
	tracer *TraceConfig

	writeMu sync.Mutex
	stops   []func()
	closed  atomic.Bool
	done    chan struct{}
}

// newSessionID returns a random 128-bit hex identifier.
func newSessionID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		panic("host: session id: " + err.Error())
	}
	return hex.EncodeToString(b)
}

// newSession builds a session over an upgraded connection: child scope,
// loop, factory-registered nodes, hello frame, view watchers with their
// initial patches, then MarkReady for every node.
func newSession(conn *websocket.Conn, root *trinity.Scope, factory SessionFactory, cfg *Config, logger *slog.Logger, tracer *TraceConfig) (*Session, error) {
	s := &Session{
		id:     newSessionID(),
		conn:   conn,
		cfg:    cfg,
		tracer: tracer,
		done:   make(chan struct{}),
	}
	s.logger = logger.With("session_id", s.id)
	s.scope = trinity.NewScope(root, trinity.WithLogger(s.logger))
	s.loop = trinity.NewLoop(cfg.QueueSize, s.logger)
	s.loop.Start()

	var factoryErr error
	s.loop.Invoke(func() {
		factoryErr = factory(s.scope)
	})
	if factoryErr != nil {
		s.teardown()
		return nil, factoryErr
	}

	if err := s.sendFrame(frame{Type: frameHello, Name: s.id}); err != nil {
		s.teardown()
		return nil, err
	}

	// Attach view watchers on the loop. Replay delivers the current
	// value of every exposed signal as the initial patch set.
	s.loop.Invoke(func() {
		for _, n := range s.scope.Nodes() {
			vm, ok := n.(ViewModel)
			if !ok {
				continue
			}
			kind := string(n.Kind())
			for name, w := range vm.View() {
				key := kind + "." + name
				stop := w.WatchAny(func(v any) {
					s.sendPatch(key, v)
				})
				s.stops = append(s.stops, stop)
			}
		}
	})

	// First commit is done; flip every node to Ready.
	s.loop.Invoke(func() {
		for _, n := range s.scope.Nodes() {
			if err := n.MarkReady(); err != nil {
				s.logger.Warn("mark ready failed", "node_kind", string(n.Kind()), "error", err)
			}
		}
	})

	s.logger.Info("session started", "nodes", len(s.scope.Nodes()))
	return s, nil
}

// ID returns the session identifier sent in the hello frame.
func (s *Session) ID() string {
	return s.id
}

// Scope returns the session's scope.
func (s *Session) Scope() *trinity.Scope {
	return s.scope
}

// ReadLoop continuously reads frames from the connection. It blocks
// until the connection closes or errors.
func (s *Session) ReadLoop() {
	defer s.Close()

	for {
		s.conn.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout.Std()))

		_, msg, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				s.logger.Error("read error", "error", err)
				RecordWebSocketError("read")
			}
			return
		}

		var f frame
		if err := json.Unmarshal(msg, &f); err != nil {
			s.logger.Error("frame decode error", "error", err)
			s.sendError("E061", "invalid frame")
			continue
		}

		switch f.Type {
		case frameEvent:
			s.handleEventFrame(f.Name, f.Payload)
		default:
			s.logger.Warn("unknown frame type", "type", f.Type)
		}
	}
}

// handleEventFrame routes "<kind>.<name>" to the matching node's
// EventHandler on the session loop.
func (s *Session) handleEventFrame(name string, payload json.RawMessage) {
	kind, op, ok := strings.Cut(name, ".")
	if !ok || kind == "" || op == "" {
		s.sendError("E062", "event name must be kind.name")
		return
	}

	node, err := trinity.Find[trinity.NodeInterface](s.scope, trinity.Kind(kind))
	if err != nil {
		s.sendError("E062", "no node for event "+name)
		return
	}
	handler, ok := node.(EventHandler)
	if !ok {
		s.sendError("E062", "node does not accept events: "+kind)
		return
	}

	_, span := s.tracer.startEventSpan(context.Background(), s.id, name)

	start := time.Now()
	var handlerErr error
	s.loop.Invoke(func() {
		handlerErr = handler.HandleEvent(op, payload)
	})
	recordEvent(name, time.Since(start), handlerErr)
	s.tracer.endEventSpan(span, handlerErr)

	if handlerErr != nil {
		s.logger.Error("event handler failed", "event", name, "error", handlerErr)
		s.sendError("E062", handlerErr.Error())
	}
}

// WriteLoop sends periodic heartbeat pings until the session closes.
func (s *Session) WriteLoop() {
	ticker := time.NewTicker(s.cfg.HeartbeatInterval.Std())
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := s.sendPing(); err != nil {
				return
			}
		case <-s.done:
			return
		}
	}
}

// sendPing sends a WebSocket-level ping.
func (s *Session) sendPing() error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if s.closed.Load() {
		return websocket.ErrCloseSent
	}
	s.conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout.Std()))
	return s.conn.WriteMessage(websocket.PingMessage, nil)
}

// sendPatch pushes a signal value to the client.
func (s *Session) sendPatch(name string, v any) {
	payload, err := json.Marshal(v)
	if err != nil {
		s.logger.Error("patch encode error", "patch", name, "error", err)
		return
	}
	if err := s.sendFrame(frame{Type: framePatch, Name: name, Payload: payload}); err != nil {
		return
	}
	RecordPatch()
}

// sendError reports a coded error to the client.
func (s *Session) sendError(code, message string) {
	payload, _ := json.Marshal(message)
	s.sendFrame(frame{Type: frameError, Name: code, Payload: payload})
}

// sendFrame writes one JSON frame under the write lock.
func (s *Session) sendFrame(f frame) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if s.closed.Load() {
		return websocket.ErrCloseSent
	}
	s.conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout.Std()))
	if err := s.conn.WriteJSON(f); err != nil {
		s.logger.Error("write error", "error", err)
		RecordWebSocketError("write")
		return err
	}
	return nil
}

// Close tears the session down: watchers stopped, loop drained and
// stopped, scope disposed, connection closed. Idempotent.
func (s *Session) Close() {
	if s.closed.Swap(true) {
		return
	}
	close(s.done)
	s.teardown()
	s.logger.Info("session closed")
}

// teardown releases session resources. Watchers are stopped before the
// scope goes down so disposal completions don't race writes.
func (s *Session) teardown() {
	for _, stop := range s.stops {
		stop()
	}
	s.stops = nil
	s.loop.Stop()
	s.scope.Dispose()
	s.conn.Close()
}
