package host

import (
	"context"
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/trinity-go/trinity/internal/errors"
	"github.com/trinity-go/trinity/pkg/trinity"
)

// SessionFactory populates a fresh session scope with nodes. It runs
// on the session loop before any frame is sent; a returned error
// aborts the connection.
type SessionFactory func(*trinity.Scope) error

// Server is the HTTP/WebSocket host. It owns a root scope shared by
// all sessions; nodes registered there are visible to session nodes
// through scope fallback.
type Server struct {
	cfg     *Config
	factory SessionFactory
	logger  *slog.Logger
	root    *trinity.Scope
	tracer  *TraceConfig

	upgrader   websocket.Upgrader
	router     chi.Router
	httpServer *http.Server

	mu       sync.Mutex
	sessions map[string]*Session
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) ServerOption {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithRootScope sets the shared root scope. Nodes registered there are
// resolvable from every session scope. The caller keeps ownership; the
// server never disposes it.
func WithRootScope(root *trinity.Scope) ServerOption {
	return func(s *Server) {
		s.root = root
	}
}

// WithTracing enables OpenTelemetry spans around client events.
func WithTracing(opts ...TraceOption) ServerOption {
	return func(s *Server) {
		s.tracer = newTraceConfig(opts...)
	}
}

// WithCheckOrigin sets the WebSocket origin check.
func WithCheckOrigin(check func(*http.Request) bool) ServerOption {
	return func(s *Server) {
		s.upgrader.CheckOrigin = check
	}
}

// NewServer creates a host server. The factory runs once per
// connection to populate that connection's scope.
func NewServer(cfg *Config, factory SessionFactory, opts ...ServerOption) *Server {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	s := &Server{
		cfg:      cfg,
		factory:  factory,
		sessions: make(map[string]*Session),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default().With("component", "host")
	}
	if s.root == nil {
		s.root = trinity.NewScope(nil, trinity.WithLogger(s.logger))
	}

	if cfg.Metrics.Enabled {
		InitMetrics(WithNamespace(cfg.Metrics.Namespace))
	}

	r := chi.NewRouter()
	r.Get("/healthz", s.handleHealthz)
	r.Get("/live", s.handleLive)
	if cfg.Metrics.Enabled {
		r.Handle("/metrics", promhttp.Handler())
	}
	s.router = r

	return s
}

// Handler returns the server's HTTP handler, for embedding or tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// RootScope returns the shared root scope.
func (s *Server) RootScope() *trinity.Scope {
	return s.root
}

// handleHealthz reports liveness.
func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

// handleLive upgrades to WebSocket and runs the session until the
// connection drops.
func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", "error", errors.FromError(err, "E060"))
		RecordWebSocketError("upgrade")
		return
	}

	sess, err := newSession(conn, s.root, s.factory, s.cfg, s.logger, s.tracer)
	if err != nil {
		s.logger.Error("session setup failed", "error", err)
		conn.Close()
		return
	}

	s.mu.Lock()
	s.sessions[sess.ID()] = sess
	s.mu.Unlock()
	RecordSessionCreate()

	go sess.WriteLoop()
	sess.ReadLoop()

	s.mu.Lock()
	delete(s.sessions, sess.ID())
	s.mu.Unlock()
	RecordSessionDestroy()
}

// Session returns the live session with the given ID, as sent in the
// hello frame.
func (s *Server) Session(id string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, errors.New("E063").WithDetailf("session %q", id)
	}
	return sess, nil
}

// SessionCount returns the number of live sessions.
func (s *Server) SessionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// ListenAndServe runs the HTTP server until ctx is cancelled, then
// shuts down gracefully: HTTP drain first, then every live session.
func (s *Server) ListenAndServe(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:         s.cfg.Listen,
		Handler:      s.router,
		ReadTimeout:  s.cfg.ReadTimeout.Std(),
		WriteTimeout: s.cfg.WriteTimeout.Std(),
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("host listening", "addr", s.cfg.Listen)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- errors.New("E141").Wrap(err)
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout.Std())
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("shutdown error", "error", err)
	}

	s.mu.Lock()
	sessions := make([]*Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		sessions = append(sessions, sess)
	}
	s.mu.Unlock()
	for _, sess := range sessions {
		sess.Close()
	}

	s.logger.Info("host stopped")
	return nil
}
