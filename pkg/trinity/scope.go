package trinity

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
)

// Scope is a hierarchical, Kind-keyed registry of live nodes. Each
// level holds at most one node per Kind; lookups fall back to ancestor
// scopes. A scope's lifecycle is tied to a host subtree: when the
// subtree is torn down the host disposes the scope, which disposes
// child scopes and every registered node.
//
// Registry mutation happens only through Register/Unregister/Dispose;
// the host drives these from its single logical thread of control.
type Scope struct {
	id     uint64
	parent *Scope

	mu       sync.RWMutex
	children []*Scope
	nodes    map[Kind]NodeInterface
	order    []Kind // registration order, used for deterministic teardown

	disposed atomic.Bool
	logger   *slog.Logger
}

// ScopeOption configures a new Scope.
type ScopeOption func(*Scope)

// WithLogger sets the scope's logger. Child scopes and nodes inherit
// it with contextual fields attached.
func WithLogger(logger *slog.Logger) ScopeOption {
	return func(s *Scope) {
		s.logger = logger
	}
}

// NewScope creates a scope. With a non-nil parent the new scope is
// registered as a child and participates in lookup fallback; the
// parent disposes it if still alive at parent teardown.
func NewScope(parent *Scope, opts ...ScopeOption) *Scope {
	s := &Scope{
		id:     nextID(),
		parent: parent,
		nodes:  make(map[Kind]NodeInterface),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		if parent != nil {
			s.logger = parent.logger
		} else {
			s.logger = slog.Default()
		}
	}
	s.logger = s.logger.With("scope_id", s.id)

	if parent != nil {
		parent.addChild(s)
	}
	return s
}

// ID returns the unique identifier for this scope.
func (s *Scope) ID() uint64 {
	return s.id
}

// Parent returns the enclosing scope, or nil for a root scope.
func (s *Scope) Parent() *Scope {
	return s.parent
}

// Disposed reports whether the scope has been torn down.
func (s *Scope) Disposed() bool {
	return s.disposed.Load()
}

// addChild registers a child scope.
func (s *Scope) addChild(child *Scope) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.children = append(s.children, child)
}

// removeChild removes a child scope.
func (s *Scope) removeChild(child *Scope) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, c := range s.children {
		if c == child {
			s.children = append(s.children[:i], s.children[i+1:]...)
			return
		}
	}
}

// Register stores the node keyed by its Kind and runs its attach
// sequence: back-reference set, pending bridges connected in FIFO
// order, then OnInit invoked synchronously.
//
// Registering a second node of the same Kind at this level is a
// configuration error and fails fast; nothing is overwritten. A failed
// bridge connect also fails registration and the node is not stored.
func (s *Scope) Register(n NodeInterface) error {
	if s.disposed.Load() {
		return ErrScopeDisposed
	}
	kind := n.Kind()

	s.mu.Lock()
	if _, exists := s.nodes[kind]; exists {
		s.mu.Unlock()
		return &DuplicateNodeError{Kind: kind}
	}
	s.nodes[kind] = n
	s.order = append(s.order, kind)
	s.mu.Unlock()

	// Attach outside the lock: bridge connection re-enters the scope
	// for parent lookup.
	if err := n.base().attach(s, n); err != nil {
		s.mu.Lock()
		delete(s.nodes, kind)
		s.order = s.order[:len(s.order)-1]
		s.mu.Unlock()
		return fmt.Errorf("trinity: register %q: %w", kind, err)
	}

	n.OnInit()
	s.logger.Debug("node registered", "node_kind", string(kind))
	return nil
}

// Unregister removes the node of the given Kind from this level and
// runs its full disposal sequence. Returns NotFoundError if the Kind
// is not registered here.
func (s *Scope) Unregister(kind Kind) error {
	s.mu.Lock()
	n, ok := s.nodes[kind]
	if ok {
		delete(s.nodes, kind)
		for i, k := range s.order {
			if k == kind {
				s.order = append(s.order[:i], s.order[i+1:]...)
				break
			}
		}
	}
	s.mu.Unlock()

	if !ok {
		return &NotFoundError{Kind: kind}
	}
	n.base().dispose()
	s.logger.Debug("node unregistered", "node_kind", string(kind))
	return nil
}

// node is the shallow lookup at this level only.
func (s *Scope) node(kind Kind) (NodeInterface, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.nodes[kind]
	return n, ok
}

// findNode looks up a Kind at this level, then walks the parent chain.
// Exhausting all levels returns NotFoundError naming the Kind.
func (s *Scope) findNode(kind Kind) (NodeInterface, error) {
	for scope := s; scope != nil; scope = scope.parent {
		if n, ok := scope.node(kind); ok {
			return n, nil
		}
	}
	return nil, &NotFoundError{Kind: kind}
}

// Nodes returns the nodes registered at this level, in registration
// order.
func (s *Scope) Nodes() []NodeInterface {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]NodeInterface, 0, len(s.order))
	for _, kind := range s.order {
		out = append(out, s.nodes[kind])
	}
	return out
}

// Dispose tears the scope down: child scopes first (most recent
// first), then every registered node in reverse registration order,
// then the registry is cleared and the scope detached from its parent.
// Idempotent.
func (s *Scope) Dispose() {
	if s.disposed.Swap(true) {
		return
	}

	if s.parent != nil {
		s.parent.removeChild(s)
	}

	s.mu.Lock()
	children := s.children
	s.children = nil
	nodes := make([]NodeInterface, 0, len(s.order))
	for _, kind := range s.order {
		nodes = append(nodes, s.nodes[kind])
	}
	s.nodes = make(map[Kind]NodeInterface)
	s.order = nil
	s.mu.Unlock()

	for i := len(children) - 1; i >= 0; i-- {
		children[i].Dispose()
	}
	for i := len(nodes) - 1; i >= 0; i-- {
		nodes[i].base().dispose()
	}

	s.logger.Debug("scope disposed", "nodes", len(nodes))
}

// Get is the shallow typed lookup: the node of the given Kind at this
// scope level only. Absence is an explicit ok=false, never an error.
func Get[N NodeInterface](s *Scope, kind Kind) (N, bool) {
	var zero N
	n, ok := s.node(kind)
	if !ok {
		return zero, false
	}
	typed, ok := n.(N)
	if !ok {
		return zero, false
	}
	return typed, true
}

// Find is the typed lookup with parent fallback: it checks the current
// level, then each enclosing scope. A miss across all levels is fatal
// for callers wiring bridges and returns NotFoundError naming the
// requested Kind; a Kind registered with a different concrete type
// returns KindMismatchError.
func Find[N NodeInterface](s *Scope, kind Kind) (N, error) {
	return resolveParent[N](s, kind)
}
