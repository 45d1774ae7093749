package trinity

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
)

// Kind is the explicit type tag a node declares for registry keying.
// Each node type picks one Kind at compile time; lookups and bridge
// resolution key on it, so no runtime type introspection is needed.
type Kind string

// Disposable is anything with owned resources to release.
type Disposable interface {
	Dispose()
}

// LifecycleState is the node lifecycle position.
// Nodes move strictly Created -> Attached -> Ready -> Disposed.
type LifecycleState int32

const (
	StateCreated LifecycleState = iota
	StateAttached
	StateReady
	StateDisposed
)

// String returns a human-readable name for the state.
func (s LifecycleState) String() string {
	switch s {
	case StateCreated:
		return "Created"
	case StateAttached:
		return "Attached"
	case StateReady:
		return "Ready"
	case StateDisposed:
		return "Disposed"
	default:
		return "Unknown"
	}
}

// NodeInterface is the contract between a node and its scope/host.
// Concrete nodes embed BaseNode (which supplies the lifecycle
// machinery) and implement Kind plus whichever hooks they need.
//
// Hook invocation order: OnInit runs synchronously during scope
// registration, after every bridge present at registration has
// connected. OnReady runs exactly once, when the host calls MarkReady
// after its first commit. OnDispose runs during teardown, after every
// owned bridge and signal has been disposed.
type NodeInterface interface {
	// Kind returns the node's registry tag.
	Kind() Kind

	// OnInit is invoked when the node is registered into a scope.
	OnInit()

	// OnReady is invoked once, after the host's first commit.
	OnReady()

	// OnDispose is invoked after the node's resources are released.
	OnDispose()

	// MarkReady transitions Attached -> Ready and invokes OnReady.
	MarkReady() error

	// base exposes the lifecycle machinery to the scope. Implemented
	// by the embedded BaseNode; keeps the interface closed to types
	// that don't embed it.
	base() *BaseNode
}

// BaseNode supplies the node lifecycle machinery: ownership of signals
// and bridges, the attach/ready/dispose state machine, the built-in
// loading and error signals, and the Loading helper. The zero value is
// ready to use; embed it by value.
type BaseNode struct {
	state atomic.Int32

	mu      sync.Mutex
	scope   *Scope // back-reference, relation not ownership
	self    NodeInterface
	signals []Disposable // owned signals, adoption order
	bridges []connector  // owned bridges, adoption order (FIFO connect)

	builtin     sync.Once
	isLoading   *Signal[bool]
	fullLoading *Signal[bool]
	err         *Signal[error]

	logger *slog.Logger
}

// OnInit is a no-op; concrete nodes override it as needed.
func (n *BaseNode) OnInit() {}

// OnReady is a no-op; concrete nodes override it as needed.
func (n *BaseNode) OnReady() {}

// OnDispose is a no-op; concrete nodes override it as needed.
func (n *BaseNode) OnDispose() {}

func (n *BaseNode) base() *BaseNode { return n }

// State returns the node's lifecycle position.
func (n *BaseNode) State() LifecycleState {
	return LifecycleState(n.state.Load())
}

// Scope returns the owning scope, or nil before attachment.
func (n *BaseNode) Scope() *Scope {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.scope
}

// ensureBuiltin lazily creates the built-in signals so the zero-value
// BaseNode works without a constructor.
func (n *BaseNode) ensureBuiltin() {
	n.builtin.Do(func() {
		n.isLoading = NewSignal(false)
		n.fullLoading = NewSignal(false)
		n.err = NewSignal[error](nil).WithEquals(func(a, b error) bool { return a == b })
	})
}

// IsLoading is the inline loading indicator signal toggled by Loading.
func (n *BaseNode) IsLoading() *Signal[bool] {
	n.ensureBuiltin()
	return n.isLoading
}

// FullScreenLoading is the full-screen loading indicator signal.
func (n *BaseNode) FullScreenLoading() *Signal[bool] {
	n.ensureBuiltin()
	return n.fullLoading
}

// Err is the node's error side-channel. Loading records operation
// failures here for UI consumption; callers still receive the error
// through their own return path.
func (n *BaseNode) Err() *Signal[error] {
	n.ensureBuiltin()
	return n.err
}

// Own adopts signals and bridges into this node's lifecycle. Owned
// resources are disposed with the node, in adoption order. Bridges
// adopted before attachment connect in FIFO order at attach time;
// bridges adopted after attachment connect immediately, and a failed
// late connect panics (configuration error, fail fast).
func (n *BaseNode) Own(resources ...Disposable) {
	n.mu.Lock()
	var connectNow []connector
	for _, r := range resources {
		if c, ok := r.(connector); ok {
			n.bridges = append(n.bridges, c)
			if LifecycleState(n.state.Load()) == StateAttached || LifecycleState(n.state.Load()) == StateReady {
				connectNow = append(connectNow, c)
			}
			continue
		}
		n.signals = append(n.signals, r)
	}
	scope := n.scope
	n.mu.Unlock()

	for _, c := range connectNow {
		if err := c.connect(scope); err != nil {
			panic(fmt.Sprintf("[TRINITY E002] bridge connect after attach: %v", err))
		}
	}
}

// attach binds the node to its scope, exactly once, and connects every
// pending bridge in adoption order. Called by Scope.Register.
func (n *BaseNode) attach(s *Scope, self NodeInterface) error {
	if !n.state.CompareAndSwap(int32(StateCreated), int32(StateAttached)) {
		if n.State() == StateDisposed {
			return ErrNodeDisposed
		}
		return ErrAlreadyAttached
	}

	n.mu.Lock()
	n.scope = s
	n.self = self
	n.logger = s.logger.With("node_kind", string(self.Kind()))
	bridges := make([]connector, len(n.bridges))
	copy(bridges, n.bridges)
	n.mu.Unlock()

	for _, b := range bridges {
		if err := b.connect(s); err != nil {
			return err
		}
	}

	n.logger.Debug("node attached")
	return nil
}

// MarkReady transitions the node to Ready and invokes OnReady exactly
// once. The host calls this after its first externally visible commit
// following attachment. A node can never become Ready before Attached.
func (n *BaseNode) MarkReady() error {
	if !n.state.CompareAndSwap(int32(StateAttached), int32(StateReady)) {
		switch n.State() {
		case StateCreated:
			return ErrNotAttached
		case StateReady:
			return ErrAlreadyReady
		default:
			return ErrNodeDisposed
		}
	}

	n.mu.Lock()
	self := n.self
	n.mu.Unlock()

	self.OnReady()
	if n.logger != nil {
		n.logger.Debug("node ready")
	}
	return nil
}

// dispose tears the node down: every bridge is disposed (parent
// subscriptions cancelled), then every signal including the built-in
// ones, then OnDispose runs. No lifecycle transition is permitted
// afterwards. Called by the scope on unregister or scope disposal;
// idempotent.
func (n *BaseNode) dispose() {
	prev := LifecycleState(n.state.Swap(int32(StateDisposed)))
	if prev == StateDisposed {
		return
	}

	n.mu.Lock()
	bridges := n.bridges
	signals := n.signals
	self := n.self
	n.bridges = nil
	n.signals = nil
	n.mu.Unlock()

	for _, b := range bridges {
		b.Dispose()
	}
	for _, s := range signals {
		s.Dispose()
	}
	n.builtin.Do(func() {}) // built-ins may never have been touched
	if n.isLoading != nil {
		n.isLoading.Dispose()
		n.fullLoading.Dispose()
		n.err.Dispose()
	}

	if self != nil {
		self.OnDispose()
	}
	if n.logger != nil {
		n.logger.Debug("node disposed")
	}
}

// loadingConfig holds Loading options.
type loadingConfig struct {
	indicator  bool
	fullScreen bool
}

// LoadingOption configures BaseNode.Loading.
type LoadingOption func(*loadingConfig)

// WithoutIndicator runs the operation without toggling a loading
// signal; the error side-channel still applies.
func WithoutIndicator() LoadingOption {
	return func(c *loadingConfig) {
		c.indicator = false
	}
}

// FullScreen toggles FullScreenLoading instead of IsLoading. The two
// indicators are mutually exclusive per call.
func FullScreen() LoadingOption {
	return func(c *loadingConfig) {
		c.fullScreen = true
	}
}

// Loading wraps an asynchronous operation. The chosen loading signal
// is set before the operation starts and reset in a deferred cleanup
// that runs on every exit path, including panic. On failure the error
// is recorded on Err and returned to the caller unchanged - the signal
// is a side-channel for UI consumption, not a substitute for
// caller-side handling.
func (n *BaseNode) Loading(ctx context.Context, op func(context.Context) error, opts ...LoadingOption) error {
	cfg := loadingConfig{indicator: true}
	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.indicator {
		sig := n.IsLoading()
		if cfg.fullScreen {
			sig = n.FullScreenLoading()
		}
		sig.Set(true)
		defer sig.Set(false)
	}

	if err := op(ctx); err != nil {
		n.Err().Set(err)
		return err
	}
	return nil
}
