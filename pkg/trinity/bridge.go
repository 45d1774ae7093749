package trinity

import (
	"fmt"
	"sync"
)

// Bridge connection states. A bridge moves strictly
// Unconnected -> Connected -> Disposed.
type bridgeState int32

const (
	bridgeUnconnected bridgeState = iota
	bridgeConnected
	bridgeDisposed
)

// connector is implemented by bridges so BaseNode can connect them at
// attach time and dispose them at teardown.
type connector interface {
	Disposable
	connect(s *Scope) error
}

// resolveParent looks up the declared parent node Kind through the
// scope chain and asserts its concrete type. A miss is fatal for the
// connecting bridge (configuration error, not retried).
func resolveParent[P NodeInterface](s *Scope, kind Kind) (P, error) {
	var zero P
	node, err := s.findNode(kind)
	if err != nil {
		return zero, err
	}
	parent, ok := node.(P)
	if !ok {
		return zero, &KindMismatchError{
			Kind: kind,
			Want: fmt.Sprintf("%T", zero),
			Got:  fmt.Sprintf("%T", node),
		}
	}
	return parent, nil
}

// BridgeSignal mirrors a signal owned by a different node, resolved at
// connect time by the parent's Kind. It is a bidirectional
// passthrough: reads expose the parent's value, writes go straight
// through to the parent's signal. The local value only changes when
// the parent emits, so there is no state divergence.
//
// The bridge connects exactly once, when its owning node attaches to a
// scope. If the parent node is disposed while the bridge is still
// connected, the bridge silently stops receiving values and is left
// holding its last-known value; that staleness is intentional.
type BridgeSignal[P NodeInterface, T any] struct {
	local      *Signal[T]
	parentKind Kind
	selector   func(P) *Signal[T]

	mu        sync.Mutex
	state     bridgeState
	parentSig *Signal[T]
	sub       *Subscription[T]
}

// NewBridgeSignal creates an unconnected passthrough bridge. The
// selector picks the parent's signal once the parent node is resolved.
func NewBridgeSignal[P NodeInterface, T any](parentKind Kind, selector func(P) *Signal[T]) *BridgeSignal[P, T] {
	var zero T
	return &BridgeSignal[P, T]{
		local:      NewSignal(zero),
		parentKind: parentKind,
		selector:   selector,
	}
}

// connect resolves the parent, seeds the local value from the parent's
// current value, and subscribes to replay-then-changes so every parent
// emit re-emits locally.
func (b *BridgeSignal[P, T]) connect(s *Scope) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case bridgeConnected:
		return fmt.Errorf("trinity: bridge for kind %q connected twice", b.parentKind)
	case bridgeDisposed:
		return ErrNodeDisposed
	}

	parent, err := resolveParent[P](s, b.parentKind)
	if err != nil {
		return err
	}
	b.parentSig = b.selector(parent)
	b.sub = b.parentSig.Subscribe(func(v T) {
		b.local.Set(v)
	}, WithReplay())
	b.state = bridgeConnected
	return nil
}

// Get returns the mirrored value.
func (b *BridgeSignal[P, T]) Get() T {
	return b.local.Get()
}

// Set writes through to the parent's signal. The local value is not
// touched directly; it updates when the parent's emit flows back
// through the subscription. Calling Set on an unconnected or disposed
// bridge is a programming error and panics.
func (b *BridgeSignal[P, T]) Set(value T) {
	b.mu.Lock()
	state, parentSig := b.state, b.parentSig
	b.mu.Unlock()

	if state != bridgeConnected {
		panic(fmt.Sprintf("[TRINITY E004] write on %s bridge for kind %q", bridgeStateName(state), b.parentKind))
	}
	parentSig.Set(value)
}

// Emit is an alias for Set.
func (b *BridgeSignal[P, T]) Emit(value T) {
	b.Set(value)
}

// Subscribe observes the mirrored value; delivery follows the Signal
// contract.
func (b *BridgeSignal[P, T]) Subscribe(fn func(T), opts ...SubscribeOption) *Subscription[T] {
	return b.local.Subscribe(fn, opts...)
}

// WatchAny implements AnyWatcher over the mirrored value.
func (b *BridgeSignal[P, T]) WatchAny(fn func(any)) (stop func()) {
	return b.local.WatchAny(fn)
}

// Readable returns a read-only view of the mirrored value.
func (b *BridgeSignal[P, T]) Readable() ReadableSignal[T] {
	return b.local.Readable()
}

// Dispose cancels the parent subscription and closes the local
// notification channel. The owner's disposal calls this independently
// of whether the parent node still lives.
func (b *BridgeSignal[P, T]) Dispose() {
	b.mu.Lock()
	if b.state == bridgeDisposed {
		b.mu.Unlock()
		return
	}
	b.state = bridgeDisposed
	sub := b.sub
	b.sub = nil
	b.mu.Unlock()

	if sub != nil {
		sub.Unsubscribe()
	}
	b.local.Dispose()
}

// TransformBridgeSignal derives a local value from a parent node's
// signal of a different type. The read path is transform(parentValue);
// the write path is update(parentNode, localValue). The two are not
// required to be inverses: update decides how to fold the local value
// back into parent state, and the local cache only changes when the
// parent's next emit re-runs the transform.
type TransformBridgeSignal[P NodeInterface, V, L any] struct {
	local      *Signal[L]
	parentKind Kind
	selector   func(P) *Signal[V]
	transform  func(V) L
	update     func(P, L)

	mu        sync.Mutex
	state     bridgeState
	parent    P
	parentSig *Signal[V]
	sub       *Subscription[V]
}

// NewTransformBridgeSignal creates an unconnected derived bridge.
// update may be nil for a read-only derivation; writing such a bridge
// panics.
func NewTransformBridgeSignal[P NodeInterface, V, L any](
	parentKind Kind,
	selector func(P) *Signal[V],
	transform func(V) L,
	update func(P, L),
) *TransformBridgeSignal[P, V, L] {
	var zero L
	return &TransformBridgeSignal[P, V, L]{
		local:      NewSignal(zero),
		parentKind: parentKind,
		selector:   selector,
		transform:  transform,
		update:     update,
	}
}

// connect resolves the parent and subscribes with replay so the local
// value is derived from the parent's current value immediately.
func (b *TransformBridgeSignal[P, V, L]) connect(s *Scope) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case bridgeConnected:
		return fmt.Errorf("trinity: bridge for kind %q connected twice", b.parentKind)
	case bridgeDisposed:
		return ErrNodeDisposed
	}

	parent, err := resolveParent[P](s, b.parentKind)
	if err != nil {
		return err
	}
	b.parent = parent
	b.parentSig = b.selector(parent)
	b.sub = b.parentSig.Subscribe(func(v V) {
		b.local.Set(b.transform(v))
	}, WithReplay())
	b.state = bridgeConnected
	return nil
}

// Get returns the derived value.
func (b *TransformBridgeSignal[P, V, L]) Get() L {
	return b.local.Get()
}

// Set invokes the update callback with (parentNode, value). It never
// mutates the locally cached value; that changes only when the
// parent's next emit re-triggers the transform. Calling Set on an
// unconnected or disposed bridge, or one built without an update
// callback, panics.
func (b *TransformBridgeSignal[P, V, L]) Set(value L) {
	b.mu.Lock()
	state, parent := b.state, b.parent
	b.mu.Unlock()

	if state != bridgeConnected {
		panic(fmt.Sprintf("[TRINITY E004] write on %s bridge for kind %q", bridgeStateName(state), b.parentKind))
	}
	if b.update == nil {
		panic(fmt.Sprintf("[TRINITY E004] write on read-only transform bridge for kind %q", b.parentKind))
	}
	b.update(parent, value)
}

// Emit is an alias for Set.
func (b *TransformBridgeSignal[P, V, L]) Emit(value L) {
	b.Set(value)
}

// Subscribe observes the derived value.
func (b *TransformBridgeSignal[P, V, L]) Subscribe(fn func(L), opts ...SubscribeOption) *Subscription[L] {
	return b.local.Subscribe(fn, opts...)
}

// WatchAny implements AnyWatcher over the derived value.
func (b *TransformBridgeSignal[P, V, L]) WatchAny(fn func(any)) (stop func()) {
	return b.local.WatchAny(fn)
}

// Readable returns a read-only view of the derived value.
func (b *TransformBridgeSignal[P, V, L]) Readable() ReadableSignal[L] {
	return b.local.Readable()
}

// Dispose cancels the parent subscription and closes the local
// notification channel.
func (b *TransformBridgeSignal[P, V, L]) Dispose() {
	b.mu.Lock()
	if b.state == bridgeDisposed {
		b.mu.Unlock()
		return
	}
	b.state = bridgeDisposed
	sub := b.sub
	b.sub = nil
	b.mu.Unlock()

	if sub != nil {
		sub.Unsubscribe()
	}
	b.local.Dispose()
}

// bridgeStateName renders a bridge state for panic messages.
func bridgeStateName(s bridgeState) string {
	switch s {
	case bridgeUnconnected:
		return "unconnected"
	case bridgeConnected:
		return "connected"
	case bridgeDisposed:
		return "disposed"
	default:
		return "unknown"
	}
}
