package trinity

import (
	"reflect"
	"sync"
)

// Subscription is a live registration of a callback on a Signal.
// Unsubscribe removes it; after removal (or signal disposal) the
// callback is never invoked again.
type Subscription[T any] struct {
	id       uint64
	fn       func(T)
	complete func()
	signal   *Signal[T]
}

// Unsubscribe removes the subscription from its signal.
// It is safe to call more than once.
func (s *Subscription[T]) Unsubscribe() {
	if s.signal != nil {
		s.signal.unsubscribe(s.id)
	}
}

// subscribeConfig holds per-subscription options.
type subscribeConfig struct {
	replay   bool
	complete func()
}

// SubscribeOption configures a Subscribe call.
type SubscribeOption func(*subscribeConfig)

// WithReplay delivers the signal's current value to the callback
// immediately (synchronously, before Subscribe returns), then future
// changes. Bridges use this to seed their local value on connect.
func WithReplay() SubscribeOption {
	return func(c *subscribeConfig) {
		c.replay = true
	}
}

// OnComplete registers a callback invoked when the signal is disposed.
// Disposal is a completion, not an error: subscribers that outlive the
// signal are told the stream ended and nothing more.
func OnComplete(fn func()) SubscribeOption {
	return func(c *subscribeConfig) {
		c.complete = fn
	}
}

// Signal is a mutable, observable value container.
//
// A write that equals the current value (by the signal's equality
// function) is a no-op: no notification is emitted. Subscribers are
// notified synchronously, in subscription order, with the new value.
type Signal[T any] struct {
	id uint64

	// mu protects value, subs, and closed.
	mu sync.RWMutex

	// value is the current signal value.
	value T

	// subs are live subscriptions, in subscription order.
	// Order is part of the delivery contract.
	subs []*Subscription[T]

	// closed is set by Dispose. Writes to a closed signal are no-ops.
	closed bool

	// equal is the equality function used for write deduplication.
	// If nil, defaultEquals is used.
	equal func(T, T) bool
}

// NewSignal creates a new signal with the given initial value.
func NewSignal[T any](initial T) *Signal[T] {
	return &Signal[T]{
		id:    nextID(),
		value: initial,
	}
}

// WithEquals returns the signal configured with a custom equality
// function. Useful where reflect.DeepEqual is too expensive or has the
// wrong semantics for T.
func (s *Signal[T]) WithEquals(fn func(T, T) bool) *Signal[T] {
	s.equal = fn
	return s
}

// ID returns the unique identifier for this signal.
func (s *Signal[T]) ID() uint64 {
	return s.id
}

// Get returns the current value. O(1), no side effects.
func (s *Signal[T]) Get() T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value
}

// Set updates the value and notifies subscribers if it changed.
// Setting an equal value is a no-op. Setting a disposed signal is a
// no-op as well (the notification channel is closed).
func (s *Signal[T]) Set(value T) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	changed := !s.equals(s.value, value)
	if changed {
		s.value = value
	}
	// Copy before notify so callbacks run without the lock held.
	var subs []*Subscription[T]
	if changed {
		subs = make([]*Subscription[T], len(s.subs))
		copy(subs, s.subs)
	}
	s.mu.Unlock()

	if changed {
		for _, sub := range subs {
			sub.fn(value)
		}
	}
}

// Emit is an alias for Set.
func (s *Signal[T]) Emit(value T) {
	s.Set(value)
}

// Update atomically reads and updates the value.
// The function receives the current value and returns the new one.
func (s *Signal[T]) Update(fn func(T) T) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	newValue := fn(s.value)
	changed := !s.equals(s.value, newValue)
	if changed {
		s.value = newValue
	}
	var subs []*Subscription[T]
	if changed {
		subs = make([]*Subscription[T], len(s.subs))
		copy(subs, s.subs)
	}
	s.mu.Unlock()

	if changed {
		for _, sub := range subs {
			sub.fn(newValue)
		}
	}
}

// Subscribe registers a callback invoked on every change, in
// subscription order. With WithReplay the current value is delivered
// immediately. Subscribing to a disposed signal invokes the OnComplete
// callback (if any) and returns an inert subscription.
func (s *Signal[T]) Subscribe(fn func(T), opts ...SubscribeOption) *Subscription[T] {
	var cfg subscribeConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		if cfg.complete != nil {
			cfg.complete()
		}
		return &Subscription[T]{id: nextID()}
	}
	sub := &Subscription[T]{
		id:       nextID(),
		fn:       fn,
		complete: cfg.complete,
		signal:   s,
	}
	s.subs = append(s.subs, sub)
	current := s.value
	s.mu.Unlock()

	if cfg.replay {
		fn(current)
	}
	return sub
}

// unsubscribe removes a subscription by ID, preserving the order of
// the remaining subscriptions.
func (s *Signal[T]) unsubscribe(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, sub := range s.subs {
		if sub.id == id {
			s.subs = append(s.subs[:i], s.subs[i+1:]...)
			return
		}
	}
}

// Dispose closes the notification channel. Subscribers receive their
// OnComplete callback (in subscription order), not an error. Further
// writes become no-ops. Dispose is idempotent.
func (s *Signal[T]) Dispose() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	subs := s.subs
	s.subs = nil
	s.mu.Unlock()

	for _, sub := range subs {
		if sub.complete != nil {
			sub.complete()
		}
	}
}

// Disposed reports whether the signal has been disposed.
func (s *Signal[T]) Disposed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}

// Readable returns a read-only view of this signal.
func (s *Signal[T]) Readable() ReadableSignal[T] {
	return ReadableSignal[T]{src: s}
}

// WatchAny implements AnyWatcher: it subscribes with replay and
// delivers values type-erased. Hosts use this to observe signals of
// unknown element type.
func (s *Signal[T]) WatchAny(fn func(any)) (stop func()) {
	sub := s.Subscribe(func(v T) { fn(v) }, WithReplay())
	return sub.Unsubscribe
}

// equals checks two values with the configured equality function.
func (s *Signal[T]) equals(a, b T) bool {
	if s.equal != nil {
		return s.equal(a, b)
	}
	return defaultEquals(a, b)
}

// AnyWatcher is the type-erased observation surface hosts consume:
// "call this callback on change" with the current value replayed
// first. The returned stop function cancels the watch.
type AnyWatcher interface {
	WatchAny(fn func(any)) (stop func())
}

// defaultEquals provides type-appropriate equality checking.
// Uses == for builtin comparable types and reflect.DeepEqual for
// everything else.
func defaultEquals[T any](a, b T) bool {
	switch av := any(a).(type) {
	case int:
		return av == any(b).(int)
	case int8:
		return av == any(b).(int8)
	case int16:
		return av == any(b).(int16)
	case int32:
		return av == any(b).(int32)
	case int64:
		return av == any(b).(int64)
	case uint:
		return av == any(b).(uint)
	case uint8:
		return av == any(b).(uint8)
	case uint16:
		return av == any(b).(uint16)
	case uint32:
		return av == any(b).(uint32)
	case uint64:
		return av == any(b).(uint64)
	case float32:
		return av == any(b).(float32)
	case float64:
		return av == any(b).(float64)
	case string:
		return av == any(b).(string)
	case bool:
		return av == any(b).(bool)
	default:
		// Slices, maps, structs, pointers.
		return reflect.DeepEqual(a, b)
	}
}
