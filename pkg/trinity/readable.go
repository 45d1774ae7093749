package trinity

// ReadableSignal is a non-owning, read-only view of a Signal. It
// exposes the same read and subscribe semantics as its source but no
// write capability, enforcing at the type level that observers cannot
// mutate state they did not create.
//
// Two ReadableSignal views over the same Signal compare equal with ==.
type ReadableSignal[T any] struct {
	src *Signal[T]
}

// Get returns the source signal's current value.
func (r ReadableSignal[T]) Get() T {
	return r.src.Get()
}

// ID returns the source signal's identifier.
func (r ReadableSignal[T]) ID() uint64 {
	return r.src.ID()
}

// Subscribe delegates to the source signal.
func (r ReadableSignal[T]) Subscribe(fn func(T), opts ...SubscribeOption) *Subscription[T] {
	return r.src.Subscribe(fn, opts...)
}

// WatchAny delegates to the source signal.
func (r ReadableSignal[T]) WatchAny(fn func(any)) (stop func()) {
	return r.src.WatchAny(fn)
}

// Disposed reports whether the source signal has been disposed.
func (r ReadableSignal[T]) Disposed() bool {
	return r.src.Disposed()
}

// NullableSignal is a Signal specialization whose value is T-or-absent,
// used for optional state. Absence is represented by a nil pointer;
// the dedup and notification contract is the Signal contract (two
// present values are compared by pointee).
type NullableSignal[T any] struct {
	*Signal[*T]
}

// NewNullableSignal creates a NullableSignal holding absent.
func NewNullableSignal[T any]() NullableSignal[T] {
	return NullableSignal[T]{Signal: NewSignal[*T](nil)}
}

// SetValue stores a present value.
func (n NullableSignal[T]) SetValue(v T) {
	n.Set(&v)
}

// Clear stores absent.
func (n NullableSignal[T]) Clear() {
	n.Set(nil)
}

// HasValue reports whether a value is present.
func (n NullableSignal[T]) HasValue() bool {
	return n.Get() != nil
}

// ValueOr returns the present value, or fallback when absent.
func (n NullableSignal[T]) ValueOr(fallback T) T {
	if p := n.Get(); p != nil {
		return *p
	}
	return fallback
}
