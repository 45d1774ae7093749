package trinity

import (
	"sync"
	"testing"
)

// recorder collects delivered values for assertions.
type recorder[T any] struct {
	mu        sync.Mutex
	values    []T
	completed int
}

func (r *recorder[T]) add(v T) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.values = append(r.values, v)
}

func (r *recorder[T]) complete() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.completed++
}

func (r *recorder[T]) got() []T {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]T, len(r.values))
	copy(out, r.values)
	return out
}

func (r *recorder[T]) completions() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.completed
}

func TestSignalBasic(t *testing.T) {
	count := NewSignal(0)

	if count.Get() != 0 {
		t.Errorf("expected initial value 0, got %d", count.Get())
	}

	count.Set(5)
	if count.Get() != 5 {
		t.Errorf("expected value 5, got %d", count.Get())
	}

	count.Update(func(n int) int { return n * 2 })
	if count.Get() != 10 {
		t.Errorf("expected value 10, got %d", count.Get())
	}
}

func TestSignalDedupScenario(t *testing.T) {
	// Write 0 -> no notification; 1 -> one; 1 -> none; 2 -> one.
	count := NewSignal(0)
	rec := &recorder[int]{}
	count.Subscribe(rec.add)

	count.Set(0)
	if n := len(rec.got()); n != 0 {
		t.Errorf("writing the current value should not notify, got %d notifications", n)
	}

	count.Set(1)
	count.Set(1)
	count.Set(2)

	values := rec.got()
	if len(values) != 2 || values[0] != 1 || values[1] != 2 {
		t.Errorf("expected notifications [1 2], got %v", values)
	}
}

func TestSignalSubscriptionOrder(t *testing.T) {
	sig := NewSignal("")
	var order []int

	sig.Subscribe(func(string) { order = append(order, 1) })
	sig.Subscribe(func(string) { order = append(order, 2) })
	sig.Subscribe(func(string) { order = append(order, 3) })

	sig.Set("x")
	if len(order) != 3 || order[0] != 1 || order[1] != 2 || order[2] != 3 {
		t.Errorf("expected delivery in subscription order [1 2 3], got %v", order)
	}
}

func TestSignalUnsubscribe(t *testing.T) {
	sig := NewSignal(0)
	rec := &recorder[int]{}
	sub := sig.Subscribe(rec.add)

	sig.Set(1)
	sub.Unsubscribe()
	sig.Set(2)

	values := rec.got()
	if len(values) != 1 || values[0] != 1 {
		t.Errorf("expected only [1] after unsubscribe, got %v", values)
	}

	// Double unsubscribe is safe.
	sub.Unsubscribe()
}

func TestSignalReplay(t *testing.T) {
	sig := NewSignal(7)
	rec := &recorder[int]{}

	sig.Subscribe(rec.add, WithReplay())
	values := rec.got()
	if len(values) != 1 || values[0] != 7 {
		t.Errorf("expected immediate replay of current value [7], got %v", values)
	}

	sig.Set(8)
	values = rec.got()
	if len(values) != 2 || values[1] != 8 {
		t.Errorf("expected replay then change [7 8], got %v", values)
	}
}

func TestSignalDispose(t *testing.T) {
	sig := NewSignal(0)
	rec := &recorder[int]{}
	sig.Subscribe(rec.add, OnComplete(rec.complete))

	sig.Dispose()
	if rec.completions() != 1 {
		t.Errorf("expected 1 completion on dispose, got %d", rec.completions())
	}
	if !sig.Disposed() {
		t.Error("expected Disposed() to report true")
	}

	// Writes after dispose are no-ops: no delivery, value unchanged.
	sig.Set(42)
	if n := len(rec.got()); n != 0 {
		t.Errorf("disposed signal must not deliver, got %d notifications", n)
	}
	if sig.Get() != 0 {
		t.Errorf("disposed signal value should be unchanged, got %d", sig.Get())
	}

	// Double dispose is safe and does not re-complete.
	sig.Dispose()
	if rec.completions() != 1 {
		t.Errorf("double dispose must not re-complete, got %d", rec.completions())
	}
}

func TestSignalSubscribeAfterDispose(t *testing.T) {
	sig := NewSignal(0)
	sig.Dispose()

	rec := &recorder[int]{}
	sub := sig.Subscribe(rec.add, OnComplete(rec.complete))
	if rec.completions() != 1 {
		t.Errorf("subscribing a disposed signal should complete immediately, got %d", rec.completions())
	}
	sub.Unsubscribe() // inert, must not panic
}

func TestSignalWithEquals(t *testing.T) {
	// Length-based equality: same-length writes are deduped.
	sig := NewSignal("go").WithEquals(func(a, b string) bool {
		return len(a) == len(b)
	})
	rec := &recorder[string]{}
	sig.Subscribe(rec.add)

	sig.Set("hi") // same length, deduped
	if n := len(rec.got()); n != 0 {
		t.Errorf("custom equality should dedup, got %d notifications", n)
	}

	sig.Set("gopher")
	if n := len(rec.got()); n != 1 {
		t.Errorf("expected 1 notification, got %d", n)
	}
}

func TestSignalDeepEquality(t *testing.T) {
	type point struct{ X, Y int }
	sig := NewSignal(point{1, 2})
	rec := &recorder[point]{}
	sig.Subscribe(rec.add)

	sig.Set(point{1, 2}) // structurally equal
	if n := len(rec.got()); n != 0 {
		t.Errorf("structurally equal struct should dedup, got %d notifications", n)
	}

	sig.Set(point{3, 4})
	if n := len(rec.got()); n != 1 {
		t.Errorf("expected 1 notification, got %d", n)
	}
}

func TestSignalWatchAny(t *testing.T) {
	sig := NewSignal(1)
	var seen []any
	stop := sig.WatchAny(func(v any) { seen = append(seen, v) })

	sig.Set(2)
	stop()
	sig.Set(3)

	if len(seen) != 2 || seen[0] != 1 || seen[1] != 2 {
		t.Errorf("expected replayed [1 2], got %v", seen)
	}
}
