package trinity

import (
	"runtime/debug"
	"sync"
)

// StreamSignal wraps an external asynchronous sequence and maps it
// into AsyncValue states: Loading on subscribe, Data per element,
// Error per sequence error (non-terminating - the signal stays alive
// for further elements until the sequence itself ends).
//
// The sequence is a value channel plus an optional error channel,
// matching producers like fsnotify (Events/Errors) or a ticker with a
// nil error channel. The pump stops when the value channel closes or
// the signal is disposed.
type StreamSignal[T any] struct {
	*Signal[AsyncValue[T]]

	mu       sync.Mutex
	stop     chan struct{}
	done     chan struct{}
	disposed bool
}

// NewStreamSignal creates a StreamSignal over the given channels and
// starts consuming immediately. It emits Loading first. errs may be
// nil when the sequence cannot fail.
func NewStreamSignal[T any](values <-chan T, errs <-chan error) *StreamSignal[T] {
	s := &StreamSignal[T]{
		Signal: NewSignal(Loading[T]()),
	}
	s.start(values, errs)
	return s
}

// Resubscribe cancels the current pump and subscribes to a new
// sequence, emitting Loading again first. It is a no-op on a disposed
// signal.
func (s *StreamSignal[T]) Resubscribe(values <-chan T, errs <-chan error) {
	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return
	}
	stop, done := s.stop, s.done
	s.mu.Unlock()

	close(stop)
	<-done

	s.Set(Loading[T]())
	s.start(values, errs)
}

// start launches the pump goroutine for a sequence.
func (s *StreamSignal[T]) start(values <-chan T, errs <-chan error) {
	s.mu.Lock()
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	stop, done := s.stop, s.done
	s.mu.Unlock()

	go s.pump(values, errs, stop, done)
}

// pump consumes the sequence until it ends or stop is closed.
func (s *StreamSignal[T]) pump(values <-chan T, errs <-chan error, stop, done chan struct{}) {
	defer close(done)

	for {
		select {
		case <-stop:
			return

		case v, ok := <-values:
			if !ok {
				// Sequence terminated.
				return
			}
			s.Set(Data(v))

		case err, ok := <-errs:
			if !ok {
				// Error channel closed; keep consuming values.
				errs = nil
				continue
			}
			if err != nil {
				s.Set(Failure[T](err, string(debug.Stack())))
			}
		}
	}
}

// Dispose cancels the underlying subscription, waits for the pump to
// exit, and only then closes the notification channel. The ordering
// guarantees no emission arrives after the channel is closed.
// Dispose is idempotent.
func (s *StreamSignal[T]) Dispose() {
	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return
	}
	s.disposed = true
	stop, done := s.stop, s.done
	s.mu.Unlock()

	close(stop)
	<-done

	s.Signal.Dispose()
}
