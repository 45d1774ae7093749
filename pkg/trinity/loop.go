package trinity

import (
	"log/slog"
	"sync/atomic"
)

// Loop is an explicit single-threaded event loop: callbacks dispatched
// from any goroutine run one at a time, in dispatch order, on the loop
// goroutine. Hosts funnel all signal mutation through a Loop to get
// the package's ordering guarantees (synchronous, subscription-ordered
// fan-out within one logical tick) without further synchronization.
type Loop struct {
	id uint64

	dispatch chan func()
	done     chan struct{}
	finished chan struct{}

	started atomic.Bool
	stopped atomic.Bool

	logger *slog.Logger
}

// NewLoop creates a loop with the given dispatch queue capacity.
// A nil logger falls back to slog.Default.
func NewLoop(queueSize int, logger *slog.Logger) *Loop {
	if queueSize <= 0 {
		queueSize = 256
	}
	if logger == nil {
		logger = slog.Default()
	}
	l := &Loop{
		id:       nextID(),
		dispatch: make(chan func(), queueSize),
		done:     make(chan struct{}),
		finished: make(chan struct{}),
	}
	l.logger = logger.With("loop_id", l.id)
	return l
}

// Start launches the loop goroutine. Calling Start twice, or after
// Stop, is a no-op.
func (l *Loop) Start() {
	if l.stopped.Load() {
		return
	}
	if l.started.Swap(true) {
		return
	}
	go l.run()
}

// run processes dispatched callbacks until Stop.
func (l *Loop) run() {
	defer close(l.finished)
	for {
		select {
		case fn := <-l.dispatch:
			fn()
		case <-l.done:
			// Drain whatever was queued before the stop, then exit.
			for {
				select {
				case fn := <-l.dispatch:
					fn()
				default:
					return
				}
			}
		}
	}
}

// Dispatch queues a callback to run on the loop. Safe to call from any
// goroutine; this is the correct way to fold asynchronous results back
// into signal state. A full queue drops the callback with a warning
// rather than blocking the producer.
func (l *Loop) Dispatch(fn func()) {
	if l.stopped.Load() {
		return
	}
	select {
	case l.dispatch <- fn:
	case <-l.done:
		// Loop is stopping, discard.
	default:
		l.logger.Warn("dispatch queue full, discarding callback")
	}
}

// Invoke runs a callback on the loop and waits for it to finish.
// If the loop stops before the callback runs, Invoke returns without
// executing it.
func (l *Loop) Invoke(fn func()) {
	if l.stopped.Load() {
		return
	}
	ran := make(chan struct{})
	select {
	case l.dispatch <- func() {
		fn()
		close(ran)
	}:
	case <-l.done:
		return
	}
	select {
	case <-ran:
	case <-l.finished:
	}
}

// Stop shuts the loop down after draining queued callbacks and waits
// for the loop goroutine to exit. Idempotent.
func (l *Loop) Stop() {
	if l.stopped.Swap(true) {
		return
	}
	close(l.done)
	if l.started.Load() {
		<-l.finished
	} else {
		close(l.finished)
	}
}
