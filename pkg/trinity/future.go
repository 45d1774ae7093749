package trinity

import (
	"context"
	"runtime/debug"
	"sync/atomic"
)

// FutureSignal wraps a zero-argument asynchronous producer and maps
// its lifecycle into AsyncValue states. The initial value is
// InitialData (not yet fetched).
//
// Fetch emits Loading, runs the producer in a goroutine, then emits
// Data on success or Error on failure. A producer failure is captured
// as state and never propagated to Fetch's caller.
//
// Concurrent fetches are fenced by a sequence number: a completion
// belonging to a superseded fetch is dropped instead of racing
// last-write-wins with the newer one.
type FutureSignal[T any] struct {
	*Signal[AsyncValue[T]]

	producer func(context.Context) (T, error)
	seq      atomic.Uint64
}

// NewFutureSignal creates a FutureSignal over the given producer.
// No fetch is started; call Fetch.
func NewFutureSignal[T any](producer func(context.Context) (T, error)) *FutureSignal[T] {
	return &FutureSignal[T]{
		Signal:   NewSignal(InitialData[T]()),
		producer: producer,
	}
}

// Fetch starts a producer run. It returns immediately; the result
// arrives as a Data or Error emission. A fetch superseded by a newer
// Fetch call has its completion discarded.
//
// A producer that never completes leaves the signal parked in Loading;
// there is no timeout here. Pass a context with a deadline if the
// producer honors one.
func (f *FutureSignal[T]) Fetch(ctx context.Context) {
	seq := f.seq.Add(1)
	f.Set(Loading[T]())

	go func() {
		value, err := f.runProducer(ctx)

		// Fence: a newer fetch owns the signal now. The check and the
		// write below are not atomic, so a fetch starting in this
		// window can see its Loading briefly overwritten by this
		// result; its own completion still passes the fence and wins.
		if f.seq.Load() != seq {
			return
		}
		if err != nil {
			f.Set(Failure[T](err, string(debug.Stack())))
			return
		}
		f.Set(Data(value))
	}()
}

// runProducer invokes the producer, converting a panic into an error
// so a misbehaving producer cannot take down the host.
func (f *FutureSignal[T]) runProducer(ctx context.Context) (value T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &ProducerPanicError{Value: r}
		}
	}()
	return f.producer(ctx)
}
