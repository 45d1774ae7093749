package trinity

import (
	"errors"
	"testing"
)

func TestStreamSignalSequence(t *testing.T) {
	values := make(chan int)
	errs := make(chan error)
	s := NewStreamSignal(values, errs)

	if !s.Get().IsLoading() {
		t.Errorf("expected Loading on construction, got %v", s.Get().State())
	}

	rec := &recorder[AsyncValue[int]]{}
	s.Subscribe(rec.add)

	values <- 1
	values <- 2
	waitFor(t, func() bool { return len(rec.got()) >= 2 })

	states := rec.got()
	if v, _ := states[0].Value(); v != 1 {
		t.Errorf("expected Data(1), got %v", states[0])
	}
	if v, _ := states[1].Value(); v != 2 {
		t.Errorf("expected Data(2), got %v", states[1])
	}

	s.Dispose()
}

func TestStreamSignalErrorIsNonTerminating(t *testing.T) {
	values := make(chan string)
	errs := make(chan error)
	s := NewStreamSignal(values, errs)

	streamErr := errors.New("transient")
	errs <- streamErr
	waitFor(t, func() bool { return s.Get().IsError() })

	if !errors.Is(s.Get().Err(), streamErr) {
		t.Errorf("expected stream error, got %v", s.Get().Err())
	}

	// The signal stays alive and keeps receiving elements.
	values <- "still here"
	waitFor(t, func() bool { return s.Get().IsData() })
	if v, _ := s.Get().Value(); v != "still here" {
		t.Errorf("expected recovery to Data, got %v", s.Get())
	}

	s.Dispose()
}

func TestStreamSignalDisposeOrdering(t *testing.T) {
	values := make(chan int)
	s := NewStreamSignal(values, nil)

	rec := &recorder[AsyncValue[int]]{}
	s.Subscribe(rec.add, OnComplete(rec.complete))

	// Dispose cancels the pump before closing the channel, so nothing
	// sent afterwards is delivered.
	s.Dispose()
	if rec.completions() != 1 {
		t.Errorf("expected completion on dispose, got %d", rec.completions())
	}

	select {
	case values <- 99:
		t.Error("pump should no longer consume after dispose")
	default:
	}
	if n := len(rec.got()); n != 0 {
		t.Errorf("no emission may arrive after dispose, got %d", n)
	}

	// Double dispose is safe.
	s.Dispose()
}

func TestStreamSignalSourceTermination(t *testing.T) {
	values := make(chan int, 1)
	s := NewStreamSignal(values, nil)

	values <- 5
	close(values)
	waitFor(t, func() bool { return s.Get().IsData() })

	// The signal holds the last value; disposal still works cleanly.
	if v, _ := s.Get().Value(); v != 5 {
		t.Errorf("expected last value 5, got %v", s.Get())
	}
	s.Dispose()
}

func TestStreamSignalResubscribe(t *testing.T) {
	first := make(chan int, 1)
	s := NewStreamSignal(first, nil)

	first <- 1
	waitFor(t, func() bool { return s.Get().IsData() })

	second := make(chan int, 1)
	s.Resubscribe(second, nil)
	if !s.Get().IsLoading() {
		t.Errorf("expected Loading after resubscribe, got %v", s.Get().State())
	}

	second <- 2
	waitFor(t, func() bool { return s.Get().IsData() })
	if v, _ := s.Get().Value(); v != 2 {
		t.Errorf("expected Data(2) from the new sequence, got %v", s.Get())
	}

	s.Dispose()

	// Resubscribe after dispose is a no-op.
	s.Resubscribe(make(chan int), nil)
}
