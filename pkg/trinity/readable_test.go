package trinity

import "testing"

func TestReadableSignalDelegation(t *testing.T) {
	src := NewSignal(10)
	view := src.Readable()

	if view.Get() != 10 {
		t.Errorf("expected 10, got %d", view.Get())
	}

	rec := &recorder[int]{}
	view.Subscribe(rec.add)
	src.Set(20)

	values := rec.got()
	if len(values) != 1 || values[0] != 20 {
		t.Errorf("expected [20] through the view, got %v", values)
	}
	if view.ID() != src.ID() {
		t.Errorf("view ID %d should delegate to source ID %d", view.ID(), src.ID())
	}
}

func TestReadableSignalEquality(t *testing.T) {
	src := NewSignal(1)
	other := NewSignal(1)

	a := src.Readable()
	b := src.Readable()
	c := other.Readable()

	if a != b {
		t.Error("two views over the same signal should compare equal")
	}
	if a == c {
		t.Error("views over different signals should not compare equal")
	}
}

func TestNullableSignal(t *testing.T) {
	name := NewNullableSignal[string]()

	if name.HasValue() {
		t.Error("new nullable signal should be absent")
	}
	if got := name.ValueOr("fallback"); got != "fallback" {
		t.Errorf("expected fallback, got %q", got)
	}

	rec := &recorder[*string]{}
	name.Subscribe(rec.add)

	name.SetValue("ada")
	if !name.HasValue() {
		t.Error("expected value present after SetValue")
	}
	if got := name.ValueOr(""); got != "ada" {
		t.Errorf("expected ada, got %q", got)
	}

	// Same pointee dedups even across distinct pointers.
	name.SetValue("ada")
	if n := len(rec.got()); n != 1 {
		t.Errorf("equal pointee should dedup, got %d notifications", n)
	}

	name.Clear()
	if name.HasValue() {
		t.Error("expected absent after Clear")
	}
	if n := len(rec.got()); n != 2 {
		t.Errorf("expected 2 notifications, got %d", n)
	}
}
