package trinity

import (
	"context"
	"errors"
	"testing"
)

// hookNode records lifecycle hook invocations and owns a configurable
// set of signals and bridges for ordering assertions.
type hookNode struct {
	BaseNode
	kind  Kind
	hooks *[]string
}

func (n *hookNode) Kind() Kind { return n.kind }

func (n *hookNode) OnInit()    { *n.hooks = append(*n.hooks, "init:"+string(n.kind)) }
func (n *hookNode) OnReady()   { *n.hooks = append(*n.hooks, "ready:"+string(n.kind)) }
func (n *hookNode) OnDispose() { *n.hooks = append(*n.hooks, "dispose:"+string(n.kind)) }

// trackedDisposable appends a marker when disposed.
type trackedDisposable struct {
	name string
	log  *[]string
}

func (d *trackedDisposable) Dispose() { *d.log = append(*d.log, d.name) }

func TestNodeAttachOnce(t *testing.T) {
	var hooks []string
	scope := NewScope(nil)
	other := NewScope(nil)
	node := &hookNode{kind: "a", hooks: &hooks}

	if err := scope.Register(node); err != nil {
		t.Fatalf("register: %v", err)
	}
	if node.State() != StateAttached {
		t.Errorf("expected Attached, got %v", node.State())
	}
	if node.Scope() != scope {
		t.Error("expected scope back-reference to be set")
	}

	// A node attaches to at most one scope, exactly once.
	err := other.Register(node)
	if !errors.Is(err, ErrAlreadyAttached) {
		t.Errorf("expected ErrAlreadyAttached, got %v", err)
	}
}

func TestNodeReadyTransitions(t *testing.T) {
	var hooks []string
	node := &hookNode{kind: "a", hooks: &hooks}

	// Ready before attach is impossible.
	if err := node.MarkReady(); !errors.Is(err, ErrNotAttached) {
		t.Errorf("expected ErrNotAttached, got %v", err)
	}

	scope := NewScope(nil)
	if err := scope.Register(node); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := node.MarkReady(); err != nil {
		t.Fatalf("mark ready: %v", err)
	}
	if node.State() != StateReady {
		t.Errorf("expected Ready, got %v", node.State())
	}

	// OnReady runs exactly once.
	if err := node.MarkReady(); !errors.Is(err, ErrAlreadyReady) {
		t.Errorf("expected ErrAlreadyReady, got %v", err)
	}

	count := 0
	for _, h := range hooks {
		if h == "ready:a" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("expected exactly one OnReady, got %d", count)
	}
}

func TestNodeDisposalOrdering(t *testing.T) {
	// A node with two bridges and three signals: OnDispose runs only
	// after all five sub-resources finished their own disposal, bridges
	// first, then signals.
	var log []string
	var hooks []string

	scope := NewScope(nil)
	settings := newSettingsNode()
	if err := scope.Register(settings); err != nil {
		t.Fatalf("register settings: %v", err)
	}

	node := &hookNode{kind: "consumer", hooks: &hooks}
	b1 := NewBridgeSignal("settings", func(s *settingsNode) *Signal[string] { return s.Theme })
	b2 := NewTransformBridgeSignal(
		"settings",
		func(s *settingsNode) *Signal[[]string] { return s.Tags },
		func(tags []string) int { return len(tags) },
		nil,
	)
	s1 := &trackedDisposable{name: "s1", log: &log}
	s2 := &trackedDisposable{name: "s2", log: &log}
	s3 := &trackedDisposable{name: "s3", log: &log}
	node.Own(b1, b2, s1, s2, s3)

	if err := scope.Register(node); err != nil {
		t.Fatalf("register consumer: %v", err)
	}

	// onInit runs only after the declared bridges are connected.
	if got := b1.Get(); got != "light" {
		t.Errorf("bridge should be connected before OnInit, got %q", got)
	}
	if len(hooks) == 0 || hooks[len(hooks)-1] != "init:consumer" {
		t.Errorf("expected init hook recorded, got %v", hooks)
	}

	if err := scope.Unregister("consumer"); err != nil {
		t.Fatalf("unregister: %v", err)
	}

	// Signals disposed in adoption order, then OnDispose.
	if len(log) != 3 || log[0] != "s1" || log[1] != "s2" || log[2] != "s3" {
		t.Errorf("expected signal disposal order [s1 s2 s3], got %v", log)
	}
	if hooks[len(hooks)-1] != "dispose:consumer" {
		t.Errorf("OnDispose must run last, got %v", hooks)
	}
	if b1.local.Disposed() != true {
		t.Error("bridge must be disposed before OnDispose runs")
	}
	if node.State() != StateDisposed {
		t.Errorf("expected Disposed, got %v", node.State())
	}
}

func TestNodeBuiltinSignalsDisposed(t *testing.T) {
	var hooks []string
	scope := NewScope(nil)
	node := &hookNode{kind: "a", hooks: &hooks}
	if err := scope.Register(node); err != nil {
		t.Fatalf("register: %v", err)
	}

	loading := node.IsLoading()
	errSig := node.Err()

	if err := scope.Unregister("a"); err != nil {
		t.Fatalf("unregister: %v", err)
	}
	if !loading.Disposed() || !errSig.Disposed() {
		t.Error("built-in signals must be disposed with the node")
	}
}

func TestNodeLateBridgeConnectsImmediately(t *testing.T) {
	var hooks []string
	scope := NewScope(nil)
	settings := newSettingsNode()
	if err := scope.Register(settings); err != nil {
		t.Fatalf("register settings: %v", err)
	}
	node := &hookNode{kind: "late", hooks: &hooks}
	if err := scope.Register(node); err != nil {
		t.Fatalf("register: %v", err)
	}

	// Bridges adopted after attachment connect immediately.
	b := NewBridgeSignal("settings", func(s *settingsNode) *Signal[string] { return s.Theme })
	node.Own(b)
	if got := b.Get(); got != "light" {
		t.Errorf("late bridge should be connected, got %q", got)
	}
}

func TestNodeLoadingSuccess(t *testing.T) {
	var hooks []string
	node := &hookNode{kind: "a", hooks: &hooks}

	var observed []bool
	node.IsLoading().Subscribe(func(v bool) { observed = append(observed, v) })

	err := node.Loading(context.Background(), func(context.Context) error {
		if !node.IsLoading().Get() {
			t.Error("loading signal should be true while the operation runs")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("loading: %v", err)
	}
	if len(observed) != 2 || observed[0] != true || observed[1] != false {
		t.Errorf("expected loading sequence [true false], got %v", observed)
	}
	if node.Err().Get() != nil {
		t.Errorf("error signal should stay nil on success, got %v", node.Err().Get())
	}
}

func TestNodeLoadingFailure(t *testing.T) {
	// isLoading goes false -> true -> false; the error signal ends
	// holding E; the call re-raises E to its caller.
	var hooks []string
	node := &hookNode{kind: "a", hooks: &hooks}
	opErr := errors.New("E")

	if node.IsLoading().Get() {
		t.Error("loading should start false")
	}
	var observed []bool
	node.IsLoading().Subscribe(func(v bool) { observed = append(observed, v) })

	err := node.Loading(context.Background(), func(context.Context) error {
		return opErr
	})
	if !errors.Is(err, opErr) {
		t.Errorf("the failure must be re-raised to the caller, got %v", err)
	}
	if len(observed) != 2 || observed[0] != true || observed[1] != false {
		t.Errorf("expected loading sequence [true false], got %v", observed)
	}
	if node.Err().Get() != opErr {
		t.Errorf("error signal should hold the failure, got %v", node.Err().Get())
	}
}

func TestNodeLoadingFullScreen(t *testing.T) {
	var hooks []string
	node := &hookNode{kind: "a", hooks: &hooks}

	_ = node.Loading(context.Background(), func(context.Context) error {
		if !node.FullScreenLoading().Get() {
			t.Error("full-screen loading should be toggled")
		}
		if node.IsLoading().Get() {
			t.Error("the two indicators are mutually exclusive per call")
		}
		return nil
	}, FullScreen())

	if node.FullScreenLoading().Get() {
		t.Error("full-screen loading should be reset")
	}
}

func TestNodeLoadingResetOnPanic(t *testing.T) {
	var hooks []string
	node := &hookNode{kind: "a", hooks: &hooks}

	func() {
		defer func() { _ = recover() }()
		_ = node.Loading(context.Background(), func(context.Context) error {
			panic("op exploded")
		})
	}()

	if node.IsLoading().Get() {
		t.Error("loading signal must be reset on every exit path, including panic")
	}
}

func TestNodeLoadingWithoutIndicator(t *testing.T) {
	var hooks []string
	node := &hookNode{kind: "a", hooks: &hooks}

	var observed []bool
	node.IsLoading().Subscribe(func(v bool) { observed = append(observed, v) })

	_ = node.Loading(context.Background(), func(context.Context) error { return nil }, WithoutIndicator())
	if len(observed) != 0 {
		t.Errorf("no indicator should be toggled, got %v", observed)
	}
}
