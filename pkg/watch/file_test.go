package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func waitFor(t *testing.T, pred func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if pred() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not reached before deadline")
}

func TestFileWatcherInitialContents(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("a: 1"), 0644); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sig, err := NewFileWatcher(path).Signal(ctx)
	if err != nil {
		t.Fatalf("signal: %v", err)
	}
	defer sig.Dispose()

	waitFor(t, func() bool { return sig.Get().IsData() })
	if v, _ := sig.Get().Value(); string(v) != "a: 1" {
		t.Errorf("expected initial contents, got %q", v)
	}
}

func TestFileWatcherEmitsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("v1"), 0644); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sig, err := NewFileWatcher(path).Signal(ctx)
	if err != nil {
		t.Fatalf("signal: %v", err)
	}
	defer sig.Dispose()

	waitFor(t, func() bool { return sig.Get().IsData() })

	if err := os.WriteFile(path, []byte("v2"), 0644); err != nil {
		t.Fatal(err)
	}
	waitFor(t, func() bool {
		v, ok := sig.Get().Value()
		return ok && string(v) == "v2"
	})
}

func TestFileWatcherMissingFile(t *testing.T) {
	_, _, err := NewFileWatcher(filepath.Join(t.TempDir(), "nope")).Watch(context.Background())
	if err == nil {
		t.Error("expected error for missing file")
	}
}

func TestFileWatcherCancelEndsSequence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("v1"), 0644); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	values, _, err := NewFileWatcher(path).Watch(ctx)
	if err != nil {
		t.Fatalf("watch: %v", err)
	}

	<-values // initial contents
	cancel()

	waitFor(t, func() bool {
		select {
		case _, ok := <-values:
			return !ok
		default:
			return false
		}
	})
}
