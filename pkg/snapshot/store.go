// Package snapshot persists node state across sessions. Nodes opt in
// by implementing Snapshotter; Capture and Restore walk a scope and
// move each opted-in node's state through a Store.
package snapshot

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/trinity-go/trinity/pkg/trinity"
)

// ErrNotFound is returned by Store.Get for missing keys.
var ErrNotFound = errors.New("snapshot: not found")

// Snapshotter is implemented by nodes that can persist their state.
// Snapshot runs after the node is attached; RestoreSnapshot runs after
// registration, before MarkReady, so restored values flow through the
// node's signals like ordinary writes.
type Snapshotter interface {
	Snapshot() ([]byte, error)
	RestoreSnapshot(data []byte) error
}

// Store is a keyed blob store for snapshots.
type Store interface {
	Put(ctx context.Context, key string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}

// MemoryStore is an in-memory Store, useful for tests and single
// process deployments.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

// Put stores a copy of data under key.
func (m *MemoryStore) Put(ctx context.Context, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), data...)
	return nil
}

// Get returns a copy of the data under key, or ErrNotFound.
func (m *MemoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), data...), nil
}

// Delete removes the data under key. Missing keys are not an error.
func (m *MemoryStore) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// Len returns the number of stored snapshots.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}

// key builds the store key for a node.
func key(prefix string, kind trinity.Kind) string {
	return prefix + string(kind)
}

// Capture writes a snapshot of every Snapshotter node in the scope,
// keyed "<prefix><kind>". Nodes that don't implement Snapshotter are
// skipped.
func Capture(ctx context.Context, store Store, scope *trinity.Scope, prefix string) error {
	for _, n := range scope.Nodes() {
		snap, ok := n.(Snapshotter)
		if !ok {
			continue
		}
		data, err := snap.Snapshot()
		if err != nil {
			return fmt.Errorf("snapshot %q: %w", n.Kind(), err)
		}
		if err := store.Put(ctx, key(prefix, n.Kind()), data); err != nil {
			return fmt.Errorf("snapshot put %q: %w", n.Kind(), err)
		}
	}
	return nil
}

// Restore feeds stored snapshots back into every Snapshotter node in
// the scope. Nodes with no stored snapshot keep their initial state.
func Restore(ctx context.Context, store Store, scope *trinity.Scope, prefix string) error {
	for _, n := range scope.Nodes() {
		snap, ok := n.(Snapshotter)
		if !ok {
			continue
		}
		data, err := store.Get(ctx, key(prefix, n.Kind()))
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return fmt.Errorf("snapshot get %q: %w", n.Kind(), err)
		}
		if err := snap.RestoreSnapshot(data); err != nil {
			return fmt.Errorf("snapshot restore %q: %w", n.Kind(), err)
		}
	}
	return nil
}
