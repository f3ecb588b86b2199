// Package store provides the key/value document store the repositories
// persist into. Values are opaque text blobs, one per logical collection.
package store

import (
	"context"
	"sync"
)

// Store keys, one per logical collection.
const (
	KeyMetadata      = "thesis:metadata"
	KeyChapters      = "thesis:chapters"
	KeyReferences    = "thesis:references"
	KeyCitationStyle = "thesis:citation_style"
)

// Store is a synchronous key to text-blob store. Get reports absence via the
// second return value, never as an error. No transactions and no multi-key
// write; callers own consistency across keys.
type Store interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Put(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// Memory is an in-memory Store for tests and ephemeral use.
type Memory struct {
	mu   sync.RWMutex
	data map[string]string
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{data: make(map[string]string)}
}

// Get returns the stored value for key, or ok=false if absent.
func (m *Memory) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok, nil
}

// Put stores value under key, replacing any prior value.
func (m *Memory) Put(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

// Delete removes key. Absent keys are a no-op.
func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}
