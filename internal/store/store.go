// Package store provides the key-value persistence every repository sits on.
// Each key holds one whole serialized collection.
package store

import (
	"context"
	"sync"
)

// Store is a flat key-value store. Get reports found=false for an absent key.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Unavailable is used when no persistent storage exists in the environment.
// Reads report absent keys and writes are dropped; it never fails.
type Unavailable struct{}

func (Unavailable) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }
func (Unavailable) Set(context.Context, string, []byte) error         { return nil }
func (Unavailable) Delete(context.Context, string) error              { return nil }
func (Unavailable) Close() error                                      { return nil }

// Memory keeps values in process memory.
type Memory struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemory constructs an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	value, ok := m.data[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), value...), true, nil
}

func (m *Memory) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), value...)
	return nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *Memory) Close() error { return nil }

type prefixed struct {
	next   Store
	prefix string
}

// WithPrefix namespaces every key with prefix before it reaches next.
func WithPrefix(next Store, prefix string) Store {
	if prefix == "" {
		return next
	}
	return &prefixed{next: next, prefix: prefix}
}

func (p *prefixed) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return p.next.Get(ctx, p.prefix+key)
}

func (p *prefixed) Set(ctx context.Context, key string, value []byte) error {
	return p.next.Set(ctx, p.prefix+key, value)
}

func (p *prefixed) Delete(ctx context.Context, key string) error {
	return p.next.Delete(ctx, p.prefix+key)
}

func (p *prefixed) Close() error { return p.next.Close() }
