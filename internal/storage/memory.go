package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// MemoryStore is an in-process BlobStore.
type MemoryStore struct {
	mu         sync.RWMutex
	containers map[string]map[string][]byte
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{containers: make(map[string]map[string][]byte)}
}

func (m *MemoryStore) Get(_ context.Context, container, blob string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.containers[container]
	if !ok {
		return nil, fmt.Errorf("container %q: %w", container, ErrNotFound)
	}
	b, ok := c[blob]
	if !ok {
		return nil, fmt.Errorf("blob %s/%s: %w", container, blob, ErrNotFound)
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out, nil
}

func (m *MemoryStore) Put(_ context.Context, container, blob string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.containers[container]
	if !ok {
		return fmt.Errorf("container %q: %w", container, ErrNotFound)
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	c[blob] = cp
	return nil
}

func (m *MemoryStore) List(_ context.Context, container string) ([]BlobInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.containers[container]
	if !ok {
		return nil, fmt.Errorf("container %q: %w", container, ErrNotFound)
	}
	out := make([]BlobInfo, 0, len(c))
	for name, b := range c {
		out = append(out, BlobInfo{Name: name, Size: int64(len(b))})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *MemoryStore) EnsureContainer(_ context.Context, container string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.containers[container]; ok {
		return false, nil
	}
	m.containers[container] = make(map[string][]byte)
	return true, nil
}

func (m *MemoryStore) URL(container, blob string) string {
	return "memory://" + container + "/" + blob
}
