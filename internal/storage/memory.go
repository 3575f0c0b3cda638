package storage

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"
)

// MemoryStore is the in-process Store backend. Values are kept as encoded
// envelopes so reads return copies, never aliases of the written value.
type MemoryStore struct {
	mu    sync.RWMutex
	data  map[string][]byte
	lists map[string][]json.RawMessage
}

// NewMemoryStore creates an in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data:  make(map[string][]byte),
		lists: make(map[string][]json.RawMessage),
	}
}

func (m *MemoryStore) Get(_ context.Context, key string, dest interface{}) (time.Time, error) {
	m.mu.RLock()
	raw, ok := m.data[key]
	m.mu.RUnlock()

	if !ok {
		return time.Time{}, ErrNotFound
	}
	return decodeEntry(raw, dest)
}

func (m *MemoryStore) Set(_ context.Context, key string, value interface{}) error {
	raw, err := encodeEntry(value, time.Now())
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.data[key] = raw
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Keys(_ context.Context, prefix string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	keys := make([]string, 0)
	for k := range m.data {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	for k := range m.lists {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	return keys, nil
}

func (m *MemoryStore) Prepend(_ context.Context, key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.lists[key] = append([]json.RawMessage{raw}, m.lists[key]...)
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Close() error {
	return nil
}
