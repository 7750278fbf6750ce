package creds

import (
	"context"
	"fmt"
	"sync"
)

// Store persists credential snapshots. Implementations only need three
// operations: append a new snapshot, list keys, read one payload back.
// Snapshots are never mutated or deleted by this package; retention is
// an operator concern.
type Store interface {
	Put(ctx context.Context, key, payload string) error
	Keys(ctx context.Context) ([]string, error)
	Get(ctx context.Context, key string) (string, error)
}

// MemStore is an in-memory Store used in tests and as a scratch store
// for processes that only rely on the env-seeded bootstrap credential.
type MemStore struct {
	mu   sync.RWMutex
	data map[string]string
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{data: make(map[string]string)}
}

func (s *MemStore) Put(_ context.Context, key, payload string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = payload
	return nil
}

func (s *MemStore) Keys(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	return keys, nil
}

func (s *MemStore) Get(_ context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	payload, ok := s.data[key]
	if !ok {
		return "", fmt.Errorf("memstore: no snapshot %q", key)
	}
	return payload, nil
}
