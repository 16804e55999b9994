package vecmap

import (
	"context"
	"fmt"
	"sync"
)

type inMemoryStore struct {
	mu        sync.RWMutex
	snapshots map[string][]byte
}

// NewInMemoryStore provides a Persist that keeps encoded snapshots in a map.
// Stored bytes are copied, so callers may reuse their buffers.
func NewInMemoryStore() Persist {
	return &inMemoryStore{snapshots: make(map[string][]byte)}
}

func (s *inMemoryStore) Store(_ context.Context, name string, encoded []byte) error {
	kept := append([]byte(nil), encoded...)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots[name] = kept
	return nil
}

func (s *inMemoryStore) Load(_ context.Context, name string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	encoded, ok := s.snapshots[name]
	if !ok {
		return nil, fmt.Errorf("snapshot %s: %w", name, ErrNotFound)
	}
	return encoded, nil
}
