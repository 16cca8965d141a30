package progression

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore is an in-process Store. Blobs are copied on the way in and
// out.
type MemoryStore struct {
	mu    sync.Mutex
	blobs map[string][]byte
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: make(map[string][]byte)}
}

func (m *MemoryStore) Load(_ context.Context, userID string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	blob, ok := m.blobs[userID]
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), blob...), nil
}

func (m *MemoryStore) Save(_ context.Context, userID string, blob []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blobs[userID] = append([]byte(nil), blob...)
	return nil
}

// Users lists every user with a saved snapshot.
func (m *MemoryStore) Users(_ context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	users := make([]string, 0, len(m.blobs))
	for u := range m.blobs {
		users = append(users, u)
	}
	sort.Strings(users)
	return users, nil
}
