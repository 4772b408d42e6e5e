package store

import (
	"context"
	"sync"
)

// Backend is durable key/value storage for snapshot slots. Load omits keys
// that were never written. Save writes every given slot.
type Backend interface {
	Load(ctx context.Context, keys []string) (map[string][]byte, error)
	Save(ctx context.Context, slots map[string][]byte) error
}

// MemoryBackend keeps slots in process memory. SaveErr, when set, is returned
// by every Save so callers can exercise persistence failures.
type MemoryBackend struct {
	mu      sync.Mutex
	slots   map[string][]byte
	SaveErr error
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{slots: map[string][]byte{}}
}

func (m *MemoryBackend) Load(_ context.Context, keys []string) (map[string][]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string][]byte, len(keys))
	for _, k := range keys {
		if v, ok := m.slots[k]; ok {
			out[k] = append([]byte(nil), v...)
		}
	}
	return out, nil
}

func (m *MemoryBackend) Save(_ context.Context, slots map[string][]byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveErr != nil {
		return m.SaveErr
	}
	if m.slots == nil {
		m.slots = map[string][]byte{}
	}
	for k, v := range slots {
		m.slots[k] = append([]byte(nil), v...)
	}
	return nil
}

// Raw returns the stored bytes of one slot.
func (m *MemoryBackend) Raw(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.slots[key]
	return v, ok
}
