package history

import (
	"context"
	"sync"
)

// MemoryStore keeps the most recent summaries in a bounded ring.
type MemoryStore struct {
	mu    sync.Mutex
	buf   []Summary
	next  int
	count int
}

// NewMemoryStore returns a store holding at most capacity summaries.
func NewMemoryStore(capacity int) *MemoryStore {
	return &MemoryStore{buf: make([]Summary, max(capacity, 1))}
}

func (m *MemoryStore) Record(_ context.Context, s Summary) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.buf[m.next] = s
	m.next = (m.next + 1) % len(m.buf)
	m.count = min(m.count+1, len(m.buf))
	return nil
}

func (m *MemoryStore) Recent(_ context.Context, limit int) ([]Summary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := m.count
	if limit > 0 {
		n = min(n, limit)
	}
	out := make([]Summary, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, m.buf[(m.next-i+len(m.buf))%len(m.buf)])
	}
	return out, nil
}

func (m *MemoryStore) Close() error { return nil }

var _ Store = (*MemoryStore)(nil)
