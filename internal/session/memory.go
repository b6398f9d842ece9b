package session

import (
	"context"
	"sync"

	"pv-query-router/internal/models"
)

type memoryEntry struct {
	mu      sync.Mutex
	session *models.Session
}

// MemoryStore is an in-process Store. Each session has its own lock, so
// writers on different ids never contend.
type MemoryStore struct {
	sessions sync.Map // id -> *memoryEntry
	maxTurns int
}

func NewMemoryStore(maxTurns int) *MemoryStore {
	return &MemoryStore{maxTurns: maxTurns}
}

func (m *MemoryStore) entry(id string) *memoryEntry {
	if e, ok := m.sessions.Load(id); ok {
		return e.(*memoryEntry)
	}
	e, _ := m.sessions.LoadOrStore(id, &memoryEntry{session: newSession(id)})
	return e.(*memoryEntry)
}

func (m *MemoryStore) GetOrCreate(ctx context.Context, id string) (*models.Session, error) {
	if id == "" {
		s := newSession("")
		m.sessions.Store(s.ID, &memoryEntry{session: s})
		return cloneSession(s), nil
	}
	e := m.entry(id)
	e.mu.Lock()
	defer e.mu.Unlock()
	return cloneSession(e.session), nil
}

func (m *MemoryStore) Append(ctx context.Context, id string, turn models.Turn) error {
	e := m.entry(id)
	e.mu.Lock()
	e.session.Append(turn, m.maxTurns)
	e.mu.Unlock()
	return nil
}

func (m *MemoryStore) History(ctx context.Context, id string, n int) ([]models.Turn, error) {
	v, ok := m.sessions.Load(id)
	if !ok {
		return []models.Turn{}, nil
	}
	e := v.(*memoryEntry)
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session.LastTurns(n), nil
}

func (m *MemoryStore) Clear(ctx context.Context, id string) (bool, error) {
	_, ok := m.sessions.LoadAndDelete(id)
	return ok, nil
}

// Len returns the number of live sessions.
func (m *MemoryStore) Len() int {
	n := 0
	m.sessions.Range(func(_, _ interface{}) bool {
		n++
		return true
	})
	return n
}
