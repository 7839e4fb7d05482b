package session

import (
	"context"
	"sync"
	"time"
)

// MemoryBackend keeps sessions in process memory.
type MemoryBackend struct {
	mu   sync.RWMutex
	rows map[string]Tokens
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{rows: make(map[string]Tokens)}
}

func (m *MemoryBackend) Load(_ context.Context, sessionID string) (Tokens, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.rows[sessionID]
	if !ok {
		return Tokens{}, ErrNoSession
	}
	return t, nil
}

func (m *MemoryBackend) Save(_ context.Context, sessionID string, t Tokens) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[sessionID] = t
	return nil
}

func (m *MemoryBackend) Delete(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rows, sessionID)
	return nil
}

func (m *MemoryBackend) Close() error { return nil }

// MemoryStore is a single-session TokenStore, handy for tests.
func MemoryStore() TokenStore {
	return Bind(NewMemoryBackend(), "default")
}

func (m *MemoryBackend) HealthCheck(context.Context, time.Duration) error { return nil }
