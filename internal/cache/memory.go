package cache

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// Memory — кэш внутри процесса, используется по умолчанию и в тестах.
type Memory struct {
	mu         sync.RWMutex
	ttl        time.Duration
	generation int64
	entries    map[string]memoryEntry
	now        func() time.Time
}

var _ Store = (*Memory)(nil)

// NewMemory создаёт кэш, ttl <= 0 означает хранение до инвалидации.
func NewMemory(ttl time.Duration) *Memory {
	return &Memory{
		ttl:     ttl,
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (e memoryEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if e.expired(m.now()) {
		m.evictExpired(key)
		return nil, false, nil
	}
	return e.value, true, nil
}

// evictExpired перепроверяет срок под блокировкой записи:
// между RUnlock и Lock ключ мог быть перезаписан свежим значением.
func (m *Memory) evictExpired(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.entries[key]; ok && e.expired(m.now()) {
		delete(m.entries, key)
	}
}

func (m *Memory) Generation(_ context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.generation, nil
}

func (m *Memory) Set(_ context.Context, generation int64, key string, value []byte) error {
	e := memoryEntry{value: append([]byte(nil), value...)}
	if m.ttl > 0 {
		e.expiresAt = m.now().Add(m.ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if generation != m.generation {
		return nil
	}
	m.entries[key] = e
	return nil
}

func (m *Memory) InvalidateAll(_ context.Context) error {
	m.mu.Lock()
	m.generation++
	m.entries = make(map[string]memoryEntry)
	m.mu.Unlock()
	return nil
}
