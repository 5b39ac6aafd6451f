package localcache

import (
	"sort"
	"sync"
	"time"
)

type memoryEntry struct {
	value    string
	expireAt time.Time // zero = no expiry
}

// Memory is an in-process Cache. It is safe for concurrent use.
type Memory struct {
	mu    sync.Mutex
	items map[string]memoryEntry
	now   func() time.Time
}

var (
	_ Cache  = (*Memory)(nil)
	_ Locker = (*Memory)(nil)
)

// NewMemory returns an empty Memory cache, optionally seeded with items.
func NewMemory(seed map[string]string) *Memory {
	m := &Memory{items: make(map[string]memoryEntry, len(seed)), now: time.Now}
	for k, v := range seed {
		m.items[k] = memoryEntry{value: v}
	}
	return m
}

func (m *Memory) GetItem(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.live(key)
	return e.value, ok
}

func (m *Memory) SetItem(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = memoryEntry{value: value}
	return nil
}

func (m *Memory) RemoveItem(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, key)
	return nil
}

func (m *Memory) Keys() ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.items))
	for k := range m.items {
		if _, ok := m.live(k); ok {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (m *Memory) SetIfAbsent(key, value string, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.live(key); ok {
		return false, nil
	}
	e := memoryEntry{value: value}
	if ttl > 0 {
		e.expireAt = m.now().Add(ttl)
	}
	m.items[key] = e
	return true, nil
}

// live returns the entry for key, dropping it when expired. Caller holds mu.
func (m *Memory) live(key string) (memoryEntry, bool) {
	e, ok := m.items[key]
	if !ok {
		return memoryEntry{}, false
	}
	if !e.expireAt.IsZero() && !m.now().Before(e.expireAt) {
		delete(m.items, key)
		return memoryEntry{}, false
	}
	return e, true
}
