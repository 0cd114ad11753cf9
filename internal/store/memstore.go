package store

import (
	"sync"

	"number-royale/internal/room"
)

// MemoryStore is the in-process room directory. Rooms are keyed by the
// externally supplied room id.
type MemoryStore struct {
	mu    sync.RWMutex
	rooms map[string]*room.Room
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		rooms: map[string]*room.Room{},
	}
}

func (m *MemoryStore) GetRoom(key string) (*room.Room, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.rooms[key]
	return r, ok
}

func (m *MemoryStore) SaveRoom(r *room.Room) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rooms[r.Key] = r
}

func (m *MemoryStore) DeleteRoom(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rooms, key)
}
