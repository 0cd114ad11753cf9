package room

import (
	"sync"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"number-royale/internal/config"
	"number-royale/internal/game"
	"number-royale/internal/protocol"
)

// Store is the room directory backing the manager.
type Store interface {
	GetRoom(key string) (*Room, bool)
	SaveRoom(r *Room)
	DeleteRoom(key string)
}

// Manager owns the directory of live rooms. Finished and empty rooms are
// reaped lazily, the next time their key is touched; there is no sweeper.
type Manager struct {
	mu    sync.Mutex
	store Store
	cfg   config.Config
	clock clockwork.Clock
}

func NewManager(s Store, cfg config.Config, clock clockwork.Clock) *Manager {
	return &Manager{store: s, cfg: cfg, clock: clock}
}

// Join resolves or creates the room for key and seats the player. A room
// left over in the finished state is torn down and replaced by a fresh one
// under the same key.
func (m *Manager) Join(key, playerName string, sender protocol.Sender) (*Room, *game.Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.store.GetRoom(key)
	if ok && r.Finished() {
		r.Teardown()
		m.store.DeleteRoom(key)
		log.Debug().Str("room", key).Msg("reaped finished room on rejoin")
		ok = false
	}
	if !ok {
		r = New(key, m.cfg, m.clock)
		m.store.SaveRoom(r)
		log.Info().Str("room", key).Msg("room created")
	}

	p, err := r.Join(playerName, sender)
	if err != nil {
		return nil, nil, err
	}
	return r, p, nil
}

// Disconnect routes a dropped connection to its room and reaps the room if
// that leaves it empty or finished.
func (m *Manager) Disconnect(key, playerID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.store.GetRoom(key)
	if !ok {
		return
	}
	r.HandleDisconnect(playerID)
	if r.Empty() || r.Finished() {
		r.Teardown()
		m.store.DeleteRoom(key)
		log.Debug().Str("room", key).Msg("room reaped")
	}
}

// Get looks a room up without touching its lifecycle.
func (m *Manager) Get(key string) (*Room, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.store.GetRoom(key)
}
