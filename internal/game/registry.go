package game

import (
	"errors"
	"sort"

	"github.com/google/uuid"

	"number-royale/internal/protocol"
)

// Admission errors. They are reported to the joining connection only; room
// state is left untouched.
var (
	ErrRoomFull       = errors.New("room is full")
	ErrRoomNotWaiting = errors.New("room is not accepting players")
)

// Player is a seated participant. The Sender is the outbound half of the
// player's connection; the registry references it but never closes it.
type Player struct {
	ID         string
	Name       string
	Seat       int
	Points     int
	Eliminated bool
	Sender     protocol.Sender
}

// Registry tracks the players seated in one room. It is not safe for
// concurrent use; the owning room serializes access.
type Registry struct {
	capacity int
	players  map[string]*Player
}

func NewRegistry(capacity int) *Registry {
	return &Registry{
		capacity: capacity,
		players:  make(map[string]*Player),
	}
}

// Admit seats a new player, assigning the smallest free seat number in
// [1, capacity]. Seats vacated before the game starts are reissued.
func (reg *Registry) Admit(name string, sender protocol.Sender) (*Player, error) {
	if len(reg.players) >= reg.capacity {
		return nil, ErrRoomFull
	}
	p := &Player{
		ID:     uuid.NewString(),
		Name:   name,
		Seat:   reg.nextSeat(),
		Sender: sender,
	}
	reg.players[p.ID] = p
	return p, nil
}

func (reg *Registry) nextSeat() int {
	used := make(map[int]bool, len(reg.players))
	for _, p := range reg.players {
		used[p.Seat] = true
	}
	for seat := 1; seat <= reg.capacity; seat++ {
		if !used[seat] {
			return seat
		}
	}
	return 0 // unreachable, capacity is checked before seating
}

func (reg *Registry) Get(id string) (*Player, bool) {
	p, ok := reg.players[id]
	return p, ok
}

// Remove drops a player outright. Idempotent.
func (reg *Registry) Remove(id string) {
	delete(reg.players, id)
}

// MarkEliminated sets the elimination flag. The flag is monotonic; calling
// this twice is a no-op.
func (reg *Registry) MarkEliminated(id string) {
	if p, ok := reg.players[id]; ok {
		p.Eliminated = true
	}
}

func (reg *Registry) Len() int {
	return len(reg.players)
}

func (reg *Registry) Capacity() int {
	return reg.capacity
}

// Active returns the non-eliminated players in seat order.
func (reg *Registry) Active() []*Player {
	var out []*Player
	for _, p := range reg.players {
		if !p.Eliminated {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Seat < out[j].Seat })
	return out
}

// Names returns every seated player's name in seat order.
func (reg *Registry) Names() []string {
	names := make([]string, 0, len(reg.players))
	for _, p := range reg.seatOrdered() {
		names = append(names, p.Name)
	}
	return names
}

// ActiveNames returns the names of non-eliminated players in seat order.
func (reg *Registry) ActiveNames() []string {
	active := reg.Active()
	names := make([]string, 0, len(active))
	for _, p := range active {
		names = append(names, p.Name)
	}
	return names
}

// Snapshot returns the seat-ordered roster used for lobby display.
func (reg *Registry) Snapshot() []protocol.SeatInfo {
	out := make([]protocol.SeatInfo, 0, len(reg.players))
	for _, p := range reg.seatOrdered() {
		out = append(out, protocol.SeatInfo{Name: p.Name, Number: p.Seat})
	}
	return out
}

// Summaries returns the seat-ordered scoreboard rows for round results.
func (reg *Registry) Summaries() []protocol.PlayerSummary {
	out := make([]protocol.PlayerSummary, 0, len(reg.players))
	for _, p := range reg.seatOrdered() {
		out = append(out, protocol.PlayerSummary{
			ID:         p.ID,
			Name:       p.Name,
			Points:     p.Points,
			Eliminated: p.Eliminated,
		})
	}
	return out
}

// Broadcast hands a frame to every seated player's sender.
func (reg *Registry) Broadcast(frame []byte) {
	for _, p := range reg.players {
		p.Sender.Send(frame)
	}
}

func (reg *Registry) seatOrdered() []*Player {
	out := make([]*Player, 0, len(reg.players))
	for _, p := range reg.players {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Seat < out[j].Seat })
	return out
}
