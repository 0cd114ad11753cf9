package room

import (
	"sync"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"number-royale/internal/config"
	"number-royale/internal/game"
	"number-royale/internal/protocol"
)

type State string

const (
	StateWaiting  State = "waiting"
	StatePlaying  State = "playing"
	StateFinished State = "finished"
)

// Room coordinates one game: admission while waiting, the round cycle while
// playing, and teardown once finished. All state transitions run under the
// room mutex, including timer callbacks, so each event executes to
// completion before the next is processed.
type Room struct {
	Key string

	mu    sync.Mutex
	state State
	reg   *game.Registry
	round *game.Round
	gw    gateway

	clock      clockwork.Clock
	cfg        config.Config
	startTimer clockwork.Timer
	nextTimer  clockwork.Timer
}

func New(key string, cfg config.Config, clock clockwork.Clock) *Room {
	reg := game.NewRegistry(cfg.RoomCapacity)
	return &Room{
		Key:   key,
		state: StateWaiting,
		reg:   reg,
		round: game.NewRound(),
		gw:    gateway{reg: reg},
		clock: clock,
		cfg:   cfg,
	}
}

// Join admits a player while the room is waiting. On success the joining
// connection gets its playerInfo frame, the room gets a roster update, and a
// full room schedules the game start countdown.
func (r *Room) Join(name string, sender protocol.Sender) (*game.Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != StateWaiting {
		return nil, game.ErrRoomNotWaiting
	}
	p, err := r.reg.Admit(name, sender)
	if err != nil {
		return nil, err
	}

	p.Sender.Send(protocol.NewPlayerInfo(p.ID, p.Seat))
	r.gw.playerJoined()
	log.Info().Str("room", r.Key).Str("player", name).Int("seat", p.Seat).Msg("player joined")

	if r.reg.Len() == r.cfg.RoomCapacity {
		log.Info().Str("room", r.Key).Msg("room full, scheduling game start")
		r.startTimer = r.clock.AfterFunc(r.cfg.StartCountdown, r.startGame)
	}
	return p, nil
}

func (r *Room) startGame() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != StateWaiting || r.reg.Len() < r.cfg.RoomCapacity {
		return
	}
	r.state = StatePlaying
	r.gw.send(protocol.NewGameStart())
	log.Info().Str("room", r.Key).Msg("game started")
	r.openRound()
}

// openRound must be called with the room mutex held.
func (r *Room) openRound() {
	r.round.Open(r.clock, r.cfg.RoundDuration, r.onRoundTimeout)
	r.gw.send(protocol.NewRoundStart())
	log.Debug().Str("room", r.Key).Time("deadline", r.round.Deadline()).Msg("round opened")
}

func (r *Room) onRoundTimeout() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closeRound("timeout")
}

// HandleNumber records a submission. Stale numbers (eliminated player, no
// open round, unknown id) are dropped without a reply. If the submission
// completes the active set the round closes early instead of waiting for
// the deadline.
func (r *Room) HandleNumber(playerID string, number int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != StatePlaying {
		return
	}
	p, ok := r.reg.Get(playerID)
	if !ok || p.Eliminated {
		return
	}
	if !r.round.Submit(playerID, number) {
		return
	}
	if r.round.AllSubmitted(r.reg.Active()) {
		r.closeRound("all submitted")
	}
}

// closeRound must be called with the room mutex held. The round's
// single-shot transition guarantees one scoring pass even when the deadline
// timer and the completion trigger race.
func (r *Room) closeRound(trigger string) {
	if !r.round.TryClose() {
		return
	}
	out := r.round.Score(r.reg, r.cfg.TargetFactor, r.cfg.EliminationScore)
	if !out.Played {
		// Everyone disconnected mid-round; nothing to score and nobody
		// listening. Finish the room so the directory can reap it.
		r.state = StateFinished
		log.Info().Str("room", r.Key).Msg("round closed with no active players")
		return
	}

	r.gw.send(protocol.Marshal(out.Result))
	log.Info().
		Str("room", r.Key).
		Str("trigger", trigger).
		Float64("average", out.Result.Average).
		Float64("target", out.Result.Target).
		Msg("round scored")

	if out.GameOver {
		r.state = StateFinished
		r.gw.send(protocol.NewGameOver(out.WinnerName))
		log.Info().Str("room", r.Key).Str("winner", out.WinnerName).Msg("game over")
		return
	}

	r.nextTimer = r.clock.AfterFunc(r.cfg.InterRoundDelay, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		if r.state == StatePlaying {
			r.openRound()
		}
	})
}

// HandleDisconnect applies the phase-dependent leave policy: a waiting room
// frees the seat, a playing room keeps the seat and force-eliminates the
// player so round arithmetic stays stable. The registry update never waits
// on the round timer.
func (r *Room) HandleDisconnect(playerID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.reg.Get(playerID)
	if !ok {
		return
	}

	switch r.state {
	case StateWaiting:
		r.reg.Remove(playerID)
		// A pending start countdown is void once a seat frees up.
		if r.startTimer != nil && r.reg.Len() < r.cfg.RoomCapacity {
			r.startTimer.Stop()
			r.startTimer = nil
		}
		if r.reg.Len() > 0 {
			r.gw.playerLeft()
		}
	case StatePlaying:
		p.Points = r.cfg.EliminationScore
		p.Eliminated = true
		r.gw.playerLeft()
	case StateFinished:
		r.reg.Remove(playerID)
	}
	log.Info().Str("room", r.Key).Str("player", p.Name).Str("state", string(r.state)).Msg("player disconnected")
}

func (r *Room) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

func (r *Room) Finished() bool {
	return r.State() == StateFinished
}

func (r *Room) Empty() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.reg.Len() == 0
}

// Teardown cancels any pending timers. Called when the directory drops the
// room so no stale callback fires on a dead room.
func (r *Room) Teardown() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.startTimer != nil {
		r.startTimer.Stop()
		r.startTimer = nil
	}
	if r.nextTimer != nil {
		r.nextTimer.Stop()
		r.nextTimer = nil
	}
	r.round.Cancel()
}
