package game

import (
	"math"
	"time"

	"github.com/jonboulle/clockwork"

	"number-royale/internal/protocol"
)

type roundState int

const (
	roundIdle roundState = iota
	roundOpen
	roundClosing
)

// Round collects one submission per active player and scores them once.
// Like the registry it relies on the owning room for serialization; the
// single-shot TryClose transition is what keeps the deadline timer and the
// all-submitted trigger from scoring the same round twice.
type Round struct {
	state    roundState
	numbers  map[string]int
	deadline time.Time
	timer    clockwork.Timer
}

func NewRound() *Round {
	return &Round{numbers: make(map[string]int)}
}

// Open clears prior submissions and arms the deadline timer. Any timer left
// over from an earlier round is stopped first so a stale callback cannot
// fire into the new round.
func (r *Round) Open(clock clockwork.Clock, d time.Duration, onTimeout func()) {
	r.stopTimer()
	r.numbers = make(map[string]int)
	r.deadline = clock.Now().Add(d)
	r.timer = clock.AfterFunc(d, onTimeout)
	r.state = roundOpen
}

// Submit records a player's number, overwriting any earlier pick this round.
// Returns false if no round is open.
func (r *Round) Submit(playerID string, number int) bool {
	if r.state != roundOpen {
		return false
	}
	r.numbers[playerID] = number
	return true
}

// AllSubmitted reports whether every given player has a number recorded.
func (r *Round) AllSubmitted(active []*Player) bool {
	if len(active) == 0 {
		return false
	}
	for _, p := range active {
		if _, ok := r.numbers[p.ID]; !ok {
			return false
		}
	}
	return true
}

// TryClose is the single-shot Open -> Closing transition. Exactly one caller
// wins it; the loser (timer or completion trigger, whichever came second)
// gets false and must not score.
func (r *Round) TryClose() bool {
	if r.state != roundOpen {
		return false
	}
	r.state = roundClosing
	r.stopTimer()
	return true
}

// Cancel abandons the round without scoring, e.g. on room teardown.
func (r *Round) Cancel() {
	r.stopTimer()
	r.state = roundIdle
}

func (r *Round) stopTimer() {
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
}

func (r *Round) Deadline() time.Time {
	return r.deadline
}

// Outcome is the product of one scoring pass.
type Outcome struct {
	// Played is false when no active player remained, in which case nothing
	// was scored and no result should be broadcast.
	Played bool
	Result protocol.RoundResult
	// GameOver is set when at most one active player survives the pass.
	GameOver bool
	// WinnerName is the survivor's name, or protocol.NoWinner if none.
	WinnerName string
}

// Score runs the scoring pass: penalizes silent players, computes the
// 0.8-average target, picks the closest submission as round winner,
// penalizes the rest, applies eliminations, and reports whether the game is
// over. Must only be called after winning TryClose.
func (r *Round) Score(reg *Registry, targetFactor float64, eliminationScore int) Outcome {
	active := reg.Active()
	if len(active) == 0 {
		r.state = roundIdle
		return Outcome{}
	}

	var submitted []*Player
	var silent []string
	sum := 0
	for _, p := range active {
		n, ok := r.numbers[p.ID]
		if !ok {
			p.Points += 2
			silent = append(silent, p.Name)
			continue
		}
		submitted = append(submitted, p)
		sum += n
	}

	average := 0.0
	if len(submitted) > 0 {
		average = float64(sum) / float64(len(submitted))
	}
	target := average * targetFactor

	var winner *Player
	bestDiff := math.Inf(1)
	for _, p := range submitted {
		diff := math.Abs(float64(r.numbers[p.ID]) - target)
		if diff < bestDiff {
			bestDiff = diff
			winner = p
		}
	}

	for _, p := range submitted {
		if p != winner {
			p.Points++
		}
	}
	for _, p := range active {
		if p.Points >= eliminationScore {
			p.Eliminated = true
		}
	}

	result := protocol.RoundResult{
		Type:            protocol.TypeRoundResult,
		Average:         average,
		Target:          target,
		Numbers:         r.submissions(),
		NoChoicePlayers: silent,
		Players:         reg.Summaries(),
	}
	if winner != nil {
		id := winner.ID
		result.Winner = &id
	}

	out := Outcome{Played: true, Result: result}
	survivors := reg.Active()
	if len(survivors) <= 1 {
		out.GameOver = true
		out.WinnerName = protocol.NoWinner
		if len(survivors) == 1 {
			out.WinnerName = survivors[0].Name
		}
	}

	r.state = roundIdle
	return out
}

func (r *Round) submissions() map[string]int {
	out := make(map[string]int, len(r.numbers))
	for id, n := range r.numbers {
		out[id] = n
	}
	return out
}
