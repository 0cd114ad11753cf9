package game

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
)

func seatPlayers(t *testing.T, reg *Registry, names ...string) map[string]*Player {
	t.Helper()
	out := make(map[string]*Player, len(names))
	for _, name := range names {
		p, err := reg.Admit(name, nopSender{})
		if err != nil {
			t.Fatalf("admit %s: %v", name, err)
		}
		out[name] = p
	}
	return out
}

func TestScoreTargetRule(t *testing.T) {
	reg := NewRegistry(4)
	ps := seatPlayers(t, reg, "a", "b", "c")

	r := NewRound()
	r.Open(clockwork.NewFakeClock(), 30*time.Second, func() {})
	r.Submit(ps["a"].ID, 60)
	r.Submit(ps["b"].ID, 50)
	r.Submit(ps["c"].ID, 40)

	if !r.TryClose() {
		t.Fatal("TryClose failed on open round")
	}
	out := r.Score(reg, 0.8, 10)
	if !out.Played {
		t.Fatal("round not played")
	}
	if out.Result.Average != 50 || out.Result.Target != 40 {
		t.Fatalf("average/target = %v/%v, want 50/40", out.Result.Average, out.Result.Target)
	}
	if out.Result.Winner == nil || *out.Result.Winner != ps["c"].ID {
		t.Fatalf("winner = %v, want c", out.Result.Winner)
	}
	if ps["a"].Points != 1 || ps["b"].Points != 1 || ps["c"].Points != 0 {
		t.Fatalf("points = %d,%d,%d, want 1,1,0", ps["a"].Points, ps["b"].Points, ps["c"].Points)
	}
	if out.GameOver {
		t.Fatal("unexpected game over")
	}
}

func TestScoreNoChoicePenalty(t *testing.T) {
	reg := NewRegistry(4)
	ps := seatPlayers(t, reg, "a", "b", "c")

	r := NewRound()
	r.Open(clockwork.NewFakeClock(), 30*time.Second, func() {})
	r.Submit(ps["a"].ID, 20)
	r.Submit(ps["b"].ID, 10)

	r.TryClose()
	out := r.Score(reg, 0.8, 10)
	if ps["c"].Points != 2 {
		t.Fatalf("silent player points = %d, want 2", ps["c"].Points)
	}
	if len(out.Result.NoChoicePlayers) != 1 || out.Result.NoChoicePlayers[0] != "c" {
		t.Fatalf("noChoicePlayers = %v, want [c]", out.Result.NoChoicePlayers)
	}
	// Average counts only submitted numbers.
	if out.Result.Average != 15 {
		t.Fatalf("average = %v, want 15", out.Result.Average)
	}
}

func TestScoreAllSilent(t *testing.T) {
	reg := NewRegistry(4)
	ps := seatPlayers(t, reg, "a", "b", "c")

	r := NewRound()
	r.Open(clockwork.NewFakeClock(), 30*time.Second, func() {})
	r.TryClose()
	out := r.Score(reg, 0.8, 10)

	if out.Result.Average != 0 || out.Result.Target != 0 {
		t.Fatalf("average/target = %v/%v, want 0/0", out.Result.Average, out.Result.Target)
	}
	if out.Result.Winner != nil {
		t.Fatalf("winner = %v, want none", *out.Result.Winner)
	}
	for name, p := range ps {
		if p.Points != 2 {
			t.Errorf("%s points = %d, want 2", name, p.Points)
		}
	}
}

func TestScoreEliminationInSamePass(t *testing.T) {
	reg := NewRegistry(2)
	ps := seatPlayers(t, reg, "a", "b")
	ps["a"].Points = 9

	r := NewRound()
	r.Open(clockwork.NewFakeClock(), 30*time.Second, func() {})
	r.Submit(ps["a"].ID, 100)
	r.Submit(ps["b"].ID, 10)

	r.TryClose()
	out := r.Score(reg, 0.8, 10)

	// average 55, target 44: b is closer, a loses and crosses the threshold.
	if out.Result.Winner == nil || *out.Result.Winner != ps["b"].ID {
		t.Fatalf("winner = %v, want b", out.Result.Winner)
	}
	if !ps["a"].Eliminated || ps["a"].Points != 10 {
		t.Fatalf("a points/eliminated = %d/%v, want 10/true", ps["a"].Points, ps["a"].Eliminated)
	}
	// The loser shows up eliminated in the same result broadcast.
	for _, row := range out.Result.Players {
		if row.ID == ps["a"].ID && !row.Eliminated {
			t.Fatal("result does not mark a eliminated")
		}
	}
	if !out.GameOver || out.WinnerName != "b" {
		t.Fatalf("gameOver/winner = %v/%q, want true/b", out.GameOver, out.WinnerName)
	}
}

func TestScoreSkipsWithoutActivePlayers(t *testing.T) {
	reg := NewRegistry(2)
	ps := seatPlayers(t, reg, "a", "b")
	reg.MarkEliminated(ps["a"].ID)
	reg.MarkEliminated(ps["b"].ID)

	r := NewRound()
	r.Open(clockwork.NewFakeClock(), 30*time.Second, func() {})
	r.TryClose()
	if out := r.Score(reg, 0.8, 10); out.Played {
		t.Fatal("scored a round with no active players")
	}
}

func TestResubmissionOverwrites(t *testing.T) {
	reg := NewRegistry(2)
	ps := seatPlayers(t, reg, "a", "b")

	r := NewRound()
	r.Open(clockwork.NewFakeClock(), 30*time.Second, func() {})
	r.Submit(ps["a"].ID, 1)
	r.Submit(ps["a"].ID, 99)
	r.Submit(ps["b"].ID, 50)

	r.TryClose()
	out := r.Score(reg, 0.8, 10)
	if out.Result.Numbers[ps["a"].ID] != 99 {
		t.Fatalf("a's number = %d, want last-write 99", out.Result.Numbers[ps["a"].ID])
	}
}

func TestAllSubmitted(t *testing.T) {
	reg := NewRegistry(3)
	ps := seatPlayers(t, reg, "a", "b")

	r := NewRound()
	r.Open(clockwork.NewFakeClock(), 30*time.Second, func() {})

	if r.AllSubmitted(nil) {
		t.Fatal("empty active set reported as all-submitted")
	}
	r.Submit(ps["a"].ID, 5)
	if r.AllSubmitted(reg.Active()) {
		t.Fatal("partial submissions reported as all-submitted")
	}
	r.Submit(ps["b"].ID, 7)
	if !r.AllSubmitted(reg.Active()) {
		t.Fatal("complete submissions not reported")
	}
}

func TestTryCloseIsSingleShot(t *testing.T) {
	r := NewRound()
	r.Open(clockwork.NewFakeClock(), 30*time.Second, func() {})

	if !r.TryClose() {
		t.Fatal("first TryClose lost")
	}
	if r.TryClose() {
		t.Fatal("second TryClose won")
	}
	if r.Submit("x", 1) {
		t.Fatal("submission accepted after close")
	}
}

func TestEarlyCloseCancelsTimer(t *testing.T) {
	fc := clockwork.NewFakeClock()
	var fired atomic.Int32

	r := NewRound()
	r.Open(fc, 30*time.Second, func() { fired.Add(1) })
	r.TryClose()

	fc.Advance(31 * time.Second)
	time.Sleep(20 * time.Millisecond)
	if n := fired.Load(); n != 0 {
		t.Fatalf("cancelled deadline fired %d times", n)
	}
}

func TestTimeoutThenCompletionScoresOnce(t *testing.T) {
	fc := clockwork.NewFakeClock()
	r := NewRound()

	var closed atomic.Int32
	r.Open(fc, 30*time.Second, func() {
		if r.TryClose() {
			closed.Add(1)
		}
	})

	fc.Advance(31 * time.Second)
	waitUntil(t, func() bool { return closed.Load() == 1 })

	// A late completion trigger loses the guard.
	if r.TryClose() {
		t.Fatal("completion trigger closed an already-closed round")
	}
}

func TestReopenClearsSubmissions(t *testing.T) {
	fc := clockwork.NewFakeClock()
	reg := NewRegistry(2)
	ps := seatPlayers(t, reg, "a", "b")

	r := NewRound()
	r.Open(fc, 30*time.Second, func() {})
	r.Submit(ps["a"].ID, 42)
	r.TryClose()
	r.Score(reg, 0.8, 10)

	r.Open(fc, 30*time.Second, func() {})
	if r.AllSubmitted([]*Player{ps["a"]}) {
		t.Fatal("stale submission survived reopen")
	}
}

func waitUntil(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal("condition not reached in time")
}
