package session

import (
	"testing"
	"time"

	"github.com/talgya/dreamloom/internal/world"
)

const timeout = 10 * time.Minute

func TestTouchOpensWorld(t *testing.T) {
	w := world.New("w1", "seed")
	now := time.Now()

	Touch(w, "lexi", now)

	if !w.IsOpen {
		t.Fatal("world should be open after touch")
	}
	if got := w.ActivePlayers["lexi"]; !got.Equal(now) {
		t.Fatalf("last activity = %v, want %v", got, now)
	}
}

func TestPruneEvictsIdlePlayers(t *testing.T) {
	w := world.New("w1", "seed")
	now := time.Now()
	Touch(w, "lexi", now.Add(-timeout-time.Minute))
	Touch(w, "kai", now.Add(-time.Minute))

	removed := Prune(w, now, timeout)

	if removed != 1 {
		t.Fatalf("removed = %d, want 1", removed)
	}
	if _, ok := w.ActivePlayers["lexi"]; ok {
		t.Fatal("idle player not evicted")
	}
	if !w.IsOpen {
		t.Fatal("world with an active player should stay open")
	}
}

func TestPruneClosesEmptyWorld(t *testing.T) {
	w := world.New("w1", "seed")
	now := time.Now()
	Touch(w, "lexi", now.Add(-timeout-time.Second))

	Prune(w, now, timeout)

	if w.IsOpen {
		t.Fatal("world should close when the last player times out")
	}
	if len(w.ActivePlayers) != 0 {
		t.Fatalf("active players = %v", w.ActivePlayers)
	}
}

func TestLeaveLastPlayerClosesWorld(t *testing.T) {
	w := world.New("w1", "seed")
	now := time.Now()
	Touch(w, "lexi", now)
	Touch(w, "kai", now)

	Leave(w, "kai")
	if !w.IsOpen {
		t.Fatal("world should stay open while a player remains")
	}

	Leave(w, "lexi")
	if w.IsOpen {
		t.Fatal("world should close when the last player leaves")
	}
}

func TestLeaveUnknownUserIsNoop(t *testing.T) {
	w := world.New("w1", "seed")
	Touch(w, "lexi", time.Now())

	Leave(w, "ghost")

	if !w.IsOpen {
		t.Fatal("world should remain open")
	}
}
