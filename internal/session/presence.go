// Package session tracks which players are active in a world and derives
// whether the world is open. All operations are pure functions over the
// world state; whether the result is persisted is the caller's choice —
// mutating paths commit the prune with the rest of the turn, read paths
// treat it as a best-effort peek.
package session

import (
	"time"

	"github.com/talgya/dreamloom/internal/world"
)

// Touch marks a user as active right now and opens the world.
func Touch(w *world.World, userID string, now time.Time) {
	if w.ActivePlayers == nil {
		w.ActivePlayers = make(map[string]time.Time)
	}
	w.ActivePlayers[userID] = now
	w.IsOpen = true
}

// Prune removes every active-player entry idle for longer than timeout and
// re-derives IsOpen. It returns how many entries were removed.
func Prune(w *world.World, now time.Time, timeout time.Duration) int {
	removed := 0
	for uid, last := range w.ActivePlayers {
		if now.Sub(last) > timeout {
			delete(w.ActivePlayers, uid)
			removed++
		}
	}
	w.IsOpen = len(w.ActivePlayers) > 0
	return removed
}

// Leave removes a user's presence unconditionally and re-derives IsOpen.
func Leave(w *world.World, userID string) {
	delete(w.ActivePlayers, userID)
	w.IsOpen = len(w.ActivePlayers) > 0
}
