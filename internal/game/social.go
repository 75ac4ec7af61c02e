package game

import (
	"fmt"
)

// Presence describes one currently-active player, for world listings.
type Presence struct {
	UserID        string `json:"user_id"`
	Role          string `json:"role"`
	CharacterName string `json:"character_name"`
}

// ErrUnknownWorld marks operations that require an existing world.
var ErrUnknownWorld = fmt.Errorf("world does not exist")

// ListWorlds returns every stored world id.
func (o *Orchestrator) ListWorlds() ([]string, error) {
	return o.store.List()
}

// ActivePlayers returns the players currently present in a world. An
// unknown world yields an empty list.
func (o *Orchestrator) ActivePlayers(worldID string) ([]Presence, error) {
	mu := o.locks.forWorld(worldID)
	mu.Lock()
	defer mu.Unlock()

	w, ok, err := o.store.Load(worldID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	var out []Presence
	for _, uid := range sortedIDs(w.ActivePlayers) {
		p := Presence{UserID: uid, Role: "wanderer", CharacterName: uid}
		if player := w.Players[uid]; player != nil {
			p.Role = player.Class
			p.CharacterName = player.Name
		}
		out = append(out, p)
	}
	return out, nil
}

// ChatHistory returns a world's chat log, oldest first. An unknown world
// yields an empty log.
func (o *Orchestrator) ChatHistory(worldID string) ([]string, error) {
	mu := o.locks.forWorld(worldID)
	mu.Lock()
	defer mu.Unlock()

	w, ok, err := o.store.Load(worldID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return w.ChatLog, nil
}

// PostChat appends a message to a world's shared chat log and persists it.
func (o *Orchestrator) PostChat(userID, worldID, message string) error {
	mu := o.locks.forWorld(worldID)
	mu.Lock()
	defer mu.Unlock()

	w, ok, err := o.store.Load(worldID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrUnknownWorld
	}

	w.AppendChat(userID+": "+message, o.cfg.ChatCap)
	return o.store.Save(w)
}
