package world

import "time"

// Normalize fills defaults for any field absent from an older snapshot and
// re-establishes the structural invariants. It runs once, at load time, so
// no other code path needs backward-compat patching. Snapshots only ever
// gain fields; there is no destructive migration.
func Normalize(w *World) {
	if w.SeedPrompt == "" {
		w.SeedPrompt = "A mysterious world."
	}
	if w.WorldSize != SizeSmall && w.WorldSize != SizeMedium && w.WorldSize != SizeLarge {
		w.WorldSize = SizeMedium
	}
	if w.Tick < 0 {
		w.Tick = 0
	}

	if w.Regions == nil {
		w.Regions = make(map[string]*Region)
	}
	if w.Characters == nil {
		w.Characters = make(map[string]*Character)
	}
	if w.Players == nil {
		w.Players = make(map[string]*Player)
	}
	if w.Quests == nil {
		w.Quests = make(map[string]*Quest)
	}
	if w.ActivePlayers == nil {
		w.ActivePlayers = make(map[string]time.Time)
	}

	// Map keys are authoritative for entity ids.
	for id, r := range w.Regions {
		r.ID = id
	}
	for id, c := range w.Characters {
		c.ID = id
		c.Loyalty = clamp01(c.Loyalty)
	}
	for id, q := range w.Quests {
		q.ID = id
		switch q.Status {
		case QuestOpen, QuestCompleted, QuestFailed:
		default:
			q.Status = QuestOpen
		}
	}
	for uid, p := range w.Players {
		p.UserID = uid
		if p.CharacterID == "" {
			p.CharacterID = uid + "_char"
		}
		if p.Name == "" {
			p.Name = uid
		}
		if p.Class == "" {
			p.Class = "wanderer"
		}
		if p.Stats == nil {
			p.Stats = make(map[string]float64)
		}
		for _, stat := range []string{"courage", "empathy", "cunning"} {
			if _, ok := p.Stats[stat]; !ok {
				p.Stats[stat] = DefaultStat
			}
		}
		for name, v := range p.Stats {
			p.Stats[name] = clamp01(v)
		}
	}

	// Presence must stay a subset of the player set.
	for uid := range w.ActivePlayers {
		if _, ok := w.Players[uid]; !ok {
			delete(w.ActivePlayers, uid)
		}
	}

	w.Metrics.Apply(nil)

	if len(w.HistorySummaries) > DefaultHistoryCap {
		w.HistorySummaries = w.HistorySummaries[len(w.HistorySummaries)-DefaultHistoryCap:]
	}
	if len(w.ChatLog) > DefaultChatCap {
		w.ChatLog = w.ChatLog[len(w.ChatLog)-DefaultChatCap:]
	}
	if len(w.StoryLog) > DefaultStoryCap {
		w.StoryLog = w.StoryLog[len(w.StoryLog)-DefaultStoryCap:]
	}
}
