// Package game sequences the per-turn pipeline for each world: interpret the
// player's message, resolve action effects, advance world events, reconcile
// the quest campaign, narrate, and persist. All activity for one world runs
// under that world's mutex; unrelated worlds proceed in parallel.
package game

import (
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/talgya/dreamloom/internal/config"
	"github.com/talgya/dreamloom/internal/llm"
	"github.com/talgya/dreamloom/internal/session"
	"github.com/talgya/dreamloom/internal/store"
	"github.com/talgya/dreamloom/internal/world"
)

// Event types flagged for distinct presentation treatment.
var specialEventTypes = map[string]bool{
	"dragon_hatching": true,
	"boss_battle":     true,
}

// Orchestrator owns the turn pipeline, the presence rules, and the
// per-world lock registry.
type Orchestrator struct {
	store store.Store
	llm   llm.Completer
	cfg   config.Config
	locks lockTable

	// now is swappable for tests.
	now func() time.Time
}

// New creates an orchestrator. client may be nil; every collaborator stage
// then degrades to its defaults.
func New(st store.Store, client llm.Completer, cfg config.Config) *Orchestrator {
	return &Orchestrator{
		store: st,
		llm:   client,
		cfg:   cfg,
		now:   time.Now,
	}
}

// StateView is the read-only snapshot handed to the presentation layer.
type StateView struct {
	Visual string `json:"visual"`
	Story  string `json:"story"`
}

// RunTurn plays one full turn for a user: the complete pipeline including
// narration. It returns the rendered view (map plus story text).
func (o *Orchestrator) RunTurn(userID, worldID, message, seedIfNew string) (string, error) {
	mu := o.locks.forWorld(worldID)
	mu.Lock()
	defer mu.Unlock()

	w, player, err := o.loadOrCreate(userID, worldID, seedIfNew, message)
	if err != nil {
		return "", err
	}

	actions := o.beginTurn(w, userID, message)

	res := o.resolveActions(w, player, actions)
	special := o.advanceEvents(w, player, actions, res.numTicks)
	notes := append(res.notes, o.reconcileQuests(w, player, actions)...)

	story := o.narrate(w, player, actions, notes)
	w.LastSceneText = story
	w.AppendStory(world.StoryEntry{
		Tick:      w.Tick,
		UserID:    userID,
		Message:   message,
		Text:      story,
		Timestamp: o.now(),
	}, o.cfg.StoryCap)

	if err := o.store.Save(w); err != nil {
		return "", fmt.Errorf("persist turn: %w", err)
	}

	visual := world.RenderView(w, userID, special)
	return visual + "\n\n" + story, nil
}

// ApplyAction runs the pipeline without the narration stage: effects are
// applied and persisted, and a later read fetches the rendered view.
func (o *Orchestrator) ApplyAction(userID, worldID, message, seedIfNew string) error {
	mu := o.locks.forWorld(worldID)
	mu.Lock()
	defer mu.Unlock()

	w, player, err := o.loadOrCreate(userID, worldID, seedIfNew, message)
	if err != nil {
		return err
	}

	actions := o.beginTurn(w, userID, message)

	res := o.resolveActions(w, player, actions)
	o.advanceEvents(w, player, actions, res.numTicks)
	o.reconcileQuests(w, player, actions)

	if err := o.store.Save(w); err != nil {
		return fmt.Errorf("persist action: %w", err)
	}
	return nil
}

// ReadState returns the current view of a world for a user. A world that
// does not exist yet is not an error. The presence prune here is a
// best-effort peek and is not persisted.
func (o *Orchestrator) ReadState(userID, worldID string) (StateView, error) {
	mu := o.locks.forWorld(worldID)
	mu.Lock()
	defer mu.Unlock()

	w, ok, err := o.store.Load(worldID)
	if err != nil {
		return StateView{}, err
	}
	if !ok {
		return StateView{
			Story: "This world does not exist yet. Create it by sending an action.",
		}, nil
	}

	session.Prune(w, o.now(), o.cfg.SessionTimeout)

	return StateView{
		Visual: world.RenderView(w, userID, ""),
		Story:  w.LastSceneText,
	}, nil
}

// Leave removes a user's presence from a world and closes the world when no
// active players remain. Leaving an unknown world is a no-op.
func (o *Orchestrator) Leave(userID, worldID string) error {
	mu := o.locks.forWorld(worldID)
	mu.Lock()
	defer mu.Unlock()

	w, ok, err := o.store.Load(worldID)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	session.Prune(w, o.now(), o.cfg.SessionTimeout)
	session.Leave(w, userID)

	return o.store.Save(w)
}

// beginTurn runs the shared preamble of both pipeline variants: committed
// presence prune, touch, command history, and command interpretation. An
// empty interpretation always yields a single WAIT.
func (o *Orchestrator) beginTurn(w *world.World, userID, message string) []world.Action {
	now := o.now()
	session.Prune(w, now, o.cfg.SessionTimeout)
	session.Touch(w, userID, now)

	cmd := strings.TrimSpace(message)
	if cmd == "" {
		cmd = "WAIT"
	}
	w.AppendHistory(userID+": "+cmd, o.cfg.HistoryCap)

	actions, err := llm.InterpretCommands(o.llm, message, world.Summarize(w, userID))
	if err != nil {
		slog.Warn("interpreter stage degraded", "world", w.ID, "error", err)
	}
	if len(actions) == 0 {
		actions = []world.Action{{Type: world.ActionWait}}
	}
	return actions
}

// advanceEvents applies the event stage: clamped metric drift, a bounded
// number of recorded events, and the tick advance. It returns the type of
// any climactic event for the renderer's banner.
func (o *Orchestrator) advanceEvents(w *world.World, player *world.Player, actions []world.Action, numTicks int) string {
	result, err := llm.AdvanceEvents(o.llm, world.Summarize(w, player.UserID), actions, w.Tick, numTicks)
	if err != nil {
		slog.Warn("event stage degraded", "world", w.ID, "error", err)
		result = &llm.EventsResult{}
	}

	w.Metrics.Apply(result.MetricsDelta)
	player.ApplyStatDeltas(result.PlayerStatsDelta)

	special := ""
	w.LastEvents = w.LastEvents[:0]
	for _, plan := range result.Events {
		if len(w.LastEvents) >= o.cfg.MaxEventsPerTurn {
			break
		}
		id := plan.ID
		if id == "" {
			id = "event_" + uuid.NewString()[:8]
		}
		ev := world.Event{
			ID:              id,
			Type:            plan.Type,
			Description:     plan.Description,
			Tick:            w.Tick + numTicks,
			AffectedRegions: plan.AffectedRegions,
			Impact:          plan.Impact,
		}
		w.LastEvents = append(w.LastEvents, ev)
		if specialEventTypes[ev.Type] {
			special = ev.Type
		}
	}

	w.Tick += numTicks
	return special
}

// narrate runs the narration stage and assembles the final story text:
// narration, extra notes, the trailing window of shared command history,
// and the suggested next actions.
func (o *Orchestrator) narrate(w *world.World, player *world.Player, actions []world.Action, notes []string) string {
	result, err := llm.NarrateTurn(o.llm, world.Summarize(w, player.UserID), w.LastEvents, actions)
	if err != nil {
		slog.Warn("narration stage degraded", "world", w.ID, "error", err)
		result = &llm.NarrationResult{}
	}

	var b strings.Builder
	b.WriteString(result.Narration)

	if extra := strings.Join(notes, "\n\n"); strings.TrimSpace(extra) != "" {
		b.WriteString("\n\n" + extra)
	}

	if len(w.HistorySummaries) > 0 {
		recent := w.HistorySummaries
		if len(recent) > 10 {
			recent = recent[len(recent)-10:]
		}
		b.WriteString("\n\nRecent actions:\n")
		for _, line := range recent {
			b.WriteString("- " + line + "\n")
		}
	}

	b.WriteString("\n\nSuggested actions:\n")
	for i, act := range result.SuggestedActions {
		b.WriteString("  " + strconv.Itoa(i+1) + ") " + act + "\n")
	}
	b.WriteString("Or type your own action.")

	return b.String()
}

// loadOrCreate fetches the world, generating it on first reference, and
// lazily creates the acting player's record.
func (o *Orchestrator) loadOrCreate(userID, worldID, seedIfNew, message string) (*world.World, *world.Player, error) {
	w, ok, err := o.store.Load(worldID)
	if err != nil {
		return nil, nil, err
	}
	if !ok {
		seed := seedIfNew
		if seed == "" {
			seed = message
		}
		if seed == "" {
			seed = "Create a new world."
		}
		w = o.generateWorld(worldID, seed)
	}

	player, ok := w.Players[userID]
	if !ok {
		regionID := firstRegionID(w)
		player = world.NewPlayer(userID, regionID)
		w.Players[userID] = player
	}
	return w, player, nil
}

// generateWorld asks the architect collaborator for a blueprint and builds
// the initial world from it. When the architect degrades or returns no
// regions, the world is seeded with the fallback starter bay.
func (o *Orchestrator) generateWorld(worldID, seed string) *world.World {
	w := world.New(worldID, seed)

	plan, err := llm.GenerateWorld(o.llm, seed)
	if err != nil {
		slog.Warn("world generation degraded", "world", worldID, "error", err)
		plan = &llm.WorldPlan{}
	}

	regions := plan.Regions
	if len(regions) == 0 {
		regions = []*world.Region{{
			ID:          "glass_whale_bay",
			Name:        "Glass Whale Bay",
			Type:        "bay",
			Description: "A floating city built on the back of a shimmering glass whale.",
		}}
	}
	for _, r := range regions {
		if r == nil || r.ID == "" {
			continue
		}
		r.KnownToPlayer = true
		if len(r.Exits) == 0 {
			r.Exits = r.ExitMap()
		}
		w.Regions[r.ID] = r
	}

	switch plan.WorldSize {
	case world.SizeSmall, world.SizeMedium, world.SizeLarge:
		w.WorldSize = plan.WorldSize
	}
	for _, note := range plan.HistoryNotes {
		w.AppendHistory(note, o.cfg.HistoryCap)
	}

	firstRegion := firstRegionID(w)
	for _, c := range plan.StarterCharacters {
		if c == nil || c.ID == "" {
			continue
		}
		if c.RegionID == "" {
			c.RegionID = firstRegion
		}
		if c.Role == "" {
			c.Role = "npc"
		}
		if c.Mood == "" {
			c.Mood = "neutral"
		}
		c.AdjustLoyalty(0)
		w.Characters[c.ID] = c
	}

	if replacement := buildQuestMap(plan.StarterQuests); len(replacement) > 0 {
		w.Quests = replacement
	}

	slog.Info("world created",
		"world", worldID,
		"size", w.WorldSize,
		"regions", len(w.Regions),
		"characters", len(w.Characters),
		"quests", len(w.Quests),
	)
	return w
}

// firstRegionID picks the starter region deterministically.
func firstRegionID(w *world.World) string {
	ids := sortedIDs(w.Regions)
	if len(ids) == 0 {
		return ""
	}
	return ids[0]
}

func sortedIDs[V any](m map[string]V) []string {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
