// Package world defines the entity graph for one persistent game world and
// the invariants every other package relies on: metrics and stats clamped to
// [0,1], bounded append-only logs, and map keys matching entity ids.
package world

import (
	"encoding/json"
	"strconv"
	"time"
)

// Size classifies how expansive a world is. It steers how long the main
// quest arc is allowed to grow.
type Size string

const (
	SizeSmall  Size = "small"
	SizeMedium Size = "medium"
	SizeLarge  Size = "large"
)

// Default caps for the bounded logs. Deployments can override these through
// configuration; the values match the original tuning.
const (
	DefaultHistoryCap = 50
	DefaultChatCap    = 200
	DefaultStoryCap   = 100
)

// World is the complete state of one game instance. It is persisted as a
// single document and mutated exactly once per turn.
type World struct {
	ID         string `json:"world_id"`
	SeedPrompt string `json:"seed_prompt"`
	Tick       int    `json:"tick"`

	Regions    map[string]*Region    `json:"regions"`
	Characters map[string]*Character `json:"characters"`
	Players    map[string]*Player    `json:"players"`
	Quests     map[string]*Quest     `json:"quests"`

	Metrics Metrics `json:"metrics"`

	// HistorySummaries is the shared command history, newest last.
	HistorySummaries []string `json:"history_summaries"`

	// LastEvents holds the events produced by the most recent turn only.
	LastEvents []Event `json:"last_events"`

	// ActivePlayers maps user id to last-activity time. Always a subset of
	// Players' keys.
	ActivePlayers map[string]time.Time `json:"active_players"`

	LastSceneText string `json:"last_scene_text,omitempty"`
	WorldSize     Size   `json:"world_size"`

	ChatLog  []string     `json:"chat_log"`
	StoryLog []StoryEntry `json:"story_log"`

	// IsOpen is true iff ActivePlayers is non-empty after pruning.
	IsOpen bool `json:"is_open"`
}

// New creates an empty world with initialized maps and default metrics.
func New(id, seedPrompt string) *World {
	return &World{
		ID:            id,
		SeedPrompt:    seedPrompt,
		Regions:       make(map[string]*Region),
		Characters:    make(map[string]*Character),
		Players:       make(map[string]*Player),
		Quests:        make(map[string]*Quest),
		Metrics:       DefaultMetrics(),
		ActivePlayers: make(map[string]time.Time),
		WorldSize:     SizeMedium,
	}
}

// StoryEntry is one beat of the shared story timeline.
type StoryEntry struct {
	Tick      int       `json:"tick"`
	UserID    string    `json:"user_id"`
	Message   string    `json:"message"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// AppendHistory records a command in the shared history, evicting the oldest
// entries beyond max.
func (w *World) AppendHistory(entry string, max int) {
	w.HistorySummaries = appendCapped(w.HistorySummaries, entry, max)
}

// AppendChat records a chat line, evicting the oldest entries beyond max.
func (w *World) AppendChat(line string, max int) {
	w.ChatLog = appendCapped(w.ChatLog, line, max)
}

// AppendStory records a story beat, evicting the oldest entries beyond max.
func (w *World) AppendStory(entry StoryEntry, max int) {
	w.StoryLog = appendCapped(w.StoryLog, entry, max)
}

func appendCapped[T any](log []T, entry T, max int) []T {
	log = append(log, entry)
	if max > 0 && len(log) > max {
		log = log[len(log)-max:]
	}
	return log
}

// Region is one named place players can occupy and move between.
type Region struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Type        string `json:"type"`
	Biome       string `json:"biome"`

	Neighbors     []string `json:"neighbors"`
	KnownToPlayer bool     `json:"known_to_player"`

	// Exits maps a path label to a destination region id. When empty, the
	// labels are derived from Neighbors.
	Exits      map[string]string `json:"exits"`
	ExitFlavor map[string]string `json:"exit_flavor"`

	LocalQuestIDs []string `json:"local_quest_ids"`
}

// ExitMap returns the region's exits, deriving "path1".."pathN" labels from
// the neighbor list when no explicit exits exist.
func (r *Region) ExitMap() map[string]string {
	if len(r.Exits) > 0 {
		return r.Exits
	}
	exits := make(map[string]string, len(r.Neighbors))
	for i, nb := range r.Neighbors {
		exits["path"+strconv.Itoa(i+1)] = nb
	}
	return exits
}

// Character is a non-player character.
type Character struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Role     string   `json:"role"`
	RegionID string   `json:"location_region_id"`
	Mood     string   `json:"mood"`
	Loyalty  float64  `json:"loyalty"`
	Traits   []string `json:"traits"`
	Memories []string `json:"memories"`
}

// AdjustLoyalty shifts loyalty by delta, clamped to [0,1].
func (c *Character) AdjustLoyalty(delta float64) {
	c.Loyalty = clamp01(c.Loyalty + delta)
}

// DefaultStat is the starting value for any player stat not yet tracked.
const DefaultStat = 0.5

// Player is one user's character inside a specific world. The user id is
// stable across sessions; presence is tracked separately in
// World.ActivePlayers.
type Player struct {
	UserID      string             `json:"user_id"`
	CharacterID string             `json:"character_id"`
	Name        string             `json:"name"`
	Class       string             `json:"char_class"`
	RegionID    string             `json:"location_region_id"`
	Stats       map[string]float64 `json:"stats"`
	Reputation  map[string]float64 `json:"reputation"`
	Goals       []string           `json:"goals"`
	Inventory   []string           `json:"inventory"`
}

// NewPlayer creates a player with the default wanderer loadout.
func NewPlayer(userID, regionID string) *Player {
	return &Player{
		UserID:      userID,
		CharacterID: userID + "_char",
		Name:        userID,
		Class:       "wanderer",
		RegionID:    regionID,
		Stats: map[string]float64{
			"courage": DefaultStat,
			"empathy": DefaultStat,
			"cunning": DefaultStat,
		},
		Reputation: make(map[string]float64),
	}
}

// ApplyStatDeltas shifts each named stat by its delta, clamped to [0,1].
// Unknown stats start from the default value.
func (p *Player) ApplyStatDeltas(deltas Deltas) {
	for name, delta := range deltas {
		base, ok := p.Stats[name]
		if !ok {
			base = DefaultStat
		}
		if p.Stats == nil {
			p.Stats = make(map[string]float64)
		}
		p.Stats[name] = clamp01(base + delta)
	}
}

// QuestStatus is the lifecycle state of a quest.
type QuestStatus string

const (
	QuestOpen      QuestStatus = "open"
	QuestCompleted QuestStatus = "completed"
	QuestFailed    QuestStatus = "failed"
)

// Quest is one step of the campaign. Main-arc quests use ids "main_1",
// "main_2", ...; side content uses "side_1", "side_2", ...
type Quest struct {
	ID      string      `json:"id"`
	Title   string      `json:"title"`
	Status  QuestStatus `json:"status"`
	Summary string      `json:"summary"`

	RelatedRegions    []string `json:"related_regions"`
	RelatedCharacters []string `json:"related_characters"`

	// Optional evaluation hints for quest resolution.
	AnswerType     string   `json:"answer_type,omitempty"`
	CorrectAnswers []string `json:"correct_answers,omitempty"`
	Keywords       []string `json:"keywords,omitempty"`
}

// IsMain reports whether the quest belongs to the main arc.
func (q *Quest) IsMain() bool {
	return len(q.ID) > 5 && q.ID[:5] == "main_"
}

// Event is one world occurrence landed on a tick by the event stage.
type Event struct {
	ID              string   `json:"id"`
	Type            string   `json:"type"`
	Description     string   `json:"description"`
	Tick            int      `json:"tick"`
	AffectedRegions []string `json:"affected_regions"`
	Impact          Deltas   `json:"impact"`
}

// ActionType enumerates the interpreted player intents.
type ActionType string

const (
	ActionMove        ActionType = "MOVE"
	ActionTalk        ActionType = "TALK"
	ActionExplore     ActionType = "EXPLORE"
	ActionWait        ActionType = "WAIT"
	ActionFastForward ActionType = "FAST_FORWARD"
	ActionWorldEdit   ActionType = "WORLD_EDIT"
	ActionShowQuests  ActionType = "SHOW_QUESTS"
)

// Action is one interpreted player intent for a turn.
type Action struct {
	Type              ActionType `json:"type"`
	TargetRegionID    string     `json:"target_region_id,omitempty"`
	TargetCharacterID string     `json:"target_character_id,omitempty"`
	Params            Params     `json:"params,omitempty"`
}

// Params carries free-form key/value action parameters. Collaborators emit
// values of mixed JSON types; decoding coerces scalars to strings and drops
// anything else.
type Params map[string]string

// UnmarshalJSON accepts strings, numbers, and booleans as values.
func (p *Params) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(Params, len(raw))
	for k, v := range raw {
		switch val := v.(type) {
		case string:
			out[k] = val
		case float64:
			out[k] = strconv.FormatFloat(val, 'f', -1, 64)
		case bool:
			out[k] = strconv.FormatBool(val)
		}
	}
	*p = out
	return nil
}

// Deltas maps a metric or stat name to a signed change. Decoding drops
// non-numeric entries per key so one malformed delta never discards the
// rest, and the prior value is simply retained for the dropped key.
type Deltas map[string]float64

// UnmarshalJSON keeps numeric entries and silently skips the rest.
func (d *Deltas) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(Deltas, len(raw))
	for k, v := range raw {
		var f float64
		if err := json.Unmarshal(v, &f); err == nil {
			out[k] = f
			continue
		}
		var s string
		if err := json.Unmarshal(v, &s); err == nil {
			if f, err := strconv.ParseFloat(s, 64); err == nil {
				out[k] = f
			}
		}
	}
	*d = out
	return nil
}
