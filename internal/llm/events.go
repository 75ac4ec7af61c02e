// Event advancement — the passage of num_ticks becomes world events and
// metric drift.
package llm

import (
	"fmt"

	"github.com/talgya/dreamloom/internal/world"
)

const eventsInstruction = `You are the Event Engine for the Dreamloom multiplayer story game.
You receive a compact world_summary, a list of recent player actions, the
current_tick, and num_ticks to advance. You simulate the passage of time and
respond with JSON:
{
  "events": [
    {
      "id": "storm_42",
      "type": "storm" | "npc_approach" | "omen" | "festival" | "dragon_hatching" | "other",
      "description": "short description of what happens",
      "affected_regions": ["region_id"],
      "impact": {
        "world_health": -0.05,
        "chaos_level": 0.1
      }
    }
  ],
  "metrics_delta": {
    "world_health": float (optional),
    "chaos_level": float (optional),
    "magic_level": float (optional),
    "alliance_tension": float (optional)
  },
  "player_stats_delta": {
    "courage": float (optional),
    "empathy": float (optional),
    "cunning": float (optional)
  }
}

Guidelines:
- If num_ticks is small (1-3), keep events subtle and local.
- If num_ticks is large (fast-forward), you may describe a broader shift.
- Avoid lethal or destructive events; focus on mood, weather, omens, and
  social tension.
- At most 3 events per call.
- Do NOT write any commentary outside the JSON.`

type eventsInput struct {
	WorldSummary string         `json:"world_summary"`
	Actions      []world.Action `json:"actions"`
	CurrentTick  int            `json:"current_tick"`
	NumTicks     int            `json:"num_ticks"`
}

// EventPlan is one event as reported by the collaborator, before the
// pipeline stamps it with a tick.
type EventPlan struct {
	ID              string       `json:"id"`
	Type            string       `json:"type"`
	Description     string       `json:"description"`
	AffectedRegions []string     `json:"affected_regions"`
	Impact          world.Deltas `json:"impact"`
}

// EventsResult is the event stage's reply for one turn.
type EventsResult struct {
	Events           []EventPlan  `json:"events"`
	MetricsDelta     world.Deltas `json:"metrics_delta"`
	PlayerStatsDelta world.Deltas `json:"player_stats_delta"`
}

// AdvanceEvents simulates num_ticks of world time.
func AdvanceEvents(c Completer, worldSummary string, actions []world.Action, currentTick, numTicks int) (*EventsResult, error) {
	in := eventsInput{
		WorldSummary: worldSummary,
		Actions:      actions,
		CurrentTick:  currentTick,
		NumTicks:     numTicks,
	}
	var out EventsResult
	if err := completeJSON(c, eventsInstruction, in, 700, &out); err != nil {
		return nil, fmt.Errorf("advance events: %w", err)
	}
	return &out, nil
}
