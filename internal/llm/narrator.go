// Turn narration — the post-mutation world becomes a short narrative beat
// and a handful of suggested next actions.
package llm

import (
	"fmt"

	"github.com/talgya/dreamloom/internal/world"
)

const narratorInstruction = `You are the Story Conductor for the Dreamloom multiplayer story game.
You take a compact world_summary, the recent events, and the list of player
actions, and produce a concise narration along with a few suggested next
actions.

You MUST output strictly valid JSON of the form:
{
  "narration": "a short cinematic paragraph in second person, describing what the player perceives",
  "suggested_actions": [
    "Talk to the hooded figure at the docks",
    "Inspect the glowing runes on the pier"
  ]
}

Guidelines:
- Narration: 2 to 6 sentences. Second person ('you'). Grounded in the given
  world_summary and events.
- Suggested actions: 2 to 4 short, concrete and diverse options.
- If multiple players exist, you may lightly mention others' presence, but
  keep the focus on the current user.
- Do NOT write any commentary outside the JSON.`

type narratorInput struct {
	WorldSummary string         `json:"world_summary"`
	LastEvents   []world.Event  `json:"last_events"`
	Actions      []world.Action `json:"actions"`
}

// NarrationResult is the conductor's reply for one full turn.
type NarrationResult struct {
	Narration        string   `json:"narration"`
	SuggestedActions []string `json:"suggested_actions"`
}

// NarrateTurn produces the player-facing prose for a completed turn.
func NarrateTurn(c Completer, worldSummary string, lastEvents []world.Event, actions []world.Action) (*NarrationResult, error) {
	in := narratorInput{
		WorldSummary: worldSummary,
		LastEvents:   lastEvents,
		Actions:      actions,
	}
	var out NarrationResult
	if err := completeJSON(c, narratorInstruction, in, 500, &out); err != nil {
		return nil, fmt.Errorf("narrate turn: %w", err)
	}
	return &out, nil
}
