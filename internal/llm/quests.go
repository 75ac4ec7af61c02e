// Quest curation — the campaign is reconciled against this turn's events and
// actions. The reply is the FULL quest list, not a diff.
package llm

import (
	"fmt"

	"github.com/talgya/dreamloom/internal/world"
)

const questsInstruction = `You are the Quest Master for the Dreamloom multiplayer story game.
You are designing a connected QUEST CAMPAIGN for a single world. Think in
terms of a MAIN QUEST ARC (2-6 steps) with a clear beginning, middle, and
end, plus optional SIDE QUESTS that enrich the story without exploding in
number. A world can eventually be 'completed' once the main arc is finished.

You MUST output strictly valid JSON of the form:
{
  "quests": [
    {
      "id": string,
      "title": string,
      "status": "open" | "completed" | "failed",
      "summary": string,
      "related_regions": [string],
      "related_characters": [string]
    }
  ],
  "notifications": [
    "short 1-line update to show the player about quest changes"
  ],
  "player_stats_delta": {
    "courage": float (optional),
    "empathy": float (optional),
    "cunning": float (optional)
  }
}

CAMPAIGN LOGIC
- Treat existing_quests as the CURRENT ground truth and update them instead
  of replacing them randomly.
- Maintain a SINGLE MAIN STORY ARC with ids 'main_1', 'main_2', 'main_3', ...
  The chain is finite: small world 2-3 main quests, medium 3-5, large 4-7.
- Side quests use ids 'side_1', 'side_2', ...; keep at most 2-3 open at once.
- Keep TOTAL open quests around 1-3 at a time.

UPDATING QUESTS
- Mark a quest 'completed' when its core objective is clearly achieved, and
  'failed' only if success is obviously impossible.
- When a main step completes, open the next 'main_X+1' quest if the arc is
  still ongoing; after the FINAL main quest, do not create new major arcs.

IMPORTANT
- Always return the FULL updated quest list in 'quests', not just changes.
- Do NOT output anything outside the required JSON.`

type questsInput struct {
	WorldSummary   string         `json:"world_summary"`
	LastEvents     []world.Event  `json:"last_events"`
	Actions        []world.Action `json:"actions"`
	ExistingQuests []*world.Quest `json:"existing_quests"`
	WorldSize      world.Size     `json:"world_size"`
}

// QuestsResult is the quest stage's reply: a full-replacement campaign plus
// player-facing notifications.
type QuestsResult struct {
	Quests           []*world.Quest `json:"quests"`
	Notifications    []string       `json:"notifications"`
	PlayerStatsDelta world.Deltas   `json:"player_stats_delta"`
}

// CurateQuests reconciles the campaign for one turn. An empty quest list
// means the caller leaves the existing campaign untouched.
func CurateQuests(c Completer, worldSummary string, lastEvents []world.Event, actions []world.Action, existing []*world.Quest, size world.Size) (*QuestsResult, error) {
	in := questsInput{
		WorldSummary:   worldSummary,
		LastEvents:     lastEvents,
		Actions:        actions,
		ExistingQuests: existing,
		WorldSize:      size,
	}
	var out QuestsResult
	if err := completeJSON(c, questsInstruction, in, 900, &out); err != nil {
		return nil, fmt.Errorf("curate quests: %w", err)
	}
	return &out, nil
}
