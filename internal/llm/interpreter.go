// Command interpretation — raw player text becomes a structured action list.
package llm

import (
	"fmt"

	"github.com/talgya/dreamloom/internal/world"
)

const interpreterInstruction = `You are the Command Interpreter for the Dreamloom multiplayer story game.
Take the user's message and the current world_summary and output a JSON object
describing one or more actions the player intends to perform.

Output strictly valid JSON with this structure:
{
  "actions": [
    {
      "type": "MOVE" | "TALK" | "EXPLORE" | "WAIT" | "FAST_FORWARD" | "WORLD_EDIT" | "SHOW_QUESTS",
      "target_region_id": string or null,
      "target_character_id": string or null,
      "params": object (key-value pairs, may be empty)
    }
  ]
}

Guidelines:
- If the user types a number like '1' or '2', interpret it as choosing one of
  the suggested actions mentioned in the world_summary if present.
- If the user wants to skip time (e.g. 'wait 3 days', 'fast-forward a week'),
  use type FAST_FORWARD and put the approximate number of days in params.days.
- If the user is just looking around and not moving, use type EXPLORE.
- If unclear, fall back to a single WAIT action.
- Do NOT add explanations or extra text. Only output JSON.`

type interpreterInput struct {
	UserMessage  string `json:"user_message"`
	WorldSummary string `json:"world_summary"`
}

type interpreterResult struct {
	Actions []world.Action `json:"actions"`
}

// InterpretCommands turns a raw player message into an action list. An empty
// list means the caller should synthesize a WAIT.
func InterpretCommands(c Completer, userMessage, worldSummary string) ([]world.Action, error) {
	var out interpreterResult
	in := interpreterInput{UserMessage: userMessage, WorldSummary: worldSummary}
	if err := completeJSON(c, interpreterInstruction, in, 400, &out); err != nil {
		return nil, fmt.Errorf("interpret commands: %w", err)
	}
	return out.Actions, nil
}
