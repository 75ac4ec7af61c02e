// NPC dialogue — TALK actions aimed at a character (or the ambient world)
// become a short script plus optional mood, loyalty, and stat effects.
package llm

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/talgya/dreamloom/internal/world"
)

const dialogueInstruction = `You are the Dialogue Weaver for the Dreamloom multiplayer story game.
You receive a compact world_summary, a player snapshot, an optional NPC
snapshot, and a TALK action with any raw text the user intended to say.

You MUST output strictly valid JSON of the form:
{
  "dialogue": "short 2-8 line script between the player and NPC in plain text",
  "npc_reaction": "one-sentence description of how the NPC feels about the player after this",
  "world_effects": {
    "npc_mood": string (optional),
    "npc_loyalty_delta": float (optional),
    "player_stats_delta": {
      "courage": float (optional),
      "empathy": float (optional),
      "cunning": float (optional)
    }
  }
}

Guidelines:
- Keep the dialogue grounded in the world_summary and the NPC's role.
- The player is always 'you'. The NPC speaks in first person.
- If npc is null, treat it as talking to a generic passerby or the ambient world.
- If you don't need any changes, omit world_effects or leave subfields empty.
- Do NOT write any commentary outside the JSON.`

type dialoguePlayer struct {
	Name     string `json:"name"`
	Class    string `json:"char_class"`
	RegionID string `json:"location_region_id"`
}

type dialogueNPC struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Role    string  `json:"role"`
	Mood    string  `json:"mood"`
	Loyalty float64 `json:"loyalty"`
}

type dialogueInput struct {
	WorldSummary string         `json:"world_summary"`
	Player       dialoguePlayer `json:"player"`
	NPC          *dialogueNPC   `json:"npc"`
	Action       struct {
		Params world.Params `json:"params"`
	} `json:"action"`
}

// DialogueEffects are the optional state changes a conversation produces.
type DialogueEffects struct {
	NPCMood          string       `json:"npc_mood"`
	NPCLoyaltyDelta  looseFloat   `json:"npc_loyalty_delta"`
	PlayerStatsDelta world.Deltas `json:"player_stats_delta"`
}

// DialogueResult is the weaver's reply for one TALK action.
type DialogueResult struct {
	Dialogue    string          `json:"dialogue"`
	NPCReaction string          `json:"npc_reaction"`
	Effects     DialogueEffects `json:"world_effects"`
}

// WeaveDialogue runs one NPC conversation. npc may be nil for ambient talk.
func WeaveDialogue(c Completer, worldSummary string, player *world.Player, npc *world.Character, params world.Params) (*DialogueResult, error) {
	in := dialogueInput{
		WorldSummary: worldSummary,
		Player: dialoguePlayer{
			Name:     player.Name,
			Class:    player.Class,
			RegionID: player.RegionID,
		},
	}
	in.Action.Params = params
	if npc != nil {
		in.NPC = &dialogueNPC{
			ID:      npc.ID,
			Name:    npc.Name,
			Role:    npc.Role,
			Mood:    npc.Mood,
			Loyalty: npc.Loyalty,
		}
	}

	var out DialogueResult
	if err := completeJSON(c, dialogueInstruction, in, 600, &out); err != nil {
		return nil, fmt.Errorf("weave dialogue: %w", err)
	}
	return &out, nil
}

// looseFloat decodes a float that collaborators sometimes quote or mangle;
// malformed values become zero so the prior state is retained.
type looseFloat float64

func (f *looseFloat) UnmarshalJSON(data []byte) error {
	var v float64
	if err := json.Unmarshal(data, &v); err == nil {
		*f = looseFloat(v)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if v, err := strconv.ParseFloat(s, 64); err == nil {
			*f = looseFloat(v)
			return nil
		}
	}
	*f = 0
	return nil
}
