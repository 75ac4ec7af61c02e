// One-time world generation — a seed prompt becomes regions, lore, starter
// characters, and the opening of the quest campaign.
package llm

import (
	"fmt"

	"github.com/talgya/dreamloom/internal/world"
)

const architectInstruction = `You are the World Architect for the Dreamloom multiplayer story game.
When a NEW world is requested, you turn an abstract seed_prompt into a GAME
WORLD with regions, lore, key NPCs, and an initial quest campaign.

Your output MUST be strictly valid JSON:
{
  "world_size": "small" | "medium" | "large",
  "regions": [
    {
      "id": "glass_whale_bay",
      "name": "Glass Whale Bay",
      "type": "bay" | "city" | "forest" | "tower" | "cavern" | "other",
      "description": "short vivid description",
      "biome": "coast",
      "neighbors": ["other_region_id"]
    }
  ],
  "history_notes": ["short lore notes about the world's past or tensions"],
  "starter_characters": [
    {
      "id": "mysterious_hooded_figure",
      "name": "The Hooded Figure",
      "role": "npc" | "mentor" | "merchant" | "companion",
      "location_region_id": "glass_whale_bay",
      "mood": "curious",
      "loyalty": 0.5,
      "traits": ["enigmatic"],
      "memories": ["short memory about the world or player"]
    }
  ],
  "starter_quests": [
    {
      "id": "main_1",
      "title": "First main quest in the arc",
      "status": "open",
      "summary": "what the player must do and why it matters",
      "related_regions": ["glass_whale_bay"],
      "related_characters": ["mysterious_hooded_figure"]
    }
  ]
}

Rules:
- Think like a game designer: interpret even abstract prompts as hooks for a
  full adventure world.
- Choose world_size by how expansive the world feels: small = 3-4 regions and
  a short main arc; medium = 4-6 regions; large = 6-8 regions.
- Create 3-6 regions, all with valid ids and neighbor links between them.
- Starter quests must include at least one 'main_1' main quest; you MAY add
  'main_2' or 'side_1' as long as they are clearly connected.
- Keep descriptions punchy and not too long.
- Do NOT write any commentary outside the JSON.`

type architectInput struct {
	Mode       string `json:"mode"`
	SeedPrompt string `json:"seed_prompt"`
}

// WorldPlan is the architect's blueprint for a brand-new world.
type WorldPlan struct {
	WorldSize         world.Size         `json:"world_size"`
	Regions           []*world.Region    `json:"regions"`
	HistoryNotes      []string           `json:"history_notes"`
	StarterCharacters []*world.Character `json:"starter_characters"`
	StarterQuests     []*world.Quest     `json:"starter_quests"`
}

// GenerateWorld asks the architect for a new-world blueprint. An empty plan
// (or error) means the caller seeds its fallback starter region instead.
func GenerateWorld(c Completer, seedPrompt string) (*WorldPlan, error) {
	var out WorldPlan
	in := architectInput{Mode: "NEW_WORLD", SeedPrompt: seedPrompt}
	if err := completeJSON(c, architectInstruction, in, 2000, &out); err != nil {
		return nil, fmt.Errorf("generate world: %w", err)
	}
	return &out, nil
}
