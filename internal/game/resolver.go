package game

import (
	"fmt"
	"log/slog"
	"strconv"

	"github.com/talgya/dreamloom/internal/llm"
	"github.com/talgya/dreamloom/internal/world"
)

// resolution is what the resolver hands the later pipeline stages.
type resolution struct {
	numTicks int
	notes    []string
}

// resolveActions applies the semantic effect of each interpreted action, in
// list order, to the world and the acting player. Invalid references (an
// unknown region or character) make the action a no-op, never an error.
func (o *Orchestrator) resolveActions(w *world.World, player *world.Player, actions []world.Action) resolution {
	res := resolution{numTicks: 1}

	for _, action := range actions {
		switch action.Type {
		case world.ActionMove:
			if action.TargetRegionID == "" {
				continue
			}
			if _, ok := w.Regions[action.TargetRegionID]; ok {
				player.RegionID = action.TargetRegionID
			}

		case world.ActionFastForward:
			// Last FAST_FORWARD in the list wins.
			res.numTicks = fastForwardTicks(action.Params)

		case world.ActionTalk:
			if note := o.resolveTalk(w, player, action); note != "" {
				res.notes = append(res.notes, note)
			}

		default:
			// EXPLORE, WAIT, WORLD_EDIT, SHOW_QUESTS carry no direct state
			// change; they inform the narration and quest stages.
		}
	}

	return res
}

// fastForwardTicks parses params.days as a positive integer, falling back
// to 1 on anything malformed, missing, or non-positive.
func fastForwardTicks(params world.Params) int {
	days, err := strconv.Atoi(params["days"])
	if err != nil || days < 1 {
		return 1
	}
	return days
}

// resolveTalk handles one TALK action. Talk aimed at another real player is
// never puppeted through the dialogue collaborator; it yields a notice (and
// a chat mirror) instead. Everything else is NPC dialogue, with an unknown
// target treated as a generic passerby.
func (o *Orchestrator) resolveTalk(w *world.World, player *world.Player, action world.Action) string {
	if target := findPlayer(w, action.TargetCharacterID); target != nil {
		// Mirror the raw utterance into the shared chat so everyone sees it.
		if line := action.Params["utterance"]; line != "" {
			w.AppendChat(fmt.Sprintf("%s → %s: %s", player.Name, target.Name, line), o.cfg.ChatCap)
		}
		if _, active := w.ActivePlayers[target.UserID]; active {
			return fmt.Sprintf(
				"You address %s directly. They are here and can respond on their own turn.",
				target.Name,
			)
		}
		return fmt.Sprintf(
			"You call out for %s, but they don't seem to be around right now. "+
				"Maybe focus on the world and its quests until they return.",
			target.Name,
		)
	}

	npc := w.Characters[action.TargetCharacterID]

	result, err := llm.WeaveDialogue(o.llm, world.Summarize(w, player.UserID), player, npc, action.Params)
	if err != nil {
		slog.Warn("dialogue stage degraded", "world", w.ID, "error", err)
		return ""
	}

	if npc != nil {
		if result.Effects.NPCMood != "" {
			npc.Mood = result.Effects.NPCMood
		}
		npc.AdjustLoyalty(float64(result.Effects.NPCLoyaltyDelta))
	}
	player.ApplyStatDeltas(result.Effects.PlayerStatsDelta)

	if result.Dialogue == "" {
		return ""
	}
	note := "Conversation:\n" + result.Dialogue
	if result.NPCReaction != "" {
		note += "\n\nNPC reaction: " + result.NPCReaction
	}
	return note
}

// findPlayer matches a TALK target against every player's character id,
// display name, and user id.
func findPlayer(w *world.World, target string) *world.Player {
	if target == "" {
		return nil
	}
	for _, uid := range sortedIDs(w.Players) {
		p := w.Players[uid]
		if target == p.CharacterID || target == p.Name || target == p.UserID {
			return p
		}
	}
	return nil
}
