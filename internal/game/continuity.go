package game

import (
	"log/slog"
	"strings"

	"github.com/talgya/dreamloom/internal/llm"
	"github.com/talgya/dreamloom/internal/world"
)

// reconcileQuests hands the current campaign to the quest collaborator and
// applies its reply with full-replace semantics: a non-empty quest list
// replaces the quest map wholesale, an empty reply leaves the campaign
// untouched. Returned notifications become extra notes for the turn's text.
func (o *Orchestrator) reconcileQuests(w *world.World, player *world.Player, actions []world.Action) []string {
	existing := make([]*world.Quest, 0, len(w.Quests))
	for _, qid := range sortedIDs(w.Quests) {
		existing = append(existing, w.Quests[qid])
	}

	result, err := llm.CurateQuests(
		o.llm,
		world.Summarize(w, player.UserID),
		w.LastEvents,
		actions,
		existing,
		w.WorldSize,
	)
	if err != nil {
		slog.Warn("quest stage degraded", "world", w.ID, "error", err)
		return nil
	}

	if replacement := buildQuestMap(result.Quests); len(replacement) > 0 {
		w.Quests = replacement
	}

	player.ApplyStatDeltas(result.PlayerStatsDelta)

	if len(result.Notifications) == 0 {
		return nil
	}
	var b strings.Builder
	b.WriteString("Quest updates:")
	for _, n := range result.Notifications {
		b.WriteString("\n- " + n)
	}
	return []string{b.String()}
}

// buildQuestMap keys the collaborator's quest list by id, dropping entries
// with no id and defaulting unknown statuses to open. Numbering is the
// collaborator's contract; ids are not validated beyond being non-empty.
func buildQuestMap(quests []*world.Quest) map[string]*world.Quest {
	m := make(map[string]*world.Quest, len(quests))
	for _, q := range quests {
		if q == nil || q.ID == "" {
			continue
		}
		switch q.Status {
		case world.QuestOpen, world.QuestCompleted, world.QuestFailed:
		default:
			q.Status = world.QuestOpen
		}
		m[q.ID] = q
	}
	return m
}
