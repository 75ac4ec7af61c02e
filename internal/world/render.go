package world

import (
	"fmt"
	"math"
	"strings"
)

// RenderView formats the world as the text panel shown beside the story:
// current region, exits, local quests, metric and stat bars, and nearby
// players. It is pure formatting and never mutates state.
func RenderView(w *World, focusUser string, specialEvent string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "════════════ WORLD MAP ════════════\n")
	fmt.Fprintf(&b, "World: %s (size: %s)\n", w.ID, w.WorldSize)
	fmt.Fprintf(&b, "Tick: %d\n\n", w.Tick)

	player := focusPlayer(w, focusUser)
	if player == nil {
		b.WriteString("No players are currently in this world.")
		return b.String()
	}

	region := w.Regions[player.RegionID]
	regionName := player.RegionID
	regionDesc := "(unknown region)"
	if region != nil {
		regionName = region.Name
		regionDesc = region.Description
	}

	fmt.Fprintf(&b, "You are in: %s\n  %s\n\n", regionName, regionDesc)

	b.WriteString("Paths from here:\n")
	if region == nil {
		b.WriteString("  (Region data missing.)\n")
	} else {
		exits := region.ExitMap()
		if len(exits) == 0 {
			b.WriteString("  (No obvious paths. Try exploring.)\n")
		} else {
			for _, label := range sortedKeys(exits) {
				destID := exits[label]
				destName := destID
				if dest := w.Regions[destID]; dest != nil {
					destName = dest.Name
				}
				line := fmt.Sprintf("  [%s] %s", label, destName)
				if flavor := region.ExitFlavor[label]; flavor != "" {
					line += " – " + flavor
				}
				b.WriteString(line + "\n")
			}
		}
	}
	b.WriteString("\n")

	b.WriteString("Quests tied to this area:\n")
	local := regionQuests(w, region)
	if len(local) == 0 {
		b.WriteString("  (No active quests are anchored here.)\n")
	} else {
		for _, q := range local {
			tag := "SIDE"
			if q.IsMain() {
				tag = "MAIN"
			}
			fmt.Fprintf(&b, "  - [%s] %s (%s)\n      %s\n", tag, q.Title, q.Status, q.Summary)
		}
	}
	b.WriteString("\n")

	m := w.Metrics
	b.WriteString("World State:\n")
	fmt.Fprintf(&b, "  Health   %s  (%.2f)\n", bar(m.WorldHealth), m.WorldHealth)
	fmt.Fprintf(&b, "  Chaos    %s  (%.2f)\n", bar(m.ChaosLevel), m.ChaosLevel)
	fmt.Fprintf(&b, "  Magic    %s  (%.2f)\n", bar(m.MagicLevel), m.MagicLevel)
	fmt.Fprintf(&b, "  Tension  %s  (%.2f)\n\n", bar(m.AllianceTension), m.AllianceTension)

	fmt.Fprintf(&b, "Your stats (%s, %s):\n", player.Name, player.Class)
	for _, name := range sortedKeys(player.Stats) {
		v := player.Stats[name]
		fmt.Fprintf(&b, "  %-8s %s  (%.2f)\n", title(name), bar(v), v)
	}
	b.WriteString("\n")

	b.WriteString("Players in this region:\n")
	others := othersHere(w, player)
	if len(others) == 0 {
		b.WriteString("  (You are alone here.)\n")
	} else {
		for _, p := range others {
			fmt.Fprintf(&b, "  - %s (%s)\n", p.Name, p.Class)
		}
	}

	if specialEvent != "" {
		fmt.Fprintf(&b, "\n!!! SPECIAL EVENT: %s !!!\n", specialEvent)
	}

	return b.String()
}

func focusPlayer(w *World, focusUser string) *Player {
	if p := w.Players[focusUser]; p != nil {
		return p
	}
	for _, uid := range sortedKeys(w.Players) {
		return w.Players[uid]
	}
	return nil
}

func regionQuests(w *World, region *Region) []*Quest {
	if region == nil {
		return nil
	}
	local := make(map[string]bool, len(region.LocalQuestIDs))
	for _, qid := range region.LocalQuestIDs {
		local[qid] = true
	}
	var quests []*Quest
	for _, qid := range sortedKeys(w.Quests) {
		q := w.Quests[qid]
		if local[q.ID] {
			quests = append(quests, q)
			continue
		}
		for _, rid := range q.RelatedRegions {
			if rid == region.ID {
				quests = append(quests, q)
				break
			}
		}
	}
	return quests
}

func othersHere(w *World, player *Player) []*Player {
	var here []*Player
	for _, uid := range sortedKeys(w.Players) {
		p := w.Players[uid]
		if p.UserID != player.UserID && p.RegionID == player.RegionID {
			here = append(here, p)
		}
	}
	return here
}

// bar turns a [0,1] value into a ten-cell gauge, e.g. 0.7 -> ███████░░░
func bar(v float64) string {
	filled := int(math.Round(clamp01(v) * 10))
	return strings.Repeat("█", filled) + strings.Repeat("░", 10-filled)
}

func title(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
