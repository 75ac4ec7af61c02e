package world

import (
	"fmt"
	"sort"
	"strings"
)

// Summarize builds the compact text summary handed to every collaborator:
// the focus player, the metric line, known regions, other players, and the
// most recent shared history.
func Summarize(w *World, focusUser string) string {
	player := w.Players[focusUser]
	if player == nil {
		// Fall back to any player, in deterministic order.
		for _, uid := range sortedKeys(w.Players) {
			player = w.Players[uid]
			break
		}
	}
	if player == nil {
		return "No players in this world yet."
	}

	regionName := player.RegionID
	if r := w.Regions[player.RegionID]; r != nil {
		regionName = r.Name
	}

	m := w.Metrics
	metricLine := fmt.Sprintf(
		"Metrics: health=%.2f, chaos=%.2f, magic=%.2f, tension=%.2f.",
		m.WorldHealth, m.ChaosLevel, m.MagicLevel, m.AllianceTension,
	)

	var regionNames []string
	for _, rid := range sortedKeys(w.Regions) {
		regionNames = append(regionNames, w.Regions[rid].Name)
		if len(regionNames) == 5 {
			break
		}
	}

	var others []string
	for _, uid := range sortedKeys(w.Players) {
		p := w.Players[uid]
		if p.UserID == player.UserID {
			continue
		}
		loc := p.RegionID
		if r := w.Regions[p.RegionID]; r != nil {
			loc = r.Name
		}
		others = append(others, fmt.Sprintf("%s (%s) at %s", p.Name, p.Class, loc))
	}
	otherLine := "none"
	if len(others) > 0 {
		otherLine = strings.Join(others, ", ")
	}

	recent := w.HistorySummaries
	if len(recent) > 3 {
		recent = recent[len(recent)-3:]
	}
	historyLine := "none"
	if len(recent) > 0 {
		historyLine = strings.Join(recent, " | ")
	}

	return fmt.Sprintf(
		"Player: %s (%s) at %s.\n%s\nKnown regions: %s.\nOther players: %s.\nRecent history: %s.\n",
		player.Name, player.Class, regionName,
		metricLine,
		strings.Join(regionNames, ", "),
		otherLine,
		historyLine,
	)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
