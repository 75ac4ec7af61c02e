package world

import (
	"encoding/json"
	"fmt"
	"testing"
)

func TestMetricsStayClamped(t *testing.T) {
	sequences := [][]Deltas{
		{{"world_health": 5.0}, {"world_health": -0.2}},
		{{"chaos_level": -3.0}, {"chaos_level": 0.05}},
		{{"magic_level": 0.9}, {"magic_level": 0.9}, {"magic_level": -9.0}},
		{{"alliance_tension": 100}, {"world_health": -100, "chaos_level": 0.5}},
	}

	for i, seq := range sequences {
		m := DefaultMetrics()
		for _, deltas := range seq {
			m.Apply(deltas)
			for name, v := range map[string]float64{
				"world_health":     m.WorldHealth,
				"chaos_level":      m.ChaosLevel,
				"magic_level":      m.MagicLevel,
				"alliance_tension": m.AllianceTension,
			} {
				if v < 0 || v > 1 {
					t.Fatalf("sequence %d: %s out of range: %v", i, name, v)
				}
			}
		}
	}
}

func TestMetricsApplyIgnoresUnknownNames(t *testing.T) {
	m := DefaultMetrics()
	before := m
	m.Apply(Deltas{"gold_supply": 0.4})
	if m != before {
		t.Fatalf("unknown delta changed metrics: %+v", m)
	}
}

func TestBoundedLogsEvictOldestFirst(t *testing.T) {
	w := New("w1", "seed")

	for i := 0; i < 120; i++ {
		w.AppendHistory(fmt.Sprintf("entry %d", i), DefaultHistoryCap)
	}
	if len(w.HistorySummaries) != DefaultHistoryCap {
		t.Fatalf("history length = %d, want %d", len(w.HistorySummaries), DefaultHistoryCap)
	}
	if w.HistorySummaries[0] != "entry 70" {
		t.Fatalf("oldest surviving entry = %q, want %q", w.HistorySummaries[0], "entry 70")
	}
	if w.HistorySummaries[len(w.HistorySummaries)-1] != "entry 119" {
		t.Fatalf("newest entry = %q", w.HistorySummaries[len(w.HistorySummaries)-1])
	}

	for i := 0; i < 500; i++ {
		w.AppendChat(fmt.Sprintf("chat %d", i), DefaultChatCap)
	}
	if len(w.ChatLog) != DefaultChatCap {
		t.Fatalf("chat length = %d, want %d", len(w.ChatLog), DefaultChatCap)
	}

	for i := 0; i < 150; i++ {
		w.AppendStory(StoryEntry{Tick: i}, DefaultStoryCap)
	}
	if len(w.StoryLog) != DefaultStoryCap {
		t.Fatalf("story length = %d, want %d", len(w.StoryLog), DefaultStoryCap)
	}
	if w.StoryLog[0].Tick != 50 {
		t.Fatalf("oldest surviving story tick = %d, want 50", w.StoryLog[0].Tick)
	}
}

func TestApplyStatDeltasClampsAndDefaults(t *testing.T) {
	p := NewPlayer("lexi", "bay")

	p.ApplyStatDeltas(Deltas{"courage": 0.9, "empathy": -0.9, "wisdom": 0.25})

	if p.Stats["courage"] != 1.0 {
		t.Fatalf("courage = %v, want 1.0", p.Stats["courage"])
	}
	if p.Stats["empathy"] != 0.0 {
		t.Fatalf("empathy = %v, want 0.0", p.Stats["empathy"])
	}
	// Unknown stats start from the default.
	if got := p.Stats["wisdom"]; got != 0.75 {
		t.Fatalf("wisdom = %v, want 0.75", got)
	}
	if p.Stats["cunning"] != DefaultStat {
		t.Fatalf("untouched stat moved: %v", p.Stats["cunning"])
	}
}

func TestExitMapDerivesFromNeighbors(t *testing.T) {
	r := &Region{ID: "bay", Neighbors: []string{"forest", "tower"}}

	exits := r.ExitMap()
	if exits["path1"] != "forest" || exits["path2"] != "tower" {
		t.Fatalf("derived exits = %v", exits)
	}

	r.Exits = map[string]string{"north": "forest"}
	exits = r.ExitMap()
	if len(exits) != 1 || exits["north"] != "forest" {
		t.Fatalf("explicit exits not preserved: %v", exits)
	}
}

func TestParamsDecodeCoercesScalars(t *testing.T) {
	var a Action
	raw := `{"type":"FAST_FORWARD","params":{"days":5,"note":"hurry","flag":true,"junk":{"x":1}}}`
	if err := json.Unmarshal([]byte(raw), &a); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if a.Params["days"] != "5" {
		t.Fatalf("days = %q, want %q", a.Params["days"], "5")
	}
	if a.Params["note"] != "hurry" || a.Params["flag"] != "true" {
		t.Fatalf("params = %v", a.Params)
	}
	if _, ok := a.Params["junk"]; ok {
		t.Fatal("nested value should be dropped")
	}
}

func TestDeltasDecodeDropsMalformedEntries(t *testing.T) {
	var d Deltas
	raw := `{"courage":0.1,"empathy":"0.2","cunning":"lots","junk":[1]}`
	if err := json.Unmarshal([]byte(raw), &d); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if d["courage"] != 0.1 {
		t.Fatalf("courage = %v", d["courage"])
	}
	if d["empathy"] != 0.2 {
		t.Fatalf("quoted number not parsed: %v", d["empathy"])
	}
	if _, ok := d["cunning"]; ok {
		t.Fatal("non-numeric delta should be dropped")
	}
	if _, ok := d["junk"]; ok {
		t.Fatal("array delta should be dropped")
	}
}

func TestQuestIsMain(t *testing.T) {
	if !(&Quest{ID: "main_2"}).IsMain() {
		t.Fatal("main_2 should be main")
	}
	if (&Quest{ID: "side_1"}).IsMain() {
		t.Fatal("side_1 should not be main")
	}
}
