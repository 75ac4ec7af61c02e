package game

import (
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/talgya/dreamloom/internal/config"
	"github.com/talgya/dreamloom/internal/world"
)

// memStore keeps snapshots as JSON documents in memory, mimicking the real
// store's contract: absent worlds return ok=false, and every load hands
// back an independent, normalized copy.
type memStore struct {
	mu        sync.Mutex
	worlds    map[string][]byte
	loadDelay time.Duration
}

func newMemStore() *memStore {
	return &memStore{worlds: make(map[string][]byte)}
}

func (s *memStore) Load(id string) (*world.World, bool, error) {
	if s.loadDelay > 0 {
		time.Sleep(s.loadDelay)
	}
	s.mu.Lock()
	data, ok := s.worlds[id]
	s.mu.Unlock()
	if !ok {
		return nil, false, nil
	}
	var w world.World
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, false, err
	}
	w.ID = id
	world.Normalize(&w)
	return &w, true, nil
}

func (s *memStore) Save(w *world.World) error {
	data, err := json.Marshal(w)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.worlds[w.ID] = data
	s.mu.Unlock()
	return nil
}

func (s *memStore) List() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.worlds))
	for id := range s.worlds {
		ids = append(ids, id)
	}
	return ids, nil
}

func (s *memStore) put(t *testing.T, w *world.World) {
	t.Helper()
	if err := s.Save(w); err != nil {
		t.Fatalf("seed store: %v", err)
	}
}

// Stage markers found in each collaborator instruction.
const (
	stageInterpreter = "Command Interpreter"
	stageArchitect   = "World Architect"
	stageDialogue    = "Dialogue Weaver"
	stageEvents      = "Event Engine"
	stageQuests      = "Quest Master"
	stageNarrator    = "Story Conductor"
)

var allStages = []string{
	stageInterpreter, stageArchitect, stageDialogue,
	stageEvents, stageQuests, stageNarrator,
}

// scriptedLLM replies per stage with canned JSON. Unscripted stages fail,
// which the pipeline must treat as a degraded collaborator.
type scriptedLLM struct {
	mu      sync.Mutex
	replies map[string]string
	calls   []string // stage names, in call order
	users   []string // user prompts, aligned with calls
}

func newScriptedLLM(replies map[string]string) *scriptedLLM {
	return &scriptedLLM{replies: replies}
}

func (s *scriptedLLM) Enabled() bool { return true }

func (s *scriptedLLM) Complete(system, user string, maxTokens int) (string, error) {
	stage := "unknown"
	for _, marker := range allStages {
		if strings.Contains(system, marker) {
			stage = marker
			break
		}
	}

	s.mu.Lock()
	s.calls = append(s.calls, stage)
	s.users = append(s.users, user)
	reply, ok := s.replies[stage]
	s.mu.Unlock()

	if !ok {
		return "", errors.New("stage not scripted")
	}
	return reply, nil
}

func (s *scriptedLLM) called(stage string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.calls {
		if c == stage {
			return true
		}
	}
	return false
}

func (s *scriptedLLM) userPromptFor(stage string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, c := range s.calls {
		if c == stage {
			return s.users[i]
		}
	}
	return ""
}

func testConfig() config.Config {
	return config.Config{
		SessionTimeout:   10 * time.Minute,
		HistoryCap:       50,
		ChatCap:          200,
		StoryCap:         100,
		MaxEventsPerTurn: 3,
	}
}

func newTestOrchestrator(st *memStore, client *scriptedLLM) *Orchestrator {
	return New(st, client, testConfig())
}

// seedWorld builds a minimal two-region world with one NPC for tests that
// need an existing snapshot.
func seedWorld(id string) *world.World {
	w := world.New(id, "a whale is swimming in the ocean")
	w.Regions["glass_whale_bay"] = &world.Region{
		ID:        "glass_whale_bay",
		Name:      "Glass Whale Bay",
		Type:      "bay",
		Neighbors: []string{"silent_lighthouse"},
	}
	w.Regions["silent_lighthouse"] = &world.Region{
		ID:   "silent_lighthouse",
		Name: "The Silent Lighthouse",
	}
	w.Characters["hooded_figure"] = &world.Character{
		ID:       "hooded_figure",
		Name:     "The Hooded Figure",
		Role:     "mentor",
		RegionID: "glass_whale_bay",
		Mood:     "curious",
		Loyalty:  0.5,
	}
	return w
}

func mustLoad(t *testing.T, st *memStore, id string) *world.World {
	t.Helper()
	w, ok, err := st.Load(id)
	if err != nil {
		t.Fatalf("load %s: %v", id, err)
	}
	if !ok {
		t.Fatalf("world %s not in store", id)
	}
	return w
}
