// Command dreamloom runs the Dreamloom multiplayer story-world server.
package main

import (
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/talgya/dreamloom/internal/api"
	"github.com/talgya/dreamloom/internal/config"
	"github.com/talgya/dreamloom/internal/game"
	"github.com/talgya/dreamloom/internal/llm"
	"github.com/talgya/dreamloom/internal/store"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// ── Store ─────────────────────────────────────────────────────────
	if dir := filepath.Dir(cfg.DBPath); dir != "." {
		os.MkdirAll(dir, 0755)
	}
	db, err := store.Open(cfg.DBPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("database opened", "path", cfg.DBPath)

	// ── Collaborators ─────────────────────────────────────────────────
	client := llm.NewClient(cfg.AnthropicAPIKey, cfg.Model)
	if client.Enabled() {
		slog.Info("collaborator client enabled")
	} else {
		slog.Warn("no API key configured, generative stages run on defaults")
	}

	// ── Orchestrator + HTTP ──────────────────────────────────────────
	orch := game.New(db, client, cfg)

	server := &api.Server{
		Game:         orch,
		Port:         cfg.Port,
		ExtraOrigins: cfg.CORSOrigins,
	}
	server.Start()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	slog.Info("shutting down")
}
