// Package api exposes the orchestrator over HTTP JSON. The surface is a
// thin transport: it validates identifiers, forwards to the orchestrator,
// and serializes the result. Turn-playing endpoints are rate limited
// because they trigger collaborator calls.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/talgya/dreamloom/internal/game"
)

// Server serves the game over HTTP.
type Server struct {
	Game *game.Orchestrator
	Port int

	// ExtraOrigins are additional allowed CORS origins; localhost dev
	// servers are always allowed.
	ExtraOrigins []string
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	turnLimiter := NewRateLimiter(30, time.Minute)

	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/v1/turn", RateLimitMiddleware(turnLimiter, s.handleTurn))
	mux.HandleFunc("POST /api/v1/action", RateLimitMiddleware(turnLimiter, s.handleAction))
	mux.HandleFunc("POST /api/v1/leave", s.handleLeave)
	mux.HandleFunc("POST /api/v1/chat", s.handleChat)

	mux.HandleFunc("GET /api/v1/state", s.handleState)
	mux.HandleFunc("GET /api/v1/worlds", s.handleWorlds)
	mux.HandleFunc("GET /api/v1/players", s.handlePlayers)
	mux.HandleFunc("GET /api/v1/chat_history", s.handleChatHistory)

	return s.corsMiddleware(mux)
}

// Start begins serving the HTTP API in a goroutine.
func (s *Server) Start() {
	addr := fmt.Sprintf(":%d", s.Port)
	slog.Info("HTTP API starting", "addr", addr)

	go func() {
		if err := http.ListenAndServe(addr, s.Handler()); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()
}

// turnRequest is the body of every mutating endpoint.
type turnRequest struct {
	UserID          string `json:"user_id"`
	WorldID         string `json:"world_id"`
	Message         string `json:"message"`
	SeedPromptIfNew string `json:"seed_prompt_if_new"`
}

func (s *Server) handleTurn(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeTurnRequest(w, r)
	if !ok {
		return
	}

	if _, err := s.Game.RunTurn(req.UserID, req.WorldID, req.Message, req.SeedPromptIfNew); err != nil {
		slog.Error("turn failed", "world", req.WorldID, "user", req.UserID, "error", err)
		writeError(w, http.StatusInternalServerError, "server error")
		return
	}

	// Fetch the structured view (map + story) after the update.
	view, err := s.Game.ReadState(req.UserID, req.WorldID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server error")
		return
	}
	writeJSON(w, map[string]any{
		"user_id":  req.UserID,
		"world_id": req.WorldID,
		"output":   view,
	})
}

func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeTurnRequest(w, r)
	if !ok {
		return
	}

	if err := s.Game.ApplyAction(req.UserID, req.WorldID, req.Message, req.SeedPromptIfNew); err != nil {
		slog.Error("action failed", "world", req.WorldID, "user", req.UserID, "error", err)
		writeError(w, http.StatusInternalServerError, "server error")
		return
	}
	writeJSON(w, map[string]string{"status": "ok"})
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	userID := strings.TrimSpace(r.URL.Query().Get("user_id"))
	worldID := strings.TrimSpace(r.URL.Query().Get("world_id"))
	if userID == "" || worldID == "" {
		writeError(w, http.StatusBadRequest, "user_id and world_id are required")
		return
	}

	view, err := s.Game.ReadState(userID, worldID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server error")
		return
	}
	writeJSON(w, map[string]any{
		"user_id":  userID,
		"world_id": worldID,
		"output":   view,
	})
}

func (s *Server) handleLeave(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeTurnRequest(w, r)
	if !ok {
		return
	}

	if err := s.Game.Leave(req.UserID, req.WorldID); err != nil {
		writeError(w, http.StatusInternalServerError, "server error")
		return
	}
	writeJSON(w, map[string]string{"status": "ok"})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeTurnRequest(w, r)
	if !ok {
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}

	err := s.Game.PostChat(req.UserID, req.WorldID, strings.TrimSpace(req.Message))
	if errors.Is(err, game.ErrUnknownWorld) {
		writeError(w, http.StatusNotFound, "world does not exist")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server error")
		return
	}
	writeJSON(w, map[string]string{"status": "ok"})
}

func (s *Server) handleWorlds(w http.ResponseWriter, r *http.Request) {
	ids, err := s.Game.ListWorlds()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server error")
		return
	}
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, map[string]any{"worlds": ids})
}

func (s *Server) handlePlayers(w http.ResponseWriter, r *http.Request) {
	worldID := strings.TrimSpace(r.URL.Query().Get("world_id"))
	if worldID == "" {
		writeError(w, http.StatusBadRequest, "world_id is required")
		return
	}

	players, err := s.Game.ActivePlayers(worldID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server error")
		return
	}
	if players == nil {
		players = []game.Presence{}
	}
	writeJSON(w, map[string]any{"world_id": worldID, "players": players})
}

func (s *Server) handleChatHistory(w http.ResponseWriter, r *http.Request) {
	worldID := strings.TrimSpace(r.URL.Query().Get("world_id"))
	if worldID == "" {
		writeError(w, http.StatusBadRequest, "world_id is required")
		return
	}

	chat, err := s.Game.ChatHistory(worldID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server error")
		return
	}
	if chat == nil {
		chat = []string{}
	}
	writeJSON(w, map[string]any{"world_id": worldID, "chat": chat})
}

// decodeTurnRequest parses the shared request body and enforces the only
// user-visible validation: user_id and world_id must be present.
func (s *Server) decodeTurnRequest(w http.ResponseWriter, r *http.Request) (turnRequest, bool) {
	var req turnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return turnRequest{}, false
	}
	req.UserID = strings.TrimSpace(req.UserID)
	req.WorldID = strings.TrimSpace(req.WorldID)
	if req.UserID == "" || req.WorldID == "" {
		writeError(w, http.StatusBadRequest, "user_id and world_id are required")
		return turnRequest{}, false
	}
	return req, true
}

// corsMiddleware adds CORS headers for allowed frontend origins. Localhost
// dev servers are always allowed.
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	allowedOrigins := map[string]bool{
		"http://localhost:5173": true,
		"http://localhost:4173": true,
		"http://localhost:3000": true,
	}
	for _, origin := range s.ExtraOrigins {
		origin = strings.TrimSpace(origin)
		if origin != "" {
			allowedOrigins[origin] = true
		}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Debug("encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
