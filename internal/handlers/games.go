package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/htnguyen/novel-engine/internal/engine"
	"github.com/htnguyen/novel-engine/internal/storage"
	"github.com/htnguyen/novel-engine/pkg/state"
	"github.com/htnguyen/novel-engine/pkg/story"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

// GameView is the read model served to clients: current node, filtered
// choices, and the visible slices of engine state.
type GameView struct {
	ID       uuid.UUID           `json:"id"`
	Day      int                 `json:"day"`
	Time     string              `json:"time"`
	Stats    state.Stats         `json:"stats"`
	Flags    map[string]bool     `json:"flags"`
	Node     *story.Node         `json:"node,omitempty"`
	Choices  []story.Choice      `json:"choices"`
	EndingID string              `json:"ending_id,omitempty"`
	Ending   *story.Ending       `json:"ending,omitempty"`
	History  []state.HistoryEntry `json:"history,omitempty"`
	Unlocked []story.Achievement `json:"unlocked,omitempty"`
}

// SelectChoiceRequest is the body for the choice endpoint.
type SelectChoiceRequest struct {
	ChoiceID string `json:"choice_id"`
}

// GamesHandler routes game session operations:
//
//	POST   /v1/games                - start a new game session
//	GET    /v1/games/{id}           - read current view
//	POST   /v1/games/{id}/choice    - apply a choice
//	POST   /v1/games/{id}/continue  - restore a persisted save into a session
//	DELETE /v1/games/{id}           - drop the session and its save
type GamesHandler struct {
	registry *story.Registry
	store    storage.SaveStore
	logger   *slog.Logger

	mu       sync.RWMutex
	sessions map[uuid.UUID]*engine.Engine
}

func NewGamesHandler(registry *story.Registry, store storage.SaveStore, logger *slog.Logger) *GamesHandler {
	return &GamesHandler{
		registry: registry,
		store:    store,
		logger:   logger,
		sessions: make(map[uuid.UUID]*engine.Engine),
	}
}

func (h *GamesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	path := strings.TrimPrefix(r.URL.Path, "/v1/games")
	path = strings.Trim(path, "/")
	parts := []string{}
	if path != "" {
		parts = strings.Split(path, "/")
	}

	switch {
	case r.Method == http.MethodPost && len(parts) == 0:
		h.handleCreate(w, r)
		return

	case len(parts) >= 1:
		id, err := uuid.Parse(parts[0])
		if err != nil {
			h.logger.Warn("Invalid game session ID", "id", parts[0], "error", err)
			h.writeError(w, http.StatusBadRequest, "Invalid game session ID format")
			return
		}

		switch {
		case r.Method == http.MethodGet && len(parts) == 1:
			h.handleRead(w, id)
			return
		case r.Method == http.MethodDelete && len(parts) == 1:
			h.handleDelete(r.Context(), w, id)
			return
		case r.Method == http.MethodPost && len(parts) == 2 && parts[1] == "choice":
			h.handleChoice(w, r, id)
			return
		case r.Method == http.MethodPost && len(parts) == 2 && parts[1] == "continue":
			h.handleContinue(r.Context(), w, id)
			return
		}
	}

	h.writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
}

func (h *GamesHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	eng := engine.New(h.registry, h.store, h.logger)
	if err := eng.NewGame(r.Context()); err != nil {
		h.logger.Error("Failed to start new game", "error", err)
		h.writeError(w, http.StatusInternalServerError, "Failed to start new game")
		return
	}

	h.mu.Lock()
	h.sessions[eng.SessionID()] = eng
	h.mu.Unlock()

	w.WriteHeader(http.StatusCreated)
	h.writeView(w, eng)
}

func (h *GamesHandler) handleRead(w http.ResponseWriter, id uuid.UUID) {
	eng := h.session(id)
	if eng == nil {
		h.writeError(w, http.StatusNotFound, "Game session not found")
		return
	}
	h.writeView(w, eng)
}

func (h *GamesHandler) handleChoice(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	eng := h.session(id)
	if eng == nil {
		h.writeError(w, http.StatusNotFound, "Game session not found")
		return
	}

	var req SelectChoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ChoiceID == "" {
		h.writeError(w, http.StatusBadRequest, "choice_id is required")
		return
	}

	// A stale or unknown choice is a no-op by design; the view simply
	// reflects the unchanged state.
	eng.SelectChoice(r.Context(), req.ChoiceID)
	h.writeView(w, eng)
}

func (h *GamesHandler) handleContinue(ctx context.Context, w http.ResponseWriter, id uuid.UUID) {
	h.mu.RLock()
	eng, ok := h.sessions[id]
	h.mu.RUnlock()

	if !ok {
		eng = engine.New(h.registry, h.store, h.logger).WithSessionID(id)
	}

	if !eng.ContinueGame(ctx) {
		h.writeError(w, http.StatusNotFound, "No usable save for this session")
		return
	}

	h.mu.Lock()
	h.sessions[id] = eng
	h.mu.Unlock()

	h.writeView(w, eng)
}

func (h *GamesHandler) handleDelete(ctx context.Context, w http.ResponseWriter, id uuid.UUID) {
	h.mu.Lock()
	delete(h.sessions, id)
	h.mu.Unlock()

	if err := h.store.DeleteSnapshot(ctx, id); err != nil {
		h.logger.Error("Failed to delete save", "uuid", id, "error", err)
		h.writeError(w, http.StatusInternalServerError, "Failed to delete save")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *GamesHandler) session(id uuid.UUID) *engine.Engine {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.sessions[id]
}

func (h *GamesHandler) writeView(w http.ResponseWriter, eng *engine.Engine) {
	view := GameView{
		ID:       eng.SessionID(),
		Day:      eng.Day(),
		Time:     eng.Time(),
		Stats:    eng.Stats(),
		Flags:    eng.Flags(),
		Node:     eng.CurrentNode(),
		Choices:  eng.AvailableChoices(),
		EndingID: eng.EndingID(),
		Unlocked: eng.UnlockedAchievements(),
	}
	if view.Choices == nil {
		view.Choices = []story.Choice{}
	}

	if view.EndingID != "" {
		view.History = eng.History()
		for _, ending := range h.registry.EndingsInPriorityOrder() {
			if ending.ID == view.EndingID {
				e := ending
				view.Ending = &e
				break
			}
		}
	}

	if err := json.NewEncoder(w).Encode(view); err != nil {
		h.logger.Error("Failed to encode game view", "error", err)
	}
}

func (h *GamesHandler) writeError(w http.ResponseWriter, status int, msg string) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(ErrorResponse{Error: msg}); err != nil {
		h.logger.Error("Failed to encode error response", "error", err)
	}
}
