package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/mining-game-bot/internal/game"
	"github.com/mining-game-bot/internal/gamequery"
	"github.com/mining-game-bot/internal/models"
	"github.com/mining-game-bot/pkg/logger"
)

// Orchestrator is the task surface exposed over HTTP.
type Orchestrator interface {
	CloseFinishedMines(ctx context.Context, userAddress string) (int, error)
	DispatchAvailableTeams(ctx context.Context, userAddress string) (int, error)
	ReinforceMines(ctx context.Context, userAddress string) (int, error)
}

// Handler holds all HTTP handlers
type Handler struct {
	bot    Orchestrator
	games  gamequery.Service
	logger *logger.Logger
	now    func() time.Time
}

// NewHandler creates a new handler
func NewHandler(bot Orchestrator, games gamequery.Service, log *logger.Logger) *Handler {
	return &Handler{
		bot:    bot,
		games:  games,
		logger: log,
		now:    time.Now,
	}
}

// Routes sets up all routes
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	// Health check
	r.Get("/health", h.Health)

	r.Route("/users/{address}", func(r chi.Router) {
		r.Post("/tasks/close", h.RunClose)
		r.Post("/tasks/dispatch", h.RunDispatch)
		r.Post("/tasks/reinforce", h.RunReinforce)
		r.Get("/mines/next", h.NextMine)
	})

	return r
}

// Health handles health check requests
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// RunClose triggers the close-finished-mines task for a user
func (h *Handler) RunClose(w http.ResponseWriter, r *http.Request) {
	h.runTask(w, r, "close", h.bot.CloseFinishedMines)
}

// RunDispatch triggers the dispatch-available-teams task for a user
func (h *Handler) RunDispatch(w http.ResponseWriter, r *http.Request) {
	h.runTask(w, r, "dispatch", h.bot.DispatchAvailableTeams)
}

// RunReinforce triggers the reinforce-mines task for a user
func (h *Handler) RunReinforce(w http.ResponseWriter, r *http.Request) {
	h.runTask(w, r, "reinforce", h.bot.ReinforceMines)
}

func (h *Handler) runTask(w http.ResponseWriter, r *http.Request, task string, run func(context.Context, string) (int, error)) {
	address := chi.URLParam(r, "address")
	requestID := GetRequestID(r.Context())
	h.logger.Info("Running task",
		logger.F("task", task),
		logger.F("user", address),
		logger.F("request_id", requestID))

	count, err := run(r.Context(), address)
	if err != nil {
		h.logger.Error("Task failed",
			logger.F("task", task),
			logger.F("user", address),
			logger.F("error", err.Error()),
			logger.F("request_id", requestID))
		h.respondError(w, http.StatusBadGateway, "task failed", err.Error())
		return
	}

	h.respondJSON(w, http.StatusOK, models.TaskResponse{
		User:  address,
		Task:  task,
		Count: count,
	})
}

// NextMine reports the user's next mine to finish
func (h *Handler) NextMine(w http.ResponseWriter, r *http.Request) {
	address := chi.URLParam(r, "address")

	openMines, err := h.games.ListMines(r.Context(), models.MineFilter{
		UserAddress: address,
		Status:      models.MineStatusOpen,
		Limit:       200,
		Page:        1,
	})
	if err != nil {
		h.respondError(w, http.StatusBadGateway, "failed to list mines", err.Error())
		return
	}

	now := h.now()
	next := game.NextToFinish(openMines, now)
	if next == nil {
		h.respondError(w, http.StatusNotFound, "no unfinished mines", "")
		return
	}

	h.respondJSON(w, http.StatusOK, models.NextMineResponse{
		GameID:    next.GameID,
		Remaining: game.FormatRemaining(*next, now),
	})
}

// respondJSON sends a JSON response
func (h *Handler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError sends an error response
func (h *Handler) respondError(w http.ResponseWriter, status int, errorMsg, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(models.ErrorResponse{
		Error:   errorMsg,
		Message: message,
	})
}
