package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prudhvinik1/foodbridge/internal/services"
)

type AIHandler struct {
	suggestions *services.SuggestionService
	logger      *slog.Logger
}

func NewAIHandler(suggestions *services.SuggestionService, logger *slog.Logger) *AIHandler {
	return &AIHandler{suggestions: suggestions, logger: logger}
}

// Routes is mounted at /api/ai.
func (h *AIHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/suggest", h.suggest)
	return r
}

type suggestRequest struct {
	Location string `json:"location"`
	FoodType string `json:"foodType"`
}

type suggestResponse struct {
	Success     bool                  `json:"success"`
	Suggestions []services.Suggestion `json:"suggestions"`
}

func (h *AIHandler) suggest(w http.ResponseWriter, r *http.Request) {
	var req suggestRequest
	if err := readJSON(w, r, &req); err != nil {
		writeBadBody(w, err)
		return
	}

	suggestions, err := h.suggestions.Suggest(r.Context(), req.Location, req.FoodType)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, suggestResponse{Success: true, Suggestions: suggestions})
}
