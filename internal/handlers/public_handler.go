package handlers

import (
	"net/http"

	"garage-backend/internal/services"
	"garage-backend/pkg/utils"

	"github.com/gorilla/mux"
)

// PublicHandler serves the unauthenticated status surfaces: the waiting-room
// board and the per-estimate lookup. Neither exposes customer identity or
// line-item money.
type PublicHandler struct {
	Estimates *services.EstimateService
}

func NewPublicHandler(estimates *services.EstimateService) *PublicHandler {
	return &PublicHandler{Estimates: estimates}
}

// StatusBoard returns every active estimate for the display screen
func (h *PublicHandler) StatusBoard(w http.ResponseWriter, r *http.Request) {
	rows, err := h.Estimates.StatusBoard(r.Context())
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "board unavailable")
		return
	}
	utils.JSON(w, http.StatusOK, rows)
}

// Status looks up one estimate by its public number
func (h *PublicHandler) Status(w http.ResponseWriter, r *http.Request) {
	number := mux.Vars(r)["number"]

	status, err := h.Estimates.PublicStatus(r.Context(), number)
	if err != nil {
		utils.Error(w, http.StatusNotFound, "no estimate with this number")
		return
	}
	utils.JSON(w, http.StatusOK, status)
}
