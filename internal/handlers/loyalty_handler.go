package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"garage-backend/internal/billing"
	"garage-backend/internal/middleware"
	"garage-backend/internal/models"
	"garage-backend/internal/services"

	"github.com/gorilla/mux"
)

type LoyaltyHandler struct {
	Service *services.LoyaltyService
}

func NewLoyaltyHandler(s *services.LoyaltyService) *LoyaltyHandler {
	return &LoyaltyHandler{Service: s}
}

// ListClients returns the aggregated customer summaries, optionally
// filtered by free-text query or exact tier.
func (h *LoyaltyHandler) ListClients(w http.ResponseWriter, r *http.Request) {
	var filter *billing.AggregateFilter
	q := r.URL.Query().Get("q")
	tier := r.URL.Query().Get("tier")
	if q != "" || tier != "" {
		filter = &billing.AggregateFilter{
			Query: q,
			Tier:  models.Tier(tier),
		}
	}

	aggs, err := h.Service.ClientAggregates(context.Background(), filter)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(aggs)
}

// GetClient returns one customer's aggregate, tier progress and
// adjustment history.
func (h *LoyaltyHandler) GetClient(w http.ResponseWriter, r *http.Request) {
	phone := mux.Vars(r)["phone"]

	detail, err := h.Service.ClientDetail(context.Background(), phone)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if detail == nil {
		http.Error(w, "No loyalty record for this customer", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(detail)
}

// AdjustPoints appends a manual point delta to a customer's ledger
func (h *LoyaltyHandler) AdjustPoints(w http.ResponseWriter, r *http.Request) {
	var req models.AdjustPointsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	userID, _ := middleware.GetUserIDFromContext(r.Context())
	adj, err := h.Service.AdjustPoints(context.Background(), req.CustomerPhone, req.Delta, req.Reason, userID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(adj)
}
