package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"garage-backend/internal/models"
	"garage-backend/internal/services"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5"
)

type EstimateHandler struct {
	Service *services.EstimateService
}

func NewEstimateHandler(s *services.EstimateService) *EstimateHandler {
	return &EstimateHandler{Service: s}
}

func (h *EstimateHandler) CreateEstimate(w http.ResponseWriter, r *http.Request) {
	var req models.CreateEstimateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	est, err := h.Service.CreateEstimate(context.Background(), &req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(est)
}

func (h *EstimateHandler) GetEstimate(w http.ResponseWriter, r *http.Request) {
	idStr := mux.Vars(r)["id"]
	id, _ := strconv.Atoi(idStr)

	est, err := h.Service.GetEstimate(context.Background(), id)
	if err != nil {
		http.Error(w, "Estimate not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(est)
}

func (h *EstimateHandler) ListEstimates(w http.ResponseWriter, r *http.Request) {
	filter := &models.EstimateFilter{
		Status: models.EstimateStatus(r.URL.Query().Get("status")),
		Phone:  r.URL.Query().Get("phone"),
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		filter.Limit, _ = strconv.Atoi(v)
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		filter.Offset, _ = strconv.Atoi(v)
	}

	estimates, err := h.Service.ListEstimates(context.Background(), filter)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(estimates)
}

func (h *EstimateHandler) UpdateEstimate(w http.ResponseWriter, r *http.Request) {
	idStr := mux.Vars(r)["id"]
	id, _ := strconv.Atoi(idStr)

	var req models.UpdateEstimateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	est, err := h.Service.UpdateEstimate(context.Background(), id, &req)
	if err != nil {
		if err == pgx.ErrNoRows {
			http.Error(w, "Estimate not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(est)
}

// SetStatus transitions an estimate through its lifecycle
func (h *EstimateHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	idStr := mux.Vars(r)["id"]
	id, _ := strconv.Atoi(idStr)

	var req struct {
		Status models.EstimateStatus `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	est, err := h.Service.SetStatus(context.Background(), id, req.Status)
	if err != nil {
		if err == pgx.ErrNoRows {
			http.Error(w, "Estimate not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(est)
}

// RecordPayment appends a payment against an estimate
func (h *EstimateHandler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	idStr := mux.Vars(r)["id"]
	id, _ := strconv.Atoi(idStr)

	var req models.RecordPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	est, err := h.Service.RecordPayment(context.Background(), id, &req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(est)
}

func (h *EstimateHandler) DeleteEstimate(w http.ResponseWriter, r *http.Request) {
	idStr := mux.Vars(r)["id"]
	id, _ := strconv.Atoi(idStr)

	if err := h.Service.DeleteEstimate(context.Background(), id); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
