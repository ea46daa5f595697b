package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"garage-backend/internal/models"
	"garage-backend/internal/services"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5"
)

type SystemSettingHandler struct {
	Service *services.SystemSettingService
}

func NewSystemSettingHandler(s *services.SystemSettingService) *SystemSettingHandler {
	return &SystemSettingHandler{Service: s}
}

func (h *SystemSettingHandler) ListSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.Service.List(context.Background())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(settings)
}

func (h *SystemSettingHandler) GetSetting(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]

	setting, err := h.Service.Get(context.Background(), key)
	if err != nil {
		if err == pgx.ErrNoRows {
			http.Error(w, "Setting not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(setting)
}

func (h *SystemSettingHandler) UpdateSetting(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]

	var req models.UpdateSettingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.Service.Set(context.Background(), key, req.Value); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"key": key, "status": "updated"})
}

// GetLoyaltyConfig returns the effective loyalty config, defaults included
func (h *SystemSettingHandler) GetLoyaltyConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.Service.LoyaltyConfig(context.Background())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(cfg)
}

// UpdateLoyaltyConfig replaces the loyalty config after validation
func (h *SystemSettingHandler) UpdateLoyaltyConfig(w http.ResponseWriter, r *http.Request) {
	var cfg models.LoyaltyConfig
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	value, err := json.Marshal(cfg)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if err := h.Service.Set(context.Background(), models.SettingKeyLoyaltyConfig, string(value)); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(cfg)
}
