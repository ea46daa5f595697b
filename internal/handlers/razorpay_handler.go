package handlers

import (
	"encoding/json"
	"io"
	"log"
	"net/http"

	"garage-backend/internal/middleware"
	"garage-backend/internal/services"
	"garage-backend/pkg/utils"
)

// RazorpayHandler exposes online payment endpoints to portal customers
type RazorpayHandler struct {
	Service *services.RazorpayService
}

func NewRazorpayHandler(s *services.RazorpayService) *RazorpayHandler {
	return &RazorpayHandler{Service: s}
}

// CreateOrder opens a payment order for the estimate's balance due
func (h *RazorpayHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	phone, ok := middleware.GetCustomerPhoneFromContext(r.Context())
	if !ok {
		utils.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req struct {
		EstimateID int `json:"estimate_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	order, err := h.Service.CreateOrder(r.Context(), phone, req.EstimateID)
	if err != nil {
		if err == services.ErrNotOwned {
			utils.Error(w, http.StatusForbidden, err.Error())
			return
		}
		utils.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	utils.JSON(w, http.StatusOK, order)
}

// VerifyPayment records a payment after checkout signature verification
func (h *RazorpayHandler) VerifyPayment(w http.ResponseWriter, r *http.Request) {
	phone, ok := middleware.GetCustomerPhoneFromContext(r.Context())
	if !ok {
		utils.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req services.VerifyPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	est, err := h.Service.VerifyAndRecord(r.Context(), phone, &req)
	if err != nil {
		if err == services.ErrNotOwned {
			utils.Error(w, http.StatusForbidden, err.Error())
			return
		}
		utils.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	utils.JSON(w, http.StatusOK, est)
}

// Webhook acknowledges provider callbacks after signature verification.
// Payments are recorded on the checkout callback; the webhook is a
// reconciliation log only.
func (h *RazorpayHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "unreadable body")
		return
	}

	signature := r.Header.Get("X-Razorpay-Signature")
	if !h.Service.VerifyWebhookSignature(body, signature) {
		utils.Error(w, http.StatusUnauthorized, "invalid signature")
		return
	}

	var event struct {
		Event string `json:"event"`
	}
	if err := json.Unmarshal(body, &event); err == nil && event.Event != "" {
		log.Printf("[Razorpay] Webhook event: %s", event.Event)
	}

	w.WriteHeader(http.StatusOK)
}
