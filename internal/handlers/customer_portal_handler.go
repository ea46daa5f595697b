package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"garage-backend/internal/auth"
	"garage-backend/internal/middleware"
	"garage-backend/internal/services"
	"garage-backend/pkg/utils"

	"github.com/gorilla/mux"
)

// CustomerPortalHandler serves the phone-keyed customer portal: OTP login,
// the summary view and per-estimate detail.
type CustomerPortalHandler struct {
	OTP    *services.OTPService
	Portal *services.CustomerPortalService
	JWT    *auth.JWTManager
}

func NewCustomerPortalHandler(otp *services.OTPService, portal *services.CustomerPortalService, jwt *auth.JWTManager) *CustomerPortalHandler {
	return &CustomerPortalHandler{OTP: otp, Portal: portal, JWT: jwt}
}

// RequestOTP sends a login code to a registered customer phone
func (h *CustomerPortalHandler) RequestOTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Phone string `json:"phone"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Phone == "" {
		utils.Error(w, http.StatusBadRequest, "phone is required")
		return
	}

	if err := h.OTP.RequestOTP(r.Context(), req.Phone); err != nil {
		if err == services.ErrOTPRateLimited {
			utils.Error(w, http.StatusTooManyRequests, err.Error())
			return
		}
		utils.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	utils.JSON(w, http.StatusOK, map[string]string{"status": "sent"})
}

// VerifyOTP exchanges a valid code for a portal session token
func (h *CustomerPortalHandler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Phone string `json:"phone"`
		Code  string `json:"code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Phone == "" || req.Code == "" {
		utils.Error(w, http.StatusBadRequest, "phone and code are required")
		return
	}

	if err := h.OTP.VerifyOTP(r.Context(), req.Phone, req.Code); err != nil {
		utils.Error(w, http.StatusUnauthorized, err.Error())
		return
	}

	token, err := h.JWT.GenerateCustomerToken(req.Phone)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "failed to create session")
		return
	}

	utils.JSON(w, http.StatusOK, map[string]string{"token": token, "phone": req.Phone})
}

// Summary is the portal landing view for the logged-in customer
func (h *CustomerPortalHandler) Summary(w http.ResponseWriter, r *http.Request) {
	phone, ok := middleware.GetCustomerPhoneFromContext(r.Context())
	if !ok {
		utils.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	summary, err := h.Portal.Summary(r.Context(), phone)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, err.Error())
		return
	}

	utils.JSON(w, http.StatusOK, summary)
}

// GetEstimate returns one of the customer's own estimates
func (h *CustomerPortalHandler) GetEstimate(w http.ResponseWriter, r *http.Request) {
	phone, ok := middleware.GetCustomerPhoneFromContext(r.Context())
	if !ok {
		utils.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, _ := strconv.Atoi(mux.Vars(r)["id"])
	est, err := h.Portal.Estimate(r.Context(), phone, id)
	if err != nil {
		if err == services.ErrNotOwned {
			utils.Error(w, http.StatusForbidden, err.Error())
			return
		}
		utils.Error(w, http.StatusNotFound, "estimate not found")
		return
	}

	utils.JSON(w, http.StatusOK, est)
}
