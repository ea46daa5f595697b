package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"garage-backend/internal/middleware"
	"garage-backend/internal/models"
	"garage-backend/internal/repositories"
	"garage-backend/internal/services"
)

type AuthHandler struct {
	Users     *services.UserService
	TOTP      *services.TOTPService
	LoginLogs *repositories.LoginLogRepository
}

func NewAuthHandler(users *services.UserService, totp *services.TOTPService, loginLogs *repositories.LoginLogRepository) *AuthHandler {
	return &AuthHandler{Users: users, TOTP: totp, LoginLogs: loginLogs}
}

// Login checks credentials and, for TOTP-enrolled users, a second-factor
// code before issuing a session token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	user, err := h.Users.Authenticate(context.Background(), req.Email, req.Password)
	if err != nil {
		h.recordAttempt(r, 0, req.Email, false)
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}

	if user.TOTPEnabled {
		if req.TOTPCode == "" {
			// Password was right; the client should re-submit with a code.
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"totp_required": true,
				"error":         "TOTP code required",
			})
			return
		}
		if !h.TOTP.Verify(context.Background(), user.ID, req.TOTPCode) {
			h.recordAttempt(r, user.ID, req.Email, false)
			http.Error(w, "Invalid TOTP code", http.StatusUnauthorized)
			return
		}
	}

	token, err := h.Users.IssueToken(user)
	if err != nil {
		http.Error(w, "Failed to create session", http.StatusInternalServerError)
		return
	}

	h.recordAttempt(r, user.ID, req.Email, true)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(models.LoginResponse{Token: token, User: user})
}

// Me returns the authenticated user's profile
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	user, err := h.Users.GetUser(context.Background(), userID)
	if err != nil {
		http.Error(w, "User not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(user)
}

// LoginLogs returns the recent sign-in audit trail
func (h *AuthHandler) ListLoginLogs(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	logs, err := h.LoginLogs.List(context.Background(), limit)
	if err != nil {
		http.Error(w, "Failed to fetch login logs", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(logs)
}

// recordAttempt is best-effort: a full audit table should never block a login.
func (h *AuthHandler) recordAttempt(r *http.Request, userID int, email string, success bool) {
	if h.LoginLogs == nil {
		return
	}
	ip := r.Header.Get("X-Forwarded-For")
	if ip != "" {
		ip = strings.TrimSpace(strings.Split(ip, ",")[0])
	} else {
		ip = r.RemoteAddr
	}
	h.LoginLogs.Record(context.Background(), userID, email, success, ip, r.UserAgent())
}
