package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/mkeren/pawtrack/internal/auth"
	"github.com/mkeren/pawtrack/internal/middleware"
	"github.com/mkeren/pawtrack/internal/model"
	"github.com/mkeren/pawtrack/internal/service"
)

type AuthHandler struct {
	authSvc      *service.AuthService
	householdSvc *service.HouseholdService
	logger       *slog.Logger
}

func NewAuthHandler(as *service.AuthService, hs *service.HouseholdService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{authSvc: as, householdSvc: hs, logger: logger}
}

type registerRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	Username    string `json:"username"`
	InviteToken string `json:"inviteToken"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// authResponse is the register/login response: a bearer token plus the full
// household overview so the client can render immediately.
type authResponse struct {
	Token string `json:"token"`
	service.Overview
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	user, token, err := h.authSvc.Register(req.Email, req.Password, req.Username, req.InviteToken)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	overview, err := h.householdSvc.Overview(h.ctxFor(r, user))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, authResponse{Token: token, Overview: overview})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	user, token, err := h.authSvc.Login(req.Email, req.Password)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	overview, err := h.householdSvc.Overview(h.ctxFor(r, user))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, authResponse{Token: token, Overview: overview})
}

// Logout invalidates the presented bearer token only; the user's other
// devices stay signed in.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token := middleware.BearerToken(r)
	if err := h.authSvc.Logout(token); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// GetUser returns the caller's profile, household, members, invite tokens,
// and the live scoreboard.
func (h *AuthHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	overview, err := h.householdSvc.Overview(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, overview)
}

// ctxFor builds an authenticated context for a user that just registered or
// logged in, before the middleware has seen their new token.
func (h *AuthHandler) ctxFor(r *http.Request, user *model.User) context.Context {
	return auth.WithAuth(r.Context(), auth.AuthContext{
		UserID:      user.ID,
		HouseholdID: user.HouseholdID,
		Username:    user.Username,
		IsAdmin:     user.IsAdmin,
	})
}
