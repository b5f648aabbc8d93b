package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/mkeren/pawtrack/internal/auth"
	"github.com/mkeren/pawtrack/internal/service"
	"github.com/mkeren/pawtrack/internal/websocket"
)

type HouseholdHandler struct {
	householdSvc *service.HouseholdService
	hub          *websocket.Hub
	logger       *slog.Logger
}

func NewHouseholdHandler(hs *service.HouseholdService, hub *websocket.Hub, logger *slog.Logger) *HouseholdHandler {
	return &HouseholdHandler{householdSvc: hs, hub: hub, logger: logger}
}

func (h *HouseholdHandler) broadcast(householdID string, msg websocket.Message) {
	if h.hub != nil {
		h.hub.Broadcast(householdID, msg)
	}
}

type inviteResponse struct {
	InviteToken  string   `json:"inviteToken"`
	InviteTokens []string `json:"inviteTokens"`
}

func (h *HouseholdHandler) GenerateInvite(w http.ResponseWriter, r *http.Request) {
	token, tokens, err := h.householdSvc.GenerateInvite(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, inviteResponse{InviteToken: token, InviteTokens: tokens})
}

func (h *HouseholdHandler) ResetInvites(w http.ResponseWriter, r *http.Request) {
	token, tokens, err := h.householdSvc.ResetInvites(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, inviteResponse{InviteToken: token, InviteTokens: tokens})
}

type setRoleRequest struct {
	IsAdmin bool `json:"isAdmin"`
}

func (h *HouseholdHandler) SetMemberRole(w http.ResponseWriter, r *http.Request) {
	targetID := r.PathValue("id")

	var req setRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	members, err := h.householdSvc.SetMemberRole(r.Context(), targetID, req.IsAdmin)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.broadcast(auth.HouseholdID(r.Context()), websocket.NewMessage("member", "updated", targetID, nil))

	writeJSON(w, http.StatusOK, map[string]any{"members": members})
}

func (h *HouseholdHandler) UpdateDogProfile(w http.ResponseWriter, r *http.Request) {
	var req service.DogProfileUpdate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	household, err := h.householdSvc.UpdateDogProfile(r.Context(), req)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.broadcast(household.ID, websocket.NewMessage("dog", "updated", household.ID, nil))

	writeJSON(w, http.StatusOK, map[string]any{
		"success":      true,
		"dogName":      household.DogName,
		"dogAgeMonths": household.DogAgeMonths,
		"dogPhotoUrl":  household.DogPhotoURL,
	})
}
