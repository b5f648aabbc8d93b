package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/mkeren/pawtrack/internal/push"
	"github.com/mkeren/pawtrack/internal/service"
)

type PushHandler struct {
	subSvc  *service.PushSubscriptionService
	pushSvc *push.Service
	logger  *slog.Logger
}

func NewPushHandler(ss *service.PushSubscriptionService, ps *push.Service, logger *slog.Logger) *PushHandler {
	return &PushHandler{subSvc: ss, pushSvc: ps, logger: logger}
}

type subscribeRequest struct {
	Endpoint string `json:"endpoint"`
	Keys     struct {
		P256dh string `json:"p256dh"`
		Auth   string `json:"auth"`
	} `json:"keys"`
}

func (h *PushHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	var req subscribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	sub, err := h.subSvc.Subscribe(r.Context(), req.Endpoint, req.Keys.P256dh, req.Keys.Auth)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, sub)
}

func (h *PushHandler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	if err := h.subSvc.Unsubscribe(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *PushHandler) ListSubscriptions(w http.ResponseWriter, r *http.Request) {
	subs, err := h.subSvc.List(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, subs)
}

func (h *PushHandler) GetVAPIDKey(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"publicKey": h.pushSvc.VAPIDPublicKey()})
}
