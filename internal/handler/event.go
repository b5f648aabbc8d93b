package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/mkeren/pawtrack/internal/auth"
	"github.com/mkeren/pawtrack/internal/model"
	"github.com/mkeren/pawtrack/internal/push"
	"github.com/mkeren/pawtrack/internal/service"
	"github.com/mkeren/pawtrack/internal/websocket"
)

type EventHandler struct {
	eventSvc *service.EventService
	subSvc   *service.PushSubscriptionService
	pushSvc  *push.Service
	hub      *websocket.Hub
	logger   *slog.Logger
}

func NewEventHandler(es *service.EventService, ss *service.PushSubscriptionService, ps *push.Service, hub *websocket.Hub, logger *slog.Logger) *EventHandler {
	return &EventHandler{eventSvc: es, subSvc: ss, pushSvc: ps, hub: hub, logger: logger}
}

func (h *EventHandler) broadcast(householdID string, msg websocket.Message) {
	if h.hub != nil {
		h.hub.Broadcast(householdID, msg)
	}
}

type recordEventRequest struct {
	Type string `json:"type"`
}

// scoreboardResponse is returned by every event mutation so the client can
// repaint totals without a second round trip.
type scoreboardResponse struct {
	Success bool   `json:"success"`
	EventID string `json:"eventId,omitempty"`
	model.Scoreboard
}

func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req recordEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	if req.Type == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "type is required"})
		return
	}

	ev, sb, err := h.eventSvc.Record(r.Context(), req.Type)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.broadcast(ev.HouseholdID, websocket.NewMessage("event", "created", ev.ID, map[string]any{
		"family_total": sb.FamilyTotal,
	}))
	h.notifyHousehold(r, ev)

	writeJSON(w, http.StatusOK, scoreboardResponse{Success: true, EventID: ev.ID, Scoreboard: sb})
}

func (h *EventHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	sb, err := h.eventSvc.Delete(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.broadcast(auth.HouseholdID(r.Context()), websocket.NewMessage("event", "deleted", id, map[string]any{
		"family_total": sb.FamilyTotal,
	}))

	writeJSON(w, http.StatusOK, scoreboardResponse{Success: true, Scoreboard: sb})
}

func (h *EventHandler) Today(w http.ResponseWriter, r *http.Request) {
	view, err := h.eventSvc.Today(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *EventHandler) History(w http.ResponseWriter, r *http.Request) {
	view, err := h.eventSvc.History(r.Context(), r.URL.Query().Get("date"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *EventHandler) Scores(w http.ResponseWriter, r *http.Request) {
	sb, err := h.eventSvc.Scores(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, sb)
}

// notifyHousehold pushes a note to the other members' devices. Failures are
// logged, never surfaced: the event is already recorded.
func (h *EventHandler) notifyHousehold(r *http.Request, ev *model.Event) {
	if h.pushSvc == nil {
		return
	}
	subs, err := h.subSvc.Recipients(r.Context())
	if err != nil || len(subs) == 0 {
		return
	}

	username := "Someone"
	if ac, ok := auth.FromContext(r.Context()); ok && ac.Username != "" {
		username = ac.Username
	}
	payload := push.Payload{
		Title: "Pawtrack",
		Body:  fmt.Sprintf("%s logged %s", username, ev.Type),
		Tag:   "event-recorded",
	}

	expired := h.pushSvc.Fanout(subs, payload)
	if err := h.subSvc.Prune(expired); err != nil {
		h.logger.Warn("prune expired subscriptions", "error", err)
	}
}
