package handler

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/mkeren/pawtrack/internal/auth"
	"github.com/mkeren/pawtrack/internal/backup"
	"github.com/mkeren/pawtrack/internal/service"
	"github.com/mkeren/pawtrack/internal/websocket"
)

// AdminHandler covers the household-wide admin operations: wiping the event
// log (which, because scores are derived, is also the score reset) and
// triggering an offsite backup.
type AdminHandler struct {
	eventSvc  *service.EventService
	backupMgr *backup.Manager
	hub       *websocket.Hub
	logger    *slog.Logger
}

func NewAdminHandler(es *service.EventService, bm *backup.Manager, hub *websocket.Hub, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{eventSvc: es, backupMgr: bm, hub: hub, logger: logger}
}

func (h *AdminHandler) broadcast(householdID string, msg websocket.Message) {
	if h.hub != nil {
		h.hub.Broadcast(householdID, msg)
	}
}

// ResetScores clears the household's event log. Scores are never stored, so
// an empty log means a zeroed scoreboard.
func (h *AdminHandler) ResetScores(w http.ResponseWriter, r *http.Request) {
	h.clear(w, r, "scores reset")
}

// ClearEvents wipes the household's event log.
func (h *AdminHandler) ClearEvents(w http.ResponseWriter, r *http.Request) {
	h.clear(w, r, "events cleared")
}

func (h *AdminHandler) clear(w http.ResponseWriter, r *http.Request, message string) {
	removed, err := h.eventSvc.ClearEvents(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	householdID := auth.HouseholdID(r.Context())
	h.broadcast(householdID, websocket.NewMessage("events", "cleared", householdID, map[string]any{
		"removed": removed,
	}))

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": fmt.Sprintf("%s (%d events removed)", message, removed),
	})
}

// BackupNow uploads an encrypted snapshot of the document to S3.
func (h *AdminHandler) BackupNow(w http.ResponseWriter, r *http.Request) {
	if h.backupMgr == nil || !h.backupMgr.Enabled() {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "backup not configured"})
		return
	}

	key, err := h.backupMgr.BackupNow(r.Context())
	if err != nil {
		h.logger.Error("backup failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "backup failed"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "key": key})
}
