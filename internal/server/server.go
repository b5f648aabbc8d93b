package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/mkeren/pawtrack/internal/backup"
	"github.com/mkeren/pawtrack/internal/handler"
	"github.com/mkeren/pawtrack/internal/middleware"
	"github.com/mkeren/pawtrack/internal/push"
	"github.com/mkeren/pawtrack/internal/service"
	"github.com/mkeren/pawtrack/internal/store"
	ws "github.com/mkeren/pawtrack/internal/websocket"
)

// Config carries the optional subsystem configuration. Push and backup stay
// off unless their keys are present.
type Config struct {
	Push   push.Config
	Backup backup.Config
}

type Server struct {
	store       *store.Store
	hub         *ws.Hub
	authSvc     *service.AuthService
	authH       *handler.AuthHandler
	eventH      *handler.EventHandler
	householdH  *handler.HouseholdHandler
	adminH      *handler.AdminHandler
	pushH       *handler.PushHandler
	rateLimiter *middleware.RateLimiter
	backupMgr   *backup.Manager
	logger      *slog.Logger
}

func New(st *store.Store, cfg Config, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))

	authSvc := service.NewAuthService(st, logger.With("component", "auth"))
	eventSvc := service.NewEventService(st, logger.With("component", "events"))
	householdSvc := service.NewHouseholdService(st, logger.With("component", "household"))
	subSvc := service.NewPushSubscriptionService(st, logger.With("component", "push_subs"))

	var pushSvc *push.Service
	var pushH *handler.PushHandler
	if cfg.Push.VAPIDPublicKey != "" && cfg.Push.VAPIDPrivateKey != "" {
		pushSvc = push.NewService(cfg.Push, logger.With("component", "push"))
		pushH = handler.NewPushHandler(subSvc, pushSvc, logger.With("component", "push_handler"))
	}

	backupMgr := backup.NewManager(cfg.Backup, st.Path(), logger.With("component", "backup"))

	return &Server{
		store:       st,
		hub:         hub,
		authSvc:     authSvc,
		authH:       handler.NewAuthHandler(authSvc, householdSvc, logger.With("component", "auth_handler")),
		eventH:      handler.NewEventHandler(eventSvc, subSvc, pushSvc, hub, logger.With("component", "event_handler")),
		householdH:  handler.NewHouseholdHandler(householdSvc, hub, logger.With("component", "household_handler")),
		adminH:      handler.NewAdminHandler(eventSvc, backupMgr, hub, logger.With("component", "admin_handler")),
		pushH:       pushH,
		rateLimiter: middleware.NewRateLimiter(),
		backupMgr:   backupMgr,
		logger:      logger,
	}
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

// BackupManager returns the backup manager.
func (s *Server) BackupManager() *backup.Manager {
	return s.backupMgr
}

func (s *Server) Router() http.Handler {
	outerMux := http.NewServeMux()

	// Public routes (no auth required)
	outerMux.HandleFunc("POST /api/register", s.rateLimited(s.authH.Register))
	outerMux.HandleFunc("POST /api/login", s.rateLimited(s.authH.Login))
	outerMux.HandleFunc("GET /health", s.healthHandler)

	// Protected routes — wrapped with RequireAuth middleware
	protectedMux := http.NewServeMux()
	s.registerProtectedRoutes(protectedMux)

	authMiddleware := middleware.RequireAuth(s.authSvc)
	outerMux.Handle("/api/", authMiddleware(protectedMux))
	outerMux.Handle("GET /ws", authMiddleware(protectedMux))

	return middleware.RequestLogger(s.logger.With("component", "http"))(outerMux)
}

func (s *Server) registerProtectedRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/logout", s.authH.Logout)
	mux.HandleFunc("GET /api/user", s.authH.GetUser)

	// Event routes
	mux.HandleFunc("POST /api/events", s.eventH.Create)
	mux.HandleFunc("DELETE /api/events/{id}", s.eventH.Delete)
	mux.HandleFunc("GET /api/today", s.eventH.Today)
	mux.HandleFunc("GET /api/history", s.eventH.History)
	mux.HandleFunc("GET /api/scores", s.eventH.Scores)

	// Household management (admin checks live in the services; invite and
	// dog-profile routes additionally gate at the router for early 403s)
	mux.Handle("POST /api/invite", middleware.RequireAdmin(http.HandlerFunc(s.householdH.GenerateInvite)))
	mux.Handle("POST /api/invite/reset", middleware.RequireAdmin(http.HandlerFunc(s.householdH.ResetInvites)))
	mux.Handle("POST /api/members/{id}/role", middleware.RequireAdmin(http.HandlerFunc(s.householdH.SetMemberRole)))
	mux.Handle("POST /api/dog", middleware.RequireAdmin(http.HandlerFunc(s.householdH.UpdateDogProfile)))

	// Admin routes
	mux.Handle("POST /api/admin/reset-scores", middleware.RequireAdmin(http.HandlerFunc(s.adminH.ResetScores)))
	mux.Handle("POST /api/admin/clear-events", middleware.RequireAdmin(http.HandlerFunc(s.adminH.ClearEvents)))
	mux.Handle("POST /api/admin/backup", middleware.RequireAdmin(http.HandlerFunc(s.adminH.BackupNow)))

	// Push notification routes
	if s.pushH != nil {
		mux.HandleFunc("POST /api/push/subscribe", s.pushH.Subscribe)
		mux.HandleFunc("DELETE /api/push/subscriptions/{id}", s.pushH.Unsubscribe)
		mux.HandleFunc("GET /api/push/subscriptions", s.pushH.ListSubscriptions)
		mux.HandleFunc("GET /api/push/vapid-key", s.pushH.GetVAPIDKey)
	}

	// WebSocket (token passed as query parameter)
	mux.HandleFunc("GET /ws", ws.HandleWebSocket(s.hub, s.logger.With("component", "websocket")))
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) rateLimited(h http.HandlerFunc) http.HandlerFunc {
	keyFunc := func(r *http.Request) string {
		return middleware.RealIP(r)
	}
	rl := middleware.RateLimit(s.rateLimiter, keyFunc, 10, time.Minute)
	return func(w http.ResponseWriter, r *http.Request) {
		rl(http.HandlerFunc(h)).ServeHTTP(w, r)
	}
}
