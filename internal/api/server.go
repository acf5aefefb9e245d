package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/shaharia-lab/notifier/internal/service"
)

// maxBodyBytes caps request bodies accepted by the API.
const maxBodyBytes = 1 << 20

// Server holds all dependencies for the REST API handlers.
type Server struct {
	notificationSvc service.NotificationService
	logger          *slog.Logger
}

// New creates a new API Server backed by the provided services.
func New(notificationSvc service.NotificationService, logger *slog.Logger) *Server {
	return &Server{
		notificationSvc: notificationSvc,
		logger:          logger,
	}
}

// Mount registers all API routes under the given router.
func (s *Server) Mount(r chi.Router) {
	r.Post("/notifications/send", s.handleSendNotification)
	r.Get("/notifications", s.handleListNotifications)
	r.Get("/notifications/{id}", s.handleGetNotification)
	r.Get("/notifications/user/{userId}", s.handleListUserNotifications)

	r.Get("/version", s.handleVersion)
}

// ─── Shared helpers ───────────────────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
