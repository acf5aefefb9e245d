package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/shaharia-lab/notifier/internal/notification"
	"github.com/shaharia-lab/notifier/internal/service"
)

const defaultNotFoundMessage = "Resource not found"

func (s *Server) handleSendNotification(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var req service.CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	n, err := s.notificationSvc.CreateAndSend(r.Context(), req)
	if err != nil {
		var ve *service.ValidationError
		var ire *notification.InvalidRecipientError
		switch {
		case errors.As(err, &ve):
			writeError(w, http.StatusBadRequest, ve.Error())
		case errors.As(err, &ire):
			writeError(w, http.StatusBadRequest, ire.Error())
		default:
			s.logger.Error("send notification failed", "user_id", req.UserID, "error", err)
			writeError(w, http.StatusInternalServerError, "failed to send notification")
		}
		return
	}
	writeJSON(w, http.StatusCreated, n)
}

func (s *Server) handleGetNotification(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := uuid.Parse(id); err != nil {
		writeError(w, http.StatusBadRequest, "invalid notification id")
		return
	}

	n, err := s.notificationSvc.GetByID(r.Context(), id)
	if err != nil {
		var nf *service.NotFoundError
		if errors.As(err, &nf) {
			msg := nf.Message
			if msg == "" {
				msg = defaultNotFoundMessage
			}
			writeError(w, http.StatusNotFound, msg)
			return
		}
		s.logger.Error("get notification failed", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get notification")
		return
	}
	writeJSON(w, http.StatusOK, n)
}

func (s *Server) handleListUserNotifications(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	list, err := s.notificationSvc.ListByUser(r.Context(), userID)
	if err != nil {
		s.logger.Error("list user notifications failed", "user_id", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list notifications")
		return
	}
	writeJSON(w, http.StatusOK, nonNil(list))
}

func (s *Server) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	var (
		list []notification.Notification
		err  error
	)
	if raw := r.URL.Query().Get("status"); raw != "" {
		status, perr := notification.ParseStatus(raw)
		if perr != nil {
			writeError(w, http.StatusBadRequest, perr.Error())
			return
		}
		list, err = s.notificationSvc.ListByStatus(r.Context(), status)
	} else {
		list, err = s.notificationSvc.ListAll(r.Context())
	}
	if err != nil {
		s.logger.Error("list notifications failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list notifications")
		return
	}
	writeJSON(w, http.StatusOK, nonNil(list))
}

func nonNil(list []notification.Notification) []notification.Notification {
	if list == nil {
		return []notification.Notification{}
	}
	return list
}
