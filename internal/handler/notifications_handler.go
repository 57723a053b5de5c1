package handler

import (
	"encoding/json"
	"net/http"

	"github.com/foxfund/foxfund-go/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ============================================================
// Notifications
// ============================================================

func listNotificationsHandler(svc *service.NotificationService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/notifications")
		defer span.End()

		notifications, err := svc.List(ctx, UserIDFromContext(ctx))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, notifications)
	}
}

func markNotificationReadHandler(svc *service.NotificationService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PUT /v1/notifications/{id}/read")
		defer span.End()

		// Default to marking read; the body may flip it back.
		body := struct {
			Read *bool `json:"read"`
		}{}
		_ = json.NewDecoder(r.Body).Decode(&body)
		read := true
		if body.Read != nil {
			read = *body.Read
		}

		n, err := svc.MarkRead(ctx, UserIDFromContext(ctx), chi.URLParam(r, "id"), read)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, n)
	}
}

func deleteNotificationHandler(svc *service.NotificationService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /v1/notifications/{id}")
		defer span.End()

		if err := svc.Delete(ctx, UserIDFromContext(ctx), chi.URLParam(r, "id")); err != nil {
			handleServiceError(w, err, logger)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}
