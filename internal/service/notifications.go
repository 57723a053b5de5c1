package service

import (
	"context"

	"github.com/foxfund/foxfund-go/internal/domain"
	"github.com/foxfund/foxfund-go/internal/infra/observability"
	"github.com/foxfund/foxfund-go/internal/port"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var notifTracer = otel.Tracer("service/notifications")

// notificationListLimit caps how many notifications a single listing returns.
const notificationListLimit = 50

// NotificationService exposes a user's notification feed.
type NotificationService struct {
	store   port.Store
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewNotificationService creates a new notification service.
func NewNotificationService(store port.Store, metrics *observability.Metrics, logger *zap.Logger) *NotificationService {
	return &NotificationService{store: store, metrics: metrics, logger: logger}
}

func (s *NotificationService) List(ctx context.Context, userID string) ([]domain.Notification, error) {
	ctx, span := notifTracer.Start(ctx, "NotificationService.List")
	defer span.End()

	return s.store.ListNotifications(ctx, userID, notificationListLimit)
}

func (s *NotificationService) MarkRead(ctx context.Context, userID, id string, read bool) (*domain.Notification, error) {
	ctx, span := notifTracer.Start(ctx, "NotificationService.MarkRead")
	defer span.End()

	return s.store.MarkNotificationRead(ctx, userID, id, read)
}

func (s *NotificationService) Delete(ctx context.Context, userID, id string) error {
	ctx, span := notifTracer.Start(ctx, "NotificationService.Delete")
	defer span.End()

	return s.store.DeleteNotification(ctx, userID, id)
}
