package service

import (
	"context"

	"autofix/internal/domain"
	"autofix/internal/metrics"
	"autofix/internal/models"
)

// NotificationService is the audit-trail recorder. It appends only;
// the store's foreign key rejects records for unknown bookings.
type NotificationService struct {
	repo domain.Repository
}

func NewNotificationService(repo domain.Repository) *NotificationService {
	return &NotificationService{repo: repo}
}

func (s *NotificationService) Record(ctx context.Context, bookingRef, message string) (*models.Notification, error) {
	notification, err := s.repo.AddNotification(ctx, bookingRef, message)
	if err != nil {
		return nil, err
	}
	metrics.IncNotification()
	return notification, nil
}

func (s *NotificationService) ListRecent(ctx context.Context, limit int) ([]*models.Notification, error) {
	if limit <= 0 || limit > 500 {
		limit = models.DefaultNotificationLimit
	}
	return s.repo.ListRecentNotifications(ctx, limit)
}
