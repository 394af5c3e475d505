package notifications

import (
	"context"
	"log"

	"github.com/Domenick1991/carpool/internal/domain"
	"github.com/Domenick1991/carpool/internal/kafka"
	"github.com/Domenick1991/carpool/internal/repository"
)

type NotificationUseCase interface {
	Notify(ctx context.Context, userID string, typ domain.NotificationType, message string)
	List(ctx context.Context, userID string) ([]domain.Notification, error)
	MarkAllRead(ctx context.Context, userID string) error
	UnreadCount(ctx context.Context, userID string) (int, error)
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type Service struct {
	repo     repository.NotificationRepository
	producer Producer
	topic    string
}

func NewService(repo repository.NotificationRepository, producer Producer, topic string) *Service {
	return &Service{repo: repo, producer: producer, topic: topic}
}

// Notify appends a notification and publishes the matching event. Both are
// best-effort: a failure here must never fail the operation that triggered it.
func (s *Service) Notify(ctx context.Context, userID string, typ domain.NotificationType, message string) {
	n := &domain.Notification{
		UserID:  userID,
		Type:    typ,
		Message: message,
	}
	if err := s.repo.Create(ctx, n); err != nil {
		log.Printf("WARNING: failed to store %s notification for user %s: %v", typ, userID, err)
		return
	}

	if s.producer == nil || s.topic == "" {
		return
	}
	event := kafka.NotificationEvent{
		Type:      string(typ),
		UserID:    userID,
		Message:   message,
		CreatedAt: n.CreatedAt,
	}
	if err := s.producer.Publish(ctx, s.topic, userID, event); err != nil {
		log.Printf("WARNING: failed to publish %s notification event for user %s: %v", typ, userID, err)
	}
}

func (s *Service) List(ctx context.Context, userID string) ([]domain.Notification, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *Service) MarkAllRead(ctx context.Context, userID string) error {
	return s.repo.MarkAllRead(ctx, userID)
}

func (s *Service) UnreadCount(ctx context.Context, userID string) (int, error) {
	return s.repo.UnreadCount(ctx, userID)
}

var _ NotificationUseCase = (*Service)(nil)
