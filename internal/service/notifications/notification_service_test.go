package notifications

import (
	"context"
	"errors"
	"testing"

	"github.com/Domenick1991/carpool/internal/domain"
	"github.com/Domenick1991/carpool/internal/kafka"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockNotificationRepository struct {
	mock.Mock
}

func (m *MockNotificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

func (m *MockNotificationRepository) ListByUser(ctx context.Context, userID string) ([]domain.Notification, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Notification), args.Error(1)
}

func (m *MockNotificationRepository) MarkAllRead(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockNotificationRepository) UnreadCount(ctx context.Context, userID string) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

type MockProducer struct {
	mock.Mock
}

func (m *MockProducer) Publish(ctx context.Context, topic, key string, value interface{}) error {
	args := m.Called(ctx, topic, key, value)
	return args.Error(0)
}

func TestService_Notify(t *testing.T) {
	ctx := context.Background()

	repo := new(MockNotificationRepository)
	repo.On("Create", ctx, mock.MatchedBy(func(n *domain.Notification) bool {
		return n.UserID == "user-1" && n.Type == domain.NotificationBookingAccepted
	})).Return(nil)

	producer := new(MockProducer)
	producer.On("Publish", ctx, "carpool.notifications", "user-1", mock.MatchedBy(func(e kafka.NotificationEvent) bool {
		return e.Type == string(domain.NotificationBookingAccepted) && e.UserID == "user-1"
	})).Return(nil)

	svc := NewService(repo, producer, "carpool.notifications")
	svc.Notify(ctx, "user-1", domain.NotificationBookingAccepted, "Your booking was accepted")

	repo.AssertExpectations(t)
	producer.AssertExpectations(t)
}

func TestService_Notify_StoreFails(t *testing.T) {
	ctx := context.Background()

	repo := new(MockNotificationRepository)
	repo.On("Create", ctx, mock.Anything).Return(errors.New("db down"))

	producer := new(MockProducer)

	svc := NewService(repo, producer, "carpool.notifications")
	svc.Notify(ctx, "user-1", domain.NotificationBookingRequest, "hello")

	// No stored row means no event either.
	producer.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestService_Notify_PublishFails(t *testing.T) {
	ctx := context.Background()

	repo := new(MockNotificationRepository)
	repo.On("Create", ctx, mock.Anything).Return(nil)

	producer := new(MockProducer)
	producer.On("Publish", ctx, "carpool.notifications", "user-1", mock.Anything).Return(errors.New("broker down"))

	svc := NewService(repo, producer, "carpool.notifications")

	// Publish failure is logged and swallowed.
	svc.Notify(ctx, "user-1", domain.NotificationRideCompleted, "done")
	repo.AssertExpectations(t)
}

func TestService_Notify_NoProducer(t *testing.T) {
	ctx := context.Background()

	repo := new(MockNotificationRepository)
	repo.On("Create", ctx, mock.Anything).Return(nil)

	svc := NewService(repo, nil, "")
	svc.Notify(ctx, "user-1", domain.NotificationBookingRejected, "declined")
	repo.AssertExpectations(t)
}

func TestService_UnreadCount(t *testing.T) {
	ctx := context.Background()

	repo := new(MockNotificationRepository)
	repo.On("UnreadCount", ctx, "user-1").Return(3, nil)

	svc := NewService(repo, nil, "")

	count, err := svc.UnreadCount(ctx, "user-1")
	assert.NoError(t, err)
	assert.Equal(t, 3, count)
}
