package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/shaharia-lab/notifier/internal/notification"
	"github.com/shaharia-lab/notifier/internal/service"
)

// MockNotificationService is a mock implementation of service.NotificationService.
type MockNotificationService struct {
	mock.Mock
}

//nolint:revive
func (m *MockNotificationService) CreateAndSend(ctx context.Context, req service.CreateRequest) (*notification.Notification, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*notification.Notification), args.Error(1)
}

//nolint:revive
func (m *MockNotificationService) GetByID(ctx context.Context, id string) (*notification.Notification, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*notification.Notification), args.Error(1)
}

//nolint:revive
func (m *MockNotificationService) ListByUser(ctx context.Context, userID string) ([]notification.Notification, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]notification.Notification), args.Error(1)
}

//nolint:revive
func (m *MockNotificationService) ListByStatus(ctx context.Context, status notification.Status) ([]notification.Notification, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]notification.Notification), args.Error(1)
}

//nolint:revive
func (m *MockNotificationService) ListAll(ctx context.Context) ([]notification.Notification, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]notification.Notification), args.Error(1)
}
