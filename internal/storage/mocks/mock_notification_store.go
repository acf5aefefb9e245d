package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/shaharia-lab/notifier/internal/notification"
)

// MockNotificationStore is a mock implementation of storage.NotificationStore.
type MockNotificationStore struct {
	mock.Mock
}

//nolint:revive
func (m *MockNotificationStore) Create(ctx context.Context, n notification.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

//nolint:revive
func (m *MockNotificationStore) Update(ctx context.Context, n notification.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

//nolint:revive
func (m *MockNotificationStore) Get(ctx context.Context, id string) (*notification.Notification, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*notification.Notification), args.Error(1)
}

//nolint:revive
func (m *MockNotificationStore) ListByUser(ctx context.Context, userID string) ([]notification.Notification, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]notification.Notification), args.Error(1)
}

//nolint:revive
func (m *MockNotificationStore) ListByStatus(ctx context.Context, status notification.Status) ([]notification.Notification, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]notification.Notification), args.Error(1)
}

//nolint:revive
func (m *MockNotificationStore) List(ctx context.Context) ([]notification.Notification, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]notification.Notification), args.Error(1)
}
