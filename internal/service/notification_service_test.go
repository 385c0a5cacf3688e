package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Toan888/SpaceHub-BE/internal/domain/entity"
	"github.com/Toan888/SpaceHub-BE/internal/pkg/apperror"
	"github.com/Toan888/SpaceHub-BE/internal/repository/memory"
)

type mockPusher struct {
	mock.Mock
}

func (m *mockPusher) BroadcastToUser(userID uuid.UUID, event string, data any) error {
	args := m.Called(userID, event)
	return args.Error(0)
}

func TestNotificationService_NotifySavesAndPushes(t *testing.T) {
	store := memory.NewStore()
	pusher := new(mockPusher)
	svc := NewNotificationService(memory.NotificationRepo{Store: store}, pusher)
	ctx := context.Background()
	owner := uuid.New()

	pusher.On("BroadcastToUser", owner, EventNotification).Return(nil)

	err := svc.Notify(ctx, entity.NewNotice(owner, "Nguyen Van A забронировал Loft 12", nil, "/order"))
	require.NoError(t, err)
	pusher.AssertExpectations(t)

	items, err := svc.List(ctx, owner, 0, 0)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.NotNil(t, items[0].LinkURL)
	assert.Equal(t, "/order", *items[0].LinkURL)

	unread, err := svc.CountUnread(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, 1, unread)

	require.NoError(t, svc.MarkAllAsRead(ctx, owner))
	unread, _ = svc.CountUnread(ctx, owner)
	assert.Equal(t, 0, unread)
}

func TestNotificationService_PushFailureIsNotFatal(t *testing.T) {
	store := memory.NewStore()
	pusher := new(mockPusher)
	svc := NewNotificationService(memory.NotificationRepo{Store: store}, pusher)
	owner := uuid.New()

	pusher.On("BroadcastToUser", owner, EventNotification).Return(errors.New("hub closed"))

	assert.NoError(t, svc.Notify(context.Background(), entity.NewNotice(owner, "hi", nil, "")))
	assert.Len(t, store.Notifications(), 1)
}

func TestNotificationService_Validation(t *testing.T) {
	svc := NewNotificationService(memory.NotificationRepo{Store: memory.NewStore()}, nil)

	err := svc.Notify(context.Background(), entity.Notice{Message: "x"})
	assert.True(t, apperror.IsValidation(err))
}
