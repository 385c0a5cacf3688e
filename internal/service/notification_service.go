package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Toan888/SpaceHub-BE/internal/domain/entity"
	"github.com/Toan888/SpaceHub-BE/internal/domain/repository"
	"github.com/Toan888/SpaceHub-BE/internal/logger"
	"github.com/Toan888/SpaceHub-BE/internal/pkg/apperror"
)

// EventNotification - тип WebSocket сообщения с новым уведомлением.
const EventNotification = "notification"

// Pusher отправляет событие в открытые соединения пользователя.
type Pusher interface {
	BroadcastToUser(userID uuid.UUID, event string, data any) error
}

// NotificationService сохраняет уведомления и доставляет их через реестр соединений.
type NotificationService struct {
	repo   repository.NotificationRepository
	pusher Pusher
	log    *logrus.Entry
}

// NewNotificationService создаёт сервис уведомлений. pusher может быть nil.
func NewNotificationService(repo repository.NotificationRepository, pusher Pusher) *NotificationService {
	return &NotificationService{
		repo:   repo,
		pusher: pusher,
		log:    logger.WithComponent("notification"),
	}
}

// Notify сохраняет уведомление и отправляет его в WebSocket. Ошибка отправки только логируется.
func (s *NotificationService) Notify(ctx context.Context, notice entity.Notice) error {
	if notice.RecipientUserID == uuid.Nil || notice.Message == "" {
		return apperror.New(apperror.ErrCodeValidation, "получатель и текст уведомления обязательны")
	}

	n := &entity.Notification{
		ID:        uuid.New(),
		UserID:    notice.RecipientUserID,
		Message:   notice.Message,
		ImageURL:  notice.ImageURL,
		LinkURL:   notice.LinkURL,
		CreatedAt: time.Now(),
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return apperror.Database(err, "не удалось сохранить уведомление")
	}

	if s.pusher != nil {
		if err := s.pusher.BroadcastToUser(n.UserID, EventNotification, n); err != nil {
			s.log.WithError(err).WithField("user_id", n.UserID).Warn("не удалось отправить уведомление в websocket")
		}
	}
	return nil
}

// List возвращает уведомления пользователя, новые первыми.
func (s *NotificationService) List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]entity.Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	items, err := s.repo.List(ctx, userID, limit, offset)
	if err != nil {
		return nil, apperror.Database(err, "не удалось получить уведомления")
	}
	return items, nil
}

// MarkAllAsRead отмечает все уведомления пользователя как прочитанные.
func (s *NotificationService) MarkAllAsRead(ctx context.Context, userID uuid.UUID) error {
	return apperror.Database(s.repo.MarkAllAsRead(ctx, userID), "не удалось обновить уведомления")
}

// CountUnread возвращает количество непрочитанных уведомлений.
func (s *NotificationService) CountUnread(ctx context.Context, userID uuid.UUID) (int, error) {
	n, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return 0, apperror.Database(err, "не удалось посчитать уведомления")
	}
	return n, nil
}
