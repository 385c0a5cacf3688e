package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/Toan888/SpaceHub-BE/internal/domain/entity"
	"github.com/Toan888/SpaceHub-BE/internal/domain/valueobject"
)

type BookingRepository interface {
	// Create сохраняет бронирование вместе с ключами занятости.
	// Нарушение уникальности ключа возвращается как apperror.ErrSlotConflict.
	Create(ctx context.Context, booking *entity.Booking) error
	Update(ctx context.Context, booking *entity.Booking) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error)
	// FindByIDForUpdate блокирует строку до конца текущей транзакции.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Booking, error)
	FindActiveBySpace(ctx context.Context, spaceID uuid.UUID) ([]*entity.Booking, error)
	FindByUser(ctx context.Context, userID uuid.UUID) ([]*entity.Booking, error)
	FindPendingPayout(ctx context.Context, rentalType valueobject.RentalType) ([]uuid.UUID, error)
	// LockSpace сериализует создание бронирований одного помещения до конца транзакции.
	LockSpace(ctx context.Context, spaceID uuid.UUID) error
}

type SpaceRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Space, error)
}

type UserRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
	ListAdminIDs(ctx context.Context) ([]uuid.UUID, error)
}

type NotificationRepository interface {
	Create(ctx context.Context, n *entity.Notification) error
	List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]entity.Notification, error)
	MarkAllAsRead(ctx context.Context, userID uuid.UUID) error
	CountUnread(ctx context.Context, userID uuid.UUID) (int, error)
}

// TxManager выполняет fn в одной транзакции БД. Вложенные вызовы присоединяются к внешней.
type TxManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}
