package booking

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Toan888/SpaceHub-BE/internal/domain/entity"
	"github.com/Toan888/SpaceHub-BE/internal/domain/repository"
	"github.com/Toan888/SpaceHub-BE/internal/events"
	"github.com/Toan888/SpaceHub-BE/internal/goroutine"
	"github.com/Toan888/SpaceHub-BE/internal/logger"
	"github.com/Toan888/SpaceHub-BE/internal/usecase/availability"
)

// Ledger - операции журнала, нужные бронированию.
type Ledger interface {
	Balance(ctx context.Context, userID uuid.UUID) (int64, error)
	Debit(ctx context.Context, userID uuid.UUID, amount int64) (*entity.Transaction, error)
	Refund(ctx context.Context, userID uuid.UUID, amount int64, originalTransactionID uuid.UUID) (*entity.Transaction, error)
}

type Notifier interface {
	Notify(ctx context.Context, notice entity.Notice) error
}

type Deps struct {
	Bookings  repository.BookingRepository
	Spaces    repository.SpaceRepository
	Users     repository.UserRepository
	Ledger    Ledger
	Index     *availability.Index
	Tx        repository.TxManager
	Notifier  Notifier
	Publisher events.Publisher
}

// Lifecycle создаёт и отменяет бронирования.
type Lifecycle struct {
	Deps
	now func() time.Time
	log *logrus.Entry
}

func NewLifecycle(deps Deps) *Lifecycle {
	if deps.Publisher == nil {
		deps.Publisher = events.NopPublisher{}
	}
	return &Lifecycle{
		Deps: deps,
		now:  time.Now,
		log:  logger.WithComponent("booking"),
	}
}

// WithClock подменяет источник времени.
func (l *Lifecycle) WithClock(now func() time.Time) *Lifecycle {
	l.now = now
	return l
}

// afterCommit выполняет побочные действия вне запроса: уведомление и событие.
func (l *Lifecycle) afterCommit(notice *entity.Notice, key string, payload any) {
	goroutine.SafeGo(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if notice != nil && l.Notifier != nil {
			if err := l.Notifier.Notify(ctx, *notice); err != nil {
				l.log.WithError(err).WithField("user_id", notice.RecipientUserID).Warn("не удалось уведомить владельца")
			}
		}
		if err := l.Publisher.Publish(ctx, key, payload); err != nil {
			l.log.WithError(err).WithField("routing_key", key).Warn("не удалось опубликовать событие")
		}
	})
}

// ownerNotice собирает уведомление владельцу помещения. Ошибки чтения не мешают операции.
func (l *Lifecycle) ownerNotice(ctx context.Context, b *entity.Booking, format string) *entity.Notice {
	space, err := l.Spaces.FindByID(ctx, b.SpaceID)
	if err != nil {
		l.log.WithError(err).WithField("space_id", b.SpaceID).Warn("помещение для уведомления не найдено")
		return nil
	}
	name := "Пользователь"
	if u, err := l.Users.FindByID(ctx, b.UserID); err == nil && u.Fullname != "" {
		name = u.Fullname
	}
	n := entity.NewNotice(space.OwnerID, name+format+space.Name, space.ImageURL, "/order")
	return &n
}
