package booking

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Toan888/SpaceHub-BE/internal/domain/entity"
	"github.com/Toan888/SpaceHub-BE/internal/domain/valueobject"
	"github.com/Toan888/SpaceHub-BE/internal/events"
	"github.com/Toan888/SpaceHub-BE/internal/pkg/apperror"
	"github.com/Toan888/SpaceHub-BE/internal/usecase/availability"
)

type CreateInput struct {
	UserID      uuid.UUID
	SpaceID     uuid.UUID
	RentalType  valueobject.RentalType
	StartDate   time.Time
	EndDate     time.Time
	Slots       []entity.Slot
	Dates       []time.Time
	TotalAmount int64
	Notes       string
}

// Create проверяет баланс и доступность, списывает средства и сохраняет бронирование.
// Всё, кроме уведомления, выполняется в одной транзакции под блокировкой помещения.
func (l *Lifecycle) Create(ctx context.Context, in CreateInput) (*entity.Booking, error) {
	b, err := entity.NewBooking(entity.BookingDraft{
		UserID:      in.UserID,
		SpaceID:     in.SpaceID,
		RentalType:  in.RentalType,
		StartDate:   in.StartDate,
		EndDate:     in.EndDate,
		Slots:       in.Slots,
		Dates:       in.Dates,
		TotalAmount: in.TotalAmount,
		Notes:       in.Notes,
	})
	if err != nil {
		return nil, err
	}

	if _, err := l.Spaces.FindByID(ctx, b.SpaceID); err != nil {
		return nil, apperror.Database(err, "не удалось получить помещение")
	}

	err = l.Tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := l.Bookings.LockSpace(ctx, b.SpaceID); err != nil {
			return err
		}

		balance, err := l.Ledger.Balance(ctx, b.UserID)
		if err != nil {
			return err
		}
		if balance < b.TotalAmount {
			return apperror.ErrInsufficientFunds
		}

		conflicts, err := l.Index.FindConflicts(ctx, b.SpaceID, availability.RequestFor(b))
		if err != nil {
			return err
		}
		if len(conflicts) > 0 {
			return apperror.ErrSlotConflict
		}

		debit, err := l.Ledger.Debit(ctx, b.UserID, b.TotalAmount)
		if err != nil {
			return err
		}
		if err := b.Confirm(debit.ID); err != nil {
			return err
		}
		return l.Bookings.Create(ctx, b)
	})
	if err != nil {
		return nil, apperror.Database(err, "не удалось создать бронирование")
	}

	l.log.WithFields(logrus.Fields{
		"booking_id":  b.ID,
		"space_id":    b.SpaceID,
		"rental_type": b.RentalType,
		"amount":      b.TotalAmount,
	}).Info("бронирование создано")

	l.afterCommit(l.ownerNotice(ctx, b, " забронировал(а) "), events.KeyBookingCreated, events.BookingCreated{
		BookingID:   b.ID,
		SpaceID:     b.SpaceID,
		UserID:      b.UserID,
		RentalType:  string(b.RentalType),
		TotalAmount: b.TotalAmount,
		StartDate:   b.StartDate,
		EndDate:     b.EndDate,
	})
	return b, nil
}
