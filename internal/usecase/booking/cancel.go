package booking

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Toan888/SpaceHub-BE/internal/domain/entity"
	"github.com/Toan888/SpaceHub-BE/internal/domain/policy"
	"github.com/Toan888/SpaceHub-BE/internal/events"
	"github.com/Toan888/SpaceHub-BE/internal/pkg/apperror"
)

var errNotRenter = apperror.New(apperror.ErrCodeNotAllowed, "отменить бронирование может только арендатор")

// Cancel отменяет бронирование и возвращает средства по правилам типа аренды.
func (l *Lifecycle) Cancel(ctx context.Context, userID, bookingID uuid.UUID, reason string) (*entity.Booking, error) {
	var b *entity.Booking
	err := l.Tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		b, err = l.Bookings.FindByIDForUpdate(ctx, bookingID)
		if err != nil {
			return err
		}
		if !b.IsOwnedBy(userID) {
			return errNotRenter
		}

		now := l.now()
		decision := policy.Evaluate(b, now)
		if !decision.IsAllowCancel {
			return apperror.ErrCancelNotAllowed
		}

		refund, err := l.Ledger.Refund(ctx, b.UserID, decision.Amount, b.DebitTransactionID)
		if err != nil {
			return err
		}
		if err := b.Cancel(now, refund.ID, decision.Amount, reason); err != nil {
			return err
		}
		return l.Bookings.Update(ctx, b)
	})
	if err != nil {
		return nil, apperror.Database(err, "не удалось отменить бронирование")
	}

	l.log.WithFields(logrus.Fields{
		"booking_id": b.ID,
		"refund":     b.RefundAmount,
	}).Info("бронирование отменено")

	l.afterCommit(l.ownerNotice(ctx, b, " отменил(а) бронирование "), events.KeyBookingCanceled, events.BookingCanceled{
		BookingID:    b.ID,
		SpaceID:      b.SpaceID,
		UserID:       b.UserID,
		RefundAmount: b.RefundAmount,
		CanceledAt:   b.UpdatedAt,
	})
	return b, nil
}

// CancelPrecheck показывает, можно ли отменить бронирование сейчас и сколько вернётся.
// Ничего не меняет; к моменту отмены ответ может устареть.
func (l *Lifecycle) CancelPrecheck(ctx context.Context, userID, bookingID uuid.UUID) (policy.Decision, error) {
	b, err := l.Bookings.FindByID(ctx, bookingID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return policy.Decision{}, nil
		}
		return policy.Decision{}, apperror.Database(err, "не удалось получить бронирование")
	}
	if !b.IsOwnedBy(userID) {
		return policy.Decision{}, nil
	}
	return policy.Evaluate(b, l.now()), nil
}

// View - бронирование с признаком возможности отмены.
type View struct {
	Booking       *entity.Booking
	IsAllowCancel bool
}

// ListUserBookings возвращает бронирования пользователя, новые первыми.
func (l *Lifecycle) ListUserBookings(ctx context.Context, userID uuid.UUID) ([]View, error) {
	items, err := l.Bookings.FindByUser(ctx, userID)
	if err != nil {
		return nil, apperror.Database(err, "не удалось получить бронирования")
	}
	now := l.now()
	out := make([]View, 0, len(items))
	for i := len(items) - 1; i >= 0; i-- {
		out = append(out, View{Booking: items[i], IsAllowCancel: policy.IsAllowCancel(items[i], now)})
	}
	return out, nil
}
