package payout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Toan888/SpaceHub-BE/internal/domain/entity"
	"github.com/Toan888/SpaceHub-BE/internal/domain/repository"
	"github.com/Toan888/SpaceHub-BE/internal/domain/valueobject"
	"github.com/Toan888/SpaceHub-BE/internal/events"
	"github.com/Toan888/SpaceHub-BE/internal/goroutine"
	"github.com/Toan888/SpaceHub-BE/internal/logger"
	"github.com/Toan888/SpaceHub-BE/internal/pkg/apperror"
)

var errPanic = errors.New("panic при выплате")

// Ledger - зачисление владельцу из эскроу.
type Ledger interface {
	Credit(ctx context.Context, userID uuid.UUID, amount int64) (*entity.Transaction, error)
}

type Notifier interface {
	Notify(ctx context.Context, notice entity.Notice) error
}

// Result - итог одного прохода.
type Result struct {
	Scanned  int
	Paid     int
	Advanced int
	Failed   int
}

// Settler выплачивает владельцам средства из эскроу по расписанию типа аренды.
type Settler struct {
	bookings  repository.BookingRepository
	spaces    repository.SpaceRepository
	ledger    Ledger
	tx        repository.TxManager
	notifier  Notifier
	publisher events.Publisher
	now       func() time.Time
	log       *logrus.Entry
}

func NewSettler(bookings repository.BookingRepository, spaces repository.SpaceRepository, ledger Ledger, tx repository.TxManager) *Settler {
	return &Settler{
		bookings:  bookings,
		spaces:    spaces,
		ledger:    ledger,
		tx:        tx,
		publisher: events.NopPublisher{},
		now:       time.Now,
		log:       logger.WithComponent("payout"),
	}
}

func (s *Settler) WithNotifier(n Notifier) *Settler {
	s.notifier = n
	return s
}

func (s *Settler) WithPublisher(p events.Publisher) *Settler {
	if p != nil {
		s.publisher = p
	}
	return s
}

func (s *Settler) WithClock(now func() time.Time) *Settler {
	s.now = now
	return s
}

// settled - выплата, зафиксированная в БД.
type settled struct {
	booking *entity.Booking
	ownerID uuid.UUID
	txID    uuid.UUID
	amount  int64
}

// RunOnce обрабатывает все бронирования типа rentalType, ожидающие выплаты.
// Ошибка по одному бронированию не прерывает проход.
func (s *Settler) RunOnce(ctx context.Context, rentalType valueobject.RentalType) (Result, error) {
	var res Result
	ids, err := s.bookings.FindPendingPayout(ctx, rentalType)
	if err != nil {
		return res, apperror.Database(err, "не удалось выбрать бронирования к выплате")
	}
	res.Scanned = len(ids)

	for _, id := range ids {
		if ctx.Err() != nil {
			return res, ctx.Err()
		}
		var (
			out     *settled
			setlErr error
		)
		ok := goroutine.Run("payout "+id.String(), func() {
			out, setlErr = s.settle(ctx, id)
		})
		if !ok {
			setlErr = errPanic
		}
		if setlErr != nil {
			res.Failed++
			s.log.WithError(setlErr).WithField("booking_id", id).Error("ошибка выплаты")
			continue
		}
		if out == nil {
			continue
		}
		if out.amount > 0 {
			res.Paid++
			s.announce(out)
		} else {
			res.Advanced++
		}
	}

	if res.Paid+res.Advanced+res.Failed > 0 {
		s.log.WithFields(logrus.Fields{
			"rental_type": rentalType,
			"scanned":     res.Scanned,
			"paid":        res.Paid,
			"advanced":    res.Advanced,
			"failed":      res.Failed,
		}).Info("проход выплат завершён")
	}
	return res, nil
}

// settle выполняет один шаг выплаты в собственной транзакции с блокировкой строки бронирования.
// Стадия проверяется под блокировкой, поэтому повторный запуск ничего не выплачивает.
func (s *Settler) settle(ctx context.Context, id uuid.UUID) (*settled, error) {
	var out *settled
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		b, err := s.bookings.FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		step, ok := NextStep(b, s.now())
		if !ok {
			return nil
		}

		space, err := s.spaces.FindByID(ctx, b.SpaceID)
		if err != nil {
			return err
		}

		var txID *uuid.UUID
		if step.Amount > 0 {
			credit, err := s.ledger.Credit(ctx, space.OwnerID, step.Amount)
			if err != nil {
				return err
			}
			txID = &credit.ID
		}
		if err := b.RecordPayout(txID, step.Amount, step.Next); err != nil {
			return err
		}
		if err := s.bookings.Update(ctx, b); err != nil {
			return err
		}

		out = &settled{booking: b, ownerID: space.OwnerID, amount: step.Amount}
		if txID != nil {
			out.txID = *txID
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Settler) announce(p *settled) {
	s.log.WithFields(logrus.Fields{
		"booking_id":    p.booking.ID,
		"owner_id":      p.ownerID,
		"amount":        p.amount,
		"payout_status": p.booking.PayoutStatus,
	}).Info("выплата владельцу")

	goroutine.SafeGo(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if s.notifier != nil {
			msg := fmt.Sprintf("Вам зачислено %s за бронирование", valueobject.VND(p.amount))
			if err := s.notifier.Notify(ctx, entity.NewNotice(p.ownerID, msg, nil, "/wallet")); err != nil {
				s.log.WithError(err).Warn("не удалось уведомить владельца о выплате")
			}
		}
		err := s.publisher.Publish(ctx, events.KeyPayoutReleased, events.PayoutReleased{
			BookingID:     p.booking.ID,
			OwnerID:       p.ownerID,
			TransactionID: p.txID,
			Amount:        p.amount,
			PayoutStatus:  string(p.booking.PayoutStatus),
		})
		if err != nil {
			s.log.WithError(err).Warn("не удалось опубликовать событие выплаты")
		}
	})
}
