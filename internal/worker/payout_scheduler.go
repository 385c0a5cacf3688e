package worker

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Toan888/SpaceHub-BE/internal/config"
	"github.com/Toan888/SpaceHub-BE/internal/domain/valueobject"
	"github.com/Toan888/SpaceHub-BE/internal/goroutine"
	"github.com/Toan888/SpaceHub-BE/internal/logger"
	"github.com/Toan888/SpaceHub-BE/internal/usecase/payout"
)

// Runner выполняет один проход выплат по типу аренды.
type Runner interface {
	RunOnce(ctx context.Context, rentalType valueobject.RentalType) (payout.Result, error)
}

// PayoutScheduler запускает независимый таймер для каждого типа аренды.
type PayoutScheduler struct {
	runner    Runner
	locker    Locker
	intervals map[valueobject.RentalType]time.Duration
	lockTTL   time.Duration
	log       *logrus.Entry

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewPayoutScheduler(runner Runner, locker Locker, cfg config.PayoutConfig) *PayoutScheduler {
	if locker == nil {
		locker = NewLocalLocker()
	}
	return &PayoutScheduler{
		runner: runner,
		locker: locker,
		intervals: map[valueobject.RentalType]time.Duration{
			valueobject.RentalHour:  cfg.HourInterval,
			valueobject.RentalDay:   cfg.DayInterval,
			valueobject.RentalWeek:  cfg.WeekInterval,
			valueobject.RentalMonth: cfg.MonthInterval,
		},
		lockTTL: cfg.LockTTL,
		log:     logger.WithComponent("payout-scheduler"),
	}
}

// Start запускает таймеры. Остановка - через Stop или отмену ctx.
func (s *PayoutScheduler) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)
	for _, rt := range valueobject.AllRentalTypes() {
		rt := rt
		interval := s.intervals[rt]
		if interval <= 0 {
			s.log.WithField("rental_type", rt).Warn("интервал выплат не задан, таймер не запущен")
			continue
		}
		s.wg.Add(1)
		goroutine.SafeGo(func() {
			defer s.wg.Done()
			s.loop(ctx, rt, interval)
		})
	}
	s.log.Info("планировщик выплат запущен")
}

// Stop останавливает таймеры и ждёт завершения текущих проходов.
func (s *PayoutScheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
	s.log.Info("планировщик выплат остановлен")
}

func (s *PayoutScheduler) loop(ctx context.Context, rt valueobject.RentalType, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Tick(ctx, rt)
		}
	}
}

// Tick выполняет один проход под распределённой блокировкой.
// Без блокировки проход всё равно безопасен: стадия выплаты проверяется под блокировкой строки.
func (s *PayoutScheduler) Tick(ctx context.Context, rt valueobject.RentalType) {
	entry := s.log.WithField("rental_type", rt)

	release, ok, err := s.locker.Acquire(ctx, "payout:"+string(rt), s.lockTTL)
	if err != nil {
		entry.WithError(err).Warn("блокировка недоступна, выполняем проход без неё")
		ok = true
	}
	if !ok {
		entry.Debug("проход уже выполняется другой репликой")
		return
	}
	defer release()

	goroutine.Run("payout tick "+string(rt), func() {
		if _, err := s.runner.RunOnce(ctx, rt); err != nil {
			entry.WithError(err).Error("проход выплат завершился ошибкой")
		}
	})
}
