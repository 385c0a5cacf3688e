package policy

import (
	"time"

	"github.com/Toan888/SpaceHub-BE/internal/domain/entity"
	"github.com/Toan888/SpaceHub-BE/internal/domain/valueobject"
)

// Lead - сколько времени осталось до начала аренды. Отрицательно после начала.
func Lead(b *entity.Booking, now time.Time) time.Duration {
	return b.EffectiveStart().Sub(now)
}

// IsAllowCancel сообщает, можно ли отменить бронирование в момент now.
func IsAllowCancel(b *entity.Booking, now time.Time) bool {
	if b == nil || b.IsCanceled() {
		return false
	}
	return Lead(b, now) >= b.RentalType.Policy().CancelLead
}

// ComputeRefund возвращает сумму возврата. Для неотменяемого бронирования - 0.
func ComputeRefund(b *entity.Booking, now time.Time) int64 {
	if !IsAllowCancel(b, now) {
		return 0
	}
	pct := b.RentalType.Policy().RefundPercent(Lead(b, now))
	return valueobject.VND(b.TotalAmount).Percent(pct).Int64()
}

// Decision - результат предварительной проверки отмены.
type Decision struct {
	IsAllowCancel bool  `json:"isAllowCancel"`
	Amount        int64 `json:"amount,omitempty"`
}

func Evaluate(b *entity.Booking, now time.Time) Decision {
	if !IsAllowCancel(b, now) {
		return Decision{}
	}
	return Decision{IsAllowCancel: true, Amount: ComputeRefund(b, now)}
}
