package payout

import (
	"time"

	"github.com/Toan888/SpaceHub-BE/internal/domain/entity"
	"github.com/Toan888/SpaceHub-BE/internal/domain/policy"
	"github.com/Toan888/SpaceHub-BE/internal/domain/valueobject"
)

// Step - следующая выплата по бронированию. Amount == 0 продвигает стадию без перевода.
type Step struct {
	Next   valueobject.PayoutStatus
	Amount int64
}

// NextStep вычисляет, что причитается владельцу в момент now. false - выплачивать пока нечего.
func NextStep(b *entity.Booking, now time.Time) (Step, bool) {
	if b.Status == valueobject.BookingAwaitingPayment || b.PayoutStatus == valueobject.PayoutFullyPaid {
		return Step{}, false
	}
	rules := b.RentalType.Policy()
	owed := max(b.Owed(), 0)

	if rules.Payout == valueobject.PayoutSingle {
		// пока бронирование можно отменить, деньги остаются в эскроу под возврат
		if policy.IsAllowCancel(b, now) {
			return Step{}, false
		}
		return Step{Next: valueobject.PayoutFullyPaid, Amount: owed}, true
	}

	if b.HasRefund() {
		return Step{Next: valueobject.PayoutFullyPaid, Amount: owed}, true
	}

	elapsed := now.Sub(b.StartDate)
	for _, m := range rules.Milestones {
		if b.PayoutStatus.Reached(m.Stage) {
			continue
		}
		if elapsed < time.Duration(m.AfterDays)*valueobject.Day {
			return Step{}, false
		}
		amount := owed
		if m.Percent > 0 {
			amount = valueobject.VND(b.TotalAmount).Percent(m.Percent).Min(valueobject.VND(owed)).Int64()
		}
		return Step{Next: m.Stage, Amount: amount}, true
	}
	return Step{}, false
}
