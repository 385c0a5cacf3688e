package valueobject

import "github.com/Toan888/SpaceHub-BE/internal/pkg/apperror"

type BookingStatus string

const (
	BookingAwaitingPayment BookingStatus = "awaiting_payment"
	BookingCompleted       BookingStatus = "completed"
	BookingCanceled        BookingStatus = "canceled"
)

func (s BookingStatus) IsValid() bool {
	switch s {
	case BookingAwaitingPayment, BookingCompleted, BookingCanceled:
		return true
	}
	return false
}

func (s BookingStatus) CanTransitionTo(newStatus BookingStatus) bool {
	transitions := map[BookingStatus][]BookingStatus{
		BookingAwaitingPayment: {BookingCompleted, BookingCanceled},
		BookingCompleted:       {BookingCanceled},
		BookingCanceled:        {},
	}

	for _, status := range transitions[s] {
		if status == newStatus {
			return true
		}
	}
	return false
}

// PayoutStatus - стадия выплаты владельцу. Меняется только вперёд.
type PayoutStatus string

const (
	PayoutPending   PayoutStatus = "pending"
	PayoutStage1    PayoutStatus = "stage_1"
	PayoutStage2    PayoutStatus = "stage_2"
	PayoutStage3    PayoutStatus = "stage_3"
	PayoutFullyPaid PayoutStatus = "fully_paid"
)

var payoutOrder = map[PayoutStatus]int{
	PayoutPending:   0,
	PayoutStage1:    1,
	PayoutStage2:    2,
	PayoutStage3:    3,
	PayoutFullyPaid: 4,
}

func (s PayoutStatus) IsValid() bool {
	_, ok := payoutOrder[s]
	return ok
}

func (s PayoutStatus) Rank() int {
	return payoutOrder[s]
}

// Reached сообщает, пройдена ли стадия other.
func (s PayoutStatus) Reached(other PayoutStatus) bool {
	return s.Rank() >= other.Rank()
}

// CanAdvanceTo разрешает переход только на следующие стадии.
func (s PayoutStatus) CanAdvanceTo(next PayoutStatus) bool {
	return next.IsValid() && next.Rank() > s.Rank()
}

func NewBookingStatus(status string) (BookingStatus, error) {
	s := BookingStatus(status)
	if !s.IsValid() {
		return "", apperror.New(apperror.ErrCodeValidation, "некорректный статус бронирования")
	}
	return s, nil
}
