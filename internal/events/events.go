package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	KeyBookingCreated  = "booking.created"
	KeyBookingCanceled = "booking.canceled"
	KeyPayoutReleased  = "payout.released"
)

type BookingCreated struct {
	BookingID   uuid.UUID `json:"bookingId"`
	SpaceID     uuid.UUID `json:"spaceId"`
	UserID      uuid.UUID `json:"userId"`
	RentalType  string    `json:"rentalType"`
	TotalAmount int64     `json:"totalAmount"`
	StartDate   time.Time `json:"startDate"`
	EndDate     time.Time `json:"endDate"`
}

type BookingCanceled struct {
	BookingID    uuid.UUID `json:"bookingId"`
	SpaceID      uuid.UUID `json:"spaceId"`
	UserID       uuid.UUID `json:"userId"`
	RefundAmount int64     `json:"refundAmount"`
	CanceledAt   time.Time `json:"canceledAt"`
}

type PayoutReleased struct {
	BookingID     uuid.UUID `json:"bookingId"`
	OwnerID       uuid.UUID `json:"ownerId"`
	TransactionID uuid.UUID `json:"transactionId"`
	Amount        int64     `json:"amount"`
	PayoutStatus  string    `json:"payoutStatus"`
}
