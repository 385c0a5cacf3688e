package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/Toan888/SpaceHub-BE/internal/domain/entity"
	"github.com/Toan888/SpaceHub-BE/internal/domain/valueobject"
	"github.com/Toan888/SpaceHub-BE/internal/usecase/availability"
	"github.com/Toan888/SpaceHub-BE/internal/usecase/booking"
)

// ErrorResponse - единый формат ошибки API.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

type SlotResponse struct {
	Date      string `json:"date"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

// BookingResponse - бронирование в формате API.
type BookingResponse struct {
	ID                  uuid.UUID      `json:"id"`
	SpaceID             uuid.UUID      `json:"spaceId"`
	UserID              uuid.UUID      `json:"userId"`
	RentalType          string         `json:"rentalType"`
	StartDate           time.Time      `json:"startDate"`
	EndDate             time.Time      `json:"endDate"`
	SelectedSlots       []SlotResponse `json:"selectedSlots"`
	SelectedDates       []string       `json:"selectedDates"`
	Status              string         `json:"status"`
	TotalAmount         int64          `json:"totalAmount"`
	Notes               string         `json:"notes,omitempty"`
	CancelReason        string         `json:"cancelReason,omitempty"`
	RefundAmount        int64          `json:"refundAmount"`
	RefundTransactionID *uuid.UUID     `json:"refundTransactionId,omitempty"`
	PayoutStatus        string         `json:"payoutStatus"`
	IsAllowCancel       *bool          `json:"isAllowCancel,omitempty"`
	CreatedAt           time.Time      `json:"createdAt"`
}

func NewBookingResponse(b *entity.Booking) BookingResponse {
	resp := BookingResponse{
		ID:                  b.ID,
		SpaceID:             b.SpaceID,
		UserID:              b.UserID,
		RentalType:          string(b.RentalType),
		StartDate:           b.StartDate,
		EndDate:             b.EndDate,
		SelectedSlots:       make([]SlotResponse, 0, len(b.SelectedSlots)),
		SelectedDates:       make([]string, 0, len(b.SelectedDates)),
		Status:              string(b.Status),
		TotalAmount:         b.TotalAmount,
		Notes:               b.Notes,
		CancelReason:        b.CancelReason,
		RefundAmount:        b.RefundAmount,
		RefundTransactionID: b.RefundTransactionID,
		PayoutStatus:        string(b.PayoutStatus),
		CreatedAt:           b.CreatedAt,
	}
	for _, s := range b.SelectedSlots {
		resp.SelectedSlots = append(resp.SelectedSlots, SlotResponse{
			Date:      valueobject.DateKey(s.Date),
			StartTime: s.StartTime,
			EndTime:   s.EndTime,
		})
	}
	for _, d := range b.SelectedDates {
		resp.SelectedDates = append(resp.SelectedDates, valueobject.DateKey(d))
	}
	return resp
}

// NewBookingViews добавляет к бронированиям признак возможности отмены.
func NewBookingViews(views []booking.View) []BookingResponse {
	out := make([]BookingResponse, 0, len(views))
	for _, v := range views {
		resp := NewBookingResponse(v.Booking)
		allow := v.IsAllowCancel
		resp.IsAllowCancel = &allow
		out = append(out, resp)
	}
	return out
}

type DateAvailabilityResponse struct {
	Date        string                  `json:"date"`
	IsAvailable bool                    `json:"isAvailable"`
	Slots       []availability.SlotView `json:"slots,omitempty"`
}

type AvailabilityResponse struct {
	AvailableSlots []DateAvailabilityResponse `json:"availableSlots"`
}

func NewAvailabilityResponse(items []availability.DateAvailability) AvailabilityResponse {
	out := AvailabilityResponse{AvailableSlots: make([]DateAvailabilityResponse, 0, len(items))}
	for _, it := range items {
		out.AvailableSlots = append(out.AvailableSlots, DateAvailabilityResponse{
			Date:        valueobject.DateKey(it.Date),
			IsAvailable: it.IsAvailable,
			Slots:       it.Slots,
		})
	}
	return out
}

type BalanceResponse struct {
	Balance int64 `json:"balance"`
}

type AdminWalletResponse struct {
	Available int64 `json:"available"`
}

type NotificationsResponse struct {
	Items  []entity.Notification `json:"items"`
	Unread int                   `json:"unread"`
}
