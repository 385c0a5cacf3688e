package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/Toan888/SpaceHub-BE/internal/domain/entity"
	"github.com/Toan888/SpaceHub-BE/internal/domain/valueobject"
	"github.com/Toan888/SpaceHub-BE/internal/pkg/apperror"
	"github.com/Toan888/SpaceHub-BE/internal/usecase/booking"
	"github.com/Toan888/SpaceHub-BE/internal/validation"
)

// AvailabilityRequest - запрос свободного времени помещения.
type AvailabilityRequest struct {
	Dates      []string `json:"dates" binding:"required,min=1"`
	RentalType string   `json:"rentalType" binding:"required"`
}

// Parse возвращает тип аренды и даты в часовом поясе сервиса.
func (r AvailabilityRequest) Parse() (valueobject.RentalType, []time.Time, error) {
	rt, err := valueobject.NewRentalType(r.RentalType)
	if err != nil {
		return "", nil, err
	}
	dates, err := parseDates(r.Dates)
	if err != nil {
		return "", nil, err
	}
	return rt, dates, nil
}

type SlotRequest struct {
	Date      string `json:"date" binding:"required"`
	StartTime string `json:"startTime" binding:"required"`
	EndTime   string `json:"endTime" binding:"required"`
}

// CreateBookingRequest - тело POST /api/bookings.
type CreateBookingRequest struct {
	SpaceID       string        `json:"spaceId" binding:"required"`
	RentalType    string        `json:"rentalType" binding:"required"`
	StartDate     string        `json:"startDate"`
	EndDate       string        `json:"endDate"`
	SelectedSlots []SlotRequest `json:"selectedSlots"`
	SelectedDates []string      `json:"selectedDates"`
	TotalAmount   int64         `json:"totalAmount" binding:"required"`
	Notes         string        `json:"notes"`
}

// ToInput разбирает поля запроса. Бизнес-проверки выполняет сущность бронирования.
func (r CreateBookingRequest) ToInput(userID uuid.UUID) (booking.CreateInput, error) {
	spaceID, err := uuid.Parse(r.SpaceID)
	if err != nil {
		return booking.CreateInput{}, apperror.New(apperror.ErrCodeValidation, "некорректный spaceId")
	}
	rt, err := valueobject.NewRentalType(r.RentalType)
	if err != nil {
		return booking.CreateInput{}, err
	}

	notes, err := validation.NormalizeText("комментарий", r.Notes, validation.MaxNotesLength)
	if err != nil {
		return booking.CreateInput{}, err
	}

	in := booking.CreateInput{
		UserID:      userID,
		SpaceID:     spaceID,
		RentalType:  rt,
		TotalAmount: r.TotalAmount,
		Notes:       notes,
	}
	if r.StartDate != "" {
		if in.StartDate, err = valueobject.ParseDate(r.StartDate); err != nil {
			return booking.CreateInput{}, err
		}
	}
	if r.EndDate != "" {
		if in.EndDate, err = valueobject.ParseDate(r.EndDate); err != nil {
			return booking.CreateInput{}, err
		}
	}
	for _, s := range r.SelectedSlots {
		date, err := valueobject.ParseDate(s.Date)
		if err != nil {
			return booking.CreateInput{}, err
		}
		in.Slots = append(in.Slots, entity.Slot{Date: date, StartTime: s.StartTime, EndTime: s.EndTime})
	}
	if in.Dates, err = parseDates(r.SelectedDates); err != nil {
		return booking.CreateInput{}, err
	}
	return in, nil
}

type CancelBookingRequest struct {
	CancelReason string `json:"cancelReason"`
}

type DepositRequest struct {
	Amount int64 `json:"amount" binding:"required,gt=0"`
}

type WithdrawalRequest struct {
	Amount             int64  `json:"amount" binding:"required,gt=0"`
	BeneficiaryAccount string `json:"beneficiaryAccount" binding:"required"`
	BeneficiaryBank    string `json:"beneficiaryBank" binding:"required"`
}

type RejectWithdrawalRequest struct {
	Reason string `json:"reason" binding:"required"`
}

type AdminWalletWithdrawRequest struct {
	Amount int64 `json:"amount" binding:"required,gt=0"`
}

// PaymentWebhookRequest - событие платёжного шлюза после проверки подписи.
type PaymentWebhookRequest struct {
	OrderID   string `json:"orderId" binding:"required"`
	Succeeded bool   `json:"succeeded"`
	Amount    int64  `json:"amount"`
}

func parseDates(raw []string) ([]time.Time, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	out := make([]time.Time, 0, len(raw))
	for _, d := range raw {
		t, err := valueobject.ParseDate(d)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}
