package availability

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Toan888/SpaceHub-BE/internal/domain/entity"
	"github.com/Toan888/SpaceHub-BE/internal/domain/valueobject"
	"github.com/Toan888/SpaceHub-BE/internal/pkg/apperror"
)

// BookingReader - активные (не отменённые) бронирования помещения.
type BookingReader interface {
	FindActiveBySpace(ctx context.Context, spaceID uuid.UUID) ([]*entity.Booking, error)
}

// Request описывает запрашиваемое время.
type Request struct {
	RentalType valueobject.RentalType
	Dates      []time.Time
	Slots      []entity.Slot
	Start      time.Time
	End        time.Time
}

// RequestFor строит запрос по черновику бронирования.
func RequestFor(b *entity.Booking) Request {
	return Request{
		RentalType: b.RentalType,
		Dates:      b.SelectedDates,
		Slots:      b.SelectedSlots,
		Start:      b.StartDate,
		End:        b.EndDate,
	}
}

type SlotView struct {
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

type DateAvailability struct {
	Date        time.Time
	IsAvailable bool
	Slots       []SlotView
}

// Index вычисляет конфликты и свободное время помещения.
type Index struct {
	bookings BookingReader
}

func NewIndex(bookings BookingReader) *Index {
	return &Index{bookings: bookings}
}

// FindConflicts возвращает бронирования, мешающие запросу.
func (ix *Index) FindConflicts(ctx context.Context, spaceID uuid.UUID, req Request) ([]*entity.Booking, error) {
	existing, err := ix.bookings.FindActiveBySpace(ctx, spaceID)
	if err != nil {
		return nil, apperror.Database(err, "не удалось получить бронирования помещения")
	}
	return Conflicts(existing, req), nil
}

// ListAvailability возвращает доступность по каждой дате.
func (ix *Index) ListAvailability(ctx context.Context, spaceID uuid.UUID, dates []time.Time, rentalType valueobject.RentalType) ([]DateAvailability, error) {
	if !rentalType.IsValid() {
		return nil, apperror.New(apperror.ErrCodeValidation, "некорректный тип аренды")
	}
	if len(dates) == 0 {
		return nil, apperror.New(apperror.ErrCodeValidation, "нужна хотя бы одна дата")
	}
	existing, err := ix.bookings.FindActiveBySpace(ctx, spaceID)
	if err != nil {
		return nil, apperror.Database(err, "не удалось получить бронирования помещения")
	}

	out := make([]DateAvailability, 0, len(dates))
	for _, d := range dates {
		d = valueobject.StartOfDay(d)
		if rentalType == valueobject.RentalHour {
			out = append(out, hourAvailability(existing, d))
			continue
		}
		req := Request{RentalType: rentalType, Dates: []time.Time{d}, Start: d, End: d}
		out = append(out, DateAvailability{Date: d, IsAvailable: len(Conflicts(existing, req)) == 0})
	}
	return out, nil
}

// DailySlots - 24 фиксированных часовых слота, последний заканчивается в 00:00.
func DailySlots() []SlotView {
	slots := make([]SlotView, 0, 24)
	for h := 0; h < 24; h++ {
		slots = append(slots, SlotView{
			StartTime: fmt.Sprintf("%02d:00", h),
			EndTime:   fmt.Sprintf("%02d:00", (h+1)%24),
		})
	}
	return slots
}

func hourAvailability(existing []*entity.Booking, date time.Time) DateAvailability {
	if blocksWholeDay(existing, date) {
		return DateAvailability{Date: date, IsAvailable: false, Slots: []SlotView{}}
	}
	free := make([]SlotView, 0, 24)
	for _, s := range DailySlots() {
		slot := entity.Slot{Date: date, StartTime: s.StartTime, EndTime: s.EndTime}
		if !slotTaken(existing, slot) {
			free = append(free, s)
		}
	}
	return DateAvailability{Date: date, IsAvailable: len(free) > 0, Slots: free}
}

// Conflicts - чистая функция проверки конфликтов по правилам типа аренды.
func Conflicts(existing []*entity.Booking, req Request) []*entity.Booking {
	var out []*entity.Booking
	for _, b := range existing {
		if b.IsCanceled() {
			continue
		}
		if conflicts(b, req) {
			out = append(out, b)
		}
	}
	return out
}

func conflicts(b *entity.Booking, req Request) bool {
	switch req.RentalType.Policy().Conflict {
	case valueobject.ScopeSlot:
		for _, slot := range req.Slots {
			if slotBlockedBy(b, slot) {
				return true
			}
		}
	case valueobject.ScopeDate:
		for _, d := range req.Dates {
			if b.Occupies(d) {
				return true
			}
		}
	case valueobject.ScopeInterval:
		return b.RentalType.IsPeriod() && b.Overlaps(valueobject.StartOfDay(req.Start), valueobject.StartOfDay(req.End))
	}
	return false
}

// slotBlockedBy: бронирование не на часы занимает дату целиком, почасовое - только точный слот.
// Частичное пересечение двух разных часовых слотов конфликтом не считается.
func slotBlockedBy(b *entity.Booking, slot entity.Slot) bool {
	if b.RentalType != valueobject.RentalHour {
		return b.Occupies(slot.Date)
	}
	for _, taken := range b.SelectedSlots {
		if taken.Same(slot) {
			return true
		}
	}
	return false
}

func blocksWholeDay(existing []*entity.Booking, date time.Time) bool {
	for _, b := range existing {
		if !b.IsCanceled() && b.RentalType != valueobject.RentalHour && b.Occupies(date) {
			return true
		}
	}
	return false
}

func slotTaken(existing []*entity.Booking, slot entity.Slot) bool {
	for _, b := range existing {
		if !b.IsCanceled() && slotBlockedBy(b, slot) {
			return true
		}
	}
	return false
}
