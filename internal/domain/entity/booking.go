package entity

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/Toan888/SpaceHub-BE/internal/domain/valueobject"
	"github.com/Toan888/SpaceHub-BE/internal/pkg/apperror"
)

// Slot - часовой интервал почасовой аренды. Время в формате "HH:MM".
type Slot struct {
	Date      time.Time `json:"date"`
	StartTime string    `json:"startTime"`
	EndTime   string    `json:"endTime"`
}

// Key однозначно идентифицирует слот в пределах помещения. "9:00" и "09:00" дают один ключ.
func (s Slot) Key() string {
	if c, err := s.Canonical(); err == nil {
		s = c
	}
	return valueobject.DateKey(s.Date) + " " + s.StartTime + "-" + s.EndTime
}

// Bounds возвращает границы слота смещениями от начала суток. Конец "00:00" - полночь следующих суток.
func (s Slot) Bounds() (time.Duration, time.Duration, error) {
	start, err := valueobject.ParseClock(s.StartTime)
	if err != nil {
		return 0, 0, err
	}
	end, err := valueobject.ParseClock(s.EndTime)
	if err != nil {
		return 0, 0, err
	}
	if end == 0 {
		end = 24 * time.Hour
	}
	if end <= start {
		return 0, 0, apperror.New(apperror.ErrCodeValidation, "время окончания слота должно быть позже начала")
	}
	return start, end, nil
}

// Canonical приводит дату к началу суток, а время к виду "HH:MM".
func (s Slot) Canonical() (Slot, error) {
	start, end, err := s.Bounds()
	if err != nil {
		return Slot{}, err
	}
	return Slot{
		Date:      valueobject.StartOfDay(s.Date),
		StartTime: valueobject.FormatClock(start),
		EndTime:   valueobject.FormatClock(end),
	}, nil
}

// Same - точное совпадение даты и времени.
func (s Slot) Same(other Slot) bool {
	return s.Key() == other.Key()
}

// Start возвращает момент начала слота.
func (s Slot) Start() (time.Time, error) {
	off, err := valueobject.ParseClock(s.StartTime)
	if err != nil {
		return time.Time{}, err
	}
	return valueobject.StartOfDay(s.Date).Add(off), nil
}

type Booking struct {
	ID                   uuid.UUID
	SpaceID              uuid.UUID
	UserID               uuid.UUID
	RentalType           valueobject.RentalType
	StartDate            time.Time
	EndDate              time.Time
	SelectedSlots        []Slot
	SelectedDates        []time.Time
	Status               valueobject.BookingStatus
	TotalAmount          int64
	Notes                string
	CancelReason         string
	DebitTransactionID   uuid.UUID
	RefundTransactionID  *uuid.UUID
	RefundAmount         int64
	PayoutTransactionIDs []uuid.UUID
	PaidOutAmount        int64
	PayoutStatus         valueobject.PayoutStatus
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// BookingDraft - входные данные нового бронирования.
type BookingDraft struct {
	UserID      uuid.UUID
	SpaceID     uuid.UUID
	RentalType  valueobject.RentalType
	StartDate   time.Time
	EndDate     time.Time
	Slots       []Slot
	Dates       []time.Time
	TotalAmount int64
	Notes       string
}

// NewBooking проверяет черновик и нормализует даты. Статус - AwaitingPayment до списания средств.
func NewBooking(d BookingDraft) (*Booking, error) {
	if d.UserID == uuid.Nil || d.SpaceID == uuid.Nil {
		return nil, apperror.New(apperror.ErrCodeValidation, "пользователь и помещение обязательны")
	}
	if !d.RentalType.IsValid() {
		return nil, apperror.New(apperror.ErrCodeValidation, "некорректный тип аренды")
	}
	if _, err := valueobject.NewAmount(d.TotalAmount); err != nil {
		return nil, err
	}

	b := &Booking{
		ID:           uuid.New(),
		SpaceID:      d.SpaceID,
		UserID:       d.UserID,
		RentalType:   d.RentalType,
		Status:       valueobject.BookingAwaitingPayment,
		TotalAmount:  d.TotalAmount,
		Notes:        d.Notes,
		PayoutStatus: valueobject.PayoutPending,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	switch d.RentalType {
	case valueobject.RentalHour:
		if len(d.Slots) == 0 {
			return nil, apperror.New(apperror.ErrCodeValidation, "для почасовой аренды нужен хотя бы один слот")
		}
		slots, err := normalizeSlots(d.Slots)
		if err != nil {
			return nil, err
		}
		b.SelectedSlots = slots
	case valueobject.RentalDay:
		if len(d.Dates) == 0 {
			return nil, apperror.New(apperror.ErrCodeValidation, "для посуточной аренды нужна хотя бы одна дата")
		}
		b.SelectedDates = normalizeDates(d.Dates)
	default:
		b.SelectedDates = normalizeDates(d.Dates)
		if d.StartDate.IsZero() && len(b.SelectedDates) > 0 {
			d.StartDate = b.SelectedDates[0]
		}
		if d.EndDate.IsZero() && len(b.SelectedDates) > 0 {
			d.EndDate = b.SelectedDates[len(b.SelectedDates)-1]
		}
		if d.StartDate.IsZero() || d.EndDate.IsZero() {
			return nil, apperror.New(apperror.ErrCodeValidation, "для аренды на период нужны даты начала и окончания")
		}
		if d.EndDate.Before(d.StartDate) {
			return nil, apperror.New(apperror.ErrCodeValidation, "дата окончания раньше даты начала")
		}
		b.StartDate = valueobject.StartOfDay(d.StartDate)
		b.EndDate = valueobject.StartOfDay(d.EndDate)
		return b, nil
	}

	b.StartDate, b.EndDate = d.StartDate, d.EndDate
	first, last := b.dateSpan()
	if b.StartDate.IsZero() {
		b.StartDate = first
	}
	if b.EndDate.IsZero() {
		b.EndDate = last
	}
	return b, nil
}

// normalizeSlots приводит слоты к каноническому виду и убирает повторы, чтобы ключи занятости были уникальны.
func normalizeSlots(slots []Slot) ([]Slot, error) {
	seen := make(map[string]struct{}, len(slots))
	out := make([]Slot, 0, len(slots))
	for _, s := range slots {
		c, err := s.Canonical()
		if err != nil {
			return nil, err
		}
		if _, ok := seen[c.Key()]; ok {
			continue
		}
		seen[c.Key()] = struct{}{}
		out = append(out, c)
	}
	return out, nil
}

func normalizeDates(dates []time.Time) []time.Time {
	seen := make(map[string]struct{}, len(dates))
	out := make([]time.Time, 0, len(dates))
	for _, d := range dates {
		d = valueobject.StartOfDay(d)
		if _, ok := seen[valueobject.DateKey(d)]; ok {
			continue
		}
		seen[valueobject.DateKey(d)] = struct{}{}
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

// dateSpan возвращает первую и последнюю занятую дату.
func (b *Booking) dateSpan() (time.Time, time.Time) {
	var dates []time.Time
	dates = append(dates, b.SelectedDates...)
	for _, s := range b.SelectedSlots {
		dates = append(dates, s.Date)
	}
	if len(dates) == 0 {
		return time.Time{}, time.Time{}
	}
	first, last := dates[0], dates[0]
	for _, d := range dates[1:] {
		if d.Before(first) {
			first = d
		}
		if d.After(last) {
			last = d
		}
	}
	return valueobject.StartOfDay(first), valueobject.StartOfDay(last)
}

// EffectiveStart - момент начала аренды. Для почасовой - дата начала плюс самый ранний слот.
func (b *Booking) EffectiveStart() time.Time {
	if b.RentalType != valueobject.RentalHour || len(b.SelectedSlots) == 0 {
		return b.StartDate
	}
	var earliest time.Duration = -1
	for _, s := range b.SelectedSlots {
		off, err := valueobject.ParseClock(s.StartTime)
		if err != nil {
			continue
		}
		if earliest < 0 || off < earliest {
			earliest = off
		}
	}
	if earliest < 0 {
		earliest = 0
	}
	return valueobject.StartOfDay(b.StartDate).Add(earliest)
}

// OccupiedDates - даты, которые бронирование занимает целиком или частично.
// Бронирование на период без выбранных дат занимает весь отрезок [start, end].
func (b *Booking) OccupiedDates() map[string]struct{} {
	out := make(map[string]struct{})
	for _, d := range b.SelectedDates {
		out[valueobject.DateKey(d)] = struct{}{}
	}
	for _, s := range b.SelectedSlots {
		out[valueobject.DateKey(s.Date)] = struct{}{}
	}
	if b.RentalType.IsPeriod() && len(b.SelectedDates) == 0 {
		for _, d := range valueobject.DatesBetween(b.StartDate, b.EndDate) {
			out[valueobject.DateKey(d)] = struct{}{}
		}
	}
	return out
}

// Occupies сообщает, занята ли дата бронированием.
func (b *Booking) Occupies(date time.Time) bool {
	_, ok := b.OccupiedDates()[valueobject.DateKey(date)]
	return ok
}

// Overlaps - пересечение отрезков [start, end] включительно.
func (b *Booking) Overlaps(start, end time.Time) bool {
	return !b.StartDate.After(end) && !start.After(b.EndDate)
}

// ClaimKeys - ключи уникального индекса занятости. Пространства имён совпадают с правилами конфликтов,
// поэтому индекс никогда не отвергает то, что пропустила проверка доступности.
func (b *Booking) ClaimKeys() []string {
	var keys []string
	switch b.RentalType.Policy().Conflict {
	case valueobject.ScopeSlot:
		for _, s := range b.SelectedSlots {
			keys = append(keys, "h:"+s.Key())
		}
	case valueobject.ScopeDate:
		for _, d := range b.SelectedDates {
			keys = append(keys, "d:"+valueobject.DateKey(d))
		}
	case valueobject.ScopeInterval:
		for _, d := range valueobject.DatesBetween(b.StartDate, b.EndDate) {
			keys = append(keys, "p:"+valueobject.DateKey(d))
		}
	}
	return keys
}

func (b *Booking) IsCanceled() bool {
	return b.Status == valueobject.BookingCanceled
}

func (b *Booking) HasRefund() bool {
	return b.RefundTransactionID != nil
}

func (b *Booking) IsOwnedBy(userID uuid.UUID) bool {
	return b.UserID == userID
}

// Confirm фиксирует списание средств.
func (b *Booking) Confirm(debitTxID uuid.UUID) error {
	if !b.Status.CanTransitionTo(valueobject.BookingCompleted) {
		return apperror.New(apperror.ErrCodeBadRequest, "невозможно подтвердить бронирование в текущем статусе")
	}
	b.Status = valueobject.BookingCompleted
	b.DebitTransactionID = debitTxID
	b.UpdatedAt = time.Now()
	return nil
}

// Cancel переводит бронирование в Canceled и запоминает возврат.
func (b *Booking) Cancel(now time.Time, refundTxID uuid.UUID, refundAmount int64, reason string) error {
	if !b.Status.CanTransitionTo(valueobject.BookingCanceled) {
		return apperror.ErrCancelNotAllowed
	}
	b.Status = valueobject.BookingCanceled
	b.EndDate = now
	b.RefundTransactionID = &refundTxID
	b.RefundAmount = refundAmount
	b.CancelReason = reason
	b.UpdatedAt = now
	return nil
}

// Owed - сумма, которую ещё предстоит выплатить владельцу.
func (b *Booking) Owed() int64 {
	return b.TotalAmount - b.RefundAmount - b.PaidOutAmount
}

// RecordPayout учитывает выплату и продвигает стадию.
func (b *Booking) RecordPayout(txID *uuid.UUID, amount int64, next valueobject.PayoutStatus) error {
	if !b.PayoutStatus.CanAdvanceTo(next) {
		return apperror.New(apperror.ErrCodeConflict, "стадия выплаты уже пройдена")
	}
	if amount > b.Owed() {
		return apperror.New(apperror.ErrCodeValidation, "выплата превышает остаток по бронированию")
	}
	if txID != nil {
		b.PayoutTransactionIDs = append(b.PayoutTransactionIDs, *txID)
		b.PaidOutAmount += amount
	}
	b.PayoutStatus = next
	b.UpdatedAt = time.Now()
	return nil
}
