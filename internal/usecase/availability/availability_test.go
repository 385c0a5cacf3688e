package availability_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Toan888/SpaceHub-BE/internal/domain/entity"
	"github.com/Toan888/SpaceHub-BE/internal/domain/valueobject"
	"github.com/Toan888/SpaceHub-BE/internal/pkg/apperror"
	"github.com/Toan888/SpaceHub-BE/internal/repository/memory"
	"github.com/Toan888/SpaceHub-BE/internal/usecase/availability"
)

var day = time.Date(2026, 11, 2, 0, 0, 0, 0, time.UTC)

func booking(t *testing.T, spaceID uuid.UUID, draft entity.BookingDraft) *entity.Booking {
	t.Helper()
	draft.SpaceID = spaceID
	draft.UserID = uuid.New()
	if draft.TotalAmount == 0 {
		draft.TotalAmount = 100_000
	}
	b, err := entity.NewBooking(draft)
	require.NoError(t, err)
	require.NoError(t, b.Confirm(uuid.New()))
	return b
}

func hourSlot(date time.Time, from, to string) entity.Slot {
	return entity.Slot{Date: date, StartTime: from, EndTime: to}
}

func TestListAvailability_EmptySpaceHasAllSlots(t *testing.T) {
	store := memory.NewStore()
	ix := availability.NewIndex(memory.BookingRepo{Store: store})

	res, err := ix.ListAvailability(context.Background(), uuid.New(), []time.Time{day}, valueobject.RentalHour)
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.True(t, res[0].IsAvailable)
	assert.Len(t, res[0].Slots, 24)
	assert.Equal(t, availability.SlotView{StartTime: "23:00", EndTime: "00:00"}, res[0].Slots[23])
}

func TestListAvailability_BookedSlotIsHidden(t *testing.T) {
	store := memory.NewStore()
	space := uuid.New()
	store.PutBooking(booking(t, space, entity.BookingDraft{
		RentalType: valueobject.RentalHour,
		Slots:      []entity.Slot{hourSlot(day, "10:00", "11:00")},
	}))
	ix := availability.NewIndex(memory.BookingRepo{Store: store})

	res, err := ix.ListAvailability(context.Background(), space, []time.Time{day}, valueobject.RentalHour)
	require.NoError(t, err)
	require.Len(t, res[0].Slots, 23)
	for _, s := range res[0].Slots {
		assert.NotEqual(t, "10:00", s.StartTime)
	}

	// соседний день не затронут
	res, err = ix.ListAvailability(context.Background(), space, []time.Time{day.AddDate(0, 0, 1)}, valueobject.RentalHour)
	require.NoError(t, err)
	assert.Len(t, res[0].Slots, 24)
}

func TestListAvailability_DayBookingBlocksWholeDate(t *testing.T) {
	store := memory.NewStore()
	space := uuid.New()
	store.PutBooking(booking(t, space, entity.BookingDraft{
		RentalType: valueobject.RentalDay,
		Dates:      []time.Time{day},
	}))
	ix := availability.NewIndex(memory.BookingRepo{Store: store})

	res, err := ix.ListAvailability(context.Background(), space, []time.Time{day}, valueobject.RentalHour)
	require.NoError(t, err)
	assert.False(t, res[0].IsAvailable)
	assert.NotNil(t, res[0].Slots)
	assert.Empty(t, res[0].Slots)

	res, err = ix.ListAvailability(context.Background(), space, []time.Time{day, day.AddDate(0, 0, 1)}, valueobject.RentalDay)
	require.NoError(t, err)
	assert.False(t, res[0].IsAvailable)
	assert.True(t, res[1].IsAvailable)
}

func TestListAvailability_Validation(t *testing.T) {
	ix := availability.NewIndex(memory.BookingRepo{Store: memory.NewStore()})

	_, err := ix.ListAvailability(context.Background(), uuid.New(), []time.Time{day}, "year")
	assert.True(t, apperror.IsValidation(err))
	_, err = ix.ListAvailability(context.Background(), uuid.New(), nil, valueobject.RentalDay)
	assert.True(t, apperror.IsValidation(err))
}

func TestListAvailability_ReadFailure(t *testing.T) {
	ix := availability.NewIndex(failingReader{})

	_, err := ix.ListAvailability(context.Background(), uuid.New(), []time.Time{day}, valueobject.RentalDay)
	assert.Equal(t, apperror.ErrCodeDatabaseError, apperror.CodeOf(err))
}

type failingReader struct{}

func (failingReader) FindActiveBySpace(ctx context.Context, spaceID uuid.UUID) ([]*entity.Booking, error) {
	return nil, errors.New("connection refused")
}

func TestConflicts_Rules(t *testing.T) {
	space := uuid.New()
	hourBooking := booking(t, space, entity.BookingDraft{
		RentalType: valueobject.RentalHour,
		Slots:      []entity.Slot{hourSlot(day, "10:00", "11:00")},
	})
	dayBooking := booking(t, space, entity.BookingDraft{
		RentalType: valueobject.RentalDay,
		Dates:      []time.Time{day.AddDate(0, 0, 3)},
	})
	weekBooking := booking(t, space, entity.BookingDraft{
		RentalType: valueobject.RentalWeek,
		StartDate:  day.AddDate(0, 0, 10),
		EndDate:    day.AddDate(0, 0, 16),
	})
	existing := []*entity.Booking{hourBooking, dayBooking, weekBooking}

	tests := []struct {
		name string
		req  availability.Request
		want []*entity.Booking
	}{
		{
			name: "тот же часовой слот",
			req:  availability.Request{RentalType: valueobject.RentalHour, Slots: []entity.Slot{hourSlot(day, "10:00", "11:00")}},
			want: []*entity.Booking{hourBooking},
		},
		{
			name: "частично пересекающийся слот не конфликтует",
			req:  availability.Request{RentalType: valueobject.RentalHour, Slots: []entity.Slot{hourSlot(day, "10:30", "11:30")}},
		},
		{
			name: "слот в день посуточной аренды",
			req:  availability.Request{RentalType: valueobject.RentalHour, Slots: []entity.Slot{hourSlot(day.AddDate(0, 0, 3), "08:00", "09:00")}},
			want: []*entity.Booking{dayBooking},
		},
		{
			name: "слот внутри недельной аренды",
			req:  availability.Request{RentalType: valueobject.RentalHour, Slots: []entity.Slot{hourSlot(day.AddDate(0, 0, 12), "08:00", "09:00")}},
			want: []*entity.Booking{weekBooking},
		},
		{
			name: "дата с почасовой бронью",
			req:  availability.Request{RentalType: valueobject.RentalDay, Dates: []time.Time{day}},
			want: []*entity.Booking{hourBooking},
		},
		{
			name: "свободная дата",
			req:  availability.Request{RentalType: valueobject.RentalDay, Dates: []time.Time{day.AddDate(0, 0, 1)}},
		},
		{
			name: "месяц пересекает неделю",
			req:  availability.Request{RentalType: valueobject.RentalMonth, Start: day.AddDate(0, 0, 16), End: day.AddDate(0, 0, 45)},
			want: []*entity.Booking{weekBooking},
		},
		{
			name: "неделя не видит почасовые и посуточные брони",
			req:  availability.Request{RentalType: valueobject.RentalWeek, Start: day, End: day.AddDate(0, 0, 6)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, availability.Conflicts(existing, tt.req))
		})
	}
}

func TestConflicts_IgnoresCanceled(t *testing.T) {
	space := uuid.New()
	b := booking(t, space, entity.BookingDraft{RentalType: valueobject.RentalDay, Dates: []time.Time{day}})
	require.NoError(t, b.Cancel(time.Now(), uuid.New(), 0, ""))

	got := availability.Conflicts([]*entity.Booking{b}, availability.Request{RentalType: valueobject.RentalDay, Dates: []time.Time{day}})
	assert.Empty(t, got)
}

func TestListAvailability_FreeSlotsHaveNoConflicts(t *testing.T) {
	store := memory.NewStore()
	space := uuid.New()
	store.PutBooking(booking(t, space, entity.BookingDraft{
		RentalType: valueobject.RentalHour,
		Slots: []entity.Slot{
			hourSlot(day, "00:00", "01:00"),
			hourSlot(day, "12:00", "13:00"),
			hourSlot(day, "23:00", "00:00"),
		},
	}))
	repo := memory.BookingRepo{Store: store}
	ix := availability.NewIndex(repo)
	ctx := context.Background()

	res, err := ix.ListAvailability(ctx, space, []time.Time{day}, valueobject.RentalHour)
	require.NoError(t, err)
	assert.Len(t, res[0].Slots, 21)

	for _, s := range res[0].Slots {
		conflicts, err := ix.FindConflicts(ctx, space, availability.Request{
			RentalType: valueobject.RentalHour,
			Slots:      []entity.Slot{hourSlot(day, s.StartTime, s.EndTime)},
		})
		require.NoError(t, err)
		assert.Empty(t, conflicts, s.StartTime)
	}
}
