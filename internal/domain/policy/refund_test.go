package policy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Toan888/SpaceHub-BE/internal/domain/entity"
	"github.com/Toan888/SpaceHub-BE/internal/domain/valueobject"
)

var start = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

func booking(rt valueobject.RentalType, total int64) *entity.Booking {
	return &entity.Booking{
		RentalType:  rt,
		StartDate:   start,
		EndDate:     start.AddDate(0, 1, 0),
		Status:      valueobject.BookingCompleted,
		TotalAmount: total,
	}
}

func TestMonthRefund_Tiers(t *testing.T) {
	b := booking(valueobject.RentalMonth, 1_000_000)

	assert.Equal(t, int64(1_000_000), ComputeRefund(b, start.Add(-10*valueobject.Day)))
	assert.Equal(t, int64(800_000), ComputeRefund(b, start.Add(-3*valueobject.Day)))
	assert.Equal(t, int64(600_000), ComputeRefund(b, start))
	assert.Equal(t, int64(600_000), ComputeRefund(b, start.Add(5*valueobject.Day)))
	assert.Equal(t, int64(300_000), ComputeRefund(b, start.Add(10*valueobject.Day)))

	assert.True(t, IsAllowCancel(b, start.Add(14*valueobject.Day)))
	assert.False(t, IsAllowCancel(b, start.Add(14*valueobject.Day+time.Second)))
	assert.Equal(t, int64(0), ComputeRefund(b, start.Add(15*valueobject.Day)))
}

func TestHourRefund_UsesEarliestSlot(t *testing.T) {
	b := booking(valueobject.RentalHour, 150_000)
	b.SelectedSlots = []entity.Slot{
		{Date: start, StartTime: "15:00", EndTime: "16:00"},
		{Date: start, StartTime: "10:00", EndTime: "11:00"},
	}
	slotStart := start.Add(10 * time.Hour)

	assert.True(t, IsAllowCancel(b, slotStart.Add(-5*time.Hour)))
	assert.Equal(t, int64(150_000), ComputeRefund(b, slotStart.Add(-6*time.Hour)))
	assert.False(t, IsAllowCancel(b, slotStart.Add(-5*time.Hour+time.Minute)))
}

func TestDayRefund(t *testing.T) {
	b := booking(valueobject.RentalDay, 500_000)

	assert.True(t, IsAllowCancel(b, start.Add(-24*time.Hour)))
	assert.Equal(t, int64(500_000), ComputeRefund(b, start.Add(-48*time.Hour)))
	assert.False(t, IsAllowCancel(b, start.Add(-23*time.Hour)))
}

func TestWeekRefund(t *testing.T) {
	b := booking(valueobject.RentalWeek, 700_000)

	assert.Equal(t, int64(700_000), ComputeRefund(b, start.Add(-3*valueobject.Day)))
	assert.Equal(t, int64(350_000), ComputeRefund(b, start.Add(-2*valueobject.Day)))
	assert.True(t, IsAllowCancel(b, start.Add(-valueobject.Day)))
	assert.False(t, IsAllowCancel(b, start.Add(-valueobject.Day+time.Second)))
}

func TestCanceledNeverAllowed(t *testing.T) {
	for _, rt := range valueobject.AllRentalTypes() {
		b := booking(rt, 100)
		b.Status = valueobject.BookingCanceled
		assert.False(t, IsAllowCancel(b, start.Add(-60*valueobject.Day)), rt)
		assert.Equal(t, Decision{}, Evaluate(b, start.Add(-60*valueobject.Day)))
	}
	assert.False(t, IsAllowCancel(nil, start))
}

func TestRefundMonotonicInTime(t *testing.T) {
	for _, rt := range valueobject.AllRentalTypes() {
		b := booking(rt, 1_000_003)
		b.SelectedSlots = []entity.Slot{{Date: start, StartTime: "09:00", EndTime: "10:00"}}

		prev := int64(-1)
		// h - запас до начала в часах; с течением времени он убывает
		for h := 40 * 24; h >= -20*24; h -= 7 {
			got := ComputeRefund(b, start.Add(time.Duration(-h)*time.Hour))
			if prev >= 0 {
				assert.LessOrEqual(t, got, prev, "%s at lead %dh", rt, h)
			}
			prev = got
		}
	}
}

func TestEvaluate(t *testing.T) {
	b := booking(valueobject.RentalMonth, 1_000_000)
	d := Evaluate(b, start.Add(-10*valueobject.Day))
	assert.True(t, d.IsAllowCancel)
	assert.Equal(t, int64(1_000_000), d.Amount)
}
