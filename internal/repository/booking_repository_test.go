package repository

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Toan888/SpaceHub-BE/internal/domain/entity"
	"github.com/Toan888/SpaceHub-BE/internal/domain/valueobject"
	"github.com/Toan888/SpaceHub-BE/internal/pkg/apperror"
)

func hourRow(status string) bookingRow {
	start := time.Date(2026, 11, 2, 0, 0, 0, 0, time.UTC)
	return bookingRow{
		ID:            uuid.New(),
		SpaceID:       uuid.New(),
		UserID:        uuid.New(),
		RentalType:    "hour",
		StartDate:     start,
		EndDate:       start,
		SelectedSlots: []byte(`[{"date":"2026-11-02","startTime":"09:00","endTime":"10:00"}]`),
		SelectedDates: []byte(`[]`),
		Status:        status,
		TotalAmount:   100_000,
		PayoutStatus:  "pending",
	}
}

func TestBookingRow_ToEntity(t *testing.T) {
	b, err := hourRow("completed").toEntity()
	require.NoError(t, err)
	assert.Equal(t, valueobject.BookingCompleted, b.Status)
	require.Len(t, b.SelectedSlots, 1)
	assert.Equal(t, []string{"h:2026-11-02 09:00-10:00"}, b.ClaimKeys())

	_, err = hourRow("archived").toEntity()
	assert.True(t, apperror.IsValidation(err))
}

func TestEncodeSlots(t *testing.T) {
	date := time.Date(2026, 11, 2, 0, 0, 0, 0, time.UTC)
	raw, err := encodeSlots([]entity.Slot{{Date: date, StartTime: "23:00", EndTime: "00:00"}})
	require.NoError(t, err)
	assert.JSONEq(t, `[{"date":"2026-11-02","startTime":"23:00","endTime":"00:00"}]`, string(raw))
}
