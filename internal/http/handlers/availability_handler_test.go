package handlers

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Toan888/SpaceHub-BE/internal/domain/valueobject"
	"github.com/Toan888/SpaceHub-BE/internal/usecase/availability"
)

type mockAvailability struct{ mock.Mock }

func (m *mockAvailability) ListAvailability(ctx context.Context, spaceID uuid.UUID, dates []time.Time, rt valueobject.RentalType) ([]availability.DateAvailability, error) {
	args := m.Called(ctx, spaceID, dates, rt)
	items, _ := args.Get(0).([]availability.DateAvailability)
	return items, args.Error(1)
}

func TestAvailabilityHandler_List(t *testing.T) {
	gin.SetMode(gin.TestMode)
	spaceID := uuid.New()
	day := time.Date(2026, 11, 2, 0, 0, 0, 0, time.UTC)

	svc := new(mockAvailability)
	svc.On("ListAvailability", mock.Anything, spaceID, []time.Time{day}, valueobject.RentalDay).
		Return([]availability.DateAvailability{{Date: day, IsAvailable: false}}, nil)

	r := gin.New()
	r.POST("/spaces/:id/availability", NewAvailabilityHandler(svc).List)

	w := do(r, http.MethodPost, "/spaces/"+spaceID.String()+"/availability", `{"dates":["2026-11-02"],"rentalType":"day"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"availableSlots":[{"date":"2026-11-02","isAvailable":false}]}`, w.Body.String())
}

func TestAvailabilityHandler_List_Validation(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := &AvailabilityHandler{index: nil}
	r.POST("/spaces/:id/availability", handler.List)

	spacePath := "/spaces/" + uuid.NewString() + "/availability"
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodPost, "/spaces/invalid-uuid/availability", `{"dates":["2026-11-02"],"rentalType":"day"}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodPost, spacePath, `{"dates":[],"rentalType":"day"}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodPost, spacePath, `{"dates":["02/11/2026"],"rentalType":"day"}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodPost, spacePath, `{"dates":["2026-11-02"],"rentalType":"decade"}`).Code)
}
