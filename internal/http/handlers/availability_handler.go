package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Toan888/SpaceHub-BE/internal/domain/valueobject"
	"github.com/Toan888/SpaceHub-BE/internal/dto"
	"github.com/Toan888/SpaceHub-BE/internal/http/handlers/common"
	"github.com/Toan888/SpaceHub-BE/internal/usecase/availability"
)

type AvailabilityService interface {
	ListAvailability(ctx context.Context, spaceID uuid.UUID, dates []time.Time, rentalType valueobject.RentalType) ([]availability.DateAvailability, error)
}

// AvailabilityHandler отдаёт свободное время помещения.
type AvailabilityHandler struct {
	index AvailabilityService
}

func NewAvailabilityHandler(index AvailabilityService) *AvailabilityHandler {
	return &AvailabilityHandler{index: index}
}

// List обрабатывает POST /api/spaces/:id/availability.
func (h *AvailabilityHandler) List(c *gin.Context) {
	spaceID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	var req dto.AvailabilityRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondAppError(c, err)
		return
	}
	rt, dates, err := req.Parse()
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	items, err := h.index.ListAvailability(c.Request.Context(), spaceID, dates, rt)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewAvailabilityResponse(items))
}
