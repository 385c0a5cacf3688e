package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Toan888/SpaceHub-BE/internal/domain/entity"
	"github.com/Toan888/SpaceHub-BE/internal/domain/policy"
	"github.com/Toan888/SpaceHub-BE/internal/dto"
	"github.com/Toan888/SpaceHub-BE/internal/http/handlers/common"
	"github.com/Toan888/SpaceHub-BE/internal/pkg/apperror"
	"github.com/Toan888/SpaceHub-BE/internal/usecase/booking"
	"github.com/Toan888/SpaceHub-BE/internal/validation"
)

type BookingService interface {
	Create(ctx context.Context, in booking.CreateInput) (*entity.Booking, error)
	Cancel(ctx context.Context, userID, bookingID uuid.UUID, reason string) (*entity.Booking, error)
	CancelPrecheck(ctx context.Context, userID, bookingID uuid.UUID) (policy.Decision, error)
	ListUserBookings(ctx context.Context, userID uuid.UUID) ([]booking.View, error)
}

// BookingHandler обслуживает создание, отмену и список бронирований.
type BookingHandler struct {
	bookings BookingService
}

func NewBookingHandler(bookings BookingService) *BookingHandler {
	return &BookingHandler{bookings: bookings}
}

// Create обрабатывает POST /api/bookings.
func (h *BookingHandler) Create(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c)
		return
	}

	var req dto.CreateBookingRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondAppError(c, err)
		return
	}
	in, err := req.ToInput(userID)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	b, err := h.bookings.Create(c.Request.Context(), in)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewBookingResponse(b))
}

// Cancel обрабатывает POST /api/bookings/:id/cancel.
func (h *BookingHandler) Cancel(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c)
		return
	}
	bookingID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	var req dto.CancelBookingRequest
	// тело необязательно
	if c.Request.ContentLength > 0 {
		if err := common.BindAndValidate(c, &req); err != nil {
			common.RespondAppError(c, err)
			return
		}
	}

	reason, err := validation.NormalizeText("причина отмены", req.CancelReason, validation.MaxCancelReasonLength)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	b, err := h.bookings.Cancel(c.Request.Context(), userID, bookingID, reason)
	if errors.Is(err, apperror.ErrCancelNotAllowed) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":         apperror.ErrCancelNotAllowed.Message,
			"code":          apperror.ErrCodeNotAllowed,
			"isAllowCancel": false,
		})
		return
	}
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	common.RespondSuccess(c, http.StatusOK, "бронирование отменено", dto.NewBookingResponse(b))
}

// CancelPrecheck обрабатывает GET /api/bookings/:id/cancel/precheck.
func (h *BookingHandler) CancelPrecheck(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c)
		return
	}
	bookingID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	decision, err := h.bookings.CancelPrecheck(c.Request.Context(), userID, bookingID)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, decision)
}

// ListMine обрабатывает GET /api/bookings/my.
func (h *BookingHandler) ListMine(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c)
		return
	}

	views, err := h.bookings.ListUserBookings(c.Request.Context(), userID)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewBookingViews(views))
}
