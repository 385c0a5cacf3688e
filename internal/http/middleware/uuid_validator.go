package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Toan888/SpaceHub-BE/internal/dto"
)

// UUIDValidator проверяет, что параметр маршрута является валидным UUID.
// Использование: router.POST("/bookings/:id/cancel", UUIDValidator("id"), handler.Cancel)
func UUIDValidator(paramName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, err := uuid.Parse(c.Param(paramName)); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, dto.ErrorResponse{
				Error: "параметр " + paramName + " должен быть валидным UUID",
				Code:  "VALIDATION_ERROR",
			})
			return
		}
		c.Next()
	}
}
