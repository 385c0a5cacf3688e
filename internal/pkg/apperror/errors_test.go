package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodeToHTTPStatus(t *testing.T) {
	cases := map[ErrorCode]int{
		ErrCodeNotFound:          http.StatusNotFound,
		ErrCodeValidation:        http.StatusBadRequest,
		ErrCodeConflict:          http.StatusConflict,
		ErrCodeInsufficientFunds: http.StatusUnprocessableEntity,
		ErrCodeNotAllowed:        http.StatusUnprocessableEntity,
		ErrCodeDatabaseError:     http.StatusInternalServerError,
	}
	for code, status := range cases {
		assert.Equal(t, status, New(code, "x").HTTPStatus, code)
	}
}

func TestPredicatesSeeThroughWrapping(t *testing.T) {
	err := fmt.Errorf("booking: %w", ErrInsufficientFunds)

	assert.True(t, IsInsufficientFunds(err))
	assert.False(t, IsConflict(err))
	assert.True(t, errors.Is(err, ErrInsufficientFunds))
	assert.Equal(t, ErrCodeInsufficientFunds, CodeOf(err))
}

func TestDatabaseKeepsTypedErrors(t *testing.T) {
	assert.Nil(t, Database(nil, "x"))
	assert.Same(t, ErrSlotConflict, Database(ErrSlotConflict, "x"))

	wrapped := Database(errors.New("connection reset"), "не удалось сохранить")
	assert.Equal(t, ErrCodeDatabaseError, CodeOf(wrapped))
	assert.Equal(t, ErrCodeInternal, CodeOf(errors.New("plain")))
}
