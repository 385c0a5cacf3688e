package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	"github.com/Toan888/SpaceHub-BE/internal/config"
	"github.com/Toan888/SpaceHub-BE/internal/http/handlers"
	"github.com/Toan888/SpaceHub-BE/internal/service"
	"github.com/Toan888/SpaceHub-BE/internal/ws"
)

func testRouter(t *testing.T) (*gin.Engine, *service.TokenManager) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		Env:             "development",
		AllowedOrigins:  []string{"http://localhost:3000"},
		RateLimitLimit:  10,
		RateLimitPeriod: time.Minute,
		WebhookSecret:   "secret",
	}
	tokens := service.NewTokenManager("test-secret")
	ok := handlers.PingFunc(func(context.Context) error { return nil })

	// сервисы не нужны: проверяются только маршруты и middleware
	h := Handlers{
		Availability: handlers.NewAvailabilityHandler(nil),
		Booking:      handlers.NewBookingHandler(nil),
		Wallet:       handlers.NewWalletHandler(nil),
		Admin:        handlers.NewAdminHandler(nil),
		Notification: handlers.NewNotificationHandler(nil),
		WS:           handlers.NewWSHandler(ws.NewHub(), tokens, cfg.AllowedOrigins),
		Health:       handlers.NewHealthHandler(map[string]handlers.Pinger{"database": ok}, nil),
	}
	return SetupRouter(cfg, h, tokens, memory.NewStore()), tokens
}

func request(r *gin.Engine, method, path, token string) int {
	req, _ := http.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Code
}

func TestRouter_PublicAndProtectedRoutes(t *testing.T) {
	r, _ := testRouter(t)

	assert.Equal(t, http.StatusOK, request(r, http.MethodGet, "/health", ""))
	assert.Equal(t, http.StatusUnauthorized, request(r, http.MethodGet, "/api/bookings/my", ""))
	assert.Equal(t, http.StatusUnauthorized, request(r, http.MethodGet, "/api/wallet/balance", ""))
	assert.Equal(t, http.StatusUnauthorized, request(r, http.MethodGet, "/api/notifications", ""))
	assert.Equal(t, http.StatusUnauthorized, request(r, http.MethodGet, "/api/ws", ""))
	assert.Equal(t, http.StatusUnauthorized, request(r, http.MethodPost, "/api/payments/webhook", ""))
	assert.Equal(t, http.StatusBadRequest, request(r, http.MethodPost, "/api/spaces/not-a-uuid/availability", ""))
}

func TestRouter_AdminRequiresRole(t *testing.T) {
	r, tokens := testRouter(t)

	userToken, err := tokens.IssueAccess(uuid.New(), "user", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, request(r, http.MethodGet, "/api/admin/wallet", userToken))

	adminToken, err := tokens.IssueAccess(uuid.New(), "admin", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, request(r, http.MethodPost, "/api/admin/withdrawals/not-a-uuid/approve", adminToken))
}

func TestRouter_BookingIDValidated(t *testing.T) {
	r, tokens := testRouter(t)

	token, err := tokens.IssueAccess(uuid.New(), "user", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, request(r, http.MethodPost, "/api/bookings/not-a-uuid/cancel", token))
	assert.Equal(t, http.StatusBadRequest, request(r, http.MethodGet, "/api/bookings/not-a-uuid/cancel/precheck", token))
}
