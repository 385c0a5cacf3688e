package router

import (
	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"

	"github.com/Toan888/SpaceHub-BE/internal/config"
	"github.com/Toan888/SpaceHub-BE/internal/http/handlers"
	"github.com/Toan888/SpaceHub-BE/internal/http/middleware"
)

// Handlers - все HTTP обработчики приложения.
type Handlers struct {
	Availability *handlers.AvailabilityHandler
	Booking      *handlers.BookingHandler
	Wallet       *handlers.WalletHandler
	Admin        *handlers.AdminHandler
	Notification *handlers.NotificationHandler
	WS           *handlers.WSHandler
	Health       *handlers.HealthHandler
}

func SetupRouter(cfg *config.Config, h Handlers, tokens middleware.TokenParser, rateStore limiter.Store) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Logger(), middleware.Recovery())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	r.GET("/health", h.Health.Health)

	api := r.Group("/api")
	auth := middleware.AuthMiddleware(tokens)
	limit := middleware.RateLimitMiddleware(rateStore, cfg.RateLimitLimit, cfg.RateLimitPeriod)

	api.POST("/spaces/:id/availability", middleware.UUIDValidator("id"), h.Availability.List)

	bookings := api.Group("/bookings", auth)
	{
		bookings.POST("", limit, h.Booking.Create)
		bookings.GET("/my", h.Booking.ListMine)
		bookings.POST("/:id/cancel", middleware.UUIDValidator("id"), h.Booking.Cancel)
		bookings.GET("/:id/cancel/precheck", middleware.UUIDValidator("id"), h.Booking.CancelPrecheck)
	}

	wallet := api.Group("/wallet", auth)
	{
		wallet.GET("/balance", h.Wallet.GetBalance)
		wallet.GET("/transactions", h.Wallet.ListTransactions)
		wallet.POST("/deposits", limit, h.Wallet.Deposit)
		wallet.POST("/withdrawals", limit, h.Wallet.Withdraw)
	}

	api.POST("/payments/webhook", limit, middleware.VerifySignature(cfg.WebhookSecret), h.Wallet.Webhook)

	admin := api.Group("/admin", auth, middleware.AdminOnly())
	{
		admin.POST("/withdrawals/:id/approve", middleware.UUIDValidator("id"), h.Admin.ApproveWithdrawal)
		admin.POST("/withdrawals/:id/reject", middleware.UUIDValidator("id"), h.Admin.RejectWithdrawal)
		admin.GET("/wallet", h.Admin.Wallet)
		admin.POST("/wallet/withdraw", h.Admin.WalletWithdraw)
		admin.GET("/system-account", h.Admin.SystemAccount)
	}

	notifications := api.Group("/notifications", auth)
	{
		notifications.GET("", h.Notification.List)
		notifications.PUT("/read", h.Notification.MarkAllAsRead)
	}

	// токен передаётся в query, браузерный WebSocket не умеет заголовки
	api.GET("/ws", h.WS.Handle)

	return r
}
