package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"github.com/Toan888/SpaceHub-BE/internal/config"
	"github.com/Toan888/SpaceHub-BE/internal/db"
	"github.com/Toan888/SpaceHub-BE/internal/domain/valueobject"
	"github.com/Toan888/SpaceHub-BE/internal/events"
	"github.com/Toan888/SpaceHub-BE/internal/goroutine"
	httpHandlers "github.com/Toan888/SpaceHub-BE/internal/http/handlers"
	"github.com/Toan888/SpaceHub-BE/internal/http/middleware"
	httpRouter "github.com/Toan888/SpaceHub-BE/internal/http/router"
	"github.com/Toan888/SpaceHub-BE/internal/logger"
	"github.com/Toan888/SpaceHub-BE/internal/repository"
	"github.com/Toan888/SpaceHub-BE/internal/repository/common"
	"github.com/Toan888/SpaceHub-BE/internal/service"
	"github.com/Toan888/SpaceHub-BE/internal/usecase/availability"
	"github.com/Toan888/SpaceHub-BE/internal/usecase/booking"
	"github.com/Toan888/SpaceHub-BE/internal/usecase/payout"
	"github.com/Toan888/SpaceHub-BE/internal/worker"
	"github.com/Toan888/SpaceHub-BE/internal/ws"
)

func main() {
	// Готовим контекст для graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("main: ошибка загрузки конфигурации: %v", err)
	}

	if cfg.Env == "development" {
		logger.Init("debug")
		logger.SetTextFormatter()
	} else {
		logger.Init("info")
	}
	mainLog := logger.WithComponent("main")

	if err := valueobject.SetLocation(cfg.Timezone); err != nil {
		log.Fatalf("main: %v", err)
	}

	// Подключение к базе и миграции.
	dbConn, err := db.NewPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("main: ошибка подключения к базе: %v", err)
	}
	defer safeClose(dbConn)

	if err := db.RunMigrations(ctx, dbConn, cfg.MigrationsPath); err != nil {
		log.Fatalf("main: ошибка миграций: %v", err)
	}

	redisClient := connectRedis(ctx, cfg)
	publisher := connectPublisher(cfg)

	// Реестр WebSocket соединений.
	hubCtx, stopHub := context.WithCancel(context.Background())
	defer stopHub()
	hub := ws.NewHub()
	goroutine.SafeGo(func() { hub.Run(hubCtx) })

	// Репозитории.
	bookingRepo := repository.NewBookingRepository(dbConn)
	ledgerRepo := repository.NewLedgerRepository(dbConn)
	userRepo := repository.NewUserRepository(dbConn)
	spaceRepo := repository.NewSpaceRepository(dbConn)
	notificationRepo := repository.NewNotificationRepository(dbConn)
	txManager := common.NewTxManager(dbConn)
	cachedSpaces := service.NewCachedSpaces(spaceRepo, 5*time.Minute)
	goroutine.SafeGo(func() { cachedSpaces.RunPurge(hubCtx, 10*time.Minute) })

	// Сервисы.
	notificationService := service.NewNotificationService(notificationRepo, hub)
	ledgerService := service.NewLedgerService(ledgerRepo, txManager, cfg.WithdrawFeePct)
	ledgerService.SetNotifier(notificationService, userRepo)
	tokenManager := service.NewTokenManager(cfg.JWTSecret)

	index := availability.NewIndex(bookingRepo)
	lifecycle := booking.NewLifecycle(booking.Deps{
		Bookings:  bookingRepo,
		Spaces:    cachedSpaces,
		Users:     userRepo,
		Ledger:    ledgerService,
		Index:     index,
		Tx:        txManager,
		Notifier:  notificationService,
		Publisher: publisher,
	})
	settler := payout.NewSettler(bookingRepo, cachedSpaces, ledgerService, txManager).
		WithNotifier(notificationService).
		WithPublisher(publisher)

	// Выплаты владельцам по расписанию.
	var scheduler *worker.PayoutScheduler
	if cfg.Payout.Enabled {
		var locker worker.Locker
		if redisClient != nil {
			locker = worker.NewRedisLocker(redisClient)
		}
		scheduler = worker.NewPayoutScheduler(settler, locker, cfg.Payout)
		scheduler.Start(ctx)
	}

	// Хэндлеры.
	optional := map[string]httpHandlers.Pinger{}
	if redisClient != nil {
		optional["redis"] = httpHandlers.PingFunc(func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		})
	}
	handlers := httpRouter.Handlers{
		Availability: httpHandlers.NewAvailabilityHandler(index),
		Booking:      httpHandlers.NewBookingHandler(lifecycle),
		Wallet:       httpHandlers.NewWalletHandler(ledgerService),
		Admin:        httpHandlers.NewAdminHandler(ledgerService),
		Notification: httpHandlers.NewNotificationHandler(notificationService),
		WS:           httpHandlers.NewWSHandler(hub, tokenManager, cfg.AllowedOrigins),
		Health:       httpHandlers.NewHealthHandler(map[string]httpHandlers.Pinger{"database": dbConn}, optional),
	}

	router := httpRouter.SetupRouter(cfg, handlers, tokenManager, middleware.NewRateStore(redisClient))

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			mainLog.WithError(err).Error("ошибка остановки сервера")
		}
	}()

	mainLog.WithField("port", cfg.HTTPPort).Info("HTTP сервер запущен")
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("main: ошибка сервера: %v", err)
	}

	// сначала дожидаемся текущих выплат, потом закрываем соединения
	if scheduler != nil {
		scheduler.Stop()
	}
	stopHub()
	if redisClient != nil {
		_ = redisClient.Close()
	}
	if closer, ok := publisher.(interface{ Close() error }); ok {
		_ = closer.Close()
	}
	mainLog.Info("сервер остановлен")
}

// connectRedis возвращает клиента Redis или nil, если Redis не настроен или недоступен.
func connectRedis(ctx context.Context, cfg *config.Config) *redis.Client {
	if cfg.RedisAddr == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.WithComponent("main").WithError(err).Warn("redis недоступен, блокировки и лимиты работают локально")
		_ = client.Close()
		return nil
	}
	return client
}

// connectPublisher возвращает издателя событий в RabbitMQ или заглушку.
func connectPublisher(cfg *config.Config) events.Publisher {
	if cfg.AMQPURL == "" {
		return events.NopPublisher{}
	}
	pub, err := events.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange)
	if err != nil {
		logger.WithComponent("main").WithError(err).Warn("rabbitmq недоступен, события не публикуются")
		return events.NopPublisher{}
	}
	return pub
}

// safeClose закрывает соединение с базой.
func safeClose(db *sqlx.DB) {
	if err := db.Close(); err != nil {
		log.Printf("main: ошибка закрытия подключения к базе: %v", err)
	}
}
