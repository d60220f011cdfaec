package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"roombooking/internal/config"
	"roombooking/internal/database"
	"roombooking/internal/middleware"
	"roombooking/internal/modules/booking"
	"roombooking/internal/notification"
	"roombooking/internal/pkg/logger"
	"roombooking/internal/pkg/mq"
	"roombooking/internal/repository"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	zl, err := logger.New(cfg.AppEnv, cfg.LogLevel)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = zl.Sync() }()

	db, err := database.Connect(cfg.DatabaseURL, zl)
	if err != nil {
		zl.Fatal("connect database", zap.Error(err))
	}

	bookingRepo := repository.NewBookingRepository(db)
	if err := bookingRepo.Migrate(context.Background()); err != nil {
		zl.Fatal("migrate database", zap.Error(err))
	}

	var notifs booking.NotificationSender = notification.NewLogNotifier(zl)
	if cfg.RabbitURL != "" {
		pub, err := mq.NewPublisher(cfg.RabbitURL, cfg.BookingExchange)
		if err != nil {
			zl.Fatal("connect broker", zap.Error(err))
		}
		defer pub.Close()
		notifs = notification.NewBrokerNotifier(pub)
	}

	bookingService := booking.NewService(
		bookingRepo,
		notifs,
		booking.ClockFunc(time.Now),
		booking.Options{
			DailyLimit: cfg.DailyLimit,
			Horizon:    cfg.Horizon,
			LockWait:   cfg.LockWait,
		},
		zl,
	)
	bookingHandler := booking.NewHandler(bookingService)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.ErrorLogger(zl), middleware.CORS(cfg.CORSAllowedOrigins))

	bookingHandler.RegisterRoutes(r.Group("/"))

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		zl.Info("meeting room booking API listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("http server", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	zl.Info("shutting down", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		zl.Error("graceful shutdown", zap.Error(err))
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
