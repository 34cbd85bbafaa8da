package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"travel_app_echo/internal/config"
	"travel_app_echo/internal/handlers"
	authMiddleware "travel_app_echo/internal/middleware"
	"travel_app_echo/internal/notifications"
	"travel_app_echo/internal/repository"
	"travel_app_echo/internal/services"
	"travel_app_echo/internal/tasks"
)

func main() {
	// Load environment variables
	cfg := config.Load()
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL not set")
	}

	// Initialize Database
	db, err := services.InitDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := services.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to run database migrations: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize Firebase. Without it listing writes answer 503.
	var admin echo.MiddlewareFunc
	if cfg.FirebaseCredentialsPath != "" {
		authClient, err := services.InitFirebase(ctx, cfg.FirebaseCredentialsPath)
		if err != nil {
			log.Printf("Warning: Firebase initialization failed: %v", err)
			log.Println("Listing management will not work until valid credentials are provided")
		} else {
			admin = authMiddleware.RequireAdmin(authClient)
		}
	}

	// Notifications go through Redis when configured, otherwise through an in-process pool
	var cache services.Cache
	var dispatcher notifications.Dispatcher
	if cfg.RedisURL != "" {
		redisCache, err := services.NewRedisCache(cfg.RedisURL)
		if err != nil {
			log.Fatalf("Failed to connect to redis: %v", err)
		}
		defer redisCache.Close()
		cache = redisCache
		dispatcher = notifications.NewQueueDispatcher(redisCache.Client(), cfg.NotificationQueue)
	} else {
		log.Println("Warning: REDIS_URL not set, caching disabled and notifications delivered in-process")
		deliver := services.NewDeliverer(cfg).Deliver
		retry := tasks.NewSendNotificationTask(deliver, tasks.NewStore(db))
		pool := notifications.NewChannelDispatcher(cfg.NotificationWorkers, 100, deliver, retry.OnFailure(tasks.DefaultNotificationAttempts))
		defer pool.Close()
		dispatcher = pool
	}

	gateway, err := services.NewPaymentGateway(cfg)
	if err != nil {
		log.Fatalf("Failed to configure payment gateway: %v", err)
	}
	log.Printf("Using %s payment gateway", gateway.Name())

	bookings := repository.NewBookingRepository(db)
	payments := services.NewPaymentService(bookings, repository.NewPaymentRepository(db), gateway, dispatcher, services.PaymentOptions{
		AppURL:   cfg.AppURL,
		Currency: cfg.Currency,
		Timeout:  cfg.GatewayTimeout,
	})
	catalog := services.NewCatalogService(repository.NewListingRepository(db), bookings, repository.NewReviewRepository(db), cache, dispatcher)

	e := handlers.NewServer()
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())

	handlers.Register(e, handlers.Routes{
		Payments: payments,
		Catalog:  catalog,
		Admin:    admin,
	})

	go func() {
		log.Printf("Server starting on port %s", cfg.Port)
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server stopped: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown failed: %v", err)
	}
}
