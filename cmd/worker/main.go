package main

import (
	"context"
	"log"
	"os/signal"
	"sync"
	"syscall"

	"travel_app_echo/internal/config"
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

	gateway, err := services.NewPaymentGateway(cfg)
	if err != nil {
		log.Fatalf("Failed to configure payment gateway: %v", err)
	}

	// Create context that cancels on interrupt
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store := tasks.NewStore(db)
	deliver := services.NewDeliverer(cfg).Deliver
	retry := tasks.NewSendNotificationTask(deliver, store)

	// Payment confirmations sent by a re-verification are delivered inline by the worker
	dispatcher := notifications.NewChannelDispatcher(1, 50, deliver, retry.OnFailure(tasks.DefaultNotificationAttempts))
	defer dispatcher.Close()

	payments := services.NewPaymentService(repository.NewBookingRepository(db), repository.NewPaymentRepository(db), gateway, dispatcher, services.PaymentOptions{
		AppURL:   cfg.AppURL,
		Currency: cfg.Currency,
		Timeout:  cfg.GatewayTimeout,
	})

	// Initialize Task Registry
	registry := tasks.NewRegistry()
	tasks.DefineTasks(registry, tasks.Deps{
		Payments:      payments,
		Deliver:       deliver,
		Scheduler:     store,
		ReverifyAfter: cfg.ReverifyAfter,
	})
	log.Printf("Registered tasks: %v", registry.Names())

	task, created, err := store.EnsureRecurring(ctx, "reverify_pending_payments", tasks.ReverifyRule, tasks.ReverifyPendingArgs{}, 1)
	if err != nil {
		log.Printf("Warning: could not schedule payment re-verification: %v", err)
	} else if created {
		log.Printf("Scheduled payment re-verification (task %d, %s)", task.ID, tasks.ReverifyRule)
	}

	var wg sync.WaitGroup
	if cfg.RedisURL != "" {
		redisCache, err := services.NewRedisCache(cfg.RedisURL)
		if err != nil {
			log.Fatalf("Failed to connect to redis: %v", err)
		}
		defer redisCache.Close()

		consumer := notifications.NewConsumer(redisCache.Client(), cfg.NotificationQueue, deliver, retry.OnFailure(tasks.DefaultNotificationAttempts))
		for i := 0; i < cfg.NotificationWorkers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				consumer.Run(ctx)
			}()
		}
	} else {
		log.Println("Warning: REDIS_URL not set, notification queue consumer disabled")
	}

	log.Printf("Worker started. Checking tasks every %s", cfg.WorkerTickInterval)
	tasks.NewRunner(store, registry).Run(ctx, cfg.WorkerTickInterval)

	log.Println("Shutting down worker...")
	wg.Wait()
}
