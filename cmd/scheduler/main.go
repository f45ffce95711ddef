package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"kronus_crm_backend/internal/config"
	"kronus_crm_backend/internal/email"
	"kronus_crm_backend/internal/events"
	leadrepo "kronus_crm_backend/internal/leads/repository"
	"kronus_crm_backend/internal/notification"
	"kronus_crm_backend/internal/scheduler"
	"kronus_crm_backend/internal/users"
	usersrepo "kronus_crm_backend/internal/users/repository"
	"kronus_crm_backend/platform/db"
	"kronus_crm_backend/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting scheduler", "env", cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()

	// Fail fast if Redis is unreachable; asynq would otherwise retry quietly.
	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
	if err := withRetry(ctx, log, "redis connection", 5, 2*time.Second, func() error {
		return redisClient.Ping(ctx).Err()
	}); err != nil {
		log.Error("failed to connect to redis", "error", err)
		panic("failed to connect to redis: " + err.Error())
	}
	_ = redisClient.Close()

	eventBus := events.NewInMemoryBus(log)

	sender := email.NewSender(cfg, log)

	leadRepo := leadrepo.New(pool)
	userProvider := users.NewProvider(usersrepo.New(pool))

	// The worker-side notification module delivers the digests the sweeps
	// produce.
	notificationModule := notification.NewModule(
		eventBus,
		sender,
		userProvider,
		leadRepo,
		cfg.AppBaseURL,
		cfg.EmailQueueDelay,
		log,
	)

	loc, err := time.LoadLocation(cfg.SweepTimezone)
	if err != nil {
		log.Error("invalid sweep timezone", "timezone", cfg.SweepTimezone, "error", err)
		panic("invalid sweep timezone: " + err.Error())
	}
	sweeper := scheduler.NewSweeper(leadRepo, eventBus, loc, log)

	periodic, err := scheduler.NewPeriodic(scheduler.PeriodicConfig{
		RedisAddr:     cfg.RedisAddr,
		RedisPassword: cfg.RedisPassword,
		Timezone:      cfg.SweepTimezone,
		TodayCron:     cfg.SweepTodayCron,
		TomorrowCron:  cfg.SweepTomorrowCron,
	}, log)
	if err != nil {
		log.Error("failed to initialize periodic scheduler", "error", err)
		panic("failed to initialize periodic scheduler: " + err.Error())
	}
	go periodic.Run()
	defer periodic.Shutdown()

	worker, err := scheduler.NewWorker(cfg.RedisAddr, cfg.RedisPassword, sweeper, log)
	if err != nil {
		log.Error("failed to initialize scheduler worker", "error", err)
		panic("failed to initialize scheduler worker: " + err.Error())
	}

	worker.Run(ctx)

	// Worker has stopped; flush any queued digest emails before exiting.
	notificationModule.Drain()
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return errors.New(name + ": invalid retry attempts")
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
