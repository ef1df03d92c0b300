package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/sakura-salon/sakura/internal/api"
	"github.com/sakura-salon/sakura/internal/app"
	"github.com/sakura-salon/sakura/internal/mail"
	"github.com/sakura-salon/sakura/internal/platform/cache"
	"github.com/sakura-salon/sakura/internal/platform/db"
	"github.com/sakura-salon/sakura/internal/shared"
	"github.com/sakura-salon/sakura/internal/site"
	"github.com/sakura-salon/sakura/internal/view"
	"github.com/sakura-salon/sakura/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg).With(slog.String("component", "worker"))

	redisClient, err := cache.New(ctx, cache.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	apiClient, err := api.NewClient(cfg.APIConfig(nil))
	if err != nil {
		logger.Error("init api client", slog.Any("error", err))
		os.Exit(1)
	}
	feed := site.NewReviewFeed(apiClient, cache.NewJSON(redisClient, "reviews", cfg.ReviewsCacheTTL))

	sender := mail.NewSMTPSender(cfg.SMTPConfig())
	if !sender.Configured() {
		logger.Warn("SMTP_HOST not set, queued e-mails will fail and retry")
	}

	warmupTask := jobs.NewReviewsWarmupTask()
	handlers := []jobs.TaskHandler{
		{Type: jobs.TaskTypeSendEmail, Handler: jobs.NewMailJob(sender, logger, nil).Handle},
		{Type: jobs.TaskReviewsWarmup, Handler: jobs.NewReviewsWarmupJob(feed, logger, nil).Handle},
	}
	cron := []jobs.CronRegistration{
		{Spec: "*/30 * * * *", Task: warmupTask, Options: []asynq.Option{asynq.MaxRetry(1)}},
	}

	if cfg.PGDSN != "" {
		pool, err := db.New(ctx, cfg.PGDSN, cfg.PGMaxConns)
		if err != nil {
			logger.Error("connect database", slog.Any("error", err))
			os.Exit(1)
		}
		defer pool.Close()

		cleanupTask, err := jobs.NewIdempotencyCleanupTask(cfg.IdempotencyRetention)
		if err != nil {
			logger.Error("build cleanup task", slog.Any("error", err))
			os.Exit(1)
		}
		cleanup := jobs.NewIdempotencyCleanupJob(shared.NewPGIdempotencyStore(pool), logger, nil)
		handlers = append(handlers, jobs.TaskHandler{Type: jobs.TaskIdempotencyCleanup, Handler: cleanup.Handle})
		cron = append(cron, jobs.CronRegistration{Spec: "15 3 * * *", Task: cleanupTask, Options: []asynq.Option{asynq.MaxRetry(3)}})
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts:   asynq.RedisClientOpt{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB},
		Logger:      logger,
		Concurrency: cfg.WorkerConcurrency,
		Handlers:    handlers,
		Cron:        cron,
		Location:    view.Location(),
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
