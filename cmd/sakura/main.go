package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sakura-salon/sakura/internal/admin"
	"github.com/sakura-salon/sakura/internal/api"
	"github.com/sakura-salon/sakura/internal/app"
	"github.com/sakura-salon/sakura/internal/auth"
	"github.com/sakura-salon/sakura/internal/booking"
	"github.com/sakura-salon/sakura/internal/cabinet"
	"github.com/sakura-salon/sakura/internal/mail"
	"github.com/sakura-salon/sakura/internal/observability"
	"github.com/sakura-salon/sakura/internal/platform/cache"
	"github.com/sakura-salon/sakura/internal/platform/db"
	"github.com/sakura-salon/sakura/internal/platform/httpx"
	"github.com/sakura-salon/sakura/internal/shared"
	"github.com/sakura-salon/sakura/internal/site"
	"github.com/sakura-salon/sakura/internal/view"
	"github.com/sakura-salon/sakura/jobs"
	"github.com/sakura-salon/sakura/report"
)

// warmingInvalidator drops the cached reviews and asks the worker to
// rebuild them so the next visitor does not pay for the reload.
type warmingInvalidator struct {
	feed   *site.ReviewFeed
	queue  *jobs.Client
	logger *slog.Logger
}

func (w warmingInvalidator) Invalidate(ctx context.Context) error {
	if err := w.feed.Invalidate(ctx); err != nil {
		return err
	}
	if err := w.queue.EnqueueReviewsWarmup(ctx); err != nil {
		w.logger.Warn("enqueue reviews warmup", slog.Any("error", err))
	}
	return nil
}

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	var dbpool *pgxpool.Pool
	if cfg.PGDSN != "" {
		dbpool, err = db.New(ctx, cfg.PGDSN, cfg.PGMaxConns)
		if err != nil {
			logger.Error("connect postgres", slog.Any("error", err))
			os.Exit(1)
		}
		defer dbpool.Close()
		if err := db.Migrate(ctx, dbpool); err != nil {
			logger.Error("migrate postgres", slog.Any("error", err))
			os.Exit(1)
		}
	} else {
		logger.Info("PG_DSN not set, auth events are not recorded and booking keys live in redis")
	}

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

	sessionManager := shared.NewSessionManager(redisClient, cfg.SessionCookie, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)

	templates, err := view.NewEngine()
	if err != nil {
		logger.Error("parse templates", slog.Any("error", err))
		os.Exit(1)
	}

	metrics := observability.NewMetrics()

	apiClient, err := api.NewClient(cfg.APIConfig(metrics))
	if err != nil {
		logger.Error("init api client", slog.Any("error", err))
		os.Exit(1)
	}

	provider, err := auth.NewProvider(auth.ProviderConfig{
		Client:         apiClient,
		Sessions:       sessionManager,
		Identities:     cache.NewJSON(redisClient, "identity", cfg.AuthRevalidateTTL),
		Events:         shared.NewAuditLogger(dbpool),
		Metrics:        metrics,
		Logger:         logger,
		FingerprintKey: cfg.SessionSecret,
		CheckTimeout:   cfg.AuthCheckTimeout,
	})
	if err != nil {
		logger.Error("init auth provider", slog.Any("error", err))
		os.Exit(1)
	}
	shell := auth.NewShell(csrfManager, logger)
	boundary := auth.NewBoundary(logger)
	guard := auth.NewGuard(templates, shell, cfg.AuthSettle, logger)

	redisOpts := asynq.RedisClientOpt{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB}
	queue := jobs.NewClient(redisOpts)
	defer func() {
		if err := queue.Close(); err != nil {
			logger.Warn("queue client close", slog.Any("error", err))
		}
	}()
	inspector := asynq.NewInspector(redisOpts)
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()

	notifier := mail.NewNotifier(templates, queue, cfg.SalonNotifyEmail, logger)
	if !notifier.Enabled() {
		logger.Info("SALON_NOTIFY_EMAIL not set, salon notifications are off")
	}

	var bookingKeys shared.IdempotencyStore = shared.NewRedisIdempotencyStore(redisClient, cfg.IdempotencyTTL)
	if dbpool != nil {
		bookingKeys = shared.NewPGIdempotencyStore(dbpool)
	}

	feed := site.NewReviewFeed(apiClient, cache.NewJSON(redisClient, "reviews", cfg.ReviewsCacheTTL))
	submitter := site.NewReviewSubmitter(boundary, logger)
	pdf := report.NewClient(cfg.GotenbergURL, 0)

	required := map[string]httpx.Check{
		"redis": func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
	}
	optional := map[string]httpx.Check{}
	if dbpool != nil {
		optional["postgres"] = dbpool.Ping
	}
	if pdf.Configured() {
		optional["gotenberg"] = pdf.Ping
	}

	router := app.NewRouter(app.RouterParams{
		Logger:         logger,
		Config:         cfg,
		Templates:      templates,
		SessionManager: sessionManager,
		CSRFManager:    csrfManager,
		Metrics:        metrics,
		Provider:       provider,
		Boundary:       boundary,
		Guard:          guard,
		Shell:          shell,
		AuthHandler:    auth.NewHandler(logger, templates, shell, csrfManager),
		SiteHandler:    site.NewHandler(templates, shell, boundary, feed, submitter, notifier, logger),
		BookingHandler: booking.NewHandler(templates, shell, boundary, bookingKeys, notifier, logger),
		CabinetHandler: cabinet.NewHandler(templates, shell, boundary, submitter, logger),
		AdminHandler: admin.NewHandler(templates, shell, boundary,
			warmingInvalidator{feed: feed, queue: queue, logger: logger}, pdf, logger),
		JobHandler: jobs.NewHandler(inspector, logger),
		Health:     httpx.HealthHandler(required, optional, 2*time.Second, logger),
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
