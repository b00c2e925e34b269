package main // Entry point package

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/stagebook/internal/cache"
	"github.com/iliyamo/stagebook/internal/config"
	"github.com/iliyamo/stagebook/internal/database"
	"github.com/iliyamo/stagebook/internal/handler"
	"github.com/iliyamo/stagebook/internal/logger"
	"github.com/iliyamo/stagebook/internal/mail"
	"github.com/iliyamo/stagebook/internal/middleware"
	"github.com/iliyamo/stagebook/internal/notify"
	"github.com/iliyamo/stagebook/internal/queue"
	"github.com/iliyamo/stagebook/internal/repository"
	"github.com/iliyamo/stagebook/internal/router"
	"github.com/iliyamo/stagebook/internal/service"
)

func main() {
	_ = godotenv.Load() // .env is optional; real environment wins
	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogFormat)
	log := logger.Get()

	db, err := database.Open(cfg)
	if err != nil {
		logger.Fatal("database open failed", "error", err)
	}
	defer db.Close()
	if cfg.DBAutoMigrate {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		err := database.Migrate(ctx, db)
		cancel()
		if err != nil {
			logger.Fatal("migration failed", "error", err)
		}
	}
	repos := repository.New(db)

	// Redis is optional: without it the page cache, revalidation and the
	// auth rate limiter are off.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Warn("redis unavailable, page cache and rate limiting disabled")
	} else {
		defer rdb.Close()
	}
	cacheCfg := config.LoadCacheConfig()

	var sender mail.Sender = mail.LogSender{}
	if cfg.RabbitURL != "" {
		sender = mail.NewAMQPSender(cfg.RabbitURL, cfg.MailQueue, cfg.MailFrom)
	}

	sideEffects := notify.NewQueue(notify.QueueOptions{
		Workers: cfg.Notify.Workers,
		Size:    cfg.Notify.QueueSize,
		Policy: notify.RetryPolicy{
			MaxAttempts:    cfg.Notify.MaxAttempts,
			InitialBackoff: cfg.Notify.Backoff,
			MaxBackoff:     10 * time.Second,
			BackoffFactor:  2.0,
		},
		JobTimeout: cfg.Notify.JobTimeout,
	})

	var revalidator cache.Revalidator = cache.Noop{}
	if cacheCfg.Enabled {
		revalidator = cache.NewRedisRevalidator(rdb, cacheCfg.Prefix)
	}

	deps := &service.Deps{
		Users:          repos.Users,
		Venues:         repos.Venues,
		Artists:        repos.Artists,
		Events:         repos.Events,
		EventArtists:   repos.EventArtists,
		Performances:   repos.Performances,
		Bookings:       repos.Bookings,
		Unavailability: repos.Unavailability,
		Notifications:  repos.Notifications,
		Dispatcher:     sideEffects,
		Mailer:         sender,
		Revalidator:    revalidator,
		BaseURL:        cfg.AppBaseURL,
	}
	notifications := service.NewNotificationService(deps)
	workflow := service.NewWorkflow(deps, notifications)
	publisher := service.NewPublisher(deps, notifications)
	events := service.NewEventService(deps, workflow, publisher)
	bookings := service.NewBookingService(deps, notifications, service.NewConflictChecker(repos.Bookings, repos.Unavailability))

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = handler.ErrorHandler
	e.Validator = handler.NewValidator()
	e.Use(echomw.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.RequestLogger())

	router.Register(e, router.Handlers{
		Health:        &handler.HealthHandler{DB: db, Redis: rdb},
		Auth:          handler.NewAuthHandler(cfg, repos.Users),
		Venues:        handler.NewVenueHandler(repos.Users, service.NewVenueService(deps)),
		Events:        handler.NewEventHandler(repos.Users, events, workflow),
		Performances:  handler.NewPerformanceHandler(repos.Users, workflow),
		Bookings:      handler.NewBookingHandler(repos.Users, bookings),
		Notifications: handler.NewNotificationHandler(repos.Users, notifications, workflow),
		Public:        handler.NewPublicHandler(events),
	}, router.Options{
		JWTSecret: cfg.JWTSecret,
		Cache:     cacheCfg,
		RateLimit: config.LoadRateLimitConfig(),
		Redis:     rdb,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The in-process consumer stands in for a mail relay in development.
	if cfg.MailConsumerEnabled && cfg.RabbitURL != "" {
		consumer := queue.NewEmailConsumer(cfg.RabbitURL, cfg.MailQueue)
		go func() {
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("email consumer stopped", "error", err)
			}
		}()
	}

	addr := ":" + cfg.Port
	go func() {
		log.Info("listening", "addr", addr, "env", cfg.Env)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown", "error", err)
	}
	// Drain side effects of requests that already finished.
	if err := sideEffects.Close(shutdownCtx); err != nil {
		log.Error("side-effect queue drain", "error", err)
	}
}
