package main // Entry point package

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/gig-booking/internal/config"
	"github.com/iliyamo/gig-booking/internal/database"
	"github.com/iliyamo/gig-booking/internal/handler"
	"github.com/iliyamo/gig-booking/internal/identity"
	"github.com/iliyamo/gig-booking/internal/logger"
	"github.com/iliyamo/gig-booking/internal/metrics"
	"github.com/iliyamo/gig-booking/internal/middleware"
	"github.com/iliyamo/gig-booking/internal/queue"
	"github.com/iliyamo/gig-booking/internal/router"
	"github.com/iliyamo/gig-booking/internal/service"
)

func main() {
	cfg, err := config.Load() // Load .env, CONFIG_FILE and environment
	if err != nil {
		logger.MustNew("error").Error(context.Background(), "load config", logger.Error(err))
		os.Exit(1)
	}
	log := logger.MustNew(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error(ctx, "server stopped", logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, log logger.Logger) error {
	db, dialect, err := database.Open(ctx, database.Options{
		Driver:      cfg.DBDriver,
		User:        cfg.DBUser,
		Pass:        cfg.DBPass,
		Host:        cfg.DBHost,
		Port:        cfg.DBPort,
		Name:        cfg.DBName,
		SQLitePath:  cfg.SQLitePath,
		AutoMigrate: cfg.AutoMigrate,
	})
	if err != nil {
		return err
	}
	defer db.Close()

	// Redis only backs the rate limiter; without it requests pass through.
	rdb := config.NewRedisClient(ctx, cfg.Redis)
	if rdb == nil {
		log.Warn(ctx, "redis unavailable, rate limiting disabled", logger.String("addr", cfg.Redis.Addr))
	} else {
		defer rdb.Close()
	}

	m := metrics.NewManager()

	var pub service.Publisher = queue.NopPublisher{}
	if cfg.PublishEvents {
		p := queue.NewPublisher(cfg.RabbitMQURL, log)
		defer p.Close()
		pub = p
		go func() {
			if err := queue.StartAuditConsumer(ctx, cfg.RabbitMQURL, cfg.AuditLogDir, log); err != nil && !errors.Is(err, context.Canceled) {
				log.Error(ctx, "audit consumer stopped", logger.Error(err))
			}
		}()
	}

	engine := service.NewEngine(db, dialect, identity.ContextResolver{},
		service.WithPublisher(pub),
		service.WithMetrics(m),
		service.WithLogger(log),
	)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(echomw.Recover())
	e.Use(middleware.RequestLogger(log))
	router.RegisterRoutes(e, handler.NewLifecycleHandler(engine), router.Options{
		JWTSecret: cfg.JWTSecret,
		DB:        db,
		Metrics:   m.Handler(),
		RateLimit: middleware.NewTokenBucket(cfg.RateLimit, rdb, log),
	})

	addr := ":" + cfg.Port
	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "listening", logger.String("addr", addr), logger.String("env", cfg.Env), logger.String("driver", cfg.DBDriver))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	log.Info(shutdownCtx, "shutting down")
	return e.Shutdown(shutdownCtx)
}
