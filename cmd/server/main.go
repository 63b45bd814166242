package main // Entry point package

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/iliyamo/cinebook/internal/config"
	"github.com/iliyamo/cinebook/internal/handler"
	"github.com/iliyamo/cinebook/internal/middleware"
	"github.com/iliyamo/cinebook/internal/notify"
	"github.com/iliyamo/cinebook/internal/queue"
	"github.com/iliyamo/cinebook/internal/repository"
	"github.com/iliyamo/cinebook/internal/router"
	"github.com/iliyamo/cinebook/internal/service"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load() // Load environment config
	if err != nil {
		logrus.WithError(err).Fatal("config")
	}
	log := config.NewLogger(cfg)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg, log); err != nil {
		log.WithError(err).Fatal("server exited")
	}
}

func run(ctx context.Context, cfg config.Config, log *logrus.Logger) error {
	catalog := repository.NewShowRepo(repository.DefaultCatalog())
	users := repository.NewUserRepo(cfg.BcryptCost)
	if err := users.SeedDemoUsers(); err != nil {
		return fmt.Errorf("seeding users: %w", err)
	}

	stores := service.NewStores(time.Now)
	bus := notify.NewBus(cfg.SubscriberBuffer, log)
	holds := service.NewHoldManager(stores, catalog, bus,
		service.WithHoldDuration(cfg.HoldDuration),
		service.WithLogger(log),
	)

	// The booking notifier is optional; a nil interface value keeps the
	// payment path free of any queue work.
	var notifier service.BookingNotifier
	if cfg.Queue.Enabled {
		notifier = queue.NewPublisher(cfg.Queue.URL, catalog, log)
	}
	payments := service.NewPaymentFlow(stores, holds, bus, notifier)
	sweeper := service.NewSweeper(holds, cfg.SweepInterval)

	rdb, err := config.NewRedisClient()
	if err != nil {
		log.WithError(err).Warn("redis unavailable; rate limiting and catalog cache disabled")
	} else {
		defer func() {
			if err := rdb.Close(); err != nil {
				log.WithError(err).Warn("closing redis")
			}
		}()
	}

	e := newEcho(log)
	router.Register(e, router.Handlers{
		Auth:     handler.NewAuthHandler(cfg, users, log),
		Catalog:  handler.NewCatalogHandler(catalog),
		Customer: handler.NewCustomerHandler(holds, stores.Bookings, log),
		Payment:  handler.NewPaymentHandler(payments, log),
		Events:   handler.NewEventsHandler(bus, catalog, log),
		Admin:    handler.NewAdminHandler(stores.Bookings, catalog, log),
	}, routerOptions(cfg, rdb, log))

	g, runCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return sweeper.Run(runCtx)
	})

	if cfg.Queue.Enabled {
		consumer := queue.NewConsumer(cfg.Queue.URL, cfg.Queue.LogDir, log)
		g.Go(func() error {
			if err := consumer.Run(runCtx); err != nil {
				return fmt.Errorf("running booking consumer: %w", err)
			}
			return nil
		})
	}

	g.Go(func() error {
		addr := ":" + cfg.Port
		log.WithFields(logrus.Fields{
			"addr": addr, "env": cfg.Env, "hold": cfg.HoldDuration.String(), "queue": cfg.Queue.Enabled,
		}).Info("starting HTTP server")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("starting http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-runCtx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		log.Info("shutting down HTTP server")
		if err := e.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down http server: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info("shutdown complete")
	return nil
}

// newEcho builds the echo instance with panic recovery and request logs
// routed through logrus.
func newEcho(log *logrus.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(echomw.Recover())
	e.Use(echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogStatus:   true,
		LogURI:      true,
		LogMethod:   true,
		LogLatency:  true,
		LogRemoteIP: true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			entry := log.WithFields(logrus.Fields{
				"method":  v.Method,
				"uri":     v.URI,
				"status":  v.Status,
				"latency": v.Latency.String(),
				"ip":      v.RemoteIP,
			})
			if v.Error != nil {
				entry.WithError(v.Error).Warn("request")
				return nil
			}
			entry.Info("request")
			return nil
		},
	}))
	return e
}

func routerOptions(cfg config.Config, rdb *redis.Client, log logrus.FieldLogger) router.Options {
	return router.Options{
		JWTSecret: cfg.JWTSecret,
		RateLimit: middleware.NewTokenBucket(cfg.RateLimit, rdb, log),
		Cache:     middleware.NewRedisCache(cfg.Cache, rdb),
	}
}
