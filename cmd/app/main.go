package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/wichananm65/slopeselector/internal/identity"
	"github.com/wichananm65/slopeselector/internal/infrastructure/backend"
	"github.com/wichananm65/slopeselector/internal/infrastructure/config"
	"github.com/wichananm65/slopeselector/internal/infrastructure/database"
	"github.com/wichananm65/slopeselector/internal/infrastructure/logging"
	"github.com/wichananm65/slopeselector/internal/infrastructure/tracing"
	"github.com/wichananm65/slopeselector/internal/interface/http/handler"
	"github.com/wichananm65/slopeselector/internal/interface/http/router"
	"github.com/wichananm65/slopeselector/internal/interface/presenter"
	"github.com/wichananm65/slopeselector/internal/usecase"
)

const serviceName = "slopeselector-web"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("load config")
	}
	log, err := logging.New(cfg.LogLevel, os.Stdout)
	if err != nil {
		logrus.WithError(err).Fatal("configure logging")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Setup(ctx, serviceName, cfg.TracingEndpoint, cfg.EnableTracing)
	if err != nil {
		log.WithError(err).Warn("tracing disabled")
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			log.WithError(err).Warn("flush traces")
		}
	}()

	storage, closer, err := database.OpenStorage(ctx, cfg.StorageDriver, cfg.StoragePath, cfg.DatabaseURL)
	if err != nil {
		log.WithError(err).Fatal("open local storage")
	}
	defer closer.Close()

	key, generated, err := cfg.CookieKey()
	if err != nil {
		log.WithError(err).Fatal("cookie key")
	}
	if generated {
		log.Warn("SLOPE_COOKIE_SECRET is not set; browser cookies will not survive a restart")
	}

	client := backend.NewClient(cfg.BackendURL, cfg.RequestTimeout, log)
	sessions := usecase.NewSessions(storage, client, log, cfg.RequestTimeout)
	renderer, err := presenter.NewRenderer()
	if err != nil {
		log.WithError(err).Fatal("load templates")
	}

	app := router.New(handler.NewPageHandler(sessions, renderer), router.Options{
		Tokens:       identity.NewTokens(key),
		CookieSecure: cfg.CookieSecure,
		AllowOrigins: cfg.AllowOrigins,
		Log:          log,
	})

	go sweepSessions(ctx, log, sessions, cfg.SessionIdleTTL)
	go func() {
		<-ctx.Done()
		log.Info("shutting down")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.WithError(err).Warn("shutdown")
		}
	}()

	log.WithFields(logrus.Fields{
		"addr":    cfg.Addr,
		"backend": cfg.BackendURL,
		"storage": cfg.StorageDriver,
	}).Info("starting server")
	if err := app.Listen(cfg.Addr); err != nil {
		log.WithError(err).Error("server stopped")
	}
}

// sweepSessions periodically drops controllers idle for longer than ttl.
func sweepSessions(ctx context.Context, log logrus.FieldLogger, sessions *usecase.Sessions, ttl time.Duration) {
	interval := ttl / 4
	if interval < time.Minute {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := sessions.Sweep(ttl); n > 0 {
				log.WithFields(logrus.Fields{"dropped": n, "live": sessions.Len()}).Info("swept idle sessions")
			}
		}
	}
}
