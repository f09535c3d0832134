// Package server boots every subsystem and runs the HTTP server until the
// process receives SIGINT or SIGTERM.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shashiranjanraj/kirana/app/jobs"
	"github.com/shashiranjanraj/kirana/app/routes"
	"github.com/shashiranjanraj/kirana/config"
	"github.com/shashiranjanraj/kirana/pkg/cache"
	"github.com/shashiranjanraj/kirana/pkg/database"
	"github.com/shashiranjanraj/kirana/pkg/grpcserver"
	"github.com/shashiranjanraj/kirana/pkg/logger"
	"github.com/shashiranjanraj/kirana/pkg/metrics"
	"github.com/shashiranjanraj/kirana/pkg/middleware"
	"github.com/shashiranjanraj/kirana/pkg/queue"
	"github.com/shashiranjanraj/kirana/pkg/reqid"
	"github.com/shashiranjanraj/kirana/pkg/router"
	"github.com/shashiranjanraj/kirana/pkg/storage"
	"github.com/shashiranjanraj/kirana/pkg/ws"
)

const (
	shutdownTimeout = 10 * time.Second
	workerCount     = 4
)

// Start boots the application and blocks until shutdown completes.
func Start() error {
	if err := config.Load(); err != nil {
		return fmt.Errorf("server: load config: %w", err)
	}

	if uri := config.LogMongoURI(); uri != "" {
		mongoHandler, err := logger.NewMongoHandler(uri, config.LogMongoDatabase(), config.LogMongoCollection())
		if err != nil {
			logger.Warn("server: mongo log shipping disabled", "error", err)
		} else {
			defer mongoHandler.Close()
			logger.L = slog.New(logger.NewMultiHandler(logger.L.Handler(), mongoHandler))
			slog.SetDefault(logger.L)
		}
	}

	if err := database.Connect(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	queue.UseDB(database.DB)

	// Redis is optional; cache falls back to pass-through and the queue to
	// its in-memory driver.
	if err := cache.Connect(); err != nil {
		logger.Warn("server: redis unavailable", "error", err)
	} else {
		queue.SetDriver(queue.NewRedisDriver(cache.RDB))
	}

	storage.Connect()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	jobs.Register()
	jobs.ListenOrderEvents()
	queue.StartWorkers(ctx, workerCount)

	orderHub := ws.NewHub()
	go orderHub.Run()
	listenOrderFeed(orderHub)

	r := router.New()
	r.Use(metrics.Middleware())
	r.Use(reqid.Middleware())
	r.Use(middleware.Recovery)
	r.Use(middleware.Logger)
	r.Use(middleware.CORS(middleware.DefaultCORSOptions()))
	r.Use(middleware.RateLimit(300, time.Minute))

	if err := routes.RegisterAPI(r, database.DB, orderHub); err != nil {
		return fmt.Errorf("server: register routes: %w", err)
	}

	if port := config.GRPCPort(); port != "" {
		grpcSrv, _, err := grpcserver.Start(port)
		if err != nil {
			return fmt.Errorf("server: %w", err)
		}
		defer grpcserver.Stop(grpcSrv)
	}

	addr := ":" + config.AppPort()
	srv := &http.Server{
		Addr:              addr,
		Handler:           r.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server: listening", "addr", addr, "env", config.AppEnv())
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server: listen: %w", err)
	case <-ctx.Done():
	}

	logger.Info("server: shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	return nil
}
