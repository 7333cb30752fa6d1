package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/froydnj/contentdir/internal/library"
	"github.com/froydnj/contentdir/internal/server"
	"github.com/froydnj/contentdir/internal/shared"
	"github.com/urfave/cli/v3"
	"golang.org/x/time/rate"
)

// Serve runs the UPnP media server until interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	config := r.loadConfig(cmd)

	db, err := r.openLibrary(config)
	if err != nil {
		return err
	}
	defer db.Close()

	events := server.NewEventHandler(r.logger)
	service, store, err := r.buildService(ctx, db, config, events)
	if err != nil {
		return err
	}
	notifier := service.Notifier()
	events.Bind(notifier)
	defer notifier.Stop()

	router := server.NewBasicRouter()
	router.Use(server.LoggingMiddleware(r.logger))
	if config.Server.RateLimit > 0 {
		limiter := rate.NewLimiter(rate.Limit(config.Server.RateLimit), config.Server.RateBurst)
		router.Use(server.RateLimitMiddleware(limiter))
	}

	router.Handler(server.NewDeviceHandler(config.Server.FriendlyName,
		shared.GenerateUDN(config.Database.Path)))
	router.Handler(server.NewControlHandler(service, r.logger))
	router.Handler(events)
	router.Handler(server.NewMediaHandler(store, r.logger))

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cmd.Bool("scan") {
		scanner := library.NewScanner(db, config.Library.MediaDirs, r.logger)
		go func() {
			res, err := scanner.Scan(ctx, nil)
			if err != nil {
				r.logger.Error("startup scan failed", "error", err)
				return
			}
			notifier.RescanCompleted(uint32(res.CompletedAt))
		}()
	}

	addr := fmt.Sprintf("%s:%d", config.Server.Host, config.Server.Port)
	srv := &http.Server{Addr: addr, Handler: router}

	errCh := make(chan error, 1)
	go func() {
		r.logger.Info("media server listening", "addr", addr,
			"name", config.Server.FriendlyName, "update_id", service.SystemUpdateID())
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
		r.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown failed: %w", err)
		}
	}
	return nil
}
