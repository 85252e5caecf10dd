package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/DeafMist/cybernews-relay/internal/config"
	"github.com/DeafMist/cybernews-relay/internal/logger"
	"github.com/DeafMist/cybernews-relay/internal/trigger"
	"github.com/DeafMist/cybernews-relay/internal/workflow"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run on the cron schedule and expose the manual trigger",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(logger.New("relay"))
	},
}

func serve(log *slog.Logger) error {
	cfg, err := config.LoadServer()
	if err != nil {
		return fmt.Errorf("load server config: %w", err)
	}
	loc, err := time.LoadLocation(cfg.CronTimezone)
	if err != nil {
		return fmt.Errorf("load cron timezone: %w", err)
	}

	wf := workflow.New(log)
	sup := trigger.NewSupervisor(log)

	invoke := func(name string) trigger.Task {
		return func(ctx context.Context) error {
			wf.Invoke(ctx, name, config.LoadRelay)
			return nil
		}
	}

	sched, err := trigger.NewScheduler(log, cfg.Cron, loc, sup, invoke(workflow.TriggerScheduled))
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:              cfg.BindAddr,
		Handler:           trigger.NewRouter(log, sup, invoke(workflow.TriggerManual)),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	serverErr := make(chan error, 1)
	go func() {
		log.Info("trigger server starting", slog.String("addr", cfg.BindAddr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	sched.Start()

	var listenErr error
	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case listenErr = <-serverErr:
		log.Error("server stopped", slog.Any("err", listenErr))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := sched.Stop(shutdownCtx); err != nil {
		log.Error("scheduler stop", slog.Any("err", err))
	}
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown", slog.Any("err", err))
	}
	if err := sup.Wait(shutdownCtx); err != nil {
		log.Warn("in-flight runs abandoned", slog.Any("err", err))
	}

	log.Info("stopped")
	if listenErr != nil {
		return fmt.Errorf("listen %s: %w", cfg.BindAddr, listenErr)
	}
	return nil
}
