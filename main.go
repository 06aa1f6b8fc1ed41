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

	"checkin/src-server/metric"
	"checkin/src-server/model"
	"checkin/src-server/route"
	"checkin/src-server/utils"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
)

func init() {
	if err := godotenv.Load(); err != nil {
		slog.Info(err.Error())
	}
	slog.SetDefault(slog.New(
		tint.NewHandler(os.Stderr, &tint.Options{
			Level:      utils.LogLevel,
			TimeFormat: time.RFC1123Z,
		}),
	))
}

func main() {
	// parses LOG_LEVEL first, so AppState setup is logged at the right level
	cfg, err := utils.NewConfig()
	if err != nil {
		slog.Error("can't read config", "error", err)
		os.Exit(1)
	}
	as, err := utils.NewAppStateWithConfig(cfg)
	if err != nil {
		slog.Error("can't start", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	if err := model.CreateSchema(ctx, as.BunDB); err != nil {
		slog.Error("can't create database schema", "error", err)
		os.Exit(1)
	}
	if err := as.BootstrapAdmin(ctx); err != nil {
		slog.Error("can't create admin account", "error", err)
		os.Exit(1)
	}

	metric.Init(as.BunDB, as.Config.GetMetricCollectionInterval(), as.CreateGracefulShutdownChan())

	// http server
	server := &http.Server{
		Addr:              ":" + as.Config.GetPort(),
		Handler:           route.NewHandler(as),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("cannot start HTTP server", "error", err)
			as.AppCloseSignalChan <- syscall.SIGTERM
		}
	}()

	slog.Info("app is now running, press Ctrl+C to exit", "port", as.Config.GetPort())

	signal.Notify(as.AppCloseSignalChan, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-as.AppCloseSignalChan

	slog.Info("Gracefully shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Warn("can't shut down HTTP server cleanly", "error", err)
	}
	as.GracefulShutdown()
}
