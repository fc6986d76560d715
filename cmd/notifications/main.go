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

	"product-inventory/internal/config"
	"product-inventory/internal/notifications"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	amqp "github.com/rabbitmq/amqp091-go"
)

func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	os.Exit(run(logger))
}

func run(logger *slog.Logger) int {
	cfg, err := config.LoadNotifications()
	if err != nil {
		logger.Error("load config", "error", err)
		return 1
	}

	conn, err := amqp.Dial(cfg.RabbitMQURL)
	if err != nil {
		logger.Error("connect rabbitmq", "error", err)
		return 1
	}
	defer conn.Close()

	registry := prometheus.NewRegistry()
	watcher := notifications.NewStockWatcher(cfg.LowStockThreshold, logger, notifications.NewMetrics(registry))

	consumer, err := notifications.NewConsumer(conn, cfg.EventsQueue, watcher, logger)
	if err != nil {
		logger.Error("init consumer", "error", err)
		return 1
	}
	defer consumer.Close()

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	metricsServer := &http.Server{
		Addr:              cfg.MetricsAddr,
		Handler:           mux,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	consumerDone := make(chan error, 1)
	go func() {
		logger.Info("stock watcher started",
			"queue", cfg.EventsQueue,
			"low_stock_threshold", cfg.LowStockThreshold,
		)
		consumerDone <- consumer.Listen(ctx)
	}()

	metricsErr := make(chan error, 1)
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			metricsErr <- err
		}
	}()

	exitCode := supervise(ctx, logger, consumerDone, metricsErr, cfg.ShutdownTimeout)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics server shutdown failed", "error", err)
		return 1
	}

	logger.Info("stock watcher stopped")
	return exitCode
}

// supervise blocks until the consumer returns, the metrics listener fails or
// ctx is cancelled. After cancellation it gives the consumer up to drain to
// finish the delivery in hand.
func supervise(ctx context.Context, logger *slog.Logger, consumerDone, metricsErr <-chan error, drain time.Duration) int {
	select {
	case err := <-consumerDone:
		if err != nil {
			logger.Error("consumer stopped", "error", err)
			return 1
		}
		logger.Info("consumer stopped")
		return 0
	case err := <-metricsErr:
		logger.Error("metrics server failed", "error", err)
		return 1
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	deadline := time.NewTimer(drain)
	defer deadline.Stop()

	select {
	case err := <-consumerDone:
		if err != nil {
			logger.Error("consumer stop failed", "error", err)
			return 1
		}
	case <-deadline.C:
		logger.Warn("consumer shutdown timeout reached")
	}
	return 0
}
