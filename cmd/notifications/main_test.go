package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"product-inventory/internal/notifications"
)

func TestSupervise(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("lost broker connection exits non-zero", func(t *testing.T) {
		consumerDone := make(chan error, 1)
		consumerDone <- notifications.ErrDeliveriesClosed

		code := supervise(context.Background(), logger, consumerDone, make(chan error), time.Second)
		if code != 1 {
			t.Fatalf("want exit code 1, got %d", code)
		}
	})

	t.Run("consumer returning nil still ends the process", func(t *testing.T) {
		consumerDone := make(chan error, 1)
		consumerDone <- nil

		code := supervise(context.Background(), logger, consumerDone, make(chan error), time.Second)
		if code != 0 {
			t.Fatalf("want exit code 0, got %d", code)
		}
	})

	t.Run("metrics listener failure exits non-zero", func(t *testing.T) {
		metricsErr := make(chan error, 1)
		metricsErr <- errors.New("address in use")

		code := supervise(context.Background(), logger, make(chan error), metricsErr, time.Second)
		if code != 1 {
			t.Fatalf("want exit code 1, got %d", code)
		}
	})

	t.Run("signal waits for the consumer to drain", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		consumerDone := make(chan error, 1)
		go func() {
			time.Sleep(20 * time.Millisecond)
			consumerDone <- nil
		}()

		code := supervise(ctx, logger, consumerDone, make(chan error), time.Second)
		if code != 0 {
			t.Fatalf("want exit code 0, got %d", code)
		}
		select {
		case <-consumerDone:
			t.Fatal("supervise returned before reading the consumer result")
		default:
		}
	})

	t.Run("drain deadline", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		start := time.Now()
		code := supervise(ctx, logger, make(chan error), make(chan error), 10*time.Millisecond)
		if code != 0 {
			t.Fatalf("want exit code 0, got %d", code)
		}
		if time.Since(start) > time.Second {
			t.Fatal("drain wait ignored its deadline")
		}
	})
}
