package config

import (
	"fmt"
	"strconv"
	"time"
)

const (
	defaultEventsQueue       = "products.events"
	defaultLowStockThreshold = 5
	defaultMetricsAddr       = ":9102"
)

// Notifications configures the stock watcher fed by product change events.
type Notifications struct {
	RabbitMQURL       string
	EventsQueue       string
	LowStockThreshold int
	MetricsAddr       string
	ShutdownTimeout   time.Duration
	ReadHeaderTimeout time.Duration
}

func LoadNotifications() (Notifications, error) {
	cfg := Notifications{
		RabbitMQURL:       getEnv("RABBITMQ_URL", ""),
		EventsQueue:       getEnv("EVENTS_QUEUE", defaultEventsQueue),
		LowStockThreshold: defaultLowStockThreshold,
		MetricsAddr:       getEnv("METRICS_ADDR", defaultMetricsAddr),
		ShutdownTimeout:   defaultShutdownTimeout,
		ReadHeaderTimeout: defaultReadHeaderTimeout,
	}

	if cfg.RabbitMQURL == "" {
		return Notifications{}, fmt.Errorf("RABBITMQ_URL is required")
	}

	if raw := getEnv("LOW_STOCK_THRESHOLD", ""); raw != "" {
		threshold, err := strconv.Atoi(raw)
		if err != nil || threshold < 0 {
			return Notifications{}, fmt.Errorf("LOW_STOCK_THRESHOLD must be a non-negative integer")
		}
		cfg.LowStockThreshold = threshold
	}

	return cfg, nil
}
