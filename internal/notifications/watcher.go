package notifications

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"product-inventory/internal/products"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts what the watcher sees.
type Metrics struct {
	Events         *prometheus.CounterVec
	LowStockAlerts prometheus.Counter
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "inventory_events_total",
			Help: "Product change events consumed, by event type",
		}, []string{"event_type"}),
		LowStockAlerts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "inventory_low_stock_alerts_total",
			Help: "Low stock alerts raised",
		}),
	}
	reg.MustRegister(m.Events, m.LowStockAlerts)
	return m
}

// StockWatcher keeps the last known quantity per product and raises an alert
// when a product's stock first drops to the threshold or below it. It stays
// quiet while the product remains low and re-arms once stock recovers.
type StockWatcher struct {
	mu        sync.Mutex
	threshold int
	low       map[int64]bool
	logger    *slog.Logger
	metrics   *Metrics
}

func NewStockWatcher(threshold int, logger *slog.Logger, metrics *Metrics) *StockWatcher {
	return &StockWatcher{
		threshold: threshold,
		low:       make(map[int64]bool),
		logger:    logger,
		metrics:   metrics,
	}
}

func (w *StockWatcher) Handle(_ context.Context, event products.ProductEvent) error {
	switch event.EventType {
	case products.EventCreated, products.EventUpdated, products.EventDeleted:
	default:
		return fmt.Errorf("unknown event type %q", event.EventType)
	}

	w.metrics.Events.WithLabelValues(event.EventType).Inc()
	w.logger.Info("product changed",
		"event_type", event.EventType,
		"product_id", event.ProductID,
		"article", event.Article,
		"quantity", event.Quantity,
		"timestamp", event.Timestamp,
	)

	w.mu.Lock()
	defer w.mu.Unlock()

	if event.EventType == products.EventDeleted {
		delete(w.low, event.ProductID)
		return nil
	}

	isLow := event.Quantity <= w.threshold
	wasLow := w.low[event.ProductID]
	if isLow && !wasLow {
		w.metrics.LowStockAlerts.Inc()
		w.logger.Warn("low stock",
			"product_id", event.ProductID,
			"article", event.Article,
			"name", event.Name,
			"quantity", event.Quantity,
			"threshold", w.threshold,
		)
	}
	if isLow {
		w.low[event.ProductID] = true
	} else {
		delete(w.low, event.ProductID)
	}

	return nil
}

// LowStock reports whether the product is currently flagged.
func (w *StockWatcher) LowStock(id int64) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.low[id]
}
