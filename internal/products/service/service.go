package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"product-inventory/internal/products"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	defaultPage     = 1
	defaultPageSize = 10
)

type Repository interface {
	Create(ctx context.Context, in products.Input) (products.Product, error)
	GetByID(ctx context.Context, id int64) (products.Product, error)
	FindByArticle(ctx context.Context, article string) (products.Product, error)
	Update(ctx context.Context, id int64, in products.Input) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, limit, offset int) ([]products.Product, error)
	Count(ctx context.Context) (int64, error)
}

type Publisher interface {
	Publish(ctx context.Context, event products.ProductEvent) error
}

// Counters track successful mutations.
type Counters struct {
	Created prometheus.Counter
	Updated prometheus.Counter
	Deleted prometheus.Counter
}

type Service struct {
	repo      Repository
	publisher Publisher
	logger    *slog.Logger
	counters  Counters
}

func New(repo Repository, publisher Publisher, logger *slog.Logger, counters Counters) *Service {
	return &Service{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		counters:  counters,
	}
}

func (s *Service) CreateProduct(ctx context.Context, in products.Input) (products.Product, error) {
	if err := in.Validate(); err != nil {
		return products.Product{}, err
	}

	product, err := s.repo.Create(ctx, in)
	if err != nil {
		return products.Product{}, fmt.Errorf("repo create: %w", err)
	}

	s.publish(ctx, products.EventCreated, product)
	s.counters.Created.Inc()
	return product, nil
}

func (s *Service) GetProduct(ctx context.Context, id int64) (products.Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return products.Product{}, fmt.Errorf("repo get: %w", err)
	}
	return product, nil
}

// UpdateProduct checks existence, then input, then article ownership before
// writing. The ownership check is not atomic with the write; the unique
// constraint catches anything that slips in between.
func (s *Service) UpdateProduct(ctx context.Context, id int64, in products.Input) (products.Product, error) {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return products.Product{}, fmt.Errorf("repo get: %w", err)
	}

	if err := in.Validate(); err != nil {
		return products.Product{}, err
	}

	owner, err := s.repo.FindByArticle(ctx, in.Article)
	switch {
	case err == nil && owner.ID != id:
		return products.Product{}, products.ErrDuplicateArticle
	case err != nil && !errors.Is(err, products.ErrNotFound):
		return products.Product{}, fmt.Errorf("repo find by article: %w", err)
	}

	if err := s.repo.Update(ctx, id, in); err != nil {
		return products.Product{}, fmt.Errorf("repo update: %w", err)
	}

	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return products.Product{}, fmt.Errorf("repo get updated: %w", err)
	}

	s.publish(ctx, products.EventUpdated, product)
	s.counters.Updated.Inc()
	return product, nil
}

func (s *Service) DeleteProduct(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("repo delete: %w", err)
	}

	s.publish(ctx, products.EventDeleted, products.Product{ID: id})
	s.counters.Deleted.Inc()
	return nil
}

// ListProducts falls back to page 1 and 10 rows for values below 1. There is
// no upper bound on limit.
func (s *Service) ListProducts(ctx context.Context, page, limit int) ([]products.Product, int64, error) {
	if page < 1 {
		page = defaultPage
	}
	if limit < 1 {
		limit = defaultPageSize
	}

	items, err := s.repo.List(ctx, limit, pageOffset(page, limit))
	if err != nil {
		return nil, 0, fmt.Errorf("repo list: %w", err)
	}

	total, err := s.repo.Count(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("repo count: %w", err)
	}

	return items, total, nil
}

// pageOffset saturates at math.MaxInt instead of wrapping negative, so an
// absurd page reads past the end of the table and comes back empty.
func pageOffset(page, limit int) int {
	if page-1 > math.MaxInt/limit {
		return math.MaxInt
	}
	return (page - 1) * limit
}

func (s *Service) publish(ctx context.Context, eventType string, product products.Product) {
	if err := s.publisher.Publish(ctx, products.ProductEvent{
		EventType: eventType,
		ProductID: product.ID,
		Article:   product.Article,
		Name:      product.Name,
		Quantity:  product.Quantity,
		Timestamp: time.Now().UTC(),
	}); err != nil {
		s.logger.Error("publish product event failed",
			"event_type", eventType,
			"product_id", product.ID,
			"error", err,
		)
	}
}
