package products

import (
	"errors"
	"time"
)

var (
	ErrNotFound         = errors.New("product not found")
	ErrInvalidData      = errors.New("invalid data")
	ErrDuplicateArticle = errors.New("article already exists")
)

const (
	EventCreated = "product_created"
	EventUpdated = "product_updated"
	EventDeleted = "product_deleted"
)

type Product struct {
	ID        int64     `json:"id" example:"1"`
	Article   string    `json:"article" example:"SKU-0001"`
	Name      string    `json:"name" example:"iPhone 16"`
	Price     int       `json:"price" example:"1200"`
	Quantity  int       `json:"quantity" example:"5"`
	CreatedAt time.Time `json:"createdAt" example:"2026-02-24T12:00:00Z"`
}

type ProductEvent struct {
	EventType string    `json:"event_type"`
	ProductID int64     `json:"product_id"`
	Article   string    `json:"article,omitempty"`
	Name      string    `json:"name,omitempty"`
	Quantity  int       `json:"quantity"`
	Timestamp time.Time `json:"timestamp"`
}
