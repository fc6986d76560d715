package messaging

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"product-inventory/internal/products"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

func TestNewMessage(t *testing.T) {
	ts := time.Date(2026, 2, 24, 12, 0, 0, 0, time.UTC)
	msg, err := newMessage(products.ProductEvent{
		EventType: products.EventUpdated,
		ProductID: 3,
		Article:   "A-3",
		Name:      "Desk",
		Quantity:  4,
		Timestamp: ts,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if msg.DeliveryMode != amqp.Persistent {
		t.Fatalf("want persistent delivery, got %d", msg.DeliveryMode)
	}
	if msg.Type != products.EventUpdated {
		t.Fatalf("want type %q, got %q", products.EventUpdated, msg.Type)
	}
	if !msg.Timestamp.Equal(ts) {
		t.Fatalf("want timestamp %v, got %v", ts, msg.Timestamp)
	}
	if _, err := uuid.Parse(msg.MessageId); err != nil {
		t.Fatalf("want uuid message id, got %q", msg.MessageId)
	}

	var got map[string]any
	if err := json.Unmarshal(msg.Body, &got); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if got["event_type"] != products.EventUpdated {
		t.Fatalf("want event_type %q, got %v", products.EventUpdated, got["event_type"])
	}
	if got["article"] != "A-3" {
		t.Fatalf("want article A-3, got %v", got["article"])
	}
	if got["product_id"] != float64(3) {
		t.Fatalf("want product_id 3, got %v", got["product_id"])
	}
	if got["quantity"] != float64(4) {
		t.Fatalf("want quantity 4, got %v", got["quantity"])
	}
}

func TestNewMessage_OmitsEmptyNames(t *testing.T) {
	msg, err := newMessage(products.ProductEvent{EventType: products.EventDeleted, ProductID: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var got map[string]any
	if err := json.Unmarshal(msg.Body, &got); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if _, ok := got["article"]; ok {
		t.Fatal("expected article to be omitted")
	}
	if _, ok := got["name"]; ok {
		t.Fatal("expected name to be omitted")
	}
}

func TestNewMessage_UniqueIDs(t *testing.T) {
	a, _ := newMessage(products.ProductEvent{EventType: products.EventCreated})
	b, _ := newMessage(products.ProductEvent{EventType: products.EventCreated})
	if a.MessageId == b.MessageId {
		t.Fatalf("want distinct message ids, got %q twice", a.MessageId)
	}
}

func TestNopPublisher(t *testing.T) {
	if err := (NopPublisher{}).Publish(context.Background(), products.ProductEvent{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
