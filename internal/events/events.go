// Package events announces placed orders to downstream consumers.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/pubsub"
	"go.uber.org/zap"
)

// OrderPlacedType is the event type attribute for placed orders.
const OrderPlacedType = "order.placed"

// OrderLine is one purchased line.
type OrderLine struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	Size      string `json:"size,omitempty"`
	Color     string `json:"color,omitempty"`
	Quantity  int    `json:"quantity"`
	UnitPrice int64  `json:"unitPrice"`
}

// OrderPlaced is published once per successful checkout.
type OrderPlaced struct {
	OrderID          string      `json:"orderId"`
	CartID           string      `json:"cartId"`
	Email            string      `json:"email"`
	Lines            []OrderLine `json:"lines"`
	Subtotal         int64       `json:"subtotal"`
	Shipping         int64       `json:"shipping"`
	Tax              int64       `json:"tax"`
	Total            int64       `json:"total"`
	Currency         string      `json:"currency"`
	ShippingMethod   string      `json:"shippingMethod"`
	PaymentMethod    string      `json:"paymentMethod"`
	PaymentReference string      `json:"paymentReference"`
	PlacedAt         time.Time   `json:"placedAt"`
}

// Publisher delivers order events.
type Publisher interface {
	PublishOrderPlaced(ctx context.Context, event OrderPlaced) (string, error)
}

// LogPublisher writes events to the log. It is the default publisher.
type LogPublisher struct {
	Logger *zap.Logger
}

func (p LogPublisher) PublishOrderPlaced(_ context.Context, event OrderPlaced) (string, error) {
	logger := p.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Info("order placed",
		zap.String("order_id", event.OrderID),
		zap.String("cart_id", event.CartID),
		zap.Int64("total", event.Total),
		zap.Int("lines", len(event.Lines)),
	)
	return event.OrderID, nil
}

// PubSubPublisher publishes events to a Pub/Sub topic.
type PubSubPublisher struct {
	topic   *pubsub.Topic
	marshal func(any) ([]byte, error)
}

// NewPubSubPublisher constructs a Pub/Sub backed order publisher.
func NewPubSubPublisher(topic *pubsub.Topic) (*PubSubPublisher, error) {
	if topic == nil {
		return nil, errors.New("pubsub order publisher: topic is required")
	}
	return &PubSubPublisher{topic: topic, marshal: json.Marshal}, nil
}

// PublishOrderPlaced blocks until the server acknowledges the message.
func (p *PubSubPublisher) PublishOrderPlaced(ctx context.Context, event OrderPlaced) (string, error) {
	if p == nil || p.topic == nil {
		return "", errors.New("pubsub order publisher: not initialised")
	}
	data, err := p.marshal(event)
	if err != nil {
		return "", fmt.Errorf("marshal order event: %w", err)
	}

	attrs := map[string]string{"type": OrderPlacedType}
	setAttr(attrs, "orderId", event.OrderID)
	setAttr(attrs, "paymentMethod", event.PaymentMethod)

	result := p.topic.Publish(ctx, &pubsub.Message{
		Data:       data,
		Attributes: attrs,
	})
	id, err := result.Get(ctx)
	if err != nil {
		return "", fmt.Errorf("publish order event: %w", err)
	}
	return id, nil
}

func setAttr(attrs map[string]string, key, value string) {
	if v := strings.TrimSpace(value); v != "" {
		attrs[key] = v
	}
}
