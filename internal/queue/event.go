// Package queue defines message payloads exchanged over the message broker.
package queue

import (
	"time"

	"github.com/iliyamo/distributor-orders/internal/model"
)

// OrderPlacedQueue is the durable queue carrying OrderPlacedEvent.
const OrderPlacedQueue = "order.placed"

// OrderPlacedEvent is published when a distributor submits an order. It
// carries enough to write the confirmation email without querying the
// primary database.
type OrderPlacedEvent struct {
	OrderID   string           `json:"order_id"`
	UserID    string           `json:"user_id"`
	Customer  model.Customer   `json:"customer"`
	Items     []model.LineItem `json:"items"`
	Total     string           `json:"total"`
	OrderType string           `json:"order_type"`
	Timestamp string           `json:"timestamp"`
	PlacedAt  string           `json:"placed_at"`
}

// NewOrderPlacedEvent snapshots o.
func NewOrderPlacedEvent(o model.Order) OrderPlacedEvent {
	return OrderPlacedEvent{
		OrderID:   o.ID,
		UserID:    o.UserID,
		Customer:  o.Customer,
		Items:     o.Items,
		Total:     o.Total.StringFixed(2),
		OrderType: string(o.Type),
		Timestamp: o.Timestamp,
		PlacedAt:  o.CreatedAt.UTC().Format(time.RFC3339),
	}
}
