package domain

import "time"

// Order lifecycle events a participant can subscribe to.
const (
	EventOrderCreated               = "order.created"
	EventOrderShipped               = "order.shipped"
	EventOrderReceived              = "order.received"
	EventOrderCancellationRequested = "order.cancellation_requested"
	EventOrderCancelled             = "order.cancelled"
)

// Webhook represents a participant's subscription to an order event.
type Webhook struct {
	WebhookID string
	Owner     Principal
	Event     string
	URL       string
	CreatedAt time.Time
	UpdatedAt time.Time
}
