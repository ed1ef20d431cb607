package models

import (
	"time"

	"github.com/google/uuid"
)

// Event types
const (
	EventTypeOrderPlaced        = "ORDER_PLACED"
	EventTypeOrderStatusChanged = "ORDER_STATUS_CHANGED"
	EventTypeProductUpdated     = "PRODUCT_UPDATED"
	EventTypeProductDeleted     = "PRODUCT_DELETED"
	EventTypeMessageSent        = "MESSAGE_SENT"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// OrderPlacedEvent published when a retailer places an order
type OrderPlacedEvent struct {
	BaseEvent
	OrderID    uuid.UUID `json:"order_id"`
	ProductID  uuid.UUID `json:"product_id"`
	RetailerID uuid.UUID `json:"retailer_id"`
	FarmerID   uuid.UUID `json:"farmer_id"`
	Quantity   float64   `json:"quantity"`
	TotalPrice float64   `json:"total_price"`
}

// OrderStatusChangedEvent published on every status transition
type OrderStatusChangedEvent struct {
	BaseEvent
	OrderID    uuid.UUID `json:"order_id"`
	RetailerID uuid.UUID `json:"retailer_id"`
	FarmerID   uuid.UUID `json:"farmer_id"`
	From       string    `json:"from"`
	To         string    `json:"to"`
	ActorID    uuid.UUID `json:"actor_id"`
}

// ProductUpdatedEvent published when a listing is created or updated
type ProductUpdatedEvent struct {
	BaseEvent
	ProductID uuid.UUID `json:"product_id"`
	FarmerID  uuid.UUID `json:"farmer_id"`
}

// ProductDeletedEvent published when a listing is removed
type ProductDeletedEvent struct {
	BaseEvent
	ProductID uuid.UUID `json:"product_id"`
	FarmerID  uuid.UUID `json:"farmer_id"`
}

// MessageSentEvent published when a message is recorded
type MessageSentEvent struct {
	BaseEvent
	MessageID  uuid.UUID `json:"message_id"`
	SenderID   uuid.UUID `json:"sender_id"`
	ReceiverID uuid.UUID `json:"receiver_id"`
}
