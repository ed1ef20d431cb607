package models

import (
	"time"

	"github.com/google/uuid"
)

// Profile represents an authenticated marketplace participant
type Profile struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Role      string    `db:"role" json:"role"`
	FullName  string    `db:"full_name" json:"full_name"`
	Phone     *string   `db:"phone" json:"phone,omitempty"`
	Location  *string   `db:"location" json:"location,omitempty"`
	Latitude  *float64  `db:"latitude" json:"latitude,omitempty"`
	Longitude *float64  `db:"longitude" json:"longitude,omitempty"`
	Bio       *string   `db:"bio" json:"bio,omitempty"`
	AvatarURL *string   `db:"avatar_url" json:"avatar_url,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Product represents a farmer's listing in the catalog
type Product struct {
	ID                uuid.UUID `db:"id" json:"id"`
	FarmerID          uuid.UUID `db:"farmer_id" json:"farmer_id"`
	Name              string    `db:"name" json:"name"`
	Description       *string   `db:"description" json:"description,omitempty"`
	Category          string    `db:"category" json:"category"`
	Price             float64   `db:"price" json:"price"`
	Unit              string    `db:"unit" json:"unit"`
	QuantityAvailable float64   `db:"quantity_available" json:"quantity_available"`
	ImageURL          *string   `db:"image_url" json:"image_url,omitempty"`
	Location          *string   `db:"location" json:"location,omitempty"`
	Available         bool      `db:"available" json:"available"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time `db:"updated_at" json:"updated_at"`
}

// Order links a retailer, a farmer and a product with a status lifecycle
type Order struct {
	ID              uuid.UUID `db:"id" json:"id"`
	ProductID       uuid.UUID `db:"product_id" json:"product_id"`
	RetailerID      uuid.UUID `db:"retailer_id" json:"retailer_id"`
	FarmerID        uuid.UUID `db:"farmer_id" json:"farmer_id"`
	Quantity        float64   `db:"quantity" json:"quantity"`
	TotalPrice      float64   `db:"total_price" json:"total_price"`
	Status          string    `db:"status" json:"status"`
	PaymentMethod   string    `db:"payment_method" json:"payment_method"`
	DeliveryAddress string    `db:"delivery_address" json:"delivery_address"`
	Notes           *string   `db:"notes" json:"notes,omitempty"`
	IdempotencyKey  *string   `db:"idempotency_key" json:"idempotency_key,omitempty"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

// Message represents a direct message between two participants
type Message struct {
	ID         uuid.UUID  `db:"id" json:"id"`
	SenderID   uuid.UUID  `db:"sender_id" json:"sender_id"`
	ReceiverID uuid.UUID  `db:"receiver_id" json:"receiver_id"`
	ProductID  *uuid.UUID `db:"product_id" json:"product_id,omitempty"`
	Content    string     `db:"content" json:"content"`
	IsRead     bool       `db:"is_read" json:"is_read"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
}

// Roles
const (
	RoleFarmer   = "farmer"
	RoleRetailer = "retailer"
)

// Order statuses
const (
	OrderStatusPending   = "pending"
	OrderStatusAccepted  = "accepted"
	OrderStatusRejected  = "rejected"
	OrderStatusCompleted = "completed"
)

// Payment methods
const (
	PaymentMethodOnline         = "online"
	PaymentMethodCashOnDelivery = "cash_on_delivery"
)

// ValidRole reports whether r is one of the two marketplace roles.
func ValidRole(r string) bool {
	return r == RoleFarmer || r == RoleRetailer
}

// ValidOrderStatus reports whether s is a known order status.
func ValidOrderStatus(s string) bool {
	switch s {
	case OrderStatusPending, OrderStatusAccepted, OrderStatusRejected, OrderStatusCompleted:
		return true
	}
	return false
}

// ValidPaymentMethod reports whether m is a known payment method.
func ValidPaymentMethod(m string) bool {
	return m == PaymentMethodOnline || m == PaymentMethodCashOnDelivery
}

// TerminalStatus reports whether s admits no further transitions.
func TerminalStatus(s string) bool {
	return s == OrderStatusRejected || s == OrderStatusCompleted
}
