package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"agromarket/internal/broker"
	"agromarket/internal/models"
	"agromarket/internal/policy"
	"agromarket/internal/redisclient"
	"agromarket/internal/store"
	"agromarket/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OrderStore is the order persistence surface the service needs. Satisfied
// by *store.Store.
type OrderStore interface {
	PlaceOrderTx(ctx context.Context, order *models.Order) error
	GetOrderByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	GetOrderByIdempotencyKey(ctx context.Context, key string, retailerID uuid.UUID) (*models.Order, error)
	ListOrdersForParty(ctx context.Context, partyID uuid.UUID, status string) ([]models.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, from, to string) error
}

// OrderService handles the order lifecycle
type OrderService struct {
	store          OrderStore
	redis          *redisclient.Client
	eventPublisher *broker.EventPublisher
	logger         *zap.Logger
}

// NewOrderService creates a new order service
func NewOrderService(store OrderStore, redis *redisclient.Client, eventPublisher *broker.EventPublisher) *OrderService {
	return &OrderService{
		store:          store,
		redis:          redis,
		eventPublisher: eventPublisher,
		logger:         util.GetLogger(),
	}
}

// PlaceOrderRequest represents a retailer's request to order against a
// listing. The farmer and the total price are derived from the listing.
type PlaceOrderRequest struct {
	ProductID       uuid.UUID `json:"product_id" binding:"required"`
	Quantity        float64   `json:"quantity" binding:"required"`
	PaymentMethod   string    `json:"payment_method" binding:"required"`
	DeliveryAddress string    `json:"delivery_address" binding:"required"`
	Notes           *string   `json:"notes,omitempty"`
	IdempotencyKey  string    `json:"idempotency_key,omitempty"`
}

// PlaceOrder creates a pending order and decrements the listing's stock in
// one transaction.
func (s *OrderService) PlaceOrder(ctx context.Context, requester policy.Requester, req *PlaceOrderRequest) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.PlaceOrder")
	defer span.End()

	start := time.Now()
	defer func() {
		util.OrderPlacementLatency.Observe(time.Since(start).Seconds())
	}()

	if req.Quantity <= 0 {
		util.OrdersFailedTotal.WithLabelValues("invalid_quantity").Inc()
		return nil, validationError("quantity must be positive")
	}
	if !models.ValidPaymentMethod(req.PaymentMethod) {
		return nil, validationError("payment_method must be %q or %q",
			models.PaymentMethodOnline, models.PaymentMethodCashOnDelivery)
	}
	if strings.TrimSpace(req.DeliveryAddress) == "" {
		return nil, validationError("delivery_address is required")
	}

	if req.IdempotencyKey == "" {
		req.IdempotencyKey = uuid.New().String()
	}

	order := &models.Order{
		ProductID:       req.ProductID,
		RetailerID:      requester.ID,
		Quantity:        req.Quantity,
		PaymentMethod:   req.PaymentMethod,
		DeliveryAddress: req.DeliveryAddress,
		Notes:           req.Notes,
		IdempotencyKey:  &req.IdempotencyKey,
	}

	if !policy.CanInsertOrder(requester, order) {
		util.PolicyDenialsTotal.WithLabelValues("orders", "insert").Inc()
		util.OrdersFailedTotal.WithLabelValues("policy_denied").Inc()
		return nil, ErrNotPermitted
	}

	// The replay lookup is scoped to the requester: another principal reusing
	// the same key finds nothing here and then fails the unique constraint,
	// so a foreign order is never returned.
	existing, err := s.store.GetOrderByIdempotencyKey(ctx, req.IdempotencyKey, requester.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check idempotency: %w", err)
	}
	if existing != nil && policy.CanReadOrder(requester, existing) {
		s.logger.Info("Duplicate order request detected",
			zap.String("idempotency_key", req.IdempotencyKey),
			zap.String("order_id", existing.ID.String()))
		return existing, nil
	}

	if err := s.store.PlaceOrderTx(ctx, order); err != nil {
		switch {
		case errors.Is(err, store.ErrInsufficientStock):
			util.OrdersFailedTotal.WithLabelValues("insufficient_stock").Inc()
		case errors.Is(err, store.ErrProductUnavailable):
			util.OrdersFailedTotal.WithLabelValues("unavailable").Inc()
		case errors.Is(err, store.ErrNotFound):
			util.OrdersFailedTotal.WithLabelValues("product_not_found").Inc()
		default:
			util.OrdersFailedTotal.WithLabelValues("db_error").Inc()
		}
		return nil, err
	}

	if err := s.redis.InvalidateProduct(ctx, order.ProductID); err != nil {
		s.logger.Warn("Product cache invalidation failed", zap.Error(err))
	}

	util.OrdersPlacedTotal.Inc()
	s.logger.Info("Order placed",
		zap.String("order_id", order.ID.String()),
		zap.String("retailer_id", order.RetailerID.String()),
		zap.Float64("total_price", order.TotalPrice))

	event := &models.OrderPlacedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeOrderPlaced,
			Timestamp: time.Now(),
		},
		OrderID:    order.ID,
		ProductID:  order.ProductID,
		RetailerID: order.RetailerID,
		FarmerID:   order.FarmerID,
		Quantity:   order.Quantity,
		TotalPrice: order.TotalPrice,
	}
	if err := s.eventPublisher.PublishOrderPlaced(ctx, event); err != nil {
		s.logger.Error("Failed to publish OrderPlaced event", zap.Error(err))
	}

	return order, nil
}

// GetOrder retrieves an order visible to the requester. A hidden order is
// reported as not found.
func (s *OrderService) GetOrder(ctx context.Context, requester policy.Requester, id uuid.UUID) (*models.Order, error) {
	order, err := s.store.GetOrderByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !policy.CanReadOrder(requester, order) {
		return nil, store.ErrNotFound
	}
	return order, nil
}

// ListOrders returns the orders the requester participates in, optionally
// narrowed by status.
func (s *OrderService) ListOrders(ctx context.Context, requester policy.Requester, status string) ([]models.Order, error) {
	if status != "" && !models.ValidOrderStatus(status) {
		return nil, validationError("unknown status %q", status)
	}

	orders, err := s.store.ListOrdersForParty(ctx, requester.ID, status)
	if err != nil {
		return nil, err
	}
	return policy.FilterOrders(requester, orders), nil
}

// UpdateStatus moves an order through its lifecycle. The access predicate
// admits either party; the transition table then decides whether this party
// may make this particular move.
func (s *OrderService) UpdateStatus(ctx context.Context, requester policy.Requester, id uuid.UUID, to string) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.UpdateStatus")
	defer span.End()

	order, err := s.store.GetOrderByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !policy.CanReadOrder(requester, order) {
		return nil, store.ErrNotFound
	}

	updated := *order
	updated.Status = to
	if !policy.CanUpdateOrder(requester, order, &updated) {
		util.PolicyDenialsTotal.WithLabelValues("orders", "update").Inc()
		return nil, ErrNotPermitted
	}

	actor := OrderParty(order, requester.ID)
	if err := CheckTransition(order.Status, to, actor); err != nil {
		return nil, err
	}

	if err := s.store.UpdateOrderStatus(ctx, id, order.Status, to); err != nil {
		// A concurrent transition got there first; whatever it moved to, this
		// move is no longer valid from the state the actor saw.
		if errors.Is(err, store.ErrStaleStatus) {
			return nil, ErrInvalidTransition
		}
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}

	switch to {
	case models.OrderStatusAccepted:
		util.OrdersAcceptedTotal.Inc()
	case models.OrderStatusRejected:
		util.OrdersRejectedTotal.Inc()
	case models.OrderStatusCompleted:
		util.OrdersCompletedTotal.Inc()
	}

	s.logger.Info("Order status changed",
		zap.String("order_id", order.ID.String()),
		zap.String("from", order.Status),
		zap.String("to", to))

	event := &models.OrderStatusChangedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeOrderStatusChanged,
			Timestamp: time.Now(),
		},
		OrderID:    order.ID,
		RetailerID: order.RetailerID,
		FarmerID:   order.FarmerID,
		From:       order.Status,
		To:         to,
		ActorID:    requester.ID,
	}
	if err := s.eventPublisher.PublishOrderStatusChanged(ctx, event); err != nil {
		s.logger.Error("Failed to publish OrderStatusChanged event", zap.Error(err))
	}

	updated.Status = to
	return &updated, nil
}
