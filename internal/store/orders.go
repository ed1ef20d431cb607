package store

import (
	"context"
	"database/sql"
	"fmt"

	"agromarket/internal/models"

	"github.com/google/uuid"
)

// ErrInsufficientStock is returned when an order asks for more than the
// listing currently has available.
var ErrInsufficientStock = fmt.Errorf("insufficient stock")

// ErrProductUnavailable is returned when ordering against a listing whose
// availability flag is off.
var ErrProductUnavailable = fmt.Errorf("product not available")

// ErrStaleStatus is returned when a status update finds the order no longer
// in the expected state, typically because a concurrent transition won.
var ErrStaleStatus = fmt.Errorf("order status changed concurrently")

// PlaceOrderTx inserts an order and decrements the listing's stock as one
// atomic unit (FOR UPDATE lock on the product row). The order's farmer_id
// and total_price are taken from the locked product row, never from the
// caller.
func (s *Store) PlaceOrderTx(ctx context.Context, order *models.Order) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var product models.Product
	err = tx.GetContext(ctx, &product,
		"SELECT * FROM products WHERE id = $1 FOR UPDATE", order.ProductID)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to lock product: %w", err)
	}

	if !product.Available {
		return ErrProductUnavailable
	}
	if product.QuantityAvailable < order.Quantity {
		return ErrInsufficientStock
	}

	order.FarmerID = product.FarmerID
	order.TotalPrice = product.Price * order.Quantity
	order.Status = models.OrderStatusPending

	_, err = tx.ExecContext(ctx,
		"UPDATE products SET quantity_available = quantity_available - $1, updated_at = NOW() WHERE id = $2",
		order.Quantity, order.ProductID)
	if err != nil {
		return fmt.Errorf("failed to adjust stock: %w", err)
	}

	query := `
		INSERT INTO orders (product_id, retailer_id, farmer_id, quantity, total_price,
		                    status, payment_method, delivery_address, notes, idempotency_key)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at`

	err = tx.QueryRowxContext(ctx, query,
		order.ProductID, order.RetailerID, order.FarmerID, order.Quantity, order.TotalPrice,
		order.Status, order.PaymentMethod, order.DeliveryAddress, order.Notes, order.IdempotencyKey).
		Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}

	return tx.Commit()
}

// GetOrderByID retrieves an order by id
func (s *Store) GetOrderByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := s.db.GetContext(ctx, &order, "SELECT * FROM orders WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// GetOrderByIdempotencyKey retrieves an order by idempotency key, scoped to
// the retailer that placed it. A key replayed by a different principal finds
// nothing, so one retailer's order can never leak through another's key.
func (s *Store) GetOrderByIdempotencyKey(ctx context.Context, key string, retailerID uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := s.db.GetContext(ctx, &order,
		"SELECT * FROM orders WHERE idempotency_key = $1 AND retailer_id = $2", key, retailerID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// ListOrdersForParty retrieves orders in which the principal participates on
// either side, newest first, optionally narrowed by status.
func (s *Store) ListOrdersForParty(ctx context.Context, partyID uuid.UUID, status string) ([]models.Order, error) {
	query := "SELECT * FROM orders WHERE (retailer_id = $1 OR farmer_id = $1)"
	args := []interface{}{partyID}

	if status != "" {
		args = append(args, status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	query += " ORDER BY created_at DESC"

	var orders []models.Order
	err := s.db.SelectContext(ctx, &orders, query, args...)
	return orders, err
}

// UpdateOrderStatus moves an order from one status to another. The update is
// guarded on the expected current status so two concurrent transitions cannot
// both win; the loser gets ErrStaleStatus.
func (s *Store) UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, from, to string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE orders SET status = $1, updated_at = NOW() WHERE id = $2 AND status = $3",
		to, orderID, from)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrStaleStatus
	}
	return nil
}
