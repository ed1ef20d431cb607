package store

import (
	"context"
	"database/sql"

	"agromarket/internal/models"

	"github.com/google/uuid"
)

// CreateMessage inserts a new message
func (s *Store) CreateMessage(ctx context.Context, m *models.Message) error {
	query := `
		INSERT INTO messages (sender_id, receiver_id, product_id, content)
		VALUES ($1, $2, $3, $4)
		RETURNING id, is_read, created_at`

	return s.db.QueryRowxContext(ctx, query,
		m.SenderID, m.ReceiverID, m.ProductID, m.Content).
		Scan(&m.ID, &m.IsRead, &m.CreatedAt)
}

// GetMessageByID retrieves a message by id
func (s *Store) GetMessageByID(ctx context.Context, id uuid.UUID) (*models.Message, error) {
	var msg models.Message
	err := s.db.GetContext(ctx, &msg, "SELECT * FROM messages WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

// ListConversation retrieves the messages exchanged between two principals in
// either direction, newest first, optionally scoped to a product.
func (s *Store) ListConversation(ctx context.Context, a, b uuid.UUID, productID *uuid.UUID) ([]models.Message, error) {
	query := `
		SELECT * FROM messages
		WHERE ((sender_id = $1 AND receiver_id = $2) OR (sender_id = $2 AND receiver_id = $1))`
	args := []interface{}{a, b}

	if productID != nil {
		args = append(args, *productID)
		query += " AND product_id = $3"
	}
	query += " ORDER BY created_at DESC"

	var messages []models.Message
	err := s.db.SelectContext(ctx, &messages, query, args...)
	return messages, err
}

// MarkMessageRead sets the read flag on a message.
func (s *Store) MarkMessageRead(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE messages SET is_read = TRUE WHERE id = $1", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// CountUnread returns the number of unread messages addressed to a principal.
func (s *Store) CountUnread(ctx context.Context, receiverID uuid.UUID) (int64, error) {
	var count int64
	err := s.db.GetContext(ctx, &count,
		"SELECT COUNT(*) FROM messages WHERE receiver_id = $1 AND is_read = FALSE", receiverID)
	return count, err
}
