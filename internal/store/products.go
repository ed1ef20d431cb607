package store

import (
	"context"
	"database/sql"
	"fmt"

	"agromarket/internal/models"

	"github.com/google/uuid"
)

// CreateProduct inserts a new listing
func (s *Store) CreateProduct(ctx context.Context, p *models.Product) error {
	query := `
		INSERT INTO products (farmer_id, name, description, category, price, unit,
		                      quantity_available, image_url, location, available)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at`

	return s.db.QueryRowxContext(ctx, query,
		p.FarmerID, p.Name, p.Description, p.Category, p.Price, p.Unit,
		p.QuantityAvailable, p.ImageURL, p.Location, p.Available).
		Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
}

// GetProductByID retrieves a listing by id
func (s *Store) GetProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := s.db.GetContext(ctx, &product, "SELECT * FROM products WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// ProductFilter narrows catalog queries. Query matches name, description and
// location by case-insensitive substring.
type ProductFilter struct {
	Category string
	Query    string
	FarmerID *uuid.UUID
}

// ListProducts retrieves listings matching the filter, newest first.
func (s *Store) ListProducts(ctx context.Context, f ProductFilter) ([]models.Product, error) {
	query := "SELECT * FROM products WHERE 1=1"
	args := []interface{}{}

	if f.Category != "" {
		args = append(args, f.Category)
		query += fmt.Sprintf(" AND category = $%d", len(args))
	}
	if f.Query != "" {
		args = append(args, "%"+f.Query+"%")
		n := len(args)
		query += fmt.Sprintf(" AND (name ILIKE $%d OR description ILIKE $%d OR location ILIKE $%d)", n, n, n)
	}
	if f.FarmerID != nil {
		args = append(args, *f.FarmerID)
		query += fmt.Sprintf(" AND farmer_id = $%d", len(args))
	}

	query += " ORDER BY created_at DESC"

	var products []models.Product
	err := s.db.SelectContext(ctx, &products, query, args...)
	return products, err
}

// UpdateProduct updates the mutable attributes of a listing.
func (s *Store) UpdateProduct(ctx context.Context, p *models.Product) error {
	query := `
		UPDATE products
		SET name = $1, description = $2, category = $3, price = $4, unit = $5,
		    quantity_available = $6, image_url = $7, location = $8, available = $9,
		    updated_at = NOW()
		WHERE id = $10
		RETURNING updated_at`

	err := s.db.QueryRowxContext(ctx, query,
		p.Name, p.Description, p.Category, p.Price, p.Unit,
		p.QuantityAvailable, p.ImageURL, p.Location, p.Available, p.ID).
		Scan(&p.UpdatedAt)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	return err
}

// DeleteProduct removes a listing. Dependent orders cascade at the schema
// level, dependent messages keep a nulled product reference.
func (s *Store) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM products WHERE id = $1", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
