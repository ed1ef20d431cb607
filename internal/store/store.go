package store

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	"agromarket/internal/models"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

//go:embed schema.sql
var schemaSQL string

// ErrNotFound is returned when a row does not exist. Callers treat it the
// same as a row hidden by policy.
var ErrNotFound = fmt.Errorf("record not found")

type Store struct {
	db *sqlx.DB
}

// NewStore creates a new database store
func NewStore(databaseURL string) (*Store, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{db: db}, nil
}

// ApplySchema creates tables, constraints and indexes if they do not exist.
func (s *Store) ApplySchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// GetDB returns the underlying database connection
func (s *Store) GetDB() *sqlx.DB {
	return s.db
}

// CreateProfile inserts a profile row for a principal.
func (s *Store) CreateProfile(ctx context.Context, p *models.Profile) error {
	query := `
		INSERT INTO profiles (id, role, full_name, phone, location, latitude, longitude, bio, avatar_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at`

	return s.db.QueryRowxContext(ctx, query,
		p.ID, p.Role, p.FullName, p.Phone, p.Location, p.Latitude, p.Longitude, p.Bio, p.AvatarURL).
		Scan(&p.CreatedAt, &p.UpdatedAt)
}

// GetProfileByID retrieves a profile by principal id
func (s *Store) GetProfileByID(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	var profile models.Profile
	err := s.db.GetContext(ctx, &profile, "SELECT * FROM profiles WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// GetProfilesByRole retrieves all profiles with the given role
func (s *Store) GetProfilesByRole(ctx context.Context, role string) ([]models.Profile, error) {
	var profiles []models.Profile
	err := s.db.SelectContext(ctx, &profiles,
		"SELECT * FROM profiles WHERE role = $1 ORDER BY full_name", role)
	return profiles, err
}

// UpdateProfile updates the mutable attributes of a profile.
func (s *Store) UpdateProfile(ctx context.Context, p *models.Profile) error {
	query := `
		UPDATE profiles
		SET full_name = $1, phone = $2, location = $3, latitude = $4,
		    longitude = $5, bio = $6, avatar_url = $7, updated_at = NOW()
		WHERE id = $8
		RETURNING updated_at`

	err := s.db.QueryRowxContext(ctx, query,
		p.FullName, p.Phone, p.Location, p.Latitude, p.Longitude, p.Bio, p.AvatarURL, p.ID).
		Scan(&p.UpdatedAt)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	return err
}
