package service

import (
	"context"
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

// CatalogService handles product listings
type CatalogService struct {
	store          *store.Store
	redis          *redisclient.Client
	eventPublisher *broker.EventPublisher
	logger         *zap.Logger
}

// NewCatalogService creates a new catalog service
func NewCatalogService(store *store.Store, redis *redisclient.Client, eventPublisher *broker.EventPublisher) *CatalogService {
	return &CatalogService{
		store:          store,
		redis:          redis,
		eventPublisher: eventPublisher,
		logger:         util.GetLogger(),
	}
}

// ProductRequest carries listing attributes for create and update.
type ProductRequest struct {
	Name              string   `json:"name" binding:"required"`
	Description       *string  `json:"description,omitempty"`
	Category          string   `json:"category" binding:"required"`
	Price             float64  `json:"price"`
	Unit              string   `json:"unit,omitempty"`
	QuantityAvailable float64  `json:"quantity_available"`
	ImageURL          *string  `json:"image_url,omitempty"`
	Location          *string  `json:"location,omitempty"`
	Available         *bool    `json:"available,omitempty"`
}

// CatalogQuery narrows a catalog listing request.
type CatalogQuery struct {
	Category string
	Query    string
	Mine     bool
}

func validateProductRequest(req *ProductRequest) error {
	if strings.TrimSpace(req.Name) == "" {
		return validationError("name is required")
	}
	if strings.TrimSpace(req.Category) == "" {
		return validationError("category is required")
	}
	if req.Price < 0 {
		return validationError("price must not be negative")
	}
	if req.QuantityAvailable < 0 {
		return validationError("quantity_available must not be negative")
	}
	return nil
}

// CreateProduct records a new listing owned by the requester. Only farmers
// may list.
func (s *CatalogService) CreateProduct(ctx context.Context, requester policy.Requester, req *ProductRequest) (*models.Product, error) {
	ctx, span := util.StartSpan(ctx, "CatalogService.CreateProduct")
	defer span.End()

	if err := validateProductRequest(req); err != nil {
		return nil, err
	}

	product := &models.Product{
		FarmerID:          requester.ID,
		Name:              req.Name,
		Description:       req.Description,
		Category:          req.Category,
		Price:             req.Price,
		Unit:              req.Unit,
		QuantityAvailable: req.QuantityAvailable,
		ImageURL:          req.ImageURL,
		Location:          req.Location,
		Available:         true,
	}
	if product.Unit == "" {
		product.Unit = "kg"
	}
	if req.Available != nil {
		product.Available = *req.Available
	}

	if !policy.CanInsertProduct(requester, product) {
		util.PolicyDenialsTotal.WithLabelValues("products", "insert").Inc()
		return nil, ErrNotPermitted
	}

	if err := s.store.CreateProduct(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.logger.Info("Product listed",
		zap.String("product_id", product.ID.String()),
		zap.String("farmer_id", product.FarmerID.String()))
	s.publishProductUpdated(ctx, product)

	return product, nil
}

// GetProduct retrieves a single listing through the read-through cache,
// subject to the visibility predicate.
func (s *CatalogService) GetProduct(ctx context.Context, requester policy.Requester, id uuid.UUID) (*models.Product, error) {
	product, err := s.redis.GetCachedProduct(ctx, id)
	if err != nil {
		s.logger.Warn("Product cache read failed", zap.Error(err))
	}
	if product != nil {
		util.ProductCacheHitsTotal.Inc()
	} else {
		util.ProductCacheMissesTotal.Inc()
		product, err = s.store.GetProductByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if err := s.redis.CacheProduct(ctx, product); err != nil {
			s.logger.Warn("Product cache write failed", zap.Error(err))
		}
	}

	if !policy.CanReadProduct(requester, product) {
		return nil, store.ErrNotFound
	}
	return product, nil
}

// ListProducts returns the catalog subset visible to the requester, narrowed
// by category equality and case-insensitive substring search.
func (s *CatalogService) ListProducts(ctx context.Context, requester policy.Requester, q CatalogQuery) ([]models.Product, error) {
	filter := store.ProductFilter{
		Category: q.Category,
		Query:    q.Query,
	}
	if q.Mine {
		id := requester.ID
		filter.FarmerID = &id
	}

	products, err := s.store.ListProducts(ctx, filter)
	if err != nil {
		return nil, err
	}
	return policy.FilterProducts(requester, products), nil
}

// UpdateProduct updates a listing owned by the requester.
func (s *CatalogService) UpdateProduct(ctx context.Context, requester policy.Requester, id uuid.UUID, req *ProductRequest) (*models.Product, error) {
	ctx, span := util.StartSpan(ctx, "CatalogService.UpdateProduct")
	defer span.End()

	if err := validateProductRequest(req); err != nil {
		return nil, err
	}

	old, err := s.store.GetProductByID(ctx, id)
	if err != nil {
		return nil, err
	}

	updated := *old
	updated.Name = req.Name
	updated.Description = req.Description
	updated.Category = req.Category
	updated.Price = req.Price
	updated.QuantityAvailable = req.QuantityAvailable
	updated.ImageURL = req.ImageURL
	updated.Location = req.Location
	if req.Unit != "" {
		updated.Unit = req.Unit
	}
	if req.Available != nil {
		updated.Available = *req.Available
	}

	if !policy.CanUpdateProduct(requester, old, &updated) {
		util.PolicyDenialsTotal.WithLabelValues("products", "update").Inc()
		return nil, ErrNotPermitted
	}

	if err := s.store.UpdateProduct(ctx, &updated); err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	s.publishProductUpdated(ctx, &updated)

	return &updated, nil
}

// DeleteProduct removes a listing owned by the requester. Orders against it
// cascade away at the schema level.
func (s *CatalogService) DeleteProduct(ctx context.Context, requester policy.Requester, id uuid.UUID) error {
	ctx, span := util.StartSpan(ctx, "CatalogService.DeleteProduct")
	defer span.End()

	product, err := s.store.GetProductByID(ctx, id)
	if err != nil {
		return err
	}

	if !policy.CanDeleteProduct(requester, product) {
		util.PolicyDenialsTotal.WithLabelValues("products", "delete").Inc()
		return ErrNotPermitted
	}

	if err := s.store.DeleteProduct(ctx, id); err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	event := &models.ProductDeletedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeProductDeleted,
			Timestamp: time.Now(),
		},
		ProductID: product.ID,
		FarmerID:  product.FarmerID,
	}
	if err := s.eventPublisher.PublishProductDeleted(ctx, event); err != nil {
		s.logger.Error("Failed to publish ProductDeleted event", zap.Error(err))
	}

	return nil
}

func (s *CatalogService) publishProductUpdated(ctx context.Context, product *models.Product) {
	event := &models.ProductUpdatedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeProductUpdated,
			Timestamp: time.Now(),
		},
		ProductID: product.ID,
		FarmerID:  product.FarmerID,
	}
	if err := s.eventPublisher.PublishProductUpdated(ctx, event); err != nil {
		s.logger.Error("Failed to publish ProductUpdated event", zap.Error(err))
	}
}
