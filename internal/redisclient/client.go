package redisclient

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"agromarket/internal/models"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

const productCacheTTL = 5 * time.Minute

type Client struct {
	rdb *redis.Client
}

// NewClient creates a new Redis client
func NewClient(addr, password string, db int) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// GetClient returns the underlying Redis client
func (c *Client) GetClient() *redis.Client {
	return c.rdb
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

// CacheProduct stores a listing in the read-through cache.
func (c *Client) CacheProduct(ctx context.Context, p *models.Product) error {
	data, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, productKey(p.ID), data, productCacheTTL).Err()
}

// GetCachedProduct retrieves a cached listing. Returns nil, nil on a miss.
func (c *Client) GetCachedProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	data, err := c.rdb.Get(ctx, productKey(id)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var product models.Product
	if err := json.Unmarshal(data, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

// InvalidateProduct drops a listing from the cache.
func (c *Client) InvalidateProduct(ctx context.Context, id uuid.UUID) error {
	return c.rdb.Del(ctx, productKey(id)).Err()
}

// IncrUnread bumps the unread-message counter for a receiver.
func (c *Client) IncrUnread(ctx context.Context, receiverID uuid.UUID) error {
	return c.rdb.Incr(ctx, unreadKey(receiverID)).Err()
}

// DecrUnread lowers the unread-message counter, flooring at zero.
func (c *Client) DecrUnread(ctx context.Context, receiverID uuid.UUID) error {
	key := unreadKey(receiverID)
	n, err := c.rdb.Decr(ctx, key).Result()
	if err != nil {
		return err
	}
	if n < 0 {
		return c.rdb.Set(ctx, key, 0, 0).Err()
	}
	return nil
}

// GetUnread reads the unread-message counter. Returns -1 when the counter is
// not present so callers fall back to the database.
func (c *Client) GetUnread(ctx context.Context, receiverID uuid.UUID) (int64, error) {
	n, err := c.rdb.Get(ctx, unreadKey(receiverID)).Int64()
	if err == redis.Nil {
		return -1, nil
	}
	if err != nil {
		return -1, err
	}
	return n, nil
}

// SetUnread seeds the unread-message counter from the database count.
func (c *Client) SetUnread(ctx context.Context, receiverID uuid.UUID, count int64) error {
	return c.rdb.Set(ctx, unreadKey(receiverID), count, 0).Err()
}

func productKey(id uuid.UUID) string {
	return fmt.Sprintf("product:%s", id)
}

func unreadKey(id uuid.UUID) string {
	return fmt.Sprintf("unread:%s", id)
}
