package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rentnest/rentnest-server/internal/config"
)

const presenceTTL = 90 * time.Second

// Client wraps Redis for presence tracking and small lookups.
type Client struct {
	rdb    *redis.Client
	prefix string
}

func NewClient(cfg *config.Config) *Client {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	prefix := cfg.Redis.Prefix
	if prefix == "" {
		prefix = "rentnest"
	}
	return &Client{rdb: rdb, prefix: prefix}
}

func (c *Client) Redis() *redis.Client { return c.rdb }

func (c *Client) SetPresence(ctx context.Context, userID string, online bool) error {
	key := c.prefix + ":presence:" + userID
	if !online {
		return c.rdb.Del(ctx, key).Err()
	}
	return c.rdb.Set(ctx, key, "1", presenceTTL).Err()
}

func (c *Client) IsOnline(ctx context.Context, userID string) (bool, error) {
	n, err := c.rdb.Exists(ctx, c.prefix+":presence:"+userID).Result()
	return n > 0, err
}

func (c *Client) Close() error { return c.rdb.Close() }
