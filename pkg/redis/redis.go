package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kcastreetfood/reservation-backend/config"
	"github.com/kcastreetfood/reservation-backend/pkg/logger"
	"github.com/redis/go-redis/v9"
)

const blacklistPrefix = "blacklist:"

// Client is the token blacklist backed by Redis
type Client struct {
	rdb *redis.Client
}

// New connects to Redis and verifies the connection with a ping
func New(cfg *config.RedisConfig) (*Client, error) {
	logger.Info("Initializing Redis connection", map[string]interface{}{
		"host": cfg.Host,
		"port": cfg.Port,
		"db":   cfg.DB,
	})

	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Error("Failed to connect to Redis", err, map[string]interface{}{
			"host": cfg.Host,
			"port": cfg.Port,
		})
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("Redis connection established successfully")
	return &Client{rdb: rdb}, nil
}

// NewFromClient wraps an existing go-redis client
func NewFromClient(rdb *redis.Client) *Client {
	return &Client{rdb: rdb}
}

func (c *Client) Close() error {
	logger.Info("Closing Redis connection")
	return c.rdb.Close()
}

func blacklistKey(tokenID string) string {
	return blacklistPrefix + tokenID
}

// BlacklistToken revokes tokenID until expiry elapses
func (c *Client) BlacklistToken(ctx context.Context, tokenID string, expiry time.Duration) error {
	if expiry <= 0 {
		// already expired, nothing to revoke
		return nil
	}

	logger.Debug("Adding token to blacklist", map[string]interface{}{
		"expiry": expiry.String(),
	})

	if err := c.rdb.Set(ctx, blacklistKey(tokenID), "revoked", expiry).Err(); err != nil {
		logger.Error("Failed to blacklist token", err)
		return err
	}

	logger.Debug("Token successfully blacklisted")
	return nil
}

// RevokeOnce blacklists tokenID with SETNX and reports whether this call did it.
// A token that is already revoked or already expired yields false.
func (c *Client) RevokeOnce(ctx context.Context, tokenID string, expiry time.Duration) (bool, error) {
	if expiry <= 0 {
		return false, nil
	}

	claimed, err := c.rdb.SetNX(ctx, blacklistKey(tokenID), "revoked", expiry).Result()
	if err != nil {
		logger.Error("Failed to revoke token", err)
		return false, err
	}
	return claimed, nil
}

// IsTokenBlacklisted reports whether tokenID was revoked
func (c *Client) IsTokenBlacklisted(ctx context.Context, tokenID string) (bool, error) {
	val, err := c.rdb.Get(ctx, blacklistKey(tokenID)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		logger.Error("Failed to check token blacklist", err)
		return false, err
	}
	return val == "revoked", nil
}
