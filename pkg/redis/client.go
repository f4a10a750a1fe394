package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/redis/go-redis/v9"
)

// Config holds Redis connection configuration
type Config struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// Client wraps the Redis client with logging and lifecycle hooks
type Client struct {
	cfg    Config
	rdb    *redis.Client
	logger ectologger.Logger
}

// NewClient creates a Redis client. The connection is verified by Start.
func NewClient(cfg Config, logger ectologger.Logger) *Client {
	return &Client{
		cfg: cfg,
		rdb: redis.NewClient(&redis.Options{
			Addr:     cfg.Addr(),
			Password: cfg.Password,
			DB:       cfg.DB,
		}),
		logger: logger,
	}
}

// Addr returns the host:port address of the server.
func (cfg Config) Addr() string {
	return fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
}

func (c *Client) GetName() string {
	return "redis"
}

func (c *Client) DependsOn() []string {
	return nil
}

// Start checks that Redis is reachable.
func (c *Client) Start(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := c.rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to connect to Redis at %s: %w", c.cfg.Addr(), err)
	}

	c.logger.WithContext(ctx).Infof("Connected to Redis at %s", c.cfg.Addr())
	return nil
}

// Stop closes the Redis connection
func (c *Client) Stop(ctx context.Context) error {
	return c.rdb.Close()
}

// Redis returns the underlying Redis client
func (c *Client) Redis() *redis.Client {
	return c.rdb
}
