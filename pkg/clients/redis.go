package clients

import (
	"context"

	"github.com/DRSN-tech/catalog-backend/internal/cfg"
	"github.com/DRSN-tech/catalog-backend/pkg/e"
	r "github.com/redis/go-redis/v9"
)

// RedisClient — соединение с Redis для кэша категорий.
type RedisClient struct {
	Client *r.Client
}

func NewRedisClient(cfg *cfg.RedisCfg) *RedisClient {
	return &RedisClient{
		Client: r.NewClient(&r.Options{
			Addr:         cfg.Addr,
			Username:     cfg.User,
			Password:     cfg.Password,
			DB:           cfg.DB,
			MaxRetries:   cfg.MaxRetries,
			DialTimeout:  cfg.DialTimeout,
			ReadTimeout:  cfg.Timeout,
			WriteTimeout: cfg.Timeout,
		}),
	}
}

// Ping проверяет доступность сервера. Вызывается при старте, чтобы не запускаться без кэша.
func (c *RedisClient) Ping(ctx context.Context) error {
	const op = "RedisClient.Ping"

	if err := c.Client.Ping(ctx).Err(); err != nil {
		return e.Wrap(op, err)
	}

	return nil
}

func (c *RedisClient) Close() error {
	const op = "RedisClient.Close"

	if err := c.Client.Close(); err != nil {
		return e.Wrap(op, err)
	}

	return nil
}
