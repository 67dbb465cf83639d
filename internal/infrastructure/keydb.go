package infrastructure

import (
	"context"
	"time"

	"github.com/mjolner/svc-commerce-events/internal/config"
	"github.com/redis/go-redis/v9"
)

type (
	// KeydbClient wraps the Redis-protocol client used for read caching.
	KeydbClient struct {
		client *redis.Client
		cfg    config.CacheConfig
		logger Logger
	}
)

func NewKeyDBClient(cfg config.CacheConfig, logger Logger) *KeydbClient {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		PoolTimeout:  cfg.PoolTimeout,
		MaxRetries:   cfg.MaxRetries,
	})

	return &KeydbClient{
		client: client,
		cfg:    cfg,
		logger: logger.WithComponent("keydb"),
	}
}

func (k *KeydbClient) Ping(ctx context.Context) error {
	return k.client.Ping(ctx).Err()
}

func (k *KeydbClient) Get(ctx context.Context, key string) ([]byte, error) {
	return k.client.Get(ctx, key).Bytes()
}

func (k *KeydbClient) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = k.cfg.DefaultExpiry
	}

	return k.client.Set(ctx, key, value, ttl).Err()
}

func (k *KeydbClient) Delete(ctx context.Context, keys ...string) error {
	return k.client.Del(ctx, keys...).Err()
}

// IsMiss reports whether err signals an absent key rather than a cache failure.
func IsMiss(err error) bool {
	return err == redis.Nil
}

func (k *KeydbClient) Close() error {
	return k.client.Close()
}
