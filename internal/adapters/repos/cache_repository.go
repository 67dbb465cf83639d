package repos

import (
	"context"
	"fmt"
	"time"

	"github.com/mjolner/svc-commerce-events/internal/config"
	"github.com/mjolner/svc-commerce-events/internal/domain"
	"github.com/mjolner/svc-commerce-events/internal/infrastructure"
)

type (
	// CacheRepository fronts GET-by-id lookups with KeyDB. A broken cache is
	// reported as unavailable so callers can fall through to the database.
	CacheRepository struct {
		client *infrastructure.KeydbClient
		cfg    config.CacheConfig
		logger infrastructure.Logger
	}
)

func NewCacheRepository(client *infrastructure.KeydbClient, cfg config.CacheConfig, logger infrastructure.Logger) *CacheRepository {
	return &CacheRepository{
		client: client,
		cfg:    cfg,
		logger: logger.WithComponent("cache"),
	}
}

// Get returns the cached bytes, or nil on a miss.
func (r *CacheRepository) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := r.client.Get(ctx, key)
	if err != nil {
		if infrastructure.IsMiss(err) {
			return nil, nil
		}

		r.logger.Warn().Err(err).Str("key", key).Msg("cache read failed")

		return nil, fmt.Errorf("%w: %v", domain.ErrCacheUnavailable, err)
	}

	return value, nil
}

func (r *CacheRepository) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := r.client.Set(ctx, key, value, ttl); err != nil {
		r.logger.Warn().Err(err).Str("key", key).Msg("cache write failed")

		return fmt.Errorf("%w: %v", domain.ErrCacheUnavailable, err)
	}

	return nil
}

func (r *CacheRepository) Delete(ctx context.Context, key string) error {
	if err := r.client.Delete(ctx, key); err != nil {
		r.logger.Warn().Err(err).Str("key", key).Msg("cache invalidation failed")

		return fmt.Errorf("%w: %v", domain.ErrCacheUnavailable, err)
	}

	return nil
}
