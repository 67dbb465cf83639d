package ports

import (
	"context"
	"time"
)

// CacheRepository is a read-through byte cache in front of GET-by-id lookups.
// Implementations degrade to the database on failure, never fail a request.
type CacheRepository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
