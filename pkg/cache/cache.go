package cache

import (
	"context"
	"time"
)

// Cache defines the interface for caching services.
// Get returns found=false, not an error, when the key does not exist.
type Cache interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Delete(ctx context.Context, key string) error
}
