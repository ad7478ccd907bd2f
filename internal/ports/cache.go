package ports

import (
	"context"
	"time"
)

// Cache is a small key/value cache with TTLs (Redis in production, an
// in-memory map in tests and single-node deploys).
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, expiration time.Duration) error
	Delete(ctx context.Context, key string) error
	Ping() error
	Close() error
}
