// Package cache stores crawl results under request fingerprints with a TTL.
package cache

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/interview-crawler/internal/config"
)

// Store is a TTL key-value store for serialized crawl results.
type Store interface {
	// Get returns the value for key, or nil, nil when absent or expired.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// DeleteByPrefix removes every key starting with prefix and returns
	// how many were removed.
	DeleteByPrefix(ctx context.Context, prefix string) (int, error)
	Close() error
}

// Open creates the Store selected by cfg.Driver.
func Open(ctx context.Context, cfg config.CacheConfig) (Store, error) {
	switch cfg.Driver {
	case "", "memory":
		return NewMemory(), nil
	case "redis":
		return NewRedis(ctx, RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
	case "sqlite":
		return NewSQLite(ctx, cfg.SQLitePath)
	case "postgres":
		return NewPostgres(ctx, cfg.DatabaseURL, nil)
	default:
		return nil, eris.Errorf("cache: unknown driver %q", cfg.Driver)
	}
}

// Expirer is implemented by stores that keep expired rows until swept.
type Expirer interface {
	DeleteExpired(ctx context.Context) (int, error)
}
