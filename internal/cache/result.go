package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/interview-crawler/internal/model"
)

// DefaultPrefix namespaces crawl result keys.
const DefaultPrefix = "crawl:questions:"

// digest hashes the category with the sorted keywords and sorted target
// sites. MaxQuestions is not part of the key.
func digest(req model.CrawlRequest) string {
	h := sha256.New()
	h.Write([]byte(req.Category))
	h.Write([]byte{0})
	h.Write([]byte(strings.Join(sortedNonEmpty(req.Keywords), "\x1f")))
	h.Write([]byte{0})
	h.Write([]byte(strings.Join(sortedNonEmpty(req.TargetSites), "\x1f")))
	return hex.EncodeToString(h.Sum(nil))
}

func sortedNonEmpty(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	sort.Strings(out)
	return out
}

// ResultCache stores CrawlResults as JSON in a Store.
type ResultCache struct {
	store  Store
	ttl    time.Duration
	prefix string
}

// NewResultCache wraps store. An empty prefix uses DefaultPrefix.
func NewResultCache(store Store, ttl time.Duration, prefix string) *ResultCache {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &ResultCache{store: store, ttl: ttl, prefix: prefix}
}

// Key returns the fingerprint of req under this cache's prefix.
func (c *ResultCache) Key(req model.CrawlRequest) string {
	return c.prefix + digest(req)
}

// Get returns the cached result for key, or nil. Read and decode failures
// are logged and treated as a miss.
func (c *ResultCache) Get(ctx context.Context, key string) *model.CrawlResult {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		zap.L().Warn("cache: read failed, treating as miss",
			zap.String("fingerprint", key),
			zap.Error(err),
		)
		return nil
	}
	if data == nil {
		return nil
	}
	var res model.CrawlResult
	if err := json.Unmarshal(data, &res); err != nil {
		zap.L().Warn("cache: decode failed, treating as miss",
			zap.String("fingerprint", key),
			zap.Error(err),
		)
		return nil
	}
	return &res
}

// Set stores result under key for the cache TTL. The cached flag is never
// persisted.
func (c *ResultCache) Set(ctx context.Context, key string, result *model.CrawlResult) error {
	return c.SetTTL(ctx, key, result, c.ttl)
}

// SetTTL stores result under key for ttl.
func (c *ResultCache) SetTTL(ctx context.Context, key string, result *model.CrawlResult, ttl time.Duration) error {
	stored := *result
	stored.Cached = false
	data, err := json.Marshal(&stored)
	if err != nil {
		return eris.Wrap(err, "cache: marshal result")
	}
	if err := c.store.Set(ctx, key, data, ttl); err != nil {
		return eris.Wrapf(err, "cache: store %s", key)
	}
	return nil
}

// TTL returns the lifetime of entries stored with Set.
func (c *ResultCache) TTL() time.Duration {
	return c.ttl
}

// Purge deletes every key under prefix, or under the cache prefix when
// prefix is empty.
func (c *ResultCache) Purge(ctx context.Context, prefix string) (int, error) {
	if prefix == "" {
		prefix = c.prefix
	}
	n, err := c.store.DeleteByPrefix(ctx, prefix)
	if err != nil {
		return n, eris.Wrapf(err, "cache: purge %s", prefix)
	}
	zap.L().Info("cache: purged", zap.String("prefix", prefix), zap.Int("count", n))
	return n, nil
}

// PurgeExpired sweeps expired entries on stores that keep them.
func (c *ResultCache) PurgeExpired(ctx context.Context) (int, error) {
	exp, ok := c.store.(Expirer)
	if !ok {
		return 0, nil
	}
	n, err := exp.DeleteExpired(ctx)
	return n, eris.Wrap(err, "cache: purge expired")
}

// Close closes the underlying store.
func (c *ResultCache) Close() error {
	return c.store.Close()
}
