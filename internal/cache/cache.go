// Package cache stores compiled CSS with a time-to-live.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/segmentio/fasthash/fnv1a"
	"golang.org/x/sync/singleflight"

	"github.com/hpungsan/shogun/internal/animation"
	"github.com/hpungsan/shogun/internal/metrics"
)

// DefaultTTL is used when a Cache is built with a non-positive TTL.
const DefaultTTL = time.Hour

// Prefix namespaces cache entries in shared stores.
const Prefix = "shogun_css_"

// Key derives the cache key of an animation from its name and resolved
// parameters: 16 hex characters of FNV-1a 64 over the canonical form.
func Key(name string, params animation.Params) string {
	return fmt.Sprintf("%016x", fnv1a.HashString64(name+params.Canonical()))
}

// Stats describes what a store holds.
type Stats struct {
	Entries int   `json:"entries"`
	Expired int   `json:"expired"`
	Bytes   int64 `json:"bytes"`
}

// Store is a TTL key/value backend for compiled CSS.
type Store interface {
	// Get reports found=false for missing and expired keys.
	Get(ctx context.Context, key string) (css string, found bool, err error)
	Set(ctx context.Context, key, css string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	// Clear removes every entry.
	Clear(ctx context.Context) error
	Stats(ctx context.Context) (Stats, error)
	// PurgeExpired drops expired entries and returns how many it dropped.
	PurgeExpired(ctx context.Context) (int, error)
}

// Cache fronts a Store. Backend failures are logged and treated as misses,
// so a broken store degrades to recompiling rather than failing requests.
type Cache struct {
	store   Store
	ttl     time.Duration
	metrics *metrics.Metrics
	logger  log.Logger
	group   singleflight.Group
}

// New returns a Cache over store. m and logger may be nil.
func New(store Store, ttl time.Duration, m *metrics.Metrics, logger log.Logger) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &Cache{store: store, ttl: ttl, metrics: m, logger: logger}
}

// TTL returns the lifetime given to new entries.
func (c *Cache) TTL() time.Duration {
	return c.ttl
}

// Get returns the cached CSS for key. Errors count as misses.
func (c *Cache) Get(ctx context.Context, key string) (string, bool) {
	css, found, err := c.store.Get(ctx, key)
	if err != nil {
		c.fail("get", key, err)
		found = false
	}
	c.count(found)
	return css, found
}

// Set stores css under key. Errors are logged and dropped.
func (c *Cache) Set(ctx context.Context, key, css string) {
	if err := c.store.Set(ctx, key, css, c.ttl); err != nil {
		c.fail("set", key, err)
	}
}

// GetOrCompute returns the cached CSS for key, or calls compute and caches
// its result. Concurrent misses on the same key share one compute call.
// Empty results are returned but not cached. cached reports a hit.
func (c *Cache) GetOrCompute(ctx context.Context, key string, compute func() (string, error)) (css string, cached bool, err error) {
	if css, ok := c.Get(ctx, key); ok {
		return css, true, nil
	}
	v, err, _ := c.group.Do(key, func() (any, error) {
		css, err := compute()
		if err != nil {
			return "", err
		}
		if css != "" {
			c.Set(ctx, key, css)
		}
		return css, nil
	})
	if err != nil {
		return "", false, err
	}
	return v.(string), false, nil
}

// Clear removes key, or every entry when key is empty.
func (c *Cache) Clear(ctx context.Context, key string) error {
	var err error
	if key == "" {
		err = c.store.Clear(ctx)
	} else {
		err = c.store.Delete(ctx, key)
	}
	if err != nil {
		c.fail("clear", key, err)
	}
	return err
}

// Stats reports the store's contents.
func (c *Cache) Stats(ctx context.Context) (Stats, error) {
	return c.store.Stats(ctx)
}

// PurgeExpired drops expired entries from the store.
func (c *Cache) PurgeExpired(ctx context.Context) (int, error) {
	n, err := c.store.PurgeExpired(ctx)
	if err != nil {
		c.fail("purge", "", err)
		return 0, err
	}
	level.Debug(c.logger).Log("msg", "purged expired cache entries", "count", n)
	return n, nil
}

func (c *Cache) count(hit bool) {
	if c.metrics == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	c.metrics.CacheRequests.WithLabelValues(result).Inc()
}

func (c *Cache) fail(op, key string, err error) {
	level.Warn(c.logger).Log("msg", "cache backend error", "op", op, "key", key, "err", err)
	if c.metrics != nil {
		c.metrics.CacheErrors.WithLabelValues(op).Inc()
	}
}
