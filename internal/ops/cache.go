package ops

import (
	"context"
	"strings"

	"github.com/hpungsan/shogun/internal/cache"
	"github.com/hpungsan/shogun/internal/errors"
)

// ClearCacheInput contains parameters for the ClearCache operation.
type ClearCacheInput struct {
	CacheKey string // empty clears everything
}

// ClearCacheOutput contains the result of the ClearCache operation.
type ClearCacheOutput struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// ClearCache removes one cached entry, or all of them.
func ClearCache(ctx context.Context, env *Env, input ClearCacheInput) (*ClearCacheOutput, error) {
	if env.Cache == nil {
		return &ClearCacheOutput{Success: true, Message: "Cache disabled"}, nil
	}
	key := strings.TrimSpace(input.CacheKey)
	if err := env.Cache.Clear(ctx, key); err != nil {
		return nil, errors.NewInternal(err)
	}
	msg := "All cache cleared"
	if key != "" {
		msg = "Specific cache cleared"
	}
	return &ClearCacheOutput{Success: true, Message: msg}, nil
}

// CacheStatsOutput contains the result of the CacheStats operation.
type CacheStatsOutput struct {
	Enabled    bool        `json:"enabled"`
	TTLSeconds int         `json:"ttl_seconds"`
	Stats      cache.Stats `json:"stats"`
}

// CacheStats reports what the cache holds.
func CacheStats(ctx context.Context, env *Env) (*CacheStatsOutput, error) {
	if env.Cache == nil {
		return &CacheStatsOutput{}, nil
	}
	st, err := env.Cache.Stats(ctx)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return &CacheStatsOutput{
		Enabled:    true,
		TTLSeconds: int(env.Cache.TTL().Seconds()),
		Stats:      st,
	}, nil
}

// PurgeCacheOutput contains the result of the PurgeCache operation.
type PurgeCacheOutput struct {
	Purged int `json:"purged"`
}

// PurgeCache drops expired entries.
func PurgeCache(ctx context.Context, env *Env) (*PurgeCacheOutput, error) {
	if env.Cache == nil {
		return &PurgeCacheOutput{}, nil
	}
	n, err := env.Cache.PurgeExpired(ctx)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return &PurgeCacheOutput{Purged: n}, nil
}
