package cache

import (
	"context"
	"time"

	"github.com/matzehuels/skyline/pkg/observability"
)

// GetOrRender returns the cached bytes for key, or calls render, stores its
// result with ttl and returns it. kind labels the artifact for the cache
// hooks. Backend read and write failures fall through to render; only
// render's own error is returned.
func GetOrRender(ctx context.Context, c Cache, key, kind string, ttl time.Duration, render func() ([]byte, error)) ([]byte, error) {
	hooks := observability.Cache()

	if data, ok, err := c.Get(ctx, key); err == nil && ok {
		hooks.OnCacheHit(ctx, kind)
		return data, nil
	}
	hooks.OnCacheMiss(ctx, kind)

	data, err := render()
	if err != nil {
		return nil, err
	}
	if err := c.Set(ctx, key, data, ttl); err == nil {
		hooks.OnCacheSet(ctx, kind, len(data))
	}
	return data, nil
}
