package cache

import (
	"context"
	"time"

	"github.com/matzehuels/flowmap/pkg/observability"
)

// Observe wraps c so that reads and writes are reported to the cache hooks
// registered with the observability package. The hooks are looked up on
// every call, so registering them after wrapping still takes effect.
func Observe(c Cache) Cache {
	if c == nil {
		c = NewNullCache()
	}
	if _, ok := c.(observed); ok {
		return c
	}
	return observed{Cache: c}
}

type observed struct {
	Cache
}

func (o observed) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, hit, err := o.Cache.Get(ctx, key)
	if err == nil {
		if hit {
			observability.Cache().OnCacheHit(ctx, KeyType(key))
		} else {
			observability.Cache().OnCacheMiss(ctx, KeyType(key))
		}
	}
	return data, hit, err
}

func (o observed) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	err := o.Cache.Set(ctx, key, data, ttl)
	if err == nil {
		observability.Cache().OnCacheSet(ctx, KeyType(key), len(data))
	}
	return err
}
