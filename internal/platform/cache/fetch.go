package cache

import (
	"context"
	"fmt"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/fpl-creator-match/internal/platform/metrics"
)

// Class names a TTL policy; it is also the metrics label.
type Class struct {
	Name string
	TTL  time.Duration
}

func (c Class) Key(parts ...any) string {
	key := c.Name
	for _, part := range parts {
		key += ":" + fmt.Sprint(part)
	}
	return key
}

// GetOrFetch serves key from store while it is fresh and otherwise calls
// fetcher and stores the result under class.TTL. Fetch errors are not cached.
// Concurrent misses may each call fetcher unless the store collapses them.
func GetOrFetch[T any](ctx context.Context, store Store, class Class, key string, fetcher func(context.Context) (T, error)) (T, error) {
	var zero T
	if fetcher == nil {
		return zero, fmt.Errorf("fetcher is required")
	}
	if store == nil {
		return fetcher(ctx)
	}

	if raw, ok := store.Get(ctx, key); ok {
		if value, ok := decode[T](raw); ok {
			metrics.CacheRequestsTotal.WithLabelValues(class.Name, "hit").Inc()
			return value, nil
		}
	}
	metrics.CacheRequestsTotal.WithLabelValues(class.Name, "miss").Inc()

	if l, ok := store.(loader); ok {
		raw, err := l.GetOrLoad(ctx, key, class.TTL, func(ctx context.Context) (any, error) {
			return fetcher(ctx)
		})
		if err != nil {
			return zero, err
		}
		if value, ok := decode[T](raw); ok {
			return value, nil
		}
		return zero, fmt.Errorf("cache %s: unexpected value type %T", class.Name, raw)
	}

	value, err := fetcher(ctx)
	if err != nil {
		return zero, err
	}
	store.Set(ctx, key, value, class.TTL)
	return value, nil
}

// loader is implemented by stores that collapse concurrent misses.
type loader interface {
	GetOrLoad(ctx context.Context, key string, ttl time.Duration, load func(context.Context) (any, error)) (any, error)
}

// decode accepts the value as stored in process or the encoded bytes a
// remote backend hands back.
func decode[T any](raw any) (T, bool) {
	var zero T
	switch v := raw.(type) {
	case T:
		return v, true
	case []byte:
		var out T
		if err := sonic.Unmarshal(v, &out); err != nil {
			return zero, false
		}
		return out, true
	default:
		return zero, false
	}
}
