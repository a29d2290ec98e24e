// Package cache is the read-through cache used by list and detail endpoints.
// Entries are JSON encoded; a cache failure never fails the request.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/inkwell/blog/pkg/config"
	"github.com/inkwell/blog/pkg/logctx"
	"github.com/inkwell/blog/pkg/metrics"
)

// ErrMiss is returned by Get when the key is absent or expired.
var ErrMiss = errors.New("cache miss")

type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

func New(lc fx.Lifecycle, cfg *config.Config, log *zap.SugaredLogger) (Cache, error) {
	switch cfg.Cache.Driver {
	case config.CacheDriverRedis:
		r := NewRedis(cfg.Cache)
		lc.Append(fx.Hook{
			OnStart: func(ctx context.Context) error {
				if err := r.Ping(ctx); err != nil {
					// keep booting; reads fall through to the database
					log.Warnw("redis cache unreachable", "addr", cfg.Cache.Addr, "err", err)
				}
				return nil
			},
			OnStop: func(ctx context.Context) error { return r.Close() },
		})
		log.Infow("cache driver selected", "driver", cfg.Cache.Driver, "addr", cfg.Cache.Addr)
		return r, nil
	case config.CacheDriverMemory, "":
		log.Infow("cache driver selected", "driver", config.CacheDriverMemory)
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown cache driver %q", cfg.Cache.Driver)
	}
}

var Module = fx.Options(
	fx.Provide(New),
)

// Remember returns the cached value under key, or calls load and stores its
// result for ttl. Cache errors are logged and otherwise ignored.
func Remember[T any](ctx context.Context, c Cache, log *zap.SugaredLogger, key string, ttl time.Duration, load func() (T, error)) (T, error) {
	family := keyFamily(key)
	if raw, err := c.Get(ctx, key); err == nil {
		var v T
		if err := json.Unmarshal(raw, &v); err == nil {
			metrics.CacheLookups.WithLabelValues(family, "hit").Inc()
			return v, nil
		}
		logctx.FromCtx(ctx, log).Warnw("cache_decode_failed", "key", key)
	} else if !errors.Is(err, ErrMiss) {
		logctx.FromCtx(ctx, log).Warnw("cache_get_failed", "key", key, "err", err)
	}
	metrics.CacheLookups.WithLabelValues(family, "miss").Inc()

	v, err := load()
	if err != nil {
		return v, err
	}
	raw, err := json.Marshal(v)
	if err != nil {
		logctx.FromCtx(ctx, log).Warnw("cache_encode_failed", "key", key, "err", err)
		return v, nil
	}
	if err := c.Set(ctx, key, raw, ttl); err != nil {
		logctx.FromCtx(ctx, log).Warnw("cache_set_failed", "key", key, "err", err)
	}
	return v, nil
}

// Invalidate deletes keys, logging instead of failing.
func Invalidate(ctx context.Context, c Cache, log *zap.SugaredLogger, keys ...string) {
	if err := c.Delete(ctx, keys...); err != nil {
		logctx.FromCtx(ctx, log).Warnw("cache_invalidate_failed", "keys", keys, "err", err)
	}
}

// keyFamily strips the trailing id so metrics stay low-cardinality:
// post_tag_0192 -> post_tag, post_tags_list -> post_tags_list.
func keyFamily(key string) string {
	if strings.HasSuffix(key, "_list") {
		return key
	}
	if i := strings.LastIndex(key, "_"); i > 0 {
		return key[:i]
	}
	return key
}
