package grpc

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const defaultSetTimeout = 5 * time.Second

// addTTLJitter adds up to ±15s random jitter to TTL to avoid mass expiration.
func addTTLJitter(ttl time.Duration) time.Duration {
	if ttl <= 30*time.Second {
		return ttl
	}
	jitter := time.Duration(rand.Intn(30)-15) * time.Second
	return ttl + jitter
}

// responseCache is a read-through cache of encoded responses. Keys carry the
// dataset revision, so a stored entry never goes stale and is only refilled
// after it expires.
type responseCache struct {
	store        Cacher
	group        singleflight.Group
	ttl          time.Duration
	fetchTimeout time.Duration
	logger       *zap.Logger
}

func newResponseCache(store Cacher, ttl time.Duration, logger *zap.Logger) *responseCache {
	return &responseCache{store: store, ttl: ttl, fetchTimeout: defaultGRPCTimeout, logger: logger}
}

// fetch returns the value under key, calling fn at most once per key across
// concurrent misses.
func (c *responseCache) fetch(ctx context.Context, key string, fn func(ctx context.Context) ([]byte, error)) ([]byte, error) {
	if c.store == nil {
		return fn(ctx)
	}

	var cached []byte
	err := c.store.Get(ctx, key, &cached)
	switch {
	case err == nil:
		c.logger.Debug("cache hit", zap.String("key", key))
		return cached, nil
	case errors.Is(err, redis.Nil):
		c.logger.Debug("cache miss", zap.String("key", key))
	default:
		c.logger.Warn("cache get error (treating as miss)", zap.String("key", key), zap.Error(err))
	}

	v, err, shared := c.group.Do(key, func() (any, error) {
		// detached from the caller; every waiter shares this fetch
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.fetchTimeout)
		defer cancel()

		data, err := fn(fetchCtx)
		if err != nil {
			return nil, err
		}
		go c.put(key, data)
		return data, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		c.logger.Debug("singleflight shared result", zap.String("key", key))
	}
	return v.([]byte), nil
}

func (c *responseCache) put(key string, data []byte) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultSetTimeout)
	defer cancel()

	ttl := addTTLJitter(c.ttl)
	if err := c.store.Set(ctx, key, data, ttl); err != nil {
		c.logger.Warn("failed to set cache on miss", zap.String("key", key), zap.Error(err))
		return
	}
	c.logger.Debug("cache populated on miss", zap.String("key", key), zap.Duration("ttl", ttl))
}
