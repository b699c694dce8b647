package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"notewise/internal/cache"
	"notewise/internal/domain"
	"notewise/internal/logger"
	"notewise/internal/util"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// flowResultCache memoises deterministic flow outputs. Cache failures are
// logged and never fail the flow.
type flowResultCache struct {
	cache   domain.Cache
	ttl     time.Duration
	sfGroup singleflight.Group
}

func newFlowResultCache(c domain.Cache, ttl time.Duration) *flowResultCache {
	if c == nil {
		logger.Get().Warn("Flow result cache initialized with nil cache. Results will not be cached.")
	}
	return &flowResultCache{cache: c, ttl: ttl}
}

type freshResultKey struct{}

// WithFreshResult makes flows called with ctx skip cached results. The new
// result still replaces the cached one.
func WithFreshResult(ctx context.Context) context.Context {
	return context.WithValue(ctx, freshResultKey{}, true)
}

func wantsFreshResult(ctx context.Context) bool {
	fresh, _ := ctx.Value(freshResultKey{}).(bool)
	return fresh
}

// cachedFlow returns the cached result for (flow, inputs) or runs fn once
// for all concurrent callers and caches its output.
func cachedFlow[T any](ctx context.Context, fc *flowResultCache, flow string, fn func(context.Context) (T, error), inputs ...string) (T, error) {
	if fc == nil || fc.cache == nil {
		return fn(ctx)
	}

	key := cache.FlowResultKey(flow, util.HashString(inputs...))
	l := logger.Get().With(zap.String("flow", flow), zap.String("cache_key", key))

	var zero T
	if wantsFreshResult(ctx) {
		l.Debug("Skipping cached flow result")
	} else if raw, err := fc.cache.Get(ctx, key); err == nil {
		var cached T
		if err := json.Unmarshal([]byte(raw), &cached); err == nil {
			l.Debug("Flow result cache hit")
			return cached, nil
		}
		l.Warn("Discarding undecodable cached flow result")
	} else if !errors.Is(err, domain.ErrCacheMiss) {
		l.Warn("Flow result cache read failed", zap.Error(err))
	}

	sfKey := key
	if wantsFreshResult(ctx) {
		sfKey += ":fresh"
	}
	res, err, shared := fc.sfGroup.Do(sfKey, func() (interface{}, error) {
		out, err := fn(ctx)
		if err != nil {
			return nil, err
		}
		if data, err := json.Marshal(out); err != nil {
			l.Warn("Failed to encode flow result for caching", zap.Error(err))
		} else if err := fc.cache.Set(ctx, key, string(data), fc.ttl); err != nil {
			l.Warn("Failed to cache flow result", zap.Error(err))
		}
		return out, nil
	})
	if err != nil {
		return zero, err
	}
	if shared {
		l.Debug("Joined in-flight flow call")
	}

	out, ok := res.(T)
	if !ok {
		return zero, domain.NewInternalError(fmt.Sprintf("unexpected type from singleflight for %s: %T", flow, res), nil)
	}
	return out, nil
}
