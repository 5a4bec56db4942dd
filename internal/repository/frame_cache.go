package repository

import (
	"context"
	"errors"
	"time"

	"TAPull/internal/domain/models"
	domrepo "TAPull/internal/domain/repository"
	"TAPull/pkg/cache"
	applogger "TAPull/pkg/logger"
)

// FrameCache stores fetched payloads as JSON in a cache.Service.
type FrameCache struct {
	svc cache.Service
	ttl time.Duration
	l   *applogger.Logger
}

var _ domrepo.FrameCache = (*FrameCache)(nil)

func NewFrameCache(svc cache.Service, ttl time.Duration, l *applogger.Logger) *FrameCache {
	if l == nil {
		l = applogger.Nop()
	}
	return &FrameCache{svc: svc, ttl: ttl, l: l}
}

// FrameKey is the cache key for one fetch.
func FrameKey(symbol, startDate, endDate string) string {
	return cache.GenerateKeyWithParams("frame", symbol, cache.HashKey(startDate+"|"+endDate))
}

// Get returns the cached frame. Backend failures and corrupt entries count as misses.
func (c *FrameCache) Get(ctx context.Context, key string) (*models.Frame, bool) {
	b, err := c.svc.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, cache.ErrCacheMiss) {
			c.l.Warn("frame cache get failed", applogger.String("key", key), applogger.Error(err))
		}
		return nil, false
	}
	f, err := models.DecodeFrame(b)
	if err != nil || f.Empty() {
		c.l.Warn("frame cache entry unreadable", applogger.String("key", key), applogger.Error(err))
		_ = c.svc.Delete(ctx, key)
		return nil, false
	}
	return f, true
}

func (c *FrameCache) Set(ctx context.Context, key string, f *models.Frame) error {
	b, err := f.MarshalJSON()
	if err != nil {
		return err
	}
	return c.svc.Set(ctx, key, b, c.ttl)
}
