package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"AssetCast/internal/domain/models"
	domrepo "AssetCast/internal/domain/repository"
	"AssetCast/pkg/cache"
	applogger "AssetCast/pkg/logger"
)

// CachedHistoricalSource wraps a HistoricalSource with a read-through cache.
// Only ranges that end before the start of the current month are cached:
// closed months never receive new datapoints, so those chunks are immutable
// and safe to serve from cache across training ticks.
type CachedHistoricalSource struct {
	src   domrepo.HistoricalSource
	cache cache.Service
	ttl   time.Duration
	l     *applogger.Logger
	now   func() time.Time
}

func NewCachedHistoricalSource(src domrepo.HistoricalSource, c cache.Service, ttl time.Duration, l *applogger.Logger) *CachedHistoricalSource {
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	if l == nil {
		l = applogger.Nop()
	}
	return &CachedHistoricalSource{src: src, cache: c, ttl: ttl, l: l, now: time.Now}
}

func (s *CachedHistoricalSource) GetHistorical(ctx context.Context, assetID, attribute string, fromMs, toMs int64) ([]models.Datapoint, error) {
	if !s.cacheable(toMs) {
		return s.src.GetHistorical(ctx, assetID, attribute, fromMs, toMs)
	}

	// Values go through the cache as JSON strings so every backend stores
	// them the same way.
	key := cache.GenerateKeyWithParams("hist", assetID, attribute, fromMs, toMs)
	var raw string
	err := s.cache.Get(ctx, key, &raw)
	if err == nil {
		var cached []models.Datapoint
		if err := json.Unmarshal([]byte(raw), &cached); err == nil {
			return cached, nil
		}
		s.l.Warn("discarding undecodable cache entry", applogger.String("key", key))
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		// Degrade to the source on cache trouble rather than failing the read.
		s.l.Warn("historical cache read failed",
			applogger.String("key", key), applogger.Error(err))
	}

	points, err := s.src.GetHistorical(ctx, assetID, attribute, fromMs, toMs)
	if err != nil {
		return nil, err
	}
	if encoded, err := json.Marshal(points); err == nil {
		if err := s.cache.Set(ctx, key, string(encoded), s.ttl); err != nil {
			s.l.Warn("historical cache write failed",
				applogger.String("key", key), applogger.Error(err))
		}
	}
	return points, nil
}

// cacheable reports whether [_, toMs) lies entirely within closed months.
func (s *CachedHistoricalSource) cacheable(toMs int64) bool {
	now := s.now().UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	return toMs <= monthStart.UnixMilli()
}
